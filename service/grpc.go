package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "arm.v1.Arm"

// RPC method names.
const (
	MethodGenerateKeypair      = "GenerateKeypair"
	MethodComplianceInstance   = "ComplianceInstance"
	MethodEncrypt              = "Encrypt"
	MethodDecrypt              = "Decrypt"
	MethodProveCompliance      = "ProveCompliance"
	MethodConvertLogicVerifier = "ConvertLogicVerifier"
	MethodProveDelta           = "ProveDelta"
	MethodFinalizeTransaction  = "FinalizeTransaction"
)

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// ArmServer is the server API for the Arm gRPC service.
//
// Every RPC takes its positional arguments as a list of bridge terms and
// returns one bridge term, so the service needs no protoc/codegen toolchain.
type ArmServer interface {
	GenerateKeypair(context.Context, *structpb.ListValue) (*structpb.Value, error)
	ComplianceInstance(context.Context, *structpb.ListValue) (*structpb.Value, error)
	Encrypt(context.Context, *structpb.ListValue) (*structpb.Value, error)
	Decrypt(context.Context, *structpb.ListValue) (*structpb.Value, error)
	ProveCompliance(context.Context, *structpb.ListValue) (*structpb.Value, error)
	ConvertLogicVerifier(context.Context, *structpb.ListValue) (*structpb.Value, error)
	ProveDelta(context.Context, *structpb.ListValue) (*structpb.Value, error)
	FinalizeTransaction(context.Context, *structpb.ListValue) (*structpb.Value, error)
}

// UnimplementedArmServer can be embedded to have forward compatible implementations.
type UnimplementedArmServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedArmServer) GenerateKeypair(context.Context, *structpb.ListValue) (*structpb.Value, error) {
	return nil, unimplemented(MethodGenerateKeypair)
}
func (UnimplementedArmServer) ComplianceInstance(context.Context, *structpb.ListValue) (*structpb.Value, error) {
	return nil, unimplemented(MethodComplianceInstance)
}
func (UnimplementedArmServer) Encrypt(context.Context, *structpb.ListValue) (*structpb.Value, error) {
	return nil, unimplemented(MethodEncrypt)
}
func (UnimplementedArmServer) Decrypt(context.Context, *structpb.ListValue) (*structpb.Value, error) {
	return nil, unimplemented(MethodDecrypt)
}
func (UnimplementedArmServer) ProveCompliance(context.Context, *structpb.ListValue) (*structpb.Value, error) {
	return nil, unimplemented(MethodProveCompliance)
}
func (UnimplementedArmServer) ConvertLogicVerifier(context.Context, *structpb.ListValue) (*structpb.Value, error) {
	return nil, unimplemented(MethodConvertLogicVerifier)
}
func (UnimplementedArmServer) ProveDelta(context.Context, *structpb.ListValue) (*structpb.Value, error) {
	return nil, unimplemented(MethodProveDelta)
}
func (UnimplementedArmServer) FinalizeTransaction(context.Context, *structpb.ListValue) (*structpb.Value, error) {
	return nil, unimplemented(MethodFinalizeTransaction)
}

// RegisterArmServer registers the Arm service on a gRPC server.
func RegisterArmServer(s grpc.ServiceRegistrar, srv ArmServer) {
	s.RegisterService(&Arm_ServiceDesc, srv)
}

// ArmClient is the client API for the Arm gRPC service.
type ArmClient interface {
	Call(ctx context.Context, method string, in *structpb.ListValue, opts ...grpc.CallOption) (*structpb.Value, error)
}

type armClient struct{ cc grpc.ClientConnInterface }

func NewArmClient(cc grpc.ClientConnInterface) ArmClient { return &armClient{cc: cc} }

func (c *armClient) Call(ctx context.Context, method string, in *structpb.ListValue, opts ...grpc.CallOption) (*structpb.Value, error) {
	out := new(structpb.Value)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type armCall func(ArmServer, context.Context, *structpb.ListValue) (*structpb.Value, error)

func handler(method string, call armCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.ListValue)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ArmServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			h := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ArmServer), ctx, req.(*structpb.ListValue))
			}
			return interceptor(ctx, in, info, h)
		},
	}
}

// Arm_ServiceDesc is the grpc.ServiceDesc for the Arm service.
var Arm_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ArmServer)(nil),
	Methods: []grpc.MethodDesc{
		handler(MethodGenerateKeypair, ArmServer.GenerateKeypair),
		handler(MethodComplianceInstance, ArmServer.ComplianceInstance),
		handler(MethodEncrypt, ArmServer.Encrypt),
		handler(MethodDecrypt, ArmServer.Decrypt),
		handler(MethodProveCompliance, ArmServer.ProveCompliance),
		handler(MethodConvertLogicVerifier, ArmServer.ConvertLogicVerifier),
		handler(MethodProveDelta, ArmServer.ProveDelta),
		handler(MethodFinalizeTransaction, ArmServer.FinalizeTransaction),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "arm.proto",
}
