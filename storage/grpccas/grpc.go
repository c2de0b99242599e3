// Package grpccas serves a transaction archive over gRPC and consumes a
// remote one as an archive backend, so one daemon's archive can back
// another's.
package grpccas

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "arm.storage.v1.Archive"

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// ArchiveServer is the server API of the archive service. Store takes an
// encoded finalized transaction and answers its ID; Load and Has take an ID
// in string form.
type ArchiveServer interface {
	Store(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
	Load(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Has(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

// UnimplementedArchiveServer answers every method with Unimplemented.
type UnimplementedArchiveServer struct{}

func (UnimplementedArchiveServer) Store(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Store not implemented")
}
func (UnimplementedArchiveServer) Load(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Load not implemented")
}
func (UnimplementedArchiveServer) Has(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Has not implemented")
}

// RegisterArchiveServer registers the archive service on s.
func RegisterArchiveServer(s grpc.ServiceRegistrar, srv ArchiveServer) {
	s.RegisterService(&Archive_ServiceDesc, srv)
}

// ArchiveClient is the client API of the archive service.
type ArchiveClient interface {
	Store(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Load(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Has(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
}

type archiveClient struct{ cc grpc.ClientConnInterface }

func NewArchiveClient(cc grpc.ClientConnInterface) ArchiveClient { return archiveClient{cc: cc} }

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c archiveClient) Store(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	return invoke[wrapperspb.StringValue](ctx, c.cc, "Store", in, opts)
}

func (c archiveClient) Load(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	return invoke[wrapperspb.BytesValue](ctx, c.cc, "Load", in, opts)
}

func (c archiveClient) Has(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	return invoke[wrapperspb.BoolValue](ctx, c.cc, "Has", in, opts)
}

// unary builds the MethodDesc of a method taking a request of type Req.
func unary[Req any, PReq interface{ *Req }, Resp any](name string, call func(ArchiveServer, context.Context, PReq) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ArchiveServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			h := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ArchiveServer), ctx, req.(PReq))
			}
			return interceptor(ctx, in, info, h)
		},
	}
}

// Archive_ServiceDesc describes the archive service without generated code.
var Archive_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ArchiveServer)(nil),
	Methods: []grpc.MethodDesc{
		unary[wrapperspb.BytesValue]("Store", ArchiveServer.Store),
		unary[wrapperspb.StringValue]("Load", ArchiveServer.Load),
		unary[wrapperspb.StringValue]("Has", ArchiveServer.Has),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "arm/storage/v1/archive.proto",
}
