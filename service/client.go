package service

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"anoma.net/arm/bridge"
	"anoma.net/arm/compliance"
	"anoma.net/arm/curve"
	"anoma.net/arm/delta"
	"anoma.net/arm/encryption"
	"anoma.net/arm/logic"
	"anoma.net/arm/transaction"
)

// Client calls the Arm service with typed arguments. Errors come back as
// *arm.Error values with the server's kind, rule and field.
type Client struct {
	cc     *grpc.ClientConn
	client ArmClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies per RPC when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int

	// Extra options, e.g. a bufconn dialer in tests.
	Options []grpc.DialOption
}

// Dial creates a client for target. No connection is made until the first
// call.
func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}
	dialOpts = append(dialOpts, opts.Options...)

	cc, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewArmClient(cc), Timeout: opts.Timeout}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// WithRequestID returns a context that sends id as the call's request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, RequestIDHeader, id)
}

func (c *Client) call(ctx context.Context, method string, args ...*structpb.Value) (*structpb.Value, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	out, err := c.client.Call(ctx, method, &structpb.ListValue{Values: args})
	if err != nil {
		return nil, fromStatus(err)
	}
	return out, nil
}

func (c *Client) GenerateKeypair(ctx context.Context) (curve.Keypair, error) {
	v, err := c.call(ctx, MethodGenerateKeypair)
	if err != nil {
		return curve.Keypair{}, err
	}
	return bridge.DecodeKeypair(v)
}

func (c *Client) ComplianceInstance(ctx context.Context, u compliance.Unit) (compliance.Instance, error) {
	v, err := c.call(ctx, MethodComplianceInstance, bridge.EncodeComplianceUnit(u))
	if err != nil {
		return compliance.Instance{}, err
	}
	return bridge.DecodeComplianceInstance(v)
}

func (c *Client) Encrypt(ctx context.Context, payload []byte, kp curve.Keypair, nonce []byte) (encryption.Ciphertext, error) {
	v, err := c.call(ctx, MethodEncrypt, bridge.EncodeBytes(payload), bridge.EncodeKeypair(kp), bridge.EncodeBytes(nonce))
	if err != nil {
		return nil, err
	}
	return bridge.DecodeCiphertext(v)
}

// Decrypt reports ok=false when the ciphertext does not open under kp.
func (c *Client) Decrypt(ctx context.Context, ct []byte, kp curve.Keypair) ([]byte, bool, error) {
	v, err := c.call(ctx, MethodDecrypt, bridge.EncodeBytes(ct), bridge.EncodeKeypair(kp))
	if err != nil {
		return nil, false, err
	}
	pt, err := bridge.DecodeOptionalBytes(v, "plaintext")
	if err != nil {
		return nil, false, err
	}
	return pt, pt != nil, nil
}

func (c *Client) ProveCompliance(ctx context.Context, w *compliance.Witness) (compliance.Unit, error) {
	v, err := c.call(ctx, MethodProveCompliance, bridge.EncodeComplianceWitness(w))
	if err != nil {
		return compliance.Unit{}, err
	}
	return bridge.DecodeComplianceUnit(v)
}

func (c *Client) ConvertLogicVerifier(ctx context.Context, lv logic.Verifier) (logic.VerifierInputs, error) {
	v, err := c.call(ctx, MethodConvertLogicVerifier, bridge.EncodeLogicVerifier(lv))
	if err != nil {
		return logic.VerifierInputs{}, err
	}
	return bridge.DecodeLogicVerifierInputs(v)
}

func (c *Client) ProveDelta(ctx context.Context, w delta.Witness, message []byte) (delta.Proof, error) {
	v, err := c.call(ctx, MethodProveDelta, bridge.EncodeDeltaWitness(w), bridge.EncodeBytes(message))
	if err != nil {
		return delta.Proof{}, err
	}
	return bridge.DecodeDeltaProof(v)
}

func (c *Client) FinalizeTransaction(ctx context.Context, tx transaction.Transaction) (transaction.Transaction, error) {
	v, err := c.call(ctx, MethodFinalizeTransaction, bridge.EncodeTransaction(tx))
	if err != nil {
		return transaction.Transaction{}, err
	}
	return bridge.DecodeTransaction(v)
}
