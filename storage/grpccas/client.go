package grpccas

import (
	"context"
	"time"

	"github.com/ipfs/go-cid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"anoma.net/arm/cidutil"
	"anoma.net/arm/storage"
	"anoma.net/arm/transaction"
)

// Client talks to a remote archive. Its Put, Get and Has make it a
// storage.CAS for an archive Set; StoreTransaction and LoadTransaction are
// the typed, context-aware calls. Every reply is checked against the ID it
// claims to answer.
type Client struct {
	cc  *grpc.ClientConn
	rpc ArchiveClient

	// Timeout bounds each call when non-zero.
	Timeout time.Duration
}

var _ storage.CAS = (*Client)(nil)

type DialOptions struct {
	// Timeout bounds each call when non-zero.
	Timeout time.Duration
	// MaxMsgBytes caps sent and received messages when non-zero.
	MaxMsgBytes int
	// Options are appended to the defaults.
	Options []grpc.DialOption
}

// Dial connects lazily; the first call establishes the connection.
func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if n := opts.MaxMsgBytes; n > 0 {
		dialOpts = append(dialOpts, grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(n), grpc.MaxCallSendMsgSize(n)))
	}
	cc, err := grpc.NewClient(target, append(dialOpts, opts.Options...)...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, rpc: NewArchiveClient(cc), Timeout: opts.Timeout}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// StoreTransaction archives tx on the remote daemon.
func (c *Client) StoreTransaction(ctx context.Context, tx transaction.Transaction) (cid.Cid, error) {
	if !tx.IsFinalized() {
		return cid.Undef, storage.ErrNotFinalized
	}
	b, err := storage.EncodeTransaction(tx)
	if err != nil {
		return cid.Undef, err
	}
	return c.store(ctx, b)
}

// LoadTransaction fetches and decodes the transaction archived under id.
func (c *Client) LoadTransaction(ctx context.Context, id cid.Cid) (transaction.Transaction, error) {
	b, err := c.load(ctx, id)
	if err != nil {
		return transaction.Transaction{}, err
	}
	return storage.Check(b)
}

func (c *Client) store(ctx context.Context, b []byte) (cid.Cid, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	reply, err := c.rpc.Store(ctx, wrapperspb.Bytes(b))
	if err != nil {
		return cid.Undef, fromStatus(err)
	}
	id, err := cidutil.Parse(reply.GetValue())
	if err != nil {
		return cid.Undef, storage.ErrInvalidCID
	}
	if err := storage.Verify(id, b); err != nil {
		return cid.Undef, err
	}
	return id, nil
}

func (c *Client) load(ctx context.Context, id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	ctx, cancel := c.bound(ctx)
	defer cancel()
	reply, err := c.rpc.Load(ctx, wrapperspb.String(id.String()))
	if err != nil {
		return nil, fromStatus(err)
	}
	b := reply.GetValue()
	if err := storage.Verify(id, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (c *Client) Put(b []byte) (cid.Cid, error) { return c.store(context.Background(), b) }

func (c *Client) Get(id cid.Cid) ([]byte, error) { return c.load(context.Background(), id) }

func (c *Client) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	ctx, cancel := c.bound(context.Background())
	defer cancel()
	reply, err := c.rpc.Has(ctx, wrapperspb.String(id.String()))
	return err == nil && reply.GetValue()
}

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}
