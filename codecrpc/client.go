package codecrpc

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/basetools/cid"
	"xdao.co/basetools/codec"
)

// Client calls codec and CID services on a remote server.
type Client struct {
	cc grpc.ClientConnInterface

	// closer is set when the Client owns the connection.
	closer func() error

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

// Dial connects to target without transport security.
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

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, closer: cc.Close}, nil
}

// NewClient wraps an existing connection. Close does not close cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer()
}

// Encode encodes b with the named codec on the server.
func (c *Client) Encode(ctx context.Context, codecName string, b []byte) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.invoke(ctx, "/"+ServiceName(codecName)+"/Encode", wrapperspb.Bytes(b), out); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

// Decode decodes s with the named codec on the server.
func (c *Client) Decode(ctx context.Context, codecName, s string) ([]byte, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.invoke(ctx, "/"+ServiceName(codecName)+"/Decode", wrapperspb.String(s), out); err != nil {
		return nil, err
	}
	b := out.GetValue()
	if b == nil {
		b = []byte{}
	}
	return b, nil
}

// EncodeCID encodes r on the server.
func (c *Client) EncodeCID(ctx context.Context, r cid.Request) (string, error) {
	req, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	out := new(wrapperspb.StringValue)
	if err := c.invoke(ctx, "/"+CIDServiceName+"/Encode", wrapperspb.String(string(req)), out); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

// DecodeCID decodes CID text on the server.
func (c *Client) DecodeCID(ctx context.Context, s string) (cid.CID, error) {
	out := new(wrapperspb.StringValue)
	if err := c.invoke(ctx, "/"+CIDServiceName+"/Decode", wrapperspb.String(s), out); err != nil {
		return cid.CID{}, err
	}
	r, err := cid.ParseRequest([]byte(out.GetValue()))
	if err != nil {
		return cid.CID{}, err
	}
	return r.CID()
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	return fromStatus(c.cc.Invoke(ctx, method, in, out))
}

// fromStatus rebuilds a *codec.Error from a status produced by toStatus.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != errorDomain {
			continue
		}
		return &codec.Error{
			Kind:    codec.Kind(info.GetMetadata()["kind"]),
			RuleID:  info.GetReason(),
			Codec:   info.GetMetadata()["codec"],
			Message: st.Message(),
			Cause:   err,
		}
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return codec.Wrap(codec.KindFormat, "", "", st.Message(), err)
	case codes.Unimplemented:
		// The server does not expose the requested codec.
		return codec.Wrap(codec.KindValue, codec.RuleUnknownCodec, "", st.Message(), err)
	default:
		return err
	}
}
