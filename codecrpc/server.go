// Package codecrpc serves registered codecs and the CID encoder over gRPC.
package codecrpc

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/basetools/cid"
	"xdao.co/basetools/codec"
)

// errorDomain tags ErrorInfo details carrying a *codec.Error.
const errorDomain = "basetools.xdao.co"

// CodecService exposes one codec.Codec.
type CodecService struct {
	Codec codec.Codec
}

func (s *CodecService) Encode(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	_ = ctx
	if s == nil || s.Codec.Encode == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing codec")
	}
	return wrapperspb.String(s.Codec.Encode(in.GetValue())), nil
}

func (s *CodecService) Decode(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Codec.Decode == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing codec")
	}
	b, err := s.Codec.Decode(in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bytes(b), nil
}

// CIDService exposes cid.Request encoding and cid.Decode.
type CIDService struct{}

func (CIDService) Encode(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	_ = ctx
	r, err := cid.ParseRequest([]byte(in.GetValue()))
	if err != nil {
		return nil, toStatus(err)
	}
	s, err := r.Encode()
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(s), nil
}

func (CIDService) Decode(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	_ = ctx
	c, err := cid.Decode(in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	b, err := json.Marshal(cid.RequestFor(c))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.String(string(b)), nil
}

// Register registers the named codecs (all registered codecs when names is
// empty) and the CID service on s.
func Register(s grpc.ServiceRegistrar, names []string) error {
	cs := codec.List()
	if len(names) > 0 {
		cs = make([]codec.Codec, 0, len(names))
		for _, n := range names {
			c, err := codec.Lookup(n)
			if err != nil {
				return err
			}
			cs = append(cs, c)
		}
	}
	for _, c := range cs {
		RegisterCodecServer(s, c.Name, &CodecService{Codec: c})
	}
	RegisterCIDServer(s, CIDService{})
	return nil
}

// toStatus maps a codec error to InvalidArgument and attaches its Kind,
// RuleID and codec name as an ErrorInfo detail.
func toStatus(err error) error {
	var ce *codec.Error
	if !errors.As(err, &ce) {
		return status.Error(codes.Internal, err.Error())
	}
	code := codes.InvalidArgument
	if ce.Kind == codec.KindInternal {
		code = codes.Internal
	}
	st := status.New(code, ce.Message)
	withInfo, derr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: ce.RuleID,
		Domain: errorDomain,
		Metadata: map[string]string{
			"kind":  string(ce.Kind),
			"codec": ce.Codec,
		},
	})
	if derr != nil {
		return st.Err()
	}
	return withInfo.Err()
}
