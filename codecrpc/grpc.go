package codecrpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// We use protobuf well-known wrapper types so this package does not require
// a protoc/codegen toolchain.

const servicePrefix = "xdao.basetools.codecrpc.v1."

// CIDServiceName is the fully qualified name of the CID service.
const CIDServiceName = servicePrefix + "CID"

// ServiceName returns the fully qualified service name for a registered codec:
// "base58btc" is served as "xdao.basetools.codecrpc.v1.Base58btc".
func ServiceName(codecName string) string {
	if codecName == "" {
		return servicePrefix
	}
	return servicePrefix + strings.ToUpper(codecName[:1]) + codecName[1:]
}

// CodecServer is the server API of a codec service.
type CodecServer interface {
	Encode(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
	Decode(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
}

// CIDServer is the server API of the CID service. Requests and decoded
// identifiers travel as JSON text.
type CIDServer interface {
	Encode(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Decode(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
}

// RegisterCodecServer registers srv as the service for codecName.
func RegisterCodecServer(s grpc.ServiceRegistrar, codecName string, srv CodecServer) {
	desc := codecServiceDesc(ServiceName(codecName))
	s.RegisterService(&desc, srv)
}

// RegisterCIDServer registers the CID service.
func RegisterCIDServer(s grpc.ServiceRegistrar, srv CIDServer) {
	s.RegisterService(&CID_ServiceDesc, srv)
}

func codecServiceDesc(service string) grpc.ServiceDesc {
	return grpc.ServiceDesc{
		ServiceName: service,
		HandlerType: (*CodecServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Encode", Handler: unaryHandler("/"+service+"/Encode", func(srv any, ctx context.Context, in *wrapperspb.BytesValue) (any, error) {
				return srv.(CodecServer).Encode(ctx, in)
			})},
			{MethodName: "Decode", Handler: unaryHandler("/"+service+"/Decode", func(srv any, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
				return srv.(CodecServer).Decode(ctx, in)
			})},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "codec.proto",
	}
}

// CID_ServiceDesc is the grpc.ServiceDesc for the CID service.
var CID_ServiceDesc = grpc.ServiceDesc{
	ServiceName: CIDServiceName,
	HandlerType: (*CIDServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Encode", Handler: unaryHandler("/"+CIDServiceName+"/Encode", func(srv any, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
			return srv.(CIDServer).Encode(ctx, in)
		})},
		{MethodName: "Decode", Handler: unaryHandler("/"+CIDServiceName+"/Decode", func(srv any, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
			return srv.(CIDServer).Decode(ctx, in)
		})},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "codec.proto",
}

// message is the set of request types carried by the services.
type message interface {
	*wrapperspb.BytesValue | *wrapperspb.StringValue
}

func unaryHandler[In message](fullMethod string, call func(srv any, ctx context.Context, in In) (any, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newMessage[In]()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req.(In))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func newMessage[In message]() In {
	var in In
	switch p := any(&in).(type) {
	case **wrapperspb.BytesValue:
		*p = new(wrapperspb.BytesValue)
	case **wrapperspb.StringValue:
		*p = new(wrapperspb.StringValue)
	}
	return in
}
