// Package rtdb describes the realtime store RPC service shared by the server
// and the client. Messages are protobuf well-known types, so the default gRPC
// proto codec carries them without generated code.
//
// Paths are slash separated ("content/<sanitized key>"); values are JSON text.
package rtdb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "tutorsync.rtdb.RealtimeStore"

const (
	PingMethod                 = "/" + ServiceName + "/Ping"
	GetMethod                  = "/" + ServiceName + "/Get"
	SetMethod                  = "/" + ServiceName + "/Set"
	PresignPackageUploadMethod = "/" + ServiceName + "/PresignPackageUpload"
	MarkPackageUploadedMethod  = "/" + ServiceName + "/MarkPackageUploaded"
	LatestPackageMethod        = "/" + ServiceName + "/LatestPackage"
)

// WriteMethods lists the RPCs that require an access token.
var WriteMethods = map[string]struct{}{
	SetMethod:                  {},
	PresignPackageUploadMethod: {},
	MarkPackageUploadedMethod:  {},
}

// Server is implemented by the realtime store service.
type Server interface {
	Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	Get(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Set(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	PresignPackageUpload(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	MarkPackageUploaded(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	LatestPackage(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func unary[Req any, Resp any](name string, newReq func() Req, call func(Server, context.Context, Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(Server)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(Req))
			})
		},
	}
}

// ServiceDesc is registered with grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", func() *emptypb.Empty { return new(emptypb.Empty) }, Server.Ping),
		unary("Get", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }, Server.Get),
		unary("Set", func() *structpb.Struct { return new(structpb.Struct) }, Server.Set),
		unary("PresignPackageUpload", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }, Server.PresignPackageUpload),
		unary("MarkPackageUploaded", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }, Server.MarkPackageUploaded),
		unary("LatestPackage", func() *emptypb.Empty { return new(emptypb.Empty) }, Server.LatestPackage),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tutorsync/rtdb.proto",
}

func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}
