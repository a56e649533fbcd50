package rtdb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client is a thin typed stub over a gRPC connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Ping(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, PingMethod, &emptypb.Empty{}, new(emptypb.Empty), opts...)
}

func (c *Client) Get(ctx context.Context, path string, opts ...grpc.CallOption) ([]byte, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, GetMethod, wrapperspb.String(path), out, opts...); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}

func (c *Client) Set(ctx context.Context, path string, value []byte, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, SetMethod, NewSetRequest(path, value), new(emptypb.Empty), opts...)
}

func (c *Client) PresignPackageUpload(ctx context.Context, version string, opts ...grpc.CallOption) (*Package, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PresignPackageUploadMethod, wrapperspb.String(version), out, opts...); err != nil {
		return nil, err
	}
	return PackageFromStruct(out)
}

func (c *Client) MarkPackageUploaded(ctx context.Context, id string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, MarkPackageUploadedMethod, wrapperspb.String(id), new(emptypb.Empty), opts...)
}

func (c *Client) LatestPackage(ctx context.Context, opts ...grpc.CallOption) (*Package, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, LatestPackageMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return PackageFromStruct(out)
}
