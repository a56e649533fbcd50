package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/tutorsync/internal/common"
	"github.com/dmitrijs2005/tutorsync/internal/rtdb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Get(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	value, err := s.nodes.Get(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, "get", err)
	}
	return wrapperspb.Bytes(value), nil
}

func (s *GRPCServer) Set(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	path, value, err := rtdb.ParseSetRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.nodes.Set(ctx, path, value); err != nil {
		return nil, s.toStatus(ctx, "set", err)
	}

	s.logger.Debug(ctx, "node written", "path", path, "bytes", len(value))
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) PresignPackageUpload(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "version required")
	}

	p, url, err := s.packages.PresignUpload(ctx, req.GetValue())
	if err != nil {
		return nil, s.toStatus(ctx, "presign upload", err)
	}

	s.logger.Info(ctx, "package registered", "id", p.ID, "version", p.Version)
	return (&rtdb.Package{ID: p.ID, Version: p.Version, StorageKey: p.StorageKey, URL: url}).ToStruct(), nil
}

func (s *GRPCServer) MarkPackageUploaded(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.packages.MarkUploaded(ctx, req.GetValue()); err != nil {
		return nil, s.toStatus(ctx, "mark uploaded", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) LatestPackage(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	p, url, err := s.packages.Latest(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "latest package", err)
	}
	return (&rtdb.Package{ID: p.ID, Version: p.Version, StorageKey: p.StorageKey, URL: url}).ToStruct(), nil
}

func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	default:
		s.logger.Error(ctx, op+" failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
