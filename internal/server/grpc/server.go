package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/tutorsync/internal/logging"
	"github.com/dmitrijs2005/tutorsync/internal/rtdb"
	"github.com/dmitrijs2005/tutorsync/internal/server/models"
	"google.golang.org/grpc"
)

type NodeStore interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Set(ctx context.Context, path string, value []byte) error
}

type PackageRegistry interface {
	PresignUpload(ctx context.Context, version string) (*models.DeploymentPackage, string, error)
	MarkUploaded(ctx context.Context, id string) error
	Latest(ctx context.Context) (*models.DeploymentPackage, string, error)
}

type GRPCServer struct {
	address   string
	nodes     NodeStore
	packages  PackageRegistry
	metrics   *Metrics
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, ns NodeStore, pr PackageRegistry, m *Metrics, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		nodes:     ns,
		packages:  pr,
		metrics:   m,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{}
	if s.metrics != nil {
		interceptors = append(interceptors, s.metrics.UnaryInterceptor)
	}
	interceptors = append(interceptors, s.accessTokenInterceptor)

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	rtdb.RegisterServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	return srv.Serve(listen)
}
