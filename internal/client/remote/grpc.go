package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/tutorsync/internal/auth"
	"github.com/dmitrijs2005/tutorsync/internal/common"
	"github.com/dmitrijs2005/tutorsync/internal/rtdb"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type Options struct {
	// Secret signs admin write tokens. Without it writes are sent anonymously
	// and the server rejects them.
	Secret        []byte
	TokenValidity time.Duration
	// Timeout bounds every call; zero means no extra deadline.
	Timeout time.Duration
}

type GRPCStore struct {
	conn   *grpc.ClientConn
	client *rtdb.Client
	opts   Options
	mu     sync.Mutex
	token  string
}

var _ Store = (*GRPCStore)(nil)

// Dial creates the client. grpc.NewClient connects lazily, so an unreachable
// server shows up on the first call, not here.
func Dial(addr string, opts Options, extra ...grpc.DialOption) (*GRPCStore, error) {
	if opts.TokenValidity <= 0 {
		opts.TokenValidity = 10 * time.Minute
	}
	s := &GRPCStore{opts: opts}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	s.client = rtdb.NewClient(conn)
	return s, nil
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCStore) currentToken(renew bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && !renew {
		return s.token, nil
	}
	tok, err := auth.GenerateToken(common.AdminSubject, s.opts.Secret, s.opts.TokenValidity)
	if err != nil {
		return "", err
	}
	s.token = tok
	return tok, nil
}

func (s *GRPCStore) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, ok := rtdb.WriteMethods[method]; !ok || len(s.opts.Secret) == 0 {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	tok, err := s.currentToken(false)
	if err != nil {
		return err
	}

	err = invoker(withAccessToken(ctx, tok), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}

	// token expired while cached, mint a fresh one and retry once
	tok, err = s.currentToken(true)
	if err != nil {
		return err
	}
	return invoker(withAccessToken(ctx, tok), method, req, reply, cc, opts...)
}

func (s *GRPCStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}

func (s *GRPCStore) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return mapError(s.client.Ping(ctx))
}

func (s *GRPCStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	value, err := s.client.Get(ctx, ContentPath(key))
	if err != nil {
		return nil, mapError(err)
	}
	return value, nil
}

func (s *GRPCStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return mapError(s.client.Set(ctx, ContentPath(key), value))
}

func (s *GRPCStore) BulkSet(ctx context.Context, entries map[string][]byte) error {
	g, gctx := errgroup.WithContext(ctx)
	for key, value := range entries {
		g.Go(func() error {
			if err := s.Set(gctx, key, value); err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *GRPCStore) PresignPackageUpload(ctx context.Context, version string) (*rtdb.Package, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	p, err := s.client.PresignPackageUpload(ctx, version)
	return p, mapError(err)
}

func (s *GRPCStore) MarkPackageUploaded(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return mapError(s.client.MarkPackageUploaded(ctx, id))
}

func (s *GRPCStore) LatestPackage(ctx context.Context) (*rtdb.Package, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	p, err := s.client.LatestPackage(ctx)
	return p, mapError(err)
}

func (s *GRPCStore) Close() error {
	return s.conn.Close()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return ErrNotFound
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
