// Package grpc exposes the metadata store services over gRPC using the
// hand-written descriptor and JSON codec from internal/api.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/walletmeta/internal/api"
	"github.com/dmitrijs2005/walletmeta/internal/logging"
	"github.com/dmitrijs2005/walletmeta/internal/server/models"
	"google.golang.org/grpc"
)

// AuthService runs the nonce challenge and validates access tokens.
type AuthService interface {
	IssueNonce(ctx context.Context) (string, error)
	Login(ctx context.Context, mdid, nonce, signature string) (string, error)
	Authenticate(token string) (string, error)
}

type TrustService interface {
	List(ctx context.Context, mdid string) ([]string, error)
	IsTrusted(ctx context.Context, mdid, contact string) (bool, error)
	Add(ctx context.Context, mdid, contact string) error
	Remove(ctx context.Context, mdid, contact string) error
}

type MessageService interface {
	Post(ctx context.Context, sender, recipient string, msgType int, payload, signature string) (*models.Message, error)
	List(ctx context.Context, recipient string, processed *bool, afterID string) ([]models.Message, error)
	Get(ctx context.Context, mdid, id string) (*models.Message, error)
	SetProcessed(ctx context.Context, recipient, id string, processed bool) (*models.Message, error)
}

type InvitationService interface {
	Create(ctx context.Context, mdid string) (*models.Invitation, error)
	Read(ctx context.Context, id string) (*models.Invitation, error)
	Accept(ctx context.Context, id, contact string) (*models.Invitation, error)
	Consume(ctx context.Context, id, mdid string) (*models.Invitation, error)
	Delete(ctx context.Context, id, mdid string) error
}

type MetadataService interface {
	Put(ctx context.Context, caller, address, payload, signature string) error
	Get(ctx context.Context, address string) (*models.MetadataBlob, error)
}

// Services bundles the backends a GRPCServer dispatches to.
type Services struct {
	Auth        AuthService
	Trust       TrustService
	Messages    MessageService
	Invitations InvitationService
	Metadata    MetadataService
}

type GRPCServer struct {
	address     string
	logger      logging.Logger
	auth        AuthService
	trust       TrustService
	messages    MessageService
	invitations InvitationService
	metadata    MetadataService
}

var _ api.MetadataServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(address string, l logging.Logger, s Services) *GRPCServer {
	return &GRPCServer{
		address:     address,
		logger:      l.With("module", "grpc_server"),
		auth:        s.Auth,
		trust:       s.Trust,
		messages:    s.Messages,
		invitations: s.Invitations,
		metadata:    s.Metadata,
	}
}

// newServer builds the grpc.Server with interceptors and the service
// registered. Split out so tests can serve it on an in-memory listener.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	api.RegisterMetadataServiceServer(srv, s)
	return srv
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
