package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/api"
	"github.com/dmitrijs2005/walletmeta/internal/client/models"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/samber/lo"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      api.MetadataServiceClient
}

func withAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

// timeoutInterceptor bounds calls whose context has no deadline yet.
func (s *GRPCClient) timeoutInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, ok := ctx.Deadline(); !ok && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient creates a client for endpointURL. The connection is
// established lazily on the first call.
func NewGRPCClient(endpointURL string, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	conn, err := grpc.NewClient(s.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
		grpc.WithUnaryInterceptor(s.timeoutInterceptor),
	)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewMetadataServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return common.ErrRemoteUnavailable
	}
	return nil
}

func (s *GRPCClient) GetNonce(ctx context.Context) (string, error) {
	resp, err := s.client.GetNonce(ctx, &emptypb.Empty{})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Nonce, nil
}

func (s *GRPCClient) GetToken(ctx context.Context, mdid, nonce, signature string) (string, error) {
	resp, err := s.client.GetToken(ctx, &api.TokenRequest{Mdid: mdid, Nonce: nonce, Signature: signature})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Token, nil
}

func (s *GRPCClient) TrustedList(ctx context.Context, token string) ([]string, error) {
	resp, err := s.client.GetTrustedList(withAccessToken(ctx, token), &emptypb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Contacts, nil
}

func (s *GRPCClient) IsTrusted(ctx context.Context, token, mdid string) (bool, error) {
	resp, err := s.client.GetTrusted(withAccessToken(ctx, token), &api.TrustedRequest{Mdid: mdid})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Trusted, nil
}

func (s *GRPCClient) AddTrusted(ctx context.Context, token, mdid string) (bool, error) {
	resp, err := s.client.PutTrusted(withAccessToken(ctx, token), &api.TrustedRequest{Mdid: mdid})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Trusted, nil
}

// RemoveTrusted reports success once mdid is no longer trusted.
func (s *GRPCClient) RemoveTrusted(ctx context.Context, token, mdid string) (bool, error) {
	resp, err := s.client.DeleteTrusted(withAccessToken(ctx, token), &api.TrustedRequest{Mdid: mdid})
	if err != nil {
		return false, s.mapError(err)
	}
	return !resp.Trusted, nil
}

func (s *GRPCClient) PostMessage(ctx context.Context, token string, m OutgoingMessage) (*models.Message, error) {
	req := &api.PostMessageRequest{Recipient: m.Recipient, Type: m.Type, Payload: m.Payload, Signature: m.Signature}
	resp, err := s.client.PostMessage(withAccessToken(ctx, token), req)
	if err != nil {
		return nil, s.mapError(err)
	}
	msg := toModelMessage(*resp)
	return &msg, nil
}

func (s *GRPCClient) Messages(ctx context.Context, token string, q MessageQuery) ([]models.Message, error) {
	resp, err := s.client.GetMessages(withAccessToken(ctx, token), &api.GetMessagesRequest{Processed: q.Processed, AfterID: q.AfterID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return lo.Map(resp.Messages, func(m api.Message, _ int) models.Message { return toModelMessage(m) }), nil
}

func (s *GRPCClient) Message(ctx context.Context, token, id string) (*models.Message, error) {
	resp, err := s.client.GetMessage(withAccessToken(ctx, token), &api.MessageRequest{ID: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	msg := toModelMessage(*resp)
	return &msg, nil
}

func (s *GRPCClient) ProcessMessage(ctx context.Context, token, id string, processed bool) (bool, error) {
	resp, err := s.client.ProcessMessage(withAccessToken(ctx, token), &api.ProcessMessageRequest{ID: id, Processed: processed})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Processed == processed, nil
}

func (s *GRPCClient) CreateInvitation(ctx context.Context, token string) (*RemoteInvitation, error) {
	resp, err := s.client.CreateInvitation(withAccessToken(ctx, token), &emptypb.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return toRemoteInvitation(resp), nil
}

func (s *GRPCClient) ReadInvitation(ctx context.Context, token, id string) (*RemoteInvitation, error) {
	resp, err := s.client.ReadInvitation(withAccessToken(ctx, token), &api.InvitationRequest{ID: id})
	if err != nil {
		return nil, s.mapInvitationError(err)
	}
	return toRemoteInvitation(resp), nil
}

func (s *GRPCClient) AcceptInvitation(ctx context.Context, token, id string) (*RemoteInvitation, error) {
	resp, err := s.client.AcceptInvitation(withAccessToken(ctx, token), &api.InvitationRequest{ID: id})
	if err != nil {
		return nil, s.mapInvitationError(err)
	}
	return toRemoteInvitation(resp), nil
}

func (s *GRPCClient) ConsumeInvitation(ctx context.Context, token, id string) (*RemoteInvitation, error) {
	resp, err := s.client.ConsumeInvitation(withAccessToken(ctx, token), &api.InvitationRequest{ID: id})
	if err != nil {
		return nil, s.mapInvitationError(err)
	}
	return toRemoteInvitation(resp), nil
}

func (s *GRPCClient) DeleteInvitation(ctx context.Context, token, id string) error {
	_, err := s.client.DeleteInvitation(withAccessToken(ctx, token), &api.InvitationRequest{ID: id})
	if err != nil {
		return s.mapInvitationError(err)
	}
	return nil
}

func (s *GRPCClient) PutMetadata(ctx context.Context, token, address, payload, signature string) error {
	req := &api.PutMetadataRequest{Address: address, Payload: payload, Signature: signature}
	_, err := s.client.PutMetadata(withAccessToken(ctx, token), req)
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) GetMetadata(ctx context.Context, address string) (*Blob, error) {
	resp, err := s.client.GetMetadata(ctx, &api.MetadataRequest{Address: address})
	if err != nil {
		return nil, s.mapError(err)
	}
	if !resp.Found {
		return nil, common.ErrorNotFound
	}
	return &Blob{Payload: resp.Payload, Signature: resp.Signature}, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", common.ErrAuthFailure, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", common.ErrRemoteUnavailable, st.Message())
	case codes.NotFound:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) mapInvitationError(err error) error {
	mapped := s.mapError(err)
	if errors.Is(mapped, common.ErrorNotFound) {
		return common.ErrInvitationNotFound
	}
	return mapped
}

func toModelMessage(m api.Message) models.Message {
	return models.Message{
		ID:        m.ID,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Type:      m.Type,
		Payload:   m.Payload,
		Signature: m.Signature,
		Processed: m.Processed,
		Created:   time.UnixMilli(m.Created),
	}
}

func toRemoteInvitation(inv *api.Invitation) *RemoteInvitation {
	return &RemoteInvitation{ID: inv.ID, Inviter: inv.Mdid, Contact: inv.Contact}
}
