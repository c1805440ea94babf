package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/walletmeta/internal/api"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"github.com/dmitrijs2005/walletmeta/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// toStatus maps service errors onto gRPC codes. Unknown errors are reported
// as Internal without their text.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorInvalidInput), errors.Is(err, common.ErrInvalidSignature):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrInvalidNonce), errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func toAPIMessage(m *models.Message) api.Message {
	return api.Message{
		ID:        m.ID,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Type:      m.Type,
		Payload:   m.Payload,
		Signature: m.Signature,
		Processed: m.Processed,
		Created:   m.CreatedAt.UnixMilli(),
	}
}

func toAPIInvitation(inv *models.Invitation) *api.Invitation {
	return &api.Invitation{ID: inv.ID, Mdid: inv.Mdid, Contact: inv.Contact}
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) GetNonce(ctx context.Context, _ *emptypb.Empty) (*api.NonceResponse, error) {
	nonce, err := s.auth.IssueNonce(ctx)
	if err != nil {
		s.logger.Error(ctx, "nonce", "error", err)
		return nil, toStatus(err)
	}
	return &api.NonceResponse{Nonce: nonce}, nil
}

func (s *GRPCServer) GetToken(ctx context.Context, req *api.TokenRequest) (*api.TokenResponse, error) {
	token, err := s.auth.Login(ctx, req.Mdid, req.Nonce, req.Signature)
	if err != nil {
		// any rejected proof is an authentication failure here
		if errors.Is(err, common.ErrInvalidSignature) || errors.Is(err, common.ErrorInvalidInput) {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return nil, toStatus(err)
	}
	s.logger.Info(ctx, "token issued", "mdid", req.Mdid)
	return &api.TokenResponse{Token: token}, nil
}

func (s *GRPCServer) GetTrustedList(ctx context.Context, _ *emptypb.Empty) (*api.TrustedList, error) {
	mdid := identityFrom(ctx)
	contacts, err := s.trust.List(ctx, mdid)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.TrustedList{Mdid: mdid, Contacts: contacts}, nil
}

func (s *GRPCServer) GetTrusted(ctx context.Context, req *api.TrustedRequest) (*api.TrustedResponse, error) {
	ok, err := s.trust.IsTrusted(ctx, identityFrom(ctx), req.Mdid)
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.TrustedResponse{Mdid: req.Mdid, Trusted: ok}, nil
}

func (s *GRPCServer) PutTrusted(ctx context.Context, req *api.TrustedRequest) (*api.TrustedResponse, error) {
	if err := s.trust.Add(ctx, identityFrom(ctx), req.Mdid); err != nil {
		return nil, toStatus(err)
	}
	return &api.TrustedResponse{Mdid: req.Mdid, Trusted: true}, nil
}

func (s *GRPCServer) DeleteTrusted(ctx context.Context, req *api.TrustedRequest) (*api.TrustedResponse, error) {
	if err := s.trust.Remove(ctx, identityFrom(ctx), req.Mdid); err != nil {
		return nil, toStatus(err)
	}
	return &api.TrustedResponse{Mdid: req.Mdid, Trusted: false}, nil
}

func (s *GRPCServer) PostMessage(ctx context.Context, req *api.PostMessageRequest) (*api.Message, error) {
	m, err := s.messages.Post(ctx, identityFrom(ctx), req.Recipient, req.Type, req.Payload, req.Signature)
	if err != nil {
		return nil, toStatus(err)
	}
	out := toAPIMessage(m)
	return &out, nil
}

func (s *GRPCServer) GetMessages(ctx context.Context, req *api.GetMessagesRequest) (*api.MessageList, error) {
	list, err := s.messages.List(ctx, identityFrom(ctx), req.Processed, req.AfterID)
	if err != nil {
		return nil, toStatus(err)
	}
	out := &api.MessageList{Messages: make([]api.Message, 0, len(list))}
	for i := range list {
		out.Messages = append(out.Messages, toAPIMessage(&list[i]))
	}
	return out, nil
}

func (s *GRPCServer) GetMessage(ctx context.Context, req *api.MessageRequest) (*api.Message, error) {
	m, err := s.messages.Get(ctx, identityFrom(ctx), req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	out := toAPIMessage(m)
	return &out, nil
}

func (s *GRPCServer) ProcessMessage(ctx context.Context, req *api.ProcessMessageRequest) (*api.Message, error) {
	m, err := s.messages.SetProcessed(ctx, identityFrom(ctx), req.ID, req.Processed)
	if err != nil {
		return nil, toStatus(err)
	}
	out := toAPIMessage(m)
	return &out, nil
}

func (s *GRPCServer) CreateInvitation(ctx context.Context, _ *emptypb.Empty) (*api.Invitation, error) {
	inv, err := s.invitations.Create(ctx, identityFrom(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return toAPIInvitation(inv), nil
}

func (s *GRPCServer) ReadInvitation(ctx context.Context, req *api.InvitationRequest) (*api.Invitation, error) {
	inv, err := s.invitations.Read(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toAPIInvitation(inv), nil
}

func (s *GRPCServer) AcceptInvitation(ctx context.Context, req *api.InvitationRequest) (*api.Invitation, error) {
	inv, err := s.invitations.Accept(ctx, req.ID, identityFrom(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return toAPIInvitation(inv), nil
}

func (s *GRPCServer) ConsumeInvitation(ctx context.Context, req *api.InvitationRequest) (*api.Invitation, error) {
	inv, err := s.invitations.Consume(ctx, req.ID, identityFrom(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return toAPIInvitation(inv), nil
}

func (s *GRPCServer) DeleteInvitation(ctx context.Context, req *api.InvitationRequest) (*emptypb.Empty, error) {
	if err := s.invitations.Delete(ctx, req.ID, identityFrom(ctx)); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) PutMetadata(ctx context.Context, req *api.PutMetadataRequest) (*emptypb.Empty, error) {
	if err := s.metadata.Put(ctx, identityFrom(ctx), req.Address, req.Payload, req.Signature); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) GetMetadata(ctx context.Context, req *api.MetadataRequest) (*api.MetadataResponse, error) {
	blob, err := s.metadata.Get(ctx, req.Address)
	if errors.Is(err, common.ErrorNotFound) {
		return &api.MetadataResponse{Address: req.Address, Found: false}, nil
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return &api.MetadataResponse{Address: blob.Address, Payload: blob.Payload, Signature: blob.Signature, Found: true}, nil
}
