package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "walletmeta.MetadataService"

// Method names of MetadataService.
const (
	MethodPing              = "Ping"
	MethodGetNonce          = "GetNonce"
	MethodGetToken          = "GetToken"
	MethodGetTrustedList    = "GetTrustedList"
	MethodGetTrusted        = "GetTrusted"
	MethodPutTrusted        = "PutTrusted"
	MethodDeleteTrusted     = "DeleteTrusted"
	MethodPostMessage       = "PostMessage"
	MethodGetMessages       = "GetMessages"
	MethodGetMessage        = "GetMessage"
	MethodProcessMessage    = "ProcessMessage"
	MethodCreateInvitation  = "CreateInvitation"
	MethodReadInvitation    = "ReadInvitation"
	MethodAcceptInvitation  = "AcceptInvitation"
	MethodConsumeInvitation = "ConsumeInvitation"
	MethodDeleteInvitation  = "DeleteInvitation"
	MethodPutMetadata       = "PutMetadata"
	MethodGetMetadata       = "GetMetadata"
)

// FullMethod returns the gRPC path of a MetadataService method.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// MetadataServiceServer is implemented by the metadata store.
type MetadataServiceServer interface {
	Ping(context.Context, *emptypb.Empty) (*PingResponse, error)
	GetNonce(context.Context, *emptypb.Empty) (*NonceResponse, error)
	GetToken(context.Context, *TokenRequest) (*TokenResponse, error)
	GetTrustedList(context.Context, *emptypb.Empty) (*TrustedList, error)
	GetTrusted(context.Context, *TrustedRequest) (*TrustedResponse, error)
	PutTrusted(context.Context, *TrustedRequest) (*TrustedResponse, error)
	DeleteTrusted(context.Context, *TrustedRequest) (*TrustedResponse, error)
	PostMessage(context.Context, *PostMessageRequest) (*Message, error)
	GetMessages(context.Context, *GetMessagesRequest) (*MessageList, error)
	GetMessage(context.Context, *MessageRequest) (*Message, error)
	ProcessMessage(context.Context, *ProcessMessageRequest) (*Message, error)
	CreateInvitation(context.Context, *emptypb.Empty) (*Invitation, error)
	ReadInvitation(context.Context, *InvitationRequest) (*Invitation, error)
	AcceptInvitation(context.Context, *InvitationRequest) (*Invitation, error)
	ConsumeInvitation(context.Context, *InvitationRequest) (*Invitation, error)
	DeleteInvitation(context.Context, *InvitationRequest) (*emptypb.Empty, error)
	PutMetadata(context.Context, *PutMetadataRequest) (*emptypb.Empty, error)
	GetMetadata(context.Context, *MetadataRequest) (*MetadataResponse, error)
}

// unary adapts a typed server method to a grpc.MethodDesc, running it through
// the server interceptor chain the same way generated code does.
func unary[Req, Resp any](name string, call func(MetadataServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MetadataServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(MetadataServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes MetadataService for grpc.Server registration.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MetadataServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, MetadataServiceServer.Ping),
		unary(MethodGetNonce, MetadataServiceServer.GetNonce),
		unary(MethodGetToken, MetadataServiceServer.GetToken),
		unary(MethodGetTrustedList, MetadataServiceServer.GetTrustedList),
		unary(MethodGetTrusted, MetadataServiceServer.GetTrusted),
		unary(MethodPutTrusted, MetadataServiceServer.PutTrusted),
		unary(MethodDeleteTrusted, MetadataServiceServer.DeleteTrusted),
		unary(MethodPostMessage, MetadataServiceServer.PostMessage),
		unary(MethodGetMessages, MetadataServiceServer.GetMessages),
		unary(MethodGetMessage, MetadataServiceServer.GetMessage),
		unary(MethodProcessMessage, MetadataServiceServer.ProcessMessage),
		unary(MethodCreateInvitation, MetadataServiceServer.CreateInvitation),
		unary(MethodReadInvitation, MetadataServiceServer.ReadInvitation),
		unary(MethodAcceptInvitation, MetadataServiceServer.AcceptInvitation),
		unary(MethodConsumeInvitation, MetadataServiceServer.ConsumeInvitation),
		unary(MethodDeleteInvitation, MetadataServiceServer.DeleteInvitation),
		unary(MethodPutMetadata, MetadataServiceServer.PutMetadata),
		unary(MethodGetMetadata, MetadataServiceServer.GetMetadata),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "walletmeta/metadata.json",
}

// RegisterMetadataServiceServer registers srv on s.
func RegisterMetadataServiceServer(s grpc.ServiceRegistrar, srv MetadataServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// MetadataServiceClient is the client side of MetadataService.
type MetadataServiceClient interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*PingResponse, error)
	GetNonce(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*NonceResponse, error)
	GetToken(ctx context.Context, in *TokenRequest, opts ...grpc.CallOption) (*TokenResponse, error)
	GetTrustedList(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*TrustedList, error)
	GetTrusted(ctx context.Context, in *TrustedRequest, opts ...grpc.CallOption) (*TrustedResponse, error)
	PutTrusted(ctx context.Context, in *TrustedRequest, opts ...grpc.CallOption) (*TrustedResponse, error)
	DeleteTrusted(ctx context.Context, in *TrustedRequest, opts ...grpc.CallOption) (*TrustedResponse, error)
	PostMessage(ctx context.Context, in *PostMessageRequest, opts ...grpc.CallOption) (*Message, error)
	GetMessages(ctx context.Context, in *GetMessagesRequest, opts ...grpc.CallOption) (*MessageList, error)
	GetMessage(ctx context.Context, in *MessageRequest, opts ...grpc.CallOption) (*Message, error)
	ProcessMessage(ctx context.Context, in *ProcessMessageRequest, opts ...grpc.CallOption) (*Message, error)
	CreateInvitation(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*Invitation, error)
	ReadInvitation(ctx context.Context, in *InvitationRequest, opts ...grpc.CallOption) (*Invitation, error)
	AcceptInvitation(ctx context.Context, in *InvitationRequest, opts ...grpc.CallOption) (*Invitation, error)
	ConsumeInvitation(ctx context.Context, in *InvitationRequest, opts ...grpc.CallOption) (*Invitation, error)
	DeleteInvitation(ctx context.Context, in *InvitationRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	PutMetadata(ctx context.Context, in *PutMetadataRequest, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetMetadata(ctx context.Context, in *MetadataRequest, opts ...grpc.CallOption) (*MetadataResponse, error)
}

type metadataServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMetadataServiceClient wraps a connection. The connection must request
// the JSON codec, e.g. with grpc.CallContentSubtype(CodecName).
func NewMetadataServiceClient(cc grpc.ClientConnInterface) MetadataServiceClient {
	return &metadataServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metadataServiceClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *metadataServiceClient) GetNonce(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*NonceResponse, error) {
	return invoke[NonceResponse](ctx, c.cc, MethodGetNonce, in, opts)
}

func (c *metadataServiceClient) GetToken(ctx context.Context, in *TokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, MethodGetToken, in, opts)
}

func (c *metadataServiceClient) GetTrustedList(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*TrustedList, error) {
	return invoke[TrustedList](ctx, c.cc, MethodGetTrustedList, in, opts)
}

func (c *metadataServiceClient) GetTrusted(ctx context.Context, in *TrustedRequest, opts ...grpc.CallOption) (*TrustedResponse, error) {
	return invoke[TrustedResponse](ctx, c.cc, MethodGetTrusted, in, opts)
}

func (c *metadataServiceClient) PutTrusted(ctx context.Context, in *TrustedRequest, opts ...grpc.CallOption) (*TrustedResponse, error) {
	return invoke[TrustedResponse](ctx, c.cc, MethodPutTrusted, in, opts)
}

func (c *metadataServiceClient) DeleteTrusted(ctx context.Context, in *TrustedRequest, opts ...grpc.CallOption) (*TrustedResponse, error) {
	return invoke[TrustedResponse](ctx, c.cc, MethodDeleteTrusted, in, opts)
}

func (c *metadataServiceClient) PostMessage(ctx context.Context, in *PostMessageRequest, opts ...grpc.CallOption) (*Message, error) {
	return invoke[Message](ctx, c.cc, MethodPostMessage, in, opts)
}

func (c *metadataServiceClient) GetMessages(ctx context.Context, in *GetMessagesRequest, opts ...grpc.CallOption) (*MessageList, error) {
	return invoke[MessageList](ctx, c.cc, MethodGetMessages, in, opts)
}

func (c *metadataServiceClient) GetMessage(ctx context.Context, in *MessageRequest, opts ...grpc.CallOption) (*Message, error) {
	return invoke[Message](ctx, c.cc, MethodGetMessage, in, opts)
}

func (c *metadataServiceClient) ProcessMessage(ctx context.Context, in *ProcessMessageRequest, opts ...grpc.CallOption) (*Message, error) {
	return invoke[Message](ctx, c.cc, MethodProcessMessage, in, opts)
}

func (c *metadataServiceClient) CreateInvitation(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*Invitation, error) {
	return invoke[Invitation](ctx, c.cc, MethodCreateInvitation, in, opts)
}

func (c *metadataServiceClient) ReadInvitation(ctx context.Context, in *InvitationRequest, opts ...grpc.CallOption) (*Invitation, error) {
	return invoke[Invitation](ctx, c.cc, MethodReadInvitation, in, opts)
}

func (c *metadataServiceClient) AcceptInvitation(ctx context.Context, in *InvitationRequest, opts ...grpc.CallOption) (*Invitation, error) {
	return invoke[Invitation](ctx, c.cc, MethodAcceptInvitation, in, opts)
}

func (c *metadataServiceClient) ConsumeInvitation(ctx context.Context, in *InvitationRequest, opts ...grpc.CallOption) (*Invitation, error) {
	return invoke[Invitation](ctx, c.cc, MethodConsumeInvitation, in, opts)
}

func (c *metadataServiceClient) DeleteInvitation(ctx context.Context, in *InvitationRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodDeleteInvitation, in, opts)
}

func (c *metadataServiceClient) PutMetadata(ctx context.Context, in *PutMetadataRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodPutMetadata, in, opts)
}

func (c *metadataServiceClient) GetMetadata(ctx context.Context, in *MetadataRequest, opts ...grpc.CallOption) (*MetadataResponse, error) {
	return invoke[MetadataResponse](ctx, c.cc, MethodGetMetadata, in, opts)
}
