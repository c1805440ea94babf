package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/api"
	"github.com/dmitrijs2005/walletmeta/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

// IdentityKey holds the authenticated metadata identity in a request context.
const IdentityKey ctxKey = "mdid"

// publicMethods need no token. PutMetadata accepts one optionally.
var publicMethods = map[string]bool{
	api.FullMethod(api.MethodPing):        true,
	api.FullMethod(api.MethodGetNonce):    true,
	api.FullMethod(api.MethodGetToken):    true,
	api.FullMethod(api.MethodGetMetadata): true,
}

var optionalTokenMethods = map[string]bool{
	api.FullMethod(api.MethodPutMetadata): true,
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return ""
	}
	token, found := strings.CutPrefix(values[0], common.BearerPrefix)
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	token := bearerToken(ctx)
	if token == "" {
		if optionalTokenMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	mdid, err := s.auth.Authenticate(token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	return handler(context.WithValue(ctx, IdentityKey, mdid), req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	switch code {
	case codes.OK, codes.NotFound, codes.Unauthenticated, codes.InvalidArgument, codes.AlreadyExists, codes.PermissionDenied:
		s.logger.Info(ctx, "rpc", args...)
	default:
		s.logger.Error(ctx, "rpc", append(args, "error", err)...)
	}
	return resp, err
}

// identityFrom returns the caller set by accessTokenInterceptor, or "".
func identityFrom(ctx context.Context) string {
	v, _ := ctx.Value(IdentityKey).(string)
	return v
}
