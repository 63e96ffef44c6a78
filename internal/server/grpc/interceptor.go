package grpc

import (
	"context"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/dmitrijs2005/docshare/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// authenticated lists the methods that need verified claims in the context.
var authenticated = map[string]bool{
	MethodMintLink: true,
}

// accessToken returns the identity token carried in call metadata.
func accessToken(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if authenticated[info.FullMethod] {

		token := accessToken(ctx)
		if len(token) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		claims, err := s.verifier.Verify(ctx, token)
		if err != nil {
			if auth.IsAuthError(err) {
				return nil, status.Error(codes.Unauthenticated, "invalid token")
			}
			return nil, s.toStatus(ctx, info.FullMethod, err)
		}

		ctx = auth.WithClaims(ctx, claims)

	}

	return handler(ctx, req)
}

func (s *GRPCServer) streamLogInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	err := handler(srv, ss)
	s.logger.Info(ss.Context(), "stream", "method", info.FullMethod, "code", status.Code(err).String())
	return err
}
