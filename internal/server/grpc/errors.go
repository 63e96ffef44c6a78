package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/docshare/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps a service error to a gRPC status with a generic message.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	category := common.Category(err)

	var code codes.Code
	switch category {
	case common.ErrorBadRequest:
		code = codes.InvalidArgument
	case common.ErrorUnauthorized:
		code = codes.Unauthenticated
	case common.ErrorForbidden, common.ErrorNotVerified:
		code = codes.PermissionDenied
	case common.ErrorNotFound:
		code = codes.NotFound
	case common.ErrorAlreadyExists:
		code = codes.AlreadyExists
	default:
		code = codes.Internal
	}

	msg := category.Error()
	if errors.Is(err, common.ErrorNotVerified) {
		msg = common.ErrorNotVerified.Error()
	}

	if code == codes.Internal {
		s.logger.Error(ctx, "call failed", "method", method, "category", category.Error())
	}
	return status.Error(code, msg)
}
