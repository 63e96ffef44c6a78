package grpc

import (
	"context"
	"io"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/dmitrijs2005/docshare/internal/server/auth"
	"github.com/dmitrijs2005/docshare/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// chunkSize bounds each Download message.
const chunkSize = 32 << 10

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("OK"), nil
}

func (s *GRPCServer) MintLink(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.StringValue, error) {

	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	if req.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid file id")
	}

	link, err := s.links.MintLink(ctx, req.GetValue(), claims)
	if err != nil {
		return nil, s.toStatus(ctx, MethodMintLink, err)
	}

	return wrapperspb.String(link), nil
}

// RedeemLink checks a link against the caller's metadata token and returns
// the file's metadata.
func (s *GRPCServer) RedeemLink(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {

	f, err := s.links.RedeemLink(ctx, req.GetValue(), accessToken(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, MethodRedeemLink, err)
	}

	out, err := fileStruct(f)
	if err != nil {
		return nil, s.toStatus(ctx, MethodRedeemLink, err)
	}
	return out, nil
}

// Download redeems a link and streams the file content.
func (s *GRPCServer) Download(req *wrapperspb.StringValue, stream grpc.ServerStreamingServer[wrapperspb.BytesValue]) error {
	ctx := stream.Context()

	f, err := s.links.RedeemLink(ctx, req.GetValue(), accessToken(ctx))
	if err != nil {
		return s.toStatus(ctx, MethodDownload, err)
	}

	rc, err := s.files.Open(ctx, f)
	if err != nil {
		return s.toStatus(ctx, MethodDownload, err)
	}
	defer rc.Close()

	buf := make([]byte, chunkSize)
	for {
		n, err := rc.Read(buf)
		if n > 0 {
			if sendErr := stream.Send(wrapperspb.Bytes(buf[:n])); sendErr != nil {
				return sendErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return s.toStatus(ctx, MethodDownload, common.ErrorInternal)
		}
	}
}

func fileStruct(f *models.File) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":          f.ID,
		"filename":    f.Filename,
		"uploaded_by": f.UploadedBy,
		"size":        f.Size,
		"checksum":    f.Checksum,
	})
}
