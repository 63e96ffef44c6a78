// Package grpc exposes the link operations over gRPC. Messages are the
// protobuf well-known types, so the service needs no generated code.
package grpc

import (
	"context"
	"io"
	"net"

	"github.com/dmitrijs2005/docshare/internal/logging"
	"github.com/dmitrijs2005/docshare/internal/server/auth"
	"github.com/dmitrijs2005/docshare/internal/server/models"
	"google.golang.org/grpc"
)

type LinkService interface {
	MintLink(ctx context.Context, fileID int64, requester *auth.Claims) (string, error)
	RedeemLink(ctx context.Context, linkToken, identityToken string) (*models.File, error)
}

type FileService interface {
	Open(ctx context.Context, f *models.File) (io.ReadCloser, error)
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

type GRPCServer struct {
	address  string
	links    LinkService
	files    FileService
	verifier TokenVerifier
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, ls LinkService, fs FileService, v TokenVerifier) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		links:    ls,
		files:    fs,
		verifier: v,
	}
}

// newServer attaches the link service and its interceptors to a new server.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamLogInterceptor),
	)
	srv.RegisterService(&LinkServiceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
