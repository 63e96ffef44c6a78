// Package httpapi is the HTTP boundary of the server: JSON endpoints for
// accounts and file listings, multipart upload, and link based download.
package httpapi

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/docshare/internal/logging"
	"github.com/dmitrijs2005/docshare/internal/server/auth"
	"github.com/dmitrijs2005/docshare/internal/server/models"
	"github.com/dmitrijs2005/docshare/internal/server/services"
)

type UserService interface {
	Signup(ctx context.Context, email, password string, role models.Role) (*services.TokenPair, error)
	VerifyEmail(ctx context.Context, token string) error
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error
}

type FileService interface {
	Upload(ctx context.Context, uploader *auth.Claims, filename string, r io.Reader) (*models.File, error)
	List(ctx context.Context, requester *auth.Claims) ([]*models.File, error)
	Open(ctx context.Context, f *models.File) (io.ReadCloser, error)
}

type LinkService interface {
	MintLink(ctx context.Context, fileID int64, requester *auth.Claims) (string, error)
	RedeemLink(ctx context.Context, linkToken, identityToken string) (*models.File, error)
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

type HTTPServer struct {
	address       string
	logger        logging.Logger
	users         UserService
	files         FileService
	links         LinkService
	verifier      TokenVerifier
	maxUploadSize int64
}

func NewHTTPServer(a string, l logging.Logger, us UserService, fs FileService, ls LinkService, v TokenVerifier, maxUploadSize int64) *HTTPServer {
	return &HTTPServer{
		address:       a,
		logger:        l.With("module", "http_server"),
		users:         us,
		files:         fs,
		links:         ls,
		verifier:      v,
		maxUploadSize: maxUploadSize,
	}
}

// Handler returns the routed handler wrapped in request logging.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ping", s.handlePing)

	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("GET "+services.VerifyEmailPath, s.handleVerifyEmail)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /refresh", s.handleRefresh)
	mux.Handle("POST /logout", s.requireAuth(s.handleLogout))

	mux.Handle("POST /files/upload", s.requireAuth(s.handleUpload))
	mux.Handle("GET /files", s.requireAuth(s.handleListFiles))
	mux.Handle("GET /files/link", s.requireAuth(s.handleMintLink))
	mux.HandleFunc("GET "+services.DownloadPath, s.handleDownload)

	return s.logRequests(mux)
}

func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
