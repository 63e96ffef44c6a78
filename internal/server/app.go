// Package server wires configuration, storage, token handling and the
// services into the HTTP and gRPC endpoints and runs them until a
// termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/docshare/internal/cryptox"
	"github.com/dmitrijs2005/docshare/internal/logging"
	"github.com/dmitrijs2005/docshare/internal/server/auth"
	"github.com/dmitrijs2005/docshare/internal/server/config"
	"github.com/dmitrijs2005/docshare/internal/server/httpapi"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/docshare/internal/server/services"
	"github.com/dmitrijs2005/docshare/internal/server/storage"

	gs "github.com/dmitrijs2005/docshare/internal/server/grpc"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// purgeInterval is how often expired refresh tokens and revocations are removed.
const purgeInterval = time.Hour

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	verifier    *auth.Verifier
	userService *services.UserService
	fileService *services.FileService
	linkService *services.LinkService
}

// newGateway returns the storage backend selected by the config.
func newGateway(ctx context.Context, c *config.Config) (storage.Gateway, error) {
	if c.StorageBackend == config.StorageS3 {
		return storage.NewS3Gateway(ctx, storage.S3Config{
			Region:       c.S3Region,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
		})
	}
	return storage.NewLocalGateway(c.UploadDir)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(c.LogLevel))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	applied, err := rm.RunMigrations(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	if len(applied) > 0 {
		logger.Info(ctx, "schema migrated", "versions", applied)
	}

	gw, err := newGateway(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	key, err := cryptox.ParseKey(c.CipherKey)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	cipher, err := cryptox.NewLinkCipher(key)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	issuer := auth.NewIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	verifier := auth.NewVerifier(issuer, rm.Revocations(db))

	us := services.NewUserService(db, rm, issuer, services.NewLogNotifier(logger), c)
	fs := services.NewFileService(db, rm, gw, logger)
	ls := services.NewLinkService(db, rm, gw, cipher, verifier, c)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		verifier:    verifier,
		userService: us,
		fileService: fs,
		linkService: ls,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger,
		app.userService, app.fileService, app.linkService, app.verifier, app.config.MaxUploadSize)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.linkService, app.fileService, app.verifier)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// runPurger removes expired token rows every purgeInterval until ctx is done.
func (app *App) runPurger(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.PurgeExpired(ctx)
			if err != nil {
				app.logger.Warn(ctx, "purge failed", "error", err.Error())
				continue
			}
			app.logger.Debug(ctx, "purged expired tokens", "count", n)
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.runPurger(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
	app.logger.Info(ctx, "Stopped")
}
