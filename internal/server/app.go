// Package server assembles the metadata store: it opens PostgreSQL, applies
// migrations, picks the blob backend, connects the notification publisher,
// and runs the gRPC server until a termination signal arrives.
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

	"github.com/dmitrijs2005/walletmeta/internal/logging"
	"github.com/dmitrijs2005/walletmeta/internal/notify"
	"github.com/dmitrijs2005/walletmeta/internal/server/config"
	"github.com/dmitrijs2005/walletmeta/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/walletmeta/internal/server/services"

	gs "github.com/dmitrijs2005/walletmeta/internal/server/grpc"
)

const noncePurgeInterval = time.Minute

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	publisher notify.Publisher
	auth      *services.AuthService
	server    *gs.GRPCServer
}

// NewApp opens every backend named by c. The caller owns the returned App
// and must Run it; Run releases the backends on exit.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewLogger(c.LogFormat, os.Stdout)

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var blobs services.BlobStore
	switch c.MetadataBackend {
	case config.BackendS3:
		blobs, err = services.NewS3BlobStore(ctx, c)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
	default:
		blobs = services.NewPostgresBlobStore(db, rm)
	}

	publisher, err := notify.NewPublisher(c.NatsURL)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	as := services.NewAuthService(db, rm, c)
	srv := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, gs.Services{
		Auth:        as,
		Trust:       services.NewTrustService(db, rm),
		Messages:    services.NewMessageService(db, rm, publisher, logger),
		Invitations: services.NewInvitationService(db, rm),
		Metadata:    services.NewMetadataService(blobs),
	})

	logger.Info(ctx, "backends ready", "metadata_backend", c.MetadataBackend, "notifications", c.NatsURL != "")

	return &App{config: c, logger: logger, db: db, publisher: publisher, auth: as, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeNonces drops expired challenges periodically until ctx is done.
func (app *App) purgeNonces(ctx context.Context) {
	ticker := time.NewTicker(noncePurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.auth.PurgeExpiredNonces(ctx)
			if err != nil {
				app.logger.Warn(ctx, "nonce purge failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Debug(ctx, "expired nonces purged", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeNonces(ctx)
	}()

	wg.Wait()

	app.publisher.Close()
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
