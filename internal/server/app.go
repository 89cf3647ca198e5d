// Package server wires the backend together: configuration, logging,
// database with migrations, object storage, the identity pool, and the sync
// gateway. The wiring happens exactly once, at construction, and every
// component receives its collaborators explicitly; nothing is reached
// through ambient globals. There is no teardown short of process exit
// beyond Close.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-jwt/jwt/v5"

	"github.com/memoriesapp/memories/internal/blob"
	"github.com/memoriesapp/memories/internal/dbx"
	"github.com/memoriesapp/memories/internal/gateway"
	"github.com/memoriesapp/memories/internal/identity"
	"github.com/memoriesapp/memories/internal/logging"
	"github.com/memoriesapp/memories/internal/memory"
	"github.com/memoriesapp/memories/internal/server/config"
	"github.com/memoriesapp/memories/internal/server/repositories/repomanager"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	rm      repomanager.RepositoryManager
	pool    *identity.Pool
	gateway *gateway.Gateway
}

// NewApp builds the process-wide backend state. identityKeys resolves the
// verification keys for federated tokens and is injected because key
// management is deployment-specific.
func NewApp(ctx context.Context, cfg *config.Config, identityKeys jwt.Keyfunc) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	pool := identity.NewPool(rm.Users(db), logger, identity.PoolOptions{
		SessionSecret:   []byte(cfg.SecretKey),
		SessionValidity: cfg.SessionValidityDuration,
		Providers:       cfg.TokenProviders,
		IdentityKeys:    identityKeys,
	})

	blobs, err := blob.NewS3Store(ctx, blob.S3Config{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
	}, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	gw := gateway.New(pool, rm.Records(db), blobs, blob.NewAssetResolver(cfg.AssetsDir), logger)

	return &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		rm:      rm,
		pool:    pool,
		gateway: gw,
	}, nil
}

// SeedDemo inserts the bundled demo memories for owner in a single
// transaction, so a partial seed never survives a failure. Intended for
// development databases; re-seeding an already seeded owner fails on the
// (owner, moment) key.
func (app *App) SeedDemo(ctx context.Context, owner string) error {
	return dbx.WithTx(ctx, app.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := app.rm.Records(tx)
		for _, m := range memory.MockMemories(owner) {
			if err := repo.Create(ctx, m.ToRecord()); err != nil {
				return err
			}
		}
		return nil
	})
}

// Gateway exposes the sync gateway to embedders.
func (app *App) Gateway() *gateway.Gateway {
	return app.gateway
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run keeps the backend alive until a signal arrives, logging auth status
// transitions as they happen.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting backend")
	app.initSignalHandler(cancelFunc)

	for status := range app.gateway.AuthStatusStream(ctx) {
		app.logger.Info(ctx, "auth status changed", "status", status.String())
	}

	app.logger.Info(ctx, "backend stopped")
}

// Close releases the database and tears down the identity event hub.
func (app *App) Close() error {
	app.pool.Close()
	return app.db.Close()
}
