// Package server assembles and runs the PotKeeper server: storage, guard
// store, receipt archive, metrics listener and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/logging"
	"github.com/dmitrijs2005/potkeeper/internal/server/archive"
	"github.com/dmitrijs2005/potkeeper/internal/server/config"
	"github.com/dmitrijs2005/potkeeper/internal/server/guard"
	"github.com/dmitrijs2005/potkeeper/internal/server/ledger"
	"github.com/dmitrijs2005/potkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/potkeeper/internal/server/services"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/potkeeper/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	store    guard.Store
	registry *prometheus.Registry
	grpc     *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, c.LogLevel)
	if err != nil {
		return nil, err
	}

	repos, err := openRepositories(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := openStore(c)
	if err != nil {
		repos.Close()
		return nil, fmt.Errorf("guard store init error: %w", err)
	}

	archiver, err := openArchiver(ctx, c)
	if err != nil {
		repos.Close()
		store.Close()
		return nil, fmt.Errorf("archive init error: %w", err)
	}

	deriver, err := cryptox.NewDeriver(c.ProgramID)
	if err != nil {
		repos.Close()
		store.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	clock := timex.SystemClock{}
	env := &services.Env{
		Repos:         repos,
		Deriver:       deriver,
		Gateway:       ledger.NewGateway(deriver, clock),
		Verifier:      services.NewVerifier(store, c.SignatureWindow),
		Clock:         clock,
		Rent:          ledger.RentSchedule{PerByte: c.RentPerByte, Base: c.RentBase},
		RentSponsored: c.RentSponsored,
		Metrics:       m,
		Logger:        logger,
	}

	svc := gs.Services{
		Auth: services.NewAuthService(env, store, services.AuthConfig{
			Secret:          []byte(c.SecretKey),
			AccessValidity:  c.AccessTokenValidityDuration,
			RefreshValidity: c.RefreshTokenValidityDuration,
		}),
		Profiles: services.NewProfileService(env),
		Pots:     services.NewPotService(env, archiver),
		Accounts: services.NewAccountService(env, store, services.FaucetConfig{
			Enabled:      c.FaucetEnabled,
			MaxAmount:    c.FaucetMaxAmount,
			LimitPerHour: c.FaucetLimitPerHour,
		}),
	}

	return &App{
		config:   c,
		logger:   logger,
		repos:    repos,
		store:    store,
		registry: registry,
		grpc:     gs.NewGRPCServer(c.EndpointAddrGRPC, logger, svc, m, deriver.ProgramID(), clock),
	}, nil
}

func openRepositories(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == config.MemoryDSN {
		return memory.NewManager(), nil
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	m := repomanager.NewPostgresRepositoryManager(db, c.TxMaxRetries)
	if err := m.RunMigrations(ctx); err != nil {
		m.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return m, nil
}

func openStore(c *config.Config) (guard.Store, error) {
	if c.RedisAddr == "" {
		return guard.NewMemoryStore(timex.SystemClock{}), nil
	}
	return guard.NewRedisStore(c.RedisAddr, c.RedisPassword, c.RedisDB)
}

func openArchiver(ctx context.Context, c *config.Config) (archive.Archiver, error) {
	if c.S3Bucket == "" {
		return archive.Nop{}, nil
	}
	return archive.NewS3Archiver(ctx, archive.S3Config{
		User:     c.S3RootUser,
		Password: c.S3RootPassword,
		Bucket:   c.S3Bucket,
		Region:   c.S3Region,
		Endpoint: c.S3BaseEndpoint,
	})
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := metrics.Serve(ctx, app.config.MetricsAddr, app.registry, app.logger); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// releases the storage and guard store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Warn(ctx, "guard store close", "error", err)
	}
	if err := app.repos.Close(); err != nil {
		app.logger.Warn(ctx, "repositories close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
