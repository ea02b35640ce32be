package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/roomloop/roomloop-backend/internal/data/db"
	"github.com/roomloop/roomloop-backend/internal/observability"
	"github.com/roomloop/roomloop-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services

	cancel       context.CancelFunc
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "roomloop-backend",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	gdb := pg.DB()
	if err := db.AutoMigrateAll(gdb); err != nil {
		log.Sync()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if err := db.EnsureIndexes(gdb); err != nil {
		log.Sync()
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	clientset, err := wireClients(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(gdb, log)

	serviceset, err := wireServices(gdb, log, cfg, reposet, clientset)
	if err != nil {
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset)
	middleware := wireMiddleware(log, cfg)
	router := wireRouter(log, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           gdb,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clientset,
		Services:     serviceset,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background pipeline loops. Safe to call once.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Services.PipelineWorker != nil {
		a.Services.PipelineWorker.Start(ctx)
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Starting HTTP server", "addr", addr)
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Clients.GcpVideo != nil {
		_ = a.Clients.GcpVideo.Close()
	}
	if a.Clients.GcpBucket != nil {
		_ = a.Clients.GcpBucket.Close()
	}
	if a.Clients.Cache != nil {
		_ = a.Clients.Cache.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
