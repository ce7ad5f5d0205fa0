// Package app wires configuration, storage, middleware, modules and the
// background scheduler into one HTTP application.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/draftflow/core/internal/config"
	"github.com/draftflow/core/internal/database"
	"github.com/draftflow/core/internal/middleware"
	"github.com/draftflow/core/internal/modules/generation"
	"github.com/draftflow/core/internal/modules/webhook"
	"github.com/draftflow/core/internal/modules/writesvc"
	pkgcron "github.com/draftflow/core/internal/pkg/cron"
	pkgjwt "github.com/draftflow/core/internal/pkg/jwt"
	pkgredis "github.com/draftflow/core/internal/pkg/redis"
	"github.com/draftflow/core/internal/pkg/taskqueue"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler
}

// New initializes the application: config → DB → Redis → modules → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt_secret is required")
	}
	pkgjwt.Configure(cfg.JWTSecret, cfg.JWTIssuer)

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(corsConfig(cfg)))

	writeClient := writesvc.New(cfg.WriteService.URL, cfg.WriteService.Token)
	tasks := taskqueue.NewService(rc)
	hooks := webhook.NewService(db, logger)
	gen := generation.NewService(db, writeClient, tasks, hooks, logger)

	ctx, cancel := context.WithCancel(context.Background())
	sched := pkgcron.New()
	registerCronJobs(sched, gen, cfg, logger)
	go sched.Start(ctx)

	app := &App{cfg: cfg, router: router, db: db, logger: logger, cancel: cancel, sched: sched}
	app.registerRoutes(rc, gen, hooks)
	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background goroutines.
func (a *App) Shutdown() { a.cancel() }
