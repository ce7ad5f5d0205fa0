package app

import (
	"github.com/gin-gonic/gin"

	"github.com/draftflow/core/internal/middleware"
	"github.com/draftflow/core/internal/modules/article"
	"github.com/draftflow/core/internal/modules/cover"
	"github.com/draftflow/core/internal/modules/generation"
	"github.com/draftflow/core/internal/modules/health"
	"github.com/draftflow/core/internal/modules/project"
	"github.com/draftflow/core/internal/modules/webhook"
	pkgredis "github.com/draftflow/core/internal/pkg/redis"
	"github.com/draftflow/core/internal/pkg/response"
)

func (a *App) registerRoutes(rc *pkgredis.Client, gen *generation.Service, hooks *webhook.Service) {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuth())
	api.Use(middleware.RateLimit(rc.Raw()))
	api.Use(middleware.Idempotence(rc.Raw()))

	authMW := middleware.Auth()

	covers := cover.NewService(a.db, a.cfg.CoverStorage, a.logger)
	articles := article.NewService(a.db, gen, hooks, a.logger)

	article.NewHandler(articles, covers).RegisterRoutes(api, authMW)
	project.NewHandler(project.NewService(a.db, a.logger)).RegisterRoutes(api, authMW)
	webhook.NewHandler(hooks).RegisterRoutes(api, authMW)
	generation.NewHandler(gen).RegisterRoutes(api, authMW)
	health.NewHandler(a.db, rc, a.sched).RegisterRoutes(api)
}
