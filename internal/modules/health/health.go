// Package health exposes the liveness endpoint used by deploy probes.
package health

import (
	"time"

	"github.com/draftflow/core/internal/pkg/cron"
	"github.com/draftflow/core/internal/pkg/redis"
	"github.com/draftflow/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db        *gorm.DB
	redis     *redis.Client
	scheduler *cron.Scheduler
	startedAt time.Time
}

func NewHandler(db *gorm.DB, rc *redis.Client, scheduler *cron.Scheduler) *Handler {
	return &Handler{db: db, redis: rc, scheduler: scheduler, startedAt: time.Now()}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
}

func (h *Handler) health(c *gin.Context) {
	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = err.Error()
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = err.Error()
	}

	redisStatus := "ok"
	if err := h.redis.Ping(c.Request.Context()); err != nil {
		redisStatus = err.Error()
	}

	response.OK(c, gin.H{
		"status":   "up",
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
		"database": dbStatus,
		"redis":    redisStatus,
		"jobs":     h.scheduler.List(),
	})
}
