package app

import (
	"context"
	"time"

	"github.com/draftflow/core/internal/config"
	"github.com/draftflow/core/internal/modules/generation"
	pkgcron "github.com/draftflow/core/internal/pkg/cron"
	"go.uber.org/zap"
)

// registerCronJobs registers the background jobs that drive the generation
// and publishing pipelines.
func registerCronJobs(sched *pkgcron.Scheduler, gen *generation.Service, cfg *config.AppConfig, logger *zap.Logger) {
	cronLogger := logger.Named("cron")

	sched.Register(pkgcron.Job{
		Name:        "reconcile_generations",
		Description: "poll the write-service for in-flight generations",
		Interval:    cfg.WriteService.PollInterval(),
		RunOnStart:  true,
		Fn: func(ctx context.Context) error {
			if err := gen.ReconcileOnce(ctx); err != nil {
				cronLogger.Warn("reconcile tick failed", zap.Error(err))
				return err
			}
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "dispatch_generation_queue",
		Description: "start generation for due queue items",
		Interval:    30 * time.Second,
		RunOnStart:  true,
		Fn: func(ctx context.Context) error {
			if err := gen.DispatchDue(ctx); err != nil {
				cronLogger.Warn("queue dispatch failed", zap.Error(err))
				return err
			}
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "publish_scheduled_articles",
		Description: "publish articles whose schedule has arrived",
		Interval:    time.Minute,
		RunOnStart:  true,
		Fn: func(ctx context.Context) error {
			if err := gen.PublishDue(ctx); err != nil {
				cronLogger.Warn("scheduled publish failed", zap.Error(err))
				return err
			}
			return nil
		},
	})
}
