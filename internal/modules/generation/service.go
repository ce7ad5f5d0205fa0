// Package generation orchestrates the external write-service: starting runs,
// reconciling in-flight progress into the database, draining the schedule
// queue and publishing due articles. The pipeline itself (research → writing →
// quality-control → validation → optimization) runs on the other side of the
// writesvc client.
package generation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/draftflow/core/internal/models"
	"github.com/draftflow/core/internal/modules/webhook"
	"github.com/draftflow/core/internal/modules/writesvc"
	"github.com/draftflow/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// TaskTypeRun is the redis task type tracking one generation run.
	TaskTypeRun = "generation:run"

	// maxConcurrentPolls bounds in-flight status requests per reconcile tick.
	maxConcurrentPolls = 8
)

var (
	ErrAlreadyGenerating = errors.New("article is already generating")
	ErrNotRetryable      = errors.New("article is not in a failed state")
	ErrNoGeneration      = errors.New("article has no generation run")
)

// Client is the slice of the write-service API this package needs.
type Client interface {
	Start(ctx context.Context, req writesvc.StartRequest) (*writesvc.StartResponse, error)
	Status(ctx context.Context, generationID string) (*writesvc.StatusResponse, error)
	RegenerateSection(ctx context.Context, req writesvc.RegenerateSectionRequest) (*writesvc.RegenerateSectionResponse, error)
}

// Service drives generation state for articles.
type Service struct {
	db     *gorm.DB
	client Client
	tasks  *taskqueue.Service
	hooks  *webhook.Service
	logger *zap.Logger
}

func NewService(db *gorm.DB, client Client, tasks *taskqueue.Service, hooks *webhook.Service, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		client: client,
		tasks:  tasks,
		hooks:  hooks,
		logger: logger.Named("generation"),
	}
}

// Start transitions an article to generating and launches a run. The queue
// item, if any, is consumed. The write-service call happens asynchronously;
// its failure surfaces as status failed plus generation_error.
func (s *Service) Start(ctx context.Context, article *models.ArticleModel, ownerUserID string) error {
	if article.Status == models.StatusGenerating {
		return ErrAlreadyGenerating
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ArticleModel{}).Where("id = ?", article.ID).Updates(map[string]interface{}{
			"status":                  models.StatusGenerating,
			"generation_progress":     0,
			"generation_phase":        models.PhaseResearch,
			"generation_error":        nil,
			"generation_id":           "",
			"generation_started_at":   now,
			"generation_completed_at": nil,
		}).Error; err != nil {
			return err
		}
		// Consume the schedule record.
		return tx.Where("article_id = ?", article.ID).Delete(&models.QueueItemModel{}).Error
	})
	if err != nil {
		return err
	}

	task, err := s.tasks.Enqueue(ctx, TaskTypeRun, map[string]string{
		"article_id": article.ID,
		"project_id": article.ProjectID,
	}, article.ID, article.ProjectID)
	if err != nil {
		// Run tracking is advisory; the article row is the source of truth.
		s.logger.Warn("enqueue run task failed", zap.String("article", article.ID), zap.Error(err))
		task = nil
	}

	req := writesvc.StartRequest{
		ArticleID: article.ID,
		Title:     article.Title,
		Keywords:  article.Keywords,
		Notes:     article.Notes,
		UserID:    ownerUserID,
		ProjectID: article.ProjectID,
	}
	go s.launch(article.ID, task, req)
	return nil
}

func (s *Service) launch(articleID string, task *taskqueue.Task, req writesvc.StartRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	resp, err := s.client.Start(ctx, req)
	if err != nil {
		s.logger.Warn("write-service start failed", zap.String("article", articleID), zap.Error(err))
		s.markFailed(ctx, articleID, req.UserID, task, err.Error())
		return
	}

	if err := s.db.Model(&models.ArticleModel{}).Where("id = ?", articleID).
		Update("generation_id", resp.GenerationID).Error; err != nil {
		s.logger.Warn("persist generation id failed", zap.String("article", articleID), zap.Error(err))
	}
	s.db.Create(&models.GenerationSnapshotModel{
		ArticleID:    articleID,
		GenerationID: resp.GenerationID,
		Phase:        models.PhaseResearch,
		Progress:     0,
	})

	if task != nil {
		_ = s.tasks.UpdateStatus(ctx, task.ID, taskqueue.TaskRunning, nil, "")
	}
	s.hooks.Dispatch(req.UserID, webhook.EventArticleGenerating, map[string]interface{}{
		"article_id":    articleID,
		"generation_id": resp.GenerationID,
	})
}

// transition classifies one status poll.
type transition int

const (
	transitionProgress transition = iota
	transitionComplete
	transitionFail
)

// decide maps a write-service status onto a local transition. A run reported
// at full progress without a terminal status is treated as completed; the
// remote state is stale.
func decide(st *writesvc.StatusResponse) transition {
	switch st.Status {
	case "completed":
		return transitionComplete
	case "failed":
		return transitionFail
	default:
		if st.Progress >= 100 {
			return transitionComplete
		}
		return transitionProgress
	}
}

// ReconcileOnce polls the write-service for every generating article and
// applies the resulting transitions. Poll errors leave state untouched; the
// next tick retries.
func (s *Service) ReconcileOnce(ctx context.Context) error {
	var articles []models.ArticleModel
	if err := s.db.Joins("Project").Where("articles.status = ?", models.StatusGenerating).Find(&articles).Error; err != nil {
		return err
	}

	sem := make(chan struct{}, maxConcurrentPolls)
	var wg sync.WaitGroup
	for i := range articles {
		a := articles[i]
		if a.GenerationID == "" {
			// Still launching; generation id lands shortly after start.
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			s.reconcileArticle(ctx, &a)
		}()
	}
	wg.Wait()
	return nil
}

func (s *Service) reconcileArticle(ctx context.Context, a *models.ArticleModel) {
	st, err := s.client.Status(ctx, a.GenerationID)
	if err != nil {
		s.logger.Warn("status poll failed", zap.String("article", a.ID), zap.Error(err))
		return
	}

	switch decide(st) {
	case transitionComplete:
		s.complete(ctx, a, st)
	case transitionFail:
		msg := st.Error
		if msg == "" {
			msg = "generation failed"
		}
		task, _ := s.tasks.GetByDedupKey(ctx, TaskTypeRun, a.ID)
		s.markFailed(ctx, a.ID, ownerOf(a), task, msg)
	case transitionProgress:
		s.patchProgress(a, st)
	}
}

func (s *Service) patchProgress(a *models.ArticleModel, st *writesvc.StatusResponse) {
	updates := map[string]interface{}{
		"generation_progress": clampProgress(st.Progress),
	}
	if phase := models.GenerationPhase(st.Phase); phase.Valid() {
		updates["generation_phase"] = phase
	}
	if err := s.db.Model(&models.ArticleModel{}).Where("id = ?", a.ID).Updates(updates).Error; err != nil {
		s.logger.Warn("patch progress failed", zap.String("article", a.ID), zap.Error(err))
		return
	}
	s.db.Model(&models.GenerationSnapshotModel{}).
		Where("article_id = ? AND generation_id = ?", a.ID, a.GenerationID).
		Updates(map[string]interface{}{"progress": clampProgress(st.Progress), "phase": st.Phase})
}

func (s *Service) complete(ctx context.Context, a *models.ArticleModel, st *writesvc.StatusResponse) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":                  models.StatusWaitForPublish,
		"generation_progress":     100,
		"generation_error":        nil,
		"generation_completed_at": now,
	}
	if st.Content != "" {
		updates["text"] = st.Content
	}
	if err := s.db.Model(&models.ArticleModel{}).Where("id = ?", a.ID).Updates(updates).Error; err != nil {
		s.logger.Warn("complete update failed", zap.String("article", a.ID), zap.Error(err))
		return
	}

	snapshot := map[string]interface{}{"progress": 100}
	if st.Content != "" {
		snapshot["draft_content"] = st.Content
	}
	if st.ResearchData != nil {
		snapshot["research_data"] = st.ResearchData
	}
	s.db.Model(&models.GenerationSnapshotModel{}).
		Where("article_id = ? AND generation_id = ?", a.ID, a.GenerationID).
		Updates(snapshot)

	if task, _ := s.tasks.GetByDedupKey(ctx, TaskTypeRun, a.ID); task != nil {
		_ = s.tasks.UpdateStatus(ctx, task.ID, taskqueue.TaskCompleted, map[string]string{"generation_id": a.GenerationID}, "")
	}
	s.hooks.Dispatch(ownerOf(a), webhook.EventArticleGenerated, map[string]interface{}{
		"article_id":    a.ID,
		"generation_id": a.GenerationID,
	})
	s.logger.Info("generation completed", zap.String("article", a.ID))
}

func (s *Service) markFailed(ctx context.Context, articleID, ownerUserID string, task *taskqueue.Task, msg string) {
	if err := s.db.Model(&models.ArticleModel{}).Where("id = ?", articleID).Updates(map[string]interface{}{
		"status":           models.StatusFailed,
		"generation_error": msg,
	}).Error; err != nil {
		s.logger.Warn("mark failed update failed", zap.String("article", articleID), zap.Error(err))
	}
	if task != nil {
		_ = s.tasks.UpdateStatus(ctx, task.ID, taskqueue.TaskFailed, nil, msg)
	}
	s.hooks.Dispatch(ownerUserID, webhook.EventArticleFailed, map[string]interface{}{
		"article_id": articleID,
		"error":      msg,
	})
}

// Retry re-launches generation for a failed article.
func (s *Service) Retry(ctx context.Context, article *models.ArticleModel, ownerUserID string) error {
	if article.Status != models.StatusFailed {
		return ErrNotRetryable
	}
	return s.Start(ctx, article, ownerUserID)
}

// DispatchDue promotes due queue items to generation runs.
func (s *Service) DispatchDue(ctx context.Context) error {
	var items []models.QueueItemModel
	if err := s.db.Where("status = ? AND scheduled_for <= ?", models.QueueQueued, time.Now()).
		Order("scheduled_for ASC").Find(&items).Error; err != nil {
		return err
	}

	for _, item := range items {
		var article models.ArticleModel
		if err := s.db.Joins("Project").First(&article, "articles.id = ?", item.ArticleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Orphaned schedule record; drop it.
				s.db.Delete(&models.QueueItemModel{}, "id = ?", item.ID)
				continue
			}
			return err
		}

		s.db.Model(&models.QueueItemModel{}).Where("id = ?", item.ID).
			Updates(map[string]interface{}{"status": models.QueueProcessing, "attempts": item.Attempts + 1})

		ownerID := ""
		if article.Project != nil {
			ownerID = article.Project.OwnerUserID
		}
		if err := s.Start(ctx, &article, ownerID); err != nil {
			msg := err.Error()
			s.db.Model(&models.QueueItemModel{}).Where("id = ?", item.ID).
				Updates(map[string]interface{}{"status": models.QueueFailed, "error_message": msg})
			s.logger.Warn("queued start failed", zap.String("article", item.ArticleID), zap.Error(err))
		}
		// Successful Start consumes (deletes) the item inside its transaction.
	}
	return nil
}

// PublishDue publishes wait_for_publish articles whose schedule has arrived.
func (s *Service) PublishDue(ctx context.Context) error {
	now := time.Now()
	var articles []models.ArticleModel
	if err := s.db.Joins("Project").Where("articles.status = ? AND publish_scheduled_at IS NOT NULL AND publish_scheduled_at <= ?",
		models.StatusWaitForPublish, now).Find(&articles).Error; err != nil {
		return err
	}

	for _, a := range articles {
		if err := s.Publish(&a); err != nil {
			s.logger.Warn("scheduled publish failed", zap.String("article", a.ID), zap.Error(err))
		}
	}
	return nil
}

// Publish marks an article published now and notifies webhooks.
func (s *Service) Publish(article *models.ArticleModel) error {
	now := time.Now()
	if err := s.db.Model(&models.ArticleModel{}).Where("id = ?", article.ID).Updates(map[string]interface{}{
		"status":       models.StatusPublished,
		"published_at": now,
	}).Error; err != nil {
		return err
	}
	article.Status = models.StatusPublished
	article.PublishedAt = &now

	s.hooks.Dispatch(ownerOf(article), webhook.EventArticlePublished, map[string]interface{}{
		"article_id":   article.ID,
		"published_at": now,
	})
	s.logger.Info("article published", zap.String("article", article.ID))
	return nil
}

// RegenerateSection asks the write-service to rewrite one section and
// persists the result into the article and its latest snapshot.
func (s *Service) RegenerateSection(ctx context.Context, article *models.ArticleModel, sectionHeading, ownerUserID string) (*writesvc.RegenerateSectionResponse, error) {
	var snapshot models.GenerationSnapshotModel
	var researchData map[string]interface{}
	err := s.db.Where("article_id = ?", article.ID).Order("created_at DESC").First(&snapshot).Error
	switch {
	case err == nil:
		researchData = snapshot.ResearchData
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No snapshot yet; regeneration proceeds on article text alone.
	default:
		return nil, err
	}

	resp, err := s.client.RegenerateSection(ctx, writesvc.RegenerateSectionRequest{
		ArticleMarkdown: article.Text,
		SectionHeading:  sectionHeading,
		ResearchData:    researchData,
		Title:           article.Title,
		Keywords:        article.Keywords,
		Notes:           article.Notes,
		UserID:          ownerUserID,
		ProjectID:       article.ProjectID,
		GenerationID:    article.GenerationID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.ArticleModel{}).Where("id = ?", article.ID).
		Update("text", resp.UpdatedContent).Error; err != nil {
		return nil, err
	}
	if snapshot.ID != "" {
		if err := s.db.Model(&snapshot).Update("draft_content", resp.UpdatedContent).Error; err != nil {
			// Snapshot drift is tolerated; the article row won.
			s.logger.Warn("snapshot sync failed", zap.String("article", article.ID), zap.Error(err))
		}
	}
	return resp, nil
}

func ownerOf(a *models.ArticleModel) string {
	if a.Project != nil {
		return a.Project.OwnerUserID
	}
	return ""
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
