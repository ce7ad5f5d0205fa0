package article

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/draftflow/core/internal/models"
	"github.com/draftflow/core/internal/modules/analytics"
	"github.com/draftflow/core/internal/modules/board"
	"github.com/draftflow/core/internal/modules/generation"
	"github.com/draftflow/core/internal/modules/webhook"
	"github.com/draftflow/core/internal/modules/writesvc"
	"github.com/draftflow/core/internal/pkg/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("article not found")
	ErrGone              = errors.New("article already deleted")
	ErrGenerating        = errors.New("article is generating")
	ErrPastSchedule      = errors.New("scheduled time is in the past")
	ErrNotScheduled      = errors.New("article has no scheduled generation")
	ErrInvalidTransition = errors.New("status does not allow this operation")
	ErrNoContent         = errors.New("article has no content")
)

type Service struct {
	db     *gorm.DB
	gen    *generation.Service
	hooks  *webhook.Service
	logger *zap.Logger
}

func NewService(db *gorm.DB, gen *generation.Service, hooks *webhook.Service, logger *zap.Logger) *Service {
	return &Service{db: db, gen: gen, hooks: hooks, logger: logger.Named("article")}
}

// owned loads an article reachable by userID through project ownership.
// Articles of other owners read as missing.
func (s *Service) owned(userID, articleID string) (*models.ArticleModel, error) {
	var a models.ArticleModel
	err := s.db.
		Joins("JOIN projects ON projects.id = articles.project_id AND projects.owner_user_id = ? AND projects.deleted_at IS NULL", userID).
		Preload("Project").
		First(&a, "articles.id = ?", articleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.normalize(&a)
	return &a, nil
}

// normalize persists the generation-consistency correction when a read
// observes a stale generating status.
func (s *Service) normalize(a *models.ArticleModel) {
	if !a.NormalizeStatus() {
		return
	}
	if err := s.db.Model(&models.ArticleModel{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"status":                  a.Status,
		"generation_completed_at": a.GenerationCompletedAt,
	}).Error; err != nil {
		s.logger.Warn("status normalization failed", zap.String("article", a.ID), zap.Error(err))
	}
}

// List returns the board view for one project, or for all of the user's
// projects when projectID is empty.
func (s *Service) List(userID, projectID string) (*BoardView, error) {
	q := s.db.
		Joins("JOIN projects ON projects.id = articles.project_id AND projects.owner_user_id = ? AND projects.deleted_at IS NULL", userID).
		Where("articles.status <> ?", models.StatusDeleted).
		Order("articles.created_at DESC")
	if projectID != "" {
		q = q.Where("articles.project_id = ?", projectID)
	}

	var articles []models.ArticleModel
	if err := q.Find(&articles).Error; err != nil {
		return nil, err
	}
	for i := range articles {
		s.normalize(&articles[i])
	}
	return &BoardView{Articles: articles, Partitions: board.Partition(articles)}, nil
}

func (s *Service) Create(ctx context.Context, userID string, dto CreateArticleDTO) (*models.ArticleModel, error) {
	var project models.ProjectModel
	err := s.db.First(&project, "id = ? AND owner_user_id = ?", dto.ProjectID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if dto.GenerationScheduledAt != nil && dto.GenerationScheduledAt.Before(time.Now()) {
		return nil, ErrPastSchedule
	}

	keywords := models.StringArray(dto.Keywords)
	if keywords == nil {
		keywords = models.StringArray{}
	}
	a := models.ArticleModel{
		ProjectID:       project.ID,
		Title:           dto.Title,
		Slug:            dto.Slug,
		Description:     dto.Description,
		MetaDescription: dto.MetaDescription,
		Keywords:        keywords,
		Notes:           dto.Notes,
		Text:            dto.Text,
		Status:          models.StatusIdea,
	}
	if a.Slug == "" {
		a.Slug = slug.Make(dto.Title)
	}
	if dto.GenerationScheduledAt != nil {
		a.Status = models.StatusToGenerate
		a.GenerationScheduledAt = dto.GenerationScheduledAt
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
		if dto.GenerationScheduledAt == nil {
			return nil
		}
		return tx.Create(&models.QueueItemModel{
			ArticleID:    a.ID,
			ScheduledFor: *dto.GenerationScheduledAt,
			Status:       models.QueueQueued,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.hooks.Dispatch(userID, webhook.EventArticleCreated, map[string]interface{}{
		"article_id": a.ID,
		"project_id": a.ProjectID,
		"title":      a.Title,
	})
	return &a, nil
}

func (s *Service) Get(userID, articleID string) (*DetailView, error) {
	a, err := s.owned(userID, articleID)
	if err != nil {
		return nil, err
	}
	report := analytics.Analyze(analytics.Input{
		Title:           a.Title,
		MetaDescription: a.MetaDescription,
		Keywords:        a.Keywords,
		Markdown:        a.Text,
	})
	return &DetailView{ArticleModel: *a, Analytics: report}, nil
}

func (s *Service) Update(userID, articleID string, dto UpdateArticleDTO) (*models.ArticleModel, error) {
	a, err := s.owned(userID, articleID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
	}
	if dto.Slug != nil {
		updates["slug"] = *dto.Slug
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.MetaDescription != nil {
		updates["meta_description"] = *dto.MetaDescription
	}
	if dto.Keywords != nil {
		updates["keywords"] = models.StringArray(*dto.Keywords)
	}
	if dto.Notes != nil {
		updates["notes"] = *dto.Notes
	}
	if dto.Text != nil {
		updates["text"] = *dto.Text
	}
	if dto.PublishScheduledAt != nil {
		if dto.PublishScheduledAt.Before(time.Now()) {
			return nil, ErrPastSchedule
		}
		updates["publish_scheduled_at"] = *dto.PublishScheduledAt
	}
	if len(updates) == 0 {
		return a, nil
	}

	if err := s.db.Model(a).Updates(updates).Error; err != nil {
		return nil, err
	}

	if dto.Text != nil {
		// Keep the latest snapshot in step with manual edits; drift here is
		// logged, never surfaced.
		var snapshot models.GenerationSnapshotModel
		err := s.db.Select("id").Where("article_id = ?", a.ID).
			Order("created_at DESC").First(&snapshot).Error
		if err == nil {
			err = s.db.Model(&snapshot).Update("draft_content", *dto.Text).Error
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("snapshot sync failed", zap.String("article", a.ID), zap.Error(err))
		}
	}
	return s.owned(userID, articleID)
}

// Delete soft-deletes an article. Generating articles refuse deletion and an
// already-deleted id reports gone.
func (s *Service) Delete(userID, articleID string) error {
	a, err := s.owned(userID, articleID)
	if errors.Is(err, ErrNotFound) {
		var gone models.ArticleModel
		ghostErr := s.db.Unscoped().
			Joins("JOIN projects ON projects.id = articles.project_id AND projects.owner_user_id = ?", userID).
			First(&gone, "articles.id = ? AND articles.deleted_at IS NOT NULL", articleID).Error
		if ghostErr == nil {
			return ErrGone
		}
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if a.Status == models.StatusGenerating {
		return ErrGenerating
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(a).Update("status", models.StatusDeleted).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", a.ID).Delete(&models.QueueItemModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(a).Error
	})
	if err != nil {
		return err
	}

	s.hooks.Dispatch(userID, webhook.EventArticleDeleted, map[string]interface{}{
		"article_id": a.ID,
		"project_id": a.ProjectID,
	})
	return nil
}

// Generate starts an immediate generation run.
func (s *Service) Generate(ctx context.Context, userID, articleID string) (*models.ArticleModel, error) {
	a, err := s.owned(userID, articleID)
	if err != nil {
		return nil, err
	}
	if err := s.gen.Start(ctx, a, userID); err != nil {
		return nil, err
	}
	return s.owned(userID, articleID)
}

// ScheduleGeneration schedules (or reschedules) a queue item for the article.
func (s *Service) ScheduleGeneration(userID string, dto ScheduleGenerationDTO) (*models.QueueItemModel, error) {
	if dto.ScheduledFor.Before(time.Now()) {
		return nil, ErrPastSchedule
	}
	a, err := s.owned(userID, dto.ArticleID)
	if err != nil {
		return nil, err
	}
	if a.Status == models.StatusGenerating {
		return nil, ErrGenerating
	}

	item := models.QueueItemModel{
		ArticleID:    a.ID,
		ScheduledFor: dto.ScheduledFor,
		Status:       models.QueueQueued,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", a.ID).Delete(&models.QueueItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return tx.Model(a).Updates(map[string]interface{}{
			"status":                  models.StatusToGenerate,
			"generation_scheduled_at": dto.ScheduledFor,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Unschedule removes a pending queue item and reverts to_generate to idea.
func (s *Service) Unschedule(userID, articleID string) error {
	a, err := s.owned(userID, articleID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("article_id = ? AND status = ?", a.ID, models.QueueQueued).Delete(&models.QueueItemModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotScheduled
		}
		updates := map[string]interface{}{"generation_scheduled_at": nil}
		if a.Status == models.StatusToGenerate {
			updates["status"] = models.StatusIdea
		}
		return tx.Model(a).Updates(updates).Error
	})
}

// QueueEntry is one queue listing row with its article attached.
type QueueEntry struct {
	models.QueueItemModel
	Article models.ArticleModel `json:"article"`
}

// ListQueue returns the user's queue items, soonest first.
func (s *Service) ListQueue(userID string) ([]QueueEntry, error) {
	var items []models.QueueItemModel
	err := s.db.Model(&models.QueueItemModel{}).
		Joins("JOIN articles ON articles.id = generation_queue_items.article_id AND articles.deleted_at IS NULL").
		Joins("JOIN projects ON projects.id = articles.project_id AND projects.owner_user_id = ? AND projects.deleted_at IS NULL", userID).
		Order("generation_queue_items.scheduled_for ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	entries := make([]QueueEntry, 0, len(items))
	for _, item := range items {
		var a models.ArticleModel
		if err := s.db.First(&a, "id = ?", item.ArticleID).Error; err != nil {
			continue
		}
		entries = append(entries, QueueEntry{QueueItemModel: item, Article: a})
	}
	return entries, nil
}

// RunNow promotes a queued article to an immediate run.
func (s *Service) RunNow(ctx context.Context, userID, articleID string) (*models.ArticleModel, error) {
	a, err := s.owned(userID, articleID)
	if err != nil {
		return nil, err
	}
	var item models.QueueItemModel
	err = s.db.First(&item, "article_id = ? AND status = ?", a.ID, models.QueueQueued).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotScheduled
	}
	if err != nil {
		return nil, err
	}
	if err := s.gen.Start(ctx, a, userID); err != nil {
		return nil, err
	}
	return s.owned(userID, articleID)
}

// CancelSchedule drops the pending queue item and returns the article to idea.
func (s *Service) CancelSchedule(userID, articleID string) (*models.ArticleModel, error) {
	if err := s.Unschedule(userID, articleID); err != nil {
		return nil, err
	}
	return s.owned(userID, articleID)
}

// Retry re-runs generation for a failed article.
func (s *Service) Retry(ctx context.Context, userID, articleID string) (*models.ArticleModel, error) {
	a, err := s.owned(userID, articleID)
	if err != nil {
		return nil, err
	}
	if err := s.gen.Retry(ctx, a, userID); err != nil {
		return nil, err
	}
	return s.owned(userID, articleID)
}

// Status returns the polling view of an article's generation.
func (s *Service) Status(userID, articleID string) (*StatusView, error) {
	a, err := s.owned(userID, articleID)
	if err != nil {
		return nil, err
	}
	return &StatusView{
		ArticleID:    a.ID,
		Status:       a.Status,
		Progress:     a.GenerationProgress,
		Phase:        string(a.GenerationPhase),
		PhaseLabel:   a.GenerationPhase.Label(),
		Error:        a.GenerationError,
		GenerationID: a.GenerationID,
	}, nil
}

// Publish publishes immediately. Allowed from wait_for_publish, and from idea
// when the article already carries content.
func (s *Service) Publish(userID, articleID string) (*models.ArticleModel, error) {
	a, err := s.owned(userID, articleID)
	if err != nil {
		return nil, err
	}
	switch {
	case a.Status == models.StatusWaitForPublish:
	case a.Status == models.StatusIdea && strings.TrimSpace(a.Text) != "":
	case a.Status == models.StatusIdea:
		return nil, ErrNoContent
	default:
		return nil, ErrInvalidTransition
	}
	if err := s.gen.Publish(a); err != nil {
		return nil, err
	}
	return s.owned(userID, articleID)
}

// SchedulePublishing sets a future publish time on a wait_for_publish article.
func (s *Service) SchedulePublishing(userID string, dto SchedulePublishingDTO) (*models.ArticleModel, error) {
	if dto.PublishScheduledAt.Before(time.Now()) {
		return nil, ErrPastSchedule
	}
	a, err := s.owned(userID, dto.ArticleID)
	if err != nil {
		return nil, err
	}
	if a.Status != models.StatusWaitForPublish {
		return nil, ErrInvalidTransition
	}
	if err := s.db.Model(a).Update("publish_scheduled_at", dto.PublishScheduledAt).Error; err != nil {
		return nil, err
	}
	return s.owned(userID, dto.ArticleID)
}

// RegenerateSection rewrites one section of the article through the
// write-service and persists the result.
func (s *Service) RegenerateSection(ctx context.Context, userID, articleID, sectionHeading string) (*writesvc.RegenerateSectionResponse, error) {
	a, err := s.owned(userID, articleID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.Text) == "" {
		return nil, ErrNoContent
	}
	return s.gen.RegenerateSection(ctx, a, sectionHeading, userID)
}

// Calendar builds the user's calendar window.
func (s *Service) Calendar(userID, projectID string, start time.Time, days int) ([]board.Day, error) {
	view, err := s.List(userID, projectID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(view.Articles))
	for _, a := range view.Articles {
		ids = append(ids, a.ID)
	}
	var items []models.QueueItemModel
	if len(ids) > 0 {
		if err := s.db.Where("article_id IN ? AND status = ?", ids, models.QueueQueued).Find(&items).Error; err != nil {
			return nil, err
		}
	}
	return board.BuildCalendarEvents(view.Articles, items, start, days, time.Now()), nil
}
