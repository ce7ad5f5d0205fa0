package article

import (
	"time"

	"github.com/draftflow/core/internal/models"
	"github.com/draftflow/core/internal/modules/analytics"
	"github.com/draftflow/core/internal/modules/board"
)

type CreateArticleDTO struct {
	ProjectID             string     `json:"projectId" binding:"required"`
	Title                 string     `json:"title" binding:"required,max=500"`
	Slug                  string     `json:"slug" binding:"omitempty,max=500"`
	Description           string     `json:"description"`
	MetaDescription       string     `json:"metaDescription"`
	Keywords              []string   `json:"keywords"`
	Notes                 string     `json:"notes"`
	Text                  string     `json:"text"`
	GenerationScheduledAt *time.Time `json:"generationScheduledAt"`
}

// UpdateArticleDTO carries partial updates; nil means "leave unchanged".
type UpdateArticleDTO struct {
	Title              *string    `json:"title" binding:"omitempty,max=500"`
	Slug               *string    `json:"slug" binding:"omitempty,max=500"`
	Description        *string    `json:"description"`
	MetaDescription    *string    `json:"metaDescription"`
	Keywords           *[]string  `json:"keywords"`
	Notes              *string    `json:"notes"`
	Text               *string    `json:"text"`
	PublishScheduledAt *time.Time `json:"publishScheduledAt"`
}

type GenerateDTO struct {
	ArticleID string `json:"articleId" binding:"required"`
}

type ScheduleGenerationDTO struct {
	ArticleID    string    `json:"articleId" binding:"required"`
	ScheduledFor time.Time `json:"scheduledFor" binding:"required"`
}

type SchedulePublishingDTO struct {
	ArticleID          string    `json:"articleId" binding:"required"`
	PublishScheduledAt time.Time `json:"publishScheduledAt" binding:"required"`
}

type RegenerateSectionDTO struct {
	SectionHeading string `json:"sectionHeading" binding:"required"`
}

// BoardView is the /articles listing shape: the flat list plus the kanban
// partitions the dashboard renders from.
type BoardView struct {
	Articles   []models.ArticleModel `json:"articles"`
	Partitions board.Partitions      `json:"partitions"`
}

// DetailView decorates one article with derived content analytics.
type DetailView struct {
	models.ArticleModel
	Analytics analytics.Report `json:"analytics"`
}

// StatusView is the polling contract for in-flight generations.
type StatusView struct {
	ArticleID    string               `json:"articleId"`
	Status       models.ArticleStatus `json:"status"`
	Progress     int                  `json:"progress"`
	Phase        string               `json:"phase"`
	PhaseLabel   string               `json:"phaseLabel"`
	Error        *string              `json:"error,omitempty"`
	GenerationID string               `json:"generationId,omitempty"`
}
