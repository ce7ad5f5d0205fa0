package models

import "time"

// ArticleStatus is the closed set of article lifecycle states.
type ArticleStatus string

const (
	StatusIdea           ArticleStatus = "idea"
	StatusToGenerate     ArticleStatus = "to_generate"
	StatusGenerating     ArticleStatus = "generating"
	StatusWaitForPublish ArticleStatus = "wait_for_publish"
	StatusPublished      ArticleStatus = "published"
	StatusFailed         ArticleStatus = "failed"
	StatusDeleted        ArticleStatus = "deleted"
)

// AllArticleStatuses lists every valid status, for validation and exhaustiveness.
var AllArticleStatuses = []ArticleStatus{
	StatusIdea,
	StatusToGenerate,
	StatusGenerating,
	StatusWaitForPublish,
	StatusPublished,
	StatusFailed,
	StatusDeleted,
}

// Valid reports whether s is a known status.
func (s ArticleStatus) Valid() bool {
	for _, v := range AllArticleStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further generation activity is expected.
func (s ArticleStatus) Terminal() bool {
	return s == StatusPublished || s == StatusFailed || s == StatusDeleted
}

// GenerationPhase is one stage of the external generation pipeline.
type GenerationPhase string

const (
	PhaseResearch       GenerationPhase = "research"
	PhaseWriting        GenerationPhase = "writing"
	PhaseQualityControl GenerationPhase = "quality-control"
	PhaseValidation     GenerationPhase = "validation"
	PhaseOptimization   GenerationPhase = "optimization"
)

var phaseLabels = map[GenerationPhase]string{
	PhaseResearch:       "Research",
	PhaseWriting:        "Writing",
	PhaseQualityControl: "Quality Control",
	PhaseValidation:     "Validation",
	PhaseOptimization:   "Optimization",
}

// Label returns the human-readable label shown next to the progress bar.
func (p GenerationPhase) Label() string {
	if l, ok := phaseLabels[p]; ok {
		return l
	}
	return string(p)
}

// Valid reports whether p is a known phase.
func (p GenerationPhase) Valid() bool {
	_, ok := phaseLabels[p]
	return ok
}

// ArticleModel is an article moving through the idea → generation → publish workflow.
type ArticleModel struct {
	Base
	ProjectID       string        `json:"project_id"  gorm:"index;not null"`
	Project         *ProjectModel `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Title           string        `json:"title"       gorm:"not null"`
	Slug            string        `json:"slug"        gorm:"index"`
	Description     string        `json:"description" gorm:"type:text"`
	MetaDescription string        `json:"meta_description"`
	Keywords        StringArray   `json:"keywords"    gorm:"type:json;serializer:json"`
	Notes           string        `json:"notes"       gorm:"type:text"`
	Text            string        `json:"text"        gorm:"type:longtext"`

	Status             ArticleStatus   `json:"status"              gorm:"type:varchar(32);index;default:idea"`
	GenerationProgress int             `json:"generation_progress" gorm:"default:0"`
	GenerationPhase    GenerationPhase `json:"generation_phase"    gorm:"type:varchar(32)"`
	GenerationError    *string         `json:"generation_error"`
	GenerationID       string          `json:"generation_id"       gorm:"index"`

	GenerationScheduledAt *time.Time `json:"generation_scheduled_at"`
	GenerationStartedAt   *time.Time `json:"generation_started_at"`
	GenerationCompletedAt *time.Time `json:"generation_completed_at"`
	PublishScheduledAt    *time.Time `json:"publish_scheduled_at"`
	PublishedAt           *time.Time `json:"published_at"`

	Cover      CoverImage `json:"cover"  gorm:"type:longtext;serializer:json"`
	ViewCount  int        `json:"views"  gorm:"column:view_count;default:0"`
	ClickCount int        `json:"clicks" gorm:"column:click_count;default:0"`
}

func (ArticleModel) TableName() string { return "articles" }

// GetCount returns the embedded counters object expected by the API.
func (a ArticleModel) GetCount() Count {
	return Count{Views: a.ViewCount, Clicks: a.ClickCount}
}

// NormalizeStatus applies the generation-consistency invariant and reports
// whether anything changed. An article that reached full progress while still
// marked generating is really waiting for publish; the stored status is stale.
func (a *ArticleModel) NormalizeStatus() bool {
	if a.Status == StatusGenerating && a.GenerationProgress >= 100 {
		a.Status = StatusWaitForPublish
		if a.GenerationCompletedAt == nil {
			now := time.Now()
			a.GenerationCompletedAt = &now
		}
		return true
	}
	return false
}
