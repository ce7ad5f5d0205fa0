// Package board shapes articles and queue items into the kanban and calendar
// views. All functions are pure; handlers feed them rows and a clock.
package board

import "github.com/draftflow/core/internal/models"

// Column is a kanban column identifier.
type Column string

const (
	ColumnPlanning   Column = "planning"
	ColumnGeneration Column = "generation"
	ColumnPublishing Column = "publishing"
)

// StatusConfig is the single source of truth for how a status is displayed.
// It replaces per-view literal tables; every view derives from this one.
type StatusConfig struct {
	Status   models.ArticleStatus `json:"status"`
	Column   Column               `json:"column"`
	Label    string               `json:"label"`
	Color    string               `json:"color"`
	Priority int                  `json:"priority"` // lower wins in calendar dedup
}

// queue-sourced events outrank all status-derived events.
const queuePriority = 1

var statusConfigs = map[models.ArticleStatus]StatusConfig{
	models.StatusIdea:           {Status: models.StatusIdea, Column: ColumnPlanning, Label: "Idea", Color: "gray", Priority: 6},
	models.StatusToGenerate:     {Status: models.StatusToGenerate, Column: ColumnPlanning, Label: "Scheduled", Color: "blue", Priority: 3},
	models.StatusGenerating:     {Status: models.StatusGenerating, Column: ColumnGeneration, Label: "Generating", Color: "amber", Priority: 2},
	models.StatusFailed:         {Status: models.StatusFailed, Column: ColumnGeneration, Label: "Failed", Color: "red", Priority: 4},
	models.StatusWaitForPublish: {Status: models.StatusWaitForPublish, Column: ColumnPublishing, Label: "Ready to Publish", Color: "green", Priority: 3},
	models.StatusPublished:      {Status: models.StatusPublished, Column: ColumnPublishing, Label: "Published", Color: "emerald", Priority: 5},
}

// ConfigFor returns the display config for a status. Deleted articles have
// none; callers filter them out before rendering.
func ConfigFor(status models.ArticleStatus) (StatusConfig, bool) {
	cfg, ok := statusConfigs[status]
	return cfg, ok
}

// Partitions are the read-only status-predicate buckets of the board.
type Partitions struct {
	Planning   []models.ArticleModel `json:"planning"`
	Generation []models.ArticleModel `json:"generation"`
	Publishing []models.ArticleModel `json:"publishing"`
	Generating []models.ArticleModel `json:"generating"`
}

// Partition buckets articles by column. Deleted articles are dropped. The
// Generating sublist repeats the in-flight subset for the polling view.
func Partition(articles []models.ArticleModel) Partitions {
	p := Partitions{
		Planning:   []models.ArticleModel{},
		Generation: []models.ArticleModel{},
		Publishing: []models.ArticleModel{},
		Generating: []models.ArticleModel{},
	}
	for _, a := range articles {
		cfg, ok := ConfigFor(a.Status)
		if !ok {
			continue
		}
		switch cfg.Column {
		case ColumnPlanning:
			p.Planning = append(p.Planning, a)
		case ColumnGeneration:
			p.Generation = append(p.Generation, a)
		case ColumnPublishing:
			p.Publishing = append(p.Publishing, a)
		}
		if a.Status == models.StatusGenerating {
			p.Generating = append(p.Generating, a)
		}
	}
	return p
}
