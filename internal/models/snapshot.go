package models

// GenerationSnapshotModel stores the latest research/write/validation
// artifacts for an article. Rows are append-only per generation run; readers
// always take the most recent one (created_at desc, limit 1).
type GenerationSnapshotModel struct {
	Base
	ArticleID    string                 `json:"article_id"   gorm:"index;not null"`
	GenerationID string                 `json:"generation_id" gorm:"index"`
	Phase        GenerationPhase        `json:"phase"        gorm:"type:varchar(32)"`
	Progress     int                    `json:"progress"     gorm:"default:0"`
	ResearchData map[string]interface{} `json:"research_data,omitempty" gorm:"type:longtext;serializer:json"`
	DraftContent string                 `json:"draft_content" gorm:"type:longtext"`
	Validation   map[string]interface{} `json:"validation,omitempty"    gorm:"type:longtext;serializer:json"`
}

func (GenerationSnapshotModel) TableName() string { return "generation_snapshots" }
