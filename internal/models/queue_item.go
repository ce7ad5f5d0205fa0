package models

import "time"

// QueueItemStatus is the lifecycle of a scheduled-generation record.
type QueueItemStatus string

const (
	QueueQueued     QueueItemStatus = "queued"
	QueueProcessing QueueItemStatus = "processing"
	QueueCompleted  QueueItemStatus = "completed"
	QueueFailed     QueueItemStatus = "failed"
)

// QueueItemModel schedules a generation run for an article. Created on manual
// schedule or on idea creation with a date; deleted and recreated on
// reschedule; consumed (deleted) when generation starts.
type QueueItemModel struct {
	Base
	ArticleID    string          `json:"article_id"    gorm:"index;not null"`
	ScheduledFor time.Time       `json:"scheduled_for" gorm:"index;not null"`
	Status       QueueItemStatus `json:"status"        gorm:"type:varchar(16);index;default:queued"`
	Attempts     int             `json:"attempts"      gorm:"default:0"`
	ErrorMessage *string         `json:"error_message"`
}

func (QueueItemModel) TableName() string { return "generation_queue_items" }
