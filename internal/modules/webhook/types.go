package webhook

import (
	"time"

	"github.com/draftflow/core/internal/models"
)

// Article lifecycle events a webhook can subscribe to.
const (
	EventArticleCreated    = "article.created"
	EventArticleGenerating = "article.generating"
	EventArticleGenerated  = "article.generated"
	EventArticleFailed     = "article.failed"
	EventArticlePublished  = "article.published"
	EventArticleDeleted    = "article.deleted"
)

// Events is the canonical list of supported event names.
var Events = []string{
	EventArticleCreated,
	EventArticleGenerating,
	EventArticleGenerated,
	EventArticleFailed,
	EventArticlePublished,
	EventArticleDeleted,
}

var acceptedEvents = func() map[string]struct{} {
	out := make(map[string]struct{}, len(Events))
	for _, event := range Events {
		out[event] = struct{}{}
	}
	return out
}()

// CreateWebhookDTO is the request body for creating a webhook.
type CreateWebhookDTO struct {
	PayloadURL string   `json:"payloadUrl" binding:"required,url"`
	Events     []string `json:"events"     binding:"required,min=1"`
	Enabled    *bool    `json:"enabled"`
	Secret     string   `json:"secret"`
}

// UpdateWebhookDTO is the request body for updating a webhook.
type UpdateWebhookDTO struct {
	PayloadURL *string  `json:"payloadUrl"`
	Events     []string `json:"events"`
	Enabled    *bool    `json:"enabled"`
	Secret     *string  `json:"secret"`
}

// webhookResponse is the outbound representation of a webhook (no secret).
type webhookResponse struct {
	ID         string    `json:"id"`
	PayloadURL string    `json:"payloadUrl"`
	Events     []string  `json:"events"`
	Enabled    bool      `json:"enabled"`
	Created    time.Time `json:"created"`
	Modified   time.Time `json:"modified"`
}

func toResponse(w *models.WebhookModel) webhookResponse {
	events := []string(w.Events)
	if events == nil {
		events = []string{}
	}
	return webhookResponse{
		ID:         w.ID,
		PayloadURL: w.PayloadURL,
		Events:     events,
		Enabled:    w.Enabled,
		Created:    w.CreatedAt,
		Modified:   w.UpdatedAt,
	}
}
