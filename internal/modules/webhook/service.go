package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/draftflow/core/internal/models"
	"github.com/draftflow/core/internal/pkg/pagination"
	"github.com/draftflow/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles webhook CRUD and delivery.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	client *http.Client
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.Named("webhook"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Service) List(ownerUserID string) ([]models.WebhookModel, error) {
	var items []models.WebhookModel
	return items, s.db.Where("owner_user_id = ?", ownerUserID).
		Order("created_at DESC").Find(&items).Error
}

func (s *Service) GetByID(ownerUserID, id string) (*models.WebhookModel, error) {
	var w models.WebhookModel
	if err := s.db.First(&w, "id = ? AND owner_user_id = ?", id, ownerUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (s *Service) Create(ownerUserID string, dto *CreateWebhookDTO) (*models.WebhookModel, error) {
	events := normalizeEvents(dto.Events)
	if len(events) == 0 {
		return nil, fmt.Errorf("events is empty")
	}

	secret := strings.TrimSpace(dto.Secret)
	if secret == "" {
		buf := make([]byte, 20)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		secret = hex.EncodeToString(buf)
	}

	w := models.WebhookModel{
		OwnerUserID: ownerUserID,
		PayloadURL:  dto.PayloadURL,
		Events:      events,
		Secret:      secret,
		Enabled:     true,
	}
	if dto.Enabled != nil {
		w.Enabled = *dto.Enabled
	}
	return &w, s.db.Create(&w).Error
}

func (s *Service) Update(ownerUserID, id string, dto *UpdateWebhookDTO) (*models.WebhookModel, error) {
	w, err := s.GetByID(ownerUserID, id)
	if err != nil || w == nil {
		return w, err
	}
	updates := map[string]interface{}{}
	if dto.PayloadURL != nil {
		updates["payload_url"] = *dto.PayloadURL
	}
	if dto.Events != nil {
		events := normalizeEvents(dto.Events)
		if len(events) == 0 {
			return nil, fmt.Errorf("events is empty")
		}
		updates["events"] = events
	}
	if dto.Enabled != nil {
		updates["enabled"] = *dto.Enabled
	}
	if dto.Secret != nil {
		updates["secret"] = strings.TrimSpace(*dto.Secret)
	}
	return w, s.db.Model(w).Updates(updates).Error
}

func (s *Service) Delete(ownerUserID, id string) error {
	return s.db.Delete(&models.WebhookModel{}, "id = ? AND owner_user_id = ?", id, ownerUserID).Error
}

// Dispatch sends an event payload to the owner's matching, enabled webhooks.
// Delivery is best effort; failures land in the event log only.
func (s *Service) Dispatch(ownerUserID, event string, payload map[string]interface{}) {
	if ownerUserID == "" {
		return
	}
	var hooks []models.WebhookModel
	if err := s.db.Where("enabled = ? AND owner_user_id = ?", true, ownerUserID).Find(&hooks).Error; err != nil {
		s.logger.Warn("load hooks failed", zap.Error(err))
		return
	}

	for _, hook := range hooks {
		if !containsEvent(hook.Events, event) {
			continue
		}
		go s.deliver(hook, event, payload)
	}
}

func (s *Service) deliver(hook models.WebhookModel, event string, payload map[string]interface{}) {
	body, _ := json.Marshal(payload)
	signature := Sign(hook.Secret, body)

	req, err := http.NewRequest(http.MethodPost, hook.PayloadURL, bytes.NewReader(body))
	if err != nil {
		s.logEvent(hook.ID, event, payload, nil, false, 0, err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", event)
	req.Header.Set("X-Webhook-Id", hook.ID)
	req.Header.Set("X-Webhook-Timestamp", fmt.Sprintf("%d", time.Now().UnixMilli()))
	req.Header.Set("X-Webhook-Signature256", signature)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logEvent(hook.ID, event, payload, nil, false, 0, err.Error())
		return
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	s.logEvent(hook.ID, event, payload, map[string]interface{}{
		"status": resp.Status,
		"data":   parseJSONOrString(respBody),
	}, resp.StatusCode >= 200 && resp.StatusCode < 300, resp.StatusCode, "")
}

// Sign computes the hex HMAC-SHA256 of body with the hook secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func (s *Service) logEvent(hookID, event string, payload, respData map[string]interface{}, success bool, status int, errMsg string) {
	log := models.WebhookEventModel{
		HookID:    hookID,
		Event:     event,
		Payload:   payload,
		Response:  respData,
		Success:   success,
		Status:    status,
		Timestamp: time.Now(),
	}
	if errMsg != "" {
		log.Response = map[string]interface{}{"error": errMsg}
	}
	if err := s.db.Create(&log).Error; err != nil {
		s.logger.Warn("log delivery failed", zap.String("hook", hookID), zap.Error(err))
	}
}

func (s *Service) ListEvents(ownerUserID string, q pagination.Query, hookID *string) ([]models.WebhookEventModel, response.Pagination, error) {
	tx := s.db.Model(&models.WebhookEventModel{}).
		Joins("JOIN webhooks ON webhooks.id = webhook_events.hook_id AND webhooks.owner_user_id = ? AND webhooks.deleted_at IS NULL", ownerUserID).
		Order("timestamp DESC")
	if hookID != nil {
		tx = tx.Where("hook_id = ?", *hookID)
	}
	var items []models.WebhookEventModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func normalizeEvents(events []string) models.StringArray {
	out := make(models.StringArray, 0, len(events))
	seen := map[string]struct{}{}
	for _, e := range events {
		e = strings.TrimSpace(strings.ToLower(e))
		if e == "" {
			continue
		}
		if _, ok := acceptedEvents[e]; !ok {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

func containsEvent(events models.StringArray, event string) bool {
	for _, e := range events {
		if e == event {
			return true
		}
	}
	return false
}

func parseJSONOrString(b []byte) interface{} {
	var v interface{}
	if err := json.Unmarshal(b, &v); err == nil {
		return v
	}
	return string(b)
}
