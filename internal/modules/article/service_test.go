package article

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/draftflow/core/internal/config"
	"github.com/draftflow/core/internal/middleware"
	"github.com/draftflow/core/internal/models"
	"github.com/draftflow/core/internal/modules/cover"
	"github.com/draftflow/core/internal/modules/generation"
	"github.com/draftflow/core/internal/modules/webhook"
	pkgjwt "github.com/draftflow/core/internal/pkg/jwt"
)

const testUserID = "user-1"

// newTestService seeds one project owned by testUserID. The write-service
// and the redis run tracker are never reached by these tests.
func newTestService(t *testing.T) (*Service, *models.ProjectModel) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.ProjectModel{},
		&models.ArticleModel{},
		&models.GenerationSnapshotModel{},
		&models.QueueItemModel{},
		&models.WebhookModel{},
		&models.WebhookEventModel{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	hooks := webhook.NewService(db, zap.NewNop())
	gen := generation.NewService(db, nil, nil, hooks, zap.NewNop())
	svc := NewService(db, gen, hooks, zap.NewNop())

	project := &models.ProjectModel{
		Name:        "Blog",
		Slug:        "blog",
		OwnerUserID: testUserID,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return svc, project
}

func seedArticle(t *testing.T, svc *Service, projectID string, status models.ArticleStatus) *models.ArticleModel {
	t.Helper()
	a := &models.ArticleModel{
		ProjectID: projectID,
		Title:     "How to brew coffee",
		Slug:      "how-to-brew-coffee",
		Status:    status,
	}
	if err := svc.db.Create(a).Error; err != nil {
		t.Fatalf("seed article: %v", err)
	}
	return a
}

func TestCreateIdeaDefaults(t *testing.T) {
	svc, project := newTestService(t)

	a, err := svc.Create(context.Background(), testUserID, CreateArticleDTO{
		ProjectID: project.ID,
		Title:     "First Draft Idea",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Status != models.StatusIdea {
		t.Errorf("Status = %q, want idea", a.Status)
	}
	if a.Keywords == nil || len(a.Keywords) != 0 {
		t.Errorf("Keywords = %#v, want empty non-nil list", a.Keywords)
	}
	if a.Slug != "first-draft-idea" {
		t.Errorf("Slug = %q, want derived from title", a.Slug)
	}

	view, err := svc.Get(testUserID, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.Analytics.WordCount != 0 {
		t.Errorf("WordCount = %d, want 0 for empty text", view.Analytics.WordCount)
	}
	if view.Keywords == nil {
		t.Error("Keywords round-tripped as null")
	}
}

func TestCreateRejectsForeignProject(t *testing.T) {
	svc, project := newTestService(t)

	_, err := svc.Create(context.Background(), "someone-else", CreateArticleDTO{
		ProjectID: project.ID,
		Title:     "Sneaky",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Create into foreign project = %v, want ErrNotFound", err)
	}
}

func TestUpdateTextFlowsToSnapshot(t *testing.T) {
	svc, project := newTestService(t)
	a := seedArticle(t, svc, project.ID, models.StatusWaitForPublish)

	snap := &models.GenerationSnapshotModel{
		ArticleID:    a.ID,
		GenerationID: "gen-1",
		Phase:        models.PhaseOptimization,
		Progress:     100,
		DraftContent: "machine draft",
	}
	if err := svc.db.Create(snap).Error; err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	edited := "# Edited\n\nHand-polished content."
	if _, err := svc.Update(testUserID, a.ID, UpdateArticleDTO{Text: &edited}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	view, err := svc.Get(testUserID, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.Text != edited {
		t.Errorf("Text = %q, want the edited content", view.Text)
	}

	var got models.GenerationSnapshotModel
	if err := svc.db.First(&got, "id = ?", snap.ID).Error; err != nil {
		t.Fatalf("reload snapshot: %v", err)
	}
	if got.DraftContent != edited {
		t.Errorf("snapshot DraftContent = %q, want the edited content", got.DraftContent)
	}
}

func TestDeleteRefusedWhileGenerating(t *testing.T) {
	svc, project := newTestService(t)
	a := seedArticle(t, svc, project.ID, models.StatusGenerating)

	if err := svc.Delete(testUserID, a.ID); !errors.Is(err, ErrGenerating) {
		t.Fatalf("Delete = %v, want ErrGenerating", err)
	}

	var still models.ArticleModel
	if err := svc.db.First(&still, "id = ?", a.ID).Error; err != nil {
		t.Fatalf("article row vanished: %v", err)
	}
	if still.Status != models.StatusGenerating {
		t.Errorf("Status = %q, refusal must not change state", still.Status)
	}
}

func TestDeleteTwiceReportsGone(t *testing.T) {
	svc, project := newTestService(t)
	a := seedArticle(t, svc, project.ID, models.StatusIdea)

	if err := svc.Delete(testUserID, a.ID); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if err := svc.Delete(testUserID, a.ID); !errors.Is(err, ErrGone) {
		t.Errorf("second Delete = %v, want ErrGone", err)
	}
}

func TestDeleteWhileGeneratingHTTPConflict(t *testing.T) {
	svc, project := newTestService(t)
	a := seedArticle(t, svc, project.ID, models.StatusGenerating)

	pkgjwt.Configure("test-secret", "")
	token, err := pkgjwt.Sign(testUserID, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	covers := cover.NewService(svc.db, config.S3Options{}, zap.NewNop())
	NewHandler(svc, covers).RegisterRoutes(api, middleware.Auth())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/articles/"+a.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("DELETE while generating = %d, want 409", w.Code)
	}
}
