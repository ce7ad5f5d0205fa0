package board

import (
	"testing"

	"github.com/draftflow/core/internal/models"
)

func TestPartitionBucketsByColumn(t *testing.T) {
	t.Parallel()
	articles := []models.ArticleModel{
		{Base: models.Base{ID: "a1"}, Status: models.StatusIdea},
		{Base: models.Base{ID: "a2"}, Status: models.StatusToGenerate},
		{Base: models.Base{ID: "a3"}, Status: models.StatusGenerating},
		{Base: models.Base{ID: "a4"}, Status: models.StatusFailed},
		{Base: models.Base{ID: "a5"}, Status: models.StatusWaitForPublish},
		{Base: models.Base{ID: "a6"}, Status: models.StatusPublished},
	}

	p := Partition(articles)

	if len(p.Planning) != 2 {
		t.Errorf("Planning = %d articles, want 2", len(p.Planning))
	}
	if len(p.Generation) != 2 {
		t.Errorf("Generation = %d articles, want 2", len(p.Generation))
	}
	if len(p.Publishing) != 2 {
		t.Errorf("Publishing = %d articles, want 2", len(p.Publishing))
	}
	if len(p.Generating) != 1 || p.Generating[0].ID != "a3" {
		t.Errorf("Generating = %v, want only a3", p.Generating)
	}
}

func TestPartitionDropsDeleted(t *testing.T) {
	t.Parallel()
	articles := []models.ArticleModel{
		{Base: models.Base{ID: "a1"}, Status: models.StatusDeleted},
	}
	p := Partition(articles)
	total := len(p.Planning) + len(p.Generation) + len(p.Publishing) + len(p.Generating)
	if total != 0 {
		t.Errorf("deleted article appeared in partitions: %+v", p)
	}
}

func TestConfigForUnknownStatus(t *testing.T) {
	t.Parallel()
	if _, ok := ConfigFor(models.StatusDeleted); ok {
		t.Error("deleted status should have no display config")
	}
	if _, ok := ConfigFor(models.ArticleStatus("bogus")); ok {
		t.Error("unknown status should have no display config")
	}
}

func TestStatusConfigCoversEveryVisibleStatus(t *testing.T) {
	t.Parallel()
	for _, status := range models.AllArticleStatuses {
		if status == models.StatusDeleted {
			continue
		}
		cfg, ok := ConfigFor(status)
		if !ok {
			t.Errorf("no config for status %q", status)
			continue
		}
		if cfg.Label == "" || cfg.Color == "" || cfg.Priority == 0 {
			t.Errorf("incomplete config for %q: %+v", status, cfg)
		}
	}
}
