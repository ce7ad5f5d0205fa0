package board

import (
	"testing"
	"time"

	"github.com/draftflow/core/internal/models"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func eventsFor(days []Day, date time.Time) []Event {
	for _, d := range days {
		if d.Date.Equal(date) {
			return d.Events
		}
	}
	return nil
}

func TestCalendarOneEventPerArticlePerDay(t *testing.T) {
	t.Parallel()
	start := day(t, "2026-09-01")
	scheduled := start.Add(10 * time.Hour)

	articles := []models.ArticleModel{{
		Base:               models.Base{ID: "a1", CreatedAt: start.Add(time.Hour)},
		Title:              "Queued piece",
		Status:             models.StatusToGenerate,
		PublishScheduledAt: &scheduled,
	}}
	items := []models.QueueItemModel{{
		ArticleID:    "a1",
		ScheduledFor: scheduled,
		Status:       models.QueueQueued,
	}}

	days := BuildCalendarEvents(articles, items, start, 7, start)
	if len(days) != 7 {
		t.Fatalf("got %d days, want 7", len(days))
	}

	evs := eventsFor(days, start)
	if len(evs) != 1 {
		t.Fatalf("got %d events on day one, want 1", len(evs))
	}
	if evs[0].Source != "queue" {
		t.Errorf("Source = %q, want queue to outrank status", evs[0].Source)
	}
	if evs[0].Label != "Generation Queued" {
		t.Errorf("Label = %q, want Generation Queued", evs[0].Label)
	}
}

func TestCalendarDateFallbackChain(t *testing.T) {
	t.Parallel()
	start := day(t, "2026-09-01")
	published := start.AddDate(0, 0, 2)
	created := start.AddDate(0, 0, 4)

	articles := []models.ArticleModel{
		{
			Base:        models.Base{ID: "pub", CreatedAt: start},
			Status:      models.StatusPublished,
			PublishedAt: &published,
		},
		{
			Base:   models.Base{ID: "idea", CreatedAt: created},
			Status: models.StatusIdea,
		},
	}

	days := BuildCalendarEvents(articles, nil, start, 7, start)

	if evs := eventsFor(days, published); len(evs) != 1 || evs[0].ArticleID != "pub" {
		t.Errorf("published article not placed on publishedAt day: %v", evs)
	}
	if evs := eventsFor(days, created); len(evs) != 1 || evs[0].ArticleID != "idea" {
		t.Errorf("idea not placed on createdAt day: %v", evs)
	}
}

func TestCalendarDropsUndatedAndOutOfWindow(t *testing.T) {
	t.Parallel()
	start := day(t, "2026-09-01")
	outside := start.AddDate(0, 0, 30)

	articles := []models.ArticleModel{
		{Base: models.Base{ID: "undated"}, Status: models.StatusIdea},
		{Base: models.Base{ID: "late", CreatedAt: outside}, Status: models.StatusIdea},
	}

	days := BuildCalendarEvents(articles, nil, start, 7, start)
	for _, d := range days {
		if len(d.Events) != 0 {
			t.Errorf("unexpected events on %s: %v", d.Date, d.Events)
		}
	}
}

func TestCalendarOverdue(t *testing.T) {
	t.Parallel()
	start := day(t, "2026-09-01")
	now := start.AddDate(0, 0, 3)
	when := start.Add(12 * time.Hour)

	articles := []models.ArticleModel{
		{
			Base:               models.Base{ID: "stale", CreatedAt: start},
			Status:             models.StatusWaitForPublish,
			PublishScheduledAt: &when,
		},
		{
			Base:        models.Base{ID: "done", CreatedAt: start},
			Status:      models.StatusPublished,
			PublishedAt: &when,
		},
	}

	days := BuildCalendarEvents(articles, nil, start, 7, now)
	evs := eventsFor(days, start)
	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	for _, ev := range evs {
		switch ev.ArticleID {
		case "stale":
			if !ev.Overdue {
				t.Error("past unpublished event should be overdue")
			}
		case "done":
			if ev.Overdue {
				t.Error("published event should never be overdue")
			}
		}
	}
}

func TestCalendarBucketsAcrossLocations(t *testing.T) {
	t.Parallel()
	start := day(t, "2026-09-01") // UTC
	berlin := time.FixedZone("CEST", 2*60*60)
	scheduled := time.Date(2026, 9, 2, 12, 0, 0, 0, berlin)

	articles := []models.ArticleModel{{
		Base:               models.Base{ID: "a1", CreatedAt: start},
		Title:              "Offset piece",
		Status:             models.StatusWaitForPublish,
		PublishScheduledAt: &scheduled,
	}}

	days := BuildCalendarEvents(articles, nil, start, 7, start)
	evs := eventsFor(days, day(t, "2026-09-02"))
	if len(evs) != 1 {
		t.Fatalf("article scheduled inside the window rendered %d events, want 1", len(evs))
	}
	if evs[0].ArticleID != "a1" {
		t.Errorf("ArticleID = %q, want a1", evs[0].ArticleID)
	}
}

func TestCalendarDefaultWindow(t *testing.T) {
	t.Parallel()
	start := day(t, "2026-09-01")
	days := BuildCalendarEvents(nil, nil, start, 0, start)
	if len(days) != 7 {
		t.Errorf("got %d days with zero requested, want default 7", len(days))
	}
}
