package board

import (
	"sort"
	"time"

	"github.com/draftflow/core/internal/models"
)

// Event is one visual calendar entry. At most one exists per article per day.
type Event struct {
	ArticleID string               `json:"article_id"`
	Title     string               `json:"title"`
	Status    models.ArticleStatus `json:"status"`
	Label     string               `json:"label"`
	Color     string               `json:"color"`
	Date      time.Time            `json:"date"`
	Source    string               `json:"source"` // "queue" | "status"
	Overdue   bool                 `json:"overdue"`
	priority  int
}

// Day groups the events of a single calendar day.
type Day struct {
	Date   time.Time `json:"date"`
	Events []Event   `json:"events"`
}

// BuildCalendarEvents merges queue items and article statuses into one visual
// event per article per day over [start, start+days). Queue items in "queued"
// state outrank status-derived events for the same article. An event whose
// date cannot be resolved is dropped.
func BuildCalendarEvents(articles []models.ArticleModel, items []models.QueueItemModel, start time.Time, days int, now time.Time) []Day {
	if days <= 0 {
		days = 7
	}
	start = truncateDay(start)
	end := start.AddDate(0, 0, days)

	queueByArticle := make(map[string]models.QueueItemModel, len(items))
	for _, it := range items {
		if it.Status == models.QueueQueued {
			queueByArticle[it.ArticleID] = it
		}
	}

	var candidates []Event
	for _, a := range articles {
		if item, ok := queueByArticle[a.ID]; ok {
			candidates = append(candidates, Event{
				ArticleID: a.ID,
				Title:     a.Title,
				Status:    a.Status,
				Label:     "Generation Queued",
				Color:     "blue",
				Date:      item.ScheduledFor,
				Source:    "queue",
				priority:  queuePriority,
			})
		}

		cfg, ok := ConfigFor(a.Status)
		if !ok {
			continue
		}
		date, ok := displayDate(a, queueByArticle)
		if !ok {
			continue
		}
		candidates = append(candidates, Event{
			ArticleID: a.ID,
			Title:     a.Title,
			Status:    a.Status,
			Label:     cfg.Label,
			Color:     cfg.Color,
			Date:      date,
			Source:    "status",
			priority:  cfg.Priority,
		})
	}

	// Per article per day, keep the lowest priority number.
	type slot struct {
		article string
		day     time.Time
	}
	best := make(map[slot]Event)
	for _, ev := range candidates {
		// Dates come from DB rows and query params in mixed locations;
		// bucket them all in the window's location so map keys line up.
		d := ev.Date.In(start.Location())
		if d.Before(start) || !d.Before(end) {
			continue
		}
		k := slot{article: ev.ArticleID, day: truncateDay(d)}
		if cur, ok := best[k]; !ok || ev.priority < cur.priority {
			best[k] = ev
		}
	}

	byDay := make(map[time.Time][]Event)
	for k, ev := range best {
		ev.Overdue = isOverdue(ev, now)
		byDay[k.day] = append(byDay[k.day], ev)
	}

	out := make([]Day, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		events := byDay[day]
		sort.Slice(events, func(i, j int) bool {
			if events[i].priority != events[j].priority {
				return events[i].priority < events[j].priority
			}
			return events[i].ArticleID < events[j].ArticleID
		})
		out = append(out, Day{Date: day, Events: events})
	}
	return out
}

// displayDate resolves the fallback chain: publishScheduledAt → publishedAt →
// queue scheduledFor → createdAt.
func displayDate(a models.ArticleModel, queue map[string]models.QueueItemModel) (time.Time, bool) {
	if a.PublishScheduledAt != nil {
		return *a.PublishScheduledAt, true
	}
	if a.PublishedAt != nil {
		return *a.PublishedAt, true
	}
	if item, ok := queue[a.ID]; ok {
		return item.ScheduledFor, true
	}
	if !a.CreatedAt.IsZero() {
		return a.CreatedAt, true
	}
	return time.Time{}, false
}

// isOverdue classifies against wall clock at build time; never persisted.
func isOverdue(ev Event, now time.Time) bool {
	if ev.Status == models.StatusPublished {
		return false
	}
	return ev.Date.Before(now)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
