package taskqueue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisc "github.com/draftflow/core/internal/pkg/redis"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewService(redisc.NewFromClient(rdb))
}

func TestEnqueueDedupReturnsExistingTask(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Enqueue(ctx, "generation:run", map[string]string{"article_id": "a1"}, "a1", "p1")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	second, err := svc.Enqueue(ctx, "generation:run", map[string]string{"article_id": "a1"}, "a1", "p1")
	if err != nil {
		t.Fatalf("Enqueue duplicate: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("duplicate submit created task %s, want existing %s", second.ID, first.ID)
	}

	got, err := svc.GetByDedupKey(ctx, "generation:run", "a1")
	if err != nil {
		t.Fatalf("GetByDedupKey: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Errorf("GetByDedupKey = %v, want task %s", got, first.ID)
	}
}

func TestTerminalStatusReleasesDedupSlot(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Enqueue(ctx, "generation:run", nil, "a1", "p1")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := svc.UpdateStatus(ctx, first.ID, TaskCompleted, map[string]string{"generation_id": "g1"}, ""); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, err := svc.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != TaskCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}

	second, err := svc.Enqueue(ctx, "generation:run", nil, "a1", "p1")
	if err != nil {
		t.Fatalf("Enqueue after completion: %v", err)
	}
	if second.ID == first.ID {
		t.Error("completed run still holds the dedup slot")
	}
}

func TestUpdateStatusRecordsError(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.Enqueue(ctx, "generation:run", nil, "a1", "p1")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := svc.UpdateStatus(ctx, task.ID, TaskFailed, nil, "write-service unreachable"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, _ := svc.GetByID(ctx, task.ID)
	if got.Status != TaskFailed || got.Error != "write-service unreachable" {
		t.Errorf("got status %q error %q", got.Status, got.Error)
	}

	if err := svc.UpdateStatus(ctx, "missing", TaskFailed, nil, ""); err == nil {
		t.Error("UpdateStatus on a missing task should fail")
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	running, err := svc.Enqueue(ctx, "generation:run", nil, "a1", "p1")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := svc.Enqueue(ctx, "generation:run", nil, "a2", "p1"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if _, err := svc.Enqueue(ctx, "other", nil, "", "p1"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := svc.UpdateStatus(ctx, running.ID, TaskRunning, nil, ""); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	runType := "generation:run"
	tasks, total, err := svc.List(ctx, 1, 10, &runType, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(tasks) != 2 {
		t.Fatalf("List by type: total=%d len=%d, want 2", total, len(tasks))
	}

	st := TaskRunning
	tasks, total, err = svc.List(ctx, 1, 10, &runType, &st)
	if err != nil {
		t.Fatalf("List by status: %v", err)
	}
	if total != 1 || len(tasks) != 1 || tasks[0].ID != running.ID {
		t.Fatalf("List by status returned %d tasks, want the running one", len(tasks))
	}

	tasks, total, err = svc.List(ctx, 2, 2, nil, nil)
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if total != 3 || len(tasks) != 1 {
		t.Errorf("page 2 of size 2: total=%d len=%d, want 3 and 1", total, len(tasks))
	}
}

func TestDeleteByIDClearsIndexAndDedup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.Enqueue(ctx, "generation:run", nil, "a1", "p1")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := svc.DeleteByID(ctx, task.ID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}

	if got, _ := svc.GetByID(ctx, task.ID); got != nil {
		t.Error("deleted task still readable")
	}
	if got, _ := svc.GetByDedupKey(ctx, "generation:run", "a1"); got != nil {
		t.Error("deleted task still holds the dedup slot")
	}
	if _, total, _ := svc.List(ctx, 1, 10, nil, nil); total != 0 {
		t.Errorf("index still lists %d tasks after delete", total)
	}

	if err := svc.DeleteByID(ctx, task.ID); err == nil {
		t.Error("DeleteByID on a missing task should fail")
	}
}
