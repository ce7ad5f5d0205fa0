package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunExecutesJob(t *testing.T) {
	s := New()
	var calls atomic.Int32
	s.Register(Job{
		Name:     "tick",
		Interval: time.Hour,
		Fn: func(ctx context.Context) error {
			calls.Add(1)
			return nil
		},
	})

	if err := s.Run(context.Background(), "tick"); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if calls.Load() != 1 {
		t.Fatalf("job ran %d times, want 1", calls.Load())
	}
}

func TestRunUnknownJob(t *testing.T) {
	s := New()
	if err := s.Run(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestListReflectsFailure(t *testing.T) {
	s := New()
	s.Register(Job{
		Name:     "broken",
		Interval: time.Hour,
		Fn: func(ctx context.Context) error {
			return errors.New("boom")
		},
	})
	s.Run(context.Background(), "broken")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		items := s.List()
		if len(items) == 1 && items[0].Status == StatusReject {
			if items[0].Message != "boom" {
				t.Errorf("Message = %q, want boom", items[0].Message)
			}
			if items[0].LastRunAt == nil {
				t.Error("LastRunAt should be set after a run")
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job never reported a rejected run")
}

func TestRunOnStartSchedulesImmediately(t *testing.T) {
	s := New()
	s.Register(Job{Name: "eager", Interval: time.Hour, RunOnStart: true, Fn: func(ctx context.Context) error { return nil }})
	s.Register(Job{Name: "patient", Interval: time.Hour, Fn: func(ctx context.Context) error { return nil }})

	for _, item := range s.List() {
		wait := time.Until(*item.NextRunAt)
		switch item.Name {
		case "eager":
			if wait > time.Second {
				t.Errorf("eager job first run in %v, want immediate", wait)
			}
		case "patient":
			if wait < 30*time.Minute {
				t.Errorf("patient job first run in %v, want about an hour", wait)
			}
		}
	}
}
