package replay

import (
	"context"
	"testing"
	"time"

	"github.com/pulsemetrics/collector/internal/models"
	"github.com/pulsemetrics/collector/internal/pending"
	"github.com/pulsemetrics/collector/internal/queue"
)

func seedStore(t *testing.T, store *pending.MemoryStore, pages ...string) {
	t.Helper()
	for _, p := range pages {
		if err := store.InsertBatch(context.Background(), []*models.Event{{Page: p, Event: "view"}}); err != nil {
			t.Fatalf("Failed to seed store: %v", err)
		}
	}
}

func TestTick_RequeuesAndDeletes(t *testing.T) {
	store := pending.NewMemoryStore()
	seedStore(t, store, "/a", "/b")
	q := queue.New(10)

	s := NewScheduler(store, q, Config{Interval: time.Hour, PageSize: 100})
	s.Tick(context.Background())

	if store.Len() != 0 {
		t.Errorf("Expected store drained, got %d rows", store.Len())
	}
	if q.Len() != 2 {
		t.Errorf("Expected 2 queued events, got %d", q.Len())
	}

	// Oldest rows come back first.
	q.Close()
	first := <-q.Events()
	if first.Page != "/a" {
		t.Errorf("Expected /a first, got %q", first.Page)
	}
}

func TestTick_FullQueueKeepsRows(t *testing.T) {
	store := pending.NewMemoryStore()
	seedStore(t, store, "/a", "/b", "/c")
	q := queue.New(1)

	s := NewScheduler(store, q, Config{Interval: time.Hour, PageSize: 100})
	s.Tick(context.Background())

	// One event fit; the rest stay for the next tick.
	if q.Len() != 1 {
		t.Errorf("Expected 1 queued event, got %d", q.Len())
	}
	if store.Len() != 2 {
		t.Errorf("Expected 2 retained rows, got %d", store.Len())
	}
}

func TestTick_SaturatedQueueDeletesNothing(t *testing.T) {
	store := pending.NewMemoryStore()
	seedStore(t, store, "/a", "/b")
	q := queue.New(1)
	q.TryEnqueue(&models.Event{Page: "/occupant", Event: "view"})

	s := NewScheduler(store, q, Config{Interval: time.Hour, PageSize: 100})
	s.Tick(context.Background())
	s.Tick(context.Background())

	// No row was admitted, so no row may be deleted; repeated ticks
	// leave the store intact until space frees up.
	if store.Len() != 2 {
		t.Errorf("Expected both rows retained, got %d", store.Len())
	}
	if q.Len() != 1 {
		t.Errorf("Expected only the original occupant queued, got %d", q.Len())
	}

	records, err := store.FetchPage(context.Background(), 10)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if records[0].Event.Page != "/a" || records[1].Event.Page != "/b" {
		t.Errorf("Retained rows changed: %q, %q",
			records[0].Event.Page, records[1].Event.Page)
	}
}

func TestTick_RespectsPageSize(t *testing.T) {
	store := pending.NewMemoryStore()
	seedStore(t, store, "/a", "/b", "/c", "/d")
	q := queue.New(10)

	s := NewScheduler(store, q, Config{Interval: time.Hour, PageSize: 2})
	s.Tick(context.Background())

	if q.Len() != 2 {
		t.Errorf("Expected 2 queued events, got %d", q.Len())
	}
	if store.Len() != 2 {
		t.Errorf("Expected 2 remaining rows, got %d", store.Len())
	}
}

func TestTick_EmptyStore(t *testing.T) {
	store := pending.NewMemoryStore()
	q := queue.New(10)

	s := NewScheduler(store, q, Config{Interval: time.Hour, PageSize: 100})
	s.Tick(context.Background())

	if q.Len() != 0 {
		t.Errorf("Expected no queued events, got %d", q.Len())
	}
}

func TestScheduler_StartStop(t *testing.T) {
	store := pending.NewMemoryStore()
	q := queue.New(10)

	s := NewScheduler(store, q, Config{Interval: time.Hour, PageSize: 100})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("Second Start should fail")
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := s.Stop(); err == nil {
		t.Error("Second Stop should fail")
	}
}

func TestScheduler_RunsOnInterval(t *testing.T) {
	store := pending.NewMemoryStore()
	seedStore(t, store, "/a")
	q := queue.New(10)

	s := NewScheduler(store, q, Config{Interval: 10 * time.Millisecond, PageSize: 100})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for q.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("Timed out waiting for replay tick")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if store.Len() != 0 {
		t.Errorf("Expected store drained, got %d rows", store.Len())
	}
}
