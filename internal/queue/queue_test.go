package queue

import (
	"testing"

	"github.com/pulsemetrics/collector/internal/models"
)

func TestTryEnqueue_AcceptsUntilFull(t *testing.T) {
	q := New(2)

	if !q.TryEnqueue(&models.Event{Page: "/a", Event: "view"}) {
		t.Fatal("First enqueue should succeed")
	}
	if !q.TryEnqueue(&models.Event{Page: "/b", Event: "view"}) {
		t.Fatal("Second enqueue should succeed")
	}
	if q.TryEnqueue(&models.Event{Page: "/c", Event: "view"}) {
		t.Error("Enqueue into a full queue should fail")
	}
	if q.Len() != 2 {
		t.Errorf("Expected 2 buffered events, got %d", q.Len())
	}
}

func TestTryEnqueue_NeverBlocks(t *testing.T) {
	q := New(1)
	q.TryEnqueue(&models.Event{Page: "/a", Event: "view"})

	// A full queue must reject immediately, not block.
	done := make(chan bool, 1)
	go func() {
		done <- q.TryEnqueue(&models.Event{Page: "/b", Event: "view"})
	}()

	if ok := <-done; ok {
		t.Error("Expected rejection from full queue")
	}
}

func TestEvents_PreservesOrder(t *testing.T) {
	q := New(10)
	pages := []string{"/first", "/second", "/third"}
	for _, p := range pages {
		q.TryEnqueue(&models.Event{Page: p, Event: "view"})
	}
	q.Close()

	i := 0
	for event := range q.Events() {
		if event.Page != pages[i] {
			t.Errorf("Position %d: expected %q, got %q", i, pages[i], event.Page)
		}
		i++
	}
	if i != len(pages) {
		t.Errorf("Expected %d events, got %d", len(pages), i)
	}
}

func TestClose_RejectsNewEvents(t *testing.T) {
	q := New(10)
	q.Close()

	if q.TryEnqueue(&models.Event{Page: "/a", Event: "view"}) {
		t.Error("Enqueue after close should fail")
	}
}

func TestClose_Idempotent(t *testing.T) {
	q := New(1)
	q.Close()
	q.Close()
}

func TestClose_DrainsBufferedEvents(t *testing.T) {
	q := New(10)
	q.TryEnqueue(&models.Event{Page: "/a", Event: "view"})
	q.TryEnqueue(&models.Event{Page: "/b", Event: "view"})
	q.Close()

	count := 0
	for range q.Events() {
		count++
	}
	if count != 2 {
		t.Errorf("Expected 2 drained events, got %d", count)
	}
}
