package queue

import (
	"sync"

	"github.com/pulsemetrics/collector/internal/metrics"
	"github.com/pulsemetrics/collector/internal/models"
)

// Queue is a capacity-bounded FIFO conduit between the ingress
// producers and the single consumer task. Enqueue never blocks:
// a full or closed queue rejects immediately so the caller can fall
// back to the pending store.
//
// Single-reader is enforced by construction: only the component given
// Events() may consume, and the constructor caller decides who that is.
type Queue struct {
	mu     sync.RWMutex
	ch     chan *models.Event
	closed bool
}

// New creates a queue with the given capacity.
func New(capacity int) *Queue {
	metrics.QueueCapacity.Set(float64(capacity))
	return &Queue{
		ch: make(chan *models.Event, capacity),
	}
}

// TryEnqueue attempts a non-blocking enqueue. It returns false when the
// queue is full or closed; the event is then the caller's to persist.
func (q *Queue) TryEnqueue(e *models.Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.ch <- e:
		metrics.QueueDepth.Set(float64(len(q.ch)))
		return true
	default:
		return false
	}
}

// Events returns the receive side of the queue. Hand it to exactly one
// consumer at startup; the channel closes when Close is called.
func (q *Queue) Events() <-chan *models.Event {
	return q.ch
}

// Close stops accepting new events and signals the consumer to drain.
// Safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Len reports the number of buffered events.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap reports the queue capacity.
func (q *Queue) Cap() int {
	return cap(q.ch)
}
