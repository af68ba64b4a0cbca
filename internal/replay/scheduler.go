package replay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pulsemetrics/collector/internal/logging"
	"github.com/pulsemetrics/collector/internal/metrics"
	"github.com/pulsemetrics/collector/internal/models"
	"github.com/pulsemetrics/collector/internal/pending"
)

// Enqueuer is the producer side of the bounded queue.
type Enqueuer interface {
	TryEnqueue(e *models.Event) bool
}

// Scheduler periodically re-admits pending store rows into the live
// pipeline. A row is deleted once its event is back in the queue, not
// once it is indexed: redelivery is at-least-once, never-at-zero. Rows
// that do not fit in the queue stay put and are retried next tick.
type Scheduler struct {
	mu       sync.Mutex
	store    pending.Store
	queue    Enqueuer
	interval time.Duration
	pageSize int
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// Config configures the replay scheduler.
type Config struct {
	Interval time.Duration
	PageSize int
}

func NewScheduler(store pending.Store, queue Enqueuer, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}

	return &Scheduler{
		store:    store,
		queue:    queue,
		interval: cfg.Interval,
		pageSize: cfg.PageSize,
	}
}

// Start begins the replay loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("replay scheduler already running")
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	slog.Info("replay scheduler starting",
		logging.Component("replay"),
		slog.Duration("interval", s.interval),
		slog.Int("page_size", s.pageSize),
	)

	s.wg.Add(1)
	go s.run(ctx)

	return nil
}

// Stop gracefully stops the replay loop.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("replay scheduler not running")
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("replay scheduler stopped")
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one replay pass: fetch a page of pending rows, re-admit
// each in order, and delete the rows that made it back in. Every
// failure is handled locally; a bad page never stops the scheduler.
func (s *Scheduler) Tick(ctx context.Context) {
	records, err := s.store.FetchPage(ctx, s.pageSize)
	if err != nil {
		slog.Error("replay fetch failed", logging.Error(err))
		return
	}

	if len(records) == 0 {
		return
	}

	requeued := 0
	for _, record := range records {
		if !s.queue.TryEnqueue(record.Event) {
			// Queue is full; the row stays and the next tick retries it.
			metrics.ReplayedEvents.WithLabelValues("deferred").Inc()
			continue
		}

		metrics.ReplayedEvents.WithLabelValues("requeued").Inc()
		requeued++

		if err := s.store.Delete(ctx, record.ID); err != nil {
			// The event is already back in the pipeline. Leaving the
			// row means one extra delivery on a future tick, which the
			// at-least-once model accepts.
			slog.Warn("replay delete failed, row will be redelivered",
				logging.RowID(record.ID),
				logging.Error(err),
			)
		}
	}

	slog.Info("replay tick complete",
		slog.Int("fetched", len(records)),
		slog.Int("requeued", requeued),
	)
}
