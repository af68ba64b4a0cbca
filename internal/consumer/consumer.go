package consumer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pulsemetrics/collector/internal/logging"
	"github.com/pulsemetrics/collector/internal/metrics"
	"github.com/pulsemetrics/collector/internal/models"
)

// Flusher delivers one batch downstream. Implementations handle their
// own failures; Flush never reports one back.
type Flusher interface {
	Flush(ctx context.Context, events []*models.Event)
}

// Consumer is the single task draining the queue. It groups events into
// batches of batchSize, or whatever accumulated when flushInterval
// elapses, and hands each batch to the flusher. Exactly one consumer
// reads the queue; it is handed the receive side at construction and
// nothing else ever sees it.
type Consumer struct {
	events        <-chan *models.Event
	flusher       Flusher
	batchSize     int
	flushInterval time.Duration
	wg            sync.WaitGroup
}

func New(events <-chan *models.Event, flusher Flusher, batchSize int, flushInterval time.Duration) *Consumer {
	return &Consumer{
		events:        events,
		flusher:       flusher,
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Start launches the consumer loop. The loop runs until the queue
// closes and drains; shutting down is closing the queue, then Wait.
func (c *Consumer) Start() {
	c.wg.Add(1)
	go c.run()
}

// Wait blocks until the final flush after the queue closes.
func (c *Consumer) Wait() {
	c.wg.Wait()
}

func (c *Consumer) run() {
	defer c.wg.Done()

	slog.Info("consumer started",
		logging.Component("consumer"),
		logging.BatchSize(c.batchSize),
		slog.Duration("flush_interval", c.flushInterval),
	)

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	buffer := make([]*models.Event, 0, c.batchSize)

	// Flushes use a background context: a canceled request context at
	// shutdown must not keep the final buffer from reaching the store.
	flush := func() {
		if len(buffer) == 0 {
			return
		}
		c.flusher.Flush(context.Background(), buffer)
		buffer = buffer[:0]
	}

	for {
		select {
		case event, ok := <-c.events:
			if !ok {
				flush()
				slog.Info("consumer stopped, queue closed")
				return
			}
			buffer = append(buffer, event)
			metrics.QueueDepth.Set(float64(len(c.events)))
			if len(buffer) >= c.batchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}
