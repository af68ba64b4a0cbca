package pending

import (
	"context"
	"errors"

	"github.com/pulsemetrics/collector/internal/models"
)

var ErrRecordNotFound = errors.New("pending record not found")

// Record is one durable row awaiting redelivery: the store-assigned
// monotonic key and the event decoded from the row's canonical log.
type Record struct {
	ID    int64
	Event *models.Event
}

// Store is the durable fallback log for events not yet successfully
// delivered. Rows are only ever inserted and deleted, never mutated,
// so the store's atomic single-row operations are the only
// synchronization concurrent writers and the replay reader need.
type Store interface {
	// InsertBatch appends one row per event inside a single
	// transaction. All rows are written or none are.
	InsertBatch(ctx context.Context, events []*models.Event) error

	// FetchPage returns up to limit rows, oldest first. A row whose
	// log no longer decodes is logged and skipped; it never aborts
	// the rest of the page.
	FetchPage(ctx context.Context, limit int) ([]Record, error)

	// Delete removes one row by identity.
	Delete(ctx context.Context, id int64) error

	Close()
}
