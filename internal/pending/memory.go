package pending

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/pulsemetrics/collector/internal/logging"
	"github.com/pulsemetrics/collector/internal/models"
)

// MemoryStore is an in-memory Store for tests and local development.
// It keeps the same row shape as the Postgres store: a monotonic ID and
// the event's canonical serialization.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		rows:   make(map[int64]string),
	}
}

func (s *MemoryStore) InsertBatch(ctx context.Context, events []*models.Event) error {
	encoded := make([]string, 0, len(events))
	for _, event := range events {
		data, err := event.Encode()
		if err != nil {
			return err
		}
		encoded = append(encoded, string(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, log := range encoded {
		s.rows[s.nextID] = log
		s.nextID++
	}
	return nil
}

// InsertRaw appends one row without encoding. Tests use it to plant
// rows whose log does not decode.
func (s *MemoryStore) InsertRaw(log string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.rows[id] = log
	s.nextID++
	return id
}

func (s *MemoryStore) FetchPage(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var records []Record
	for _, id := range ids {
		if limit >= 0 && len(records) >= limit {
			break
		}

		event, err := models.DecodeEvent([]byte(s.rows[id]))
		if err != nil {
			slog.Error("pending row failed to decode, skipping",
				logging.RowID(id),
				logging.Error(err),
			)
			continue
		}
		records = append(records, Record{ID: id, Event: event})
	}

	return records, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[id]; !ok {
		return ErrRecordNotFound
	}
	delete(s.rows, id)
	return nil
}

// Len reports the number of stored rows.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *MemoryStore) Close() {}
