package pending

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsemetrics/collector/internal/logging"
	"github.com/pulsemetrics/collector/internal/metrics"
	"github.com/pulsemetrics/collector/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string, maxConns int) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if maxConns > 0 {
		config.MaxConns = int32(maxConns)
	}
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) InsertBatch(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		metrics.PendingInsertErrors.Inc()
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, event := range events {
		data, err := event.Encode()
		if err != nil {
			metrics.PendingInsertErrors.Inc()
			return fmt.Errorf("failed to encode event: %w", err)
		}

		if _, err := tx.Exec(ctx, `INSERT INTO pending_events (log) VALUES ($1)`, string(data)); err != nil {
			metrics.PendingInsertErrors.Inc()
			return fmt.Errorf("failed to insert pending event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		metrics.PendingInsertErrors.Inc()
		return fmt.Errorf("failed to commit pending batch: %w", err)
	}

	metrics.PendingInserts.Add(float64(len(events)))
	return nil
}

func (s *PostgresStore) FetchPage(ctx context.Context, limit int) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, log FROM pending_events ORDER BY id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending events: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var id int64
		var log string
		if err := rows.Scan(&id, &log); err != nil {
			return nil, fmt.Errorf("failed to scan pending row: %w", err)
		}

		event, err := models.DecodeEvent([]byte(log))
		if err != nil {
			// A corrupt row must not take down the rest of the page.
			// The row stays in the store so nothing is lost silently.
			slog.Error("pending row failed to decode, skipping",
				logging.RowID(id),
				logging.Error(err),
			)
			continue
		}

		records = append(records, Record{ID: id, Event: event})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending rows: %w", err)
	}

	return records, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := s.pool.Exec(ctx, `DELETE FROM pending_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending event: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRecordNotFound
	}

	return nil
}
