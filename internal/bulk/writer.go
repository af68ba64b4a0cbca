package bulk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pulsemetrics/collector/internal/logging"
	"github.com/pulsemetrics/collector/internal/metrics"
	"github.com/pulsemetrics/collector/internal/models"
	"github.com/pulsemetrics/collector/internal/pending"
)

// Writer sends batches of events to OpenSearch in a single bulk request
// and routes undelivered events to the pending store. Indices partition
// by environment and calendar month: events_<environment>_<year>-<month>.
type Writer struct {
	client      *opensearch.Client
	store       pending.Store
	environment string
	timeout     time.Duration

	now func() time.Time
}

func NewWriter(client *opensearch.Client, store pending.Store, environment string, timeout time.Duration) *Writer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Writer{
		client:      client,
		store:       store,
		environment: environment,
		timeout:     timeout,
		now:         time.Now,
	}
}

// bulkResponse is the subset of the _bulk response the classifier needs.
type bulkResponse struct {
	Errors bool                    `json:"errors"`
	Items  []map[string]itemResult `json:"items"`
}

type itemResult struct {
	Status int `json:"status"`
}

// Flush delivers one batch. All failure handling is local: whatever
// cannot be confirmed indexed ends up in the pending store, and the
// caller's loop is never interrupted.
func (w *Writer) Flush(ctx context.Context, events []*models.Event) {
	if len(events) == 0 {
		return
	}

	timer := prometheus.NewTimer(metrics.FlushDuration)
	defer timer.ObserveDuration()

	indexName := w.indexName()

	body, err := w.buildBody(indexName, events)
	if err != nil {
		w.persistFailed(ctx, events, fmt.Errorf("failed to build bulk body: %w", err))
		return
	}

	// A hung bulk call stalls the whole pipeline, so bound it.
	reqCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	res, err := w.client.Bulk(bytes.NewReader(body), w.client.Bulk.WithContext(reqCtx))
	if err != nil {
		w.persistFailed(ctx, events, fmt.Errorf("bulk request failed: %w", err))
		return
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		w.persistFailed(ctx, events, fmt.Errorf("failed to read bulk response: %w", err))
		return
	}

	if res.IsError() {
		w.persistFailed(ctx, events, fmt.Errorf("bulk request returned %s", res.Status()))
		return
	}

	var parsed bulkResponse
	if err := json.Unmarshal(resBody, &parsed); err != nil {
		w.persistFailed(ctx, events, fmt.Errorf("failed to parse bulk response: %w", err))
		return
	}

	failed := failedEvents(&parsed, events)
	indexed := len(events) - len(failed)
	metrics.EventsIndexed.Add(float64(indexed))

	if len(failed) == 0 {
		slog.Info("bulk indexed events",
			slog.Int("count", indexed),
			logging.Index(indexName),
		)
		return
	}

	w.persistFailed(ctx, failed, fmt.Errorf("%d of %d items rejected by the index", len(failed), len(events)))
}

// failedEvents classifies per-item results by batch-relative position.
// A transportless signal (errors=false) means the whole batch landed.
// With errors=true, any event whose item is missing, has no "index"
// result, or reports a status outside [200,300) is undelivered.
func failedEvents(resp *bulkResponse, events []*models.Event) []*models.Event {
	if !resp.Errors {
		return nil
	}

	var failed []*models.Event
	for i, event := range events {
		if i >= len(resp.Items) {
			failed = append(failed, event)
			continue
		}
		result, ok := resp.Items[i]["index"]
		if !ok || result.Status < 200 || result.Status >= 300 {
			failed = append(failed, event)
		}
	}
	return failed
}

func (w *Writer) buildBody(indexName string, events []*models.Event) ([]byte, error) {
	meta, err := json.Marshal(map[string]any{
		"index": map[string]any{"_index": indexName},
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for _, event := range events {
		doc, err := event.Encode()
		if err != nil {
			return nil, err
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func (w *Writer) indexName() string {
	now := w.now().UTC()
	return fmt.Sprintf("events_%s_%d-%d", w.environment, now.Year(), int(now.Month()))
}

// persistFailed routes undelivered events to the pending store. A
// failed insert here is the one place an accepted event can be lost,
// so it gets the loudest possible log line.
func (w *Writer) persistFailed(ctx context.Context, events []*models.Event, cause error) {
	metrics.EventsFailed.Add(float64(len(events)))
	slog.Warn("bulk delivery failed, persisting events to pending store",
		slog.Int("count", len(events)),
		slog.String("cause", cause.Error()),
	)

	if err := w.store.InsertBatch(ctx, events); err != nil {
		slog.Error("pending store insert failed, events lost",
			slog.Int("count", len(events)),
			slog.String("cause", cause.Error()),
			logging.Error(err),
		)
	}
}
