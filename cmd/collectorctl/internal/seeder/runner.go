package seeder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Runner sends generated events to the collector's ingestion endpoint.
type Runner struct {
	BaseURL    string
	Token      string
	Count      int
	Interval   time.Duration
	Generator  *Generator
	HTTPClient *http.Client
}

// NewRunner creates a runner with a bounded HTTP client timeout.
func NewRunner(baseURL, token string, count int, interval time.Duration, gen *Generator) *Runner {
	return &Runner{
		BaseURL:   baseURL,
		Token:     token,
		Count:     count,
		Interval:  interval,
		Generator: gen,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type statusResponse struct {
	Status string `json:"status"`
}

// Run sends Count events and reports per-outcome totals. The collector
// answers "created" for directly queued events and "pending" for
// events that took the durable fallback path; both count as delivered.
func (r *Runner) Run() error {
	log.Printf("Seeding %d events to %s", r.Count, r.BaseURL)

	created := 0
	pending := 0
	failed := 0

	for i := 0; i < r.Count; i++ {
		payload, device := r.Generator.Next()

		status, err := r.send(payload, device)
		switch {
		case err != nil:
			failed++
			if failed <= 5 {
				log.Printf("Send failed: %v", err)
			}
		case status == "pending":
			pending++
		default:
			created++
		}

		if progress := r.Count / 10; progress > 0 && (i+1)%progress == 0 {
			log.Printf("Progress: %d/%d events sent", i+1, r.Count)
		}

		if r.Interval > 0 && i < r.Count-1 {
			time.Sleep(r.Interval)
		}
	}

	log.Printf("Seeding complete: %d created, %d pending, %d failed", created, pending, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d events failed to send", failed, r.Count)
	}
	return nil
}

func (r *Runner) send(payload any, device Device) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, r.BaseURL+"/events", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.Token)
	req.Header.Set("X-Device-UUID", device.UUID)
	req.Header.Set("X-App-Version", device.AppVersion)
	req.Header.Set("X-OS-Version", device.OSVersion)
	req.Header.Set("User-Agent", device.UserAgent)

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var sr statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return sr.Status, nil
}
