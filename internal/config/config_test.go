package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Pipeline.QueueCapacity != 100000 {
		t.Errorf("Expected default queue capacity 100000, got %d", cfg.Pipeline.QueueCapacity)
	}
	if cfg.Pipeline.BatchSize != 1000 {
		t.Errorf("Expected default batch size 1000, got %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Pipeline.FlushInterval != 10*time.Second {
		t.Errorf("Expected default flush interval 10s, got %s", cfg.Pipeline.FlushInterval)
	}
	if cfg.Pipeline.ReplayInterval != 60*time.Second {
		t.Errorf("Expected default replay interval 60s, got %s", cfg.Pipeline.ReplayInterval)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected default log format json, got %q", cfg.Logging.Format)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
environment: staging
pipeline:
  queue_capacity: 500
  batch_size: 50
  flush_interval: 2s
opensearch:
  url: https://search.internal:9200
  bulk_timeout: 15s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Environment != "staging" {
		t.Errorf("Expected environment staging, got %q", cfg.Environment)
	}
	if cfg.Pipeline.QueueCapacity != 500 {
		t.Errorf("Expected queue capacity 500, got %d", cfg.Pipeline.QueueCapacity)
	}
	if cfg.Pipeline.FlushInterval != 2*time.Second {
		t.Errorf("Expected flush interval 2s, got %s", cfg.Pipeline.FlushInterval)
	}
	if cfg.OpenSearch.BulkTimeout != 15*time.Second {
		t.Errorf("Expected bulk timeout 15s, got %s", cfg.OpenSearch.BulkTimeout)
	}
	// Unset keys keep their defaults
	if cfg.Pipeline.ReplayPageSize != 1000 {
		t.Errorf("Expected default replay page size 1000, got %d", cfg.Pipeline.ReplayPageSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COLLECTOR_SERVER_PORT", "7070")
	t.Setenv("COLLECTOR_ENVIRONMENT", "prod")
	t.Setenv("COLLECTOR_PIPELINE_BATCH_SIZE", "250")
	t.Setenv("COLLECTOR_DATABASE_URL", "postgres://env-host:5432/collector")

	cfg, err := Load(writeConfigFile(t, "server:\n  port: 9090\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Env wins over both file values and defaults, for nested keys too.
	if cfg.Server.Port != 7070 {
		t.Errorf("Expected env port 7070, got %d", cfg.Server.Port)
	}
	if cfg.Environment != "prod" {
		t.Errorf("Expected env environment prod, got %q", cfg.Environment)
	}
	if cfg.Pipeline.BatchSize != 250 {
		t.Errorf("Expected env batch size 250, got %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Database.URL != "postgres://env-host:5432/collector" {
		t.Errorf("Expected env database URL, got %q", cfg.Database.URL)
	}
}

func TestLoad_InvalidPipelineValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero queue capacity", "pipeline:\n  queue_capacity: 0\n"},
		{"negative batch size", "pipeline:\n  batch_size: -5\n"},
		{"zero flush interval", "pipeline:\n  flush_interval: 0s\n"},
		{"zero replay page size", "pipeline:\n  replay_page_size: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfigFile(t, tt.content)); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}
