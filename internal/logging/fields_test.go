package logging

import (
	"errors"
	"log/slog"
	"testing"
)

func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want string
	}{
		{"service", Service("collector"), FieldService, "collector"},
		{"component", Component("consumer"), FieldComponent, "consumer"},
		{"error", Error(errors.New("boom")), FieldError, "boom"},
		{"index", Index("events_prod_2025-3"), FieldIndex, "events_prod_2025-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.key {
				t.Errorf("Expected key %q, got %q", tt.key, tt.attr.Key)
			}
			if tt.attr.Value.String() != tt.want {
				t.Errorf("Expected value %q, got %q", tt.want, tt.attr.Value.String())
			}
		})
	}
}

func TestIntFieldHelpers(t *testing.T) {
	if attr := BatchSize(1000); attr.Value.Int64() != 1000 {
		t.Errorf("Expected 1000, got %d", attr.Value.Int64())
	}
	if attr := RowID(42); attr.Value.Int64() != 42 {
		t.Errorf("Expected 42, got %d", attr.Value.Int64())
	}
}
