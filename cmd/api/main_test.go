package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/venuedash/catalog/internal/config"
	"github.com/venuedash/catalog/internal/metrics"
)

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"postgres://catalog:s3cret@db:5432/catalog", "postgres://catalog@db:5432/catalog"},
		{"redis://:s3cret@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"redis://cache:6379", "redis://cache:6379"},
	}

	for _, tt := range tests {
		if got := redactURL(tt.in); got != tt.want {
			t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://catalog:s3cret@db:5432/catalog"
	err := errors.New("cannot parse `" + dsn + "`: password=s3cret host=db")

	got := sanitizeError(err, dsn)
	if strings.Contains(got, "s3cret") {
		t.Errorf("secret leaked: %s", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitMetrics(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		rec, h := initMetrics(&config.Config{MetricsBackend: config.MetricsMemory})
		if _, ok := rec.(*metrics.InMemoryRecorder); !ok {
			t.Fatalf("expected in-memory recorder, got %T", rec)
		}
		rec.CacheHit("events")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if !strings.Contains(w.Body.String(), "catalog_cache_hits_total 1") {
			t.Errorf("unexpected exposition:\n%s", w.Body.String())
		}
	})

	t.Run("prometheus", func(t *testing.T) {
		rec, h := initMetrics(&config.Config{MetricsBackend: config.MetricsPrometheus})
		if _, ok := rec.(*metrics.PrometheusRecorder); !ok {
			t.Fatalf("expected prometheus recorder, got %T", rec)
		}
		rec.IncEventCreated()

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		body, _ := io.ReadAll(w.Body)
		if !strings.Contains(string(body), `catalog_events_mutated_total{op="create"} 1`) {
			t.Errorf("unexpected exposition:\n%s", body)
		}
	})
}
