package main

import (
	"net/http"
	"testing"
	"time"
)

func TestBuildLatencySummary(t *testing.T) {
	summary := buildLatencySummary([]float64{5, 1, 3, 2, 4})

	if summary.Min != 1 || summary.Max != 5 {
		t.Fatalf("unexpected min/max: %+v", summary)
	}
	if summary.Avg != 3 {
		t.Fatalf("unexpected avg: %f", summary.Avg)
	}
	if summary.P50 != 3 {
		t.Fatalf("unexpected p50: %f", summary.P50)
	}
	if summary.P99 != 5 {
		t.Fatalf("unexpected p99: %f", summary.P99)
	}
}

func TestBuildLatencySummary_Empty(t *testing.T) {
	summary := buildLatencySummary(nil)
	if summary != (latencySummary{}) {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
}

func TestCollectorRecord(t *testing.T) {
	stats := newCollector()
	stats.record(time.Millisecond, http.StatusCreated)
	stats.record(2*time.Millisecond, http.StatusBadRequest)
	stats.record(3*time.Millisecond, http.StatusInternalServerError)

	if stats.committed != 1 {
		t.Fatalf("expected 1 committed, got %d", stats.committed)
	}
	if stats.oos != 1 {
		t.Fatalf("expected 1 out-of-stock, got %d", stats.oos)
	}
	if stats.failed != 1 {
		t.Fatalf("expected 1 failure, got %d", stats.failed)
	}
	if len(stats.latencies) != 3 {
		t.Fatalf("expected 3 latencies, got %d", len(stats.latencies))
	}
	if stats.statuses["201"] != 1 || stats.statuses["400"] != 1 || stats.statuses["500"] != 1 {
		t.Fatalf("unexpected status breakdown: %v", stats.statuses)
	}
}
