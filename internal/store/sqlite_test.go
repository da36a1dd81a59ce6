package store

import (
	"path/filepath"
	"testing"
	"time"

	"fleetops-sim/internal/metrics"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertMetric(t *testing.T) {
	s := openTestStore(t)
	err := s.InsertMetric(metrics.Metric{
		Name:      "gps_send_latency_ms",
		Value:     12.5,
		Unit:      "milliseconds",
		Labels:    map[string]string{"device_id": "TRK-001"},
		Service:   "simulator",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertMetric: %v", err)
	}
}

func TestAlertLifecycle(t *testing.T) {
	s := openTestStore(t)
	fired := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := AlertRecord{
		ID:           "High CPU Usage-system_cpu_usage",
		Name:         "High CPU Usage",
		Description:  "CPU usage is above 80%",
		Severity:     "HIGH",
		MetricName:   "system_cpu_usage",
		Threshold:    80,
		CurrentValue: 92,
		Status:       "FIRING",
		FiredAt:      fired,
	}
	if err := s.UpsertAlert(rec); err != nil {
		t.Fatalf("UpsertAlert: %v", err)
	}

	// Upserting the same id again must not create a second row.
	rec.CurrentValue = 95
	if err := s.UpsertAlert(rec); err != nil {
		t.Fatalf("UpsertAlert again: %v", err)
	}
	history, err := s.AlertHistory(10)
	if err != nil {
		t.Fatalf("AlertHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 record after upsert, got %d", len(history))
	}
	if history[0].CurrentValue != 95 || history[0].Status != "FIRING" {
		t.Errorf("unexpected record: %+v", history[0])
	}
	if history[0].ResolvedAt != nil {
		t.Errorf("firing alert has resolved_at set")
	}
	if !history[0].FiredAt.Equal(fired) {
		t.Errorf("fired_at = %v, want %v", history[0].FiredAt, fired)
	}

	resolvedAt := fired.Add(5 * time.Minute)
	if err := s.ResolveAlert(rec.ID, 42, resolvedAt); err != nil {
		t.Fatalf("ResolveAlert: %v", err)
	}
	history, err = s.AlertHistory(10)
	if err != nil {
		t.Fatalf("AlertHistory: %v", err)
	}
	if history[0].Status != "RESOLVED" || history[0].CurrentValue != 42 {
		t.Errorf("unexpected resolved record: %+v", history[0])
	}
	if history[0].ResolvedAt == nil || !history[0].ResolvedAt.Equal(resolvedAt) {
		t.Errorf("resolved_at = %v, want %v", history[0].ResolvedAt, resolvedAt)
	}
}

func TestAlertHistoryOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := AlertRecord{
			ID:         string(rune('a' + i)),
			Name:       "rule",
			Severity:   "HIGH",
			MetricName: "m",
			Status:     "FIRING",
			FiredAt:    base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.UpsertAlert(rec); err != nil {
			t.Fatalf("UpsertAlert %d: %v", i, err)
		}
	}
	history, err := s.AlertHistory(3)
	if err != nil {
		t.Fatalf("AlertHistory: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 records, got %d", len(history))
	}
	if history[0].ID != "e" || history[2].ID != "c" {
		t.Errorf("unexpected order: %q, %q, %q", history[0].ID, history[1].ID, history[2].ID)
	}
}

func TestStoreSatisfiesMetricsSink(t *testing.T) {
	var _ metrics.Sink = openTestStore(t)
}
