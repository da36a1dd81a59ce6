package alerting

import (
	"context"
	"testing"
	"time"

	"fleetops-sim/internal/metrics"
	"fleetops-sim/internal/store"
)

// MockNotifier records every transition it is asked to deliver.
type MockNotifier struct {
	Fired    []Alert
	Resolved []Alert
}

func (m *MockNotifier) Notify(_ context.Context, a Alert) error {
	switch a.Status {
	case StatusFiring:
		m.Fired = append(m.Fired, a)
	case StatusResolved:
		m.Resolved = append(m.Resolved, a)
	}
	return nil
}

func cpuRule() Rule {
	return Rule{
		Name:       "High CPU Usage",
		MetricName: "system_cpu_usage",
		Threshold:  80,
		Severity:   SeverityHigh,
	}
}

func newTestEvaluator(t *testing.T, ms *metrics.Store, n Notifier, opts ...Option) *Evaluator {
	t.Helper()
	e, err := NewEvaluator([]Rule{cpuRule()}, ms, n, 30*time.Second, opts...)
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	return e
}

func TestEvaluate_FiresOnThresholdBreach(t *testing.T) {
	ms := metrics.NewStore()
	notifier := &MockNotifier{}
	e := newTestEvaluator(t, ms, notifier)

	ms.Record(metrics.Metric{Name: "system_cpu_usage", Value: 85})
	e.Evaluate(context.Background())

	active := e.ActiveAlerts()
	if len(active) != 1 {
		t.Fatalf("expected 1 active alert, got %d", len(active))
	}
	if active[0].Status != StatusFiring || active[0].CurrentValue != 85 {
		t.Errorf("unexpected alert: %+v", active[0])
	}
	if active[0].ID != "High CPU Usage-system_cpu_usage" {
		t.Errorf("unexpected alert id %q", active[0].ID)
	}
	if len(notifier.Fired) != 1 {
		t.Errorf("fired notifications = %d, want 1", len(notifier.Fired))
	}
}

func TestEvaluate_ExactThresholdFires(t *testing.T) {
	ms := metrics.NewStore()
	notifier := &MockNotifier{}
	e := newTestEvaluator(t, ms, notifier)

	ms.Record(metrics.Metric{Name: "system_cpu_usage", Value: 80})
	e.Evaluate(context.Background())

	if len(e.ActiveAlerts()) != 1 {
		t.Errorf("value equal to threshold should fire")
	}
}

func TestEvaluate_NoDuplicateNotificationWhileFiring(t *testing.T) {
	ms := metrics.NewStore()
	notifier := &MockNotifier{}
	e := newTestEvaluator(t, ms, notifier)

	ms.Record(metrics.Metric{Name: "system_cpu_usage", Value: 85})
	e.Evaluate(context.Background())
	ms.Record(metrics.Metric{Name: "system_cpu_usage", Value: 92})
	e.Evaluate(context.Background())

	active := e.ActiveAlerts()
	if len(active) != 1 {
		t.Fatalf("expected 1 active alert, got %d", len(active))
	}
	if active[0].CurrentValue != 92 {
		t.Errorf("current value not updated: %+v", active[0])
	}
	if len(notifier.Fired) != 1 {
		t.Errorf("fired notifications = %d, want exactly 1", len(notifier.Fired))
	}
}

func TestEvaluate_ResolvesBelowThreshold(t *testing.T) {
	ms := metrics.NewStore()
	notifier := &MockNotifier{}
	e := newTestEvaluator(t, ms, notifier)

	ms.Record(metrics.Metric{Name: "system_cpu_usage", Value: 85})
	e.Evaluate(context.Background())
	ms.Record(metrics.Metric{Name: "system_cpu_usage", Value: 70})
	e.Evaluate(context.Background())

	if len(e.ActiveAlerts()) != 0 {
		t.Errorf("alert still active after recovery")
	}
	if len(notifier.Resolved) != 1 {
		t.Fatalf("resolved notifications = %d, want 1", len(notifier.Resolved))
	}
	if notifier.Resolved[0].CurrentValue != 70 {
		t.Errorf("resolution carries value %f, want 70", notifier.Resolved[0].CurrentValue)
	}
}

func TestEvaluate_RefiresAfterResolution(t *testing.T) {
	ms := metrics.NewStore()
	notifier := &MockNotifier{}
	e := newTestEvaluator(t, ms, notifier)

	ms.Record(metrics.Metric{Name: "system_cpu_usage", Value: 85})
	e.Evaluate(context.Background())
	ms.Record(metrics.Metric{Name: "system_cpu_usage", Value: 70})
	e.Evaluate(context.Background())
	ms.Record(metrics.Metric{Name: "system_cpu_usage", Value: 90})
	e.Evaluate(context.Background())

	if len(e.ActiveAlerts()) != 1 {
		t.Errorf("expected a fresh alert after re-breach")
	}
	if len(notifier.Fired) != 2 {
		t.Errorf("fired notifications = %d, want 2", len(notifier.Fired))
	}
}

func TestEvaluate_DataGapHoldsState(t *testing.T) {
	ms := metrics.NewStore()
	notifier := &MockNotifier{}
	e := newTestEvaluator(t, ms, notifier, WithLookback(50*time.Millisecond))

	ms.Record(metrics.Metric{Name: "system_cpu_usage", Value: 85})
	e.Evaluate(context.Background())

	// Let every sample age out of the lookback window; the alert must
	// neither duplicate nor resolve.
	time.Sleep(80 * time.Millisecond)
	e.Evaluate(context.Background())

	if len(e.ActiveAlerts()) != 1 {
		t.Errorf("data gap changed alert state")
	}
	if len(notifier.Fired) != 1 || len(notifier.Resolved) != 0 {
		t.Errorf("data gap produced notifications: fired=%d resolved=%d",
			len(notifier.Fired), len(notifier.Resolved))
	}
}

func TestEvaluate_NoDataNoAlert(t *testing.T) {
	ms := metrics.NewStore()
	notifier := &MockNotifier{}
	e := newTestEvaluator(t, ms, notifier)

	e.Evaluate(context.Background())
	if len(e.ActiveAlerts()) != 0 || len(notifier.Fired) != 0 {
		t.Errorf("evaluation without data produced alerts")
	}
}

// stubPersister records persistence calls.
type stubPersister struct {
	upserts  []store.AlertRecord
	resolves []string
}

func (p *stubPersister) UpsertAlert(r store.AlertRecord) error {
	p.upserts = append(p.upserts, r)
	return nil
}

func (p *stubPersister) ResolveAlert(id string, _ float64, _ time.Time) error {
	p.resolves = append(p.resolves, id)
	return nil
}

func TestEvaluate_PersistsTransitions(t *testing.T) {
	ms := metrics.NewStore()
	persist := &stubPersister{}
	e := newTestEvaluator(t, ms, &MockNotifier{}, WithPersister(persist))

	ms.Record(metrics.Metric{Name: "system_cpu_usage", Value: 85})
	e.Evaluate(context.Background())
	ms.Record(metrics.Metric{Name: "system_cpu_usage", Value: 70})
	e.Evaluate(context.Background())

	if len(persist.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(persist.upserts))
	}
	if persist.upserts[0].Status != string(StatusFiring) {
		t.Errorf("persisted status %q", persist.upserts[0].Status)
	}
	if len(persist.resolves) != 1 || persist.resolves[0] != "High CPU Usage-system_cpu_usage" {
		t.Errorf("resolves = %v", persist.resolves)
	}
}

func TestNewEvaluator_RejectsInvalidRule(t *testing.T) {
	bad := Rule{Name: "", MetricName: "m", Severity: SeverityHigh}
	if _, err := NewEvaluator([]Rule{bad}, metrics.NewStore(), &MockNotifier{}, time.Second); err == nil {
		t.Errorf("expected error for invalid rule")
	}
}
