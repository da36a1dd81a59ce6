// Threshold evaluation with an edge-triggered FIRING/RESOLVED lifecycle.
package alerting

import (
	"context"
	"sync"
	"time"

	"fleetops-sim/internal/logging"
	"fleetops-sim/internal/metrics"
	"fleetops-sim/internal/store"
)

// Alert is the mutable record tracking one rule's firing state.
type Alert struct {
	ID            string    `json:"id"`
	Rule          Rule      `json:"rule"`
	Status        Status    `json:"status"`
	CurrentValue  float64   `json:"current_value"`
	FiredAt       time.Time `json:"fired_at"`
	LastEvaluated time.Time `json:"last_evaluated"`
}

// Persister stores alert transitions durably. Persistence failures never
// block a transition; the in-memory state is the truth.
type Persister interface {
	UpsertAlert(store.AlertRecord) error
	ResolveAlert(id string, currentValue float64, resolvedAt time.Time) error
}

// Evaluator polls the metrics store against a static rule set. The active
// alert map is owned by the evaluator's own loop; external readers go
// through ActiveAlerts.
type Evaluator struct {
	rules    []Rule
	metrics  *metrics.Store
	notifier Notifier
	persist  Persister
	lookback time.Duration
	period   time.Duration

	mu     sync.Mutex
	active map[string]*Alert

	now func() time.Time
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithPersister attaches durable alert storage.
func WithPersister(p Persister) Option {
	return func(e *Evaluator) { e.persist = p }
}

// WithLookback overrides the metric lookback window (default 5m).
func WithLookback(d time.Duration) Option {
	return func(e *Evaluator) { e.lookback = d }
}

// NewEvaluator creates an evaluator polling every period.
func NewEvaluator(rules []Rule, ms *metrics.Store, notifier Notifier, period time.Duration, opts ...Option) (*Evaluator, error) {
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	e := &Evaluator{
		rules:    rules,
		metrics:  ms,
		notifier: notifier,
		lookback: 5 * time.Minute,
		period:   period,
		active:   make(map[string]*Alert),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run polls until the context is done. The loop has its own stop signal,
// independent of the simulator's.
func (e *Evaluator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting alert evaluator", "period", e.period, "rules", len(e.rules))
	ticker := time.NewTicker(e.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.Evaluate(ctx)
		case <-ctx.Done():
			log.Info("stopping alert evaluator")
			return
		}
	}
}

// Evaluate runs one evaluation cycle over every rule.
func (e *Evaluator) Evaluate(ctx context.Context) {
	log := logging.FromContext(ctx)
	now := e.now().UTC()

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, rule := range e.rules {
		latest, ok := e.metrics.Latest(rule.MetricName, e.lookback)
		if !ok {
			// Data gap: not an error, the rule is simply skipped this cycle.
			continue
		}

		id := rule.ID()
		alert, exists := e.active[id]

		switch {
		case latest.Value >= rule.Threshold && !exists:
			a := &Alert{
				ID:            id,
				Rule:          rule,
				Status:        StatusFiring,
				CurrentValue:  latest.Value,
				FiredAt:       now,
				LastEvaluated: now,
			}
			e.active[id] = a
			if e.persist != nil {
				if err := e.persist.UpsertAlert(record(a)); err != nil {
					log.Error("alert persist failed", "alert", rule.Name, "err", err)
				}
			}
			if err := e.notifier.Notify(ctx, *a); err != nil {
				log.Error("alert notification failed", "alert", rule.Name, "err", err)
			}
			log.Warn("alert fired", "alert", rule.Name, "metric", rule.MetricName,
				"value", latest.Value, "threshold", rule.Threshold, "severity", string(rule.Severity))

		case latest.Value >= rule.Threshold && exists:
			// Still over threshold: update only, no duplicate notification.
			alert.CurrentValue = latest.Value
			alert.LastEvaluated = now

		case latest.Value < rule.Threshold && exists:
			alert.Status = StatusResolved
			alert.CurrentValue = latest.Value
			alert.LastEvaluated = now
			if e.persist != nil {
				if err := e.persist.ResolveAlert(id, latest.Value, now); err != nil {
					log.Error("alert resolve persist failed", "alert", rule.Name, "err", err)
				}
			}
			if err := e.notifier.Notify(ctx, *alert); err != nil {
				log.Error("resolution notification failed", "alert", rule.Name, "err", err)
			}
			delete(e.active, id)
			log.Info("alert resolved", "alert", rule.Name, "metric", rule.MetricName, "value", latest.Value)
		}
	}
}

// ActiveAlerts returns a snapshot of the currently firing alerts.
func (e *Evaluator) ActiveAlerts() []Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Alert, 0, len(e.active))
	for _, a := range e.active {
		out = append(out, *a)
	}
	return out
}

func record(a *Alert) store.AlertRecord {
	return store.AlertRecord{
		ID:           a.ID,
		Name:         a.Rule.Name,
		Description:  a.Rule.Description,
		Severity:     string(a.Rule.Severity),
		MetricName:   a.Rule.MetricName,
		Threshold:    a.Rule.Threshold,
		CurrentValue: a.CurrentValue,
		Status:       string(a.Status),
		FiredAt:      a.FiredAt,
	}
}
