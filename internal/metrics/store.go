// Append-only in-memory time-series store for instrumentation samples.
package metrics

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Metric is one immutable named sample.
type Metric struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Unit      string            `json:"unit"`
	Labels    map[string]string `json:"labels,omitempty"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
}

// Sink receives every recorded sample, typically for durable storage.
// Sink errors never block or fail the in-memory append.
type Sink interface {
	InsertMetric(m Metric) error
}

// Store holds appended samples. Appends from concurrent instrumentation
// call sites are safe; samples are never mutated or deleted in-core
// (retention is a collaborator concern).
type Store struct {
	mu       sync.RWMutex
	samples  []Metric
	sink     Sink
	sinkErrs atomic.Uint64
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// SetSink attaches a durable sink. Call before concurrent recording starts.
func (s *Store) SetSink(sink Sink) {
	s.sink = sink
}

// Record appends a sample. A zero timestamp is stamped with the current time.
func (s *Store) Record(m Metric) {
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now().UTC()
	}
	s.mu.Lock()
	s.samples = append(s.samples, m)
	s.mu.Unlock()
	if s.sink != nil {
		if err := s.sink.InsertMetric(m); err != nil {
			// Samples arrive at tick rate, so a dead sink would flood the
			// log. Report the first failure and keep a counter for the rest.
			if s.sinkErrs.Add(1) == 1 {
				slog.Warn("metric sink write failed", "metric", m.Name, "err", err)
			}
		}
	}
}

// SinkErrors returns the number of sink writes that have failed so far.
func (s *Store) SinkErrors() uint64 {
	return s.sinkErrs.Load()
}

// Recent returns samples with the given name inside the trailing window,
// newest-first.
func (s *Store) Recent(name string, window time.Duration) []Metric {
	since := s.now().Add(-window)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Metric
	for i := len(s.samples) - 1; i >= 0; i-- {
		m := s.samples[i]
		if m.Name != name || m.Timestamp.Before(since) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Latest returns the most recent sample with the given name inside the
// trailing window.
func (s *Store) Latest(name string, window time.Duration) (Metric, bool) {
	since := s.now().Add(-window)
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.samples) - 1; i >= 0; i-- {
		m := s.samples[i]
		if m.Name == name && !m.Timestamp.Before(since) {
			return m, true
		}
	}
	return Metric{}, false
}

// Names returns the distinct metric names seen so far.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var names []string
	for _, m := range s.samples {
		if _, ok := seen[m.Name]; ok {
			continue
		}
		seen[m.Name] = struct{}{}
		names = append(names, m.Name)
	}
	return names
}
