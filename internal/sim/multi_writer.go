package sim

import "fleetops-sim/internal/telemetry"

// MultiWriter fans each reading out to multiple writers.
type MultiWriter struct {
	writers []TelemetryWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(writers ...TelemetryWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write sends a reading to all writers, returning the first error after
// attempting every writer.
func (mw *MultiWriter) Write(r telemetry.Reading) error {
	var firstErr error
	for _, w := range mw.writers {
		if err := w.Write(r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WriteBatch sends multiple readings to all writers, using batch mode where
// supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.Reading) error {
	var firstErr error
	for _, w := range mw.writers {
		if bw, ok := w.(batchWriter); ok {
			if err := bw.WriteBatch(rows); err != nil && firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
