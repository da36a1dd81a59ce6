package sim

import (
	"encoding/json"
	"os"
	"sync"

	"fleetops-sim/internal/telemetry"
)

// StdoutWriter prints readings as JSON lines to STDOUT.
type StdoutWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewStdoutWriter creates a stdout JSONL writer.
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{enc: json.NewEncoder(os.Stdout)}
}

// Write prints a single reading.
func (w *StdoutWriter) Write(r telemetry.Reading) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(r)
}
