package sim

import (
	"encoding/json"
	"os"
	"sync"

	"fleetops-sim/internal/telemetry"
)

// FileWriter exports readings to a JSONL file.
type FileWriter struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewFileWriter creates a FileWriter logging to path.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileWriter{file: f, enc: json.NewEncoder(f)}, nil
}

// Write logs a single reading.
func (w *FileWriter) Write(r telemetry.Reading) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(r)
}

// WriteBatch logs multiple readings.
func (w *FileWriter) WriteBatch(rows []telemetry.Reading) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, r := range rows {
		if err := w.enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
