package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fleetops-sim/internal/telemetry"
)

// HTTPWriter posts readings to the ingestion endpoint. Any 2xx response
// within the timeout is a successful send; everything else is a failure.
type HTTPWriter struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// NewHTTPWriter creates a writer for the given ingestion URL.
func NewHTTPWriter(url string, timeout time.Duration) (*HTTPWriter, error) {
	if url == "" {
		return nil, fmt.Errorf("ingest URL must not be empty")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPWriter{
		url:     url,
		timeout: timeout,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 20,
			},
		},
	}, nil
}

// Write sends a single reading. Safe for concurrent use.
func (w *HTTPWriter) Write(r telemetry.Reading) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "fleetops-sim/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send reading: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ingest endpoint returned %d", resp.StatusCode)
	}
	return nil
}
