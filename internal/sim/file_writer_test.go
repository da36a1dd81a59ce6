package sim

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fleetops-sim/internal/telemetry"
)

func sampleReading(id string) telemetry.Reading {
	return telemetry.Reading{
		DeviceID:       id,
		OrganizationID: "org-1",
		Lat:            32.7157,
		Lng:            -117.1611,
		SpeedKmh:       54.2,
		Heading:        180,
		AccuracyM:      4.1,
		AltitudeM:      120,
		Satellites:     8,
		BatteryLevel:   76,
		SignalStrength: 88,
		Ignition:       true,
		Timestamp:      time.Unix(0, 0).UTC(),
	}
}

func TestFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.jsonl")
	fw, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}

	if err := fw.Write(sampleReading("TRK-001")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := fw.WriteBatch([]telemetry.Reading{sampleReading("TRK-002"), sampleReading("TRK-003")}); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r telemetry.Reading
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		ids = append(ids, r.DeviceID)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(ids))
	}
	if ids[0] != "TRK-001" || ids[2] != "TRK-003" {
		t.Errorf("unexpected order: %v", ids)
	}
}
