// Telemetry structs shared by the simulator and its writers.
package telemetry

import (
	"os"
	"time"
)

// Reading is one immutable GPS reading produced by a vehicle on a tick.
// It is the payload sent to the ingestion endpoint and, optionally, the
// row written to the GreptimeDB archive (TAG/FIELD/TIME INDEX columns).
type Reading struct {
	DeviceID       string    `json:"device_id"`       // TAG
	OrganizationID string    `json:"organization_id"` // TAG
	Lat            float64   `json:"lat"`             // FIELD
	Lng            float64   `json:"lng"`             // FIELD
	SpeedKmh       float64   `json:"speed_kmh"`       // FIELD
	Heading        float64   `json:"heading"`         // FIELD
	AccuracyM      float64   `json:"accuracy"`        // FIELD
	AltitudeM      float64   `json:"altitude"`        // FIELD
	Satellites     int       `json:"satellites"`      // FIELD
	BatteryLevel   int       `json:"battery_level"`   // FIELD
	SignalStrength int       `json:"signal_strength"` // FIELD
	Ignition       bool      `json:"ignition"`        // FIELD
	Timestamp      time.Time `json:"timestamp"`       // TIME INDEX
}

// ReadingTableName holds the table name used when archiving to GreptimeDB.
// It defaults to "vehicle_telemetry" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var ReadingTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "vehicle_telemetry"
}()

func (Reading) TableName() string {
	return ReadingTableName
}
