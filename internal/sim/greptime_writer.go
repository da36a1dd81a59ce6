package sim

import (
	"context"
	"net"
	"strconv"
	"sync"

	"fleetops-sim/internal/telemetry"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	ingesterContext "github.com/GreptimeTeam/greptimedb-ingester-go/context"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// GreptimeDBWriter archives readings to GreptimeDB via the ingester client.
// The ingestion endpoint stays the system of record; the archive is a
// long-term sink for historical queries.
type GreptimeDBWriter struct {
	mu     sync.Mutex
	client *greptime.Client
	db     string
	table  string
}

// NewGreptimeDBWriter creates a new GreptimeDB writer. The table is
// auto-created on first write; a ttl=30d hint is attached to writes so the
// auto-created table gets the same retention the DDL would have declared.
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		host = endpoint
		portStr = ""
	}
	cfg := greptime.NewConfig(host).WithDatabase(database)
	if portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, err
		}
		cfg = cfg.WithPort(port)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &GreptimeDBWriter{
		client: client,
		db:     database,
		table:  telemetry.ReadingTableName,
	}, nil
}

// Write inserts a single reading.
func (w *GreptimeDBWriter) Write(r telemetry.Reading) error {
	return w.WriteBatch([]telemetry.Reading{r})
}

// WriteBatch inserts multiple readings.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.Reading) error {
	if len(rows) == 0 {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx := ingesterContext.New(context.Background(),
		ingesterContext.WithHints("ttl=30d"))

	tbl, err := table.New(w.table)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("device_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("organization_id", types.STRING); err != nil {
		return err
	}
	for _, col := range []string{
		"lat", "lng", "speed_kmh", "heading", "accuracy", "altitude",
		"satellites", "battery_level", "signal_strength", "ignition",
	} {
		if err := tbl.AddFieldColumn(col, types.FLOAT64); err != nil {
			return err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP); err != nil {
		return err
	}

	for _, r := range rows {
		if err := tbl.AddRow(
			r.DeviceID,
			r.OrganizationID,
			r.Lat,
			r.Lng,
			r.SpeedKmh,
			r.Heading,
			r.AccuracyM,
			r.AltitudeM,
			float64(r.Satellites),
			float64(r.BatteryLevel),
			float64(r.SignalStrength),
			boolToFloat(r.Ignition),
			r.Timestamp,
		); err != nil {
			return err
		}
	}

	_, err = w.client.Write(ctx, tbl)
	return err
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
