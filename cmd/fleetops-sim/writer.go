package main

import (
	"os"

	"fleetops-sim/internal/config"
	"fleetops-sim/internal/sim"
)

// newWriter assembles the telemetry writer chain from flags, config and env.
// The primary sink is the ingestion endpoint (or STDOUT in print-only mode);
// GREPTIMEDB_ENDPOINT adds an archive sink and --log-file a JSONL export.
// The returned cleanup closes any file resources.
func newWriter(cfg *config.SimulationConfig, printOnly bool, logFile string) (sim.TelemetryWriter, func(), error) {
	cleanup := func() {}

	var primary sim.TelemetryWriter
	if printOnly || cfg.Ingest.URL == "" {
		primary = sim.NewStdoutWriter()
	} else {
		hw, err := sim.NewHTTPWriter(cfg.Ingest.URL, cfg.IngestTimeout())
		if err != nil {
			return nil, nil, err
		}
		primary = hw
	}

	writers := []sim.TelemetryWriter{primary}

	if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" && !printOnly {
		gw, err := sim.NewGreptimeDBWriter(endpoint, "public")
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, gw)
	}

	if logFile != "" {
		fw, err := sim.NewFileWriter(logFile)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, fw)
		cleanup = func() { fw.Close() }
	}

	if len(writers) == 1 {
		return primary, cleanup, nil
	}
	return sim.NewMultiWriter(writers...), cleanup, nil
}
