package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fleetops-sim/internal/acceptance"
	"fleetops-sim/internal/config"
	"fleetops-sim/internal/logging"
	"fleetops-sim/internal/sim"
)

var (
	valConfigPath string
	valSchemaPath string
	valURL        string
	valDevices    int
	valDuration   time.Duration
	valOutput     string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an ingestion endpoint against the acceptance criteria",
	Long:  "validate sends latency probes and a sustained multi-device load to the ingestion endpoint, then reports pass/fail per criterion.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New()
		ctx := logging.NewContext(context.Background(), log)

		url := valURL
		if url == "" {
			cfg, err := config.Load(valConfigPath, valSchemaPath)
			if err != nil {
				return err
			}
			url = cfg.Ingest.URL
		}
		if url == "" {
			return fmt.Errorf("no ingestion endpoint: set --url or ingest.url in config")
		}

		writer, err := sim.NewHTTPWriter(url, 30*time.Second)
		if err != nil {
			return err
		}

		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		validator := acceptance.NewValidator(writer, acceptance.Config{
			LoadDevices:  valDevices,
			LoadDuration: valDuration,
		}, rng)

		log.Info("running acceptance validation", "endpoint", url)
		report := validator.Run(ctx)

		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		if valOutput != "" {
			if err := os.WriteFile(valOutput, out, 0o644); err != nil {
				return err
			}
		} else {
			fmt.Print(string(out))
		}

		if !report.OverallPassed {
			return fmt.Errorf("acceptance validation failed")
		}
		log.Info("acceptance validation passed")
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&valConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	validateCmd.Flags().StringVar(&valSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	validateCmd.Flags().StringVar(&valURL, "url", "", "Ingestion endpoint URL (overrides config)")
	validateCmd.Flags().IntVar(&valDevices, "devices", 0, "Concurrent load devices (0 uses the default)")
	validateCmd.Flags().DurationVar(&valDuration, "duration", 0, "Load phase duration (0 uses the default)")
	validateCmd.Flags().StringVar(&valOutput, "output", "", "Write the YAML report to a file instead of STDOUT")
}
