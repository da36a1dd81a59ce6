package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fleetops-sim/internal/admin"
	"fleetops-sim/internal/alerting"
	"fleetops-sim/internal/config"
	"fleetops-sim/internal/logging"
	"fleetops-sim/internal/metrics"
	"fleetops-sim/internal/sim"
	"fleetops-sim/internal/store"
)

var (
	simPrintOnly  bool
	simConfigPath string
	simSchemaPath string
	simTick       time.Duration
	simLogFile    string
	simSeed       int64
	simDBPath     string
	simAdminAddr  string
	simLogLevel   string
	simLogFormat  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time fleet simulator",
	Long:  "simulate starts the fleet simulator, streams telemetry to the ingestion endpoint and evaluates alert rules over the dispatch metrics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.NewWith(simLogLevel, simLogFormat)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), log))
		defer cancel()

		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}

		seed := simSeed
		if seed == 0 {
			seed = cfg.Seed
		}
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		log.Info("simulation seed", "seed", seed)

		writer, cleanup, err := newWriter(cfg, simPrintOnly, simLogFile)
		if err != nil {
			return err
		}
		defer cleanup()

		ms := metrics.NewStore()

		var db *store.Store
		if simDBPath != "" {
			db, err = store.Open(simDBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			ms.SetSink(db)
		}

		if simTick > 0 {
			cfg.TickSeconds = tickSeconds(simTick)
		}
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			cfg.TickSeconds = tickSeconds(d)
		}

		simulator, err := sim.NewSimulator(cfg, writer, ms, rng)
		if err != nil {
			return err
		}

		rules := cfg.Alerting.Rules
		if len(rules) == 0 {
			rules = alerting.DefaultRules()
		}
		var notifier alerting.Notifier = &alerting.LogNotifier{Logger: log}
		if cfg.Alerting.WebhookURL != "" {
			notifier = alerting.MultiNotifier{
				notifier,
				alerting.NewWebhookNotifier(cfg.Alerting.WebhookURL, cfg.IngestTimeout()),
			}
		}
		period := time.Duration(cfg.Alerting.PeriodSeconds) * time.Second
		opts := []alerting.Option{
			alerting.WithLookback(time.Duration(cfg.Alerting.LookbackMinutes) * time.Minute),
		}
		if db != nil {
			opts = append(opts, alerting.WithPersister(db))
		}
		evaluator, err := alerting.NewEvaluator(rules, ms, notifier, period, opts...)
		if err != nil {
			return err
		}

		srv := admin.NewServer(simulator, ms, evaluator, db)
		go func() {
			log.Info("status server listening", "addr", simAdminAddr)
			if err := srv.Start(ctx, simAdminAddr); err != nil && err != http.ErrServerClosed {
				log.Error("status server failed", "err", err)
			}
		}()

		go evaluator.Run(ctx)
		go simulator.Run(ctx)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs

		cancel()
		log.Info("fleet simulation stopped")
		return nil
	},
}

// tickSeconds converts a duration override to whole seconds, minimum one.
func tickSeconds(d time.Duration) int {
	secs := int(d.Round(time.Second).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of sending to the ingestion endpoint")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 0, "Override telemetry tick interval, rounded to whole seconds (e.g. 5s)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export telemetry logs (JSONL)")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Random seed (0 uses config seed, then wall clock)")
	simulateCmd.Flags().StringVar(&simDBPath, "db", "", "SQLite path for metric and alert persistence (empty disables)")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", ":8080", "Status server listen address")
	simulateCmd.Flags().StringVar(&simLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	simulateCmd.Flags().StringVar(&simLogFormat, "log-format", "text", "Log format (text or json)")
}
