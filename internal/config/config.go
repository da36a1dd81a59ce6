// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fleetops-sim/internal/alerting"
	"fleetops-sim/internal/fleet"
	"fleetops-sim/internal/geo"
)

// FleetConfig defines one group of vehicles of the same class operating in
// one area.
type FleetConfig struct {
	Name         string `yaml:"name"`
	Class        string `yaml:"class"` // truck, car, motorcycle
	Count        int    `yaml:"count"`
	Organization string `yaml:"organization"`
	Area         string `yaml:"area"` // catalog key or custom area name
}

// RouteConfig controls trajectory generation.
type RouteConfig struct {
	DurationHours float64 `yaml:"duration_hours"`
	SampleSeconds int     `yaml:"sample_seconds"`
}

// BehaviorConfig mirrors fleet.Behavior in YAML form.
type BehaviorConfig struct {
	OfflineProbability   float64 `yaml:"offline_probability"`
	ReconnectProbability float64 `yaml:"reconnect_probability"`
	MoveProbability      float64 `yaml:"move_probability"`
	BatteryDrainRate     float64 `yaml:"battery_drain_rate"`
	BatteryFloor         float64 `yaml:"battery_floor"`
	LowBatteryLevel      float64 `yaml:"low_battery_level"`
	LowBatteryDisconnect float64 `yaml:"low_battery_disconnect"`
}

// IngestConfig describes the collaborator's ingestion endpoint.
type IngestConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// AlertingConfig configures the evaluator loop.
type AlertingConfig struct {
	PeriodSeconds   int             `yaml:"period_seconds"`
	LookbackMinutes int             `yaml:"lookback_minutes"`
	WebhookURL      string          `yaml:"webhook_url"`
	Rules           []alerting.Rule `yaml:"rules"`
}

// SimulationConfig is the root configuration.
type SimulationConfig struct {
	Areas       []geo.Area     `yaml:"areas"` // custom areas, in addition to the built-in catalog
	Fleets      []FleetConfig  `yaml:"fleets"`
	Route       RouteConfig    `yaml:"route"`
	Behavior    BehaviorConfig `yaml:"behavior"`
	Ingest      IngestConfig   `yaml:"ingest"`
	Alerting    AlertingConfig `yaml:"alerting"`
	TickSeconds int            `yaml:"tick_seconds"`
	Seed        int64          `yaml:"seed"` // 0 = time-seeded
}

// Load loads YAML config and validates it against a CUE schema.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *SimulationConfig) applyDefaults() {
	if c.TickSeconds == 0 {
		c.TickSeconds = 10
	}
	if c.Route.DurationHours == 0 {
		c.Route.DurationHours = 8
	}
	if c.Route.SampleSeconds == 0 {
		c.Route.SampleSeconds = 30
	}
	if c.Ingest.TimeoutSeconds == 0 {
		c.Ingest.TimeoutSeconds = 30
	}
	if c.Alerting.PeriodSeconds == 0 {
		c.Alerting.PeriodSeconds = 30
	}
	if c.Alerting.LookbackMinutes == 0 {
		c.Alerting.LookbackMinutes = 5
	}
	if len(c.Alerting.Rules) == 0 {
		c.Alerting.Rules = alerting.DefaultRules()
	}
	zero := BehaviorConfig{}
	if c.Behavior == zero {
		b := fleet.DefaultBehavior()
		c.Behavior = BehaviorConfig{
			OfflineProbability:   b.OfflineProbability,
			ReconnectProbability: b.ReconnectProbability,
			MoveProbability:      b.MoveProbability,
			BatteryDrainRate:     b.BatteryDrainRate,
			BatteryFloor:         b.BatteryFloor,
			LowBatteryLevel:      b.LowBatteryLevel,
			LowBatteryDisconnect: b.LowBatteryDisconnect,
		}
	}
}

// Validate applies construction-time invariant checks beyond the CUE schema.
func (c *SimulationConfig) Validate() error {
	if len(c.Fleets) == 0 {
		return fmt.Errorf("no fleets defined in the configuration")
	}
	for _, a := range c.Areas {
		if !a.Center.Valid() {
			return fmt.Errorf("area %q: center out of bounds", a.Name)
		}
		if a.RadiusKM <= 0 {
			return fmt.Errorf("area %q: radius must be positive", a.Name)
		}
	}
	for _, f := range c.Fleets {
		if f.Count <= 0 {
			return fmt.Errorf("fleet %q: count must be positive", f.Name)
		}
		if _, err := c.ResolveArea(f.Area); err != nil {
			return fmt.Errorf("fleet %q: %w", f.Name, err)
		}
	}
	return c.FleetBehavior().Validate()
}

// ResolveArea resolves a fleet's area reference against the custom areas
// first, then the built-in catalog.
func (c *SimulationConfig) ResolveArea(name string) (geo.Area, error) {
	for _, a := range c.Areas {
		if a.Name == name {
			return a, nil
		}
	}
	return geo.LookupArea(name)
}

// FleetBehavior converts the YAML behavior block to the engine's type.
func (c *SimulationConfig) FleetBehavior() fleet.Behavior {
	return fleet.Behavior{
		OfflineProbability:   c.Behavior.OfflineProbability,
		ReconnectProbability: c.Behavior.ReconnectProbability,
		MoveProbability:      c.Behavior.MoveProbability,
		BatteryDrainRate:     c.Behavior.BatteryDrainRate,
		BatteryFloor:         c.Behavior.BatteryFloor,
		LowBatteryLevel:      c.Behavior.LowBatteryLevel,
		LowBatteryDisconnect: c.Behavior.LowBatteryDisconnect,
	}
}

// TickInterval returns the simulation tick as a duration.
func (c *SimulationConfig) TickInterval() time.Duration {
	return time.Duration(c.TickSeconds) * time.Second
}

// IngestTimeout returns the per-send outbound timeout.
func (c *SimulationConfig) IngestTimeout() time.Duration {
	return time.Duration(c.Ingest.TimeoutSeconds) * time.Second
}
