// Per-vehicle behavior: connectivity, ignition, motion and battery evolution.
package fleet

import (
	"fmt"
	"math/rand"
	"time"

	"fleetops-sim/internal/geo"
	"fleetops-sim/internal/telemetry"
)

// Vehicle holds runtime state for one simulated device. A Vehicle is owned
// exclusively by the engine stepping it; nothing else mutates it.
type Vehicle struct {
	ID              string
	OrganizationID  string
	Class           string
	Route           *geo.Route
	Index           int
	Online          bool
	Ignition        bool
	BatteryLevel    float64
	IdleMinutes     float64
	SpeedKmh        float64
	Heading         float64
	DailyDistanceKM float64
	LastUpdate      time.Time
}

// Behavior holds the stochastic tunables applied to every vehicle per tick.
type Behavior struct {
	OfflineProbability   float64 // online -> offline per tick
	ReconnectProbability float64 // offline -> online per tick
	MoveProbability      float64 // chance of advancing one route index while ignition is on
	BatteryDrainRate     float64 // percent per hour
	BatteryFloor         float64 // battery never drops below this
	LowBatteryLevel      float64 // below this, exhaustion disconnects become possible
	LowBatteryDisconnect float64 // chance of an exhaustion disconnect per tick
}

// DefaultBehavior mirrors the production simulation profile.
func DefaultBehavior() Behavior {
	return Behavior{
		OfflineProbability:   0.02,
		ReconnectProbability: 0.3,
		MoveProbability:      0.9,
		BatteryDrainRate:     0.1,
		BatteryFloor:         5,
		LowBatteryLevel:      10,
		LowBatteryDisconnect: 0.3,
	}
}

// Validate checks that all probabilities are in [0,1] and levels are sane.
func (b Behavior) Validate() error {
	probs := map[string]float64{
		"offline_probability":    b.OfflineProbability,
		"reconnect_probability":  b.ReconnectProbability,
		"move_probability":       b.MoveProbability,
		"low_battery_disconnect": b.LowBatteryDisconnect,
	}
	for name, p := range probs {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be in [0,1], got %f", name, p)
		}
	}
	if b.BatteryDrainRate < 0 {
		return fmt.Errorf("battery_drain_rate must be non-negative, got %f", b.BatteryDrainRate)
	}
	if b.BatteryFloor < 0 || b.BatteryFloor > 100 || b.LowBatteryLevel < 0 || b.LowBatteryLevel > 100 {
		return fmt.Errorf("battery levels must be in [0,100]")
	}
	return nil
}

// Engine advances vehicles one tick at a time. All randomness flows through
// the injected rng so runs are reproducible under a fixed seed.
type Engine struct {
	behavior Behavior
	interval time.Duration
	rng      *rand.Rand
	now      func() time.Time
}

// NewEngine creates a behavior engine for the given tick interval.
func NewEngine(behavior Behavior, tickInterval time.Duration, rng *rand.Rand) (*Engine, error) {
	if err := behavior.Validate(); err != nil {
		return nil, err
	}
	if tickInterval <= 0 {
		return nil, fmt.Errorf("tick interval must be positive, got %s", tickInterval)
	}
	return &Engine{behavior: behavior, interval: tickInterval, rng: rng, now: time.Now}, nil
}

// Step advances v by one tick. It returns the reading to transmit, or
// ok=false when the vehicle is offline or misconfigured and emits nothing
// this tick.
func (e *Engine) Step(v *Vehicle) (telemetry.Reading, bool) {
	now := e.now().UTC()

	if v.Online {
		if e.rng.Float64() < e.behavior.OfflineProbability {
			v.Online = false
			return telemetry.Reading{}, false
		}
	} else {
		if e.rng.Float64() >= e.behavior.ReconnectProbability {
			return telemetry.Reading{}, false
		}
		v.Online = true
	}

	if v.Route == nil || v.Route.Len() == 0 {
		return telemetry.Reading{}, false
	}

	point := v.Route.Points[v.Index]

	if v.Ignition && e.rng.Float64() < e.behavior.MoveProbability {
		if v.Index > 0 {
			prev := v.Route.Points[v.Index-1]
			v.DailyDistanceKM += geo.DistanceKM(prev.Point, point.Point)
		}
		v.Index++
		if v.Index >= v.Route.Len() {
			// The route repeats indefinitely; a wrap starts a new day.
			v.Index = 0
			v.DailyDistanceKM = 0
		}
		v.SpeedKmh = point.SpeedKmh * (0.85 + e.rng.Float64()*0.3)
		v.Heading = point.Heading
		v.IdleMinutes = 0
	} else {
		v.SpeedKmh = 0
		v.IdleMinutes += e.interval.Minutes()
	}

	drain := e.behavior.BatteryDrainRate * e.interval.Hours()
	if v.Ignition {
		drain *= 0.3
	}
	v.BatteryLevel -= drain
	if v.BatteryLevel < e.behavior.BatteryFloor {
		v.BatteryLevel = e.behavior.BatteryFloor
	}

	// Exhaustion disconnects happen on top of the ordinary offline roll.
	if v.BatteryLevel < e.behavior.LowBatteryLevel && e.rng.Float64() < e.behavior.LowBatteryDisconnect {
		v.Online = false
		return telemetry.Reading{}, false
	}

	reading := telemetry.Reading{
		DeviceID:       v.ID,
		OrganizationID: v.OrganizationID,
		Lat:            point.Point.Lat + (e.rng.Float64()*0.0002 - 0.0001),
		Lng:            point.Point.Lng + (e.rng.Float64()*0.0002 - 0.0001),
		SpeedKmh:       v.SpeedKmh,
		Heading:        v.Heading,
		AccuracyM:      3.0 + (e.rng.Float64()*4 - 1),
		AltitudeM:      50 + e.rng.Float64()*2450,
		Satellites:     4 + e.rng.Intn(9),
		BatteryLevel:   int(v.BatteryLevel),
		SignalStrength: 70 + e.rng.Intn(31),
		Ignition:       v.Ignition,
		Timestamp:      now,
	}
	v.LastUpdate = now
	return reading, true
}
