// Simulator orchestrating vehicles and telemetry ticks
package sim

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"fleetops-sim/internal/config"
	"fleetops-sim/internal/fleet"
	"fleetops-sim/internal/geo"
	"fleetops-sim/internal/metrics"
	"fleetops-sim/internal/telemetry"

	"github.com/google/uuid"
)

// TelemetryWriter is an interface to support different output writers.
// Write must be safe for concurrent use: the dispatch fan-out calls it from
// one goroutine per reading.
type TelemetryWriter interface {
	Write(telemetry.Reading) error
}

// Optional: writers can also support batch mode.
type batchWriter interface {
	WriteBatch([]telemetry.Reading) error
}

// vehicleClass carries the characteristic speed and ID prefix per class.
type vehicleClass struct {
	prefix      string
	avgSpeedKmh float64
}

var vehicleClasses = map[string]vehicleClass{
	"truck":      {prefix: "TRK", avgSpeedKmh: 65},
	"car":        {prefix: "CAR", avgSpeedKmh: 55},
	"motorcycle": {prefix: "MTR", avgSpeedKmh: 45},
}

// Stats holds the dispatcher's running counters.
type Stats struct {
	TotalAttempted  int64 `json:"total_attempted"`
	Succeeded       int64 `json:"succeeded"`
	Failed          int64 `json:"failed"`
	VehiclesOnline  int   `json:"vehicles_online"`
	VehiclesOffline int   `json:"vehicles_offline"`
	Ticks           int64 `json:"ticks"`
}

// VehicleStatus is one vehicle's snapshot for status queries.
type VehicleStatus struct {
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organization_id"`
	Online          bool      `json:"online"`
	Ignition        bool      `json:"ignition"`
	Lat             float64   `json:"lat"`
	Lng             float64   `json:"lng"`
	SpeedKmh        float64   `json:"speed_kmh"`
	Heading         float64   `json:"heading"`
	BatteryLevel    float64   `json:"battery_level"`
	IdleMinutes     float64   `json:"idle_minutes"`
	DailyDistanceKM float64   `json:"daily_distance_km"`
	LastUpdate      time.Time `json:"last_update"`
}

// Simulator owns all vehicles, advances them each tick, and dispatches
// their readings concurrently to the configured writer.
type Simulator struct {
	vehicles     []*fleet.Vehicle
	engine       *fleet.Engine
	writer       TelemetryWriter
	metrics      *metrics.Store
	tickInterval time.Duration
	rng          *rand.Rand
	now          func() time.Time

	mu    sync.Mutex
	stats Stats
}

// NewSimulator builds the vehicle population from config: one route per
// vehicle, generated inside its fleet's operating area.
func NewSimulator(cfg *config.SimulationConfig, writer TelemetryWriter, ms *metrics.Store, rng *rand.Rand) (*Simulator, error) {
	engine, err := fleet.NewEngine(cfg.FleetBehavior(), cfg.TickInterval(), rng)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		engine:       engine,
		writer:       writer,
		metrics:      ms,
		tickInterval: cfg.TickInterval(),
		rng:          rng,
		now:          time.Now,
	}

	for _, fc := range cfg.Fleets {
		class, ok := vehicleClasses[fc.Class]
		if !ok {
			return nil, fmt.Errorf("fleet %q: unknown vehicle class %q", fc.Name, fc.Class)
		}
		area, err := cfg.ResolveArea(fc.Area)
		if err != nil {
			return nil, fmt.Errorf("fleet %q: %w", fc.Name, err)
		}
		for i := 0; i < fc.Count; i++ {
			route, err := geo.GenerateRoute(geo.RouteConfig{
				Area:        area,
				Duration:    time.Duration(cfg.Route.DurationHours * float64(time.Hour)),
				AvgSpeedKmh: class.avgSpeedKmh + (rng.Float64()*20 - 10),
				SampleEvery: time.Duration(cfg.Route.SampleSeconds) * time.Second,
			}, rng)
			if err != nil {
				return nil, fmt.Errorf("fleet %q: generate route: %w", fc.Name, err)
			}
			s.vehicles = append(s.vehicles, &fleet.Vehicle{
				ID:             generateVehicleID(class.prefix, i),
				OrganizationID: fc.Organization,
				Class:          fc.Class,
				Route:          route,
				Online:         rng.Float64() < 0.75,
				Ignition:       rng.Float64() < 0.5,
				BatteryLevel:   20 + rng.Float64()*80,
			})
		}
	}
	if len(s.vehicles) == 0 {
		return nil, fmt.Errorf("no vehicles configured")
	}
	return s, nil
}

// Vehicles returns the simulated vehicle population.
func (s *Simulator) Vehicles() []*fleet.Vehicle {
	return s.vehicles
}

// Stats returns a copy of the running counters.
func (s *Simulator) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// FleetSnapshot returns the latest state for all vehicles.
func (s *Simulator) FleetSnapshot() []VehicleStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]VehicleStatus, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		st := VehicleStatus{
			ID:              v.ID,
			OrganizationID:  v.OrganizationID,
			Online:          v.Online,
			Ignition:        v.Ignition,
			SpeedKmh:        v.SpeedKmh,
			Heading:         v.Heading,
			BatteryLevel:    v.BatteryLevel,
			IdleMinutes:     v.IdleMinutes,
			DailyDistanceKM: v.DailyDistanceKM,
			LastUpdate:      v.LastUpdate,
		}
		if v.Route != nil && v.Route.Len() > 0 {
			p := v.Route.At(v.Index).Point
			st.Lat, st.Lng = p.Lat, p.Lng
		}
		out = append(out, st)
	}
	return out
}

func generateVehicleID(prefix string, index int) string {
	// Include the vehicle's index along with a UUID to guarantee uniqueness.
	return fmt.Sprintf("%s-%03d-%s", prefix, index+1, uuid.New().String())
}
