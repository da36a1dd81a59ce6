package geo

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RoutePoint is one timestamped sample of a generated trajectory.
type RoutePoint struct {
	Point     Point     `json:"position"`
	Timestamp time.Time `json:"timestamp"`
	SpeedKmh  float64   `json:"speed_kmh"`
	Heading   float64   `json:"heading"`
	AccuracyM float64   `json:"accuracy"`
}

// Route is an immutable ordered trajectory. Consumers traverse it by index
// with wraparound; the points themselves are generated once and never change.
type Route struct {
	Area   Area
	Points []RoutePoint
}

// Len returns the number of points on the route.
func (r *Route) Len() int { return len(r.Points) }

// At returns the point at index i, wrapping past the end.
func (r *Route) At(i int) RoutePoint {
	return r.Points[i%len(r.Points)]
}

// RouteConfig controls trajectory generation for one operating area.
type RouteConfig struct {
	Area        Area
	Duration    time.Duration
	AvgSpeedKmh float64
	SampleEvery time.Duration // defaults to 30s
	Start       time.Time     // defaults to time.Now
}

const (
	stopProbability    = 0.05 // traffic light / congestion stop
	highwayProbability = 0.15 // highway segment, well above average speed
	turnProbability    = 0.20 // larger directional change
	maxTurnDeg         = 45
	headingDriftDeg    = 5
	containCorrectDeg  = 30
)

// GenerateRoute produces a realistic trajectory inside cfg.Area. Every point
// is guaranteed to lie within the area's containment radius. The same rng
// seed and config yield an identical route.
func GenerateRoute(cfg RouteConfig, rng *rand.Rand) (*Route, error) {
	if !cfg.Area.Center.Valid() {
		return nil, fmt.Errorf("area %q: center out of bounds: %+v", cfg.Area.Name, cfg.Area.Center)
	}
	if cfg.Area.RadiusKM <= 0 {
		return nil, fmt.Errorf("area %q: radius must be positive, got %f", cfg.Area.Name, cfg.Area.RadiusKM)
	}
	if cfg.Duration <= 0 || cfg.AvgSpeedKmh <= 0 {
		return nil, fmt.Errorf("area %q: duration and average speed must be positive", cfg.Area.Name)
	}
	sample := cfg.SampleEvery
	if sample <= 0 {
		sample = 30 * time.Second
	}
	start := cfg.Start
	if start.IsZero() {
		start = time.Now().UTC()
	}

	count := int(cfg.Duration / sample)
	if count < 1 {
		count = 1
	}

	cur := randomPointInArea(cfg.Area, rng)
	heading := rng.Float64() * 360
	ts := start
	stepHours := sample.Hours()

	points := make([]RoutePoint, 0, count)
	for i := 0; i < count; i++ {
		speed := cfg.AvgSpeedKmh + (rng.Float64()*30 - 15)
		if speed < 0 {
			speed = 0
		}
		if rng.Float64() < stopProbability {
			speed = rng.Float64() * 10
		}
		if rng.Float64() < highwayProbability {
			speed = 70 + rng.Float64()*40
		}

		if rng.Float64() < turnProbability {
			heading += rng.Float64()*2*maxTurnDeg - maxTurnDeg
		}
		heading += rng.Float64()*2*headingDriftDeg - headingDriftDeg
		heading = math.Mod(heading+360, 360)

		stepKM := speed * stepHours
		next := Destination(cur, heading, stepKM)

		// Steer back toward the center before leaving the operating area.
		if DistanceKM(next, cfg.Area.Center) > cfg.Area.RadiusKM {
			heading = Bearing(next, cfg.Area.Center) + (rng.Float64()*2*containCorrectDeg - containCorrectDeg)
			heading = math.Mod(heading+360, 360)
			next = Destination(cur, heading, stepKM)
			if DistanceKM(next, cfg.Area.Center) > cfg.Area.RadiusKM {
				heading = Bearing(cur, cfg.Area.Center)
				// Clamp so a step longer than the center distance cannot
				// overshoot through the center and out the far side.
				step := stepKM
				if d := DistanceKM(cur, cfg.Area.Center); step > d {
					step = d
				}
				next = Destination(cur, heading, step)
			}
		}

		points = append(points, RoutePoint{
			Point:     next,
			Timestamp: ts,
			SpeedKmh:  speed,
			Heading:   heading,
			AccuracyM: 3.0 + rng.Float64()*5.0,
		})

		cur = next
		ts = ts.Add(sample)
	}

	return &Route{Area: cfg.Area, Points: points}, nil
}

// randomPointInArea picks a start point inside the area's containment radius.
func randomPointInArea(area Area, rng *rand.Rand) Point {
	angle := rng.Float64() * 360
	r := rng.Float64() * area.RadiusKM * 0.5
	return Destination(area.Center, angle, r)
}
