// Acceptance criteria validation: synthetic load against the ingestion
// endpoint with aggregate pass/fail thresholds.
package acceptance

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"fleetops-sim/internal/logging"
	"fleetops-sim/internal/sim"
	"fleetops-sim/internal/telemetry"
)

// Result is the outcome of one criterion.
type Result struct {
	Name          string  `yaml:"name"`
	Passed        bool    `yaml:"passed"`
	Message       string  `yaml:"message"`
	TotalRequests int     `yaml:"total_requests"`
	Succeeded     int     `yaml:"succeeded"`
	Failed        int     `yaml:"failed"`
	SuccessRate   float64 `yaml:"success_rate"`
	AvgLatencyMS  float64 `yaml:"avg_latency_ms"`
	MinLatencyMS  float64 `yaml:"min_latency_ms"`
	MaxLatencyMS  float64 `yaml:"max_latency_ms"`
	P95LatencyMS  float64 `yaml:"p95_latency_ms"`
	Elapsed       string  `yaml:"elapsed"`
}

// Report aggregates all criteria.
type Report struct {
	Latency       Result `yaml:"latency"`
	Load          Result `yaml:"load"`
	OverallPassed bool   `yaml:"overall_passed"`
	TotalElapsed  string `yaml:"total_elapsed"`
}

// Config tunes the validator. Zero values take the defaults used by the
// standard acceptance criteria.
type Config struct {
	LatencyProbes    int           // default 20
	LatencyBudgetMS  float64       // default 2000
	LoadDevices      int           // default 20
	LoadDuration     time.Duration // default 60s
	LoadSendInterval time.Duration // default 10s
	MinSuccessRate   float64       // default 95
}

func (c *Config) applyDefaults() {
	if c.LatencyProbes == 0 {
		c.LatencyProbes = 20
	}
	if c.LatencyBudgetMS == 0 {
		c.LatencyBudgetMS = 2000
	}
	if c.LoadDevices == 0 {
		c.LoadDevices = 20
	}
	if c.LoadDuration == 0 {
		c.LoadDuration = time.Minute
	}
	if c.LoadSendInterval == 0 {
		c.LoadSendInterval = 10 * time.Second
	}
	if c.MinSuccessRate == 0 {
		c.MinSuccessRate = 95
	}
}

// Validator drives synthetic bursts through a TelemetryWriter and checks
// aggregate properties. Individual send failures surface only through the
// aggregates.
type Validator struct {
	writer sim.TelemetryWriter
	cfg    Config
	rng    *rand.Rand
}

// NewValidator creates a validator over the given writer.
func NewValidator(writer sim.TelemetryWriter, cfg Config, rng *rand.Rand) *Validator {
	cfg.applyDefaults()
	return &Validator{writer: writer, cfg: cfg, rng: rng}
}

// Run executes all criteria and builds the report.
func (v *Validator) Run(ctx context.Context) Report {
	start := time.Now()
	latency := v.latencyCriterion(ctx)
	load := v.loadCriterion(ctx)
	return Report{
		Latency:       latency,
		Load:          load,
		OverallPassed: latency.Passed && load.Passed,
		TotalElapsed:  time.Since(start).String(),
	}
}

// latencyCriterion sends sequential probes and requires MinSuccessRate of
// them to round-trip under the latency budget.
func (v *Validator) latencyCriterion(ctx context.Context) Result {
	log := logging.FromContext(ctx)
	start := time.Now()

	var latencies []float64
	succeeded, failed, underBudget := 0, 0, 0
	for i := 0; i < v.cfg.LatencyProbes; i++ {
		if ctx.Err() != nil {
			break
		}
		probeStart := time.Now()
		err := v.writer.Write(probeReading(v.rng, i))
		ms := float64(time.Since(probeStart).Milliseconds())
		latencies = append(latencies, ms)
		if err != nil {
			failed++
			log.Error("latency probe failed", "probe", i, "err", err)
			continue
		}
		succeeded++
		if ms < v.cfg.LatencyBudgetMS {
			underBudget++
		}
	}

	res := summarize("GPS Data Latency", succeeded, failed, latencies)
	res.Passed = res.TotalRequests > 0 &&
		float64(underBudget)/float64(res.TotalRequests)*100 >= v.cfg.MinSuccessRate
	res.Message = "latency probes under budget"
	res.Elapsed = time.Since(start).String()
	return res
}

// loadCriterion runs LoadDevices concurrent senders, each emitting on a
// fixed cadence for LoadDuration, and checks the aggregate success rate and
// latency percentiles.
func (v *Validator) loadCriterion(ctx context.Context) Result {
	start := time.Now()

	var mu sync.Mutex
	var latencies []float64
	succeeded, failed := 0, 0

	deadline := time.Now().Add(v.cfg.LoadDuration)
	var wg sync.WaitGroup
	for d := 0; d < v.cfg.LoadDevices; d++ {
		wg.Add(1)
		// Each device gets its own source; *rand.Rand is not safe for
		// concurrent use.
		seed := v.rng.Int63()
		go func(device int, seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for time.Now().Before(deadline) && ctx.Err() == nil {
				sendStart := time.Now()
				err := v.writer.Write(probeReading(rng, device))
				ms := float64(time.Since(sendStart).Milliseconds())

				mu.Lock()
				latencies = append(latencies, ms)
				if err != nil {
					failed++
				} else {
					succeeded++
				}
				mu.Unlock()

				select {
				case <-time.After(v.cfg.LoadSendInterval):
				case <-ctx.Done():
					return
				}
			}
		}(d, seed)
	}
	wg.Wait()

	res := summarize("Concurrent GPS Devices Load Test", succeeded, failed, latencies)
	res.Passed = res.SuccessRate >= v.cfg.MinSuccessRate &&
		res.AvgLatencyMS < 5000 &&
		res.P95LatencyMS < 10000
	res.Message = "sustained load within thresholds"
	res.Elapsed = time.Since(start).String()
	return res
}

// probeReading builds a synthetic reading around Mexico City, the standard
// probe location.
func probeReading(rng *rand.Rand, device int) telemetry.Reading {
	return telemetry.Reading{
		DeviceID:       deviceID(device),
		OrganizationID: "acceptance",
		Lat:            19.4326 + (rng.Float64()*0.02 - 0.01),
		Lng:            -99.1332 + (rng.Float64()*0.02 - 0.01),
		SpeedKmh:       rng.Float64() * 80,
		Heading:        rng.Float64() * 360,
		AccuracyM:      3 + rng.Float64()*5,
		AltitudeM:      100 + rng.Float64()*900,
		Satellites:     4 + rng.Intn(9),
		BatteryLevel:   20 + rng.Intn(81),
		SignalStrength: 70 + rng.Intn(31),
		Ignition:       true,
		Timestamp:      time.Now().UTC(),
	}
}

func deviceID(n int) string {
	return fmt.Sprintf("TEST-%03d", n)
}

func summarize(name string, succeeded, failed int, latencies []float64) Result {
	res := Result{
		Name:          name,
		TotalRequests: succeeded + failed,
		Succeeded:     succeeded,
		Failed:        failed,
	}
	if res.TotalRequests > 0 {
		res.SuccessRate = float64(succeeded) / float64(res.TotalRequests) * 100
	}
	if len(latencies) == 0 {
		return res
	}
	sorted := append([]float64(nil), latencies...)
	sort.Float64s(sorted)
	var sum float64
	for _, l := range sorted {
		sum += l
	}
	res.AvgLatencyMS = sum / float64(len(sorted))
	res.MinLatencyMS = sorted[0]
	res.MaxLatencyMS = sorted[len(sorted)-1]
	res.P95LatencyMS = sorted[int(float64(len(sorted))*0.95)]
	return res
}
