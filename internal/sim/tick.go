package sim

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"fleetops-sim/internal/logging"
	"fleetops-sim/internal/metrics"
	"fleetops-sim/internal/telemetry"
)

// Run starts the simulation loop and stops when the context is done.
// In-flight sends finish on their own timeouts; the loop itself exits at
// the next tick boundary.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "tick_interval", s.tickInterval, "vehicles", len(s.vehicles))
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			start := s.now()
			s.Tick(ctx)
			if elapsed := s.now().Sub(start); elapsed > s.tickInterval {
				log.Warn("tick cadence overrun", "elapsed", elapsed, "interval", s.tickInterval)
			}
		case <-ctx.Done():
			log.Info("stopping simulator")
			return
		}
	}
}

// Tick advances every vehicle once and dispatches the produced readings.
// All advances complete before any dispatch begins; the fan-out is awaited
// before Tick returns.
func (s *Simulator) Tick(ctx context.Context) {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	var batch []telemetry.Reading
	online, offline := 0, 0
	for _, v := range s.vehicles {
		if v.Route == nil || v.Route.Len() == 0 {
			log.Warn("vehicle has no route, skipping", "vehicle_id", v.ID)
			offline++
			continue
		}
		reading, ok := s.engine.Step(v)
		if v.Online {
			online++
		} else {
			offline++
		}
		if !ok {
			continue
		}
		batch = append(batch, reading)
	}
	s.mu.Unlock()

	succeeded, failed := s.dispatch(ctx, batch)

	s.mu.Lock()
	s.stats.Ticks++
	s.stats.TotalAttempted += int64(len(batch))
	s.stats.Succeeded += succeeded
	s.stats.Failed += failed
	s.stats.VehiclesOnline = online
	s.stats.VehiclesOffline = offline
	attempted := s.stats.TotalAttempted
	totalFailed := s.stats.Failed
	s.mu.Unlock()

	s.metrics.Record(metrics.Metric{
		Name: "gps_readings_sent", Value: float64(len(batch)), Unit: "count", Service: "simulator",
	})
	s.metrics.Record(metrics.Metric{
		Name: "gps_send_errors", Value: float64(failed), Unit: "count", Service: "simulator",
	})
	s.metrics.Record(metrics.Metric{
		Name: "vehicles_online", Value: float64(online), Unit: "count", Service: "simulator",
	})
	if attempted > 0 {
		s.metrics.Record(metrics.Metric{
			Name: "error_rate", Value: float64(totalFailed) / float64(attempted) * 100, Unit: "percent", Service: "simulator",
		})
	}
}

// dispatch fans the batch out concurrently, one send per reading. A slow or
// failing send never delays or fails the others; a failed reading is not
// retried within the tick; the next tick is the retry.
func (s *Simulator) dispatch(ctx context.Context, batch []telemetry.Reading) (succeeded, failed int64) {
	if len(batch) == 0 {
		return 0, 0
	}
	log := logging.FromContext(ctx)

	var okCount, failCount atomic.Int64
	var wg sync.WaitGroup
	for _, reading := range batch {
		wg.Add(1)
		go func(r telemetry.Reading) {
			defer wg.Done()
			start := time.Now()
			err := s.writer.Write(r)
			latency := time.Since(start)
			s.metrics.Record(metrics.Metric{
				Name:    "gps_send_latency_ms",
				Value:   float64(latency.Milliseconds()),
				Unit:    "milliseconds",
				Labels:  map[string]string{"device_id": r.DeviceID},
				Service: "simulator",
			})
			if err != nil {
				failCount.Add(1)
				log.Error("send failed", "device_id", r.DeviceID, "err", err)
				return
			}
			okCount.Add(1)
		}(reading)
	}
	wg.Wait()
	return okCount.Load(), failCount.Load()
}
