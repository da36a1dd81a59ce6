// Status HTTP server exposing fleet, dispatch, metric and alert snapshots.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"fleetops-sim/internal/alerting"
	"fleetops-sim/internal/metrics"
	"fleetops-sim/internal/sim"
	"fleetops-sim/internal/store"
)

// Server serves read-only status queries over the running simulation.
// History is optional; without it the alert history endpoint reports 404.
type Server struct {
	Sim       *sim.Simulator
	Metrics   *metrics.Store
	Evaluator *alerting.Evaluator
	History   *store.Store
}

// NewServer creates a status server over the given components. history may
// be nil when persistence is disabled.
func NewServer(s *sim.Simulator, ms *metrics.Store, ev *alerting.Evaluator, history *store.Store) *Server {
	return &Server{Sim: s, Metrics: ms, Evaluator: ev, History: history}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/fleet", s.handleFleet)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/alerts", s.handleAlerts)
	mux.HandleFunc("/alerts/history", s.handleAlertHistory)
	return mux
}

// Start serves until the context is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	return srv.ListenAndServe()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleFleet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.FleetSnapshot())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Stats())
}

// handleMetrics returns recent samples for one metric name:
// GET /metrics?name=error_rate&minutes=15
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, s.Metrics.Names())
		return
	}
	minutes, _ := strconv.Atoi(r.URL.Query().Get("minutes"))
	if minutes <= 0 {
		minutes = 60
	}
	writeJSON(w, s.Metrics.Recent(name, time.Duration(minutes)*time.Minute))
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Evaluator.ActiveAlerts())
}

// handleAlertHistory returns persisted alert records, newest first:
// GET /alerts/history?limit=20
func (s *Server) handleAlertHistory(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		http.Error(w, "alert history requires persistence", http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	records, err := s.History.AlertHistory(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, records)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
