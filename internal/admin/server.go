// Package admin exposes a Pool's stats and Prometheus metrics over HTTP,
// adapted from dbbouncer's multi-tenant REST API down to the single-pool
// concerns pgwire has: there is one reservoir per Pool, not a tenant map.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PoolStats is the subset of poolcore.Stats the admin server reports,
// decoupled from that package so admin never imports the root module
// (which would create an import cycle: pgwire -> admin -> pgwire).
type PoolStats struct {
	Active  int `json:"active"`
	Idle    int `json:"idle"`
	Total   int `json:"total"`
	Waiting int `json:"waiting"`
}

// StatsFunc returns a point-in-time snapshot of the pool being served.
type StatsFunc func() PoolStats

// Server is a small HTTP admin surface over one Pool: JSON stats, a
// liveness probe, and a Prometheus /metrics endpoint.
type Server struct {
	stats      StatsFunc
	registry   *prometheus.Registry
	httpServer *http.Server
	startTime  time.Time
	poolName   string
}

// NewServer builds an admin Server over one pool's metrics registry. Call
// Start to begin listening.
func NewServer(poolName string, stats StatsFunc, registry *prometheus.Registry) *Server {
	return &Server{stats: stats, registry: registry, startTime: time.Now(), poolName: poolName}
}

// Start begins listening on addr (e.g. "127.0.0.1:8081").
func (s *Server) Start(addr string) error {
	r := mux.NewRouter()
	r.HandleFunc("/stats", s.statsHandler).Methods("GET")
	r.HandleFunc("/status", s.statusHandler).Methods("GET")
	r.HandleFunc("/health", s.healthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return err
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats())
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	writeJSON(w, http.StatusOK, map[string]any{
		"pool":           s.poolName,
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
		"go_version":     runtime.Version(),
		"goroutines":     runtime.NumGoroutine(),
		"memory_mb":      float64(mem.Alloc) / 1024 / 1024,
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := s.stats()
	healthy := stats.Total > 0 || stats.Waiting == 0
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"status": boolToStatus(healthy)})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func boolToStatus(b bool) string {
	if b {
		return "healthy"
	}
	return "unhealthy"
}
