package pgwire

import "github.com/polarwire/pgwire/internal/admin"

// AdminServer is an HTTP server exposing a Pool's /stats, /status,
// /health, and Prometheus /metrics endpoints.
type AdminServer struct {
	srv *admin.Server
}

// NewAdminServer builds an admin server over p. name identifies the pool
// in /status output.
func NewAdminServer(name string, p *Pool) *AdminServer {
	statsFn := func() admin.PoolStats {
		s := p.Stats()
		return admin.PoolStats{Active: s.Active, Idle: s.Idle, Total: s.Total, Waiting: s.Waiting}
	}
	return &AdminServer{srv: admin.NewServer(name, statsFn, p.Metrics().Registry)}
}

// Start begins listening on addr (e.g. "127.0.0.1:8081").
func (a *AdminServer) Start(addr string) error {
	return a.srv.Start(addr)
}

// Stop gracefully shuts the admin server down.
func (a *AdminServer) Stop() error {
	return a.srv.Stop()
}
