package pgwire

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/polarwire/pgwire/internal/metrics"
	"github.com/polarwire/pgwire/internal/poolcore"
	"github.com/polarwire/pgwire/internal/protocol"
)

// Pool is a bounded reservoir of connections to one Config. Acquire blocks
// (with an optional timeout) until a connection is available; the returned
// PooledConn must be released back with Release.
type Pool struct {
	reservoir *poolcore.Reservoir
	metrics   *metrics.Collector
	name      string
}

// NewPool validates cfg, pre-warms MinConnections connections, and returns
// a ready Pool. Metrics are registered on an independent Prometheus
// registry reachable through Pool.Metrics.
func NewPool(ctx context.Context, name string, cfg Config, logger *slog.Logger) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	collector := metrics.New()
	reservoir, err := poolcore.New(ctx, poolcore.ReservoirConfig{
		Name:           name,
		ConnConfig:     cfg.toProtocolConfig(),
		MinConns:       cfg.Pool.MinConnections,
		MaxConns:       cfg.Pool.MaxConnections,
		AcquireTimeout: cfg.Pool.AcquireTimeout,
		Logger:         logger,
		Metrics:        collector,
	})
	if err != nil {
		return nil, err
	}
	return &Pool{reservoir: reservoir, metrics: collector, name: name}, nil
}

// Metrics returns the pool's Prometheus collector, for wiring into an HTTP
// /metrics endpoint (see the admin subpackage) or a custom exporter.
func (p *Pool) Metrics() *metrics.Collector { return p.metrics }

// Stats returns a point-in-time snapshot of the pool's slot accounting.
func (p *Pool) Stats() poolcore.Stats { return p.reservoir.Stats() }

// Acquire checks out a connection, waiting up to timeout if none is idle;
// 0 means no limit other than ctx's deadline (the configured
// Pool.AcquireTimeout is not applied here). If rls is non-empty, its
// entries are applied via RESET ALL + SET SESSION before the connection is
// handed back.
func (p *Pool) Acquire(ctx context.Context, timeout time.Duration, rls RLSContext) (*PooledConn, error) {
	if err := rls.Validate(); err != nil {
		return nil, err
	}
	conn, err := p.reservoir.Acquire(ctx, timeout, rls.toPoolRLS())
	if err != nil {
		switch {
		case errors.Is(err, poolcore.ErrAcquireTimeout):
			return nil, ErrAcquireTimeout
		case errors.Is(err, poolcore.ErrClosed):
			return nil, ErrPoolClosed
		default:
			return nil, err
		}
	}
	return &PooledConn{conn: conn, pool: p}, nil
}

// Close closes every idle connection and marks the pool closed.
func (p *Pool) Close() {
	p.reservoir.Close()
}

// PooledConn is a checked-out connection from a Pool. It must be Released
// exactly once.
type PooledConn struct {
	conn     *protocol.Conn
	pool     *Pool
	released bool
}

// Run executes sql via the Simple query protocol.
func (pc *PooledConn) Run(sql string) (Result, error) {
	return pc.conn.Run(sql)
}

// Prepare registers a named prepared statement through the Extended query
// protocol.
func (pc *PooledConn) Prepare(name, sql string) error {
	return pc.conn.PrepareEx(name, sql)
}

func (pc *PooledConn) executeEx(name string, params []Param) (Result, error) {
	return executeExOn(pc.conn, name, params)
}

// Begin starts a transaction on this checkout; see Tx for commit/rollback.
func (pc *PooledConn) Begin(rls RLSContext) (*Tx, error) {
	return beginOn(pc.conn, rls)
}

// Release returns the connection to its pool, running RESET ALL. Calling
// Release more than once is a no-op.
func (pc *PooledConn) Release() {
	if pc.released {
		return
	}
	pc.released = true
	pc.pool.reservoir.Release(pc.conn)
}
