// Package poolcore implements pgwire's bounded connection reservoir (spec
// component C9): a mutex+condvar pool of protocol.Conn slots with blocking
// acquire, lazy reconnect of broken slots, and RESET ALL on release.
package poolcore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/polarwire/pgwire/internal/metrics"
	"github.com/polarwire/pgwire/internal/protocol"
)

// ErrAcquireTimeout is returned when Acquire's deadline elapses before a
// slot becomes available.
var ErrAcquireTimeout = fmt.Errorf("poolcore: acquire timed out waiting for a connection")

// ErrClosed is returned by Acquire once the reservoir has been shut down.
var ErrClosed = fmt.Errorf("poolcore: pool is closed")

// Stats is a point-in-time snapshot of the reservoir's slot accounting.
type Stats struct {
	Active  int
	Idle    int
	Total   int
	Waiting int
}

// Reservoir is the bounded pool of live connections to one Config. Acquire
// and Release are the synchronization boundary; a checked-out *protocol.Conn
// is owned exclusively by its holder until Release.
type Reservoir struct {
	mu   sync.Mutex
	cond *sync.Cond

	cfg     protocol.Config
	logger  *slog.Logger
	metrics *metrics.Collector
	name    string

	minConns       int
	maxConns       int
	acquireTimeout time.Duration

	idle    []*protocol.Conn
	active  map[*protocol.Conn]struct{}
	total   int
	waiting int
	closed  bool
}

// ReservoirConfig configures a Reservoir's sizing and dial parameters.
type ReservoirConfig struct {
	Name           string
	ConnConfig     protocol.Config
	MinConns       int
	MaxConns       int
	AcquireTimeout time.Duration
	Logger         *slog.Logger
	Metrics        *metrics.Collector
}

// New creates a Reservoir and pre-warms it to MinConns connections.
func New(ctx context.Context, cfg ReservoirConfig) (*Reservoir, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	r := &Reservoir{
		cfg:            cfg.ConnConfig,
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
		name:           cfg.Name,
		minConns:       cfg.MinConns,
		maxConns:       cfg.MaxConns,
		acquireTimeout: cfg.AcquireTimeout,
		active:         make(map[*protocol.Conn]struct{}),
	}
	r.cond = sync.NewCond(&r.mu)
	r.warmUp(ctx)
	return r, nil
}

func (r *Reservoir) warmUp(ctx context.Context) {
	for i := 0; i < r.minConns; i++ {
		conn, err := protocol.Dial(ctx, r.cfg, r.logger)
		if err != nil {
			r.logger.Warn("warm-up connection failed", "index", i + 1, "total", r.minConns, "pool", r.name, "err", err)
			continue
		}
		r.mu.Lock()
		r.idle = append(r.idle, conn)
		r.total++
		r.mu.Unlock()
	}
	r.logger.Info("pre-warmed connections", "count", r.total, "pool", r.name)
}

// RLS is a set of session variables applied via SET SESSION on acquire and
// cleared by RESET ALL on release. Keys must already be validated by the
// caller (see the root package's RLSContext).
type RLS map[string]string

// Acquire returns an idle connection, creating one if under MaxConns or
// waiting (up to timeout, 0 meaning infinite) for one to be released. A
// Broken slot found during the scan triggers a lazy reconnect before being
// handed out; reconnect failure drops the slot and continues scanning. If
// rls is non-empty, RESET ALL followed by one SET SESSION per entry is run
// on the connection before it's returned to the caller.
func (r *Reservoir) Acquire(ctx context.Context, timeout time.Duration, rls RLS) (*protocol.Conn, error) {
	var stop func()
	if r.metrics != nil {
		stop = r.metrics.AcquireStarted()
		defer func() {
			if stop != nil {
				stop()
			}
		}()
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (deadline.IsZero() || ctxDeadline.Before(deadline)) {
		deadline = ctxDeadline
	}

	r.mu.Lock()
	for {
		select {
		case <-ctx.Done():
			r.mu.Unlock()
			return nil, ctx.Err()
		default:
		}

		if r.closed {
			r.mu.Unlock()
			return nil, ErrClosed
		}

		for len(r.idle) > 0 {
			conn := r.idle[len(r.idle)-1]
			r.idle = r.idle[:len(r.idle)-1]

			if conn.State() == protocol.StateBroken {
				r.mu.Unlock()
				reconnected, err := protocol.Dial(ctx, r.cfg, r.logger)
				r.mu.Lock()
				if err != nil {
					r.total--
					r.logger.Warn("lazy reconnect failed", "pool", r.name, "err", err)
					continue
				}
				if r.metrics != nil {
					r.metrics.Reconnected()
				}
				conn = reconnected
			}

			if err := r.applyRLS(conn, rls); err != nil {
				r.idle = append(r.idle, conn)
				r.cond.Signal()
				r.mu.Unlock()
				return nil, err
			}

			r.active[conn] = struct{}{}
			r.mu.Unlock()
			return conn, nil
		}

		if r.total < r.maxConns {
			r.total++
			r.mu.Unlock()

			conn, err := protocol.Dial(ctx, r.cfg, r.logger)
			if err != nil {
				r.mu.Lock()
				r.total--
				r.mu.Unlock()
				return nil, fmt.Errorf("poolcore: connecting to %s:%d: %w", r.cfg.Host, r.cfg.Port, err)
			}
			if err := r.applyRLS(conn, rls); err != nil {
				conn.Close()
				r.mu.Lock()
				r.total--
				r.mu.Unlock()
				return nil, err
			}
			r.mu.Lock()
			r.active[conn] = struct{}{}
			r.mu.Unlock()
			return conn, nil
		}

		r.waiting++

		var remaining time.Duration
		if !deadline.IsZero() {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				r.waiting--
				r.mu.Unlock()
				if r.metrics != nil {
					r.metrics.PoolExhausted()
				}
				return nil, ErrAcquireTimeout
			}
		}

		var timer *time.Timer
		if remaining > 0 {
			timer = time.AfterFunc(remaining, func() { r.cond.Broadcast() })
		}
		r.cond.Wait()
		if timer != nil {
			timer.Stop()
		}
		r.waiting--

		if r.closed {
			r.mu.Unlock()
			return nil, ErrClosed
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			r.mu.Unlock()
			if r.metrics != nil {
				r.metrics.PoolExhausted()
			}
			return nil, ErrAcquireTimeout
		}
	}
}

// applyRLS issues RESET ALL followed by one SET SESSION per entry. It only
// touches the connection, which is not yet visible to any other goroutine.
// Acquire calls it with r.mu held when handing out an idle connection and
// with r.mu unlocked after dialing a new one.
func (r *Reservoir) applyRLS(conn *protocol.Conn, rls RLS) error {
	if len(rls) == 0 {
		return nil
	}
	if _, err := conn.Run("RESET ALL"); err != nil {
		return fmt.Errorf("poolcore: RESET ALL before handout: %w", err)
	}
	for _, key := range sortedKeys(rls) {
		stmt := fmt.Sprintf(`SET SESSION %s = %s`, quoteIdent(key), quoteLiteral(rls[key]))
		if _, err := conn.Run(stmt); err != nil {
			return fmt.Errorf("poolcore: applying session variable %q: %w", key, err)
		}
	}
	return nil
}

// Release issues RESET ALL, marks the slot idle, and signals one waiter. A
// failed RESET ALL (or a Broken connection, or a closed reservoir) closes
// the connection and frees its slot instead, so a later Acquire dials a
// fresh connection in its place.
func (r *Reservoir) Release(conn *protocol.Conn) {
	_, err := conn.Run("RESET ALL")
	if r.metrics != nil {
		r.metrics.ResetCompleted(err == nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, conn)

	if err != nil || conn.State() == protocol.StateBroken || r.closed {
		conn.Close()
		r.total--
		r.cond.Signal()
		return
	}
	r.idle = append(r.idle, conn)
	r.cond.Signal()
}

// Stats returns a point-in-time snapshot of the reservoir's accounting.
func (r *Reservoir) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Stats{Active: len(r.active), Idle: len(r.idle), Total: r.total, Waiting: r.waiting}
	if r.metrics != nil {
		r.metrics.SetPoolStats(r.name, s.Active, s.Idle, s.Total)
	}
	return s
}

// Close closes every idle connection and marks the reservoir closed; any
// blocked Acquire wakes with ErrClosed. Connections still checked out are
// closed as they're Released.
func (r *Reservoir) Close() {
	r.mu.Lock()
	r.closed = true
	for _, conn := range r.idle {
		conn.Close()
	}
	r.idle = nil
	r.cond.Broadcast()
	r.mu.Unlock()
}

func sortedKeys(m RLS) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}
