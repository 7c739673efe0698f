package pgwire

import (
	"context"
	"log/slog"

	"github.com/polarwire/pgwire/internal/protocol"
)

// Connection is a single, unpooled PostgreSQL session. Most applications
// should use a Pool instead; Connection exists for one-off scripts, the
// demo CLI, and tests.
type Connection struct {
	conn *protocol.Conn
}

// Connect dials, negotiates TLS if requested, authenticates, and returns a
// ready Connection.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	conn, err := protocol.Dial(ctx, cfg.toProtocolConfig(), logger)
	if err != nil {
		return nil, err
	}
	return &Connection{conn: conn}, nil
}

// Run executes sql through the Simple query protocol.
func (c *Connection) Run(sql string) (Result, error) {
	return c.conn.Run(sql)
}

// Prepare registers a named prepared statement through the Extended query
// protocol.
func (c *Connection) Prepare(name, sql string) error {
	return c.conn.PrepareEx(name, sql)
}

func (c *Connection) executeEx(name string, params []Param) (Result, error) {
	return executeExOn(c.conn, name, params)
}

// State returns the connection's current lifecycle state.
func (c *Connection) State() protocol.State {
	return c.conn.State()
}

// Close terminates the session.
func (c *Connection) Close() error {
	return c.conn.Close()
}
