// Package pgwire is a PostgreSQL wire-protocol v3 client: connection
// dialing with SCRAM-SHA-256 authentication and optional TLS, Simple and
// Extended query drivers, typed row decoding and parameter encoding for
// PostgreSQL's built-in scalar, geometric, network, and JSON types, and a
// bounded connection pool with row-level-security session scoping.
//
// A single connection:
//
//	conn, err := pgwire.Connect(ctx, cfg, logger)
//	rows, err := pgwire.Query[Order](conn, "select id, total from orders")
//
// A pool, checking out a connection per request:
//
//	pool, err := pgwire.NewPool(ctx, "orders", cfg, logger)
//	pc, err := pool.Acquire(ctx, 0, pgwire.RLSContext{"tenant_id": tenantID})
//	defer pc.Release()
//	row, err := pgwire.QueryRow[Order](pc, "select id, total from orders where id = 1")
//
// Struct fields bind to result columns via a `pg:"column_name"` tag,
// falling back to a case-insensitive name match.
package pgwire
