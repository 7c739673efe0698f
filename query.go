package pgwire

import (
	"fmt"

	"github.com/polarwire/pgwire/internal/decoder"
	"github.com/polarwire/pgwire/internal/encoder"
	"github.com/polarwire/pgwire/internal/protocol"
)

// Param is a single bind parameter for a prepared statement execution.
// Any Go primitive or a type implementing the domain codec interfaces in
// the types subpackage (UUID, Timestamp, Decimal, ...) may be passed.
type Param = any

// runner is implemented by both Connection and PooledConn so the typed
// query helpers work identically whether or not the connection came from a
// Pool.
type runner interface {
	Run(sql string) (Result, error)
}

// preparedRunner additionally supports the Extended query protocol.
type preparedRunner interface {
	runner
	Prepare(name, sql string) error
	executeEx(name string, params []Param) (Result, error)
}

// Query runs sql via the Simple query protocol and decodes every returned
// row into a freshly allocated T, matching columns to fields by the "pg"
// struct tag (falling back to a case-insensitive name match).
func Query[T any](r runner, sql string) ([]T, error) {
	res, err := r.Run(sql)
	if err != nil {
		return nil, err
	}
	return decodeRows[T](res)
}

// QueryRow runs sql and decodes exactly one row. It returns an error if the
// result has zero or more than one row.
func QueryRow[T any](r runner, sql string) (T, error) {
	var zero T
	rows, err := Query[T](r, sql)
	if err != nil {
		return zero, err
	}
	if len(rows) != 1 {
		return zero, fmt.Errorf("pgwire: expected exactly one row, got %d", len(rows))
	}
	return rows[0], nil
}

// Exec runs sql via the Simple query protocol and returns the affected-row
// count for Command results, or 0 for Success/Explain results.
func Exec(r runner, sql string) (int64, error) {
	res, err := r.Run(sql)
	if err != nil {
		return 0, err
	}
	if res.Kind == ResultCommand {
		return res.RowsAffected, nil
	}
	return 0, nil
}

// QueryEx executes a previously prepared statement via the Extended query
// protocol, binding params and decoding every row into a T.
func QueryEx[T any](r preparedRunner, name string, params ...Param) ([]T, error) {
	res, err := r.executeEx(name, params)
	if err != nil {
		return nil, err
	}
	return decodeRows[T](res)
}

func decodeRows[T any](res Result) ([]T, error) {
	if res.Kind != ResultSelect && res.Kind != ResultExplain {
		return nil, nil
	}
	out := make([]T, 0, len(res.Rows))
	for i, row := range res.Rows {
		var rec T
		if err := decoder.Decode(res.Columns, row, &rec); err != nil {
			return nil, fmt.Errorf("pgwire: decoding row %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func encodeParams(params []Param) ([]encoder.Encoded, error) {
	out := make([]encoder.Encoded, len(params))
	for i, p := range params {
		enc, err := encoder.Encode(p)
		if err != nil {
			return nil, fmt.Errorf("pgwire: encoding parameter %d: %w", i, err)
		}
		out[i] = enc
	}
	return out, nil
}

// executeExOn is the shared implementation behind preparedRunner for any type
// holding a *protocol.Conn.
func executeExOn(conn *protocol.Conn, name string, params []Param) (Result, error) {
	encoded, err := encodeParams(params)
	if err != nil {
		return Result{}, err
	}
	return conn.ExecuteEx(name, encoded)
}
