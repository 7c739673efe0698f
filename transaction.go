package pgwire

import (
	"fmt"

	"github.com/polarwire/pgwire/internal/protocol"
)

// Tx is a single BEGIN..COMMIT/ROLLBACK span on one checked-out connection.
// A Tx is not safe for concurrent use and must not outlive the Connection
// or PooledConn it was created from.
type Tx struct {
	conn *protocol.Conn
	done bool
}

// beginOn issues BEGIN, then SET LOCAL "key" = 'value' for each RLS entry,
// scoping the policy to this transaction only (cleared automatically at
// COMMIT/ROLLBACK, unlike the pool's SET SESSION on acquire).
func beginOn(conn *protocol.Conn, rls RLSContext) (*Tx, error) {
	if err := rls.Validate(); err != nil {
		return nil, err
	}
	if _, err := conn.Run("BEGIN"); err != nil {
		return nil, fmt.Errorf("pgwire: BEGIN: %w", err)
	}
	tx := &Tx{conn: conn}

	for _, k := range sortedRLSKeys(rls) {
		stmt := fmt.Sprintf("SET LOCAL %s = %s", quoteRLSIdent(k), quoteRLSLiteral(rls[k]))
		if _, err := conn.Run(stmt); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("pgwire: applying transaction RLS %q: %w", k, err)
		}
	}
	return tx, nil
}

// Begin starts a transaction on an unpooled Connection.
func (c *Connection) Begin(rls RLSContext) (*Tx, error) {
	return beginOn(c.conn, rls)
}

// Commit runs COMMIT. If the server reports the connection is still in a
// failed transaction state afterward, Commit returns ErrTransactionAborted
// instead of nil — the transaction's statements did not take effect.
func (tx *Tx) Commit() error {
	if tx.done {
		return nil
	}
	tx.done = true
	if _, err := tx.conn.Run("COMMIT"); err != nil {
		return fmt.Errorf("pgwire: COMMIT: %w", err)
	}
	if tx.conn.TxStatus() == protocol.TxInFailedTransaction {
		return ErrTransactionAborted
	}
	return nil
}

// Rollback runs ROLLBACK. Calling Rollback after Commit (or a second time)
// is a no-op, so `defer tx.Rollback()` is safe after a successful Commit.
func (tx *Tx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	if _, err := tx.conn.Run("ROLLBACK"); err != nil {
		return fmt.Errorf("pgwire: ROLLBACK: %w", err)
	}
	return nil
}

// Run executes sql inside the transaction via the Simple query protocol.
func (tx *Tx) Run(sql string) (Result, error) {
	return tx.conn.Run(sql)
}

func sortedRLSKeys(r RLSContext) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func quoteRLSIdent(s string) string {
	return `"` + s + `"`
}

func quoteRLSLiteral(s string) string {
	escaped := ""
	for _, r := range s {
		if r == '\'' {
			escaped += "''"
		} else {
			escaped += string(r)
		}
	}
	return "'" + escaped + "'"
}
