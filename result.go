package pgwire

import "github.com/polarwire/pgwire/internal/protocol"

// ResultKind classifies what a query produced: a row set, an affected-row
// count, a bare success, or an EXPLAIN plan.
type ResultKind = protocol.ResultKind

const (
	ResultSelect  = protocol.ResultSelect
	ResultCommand = protocol.ResultCommand
	ResultSuccess = protocol.ResultSuccess
	ResultExplain = protocol.ResultExplain
)

// Result is the tagged union returned by Run (and consumed by the typed
// Query helpers, which return decoded records, and by Exec, which returns
// the affected-row count): a Select or Explain carries rows, a Command
// carries RowsAffected, and a Success
// marks a DDL/BEGIN/SET/RESET-class statement that completed without error.
type Result = protocol.Result
