package pgwire

import (
	"errors"
	"fmt"
)

// Kind classifies an Error into one of the taxonomy groups pgwire
// distinguishes for callers that want to branch on failure category.
type Kind string

const (
	KindConfig         Kind = "config"
	KindNetwork        Kind = "network"
	KindTLS            Kind = "tls"
	KindProtocol       Kind = "protocol"
	KindAuthentication Kind = "authentication"
	KindQuery          Kind = "query"
	KindDecode         Kind = "decode"
	KindStatement      Kind = "statement"
	KindPool           Kind = "pool"
	KindTransaction    Kind = "transaction"
)

// Error is pgwire's categorized error type: a Kind plus optional query or
// decode context. The exported functions of this package do not wrap the
// errors they return in an *Error, so errors.As does not find one on them.
type Error struct {
	Kind Kind
	Op   string // e.g. "connect", "query", "acquire"
	Err  error  // wrapped cause, may be nil

	// Query-kind context: the server's reported SQLSTATE.
	SQLSTATE string

	// Decode-kind context: the field that failed to decode and its raw wire bytes.
	Field string
	Raw   []byte
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("pgwire: %s: %s", e.Kind, e.Op)
	if e.SQLSTATE != "" {
		msg += fmt.Sprintf(" (SQLSTATE %s)", e.SQLSTATE)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %q)", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func newConfigErr(op string, err error) *Error         { return newErr(KindConfig, op, err) }
func newNetworkErr(op string, err error) *Error        { return newErr(KindNetwork, op, err) }
func newTLSErr(op string, err error) *Error            { return newErr(KindTLS, op, err) }
func newProtocolErr(op string, err error) *Error       { return newErr(KindProtocol, op, err) }
func newAuthenticationErr(op string, err error) *Error { return newErr(KindAuthentication, op, err) }
func newDecodeErr(op string, err error) *Error         { return newErr(KindDecode, op, err) }
func newStatementErr(op string, err error) *Error      { return newErr(KindStatement, op, err) }
func newPoolErr(op string, err error) *Error           { return newErr(KindPool, op, err) }
func newTransactionErr(op string, err error) *Error    { return newErr(KindTransaction, op, err) }

func newQueryErr(sqlstate, message string) *Error {
	return &Error{Kind: KindQuery, Op: "query", SQLSTATE: sqlstate, Err: errors.New(message)}
}

func newDecodeFieldErr(field string, raw []byte, err error) *Error {
	return &Error{Kind: KindDecode, Op: "decode", Field: field, Raw: raw, Err: err}
}

// Sentinel errors callers can compare against with errors.Is. Pool.Acquire
// returns ErrAcquireTimeout and ErrPoolClosed, Tx.Commit returns
// ErrTransactionAborted, and RLSContext.Validate wraps ErrInvalidRLSKey.
// The other sentinels are not returned by this package: the matching
// conditions surface as errors from the internal packages, which errors.Is
// does not match against them.
var (
	ErrAcquireTimeout             = errors.New("pgwire: acquire timeout")
	ErrPoolClosed                 = errors.New("pgwire: pool closed")
	ErrAllSlotsBroken             = errors.New("pgwire: all pool slots broken")
	ErrTLSRequiredButNotSupported = errors.New("pgwire: server does not support TLS but tls_mode=require")
	ErrUnsupportedPrepareCommand  = errors.New("pgwire: prepare only accepts SELECT, INSERT, UPDATE, or DELETE")
	ErrPreparedStatementConflict  = errors.New("pgwire: statement name already prepared with a different intent")
	ErrStatementCacheMiss         = errors.New("pgwire: execute referenced a statement name that was never prepared")
	ErrColumnCountMismatch        = errors.New("pgwire: row description column count does not match record shape")
	ErrUnexpectedNull             = errors.New("pgwire: NULL value for a non-optional field")
	ErrInvalidEnum                = errors.New("pgwire: value does not match any declared enum variant")
	ErrTransactionAborted         = errors.New("pgwire: transaction ended in an unexpected state")
	ErrTransactionNotActive       = errors.New("pgwire: transaction is not active")
	ErrUnsupportedAuthMethod      = errors.New("pgwire: server requested an unsupported authentication method")
	ErrInvalidRLSKey              = errors.New("pgwire: RLS key contains characters outside [A-Za-z0-9_.]")
)
