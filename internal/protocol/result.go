package protocol

import "github.com/polarwire/pgwire/internal/wire"

// ResultKind classifies what a query driver run produced, per §4.6/§4.7.
type ResultKind int

const (
	ResultSelect ResultKind = iota
	ResultCommand
	ResultSuccess
	ResultExplain
)

func (k ResultKind) String() string {
	switch k {
	case ResultSelect:
		return "select"
	case ResultCommand:
		return "command"
	case ResultSuccess:
		return "success"
	case ResultExplain:
		return "explain"
	default:
		return "unknown"
	}
}

// Result is the tagged union produced by the Simple and Extended query
// drivers. Columns and Rows are populated for ResultSelect and
// ResultExplain; RowsAffected for ResultCommand; Success is always set
// (true for ResultSuccess and any statement that completed without error).
type Result struct {
	Kind         ResultKind
	Columns      []wire.FieldDescription
	Rows         [][][]byte
	RowsAffected int64
	Success      bool
	CommandTag   string
}

// classifyCommandComplete parses a CommandComplete tag into a Result per the
// rules shared by C6 and C7: "SELECT n" only arrives alongside a preceding
// RowDescription (handled by the caller), everything else is classified
// here from the tag text alone.
func classifyCommandComplete(tag string, hadRowDescription bool, isExplain bool) Result {
	if hadRowDescription {
		if isExplain {
			return Result{Kind: ResultExplain, Success: true, CommandTag: tag}
		}
		return Result{Kind: ResultSelect, Success: true, CommandTag: tag}
	}
	if n, ok := parseAffectedRows(tag); ok {
		return Result{Kind: ResultCommand, RowsAffected: n, Success: true, CommandTag: tag}
	}
	return Result{Kind: ResultSuccess, Success: true, CommandTag: tag}
}

// parseAffectedRows extracts the trailing row count from command tags of the
// shape "INSERT oid n", "UPDATE n", "DELETE n", "MERGE n". Tags with no
// trailing numeric count (CREATE TABLE, BEGIN, SET, ...) return ok=false.
func parseAffectedRows(tag string) (int64, bool) {
	fields := splitFields(tag)
	if len(fields) < 2 {
		return 0, false
	}
	switch fields[0] {
	case "INSERT":
		if len(fields) != 3 {
			return 0, false
		}
		return parseInt(fields[2])
	case "UPDATE", "DELETE", "MERGE":
		if len(fields) != 2 {
			return 0, false
		}
		return parseInt(fields[1])
	default:
		return 0, false
	}
}

func splitFields(s string) []string {
	var out []string
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

func parseInt(s string) (int64, bool) {
	var n int64
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int64(s[i]-'0')
	}
	return n, true
}
