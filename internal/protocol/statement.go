package protocol

import (
	"fmt"
	"strings"
)

// Intent is the first SQL keyword of a statement, used to classify results
// and to guard statement-cache reuse.
type Intent string

const (
	IntentSelect  Intent = "SELECT"
	IntentInsert  Intent = "INSERT"
	IntentUpdate  Intent = "UPDATE"
	IntentDelete  Intent = "DELETE"
	IntentMerge   Intent = "MERGE"
	IntentExplain Intent = "EXPLAIN"
	IntentOther   Intent = ""
)

var preparableIntents = map[Intent]bool{
	IntentSelect: true,
	IntentInsert: true,
	IntentUpdate: true,
	IntentDelete: true,
}

// ExtractIntent scans past leading whitespace and SQL comments and returns
// the first keyword, matched case-insensitively against the recognized set.
// Statements starting with anything else return IntentOther.
func ExtractIntent(sql string) Intent {
	s := skipWhitespaceAndComments(sql)
	word := firstWord(s)
	switch strings.ToUpper(word) {
	case "SELECT":
		return IntentSelect
	case "INSERT":
		return IntentInsert
	case "UPDATE":
		return IntentUpdate
	case "DELETE":
		return IntentDelete
	case "MERGE":
		return IntentMerge
	case "EXPLAIN":
		return IntentExplain
	default:
		return IntentOther
	}
}

func skipWhitespaceAndComments(s string) string {
	for {
		trimmed := strings.TrimLeft(s, " \t\r\n")
		switch {
		case strings.HasPrefix(trimmed, "--"):
			idx := strings.IndexByte(trimmed, '\n')
			if idx < 0 {
				return ""
			}
			s = trimmed[idx+1:]
		case strings.HasPrefix(trimmed, "/*"):
			idx := strings.Index(trimmed, "*/")
			if idx < 0 {
				return ""
			}
			s = trimmed[idx+2:]
		default:
			return trimmed
		}
	}
}

func firstWord(s string) string {
	i := 0
	for i < len(s) && !isWordBoundary(s[i]) {
		i++
	}
	return s[:i]
}

func isWordBoundary(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '_':
		return false
	default:
		return true
	}
}

// StatementCacheEntry records the prepared name's stored intent.
type StatementCacheEntry struct {
	Intent Intent
	Parsed bool
}

// StatementCache is a per-connection map from prepared-statement name to its
// cached intent and parse state. Purged on reconnect.
type StatementCache struct {
	entries map[string]StatementCacheEntry
}

func NewStatementCache() *StatementCache {
	return &StatementCache{entries: make(map[string]StatementCacheEntry)}
}

// ErrUnsupportedPrepareCommand is returned when the statement's first
// keyword is not one of SELECT/INSERT/UPDATE/DELETE.
var ErrUnsupportedPrepareCommand = fmt.Errorf("protocol: statement cannot be prepared for this command")

// ErrPreparedStatementConflict is returned when re-preparing an existing
// name with a different intent.
var ErrPreparedStatementConflict = fmt.Errorf("protocol: prepared statement name reused with a different intent")

// Prepare validates sql's intent and records it under name. Re-preparing the
// same name with the same intent is a no-op; a different intent conflicts.
func (c *StatementCache) Prepare(name, sql string) (Intent, error) {
	intent := ExtractIntent(sql)
	if !preparableIntents[intent] {
		return "", ErrUnsupportedPrepareCommand
	}
	if existing, ok := c.entries[name]; ok {
		if existing.Intent != intent {
			return "", ErrPreparedStatementConflict
		}
		return intent, nil
	}
	c.entries[name] = StatementCacheEntry{Intent: intent}
	return intent, nil
}

// MarkParsed records that name's Parse message has been sent and
// acknowledged by the backend.
func (c *StatementCache) MarkParsed(name string) {
	e := c.entries[name]
	e.Parsed = true
	c.entries[name] = e
}

// Lookup returns the cached entry for name, if any.
func (c *StatementCache) Lookup(name string) (StatementCacheEntry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Purge clears the cache, used when a connection is reconnected and all
// server-side prepared statements are gone with it.
func (c *StatementCache) Purge() {
	c.entries = make(map[string]StatementCacheEntry)
}

// Forget drops name from the cache, used after CloseStatement removes the
// server-side prepared statement so a later Prepare/PrepareEx re-parses it
// instead of treating it as already parsed.
func (c *StatementCache) Forget(name string) {
	delete(c.entries, name)
}
