package pgwire

import (
	"fmt"

	"github.com/polarwire/pgwire/internal/types"
)

// Row fields decode into a destination struct by matching each column name
// against a `pg:"column_name"` struct tag, falling back to a
// case-insensitive match against the Go field name when no tag is present.
// Domain types (UUID, Date, Timestamp, Decimal, Inet, JSON, and the rest of
// the geometric/network/array/composite families) decode directly into
// their corresponding exported struct field type; primitives decode into
// the usual bool/intN/floatN/string/[]byte/time.Time fields.

// TypeName returns the PostgreSQL type name registered in types.Registry
// for a column OID (e.g. 2950 -> "uuid"), for diagnostics and logging. The
// registry holds the domain types only, so it reports false for primitive
// OIDs such as int4 or text, and for domain- or array-element OIDs.
func TypeName(oid uint32) (string, bool) {
	codec, ok := types.Lookup(oid)
	if !ok {
		return "", false
	}
	return codec.Name, true
}

// DescribeColumns renders a Result's RowDescription as "name:type" pairs,
// for error messages and debug logging.
func DescribeColumns(res Result) []string {
	out := make([]string, len(res.Columns))
	for i, col := range res.Columns {
		name, ok := TypeName(col.DataTypeOID)
		if !ok {
			name = fmt.Sprintf("oid:%d", col.DataTypeOID)
		}
		out[i] = fmt.Sprintf("%s:%s", col.Name, name)
	}
	return out
}
