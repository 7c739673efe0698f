package pgwire

import (
	"fmt"
	"regexp"

	"github.com/polarwire/pgwire/internal/poolcore"
)

var rlsKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// RLSContext is a set of session variables applied via SET SESSION (on pool
// acquire) or SET LOCAL (inside a transaction) to scope row-level-security
// policies to the checked-out connection. Keys must match
// [A-Za-z0-9_.]+; values are quoted as SQL string literals.
type RLSContext map[string]string

// Validate checks every key against the allowed identifier character set,
// rejecting anything that could not be safely interpolated into a SET
// statement.
func (r RLSContext) Validate() error {
	for k := range r {
		if !rlsKeyPattern.MatchString(k) {
			return fmt.Errorf("%w: %q", ErrInvalidRLSKey, k)
		}
	}
	return nil
}

func (r RLSContext) toPoolRLS() poolcore.RLS {
	if r == nil {
		return nil
	}
	out := make(poolcore.RLS, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
