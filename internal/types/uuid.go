package types

import (
	"fmt"

	"github.com/google/uuid"
)

// UUID wraps google/uuid.UUID with pgwire's scan/format codec pair.
type UUID struct {
	uuid.UUID
}

// ScanText parses PostgreSQL's canonical UUID text form
// ("xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx").
func (u *UUID) ScanText(src []byte) error {
	v, err := uuid.ParseBytes(src)
	if err != nil {
		return fmt.Errorf("types: invalid uuid %q: %w", src, err)
	}
	u.UUID = v
	return nil
}

// ScanBinary parses the 16 raw big-endian bytes PostgreSQL sends for UUID.
func (u *UUID) ScanBinary(src []byte) error {
	if len(src) != 16 {
		return fmt.Errorf("types: uuid binary payload must be 16 bytes, got %d", len(src))
	}
	v, err := uuid.FromBytes(src)
	if err != nil {
		return err
	}
	u.UUID = v
	return nil
}

// FormatText renders the canonical hyphenated lowercase string form.
func (u UUID) FormatText() ([]byte, error) {
	return []byte(u.UUID.String()), nil
}

// FormatBinary renders the 16 raw bytes.
func (u UUID) FormatBinary() ([]byte, error) {
	b := u.UUID
	return b[:], nil
}
