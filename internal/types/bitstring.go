package types

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// BitString represents PostgreSQL's BIT(n) and VARBIT(n) types: a
// fixed-length bit count plus its packed MSB-first byte representation.
type BitString struct {
	Len   int
	Bytes []byte
}

// ScanText parses a string of '0'/'1' characters.
func (b *BitString) ScanText(src []byte) error {
	bits := make([]byte, (len(src)+7)/8)
	for i, c := range src {
		switch c {
		case '0':
		case '1':
			bits[i/8] |= 1 << uint(7-i%8)
		default:
			return fmt.Errorf("types: invalid bit string %q", src)
		}
	}
	b.Len = len(src)
	b.Bytes = bits
	return nil
}

// ScanBinary parses the wire format: int32 bit length then packed bytes.
func (b *BitString) ScanBinary(src []byte) error {
	if len(src) < 4 {
		return fmt.Errorf("types: bit string binary payload too short: %d bytes", len(src))
	}
	n := int(int32(binary.BigEndian.Uint32(src[0:4])))
	want := (n + 7) / 8
	if len(src) != 4+want {
		return fmt.Errorf("types: bit string binary payload length mismatch")
	}
	buf := make([]byte, want)
	copy(buf, src[4:])
	b.Len = n
	b.Bytes = buf
	return nil
}

// FormatText renders the bit string as '0'/'1' characters.
func (b BitString) FormatText() ([]byte, error) {
	var sb strings.Builder
	sb.Grow(b.Len)
	for i := 0; i < b.Len; i++ {
		if b.Bytes[i/8]&(1<<uint(7-i%8)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return []byte(sb.String()), nil
}

// FormatBinary renders the wire format: int32 bit length then packed bytes.
func (b BitString) FormatBinary() ([]byte, error) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(b.Len))
	return append(buf, b.Bytes...), nil
}
