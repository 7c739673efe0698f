// Package encoder implements pgwire's parameter encoder (spec component
// C5): converting Go values into PostgreSQL Bind parameter wire form.
package encoder

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"reflect"

	"github.com/polarwire/pgwire/internal/types"
)

// Format is the per-parameter wire format flag carried in the Bind message.
type Format int16

const (
	FormatText   Format = 0
	FormatBinary Format = 1
)

// Encoded is one parameter's wire-ready value and format flag. Value is nil
// for SQL NULL (wire length -1).
type Encoded struct {
	Value  []byte
	Format Format
}

// Encode converts a Go value into its wire form. nil, a nil pointer, or a
// nil slice/map all encode as SQL NULL. Values implementing
// types.BinaryFormatter are sent in binary form; types.TextFormatter in
// text form; everything else falls back to the primitive rules in §4.5.
func Encode(v any) (Encoded, error) {
	if v == nil {
		return Encoded{}, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return Encoded{}, nil
		}
		v = rv.Elem().Interface()
		rv = rv.Elem()
	}
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map) && rv.IsNil() {
		return Encoded{}, nil
	}

	if bf, ok := v.(types.BinaryFormatter); ok {
		b, err := bf.FormatBinary()
		if err != nil {
			return Encoded{}, err
		}
		return Encoded{Value: b, Format: FormatBinary}, nil
	}
	if tf, ok := v.(types.TextFormatter); ok {
		b, err := tf.FormatText()
		if err != nil {
			return Encoded{}, err
		}
		return Encoded{Value: b, Format: FormatText}, nil
	}

	switch val := v.(type) {
	case bool:
		if val {
			return Encoded{Value: []byte{1}, Format: FormatBinary}, nil
		}
		return Encoded{Value: []byte{0}, Format: FormatBinary}, nil
	case int16:
		var buf [2]byte
		binary.BigEndian.PutUint16(buf[:], uint16(val))
		return Encoded{Value: buf[:], Format: FormatBinary}, nil
	case int32:
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(val))
		return Encoded{Value: buf[:], Format: FormatBinary}, nil
	case int:
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(int32(val)))
		return Encoded{Value: buf[:], Format: FormatBinary}, nil
	case int64:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(val))
		return Encoded{Value: buf[:], Format: FormatBinary}, nil
	case float32:
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], math.Float32bits(val))
		return Encoded{Value: buf[:], Format: FormatBinary}, nil
	case float64:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(val))
		return Encoded{Value: buf[:], Format: FormatBinary}, nil
	case string:
		return Encoded{Value: []byte(val), Format: FormatText}, nil
	case []byte:
		return Encoded{Value: append([]byte(nil), val...), Format: FormatBinary}, nil
	}

	return Encoded{}, fmt.Errorf("encoder: unsupported parameter type %T", v)
}

// FormatByteaText renders bytea's text form: "\x" followed by lowercase hex.
func FormatByteaText(b []byte) []byte {
	out := make([]byte, 2+hex.EncodedLen(len(b)))
	out[0], out[1] = '\\', 'x'
	hex.Encode(out[2:], b)
	return out
}
