// Package decoder implements pgwire's typed result decoder (spec component
// C4): it reflects over a caller-supplied record shape and fills it in from
// a RowDescription plus a DataRow, in either text or binary wire format.
package decoder

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/polarwire/pgwire/internal/types"
	"github.com/polarwire/pgwire/internal/wire"
)

var (
	ErrColumnCountMismatch = fmt.Errorf("decoder: column count does not match record shape")
	ErrUnexpectedNull      = fmt.Errorf("decoder: unexpected null for a non-optional field")
	ErrInvalidEnum         = fmt.Errorf("decoder: value is not a declared enum variant")
	ErrNotAStructPointer   = fmt.Errorf("decoder: destination must be a pointer to a struct")
)

// Enum is implemented by named string types used as enum fields; Variants
// returns the full declared set so a decoded value can be checked against it.
type Enum interface {
	Variants() []string
}

// structTag is the struct tag key naming the wire column a field binds to,
// for fields whose Go name does not match the column name.
const structTag = "pg"

// Decode fills dest (a pointer to a struct) from one row. desc and row must
// have the same length; fields are matched to columns by the "pg" struct
// tag, falling back to a case-insensitive field name match.
func Decode(desc []wire.FieldDescription, row [][]byte, dest any) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrNotAStructPointer
	}
	elem := v.Elem()
	t := elem.Type()

	if len(desc) != len(row) {
		return fmt.Errorf("decoder: row description has %d columns but row has %d values", len(desc), len(row))
	}
	if len(desc) != countDecodableFields(t) {
		return ErrColumnCountMismatch
	}

	for i, col := range desc {
		fieldIdx := findField(t, col.Name)
		if fieldIdx < 0 {
			return fmt.Errorf("decoder: no destination field for column %q", col.Name)
		}
		fv := elem.Field(fieldIdx)
		if err := decodeField(fv, row[i], col.FormatCode); err != nil {
			return fmt.Errorf("decoder: column %q: %w", col.Name, err)
		}
	}
	return nil
}

func countDecodableFields(t reflect.Type) int {
	n := 0
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).PkgPath == "" { // exported
			n++
		}
	}
	return n
}

func findField(t reflect.Type, column string) int {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		if tag := f.Tag.Get(structTag); tag != "" {
			if tag == column {
				return i
			}
			continue
		}
		if strings.EqualFold(f.Name, column) {
			return i
		}
	}
	return -1
}

func decodeField(fv reflect.Value, raw []byte, formatCode int16) error {
	if fv.Kind() == reflect.Ptr && isSerialKind(fv.Type().Elem()) {
		return fmt.Errorf("serial field must not be optional (pointer)")
	}
	isSerial := isSerialKind(fv.Type())

	if raw == nil {
		if isSerial {
			return ErrUnexpectedNull
		}
		if fv.Kind() == reflect.Ptr {
			fv.Set(reflect.Zero(fv.Type()))
			return nil
		}
		return ErrUnexpectedNull
	}

	target := fv
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		target = fv.Elem()
	}

	if !target.CanAddr() {
		return fmt.Errorf("destination field is not addressable")
	}
	addr := target.Addr()

	if formatCode == 1 {
		if bs, ok := addr.Interface().(types.BinaryScanner); ok {
			return bs.ScanBinary(raw)
		}
	}
	if ts, ok := addr.Interface().(types.TextScanner); ok {
		return ts.ScanText(raw)
	}

	if en, ok := addr.Interface().(Enum); ok {
		s := string(raw)
		for _, variant := range en.Variants() {
			if variant == s {
				target.SetString(s)
				return nil
			}
		}
		return ErrInvalidEnum
	}

	return decodePrimitive(target, raw, formatCode)
}

func isSerialKind(t reflect.Type) bool {
	switch t {
	case reflect.TypeOf(types.SmallSerial(0)), reflect.TypeOf(types.Serial(0)), reflect.TypeOf(types.BigSerial(0)):
		return true
	}
	return false
}

func decodePrimitive(target reflect.Value, raw []byte, formatCode int16) error {
	switch target.Kind() {
	case reflect.Bool:
		if formatCode == 1 {
			target.SetBool(len(raw) > 0 && raw[0] != 0)
			return nil
		}
		target.SetBool(len(raw) == 1 && raw[0] == 't')
		return nil

	case reflect.Int16:
		if formatCode == 1 {
			if len(raw) != 2 {
				return fmt.Errorf("int2 binary payload must be 2 bytes, got %d", len(raw))
			}
			target.SetInt(int64(int16(binary.BigEndian.Uint16(raw))))
			return nil
		}
		n, err := strconv.ParseInt(string(raw), 10, 16)
		if err != nil {
			return fmt.Errorf("invalid int2 %q: %w", raw, err)
		}
		target.SetInt(n)
		return nil

	case reflect.Int32, reflect.Int:
		if formatCode == 1 {
			if len(raw) != 4 {
				return fmt.Errorf("int4 binary payload must be 4 bytes, got %d", len(raw))
			}
			target.SetInt(int64(int32(binary.BigEndian.Uint32(raw))))
			return nil
		}
		n, err := strconv.ParseInt(string(raw), 10, 32)
		if err != nil {
			return fmt.Errorf("invalid int4 %q: %w", raw, err)
		}
		target.SetInt(n)
		return nil

	case reflect.Int64:
		if formatCode == 1 {
			if len(raw) != 8 {
				return fmt.Errorf("int8 binary payload must be 8 bytes, got %d", len(raw))
			}
			target.SetInt(int64(binary.BigEndian.Uint64(raw)))
			return nil
		}
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int8 %q: %w", raw, err)
		}
		target.SetInt(n)
		return nil

	case reflect.Float32:
		if formatCode == 1 {
			if len(raw) != 4 {
				return fmt.Errorf("float4 binary payload must be 4 bytes, got %d", len(raw))
			}
			target.SetFloat(float64(math.Float32frombits(binary.BigEndian.Uint32(raw))))
			return nil
		}
		f, err := strconv.ParseFloat(string(raw), 32)
		if err != nil {
			return fmt.Errorf("invalid float4 %q: %w", raw, err)
		}
		target.SetFloat(f)
		return nil

	case reflect.Float64:
		if formatCode == 1 {
			if len(raw) != 8 {
				return fmt.Errorf("float8 binary payload must be 8 bytes, got %d", len(raw))
			}
			target.SetFloat(math.Float64frombits(binary.BigEndian.Uint64(raw)))
			return nil
		}
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return fmt.Errorf("invalid float8 %q: %w", raw, err)
		}
		target.SetFloat(f)
		return nil

	case reflect.String:
		target.SetString(string(raw))
		return nil

	case reflect.Slice:
		if target.Type().Elem().Kind() == reflect.Uint8 {
			return decodeBytea(target, raw, formatCode)
		}
		return decodeArray(target, raw)

	case reflect.Struct:
		return decodeComposite(target, raw)

	default:
		return fmt.Errorf("unsupported destination kind %s", target.Kind())
	}
}

func decodeBytea(target reflect.Value, raw []byte, formatCode int16) error {
	if formatCode == 1 {
		target.SetBytes(append([]byte(nil), raw...))
		return nil
	}
	s := string(raw)
	if !strings.HasPrefix(s, "\\x") {
		return fmt.Errorf("invalid bytea text format %q", raw)
	}
	s = s[2:]
	if len(s)%2 != 0 {
		return fmt.Errorf("invalid bytea hex length in %q", raw)
	}
	buf := make([]byte, len(s)/2)
	for i := 0; i < len(buf); i++ {
		var b byte
		if _, err := fmt.Sscanf(s[i*2:i*2+2], "%02x", &b); err != nil {
			return fmt.Errorf("invalid bytea hex digit in %q: %w", raw, err)
		}
		buf[i] = b
	}
	target.SetBytes(buf)
	return nil
}

func decodeArray(target reflect.Value, raw []byte) error {
	parsed, err := types.ParseArrayText(raw)
	if err != nil {
		return err
	}
	if !parsed.IsArray {
		return fmt.Errorf("invalid array literal %q", raw)
	}
	elemType := target.Type().Elem()
	slice := reflect.MakeSlice(target.Type(), len(parsed.Elements), len(parsed.Elements))
	for i, e := range parsed.Elements {
		ev := reflect.New(elemType).Elem()
		if e.IsNull {
			if elemType.Kind() != reflect.Ptr {
				return ErrUnexpectedNull
			}
			slice.Index(i).Set(reflect.Zero(elemType))
			continue
		}
		if err := decodeField(ev, []byte(e.Text), 0); err != nil {
			return fmt.Errorf("array element %d: %w", i, err)
		}
		slice.Index(i).Set(ev)
	}
	target.Set(slice)
	return nil
}

func decodeComposite(target reflect.Value, raw []byte) error {
	fields, err := types.ParseCompositeText(raw)
	if err != nil {
		return err
	}
	t := target.Type()
	exported := make([]int, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).PkgPath == "" {
			exported = append(exported, i)
		}
	}
	if len(fields) != len(exported) {
		return fmt.Errorf("composite %q has %d fields, destination has %d", raw, len(fields), len(exported))
	}
	for i, fieldIdx := range exported {
		fv := target.Field(fieldIdx)
		cf := fields[i]
		if cf.IsNull {
			if fv.Kind() != reflect.Ptr {
				return ErrUnexpectedNull
			}
			fv.Set(reflect.Zero(fv.Type()))
			continue
		}
		if err := decodeField(fv, []byte(cf.Text), 0); err != nil {
			return fmt.Errorf("composite field %d: %w", i, err)
		}
	}
	return nil
}
