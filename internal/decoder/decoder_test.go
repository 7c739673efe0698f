package decoder

import (
	"errors"
	"testing"

	"github.com/polarwire/pgwire/internal/types"
	"github.com/polarwire/pgwire/internal/wire"
)

func col(name string, format int16) wire.FieldDescription {
	return wire.FieldDescription{Name: name, FormatCode: format}
}

func TestDecodeTextPrimitives(t *testing.T) {
	type Row struct {
		ID     int64
		Name   string
		Active bool
		Score  float64
	}
	desc := []wire.FieldDescription{col("id", 0), col("name", 0), col("active", 0), col("score", 0)}
	row := [][]byte{[]byte("42"), []byte("Alice"), []byte("t"), []byte("3.5")}

	var r Row
	if err := Decode(desc, row, &r); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.ID != 42 || r.Name != "Alice" || !r.Active || r.Score != 3.5 {
		t.Fatalf("got %+v", r)
	}
}

func TestDecodeNullIntoPointer(t *testing.T) {
	type Row struct {
		Age *int32
	}
	desc := []wire.FieldDescription{col("age", 0)}
	row := [][]byte{nil}

	var r Row
	if err := Decode(desc, row, &r); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.Age != nil {
		t.Fatalf("got %v, want nil", r.Age)
	}
}

func TestDecodeUnexpectedNullOnNonPointer(t *testing.T) {
	type Row struct {
		Age int32
	}
	desc := []wire.FieldDescription{col("age", 0)}
	row := [][]byte{nil}

	var r Row
	err := Decode(desc, row, &r)
	if !errors.Is(err, ErrUnexpectedNull) {
		t.Fatalf("expected ErrUnexpectedNull, got %v", err)
	}
}

func TestDecodeBinaryInt4AndUUID(t *testing.T) {
	type Row struct {
		N int32
		U types.UUID
	}
	desc := []wire.FieldDescription{col("n", 1), col("u", 1)}
	var uuidField types.UUID
	if err := uuidField.ScanText([]byte("550e8400-e29b-41d4-a716-446655440000")); err != nil {
		t.Fatalf("setup: %v", err)
	}
	uuidWire, _ := uuidField.FormatBinary()
	row := [][]byte{{0, 0, 0, 7}, uuidWire}

	var r Row
	if err := Decode(desc, row, &r); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.N != 7 {
		t.Fatalf("N = %d, want 7", r.N)
	}
	if r.U.UUID != uuidField.UUID {
		t.Fatalf("got %v, want %v", r.U.UUID, uuidField.UUID)
	}
}

func TestDecodeColumnCountMismatch(t *testing.T) {
	type Row struct {
		A int32
		B int32
	}
	desc := []wire.FieldDescription{col("a", 0)}
	row := [][]byte{[]byte("1")}

	var r Row
	if err := Decode(desc, row, &r); !errors.Is(err, ErrColumnCountMismatch) {
		t.Fatalf("expected ErrColumnCountMismatch, got %v", err)
	}
}

func TestDecodeArray(t *testing.T) {
	type Row struct {
		Nums []int32
	}
	desc := []wire.FieldDescription{col("nums", 0)}
	row := [][]byte{[]byte("{1,2,3}")}

	var r Row
	if err := Decode(desc, row, &r); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(r.Nums) != 3 || r.Nums[1] != 2 {
		t.Fatalf("got %+v", r.Nums)
	}
}

func TestDecodeArrayWithNulls(t *testing.T) {
	type Row struct {
		Nums []*int32
	}
	desc := []wire.FieldDescription{col("nums", 0)}
	row := [][]byte{[]byte("{1,NULL,3}")}

	var r Row
	if err := Decode(desc, row, &r); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(r.Nums) != 3 || r.Nums[1] != nil || *r.Nums[0] != 1 || *r.Nums[2] != 3 {
		t.Fatalf("got %+v", r.Nums)
	}
}

func TestDecodeComposite(t *testing.T) {
	type Pair struct {
		A int32
		B string
	}
	type Row struct {
		P Pair
	}
	desc := []wire.FieldDescription{col("p", 0)}
	row := [][]byte{[]byte(`(1,hello)`)}

	var r Row
	if err := Decode(desc, row, &r); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.P.A != 1 || r.P.B != "hello" {
		t.Fatalf("got %+v", r.P)
	}
}

func TestDecodeBytea(t *testing.T) {
	type Row struct {
		Data []byte
	}
	desc := []wire.FieldDescription{col("data", 0)}
	row := [][]byte{[]byte(`\xdeadbeef`)}

	var r Row
	if err := Decode(desc, row, &r); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	if len(r.Data) != len(want) {
		t.Fatalf("got %x, want %x", r.Data, want)
	}
	for i := range want {
		if r.Data[i] != want[i] {
			t.Fatalf("got %x, want %x", r.Data, want)
		}
	}
}

type status string

func (status) Variants() []string { return []string{"active", "inactive"} }

func TestDecodeEnum(t *testing.T) {
	type Row struct {
		Status status
	}
	desc := []wire.FieldDescription{col("status", 0)}
	row := [][]byte{[]byte("active")}

	var r Row
	if err := Decode(desc, row, &r); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.Status != "active" {
		t.Fatalf("got %q", r.Status)
	}
}

func TestDecodeEnumInvalid(t *testing.T) {
	type Row struct {
		Status status
	}
	desc := []wire.FieldDescription{col("status", 0)}
	row := [][]byte{[]byte("bogus")}

	var r Row
	if err := Decode(desc, row, &r); !errors.Is(err, ErrInvalidEnum) {
		t.Fatalf("expected ErrInvalidEnum, got %v", err)
	}
}

func TestDecodeSerialRejectsNull(t *testing.T) {
	type Row struct {
		ID types.Serial
	}
	desc := []wire.FieldDescription{col("id", 0)}
	row := [][]byte{nil}

	var r Row
	if err := Decode(desc, row, &r); !errors.Is(err, ErrUnexpectedNull) {
		t.Fatalf("expected ErrUnexpectedNull, got %v", err)
	}
}
