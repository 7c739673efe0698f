package encoder

import (
	"bytes"
	"testing"

	"github.com/polarwire/pgwire/internal/types"
)

func TestEncodeNil(t *testing.T) {
	e, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if e.Value != nil {
		t.Fatalf("expected nil value for NULL, got %v", e.Value)
	}
}

func TestEncodeNilPointer(t *testing.T) {
	var p *int32
	e, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if e.Value != nil {
		t.Fatalf("expected nil value for nil pointer, got %v", e.Value)
	}
}

func TestEncodeIntegers(t *testing.T) {
	e, err := Encode(int32(7))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if e.Format != FormatBinary || !bytes.Equal(e.Value, []byte{0, 0, 0, 7}) {
		t.Fatalf("got %+v", e)
	}
}

func TestEncodeString(t *testing.T) {
	e, err := Encode("hello")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if e.Format != FormatText || string(e.Value) != "hello" {
		t.Fatalf("got %+v", e)
	}
}

func TestEncodeBool(t *testing.T) {
	e, err := Encode(true)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if e.Format != FormatBinary || e.Value[0] != 1 {
		t.Fatalf("got %+v", e)
	}
}

func TestEncodeDomainType(t *testing.T) {
	var u types.UUID
	if err := u.ScanText([]byte("550e8400-e29b-41d4-a716-446655440000")); err != nil {
		t.Fatalf("setup: %v", err)
	}
	e, err := Encode(u)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if e.Format != FormatBinary || len(e.Value) != 16 {
		t.Fatalf("got %+v", e)
	}
}

func TestFormatByteaText(t *testing.T) {
	got := FormatByteaText([]byte{0xde, 0xad, 0xbe, 0xef})
	if string(got) != `\xdeadbeef` {
		t.Fatalf("got %q", got)
	}
}
