package types

import "testing"

func TestJSONPassthrough(t *testing.T) {
	var j JSON
	if err := j.ScanText([]byte(`{"a":1}`)); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	text, _ := j.FormatText()
	if string(text) != `{"a":1}` {
		t.Fatalf("got %q", text)
	}
}

func TestJSONBVersionByte(t *testing.T) {
	var j JSONB
	if err := j.ScanBinary(append([]byte{1}, []byte(`{"a":1}`)...)); err != nil {
		t.Fatalf("ScanBinary: %v", err)
	}
	if string(j.Raw) != `{"a":1}` {
		t.Fatalf("got %q", j.Raw)
	}
	wire, err := j.FormatBinary()
	if err != nil {
		t.Fatalf("FormatBinary: %v", err)
	}
	if wire[0] != 1 {
		t.Fatalf("expected version byte 1, got %d", wire[0])
	}
}

func TestJSONBRejectsUnknownVersion(t *testing.T) {
	var j JSONB
	if err := j.ScanBinary([]byte{2, 'x'}); err == nil {
		t.Fatal("expected error for unknown jsonb version")
	}
}
