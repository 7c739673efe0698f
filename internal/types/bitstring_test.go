package types

import "testing"

func TestBitStringTextRoundTrip(t *testing.T) {
	var b BitString
	if err := b.ScanText([]byte("10110")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	if b.Len != 5 {
		t.Fatalf("Len = %d, want 5", b.Len)
	}
	text, err := b.FormatText()
	if err != nil {
		t.Fatalf("FormatText: %v", err)
	}
	if string(text) != "10110" {
		t.Fatalf("FormatText = %q, want 10110", text)
	}
}

func TestBitStringBinaryRoundTrip(t *testing.T) {
	var b BitString
	if err := b.ScanText([]byte("101100111")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	wire, err := b.FormatBinary()
	if err != nil {
		t.Fatalf("FormatBinary: %v", err)
	}
	var b2 BitString
	if err := b2.ScanBinary(wire); err != nil {
		t.Fatalf("ScanBinary: %v", err)
	}
	text, _ := b2.FormatText()
	if string(text) != "101100111" {
		t.Fatalf("got %q", text)
	}
}

func TestBitStringInvalidChar(t *testing.T) {
	var b BitString
	if err := b.ScanText([]byte("102")); err == nil {
		t.Fatal("expected error for invalid bit character")
	}
}
