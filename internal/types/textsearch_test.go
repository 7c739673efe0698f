package types

import (
	"errors"
	"testing"
)

func TestTSVectorTextParsing(t *testing.T) {
	var v TSVector
	if err := v.ScanText([]byte("'cat':3 'fat':1A,2")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	if len(v.Lexemes) != 2 {
		t.Fatalf("got %d lexemes, want 2", len(v.Lexemes))
	}
	text, err := v.FormatText()
	if err != nil {
		t.Fatalf("FormatText: %v", err)
	}
	if string(text) != "'cat':3 'fat':1A,2" {
		t.Fatalf("got %q", text)
	}
}

func TestTSVectorBinaryRoundTrip(t *testing.T) {
	v := TSVector{Lexemes: []TSLexeme{
		{Word: "fat", Positions: []TSLexemePosition{{Position: 1, Weight: 'A'}, {Position: 2}}},
		{Word: "cat", Positions: []TSLexemePosition{{Position: 3}}},
	}}
	wire, err := v.FormatBinary()
	if err != nil {
		t.Fatalf("FormatBinary: %v", err)
	}
	var v2 TSVector
	if err := v2.ScanBinary(wire); err != nil {
		t.Fatalf("ScanBinary: %v", err)
	}
	if len(v2.Lexemes) != 2 || v2.Lexemes[0].Word != "fat" || v2.Lexemes[0].Positions[0].Weight != 'A' {
		t.Fatalf("got %+v", v2.Lexemes)
	}
}

func TestTSQueryBinaryUnsupported(t *testing.T) {
	var q TSQuery
	if err := q.ScanBinary([]byte{1, 2, 3}); !errors.Is(err, ErrBinaryUnsupported) {
		t.Fatalf("expected ErrBinaryUnsupported, got %v", err)
	}
}

func TestTSQueryTextPassthrough(t *testing.T) {
	var q TSQuery
	if err := q.ScanText([]byte("'fat' & 'rat'")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	text, _ := q.FormatText()
	if string(text) != "'fat' & 'rat'" {
		t.Fatalf("got %q", text)
	}
}
