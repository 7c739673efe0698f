package types

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TSLexemePosition is a single position entry within a tsvector lexeme: a
// 1-based word position with an optional weight label ('A'-'D', 0 = none).
type TSLexemePosition struct {
	Position uint16
	Weight   byte
}

// TSLexeme is one entry of a tsvector: a normalized word and its positions.
type TSLexeme struct {
	Word      string
	Positions []TSLexemePosition
}

// TSVector represents PostgreSQL's TSVECTOR type.
type TSVector struct {
	Lexemes []TSLexeme
}

var tsWeightLetters = "DCBA" // wire weight 0-3 maps to D,C,B,A (0 = no label in text)

// ScanText parses "'word':1A,2 'other':3" style output.
func (v *TSVector) ScanText(src []byte) error {
	v.Lexemes = nil
	s := string(src)
	i := 0
	for i < len(s) {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i >= len(s) {
			break
		}
		if s[i] != '\'' {
			return fmt.Errorf("types: invalid tsvector %q near %d", src, i)
		}
		i++
		var word strings.Builder
		for i < len(s) {
			if s[i] == '\\' && i+1 < len(s) {
				word.WriteByte(s[i+1])
				i += 2
				continue
			}
			if s[i] == '\'' {
				if i+1 < len(s) && s[i+1] == '\'' {
					word.WriteByte('\'')
					i += 2
					continue
				}
				i++
				break
			}
			word.WriteByte(s[i])
			i++
		}
		lex := TSLexeme{Word: word.String()}
		if i < len(s) && s[i] == ':' {
			i++
			for {
				start := i
				for i < len(s) && s[i] >= '0' && s[i] <= '9' {
					i++
				}
				if i == start {
					return fmt.Errorf("types: invalid tsvector position at %d in %q", start, src)
				}
				pos, err := strconv.Atoi(s[start:i])
				if err != nil {
					return fmt.Errorf("types: invalid tsvector position: %w", err)
				}
				weight := byte(0)
				if i < len(s) && s[i] >= 'A' && s[i] <= 'D' {
					weight = s[i]
					i++
				}
				lex.Positions = append(lex.Positions, TSLexemePosition{Position: uint16(pos), Weight: weight})
				if i < len(s) && s[i] == ',' {
					i++
					continue
				}
				break
			}
		}
		v.Lexemes = append(v.Lexemes, lex)
	}
	return nil
}

// ScanBinary parses the wire format: int32 count, then per lexeme a
// NUL-terminated word, int16 position count, and per position a uint16
// packing a 2-bit weight and 14-bit position.
func (v *TSVector) ScanBinary(src []byte) error {
	if len(src) < 4 {
		return fmt.Errorf("types: tsvector binary payload too short")
	}
	n := int(int32(binary.BigEndian.Uint32(src[0:4])))
	off := 4
	lexemes := make([]TSLexeme, 0, n)
	for i := 0; i < n; i++ {
		nul := off
		for nul < len(src) && src[nul] != 0 {
			nul++
		}
		if nul >= len(src) {
			return fmt.Errorf("types: tsvector binary payload truncated")
		}
		word := string(src[off:nul])
		off = nul + 1
		if off+2 > len(src) {
			return fmt.Errorf("types: tsvector binary payload truncated")
		}
		npos := int(binary.BigEndian.Uint16(src[off : off+2]))
		off += 2
		positions := make([]TSLexemePosition, npos)
		for j := 0; j < npos; j++ {
			if off+2 > len(src) {
				return fmt.Errorf("types: tsvector binary payload truncated")
			}
			raw := binary.BigEndian.Uint16(src[off : off+2])
			off += 2
			weightIdx := raw >> 14
			pos := raw & 0x3FFF
			weight := byte(0)
			if weightIdx > 0 {
				weight = tsWeightLetters[weightIdx]
			}
			positions[j] = TSLexemePosition{Position: pos, Weight: weight}
		}
		lexemes = append(lexemes, TSLexeme{Word: word, Positions: positions})
	}
	v.Lexemes = lexemes
	return nil
}

func escapeTSWord(w string) string {
	var sb strings.Builder
	for _, c := range w {
		if c == '\'' || c == '\\' {
			sb.WriteByte('\'')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// FormatText renders "'word':1A,2 'other':3", sorted by lexeme text to
// match PostgreSQL's canonical output order.
func (v TSVector) FormatText() ([]byte, error) {
	sorted := append([]TSLexeme(nil), v.Lexemes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Word < sorted[j].Word })
	parts := make([]string, len(sorted))
	for i, lex := range sorted {
		s := "'" + escapeTSWord(lex.Word) + "'"
		if len(lex.Positions) > 0 {
			posStrs := make([]string, len(lex.Positions))
			for j, p := range lex.Positions {
				posStrs[j] = strconv.Itoa(int(p.Position))
				if p.Weight != 0 {
					posStrs[j] += string(p.Weight)
				}
			}
			s += ":" + strings.Join(posStrs, ",")
		}
		parts[i] = s
	}
	return []byte(strings.Join(parts, " ")), nil
}

// FormatBinary renders the tsvector wire format.
func (v TSVector) FormatBinary() ([]byte, error) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(len(v.Lexemes)))
	for _, lex := range v.Lexemes {
		buf = append(buf, []byte(lex.Word)...)
		buf = append(buf, 0)
		var pbuf [2]byte
		binary.BigEndian.PutUint16(pbuf[:], uint16(len(lex.Positions)))
		buf = append(buf, pbuf[:]...)
		for _, p := range lex.Positions {
			weightIdx := uint16(0)
			if idx := strings.IndexByte(tsWeightLetters, p.Weight); idx >= 0 {
				weightIdx = uint16(idx)
			}
			raw := (weightIdx << 14) | (p.Position & 0x3FFF)
			var rbuf [2]byte
			binary.BigEndian.PutUint16(rbuf[:], raw)
			buf = append(buf, rbuf[:]...)
		}
	}
	return buf, nil
}

// TSQuery represents PostgreSQL's TSQUERY type. pgwire carries it as its
// raw text representation; PostgreSQL's tsquery binary wire format is a
// postfix operator tree that is not reverse engineered here (no binary
// decode support).
type TSQuery struct {
	Raw string
}

func (q *TSQuery) ScanText(src []byte) error {
	q.Raw = string(src)
	return nil
}

func (q TSQuery) FormatText() ([]byte, error) { return []byte(q.Raw), nil }

func (q *TSQuery) ScanBinary(src []byte) error {
	return fmt.Errorf("types: tsquery binary decoding is not supported: %w", ErrBinaryUnsupported)
}

func (q TSQuery) FormatBinary() ([]byte, error) {
	return nil, fmt.Errorf("types: tsquery binary encoding is not supported: %w", ErrBinaryUnsupported)
}
