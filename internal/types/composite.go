package types

import (
	"fmt"
	"strings"
)

// CompositeField is one field of a parsed composite literal: Text with
// IsNull set if the field was empty/unquoted (a SQL NULL field).
type CompositeField struct {
	IsNull bool
	Text   string
}

// ParseCompositeText parses PostgreSQL's record/composite text grammar:
// "(a,b,c)", with the same double-quote/backslash escaping rules as
// arrays. An empty unquoted field denotes a SQL NULL.
func ParseCompositeText(src []byte) ([]CompositeField, error) {
	s := string(src)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("types: invalid composite literal %q", src)
	}
	s = s[1 : len(s)-1]
	if s == "" {
		return nil, nil
	}

	var fields []CompositeField
	for len(s) > 0 {
		if s[0] == '"' {
			field, rest, err := parseQuotedCompositeField(s)
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
			s = rest
		} else {
			i := 0
			for i < len(s) && s[i] != ',' {
				i++
			}
			tok := s[:i]
			fields = append(fields, CompositeField{IsNull: tok == "", Text: tok})
			s = s[i:]
		}
		if len(s) == 0 {
			break
		}
		if s[0] != ',' {
			return nil, fmt.Errorf("types: unexpected character %q in composite literal", s[0])
		}
		s = s[1:]
		if len(s) == 0 {
			// trailing comma means one more (empty/null) field
			fields = append(fields, CompositeField{IsNull: true})
		}
	}
	return fields, nil
}

func parseQuotedCompositeField(s string) (CompositeField, string, error) {
	s = s[1:]
	var sb strings.Builder
	for {
		if s == "" {
			return CompositeField{}, s, fmt.Errorf("types: unterminated quoted composite field")
		}
		c := s[0]
		if c == '\\' && len(s) > 1 {
			sb.WriteByte(s[1])
			s = s[2:]
			continue
		}
		if c == '"' {
			s = s[1:]
			break
		}
		sb.WriteByte(c)
		s = s[1:]
	}
	return CompositeField{Text: sb.String()}, s, nil
}

func escapeCompositeField(f CompositeField) string {
	if f.IsNull {
		return ""
	}
	needsQuote := f.Text == ""
	for _, c := range f.Text {
		if c == '"' || c == '\\' || c == ',' || c == '(' || c == ')' {
			needsQuote = true
		}
	}
	if !needsQuote {
		return f.Text
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range f.Text {
		if c == '"' || c == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	sb.WriteByte('"')
	return sb.String()
}

// FormatCompositeText renders fields back into PostgreSQL's composite text
// grammar.
func FormatCompositeText(fields []CompositeField) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = escapeCompositeField(f)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
