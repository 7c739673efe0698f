package types

import "fmt"

const jsonbVersion1 = 1

// JSON represents PostgreSQL's JSON type, stored verbatim as the original
// text (PostgreSQL itself does not reformat JSON on input).
type JSON struct {
	Raw []byte
}

func (j *JSON) ScanText(src []byte) error {
	j.Raw = append([]byte(nil), src...)
	return nil
}

func (j *JSON) ScanBinary(src []byte) error {
	j.Raw = append([]byte(nil), src...)
	return nil
}

func (j JSON) FormatText() ([]byte, error)   { return j.Raw, nil }
func (j JSON) FormatBinary() ([]byte, error) { return j.Raw, nil }

// JSONB represents PostgreSQL's JSONB type: binary-decomposed JSON with a
// leading version byte on the wire (currently always 1).
type JSONB struct {
	Raw []byte
}

func (j *JSONB) ScanText(src []byte) error {
	j.Raw = append([]byte(nil), src...)
	return nil
}

func (j *JSONB) ScanBinary(src []byte) error {
	if len(src) < 1 {
		return fmt.Errorf("types: jsonb binary payload empty")
	}
	if src[0] != jsonbVersion1 {
		return fmt.Errorf("types: unsupported jsonb wire version %d", src[0])
	}
	j.Raw = append([]byte(nil), src[1:]...)
	return nil
}

func (j JSONB) FormatText() ([]byte, error) { return j.Raw, nil }

func (j JSONB) FormatBinary() ([]byte, error) {
	return append([]byte{jsonbVersion1}, j.Raw...), nil
}
