package types

import (
	"encoding/binary"
	"fmt"
)

// Clock represents TIME WITHOUT TIME ZONE as microseconds since midnight.
// Named Clock (not Time) to avoid colliding with time.Time in call sites
// that import both this package and the standard time package.
type Clock struct {
	Micros int64
}

// ScanText parses "HH:MM:SS[.ffffff]".
func (c *Clock) ScanText(src []byte) error {
	hour, min, sec, nsec, err := parseTimeParts(string(src))
	if err != nil {
		return err
	}
	c.Micros = int64(hour)*3600e6 + int64(min)*60e6 + int64(sec)*1e6 + int64(nsec)/1000
	return nil
}

// ScanBinary parses the int64 microsecond-since-midnight wire value.
func (c *Clock) ScanBinary(src []byte) error {
	if len(src) != 8 {
		return fmt.Errorf("types: time binary payload must be 8 bytes, got %d", len(src))
	}
	c.Micros = int64(binary.BigEndian.Uint64(src))
	return nil
}

// FormatText renders "HH:MM:SS[.ffffff]".
func (c Clock) FormatText() ([]byte, error) {
	total := c.Micros
	hour := total / 3600e6
	total -= hour * 3600e6
	min := total / 60e6
	total -= min * 60e6
	sec := total / 1e6
	micros := total - sec*1e6
	s := fmt.Sprintf("%s:%s:%s%s",
		formatFixedDigits(int(hour), 2), formatFixedDigits(int(min), 2), formatFixedDigits(int(sec), 2),
		formatNanosAsMicros(int(micros)*1000))
	return []byte(s), nil
}

// FormatBinary renders the int64 microsecond-since-midnight wire value.
func (c Clock) FormatBinary() ([]byte, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(c.Micros))
	return buf[:], nil
}
