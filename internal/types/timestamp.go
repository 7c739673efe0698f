package types

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

var pgEpochTimestamp = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Timestamp represents TIMESTAMP WITHOUT TIME ZONE: a naive local
// date/time with no zone attached. It is stored as a UTC time.Time purely
// as a representation convenience — no zone conversion is implied.
type Timestamp struct {
	Time time.Time
}

// ScanText parses "YYYY-MM-DD HH:MM:SS[.ffffff]" optionally followed by " BC".
func (t *Timestamp) ScanText(src []byte) error {
	s, bc := splitBCSuffix(string(src))
	datePart, timePart, ok := strings.Cut(s, " ")
	if !ok {
		return fmt.Errorf("types: invalid timestamp %q", src)
	}
	year, month, day, err := parseDateParts(datePart)
	if err != nil {
		return err
	}
	hour, min, sec, nsec, err := parseTimeParts(timePart)
	if err != nil {
		return err
	}
	astro := toAstronomicalYear(year, bc)
	t.Time = time.Date(astro, time.Month(month), day, hour, min, sec, nsec, time.UTC)
	return nil
}

// ScanBinary parses the int64 microsecond offset from the PostgreSQL epoch
// (2000-01-01 00:00:00), PostgreSQL's actual on-wire representation for
// both TIMESTAMP and TIMESTAMPTZ.
func (t *Timestamp) ScanBinary(src []byte) error {
	if len(src) != 8 {
		return fmt.Errorf("types: timestamp binary payload must be 8 bytes, got %d", len(src))
	}
	micros := int64(binary.BigEndian.Uint64(src))
	t.Time = pgEpochTimestamp.Add(time.Duration(micros) * time.Microsecond)
	return nil
}

// FormatText renders "YYYY-MM-DD HH:MM:SS[.ffffff]" with a " BC" suffix for
// astronomical years <= 0.
func (t Timestamp) FormatText() ([]byte, error) {
	year, bc := fromAstronomicalYear(t.Time.Year())
	s := fmt.Sprintf("%s-%s-%s %s:%s:%s%s",
		formatYear(year), formatFixedDigits(int(t.Time.Month()), 2), formatFixedDigits(t.Time.Day(), 2),
		formatFixedDigits(t.Time.Hour(), 2), formatFixedDigits(t.Time.Minute(), 2), formatFixedDigits(t.Time.Second(), 2),
		formatNanosAsMicros(t.Time.Nanosecond()))
	if bc {
		s += " BC"
	}
	return []byte(s), nil
}

// FormatBinary renders the int64 microsecond offset from 2000-01-01 00:00:00.
func (t Timestamp) FormatBinary() ([]byte, error) {
	micros := t.Time.Sub(pgEpochTimestamp).Microseconds()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(micros))
	return buf[:], nil
}

// TimestampTZ represents TIMESTAMP WITH TIME ZONE. PostgreSQL always
// stores and transmits it as UTC; the session timezone only affects text
// rendering on the server side. pgwire receives text already rendered with
// a zone offset and normalizes to UTC; binary decode reads UTC directly
// with the zone offset lost, matching the server's own "read as UTC"
// behavior (see REDESIGN FLAGS #1 in SPEC_FULL.md for the microseconds-
// since-2000 wire format decision).
type TimestampTZ struct {
	Time time.Time
}

// ScanText parses "YYYY-MM-DD HH:MM:SS[.ffffff][+-]HH[:MM]" optionally
// followed by " BC", converting to UTC.
func (t *TimestampTZ) ScanText(src []byte) error {
	s, bc := splitBCSuffix(string(src))
	datePart, rest, ok := strings.Cut(s, " ")
	if !ok {
		return fmt.Errorf("types: invalid timestamptz %q", src)
	}
	year, month, day, err := parseDateParts(datePart)
	if err != nil {
		return err
	}

	timePart, offset := splitTZOffset(rest)
	hour, min, sec, nsec, err := parseTimeParts(timePart)
	if err != nil {
		return err
	}

	astro := toAstronomicalYear(year, bc)
	loc := time.FixedZone("", offset)
	local := time.Date(astro, time.Month(month), day, hour, min, sec, nsec, loc)
	t.Time = local.UTC()
	return nil
}

// splitTZOffset splits "HH:MM:SS[.ffffff]+HH[:MM[:SS]]" into the time part
// and the zone offset in seconds east of UTC.
func splitTZOffset(s string) (timePart string, offsetSeconds int) {
	idx := -1
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '+' || s[i] == '-' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, 0
	}
	timePart = s[:idx]
	zoneStr := s[idx:]
	sign := 1
	if zoneStr[0] == '-' {
		sign = -1
	}
	zoneStr = zoneStr[1:]
	parts := strings.Split(zoneStr, ":")
	hours, mins, secs := 0, 0, 0
	fmt.Sscanf(parts[0], "%d", &hours)
	if len(parts) > 1 {
		fmt.Sscanf(parts[1], "%d", &mins)
	}
	if len(parts) > 2 {
		fmt.Sscanf(parts[2], "%d", &secs)
	}
	return timePart, sign * (hours*3600 + mins*60 + secs)
}

// ScanBinary parses the int64 microsecond offset from 2000-01-01 00:00:00 UTC.
func (t *TimestampTZ) ScanBinary(src []byte) error {
	if len(src) != 8 {
		return fmt.Errorf("types: timestamptz binary payload must be 8 bytes, got %d", len(src))
	}
	micros := int64(binary.BigEndian.Uint64(src))
	t.Time = pgEpochTimestamp.Add(time.Duration(micros) * time.Microsecond)
	return nil
}

// FormatText renders the UTC value with a "+00" zone suffix.
func (t TimestampTZ) FormatText() ([]byte, error) {
	u := t.Time.UTC()
	year, bc := fromAstronomicalYear(u.Year())
	s := fmt.Sprintf("%s-%s-%s %s:%s:%s%s+00",
		formatYear(year), formatFixedDigits(int(u.Month()), 2), formatFixedDigits(u.Day(), 2),
		formatFixedDigits(u.Hour(), 2), formatFixedDigits(u.Minute(), 2), formatFixedDigits(u.Second(), 2),
		formatNanosAsMicros(u.Nanosecond()))
	if bc {
		s += " BC"
	}
	return []byte(s), nil
}

// FormatBinary renders the int64 microsecond offset from 2000-01-01 00:00:00 UTC.
func (t TimestampTZ) FormatBinary() ([]byte, error) {
	micros := t.Time.UTC().Sub(pgEpochTimestamp).Microseconds()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(micros))
	return buf[:], nil
}
