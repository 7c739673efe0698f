package types

import (
	"encoding/binary"
	"fmt"
	"time"
)

var pgEpochDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Date represents PostgreSQL's DATE type: a calendar day with no time
// component, stored internally as a UTC midnight time.Time so BC-era and
// far-future dates (year 1, year 3000, 4713 BC) round-trip exactly.
type Date struct {
	Time time.Time
}

// ScanText parses "YYYY-MM-DD" optionally followed by " BC".
func (d *Date) ScanText(src []byte) error {
	s, bc := splitBCSuffix(string(src))
	year, month, day, err := parseDateParts(s)
	if err != nil {
		return err
	}
	astro := toAstronomicalYear(year, bc)
	d.Time = time.Date(astro, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return nil
}

// ScanBinary parses the int32 day offset from the PostgreSQL epoch (2000-01-01).
func (d *Date) ScanBinary(src []byte) error {
	if len(src) != 4 {
		return fmt.Errorf("types: date binary payload must be 4 bytes, got %d", len(src))
	}
	days := int32(binary.BigEndian.Uint32(src))
	d.Time = pgEpochDate.AddDate(0, 0, int(days))
	return nil
}

// FormatText renders "YYYY-MM-DD", with a " BC" suffix for years <= 0
// astronomically (i.e. 1 BC and earlier).
func (d Date) FormatText() ([]byte, error) {
	year, bc := fromAstronomicalYear(d.Time.Year())
	s := fmt.Sprintf("%s-%s-%s", formatYear(year), formatFixedDigits(int(d.Time.Month()), 2), formatFixedDigits(d.Time.Day(), 2))
	if bc {
		s += " BC"
	}
	return []byte(s), nil
}

// FormatBinary renders the int32 day offset from 2000-01-01.
func (d Date) FormatBinary() ([]byte, error) {
	days := int32((d.Time.Unix() - pgEpochDate.Unix()) / 86400)
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(days))
	return buf[:], nil
}
