package types

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Interval represents PostgreSQL's INTERVAL: a months/days/microseconds
// triple, stored and transmitted as three independent components rather
// than a single duration (1 month is not a fixed number of days).
type Interval struct {
	Months  int32
	Days    int32
	Micros  int64
}

// ScanBinary parses the wire form: int64 microseconds, int32 days, int32 months.
func (iv *Interval) ScanBinary(src []byte) error {
	if len(src) != 16 {
		return fmt.Errorf("types: interval binary payload must be 16 bytes, got %d", len(src))
	}
	iv.Micros = int64(binary.BigEndian.Uint64(src[0:8]))
	iv.Days = int32(binary.BigEndian.Uint32(src[8:12]))
	iv.Months = int32(binary.BigEndian.Uint32(src[12:16]))
	return nil
}

// FormatBinary renders the wire form: int64 microseconds, int32 days, int32 months.
func (iv Interval) FormatBinary() ([]byte, error) {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(iv.Micros))
	binary.BigEndian.PutUint32(buf[8:12], uint32(iv.Days))
	binary.BigEndian.PutUint32(buf[12:16], uint32(iv.Months))
	return buf[:], nil
}

var intervalUnitWords = map[string]bool{
	"year": true, "years": true,
	"mon": true, "mons": true,
	"day": true, "days": true,
}

// ScanText parses PostgreSQL's default ("postgres" IntervalStyle) output,
// e.g. "1 year 2 mons 3 days 04:05:06" or "-3 days +01:02:03".
func (iv *Interval) ScanText(src []byte) error {
	*iv = Interval{}
	fields := strings.Fields(string(src))
	i := 0
	for i < len(fields) {
		tok := fields[i]
		if i+1 < len(fields) && intervalUnitWords[fields[i+1]] {
			n, err := strconv.Atoi(tok)
			if err != nil {
				return fmt.Errorf("types: invalid interval quantity %q: %w", tok, err)
			}
			switch fields[i+1] {
			case "year", "years":
				iv.Months += int32(n) * 12
			case "mon", "mons":
				iv.Months += int32(n)
			case "day", "days":
				iv.Days += int32(n)
			}
			i += 2
			continue
		}

		neg := false
		t := tok
		if strings.HasPrefix(t, "-") {
			neg = true
			t = t[1:]
		} else if strings.HasPrefix(t, "+") {
			t = t[1:]
		}
		hour, min, sec, nsec, err := parseTimeParts(t)
		if err != nil {
			return fmt.Errorf("types: invalid interval token %q: %w", tok, err)
		}
		micros := int64(hour)*3600e6 + int64(min)*60e6 + int64(sec)*1e6 + int64(nsec)/1000
		if neg {
			micros = -micros
		}
		iv.Micros += micros
		i++
	}
	return nil
}

// FormatText renders the "postgres" IntervalStyle output.
func (iv Interval) FormatText() ([]byte, error) {
	var parts []string
	years := iv.Months / 12
	mons := iv.Months % 12
	if years != 0 {
		parts = append(parts, pluralize(int(years), "year", "years"))
	}
	if mons != 0 {
		parts = append(parts, pluralize(int(mons), "mon", "mons"))
	}
	if iv.Days != 0 {
		parts = append(parts, pluralize(int(iv.Days), "day", "days"))
	}
	if iv.Micros != 0 || len(parts) == 0 {
		neg := iv.Micros < 0
		abs := iv.Micros
		if neg {
			abs = -abs
		}
		hour := abs / 3600e6
		abs -= hour * 3600e6
		min := abs / 60e6
		abs -= min * 60e6
		sec := abs / 1e6
		micros := abs - sec*1e6
		sign := ""
		if neg {
			sign = "-"
		}
		parts = append(parts, fmt.Sprintf("%s%s:%s:%s%s", sign,
			formatFixedDigits(int(hour), 2), formatFixedDigits(int(min), 2), formatFixedDigits(int(sec), 2),
			formatNanosAsMicros(int(micros)*1000)))
	}
	return []byte(strings.Join(parts, " ")), nil
}

func pluralize(n int, singular, plural string) string {
	unit := plural
	if n == 1 || n == -1 {
		unit = singular
	}
	return fmt.Sprintf("%d %s", n, unit)
}
