package types

import "testing"

func TestUUIDTextAndBinary(t *testing.T) {
	var u UUID
	if err := u.ScanText([]byte("550e8400-e29b-41d4-a716-446655440000")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	text, _ := u.FormatText()
	if string(text) != "550e8400-e29b-41d4-a716-446655440000" {
		t.Fatalf("got %q", text)
	}
	wire, err := u.FormatBinary()
	if err != nil {
		t.Fatalf("FormatBinary: %v", err)
	}
	if len(wire) != 16 {
		t.Fatalf("wire length = %d, want 16", len(wire))
	}
	var u2 UUID
	if err := u2.ScanBinary(wire); err != nil {
		t.Fatalf("ScanBinary: %v", err)
	}
	if u2.UUID != u.UUID {
		t.Fatalf("round trip mismatch: %v != %v", u2.UUID, u.UUID)
	}
}

func TestDateTextRoundTrip(t *testing.T) {
	cases := []string{"2024-02-29", "2000-01-01", "0001-01-01 BC", "3000-12-31"}
	for _, c := range cases {
		var d Date
		if err := d.ScanText([]byte(c)); err != nil {
			t.Fatalf("ScanText(%q): %v", c, err)
		}
		text, err := d.FormatText()
		if err != nil {
			t.Fatalf("FormatText(%q): %v", c, err)
		}
		if string(text) != c {
			t.Fatalf("round trip mismatch: %q -> %q", c, text)
		}
	}
}

func TestDateBinaryRoundTrip(t *testing.T) {
	var d Date
	if err := d.ScanText([]byte("2024-02-29")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	wire, err := d.FormatBinary()
	if err != nil {
		t.Fatalf("FormatBinary: %v", err)
	}
	var d2 Date
	if err := d2.ScanBinary(wire); err != nil {
		t.Fatalf("ScanBinary: %v", err)
	}
	if !d2.Time.Equal(d.Time) {
		t.Fatalf("got %v, want %v", d2.Time, d.Time)
	}
}

func TestTimestampBinaryRoundTrip(t *testing.T) {
	var ts Timestamp
	if err := ts.ScanText([]byte("2024-02-29 13:45:06.123456")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	wire, err := ts.FormatBinary()
	if err != nil {
		t.Fatalf("FormatBinary: %v", err)
	}
	var ts2 Timestamp
	if err := ts2.ScanBinary(wire); err != nil {
		t.Fatalf("ScanBinary: %v", err)
	}
	if !ts2.Time.Equal(ts.Time) {
		t.Fatalf("got %v, want %v", ts2.Time, ts.Time)
	}
}

func TestTimestampTZTextNormalizesToUTC(t *testing.T) {
	var tz TimestampTZ
	if err := tz.ScanText([]byte("2024-06-01 12:00:00-05")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	if tz.Time.Hour() != 17 {
		t.Fatalf("hour = %d, want 17 (UTC)", tz.Time.Hour())
	}
	text, err := tz.FormatText()
	if err != nil {
		t.Fatalf("FormatText: %v", err)
	}
	if string(text) != "2024-06-01 17:00:00+00" {
		t.Fatalf("got %q", text)
	}
}

func TestClockTextRoundTrip(t *testing.T) {
	var c Clock
	if err := c.ScanText([]byte("04:05:06.789")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	text, err := c.FormatText()
	if err != nil {
		t.Fatalf("FormatText: %v", err)
	}
	if string(text) != "04:05:06.789" {
		t.Fatalf("got %q", text)
	}
}

func TestClockBinaryRoundTrip(t *testing.T) {
	var c Clock
	if err := c.ScanText([]byte("23:59:59.999999")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	wire, err := c.FormatBinary()
	if err != nil {
		t.Fatalf("FormatBinary: %v", err)
	}
	var c2 Clock
	if err := c2.ScanBinary(wire); err != nil {
		t.Fatalf("ScanBinary: %v", err)
	}
	if c2.Micros != c.Micros {
		t.Fatalf("got %d, want %d", c2.Micros, c.Micros)
	}
}

func TestIntervalTextRoundTrip(t *testing.T) {
	var iv Interval
	if err := iv.ScanText([]byte("1 year 2 mons 3 days 04:05:06")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	if iv.Months != 14 || iv.Days != 3 {
		t.Fatalf("got %+v", iv)
	}
	text, err := iv.FormatText()
	if err != nil {
		t.Fatalf("FormatText: %v", err)
	}
	if string(text) != "1 year 2 mons 3 days 04:05:06" {
		t.Fatalf("got %q", text)
	}
}

func TestIntervalBinaryRoundTrip(t *testing.T) {
	iv := Interval{Months: 14, Days: 3, Micros: 14706000000}
	wire, err := iv.FormatBinary()
	if err != nil {
		t.Fatalf("FormatBinary: %v", err)
	}
	var iv2 Interval
	if err := iv2.ScanBinary(wire); err != nil {
		t.Fatalf("ScanBinary: %v", err)
	}
	if iv2 != iv {
		t.Fatalf("got %+v, want %+v", iv2, iv)
	}
}

func TestIntervalNegative(t *testing.T) {
	var iv Interval
	if err := iv.ScanText([]byte("-3 days -01:02:03")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	if iv.Days != -3 {
		t.Fatalf("Days = %d, want -3", iv.Days)
	}
	if iv.Micros >= 0 {
		t.Fatalf("Micros = %d, want negative", iv.Micros)
	}
}
