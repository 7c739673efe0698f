package types

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	numericSignPositive uint16 = 0x0000
	numericSignNegative uint16 = 0x4000
	numericSignNaN      uint16 = 0xC000
)

// Decimal represents NUMERIC/DECIMAL. Scale mirrors PostgreSQL's dscale —
// the number of digits to display after the decimal point — independently
// of Value's own exponent, since the two need not coincide after a binary
// round-trip through NBASE (base-10000) digit groups.
type Decimal struct {
	Value decimal.Decimal
	Scale int32
}

// ScanText parses a plain decimal string such as "123.450" or "-7".
func (d *Decimal) ScanText(src []byte) error {
	v, err := decimal.NewFromString(string(src))
	if err != nil {
		return fmt.Errorf("types: invalid numeric %q: %w", src, err)
	}
	d.Value = v
	if exp := v.Exponent(); exp < 0 {
		d.Scale = -exp
	}
	return nil
}

// ScanBinary parses PostgreSQL's NUMERIC wire format: int16 ndigits, int16
// weight, uint16 sign, uint16 dscale, then ndigits base-10000 digits.
func (d *Decimal) ScanBinary(src []byte) error {
	if len(src) < 8 {
		return fmt.Errorf("types: numeric binary payload too short: %d bytes", len(src))
	}
	ndigits := int(int16(binary.BigEndian.Uint16(src[0:2])))
	weight := int(int16(binary.BigEndian.Uint16(src[2:4])))
	sign := binary.BigEndian.Uint16(src[4:6])
	dscale := binary.BigEndian.Uint16(src[6:8])

	if sign == numericSignNaN {
		return fmt.Errorf("types: NUMERIC NaN is not representable")
	}
	if len(src) < 8+ndigits*2 {
		return fmt.Errorf("types: numeric binary payload truncated")
	}

	mantissa := new(big.Int)
	base := big.NewInt(10000)
	for i := 0; i < ndigits; i++ {
		digit := int64(binary.BigEndian.Uint16(src[8+i*2 : 10+i*2]))
		mantissa.Mul(mantissa, base)
		mantissa.Add(mantissa, big.NewInt(digit))
	}

	exponent := int32(4 * (weight - (ndigits - 1)))
	if ndigits == 0 {
		exponent = 0
	}
	val := decimal.NewFromBigInt(mantissa, exponent)
	if sign == numericSignNegative {
		val = val.Neg()
	}
	d.Value = val
	d.Scale = int32(dscale)
	return nil
}

// FormatText renders the value with Scale digits after the decimal point
// when Scale is set, otherwise the value's natural representation.
func (d Decimal) FormatText() ([]byte, error) {
	if d.Scale > 0 {
		return []byte(d.Value.StringFixed(d.Scale)), nil
	}
	return []byte(d.Value.String()), nil
}

// FormatBinary renders PostgreSQL's NUMERIC wire format.
func (d Decimal) FormatBinary() ([]byte, error) {
	if d.Value.IsZero() {
		return numericHeader(0, 0, numericSignPositive, uint16(d.Scale)), nil
	}

	scale := d.Scale
	if scale < 0 {
		scale = 0
	}
	s := d.Value.StringFixed(scale)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "0" {
		intPart = ""
	}

	padLeft := (4 - len(intPart)%4) % 4
	paddedInt := strings.Repeat("0", padLeft) + intPart
	numIntGroups := len(paddedInt) / 4

	padRight := (4 - len(fracPart)%4) % 4
	paddedFrac := fracPart + strings.Repeat("0", padRight)

	digitsStr := paddedInt + paddedFrac
	ndigits := len(digitsStr) / 4
	digits := make([]uint16, ndigits)
	for i := 0; i < ndigits; i++ {
		n, err := strconv.Atoi(digitsStr[i*4 : i*4+4])
		if err != nil {
			return nil, fmt.Errorf("types: internal numeric encode error: %w", err)
		}
		digits[i] = uint16(n)
	}

	weight := numIntGroups - 1
	sign := numericSignPositive
	if neg {
		sign = numericSignNegative
	}

	buf := numericHeader(int16(ndigits), int16(weight), sign, uint16(d.Scale))
	for _, dg := range digits {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], dg)
		buf = append(buf, b[:]...)
	}
	return buf, nil
}

func numericHeader(ndigits, weight int16, sign, dscale uint16) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint16(buf[0:2], uint16(ndigits))
	binary.BigEndian.PutUint16(buf[2:4], uint16(weight))
	binary.BigEndian.PutUint16(buf[4:6], sign)
	binary.BigEndian.PutUint16(buf[6:8], dscale)
	return buf
}

// Money represents the MONEY type. PostgreSQL transmits MONEY as an int64
// of minor currency units (cents for a 2-decimal locale); the scale
// actually depends on the session's lc_monetary, which pgwire does not
// read (see REDESIGN FLAGS #2 in SPEC_FULL.md). FractionDigits defaults to
// 2 and can be overridden by the caller before formatting.
type Money struct {
	Units          int64
	FractionDigits int32
}

// ScanText parses a locale-formatted money string by keeping only its
// digits, negated when the string starts with '-'. The digits are read as
// minor units, so the text is taken to carry FractionDigits decimal places.
func (m *Money) ScanText(src []byte) error {
	s := string(src)
	neg := strings.HasPrefix(s, "-")
	var digits []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) == 0 {
		return fmt.Errorf("types: invalid money %q", src)
	}
	n, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return fmt.Errorf("types: invalid money %q: %w", src, err)
	}
	if neg {
		n = -n
	}
	m.Units = n
	if m.FractionDigits == 0 {
		m.FractionDigits = 2
	}
	return nil
}

// ScanBinary parses the int64 wire value (minor units).
func (m *Money) ScanBinary(src []byte) error {
	if len(src) != 8 {
		return fmt.Errorf("types: money binary payload must be 8 bytes, got %d", len(src))
	}
	m.Units = int64(binary.BigEndian.Uint64(src))
	if m.FractionDigits == 0 {
		m.FractionDigits = 2
	}
	return nil
}

// Decimal returns the value scaled by FractionDigits as a shopspring Decimal.
func (m Money) Decimal() decimal.Decimal {
	fd := m.FractionDigits
	if fd == 0 {
		fd = 2
	}
	return decimal.New(m.Units, -fd)
}

// FormatText renders a plain decimal string, e.g. "19.99".
func (m Money) FormatText() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(m.fractionDigitsOrDefault())), nil
}

// FormatBinary renders the int64 wire value.
func (m Money) FormatBinary() ([]byte, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(m.Units))
	return buf[:], nil
}

func (m Money) fractionDigitsOrDefault() int32 {
	if m.FractionDigits == 0 {
		return 2
	}
	return m.FractionDigits
}
