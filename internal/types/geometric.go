package types

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

func encodeFloat8(f float64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(f))
	return buf[:]
}

func decodeFloat8(src []byte) (float64, error) {
	if len(src) != 8 {
		return 0, fmt.Errorf("types: float8 payload must be 8 bytes, got %d", len(src))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(src)), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Point represents PostgreSQL's POINT type.
type Point struct {
	X, Y float64
}

func (p Point) wireBytes() []byte {
	return append(encodeFloat8(p.X), encodeFloat8(p.Y)...)
}

func parsePointWire(src []byte) (Point, error) {
	if len(src) != 16 {
		return Point{}, fmt.Errorf("types: point binary payload must be 16 bytes, got %d", len(src))
	}
	x, _ := decodeFloat8(src[0:8])
	y, _ := decodeFloat8(src[8:16])
	return Point{X: x, Y: y}, nil
}

func (p Point) text() string {
	return fmt.Sprintf("(%s,%s)", formatFloat(p.X), formatFloat(p.Y))
}

func parsePointText(s string) (Point, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("types: invalid point %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("types: invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("types: invalid point %q: %w", s, err)
	}
	return Point{X: x, Y: y}, nil
}

func (p *Point) ScanText(src []byte) error {
	v, err := parsePointText(string(src))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p *Point) ScanBinary(src []byte) error {
	v, err := parsePointWire(src)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p Point) FormatText() ([]byte, error) { return []byte(p.text()), nil }
func (p Point) FormatBinary() ([]byte, error) { return p.wireBytes(), nil }

func parsePointList(s string) ([]Point, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "((") {
		s = strings.TrimPrefix(s, "(")
		s = strings.TrimSuffix(s, ")")
	}
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil, nil
	}
	// Points are written as "(x,y)" adjacent with commas between them; a
	// naive comma split would break each point's own x,y apart, so track
	// paren depth and split on point boundaries instead.
	var pts []Point
	depth := 0
	var cur strings.Builder
	flush := func() error {
		t := strings.TrimSpace(cur.String())
		if t == "" {
			return nil
		}
		p, err := parsePointText(t)
		if err != nil {
			return err
		}
		pts = append(pts, p)
		cur.Reset()
		return nil
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '(':
			depth++
			cur.WriteByte(c)
		case ')':
			depth--
			cur.WriteByte(c)
			if depth == 0 {
				if err := flush(); err != nil {
					return nil, err
				}
			}
		case ',':
			if depth == 0 {
				continue
			}
			cur.WriteByte(c)
		default:
			cur.WriteByte(c)
		}
	}
	return pts, nil
}

func formatPointList(pts []Point, open, close string) string {
	strs := make([]string, len(pts))
	for i, p := range pts {
		strs[i] = p.text()
	}
	return open + strings.Join(strs, ",") + close
}

// Line represents PostgreSQL's LINE type: Ax + By + C = 0.
type Line struct {
	A, B, C float64
}

func (l *Line) ScanText(src []byte) error {
	s := strings.TrimSpace(string(src))
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fmt.Errorf("types: invalid line %q", src)
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("types: invalid line %q: %w", src, err)
		}
		vals[i] = v
	}
	l.A, l.B, l.C = vals[0], vals[1], vals[2]
	return nil
}

func (l *Line) ScanBinary(src []byte) error {
	if len(src) != 24 {
		return fmt.Errorf("types: line binary payload must be 24 bytes, got %d", len(src))
	}
	a, _ := decodeFloat8(src[0:8])
	b, _ := decodeFloat8(src[8:16])
	c, _ := decodeFloat8(src[16:24])
	l.A, l.B, l.C = a, b, c
	return nil
}

func (l Line) FormatText() ([]byte, error) {
	return []byte(fmt.Sprintf("{%s,%s,%s}", formatFloat(l.A), formatFloat(l.B), formatFloat(l.C))), nil
}

func (l Line) FormatBinary() ([]byte, error) {
	buf := encodeFloat8(l.A)
	buf = append(buf, encodeFloat8(l.B)...)
	buf = append(buf, encodeFloat8(l.C)...)
	return buf, nil
}

// LineSegment represents PostgreSQL's LSEG type.
type LineSegment struct {
	Start, End Point
}

func (s *LineSegment) ScanText(src []byte) error {
	pts, err := parsePointList(string(src))
	if err != nil || len(pts) != 2 {
		return fmt.Errorf("types: invalid lseg %q", src)
	}
	s.Start, s.End = pts[0], pts[1]
	return nil
}

func (s *LineSegment) ScanBinary(src []byte) error {
	if len(src) != 32 {
		return fmt.Errorf("types: lseg binary payload must be 32 bytes, got %d", len(src))
	}
	start, _ := parsePointWire(src[0:16])
	end, _ := parsePointWire(src[16:32])
	s.Start, s.End = start, end
	return nil
}

func (s LineSegment) FormatText() ([]byte, error) {
	return []byte(formatPointList([]Point{s.Start, s.End}, "[", "]")), nil
}

func (s LineSegment) FormatBinary() ([]byte, error) {
	return append(s.Start.wireBytes(), s.End.wireBytes()...), nil
}

// Box represents PostgreSQL's BOX type, always normalized to (high, low) corners.
type Box struct {
	High, Low Point
}

func (b *Box) ScanText(src []byte) error {
	pts, err := parsePointList(string(src))
	if err != nil || len(pts) != 2 {
		return fmt.Errorf("types: invalid box %q", src)
	}
	b.High, b.Low = normalizeBox(pts[0], pts[1])
	return nil
}

func (b *Box) ScanBinary(src []byte) error {
	if len(src) != 32 {
		return fmt.Errorf("types: box binary payload must be 32 bytes, got %d", len(src))
	}
	p1, _ := parsePointWire(src[0:16])
	p2, _ := parsePointWire(src[16:32])
	b.High, b.Low = normalizeBox(p1, p2)
	return nil
}

func normalizeBox(p1, p2 Point) (high, low Point) {
	high = Point{X: math.Max(p1.X, p2.X), Y: math.Max(p1.Y, p2.Y)}
	low = Point{X: math.Min(p1.X, p2.X), Y: math.Min(p1.Y, p2.Y)}
	return
}

func (b Box) FormatText() ([]byte, error) {
	return []byte(fmt.Sprintf("%s,%s", b.High.text(), b.Low.text())), nil
}

func (b Box) FormatBinary() ([]byte, error) {
	return append(b.High.wireBytes(), b.Low.wireBytes()...), nil
}

// Path represents PostgreSQL's PATH type, open or closed.
type Path struct {
	Closed bool
	Points []Point
}

func (p *Path) ScanText(src []byte) error {
	s := strings.TrimSpace(string(src))
	closed := strings.HasPrefix(s, "(")
	pts, err := parsePointList(s)
	if err != nil {
		return fmt.Errorf("types: invalid path %q: %w", src, err)
	}
	p.Closed = closed
	p.Points = pts
	return nil
}

func (p *Path) ScanBinary(src []byte) error {
	if len(src) < 5 {
		return fmt.Errorf("types: path binary payload too short: %d bytes", len(src))
	}
	closed := src[0] != 0
	npts := int(int32(binary.BigEndian.Uint32(src[1:5])))
	pts := make([]Point, npts)
	off := 5
	for i := 0; i < npts; i++ {
		if off+16 > len(src) {
			return fmt.Errorf("types: path binary payload truncated")
		}
		pt, _ := parsePointWire(src[off : off+16])
		pts[i] = pt
		off += 16
	}
	p.Closed = closed
	p.Points = pts
	return nil
}

func (p Path) FormatText() ([]byte, error) {
	open, closeTok := "[", "]"
	if p.Closed {
		open, closeTok = "(", ")"
	}
	return []byte(formatPointList(p.Points, open, closeTok)), nil
}

func (p Path) FormatBinary() ([]byte, error) {
	buf := make([]byte, 5)
	if p.Closed {
		buf[0] = 1
	}
	binary.BigEndian.PutUint32(buf[1:5], uint32(int32(len(p.Points))))
	for _, pt := range p.Points {
		buf = append(buf, pt.wireBytes()...)
	}
	return buf, nil
}

// Polygon represents PostgreSQL's POLYGON type.
type Polygon struct {
	Points []Point
}

func (p *Polygon) ScanText(src []byte) error {
	pts, err := parsePointList(string(src))
	if err != nil {
		return fmt.Errorf("types: invalid polygon %q: %w", src, err)
	}
	p.Points = pts
	return nil
}

func (p *Polygon) ScanBinary(src []byte) error {
	if len(src) < 4 {
		return fmt.Errorf("types: polygon binary payload too short: %d bytes", len(src))
	}
	npts := int(int32(binary.BigEndian.Uint32(src[0:4])))
	pts := make([]Point, npts)
	off := 4
	for i := 0; i < npts; i++ {
		if off+16 > len(src) {
			return fmt.Errorf("types: polygon binary payload truncated")
		}
		pt, _ := parsePointWire(src[off : off+16])
		pts[i] = pt
		off += 16
	}
	p.Points = pts
	return nil
}

func (p Polygon) FormatText() ([]byte, error) {
	return []byte(formatPointList(p.Points, "(", ")")), nil
}

func (p Polygon) FormatBinary() ([]byte, error) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf[0:4], uint32(int32(len(p.Points))))
	for _, pt := range p.Points {
		buf = append(buf, pt.wireBytes()...)
	}
	return buf, nil
}

// Circle represents PostgreSQL's CIRCLE type.
type Circle struct {
	Center Point
	Radius float64
}

func (c *Circle) ScanText(src []byte) error {
	s := strings.TrimSpace(string(src))
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	idx := strings.LastIndex(s, ",")
	if idx < 0 {
		return fmt.Errorf("types: invalid circle %q", src)
	}
	centerStr := strings.TrimSpace(s[:idx])
	radiusStr := strings.TrimSpace(s[idx+1:])
	center, err := parsePointText(centerStr)
	if err != nil {
		return fmt.Errorf("types: invalid circle %q: %w", src, err)
	}
	radius, err := strconv.ParseFloat(radiusStr, 64)
	if err != nil {
		return fmt.Errorf("types: invalid circle %q: %w", src, err)
	}
	c.Center, c.Radius = center, radius
	return nil
}

func (c *Circle) ScanBinary(src []byte) error {
	if len(src) != 24 {
		return fmt.Errorf("types: circle binary payload must be 24 bytes, got %d", len(src))
	}
	center, _ := parsePointWire(src[0:16])
	radius, _ := decodeFloat8(src[16:24])
	c.Center, c.Radius = center, radius
	return nil
}

func (c Circle) FormatText() ([]byte, error) {
	return []byte(fmt.Sprintf("<%s,%s>", c.Center.text(), formatFloat(c.Radius))), nil
}

func (c Circle) FormatBinary() ([]byte, error) {
	return append(c.Center.wireBytes(), encodeFloat8(c.Radius)...), nil
}
