package types

import (
	"net"
	"testing"
)

func TestInetTextV4(t *testing.T) {
	var i Inet
	if err := i.ScanText([]byte("192.168.1.0/24")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	if i.Bits != 24 || i.IsV6 {
		t.Fatalf("got %+v", i)
	}
	text, _ := i.FormatText()
	if string(text) != "192.168.1.0/24" {
		t.Fatalf("FormatText = %q", text)
	}
}

func TestInetTextV4NoMaskOmitsSlash(t *testing.T) {
	var i Inet
	if err := i.ScanText([]byte("10.0.0.1")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	text, _ := i.FormatText()
	if string(text) != "10.0.0.1" {
		t.Fatalf("FormatText = %q, want 10.0.0.1", text)
	}
}

func TestInetBinaryRoundTrip(t *testing.T) {
	i := Inet{IP: net.ParseIP("10.1.2.3"), Bits: 32, IsV6: false}
	wire, err := i.FormatBinary()
	if err != nil {
		t.Fatalf("FormatBinary: %v", err)
	}
	var i2 Inet
	if err := i2.ScanBinary(wire); err != nil {
		t.Fatalf("ScanBinary: %v", err)
	}
	if !i2.IP.Equal(i.IP) || i2.Bits != i.Bits || i2.IsV6 != i.IsV6 {
		t.Fatalf("got %+v, want %+v", i2, i)
	}
}

func TestInetBinaryV6(t *testing.T) {
	i := Inet{IP: net.ParseIP("2001:db8::1"), Bits: 64, IsV6: true}
	wire, err := i.FormatBinary()
	if err != nil {
		t.Fatalf("FormatBinary: %v", err)
	}
	if len(wire) != 4+16 {
		t.Fatalf("wire length = %d, want 20", len(wire))
	}
	var i2 Inet
	if err := i2.ScanBinary(wire); err != nil {
		t.Fatalf("ScanBinary: %v", err)
	}
	if !i2.IP.Equal(i.IP) || i2.Bits != 64 {
		t.Fatalf("got %+v", i2)
	}
}

func TestCIDRRoundTrip(t *testing.T) {
	var c CIDR
	if err := c.ScanText([]byte("10.0.0.0/8")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	wire, err := c.FormatBinary()
	if err != nil {
		t.Fatalf("FormatBinary: %v", err)
	}
	var c2 CIDR
	if err := c2.ScanBinary(wire); err != nil {
		t.Fatalf("ScanBinary: %v", err)
	}
	if !c2.IP.Equal(c.IP) || c2.Bits != c.Bits {
		t.Fatalf("got %+v, want %+v", c2, c)
	}
}

func TestMACAddressRoundTrip(t *testing.T) {
	var m MACAddress
	if err := m.ScanText([]byte("08:00:2b:01:02:03")); err != nil {
		t.Fatalf("ScanText: %v", err)
	}
	text, _ := m.FormatText()
	if string(text) != "08:00:2b:01:02:03" {
		t.Fatalf("FormatText = %q", text)
	}
	wire, _ := m.FormatBinary()
	if len(wire) != 6 {
		t.Fatalf("wire length = %d, want 6", len(wire))
	}

	var m2 MACAddress
	if err := m2.ScanBinary(wire); err != nil {
		t.Fatalf("ScanBinary: %v", err)
	}
	if m2.Addr.String() != m.Addr.String() {
		t.Fatalf("got %s, want %s", m2.Addr, m.Addr)
	}
}

func TestMACAddress8(t *testing.T) {
	var m MACAddress
	if err := m.ScanBinary([]byte{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatalf("ScanBinary: %v", err)
	}
	if len(m.Addr) != 8 {
		t.Fatalf("len = %d, want 8", len(m.Addr))
	}
}
