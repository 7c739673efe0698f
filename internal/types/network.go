package types

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	pgAFInet  = 2
	pgAFInet6 = 3
)

// Inet represents PostgreSQL's INET type: an IP address with an optional
// netmask prefix length.
type Inet struct {
	IP        net.IP
	Bits      int
	IsV6      bool
}

// ScanText parses "192.168.1.1" or "192.168.1.0/24" (and IPv6 equivalents).
func (i *Inet) ScanText(src []byte) error {
	return scanInetText(src, &i.IP, &i.Bits, &i.IsV6)
}

func scanInetText(src []byte, ip *net.IP, bits *int, isV6 *bool) error {
	s := string(src)
	addrStr, bitsStr, hasBits := strings.Cut(s, "/")
	parsed := net.ParseIP(addrStr)
	if parsed == nil {
		return fmt.Errorf("types: invalid inet address %q", src)
	}
	v6 := parsed.To4() == nil
	maxBits := 32
	if v6 {
		maxBits = 128
	}
	n := maxBits
	if hasBits {
		var err error
		n, err = strconv.Atoi(bitsStr)
		if err != nil {
			return fmt.Errorf("types: invalid inet prefix %q: %w", src, err)
		}
	}
	*ip = parsed
	*bits = n
	*isV6 = v6
	return nil
}

// ScanBinary parses PostgreSQL's inet/cidr wire format: family, bits,
// is_cidr, address length, then the raw address bytes.
func (i *Inet) ScanBinary(src []byte) error {
	ip, bits, isV6, _, err := scanInetBinary(src)
	if err != nil {
		return err
	}
	i.IP, i.Bits, i.IsV6 = ip, bits, isV6
	return nil
}

func scanInetBinary(src []byte) (ip net.IP, bits int, isV6 bool, isCIDR bool, err error) {
	if len(src) < 4 {
		return nil, 0, false, false, fmt.Errorf("types: inet binary payload too short: %d bytes", len(src))
	}
	family := src[0]
	nbits := int(src[1])
	cidr := src[2] != 0
	nb := int(src[3])
	if len(src) != 4+nb {
		return nil, 0, false, false, fmt.Errorf("types: inet binary payload length mismatch")
	}
	addr := make(net.IP, nb)
	copy(addr, src[4:])
	return addr, nbits, family == pgAFInet6, cidr, nil
}

func (i Inet) text() string {
	maxBits := 32
	if i.IsV6 {
		maxBits = 128
	}
	if i.Bits == maxBits {
		return i.IP.String()
	}
	return fmt.Sprintf("%s/%d", i.IP.String(), i.Bits)
}

func (i Inet) FormatText() ([]byte, error) { return []byte(i.text()), nil }

func (i Inet) FormatBinary() ([]byte, error) {
	return formatInetBinary(i.IP, i.Bits, i.IsV6, false), nil
}

func formatInetBinary(ip net.IP, bits int, isV6, isCIDR bool) []byte {
	family := byte(pgAFInet)
	addr := ip.To4()
	if isV6 || addr == nil {
		family = pgAFInet6
		addr = ip.To16()
	}
	cidrByte := byte(0)
	if isCIDR {
		cidrByte = 1
	}
	buf := []byte{family, byte(bits), cidrByte, byte(len(addr))}
	return append(buf, addr...)
}

// CIDR represents PostgreSQL's CIDR type: a network address where host bits
// beyond the prefix are required to be zero.
type CIDR struct {
	IP   net.IP
	Bits int
	IsV6 bool
}

func (c *CIDR) ScanText(src []byte) error {
	return scanInetText(src, &c.IP, &c.Bits, &c.IsV6)
}

func (c *CIDR) ScanBinary(src []byte) error {
	ip, bits, isV6, _, err := scanInetBinary(src)
	if err != nil {
		return err
	}
	c.IP, c.Bits, c.IsV6 = ip, bits, isV6
	return nil
}

func (c CIDR) FormatText() ([]byte, error) {
	return []byte(fmt.Sprintf("%s/%d", c.IP.String(), c.Bits)), nil
}

func (c CIDR) FormatBinary() ([]byte, error) {
	return formatInetBinary(c.IP, c.Bits, c.IsV6, true), nil
}

// MACAddress represents PostgreSQL's MACADDR (6-byte) and MACADDR8 (8-byte,
// EUI-64) types, distinguished by len(Addr).
type MACAddress struct {
	Addr net.HardwareAddr
}

func (m *MACAddress) ScanText(src []byte) error {
	addr, err := net.ParseMAC(string(src))
	if err != nil {
		return fmt.Errorf("types: invalid macaddr %q: %w", src, err)
	}
	m.Addr = addr
	return nil
}

func (m *MACAddress) ScanBinary(src []byte) error {
	if len(src) != 6 && len(src) != 8 {
		return fmt.Errorf("types: macaddr binary payload must be 6 or 8 bytes, got %d", len(src))
	}
	addr := make(net.HardwareAddr, len(src))
	copy(addr, src)
	m.Addr = addr
	return nil
}

func (m MACAddress) FormatText() ([]byte, error) { return []byte(m.Addr.String()), nil }
func (m MACAddress) FormatBinary() ([]byte, error) { return []byte(m.Addr), nil }
