package wire

import (
	"encoding/binary"
	"fmt"
)

// AuthMessage is a parsed Authentication* message.
type AuthMessage struct {
	Kind    uint32
	Payload []byte // remaining bytes after the 4-byte kind, mechanism-specific
}

// ParseAuthentication parses the payload of an 'R' frame.
func ParseAuthentication(f Frame) (AuthMessage, error) {
	if f.Type != Authentication {
		return AuthMessage{}, fmt.Errorf("wire: expected Authentication message, got %q", f.Type)
	}
	if len(f.Payload) < 4 {
		return AuthMessage{}, fmt.Errorf("wire: Authentication message too short")
	}
	return AuthMessage{
		Kind:    binary.BigEndian.Uint32(f.Payload[:4]),
		Payload: f.Payload[4:],
	}, nil
}

// FieldDescription describes one result column from RowDescription.
type FieldDescription struct {
	Name             string
	TableOID         uint32
	ColumnAttribute  int16
	DataTypeOID      uint32
	DataTypeSize     int16
	TypeModifier     int32
	FormatCode       int16 // 0 = text, 1 = binary
}

// ParseRowDescription parses a 'T' frame into its field list.
func ParseRowDescription(f Frame) ([]FieldDescription, error) {
	if f.Type != RowDescriptionTag {
		return nil, fmt.Errorf("wire: expected RowDescription, got %q", f.Type)
	}
	p := f.Payload
	if len(p) < 2 {
		return nil, fmt.Errorf("wire: truncated RowDescription")
	}
	n := int(binary.BigEndian.Uint16(p[:2]))
	p = p[2:]
	fields := make([]FieldDescription, 0, n)
	for i := 0; i < n; i++ {
		nameEnd := indexByte(p, 0)
		if nameEnd < 0 {
			return nil, fmt.Errorf("wire: truncated RowDescription field name")
		}
		name := string(p[:nameEnd])
		p = p[nameEnd+1:]
		if len(p) < 18 {
			return nil, fmt.Errorf("wire: truncated RowDescription field")
		}
		fd := FieldDescription{
			Name:            name,
			TableOID:        binary.BigEndian.Uint32(p[0:4]),
			ColumnAttribute: int16(binary.BigEndian.Uint16(p[4:6])),
			DataTypeOID:     binary.BigEndian.Uint32(p[6:10]),
			DataTypeSize:    int16(binary.BigEndian.Uint16(p[10:12])),
			TypeModifier:    int32(binary.BigEndian.Uint32(p[12:16])),
			FormatCode:      int16(binary.BigEndian.Uint16(p[16:18])),
		}
		fields = append(fields, fd)
		p = p[18:]
	}
	return fields, nil
}

// ParseDataRow parses a 'D' frame into per-column byte slices. A nil
// element means SQL NULL (wire length -1).
func ParseDataRow(f Frame) ([][]byte, error) {
	if f.Type != DataRowTag {
		return nil, fmt.Errorf("wire: expected DataRow, got %q", f.Type)
	}
	p := f.Payload
	if len(p) < 2 {
		return nil, fmt.Errorf("wire: truncated DataRow")
	}
	n := int(binary.BigEndian.Uint16(p[:2]))
	p = p[2:]
	cols := make([][]byte, n)
	for i := 0; i < n; i++ {
		if len(p) < 4 {
			return nil, fmt.Errorf("wire: truncated DataRow column length")
		}
		l := int32(binary.BigEndian.Uint32(p[:4]))
		p = p[4:]
		if l == -1 {
			cols[i] = nil
			continue
		}
		if l < 0 || int(l) > len(p) {
			return nil, fmt.Errorf("wire: invalid DataRow column length %d", l)
		}
		cols[i] = p[:l]
		p = p[l:]
	}
	return cols, nil
}

// ParseCommandComplete returns the command tag string ("SELECT 3", "INSERT 0 1", ...).
func ParseCommandComplete(f Frame) (string, error) {
	if f.Type != CommandCompleteTag {
		return "", fmt.Errorf("wire: expected CommandComplete, got %q", f.Type)
	}
	end := indexByte(f.Payload, 0)
	if end < 0 {
		end = len(f.Payload)
	}
	return string(f.Payload[:end]), nil
}

// ParseReadyForQuery returns the transaction status byte: 'I', 'T', or 'E'.
func ParseReadyForQuery(f Frame) (byte, error) {
	if f.Type != ReadyForQuery {
		return 0, fmt.Errorf("wire: expected ReadyForQuery, got %q", f.Type)
	}
	if len(f.Payload) < 1 {
		return 0, fmt.Errorf("wire: truncated ReadyForQuery")
	}
	return f.Payload[0], nil
}

// ParseParameterStatus returns the key/value pair of an 'S' frame.
func ParseParameterStatus(f Frame) (string, string, error) {
	if f.Type != ParameterStatus {
		return "", "", fmt.Errorf("wire: expected ParameterStatus, got %q", f.Type)
	}
	key, val, ok := splitNullPair(f.Payload)
	if !ok {
		return "", "", fmt.Errorf("wire: malformed ParameterStatus")
	}
	return key, val, nil
}

// BackendKeyData holds the secret cancellation key pair.
type BackendKeyData struct {
	ProcessID uint32
	SecretKey uint32
}

// ParseBackendKeyData parses a 'K' frame.
func ParseBackendKeyData(f Frame) (BackendKeyData, error) {
	if f.Type != BackendKeyDataTag {
		return BackendKeyData{}, fmt.Errorf("wire: expected BackendKeyData, got %q", f.Type)
	}
	if len(f.Payload) < 8 {
		return BackendKeyData{}, fmt.Errorf("wire: truncated BackendKeyData")
	}
	return BackendKeyData{
		ProcessID: binary.BigEndian.Uint32(f.Payload[0:4]),
		SecretKey: binary.BigEndian.Uint32(f.Payload[4:8]),
	}, nil
}

// ParseParameterDescription returns the parameter type OIDs from a 't' frame.
func ParseParameterDescription(f Frame) ([]uint32, error) {
	if f.Type != ParameterDescTag {
		return nil, fmt.Errorf("wire: expected ParameterDescription, got %q", f.Type)
	}
	p := f.Payload
	if len(p) < 2 {
		return nil, fmt.Errorf("wire: truncated ParameterDescription")
	}
	n := int(binary.BigEndian.Uint16(p[:2]))
	p = p[2:]
	oids := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		if len(p) < 4 {
			return nil, fmt.Errorf("wire: truncated ParameterDescription entry")
		}
		oids = append(oids, binary.BigEndian.Uint32(p[:4]))
		p = p[4:]
	}
	return oids, nil
}

// Fields is the (tag byte -> value) mapping carried by ErrorResponse and
// NoticeResponse messages.
type Fields map[byte]string

// ParseFields parses the (field-tag, NUL-terminated value) pairs terminated
// by a zero byte, as used by ErrorResponse ('E') and NoticeResponse ('N').
func ParseFields(f Frame) (Fields, error) {
	if f.Type != ErrorResponseTag && f.Type != NoticeResponseTag {
		return nil, fmt.Errorf("wire: expected ErrorResponse or NoticeResponse, got %q", f.Type)
	}
	out := make(Fields)
	p := f.Payload
	for len(p) > 0 {
		tag := p[0]
		if tag == 0 {
			break
		}
		p = p[1:]
		end := indexByte(p, 0)
		if end < 0 {
			return nil, fmt.Errorf("wire: truncated error field")
		}
		out[tag] = string(p[:end])
		p = p[end+1:]
	}
	return out, nil
}

// Common ErrorResponse/NoticeResponse field tags.
const (
	FieldSeverity     byte = 'S'
	FieldSQLSTATE     byte = 'C'
	FieldMessage      byte = 'M'
	FieldDetail       byte = 'D'
	FieldHint         byte = 'H'
	FieldPosition     byte = 'P'
	FieldSchemaName   byte = 's'
	FieldTableName    byte = 't'
	FieldColumnName   byte = 'c'
	FieldDataTypeName byte = 'd'
	FieldConstraint   byte = 'n'
)

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func splitNullPair(data []byte) (string, string, bool) {
	i := indexByte(data, 0)
	if i < 0 {
		return "", "", false
	}
	key := string(data[:i])
	rest := data[i+1:]
	j := indexByte(rest, 0)
	if j < 0 {
		return key, string(rest), true
	}
	return key, string(rest[:j]), true
}
