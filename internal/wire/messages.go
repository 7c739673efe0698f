// Package wire implements the PostgreSQL frontend/backend wire protocol
// (version 3): message framing and typed readers/writers for the subset of
// messages a client needs to speak Simple and Extended query protocols.
package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Backend message type tags.
const (
	Authentication        byte = 'R'
	ParameterStatus       byte = 'S'
	BackendKeyDataTag     byte = 'K'
	ReadyForQuery         byte = 'Z'
	RowDescriptionTag     byte = 'T'
	DataRowTag            byte = 'D'
	CommandCompleteTag    byte = 'C'
	EmptyQueryResponseTag byte = 'I'
	ParseCompleteTag      byte = '1'
	BindCompleteTag       byte = '2'
	NoDataTag             byte = 'n'
	ErrorResponseTag      byte = 'E'
	NoticeResponseTag     byte = 'N'
	ParameterDescTag      byte = 't'
	CloseCompleteTag      byte = '3'
	PortalSuspendedTag    byte = 's'
)

// Frontend message type tags.
const (
	QueryTag       byte = 'Q'
	ParseTag       byte = 'P'
	BindTag        byte = 'B'
	DescribeTag    byte = 'D'
	ExecuteTag     byte = 'E'
	SyncTag        byte = 'S'
	TerminateTag   byte = 'X'
	PasswordTag    byte = 'p'
	CloseTag       byte = 'C'
)

// Authentication sub-message codes (payload of an 'R' message).
const (
	AuthOK                uint32 = 0
	AuthKerberosV5        uint32 = 2
	AuthCleartextPassword uint32 = 3
	AuthMD5Password       uint32 = 5
	AuthSCMCredential     uint32 = 6
	AuthGSS               uint32 = 7
	AuthGSSContinue       uint32 = 8
	AuthSSPI              uint32 = 9
	AuthSASL              uint32 = 10
	AuthSASLContinue      uint32 = 11
	AuthSASLFinal         uint32 = 12
)

// ProtocolVersion3 is the only startup protocol version pgwire speaks.
const ProtocolVersion3 = 3<<16 | 0

// SSLRequestCode is the magic number sent instead of a protocol version to
// request a TLS upgrade before the real StartupMessage.
const SSLRequestCode = 80877103

// Frame is one decoded backend message: its type tag and payload (the
// length prefix is consumed during reads and recomputed on writes).
type Frame struct {
	Type    byte
	Payload []byte
}

// Reader reads framed backend messages off a buffered byte stream.
type Reader struct {
	br *bufio.Reader
}

// NewReader wraps r with buffering sized to amortize small message reads.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 16*1024)}
}

// ReadFrame reads one backend message: a 1-byte tag, a 4-byte big-endian
// length (inclusive of the length field itself), and the payload.
func (r *Reader) ReadFrame() (Frame, error) {
	var hdr [5]byte
	if _, err := io.ReadFull(r.br, hdr[:]); err != nil {
		return Frame{}, err
	}
	length := int(binary.BigEndian.Uint32(hdr[1:5])) - 4
	if length < 0 || length > 1<<24 {
		return Frame{}, fmt.Errorf("wire: invalid message length %d for tag %q", length, hdr[0])
	}
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r.br, payload); err != nil {
			return Frame{}, err
		}
	}
	return Frame{Type: hdr[0], Payload: payload}, nil
}

// ReadByte reads one untagged byte, used only for the single-byte SSL
// negotiation response ('S'/'N'), which is not itself framed.
func (r *Reader) ReadByte() (byte, error) {
	return r.br.ReadByte()
}

// Writer writes framed frontend messages to an io.Writer.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w for frontend message writes.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) writeTagged(tag byte, payload []byte) error {
	buf := make([]byte, 1+4+len(payload))
	buf[0] = tag
	binary.BigEndian.PutUint32(buf[1:5], uint32(4+len(payload)))
	copy(buf[5:], payload)
	_, err := w.w.Write(buf)
	return err
}

func (w *Writer) writeUntagged(payload []byte) error {
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(4+len(payload)))
	copy(buf[4:], payload)
	_, err := w.w.Write(buf)
	return err
}

// WriteSSLRequest sends the pre-startup SSL negotiation request.
func (w *Writer) WriteSSLRequest() error {
	var body [4]byte
	binary.BigEndian.PutUint32(body[:], SSLRequestCode)
	return w.writeUntagged(body[:])
}

// WriteStartupMessage sends the StartupMessage carrying protocol version 3.0
// and the given ordered parameters (map iteration order is not used by
// callers that care about order; PostgreSQL does not require one).
func (w *Writer) WriteStartupMessage(params map[string]string) error {
	var body []byte
	var ver [4]byte
	binary.BigEndian.PutUint32(ver[:], ProtocolVersion3)
	body = append(body, ver[:]...)
	for _, k := range []string{"user", "database"} {
		v, ok := params[k]
		if !ok {
			continue
		}
		body = append(body, k...)
		body = append(body, 0)
		body = append(body, v...)
		body = append(body, 0)
	}
	for k, v := range params {
		if k == "user" || k == "database" {
			continue
		}
		body = append(body, k...)
		body = append(body, 0)
		body = append(body, v...)
		body = append(body, 0)
	}
	body = append(body, 0)
	return w.writeUntagged(body)
}

// WritePasswordMessage sends a PasswordMessage ('p') with a NUL-terminated
// payload, used for cleartext/MD5 password responses.
func (w *Writer) WritePasswordMessage(password string) error {
	payload := append([]byte(password), 0)
	return w.writeTagged(PasswordTag, payload)
}

// WriteSASLInitialResponse sends the first client SASL message: the chosen
// mechanism name followed by the length-prefixed client-first-message.
func (w *Writer) WriteSASLInitialResponse(mechanism string, clientFirst []byte) error {
	var payload []byte
	payload = append(payload, mechanism...)
	payload = append(payload, 0)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(clientFirst)))
	payload = append(payload, lenBuf[:]...)
	payload = append(payload, clientFirst...)
	return w.writeTagged(PasswordTag, payload)
}

// WriteSASLResponse sends a subsequent raw SASL response payload.
func (w *Writer) WriteSASLResponse(data []byte) error {
	return w.writeTagged(PasswordTag, data)
}

// WriteQuery sends a Simple query protocol Query message.
func (w *Writer) WriteQuery(sql string) error {
	payload := append([]byte(sql), 0)
	return w.writeTagged(QueryTag, payload)
}

// WriteParse sends Parse(name, sql, paramOIDs) for the Extended protocol.
func (w *Writer) WriteParse(name, sql string, paramOIDs []uint32) error {
	var payload []byte
	payload = append(payload, name...)
	payload = append(payload, 0)
	payload = append(payload, sql...)
	payload = append(payload, 0)
	var countBuf [2]byte
	binary.BigEndian.PutUint16(countBuf[:], uint16(len(paramOIDs)))
	payload = append(payload, countBuf[:]...)
	for _, oid := range paramOIDs {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], oid)
		payload = append(payload, b[:]...)
	}
	return w.writeTagged(ParseTag, payload)
}

// WriteBind sends Bind(portal, statement, paramFormats, paramValues,
// resultFormats). A nil element of paramValues encodes SQL NULL (length -1).
func (w *Writer) WriteBind(portal, statement string, paramFormats []int16, paramValues [][]byte, resultFormats []int16) error {
	var payload []byte
	payload = append(payload, portal...)
	payload = append(payload, 0)
	payload = append(payload, statement...)
	payload = append(payload, 0)

	var fcBuf [2]byte
	binary.BigEndian.PutUint16(fcBuf[:], uint16(len(paramFormats)))
	payload = append(payload, fcBuf[:]...)
	for _, f := range paramFormats {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(f))
		payload = append(payload, b[:]...)
	}

	var pvBuf [2]byte
	binary.BigEndian.PutUint16(pvBuf[:], uint16(len(paramValues)))
	payload = append(payload, pvBuf[:]...)
	for _, v := range paramValues {
		if v == nil {
			var lb [4]byte
			binary.BigEndian.PutUint32(lb[:], 0xFFFFFFFF) // -1
			payload = append(payload, lb[:]...)
			continue
		}
		var lb [4]byte
		binary.BigEndian.PutUint32(lb[:], uint32(len(v)))
		payload = append(payload, lb[:]...)
		payload = append(payload, v...)
	}

	var rfBuf [2]byte
	binary.BigEndian.PutUint16(rfBuf[:], uint16(len(resultFormats)))
	payload = append(payload, rfBuf[:]...)
	for _, f := range resultFormats {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(f))
		payload = append(payload, b[:]...)
	}

	return w.writeTagged(BindTag, payload)
}

// DescribeKind selects whether Describe targets a prepared statement or a
// portal.
type DescribeKind byte

const (
	DescribeStatement DescribeKind = 'S'
	DescribePortal     DescribeKind = 'P'
)

// WriteDescribe sends Describe(kind, name).
func (w *Writer) WriteDescribe(kind DescribeKind, name string) error {
	payload := append([]byte{byte(kind)}, name...)
	payload = append(payload, 0)
	return w.writeTagged(DescribeTag, payload)
}

// WriteExecute sends Execute(portal, maxRows). maxRows=0 means "no limit".
func (w *Writer) WriteExecute(portal string, maxRows int32) error {
	var payload []byte
	payload = append(payload, portal...)
	payload = append(payload, 0)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(maxRows))
	payload = append(payload, b[:]...)
	return w.writeTagged(ExecuteTag, payload)
}

// WriteSync sends Sync, ending an Extended protocol message sequence.
func (w *Writer) WriteSync() error {
	return w.writeTagged(SyncTag, nil)
}

// WriteTerminate sends Terminate, the graceful connection-close message.
func (w *Writer) WriteTerminate() error {
	return w.writeTagged(TerminateTag, nil)
}

// WriteCloseStatement sends Close('S', name) to close a prepared statement.
func (w *Writer) WriteCloseStatement(name string) error {
	payload := append([]byte{'S'}, name...)
	payload = append(payload, 0)
	return w.writeTagged(CloseTag, payload)
}
