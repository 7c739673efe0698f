package protocol

import (
	"net"
	"testing"
	"time"

	"github.com/polarwire/pgwire/internal/wire"
)

func newTestConn(conn net.Conn) *Conn {
	return &Conn{
		raw:          conn,
		r:            wire.NewReader(conn),
		w:            wire.NewWriter(conn),
		logger:       testLogger(),
		state:        StateConnected,
		serverParams: make(map[string]string),
		statements:   NewStatementCache(),
	}
}

func readQueryMessage(t *testing.T, conn net.Conn) (byte, []byte) {
	t.Helper()
	tag := make([]byte, 1)
	if _, err := conn.Read(tag); err != nil {
		t.Errorf("reading message tag: %v", err)
		return 0, nil
	}
	lenBuf := make([]byte, 4)
	conn.Read(lenBuf)
	length := int(beUint32(lenBuf)) - 4
	body := make([]byte, length)
	if length > 0 {
		conn.Read(body)
	}
	return tag[0], body
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func TestRunSelectClassification(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		tag, _ := readQueryMessage(t, server)
		if tag != 'Q' {
			t.Errorf("expected Query message, got %q", tag)
			return
		}
		writeBackendFrame(server, 'T', rowDescPayload("n", 0))
		writeBackendFrame(server, 'D', dataRowPayload([]byte("1")))
		writeBackendFrame(server, 'D', dataRowPayload([]byte("2")))
		writeBackendFrame(server, 'C', append([]byte("SELECT 2"), 0))
		writeBackendFrame(server, 'Z', []byte{'I'})
	}()

	c := newTestConn(client)
	res, err := c.Run("SELECT n FROM t")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Kind != ResultSelect {
		t.Fatalf("Kind = %v, want Select", res.Kind)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(res.Rows))
	}
}

func TestRunCommandClassification(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		readQueryMessage(t, server)
		writeBackendFrame(server, 'C', append([]byte("UPDATE 3"), 0))
		writeBackendFrame(server, 'Z', []byte{'I'})
	}()

	c := newTestConn(client)
	res, err := c.Run("UPDATE t SET x = 1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Kind != ResultCommand || res.RowsAffected != 3 {
		t.Fatalf("got %+v", res)
	}
}

func TestRunSuccessClassification(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		readQueryMessage(t, server)
		writeBackendFrame(server, 'C', append([]byte("CREATE TABLE"), 0))
		writeBackendFrame(server, 'Z', []byte{'I'})
	}()

	c := newTestConn(client)
	res, err := c.Run("CREATE TABLE t (id int)")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Kind != ResultSuccess || !res.Success {
		t.Fatalf("got %+v", res)
	}
}

func TestRunErrorPropagatesAfterReadyForQuery(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		readQueryMessage(t, server)
		writeBackendFrame(server, 'E', []byte("SERROR\x00Mrelation \"t\" does not exist\x00\x00"))
		writeBackendFrame(server, 'Z', []byte{'I'})
	}()

	c := newTestConn(client)
	_, err := c.Run("SELECT * FROM t")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRunEmptyQuery(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		readQueryMessage(t, server)
		writeBackendFrame(server, 'I', nil)
		writeBackendFrame(server, 'Z', []byte{'I'})
	}()

	c := newTestConn(client)
	res, err := c.Run("")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Kind != ResultSuccess {
		t.Fatalf("got %+v", res)
	}
}

func TestPrepareSecondCallWithSameIntentSkipsWire(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		tag, _ := readQueryMessage(t, server)
		if tag != 'Q' {
			t.Errorf("expected Query message, got %q", tag)
			return
		}
		writeBackendFrame(server, 'C', append([]byte("PREPARE"), 0))
		writeBackendFrame(server, 'Z', []byte{'I'})
	}()

	c := newTestConn(client)
	if err := c.Prepare("s1", "SELECT 1"); err != nil {
		t.Fatalf("first Prepare: %v", err)
	}

	// A second PREPARE with the same name would fail against a real server
	// ("prepared statement \"s1\" already exists"), so this must be a no-op
	// that never touches the wire.
	done := make(chan error, 1)
	go func() { done <- c.Prepare("s1", "SELECT 1") }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("second Prepare: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("second Prepare blocked on the wire instead of returning immediately")
	}
}

func TestExtractIntentExplain(t *testing.T) {
	if ExtractIntent("EXPLAIN SELECT 1") != IntentExplain {
		t.Fatal("expected IntentExplain")
	}
}

func rowDescPayload(name string, formatCode int16) []byte {
	var body []byte
	body = append(body, 0, 1) // field count = 1
	body = append(body, name...)
	body = append(body, 0)
	body = append(body, 0, 0, 0, 0) // table oid
	body = append(body, 0, 0)       // column attr
	body = append(body, 0, 0, 0, 23) // type oid (int4)
	body = append(body, 0, 4)        // type size
	body = append(body, 0, 0, 0, 0)  // type modifier
	body = append(body, byte(formatCode>>8), byte(formatCode))
	return body
}

func dataRowPayload(cols ...[]byte) []byte {
	var body []byte
	body = append(body, byte(len(cols)>>8), byte(len(cols)))
	for _, c := range cols {
		n := int32(len(c))
		body = append(body, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
		body = append(body, c...)
	}
	return body
}
