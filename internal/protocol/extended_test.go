package protocol

import (
	"net"
	"testing"
	"time"

	"github.com/polarwire/pgwire/internal/encoder"
)

func TestPrepareExSuccess(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		tag, _ := readQueryMessage(t, server)
		if tag != 'P' {
			t.Errorf("expected Parse, got %q", tag)
			return
		}
		tag, _ = readQueryMessage(t, server)
		if tag != 'S' {
			t.Errorf("expected Sync, got %q", tag)
			return
		}
		writeBackendFrame(server, '1', nil)
		writeBackendFrame(server, 'Z', []byte{'I'})
	}()

	c := newTestConn(client)
	if err := c.PrepareEx("s1", "SELECT id FROM t WHERE id = $1"); err != nil {
		t.Fatalf("PrepareEx: %v", err)
	}
	entry, ok := c.statements.Lookup("s1")
	if !ok || !entry.Parsed || entry.Intent != IntentSelect {
		t.Fatalf("got %+v, ok=%v", entry, ok)
	}
}

func TestPrepareExSecondCallWithSameIntentSkipsWire(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		tag, _ := readQueryMessage(t, server)
		if tag != 'P' {
			t.Errorf("expected Parse, got %q", tag)
			return
		}
		tag, _ = readQueryMessage(t, server)
		if tag != 'S' {
			t.Errorf("expected Sync, got %q", tag)
			return
		}
		writeBackendFrame(server, '1', nil)
		writeBackendFrame(server, 'Z', []byte{'I'})
	}()

	c := newTestConn(client)
	if err := c.PrepareEx("s1", "SELECT id FROM t WHERE id = $1"); err != nil {
		t.Fatalf("first PrepareEx: %v", err)
	}

	// Second call with the same name and intent must not write Parse/Sync
	// again: a real server rejects a second Parse for an existing name.
	done := make(chan error, 1)
	go func() { done <- c.PrepareEx("s1", "SELECT id FROM t WHERE id = $1") }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("second PrepareEx: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("second PrepareEx blocked on the wire instead of returning immediately")
	}
}

func TestPrepareExRejectsUnsupportedCommand(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := newTestConn(client)
	err := c.PrepareEx("s1", "DROP TABLE t")
	if err != ErrUnsupportedPrepareCommand {
		t.Fatalf("expected ErrUnsupportedPrepareCommand, got %v", err)
	}
	server.Close()
}

func TestExecuteExSelectWithParams(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		tag, _ := readQueryMessage(t, server)
		if tag != 'B' {
			t.Errorf("expected Bind, got %q", tag)
			return
		}
		tag, _ = readQueryMessage(t, server)
		if tag != 'D' {
			t.Errorf("expected Describe, got %q", tag)
			return
		}
		tag, _ = readQueryMessage(t, server)
		if tag != 'E' {
			t.Errorf("expected Execute, got %q", tag)
			return
		}
		tag, _ = readQueryMessage(t, server)
		if tag != 'S' {
			t.Errorf("expected Sync, got %q", tag)
			return
		}
		writeBackendFrame(server, '2', nil)
		writeBackendFrame(server, 'T', rowDescPayload("id", 1))
		writeBackendFrame(server, 'D', dataRowPayload([]byte{0, 0, 0, 7}))
		writeBackendFrame(server, 'C', append([]byte("SELECT 1"), 0))
		writeBackendFrame(server, 'Z', []byte{'I'})
	}()

	c := newTestConn(client)
	c.statements.entries["s1"] = StatementCacheEntry{Intent: IntentSelect, Parsed: true}

	param, err := encoder.Encode(int32(7))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	res, err := c.ExecuteEx("s1", []encoder.Encoded{param})
	if err != nil {
		t.Fatalf("ExecuteEx: %v", err)
	}
	if res.Kind != ResultSelect || len(res.Rows) != 1 {
		t.Fatalf("got %+v", res)
	}
}

func TestExecuteExUnknownStatement(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := newTestConn(client)
	_, err := c.ExecuteEx("missing", nil)
	if err == nil {
		t.Fatal("expected error for unknown prepared statement")
	}
	server.Close()
}
