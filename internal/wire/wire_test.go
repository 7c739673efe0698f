package wire

import (
	"bytes"
	"net"
	"testing"
)

func TestWriteReadQueryRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		w := NewWriter(client)
		if err := w.WriteQuery("SELECT 1"); err != nil {
			t.Errorf("WriteQuery: %v", err)
		}
	}()

	r := NewReader(server)
	f, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if f.Type != QueryTag {
		t.Fatalf("expected Query tag, got %q", f.Type)
	}
	if !bytes.Equal(f.Payload, append([]byte("SELECT 1"), 0)) {
		t.Fatalf("unexpected payload: %q", f.Payload)
	}
}

func TestWriteBindParamsAndNull(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		w := NewWriter(client)
		err := w.WriteBind("", "stmt1", []int16{0, 1}, [][]byte{[]byte("hello"), nil}, []int16{1})
		if err != nil {
			t.Errorf("WriteBind: %v", err)
		}
	}()

	r := NewReader(server)
	f, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if f.Type != BindTag {
		t.Fatalf("expected Bind tag, got %q", f.Type)
	}
}

func TestParseRowDescriptionAndDataRow(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		// Build a RowDescription with one column "id", type OID 23 (int4), format 1 (binary).
		var payload []byte
		payload = append(payload, 0, 1) // field count = 1
		payload = append(payload, "id"...)
		payload = append(payload, 0)
		payload = append(payload, 0, 0, 0, 0) // table oid
		payload = append(payload, 0, 0)       // attnum
		payload = append(payload, 0, 0, 0, 23)
		payload = append(payload, 0, 4) // type size
		payload = append(payload, 0xff, 0xff, 0xff, 0xff)
		payload = append(payload, 0, 1) // format binary

		buf := []byte{RowDescriptionTag}
		lenBuf := make([]byte, 4)
		msgLen := len(payload) + 4
		lenBuf[0] = byte(msgLen >> 24)
		lenBuf[1] = byte(msgLen >> 16)
		lenBuf[2] = byte(msgLen >> 8)
		lenBuf[3] = byte(msgLen)
		buf = append(buf, lenBuf...)
		buf = append(buf, payload...)
		if _, err := client.Write(buf); err != nil {
			t.Errorf("write: %v", err)
		}

		// DataRow: one column, 4 bytes, value = 42 big-endian.
		drPayload := []byte{0, 1, 0, 0, 0, 4, 0, 0, 0, 42}
		drBuf := []byte{DataRowTag}
		drLen := len(drPayload) + 4
		drLenBuf := make([]byte, 4)
		drLenBuf[0] = byte(drLen >> 24)
		drLenBuf[1] = byte(drLen >> 16)
		drLenBuf[2] = byte(drLen >> 8)
		drLenBuf[3] = byte(drLen)
		drBuf = append(drBuf, drLenBuf...)
		drBuf = append(drBuf, drPayload...)
		client.Write(drBuf)
	}()

	r := NewReader(server)
	f1, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame RowDescription: %v", err)
	}
	fields, err := ParseRowDescription(f1)
	if err != nil {
		t.Fatalf("ParseRowDescription: %v", err)
	}
	if len(fields) != 1 || fields[0].Name != "id" || fields[0].DataTypeOID != 23 || fields[0].FormatCode != 1 {
		t.Fatalf("unexpected fields: %+v", fields)
	}

	f2, err := r.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame DataRow: %v", err)
	}
	cols, err := ParseDataRow(f2)
	if err != nil {
		t.Fatalf("ParseDataRow: %v", err)
	}
	if len(cols) != 1 || len(cols[0]) != 4 {
		t.Fatalf("unexpected columns: %+v", cols)
	}
}

func TestParseFieldsErrorResponse(t *testing.T) {
	var payload []byte
	payload = append(payload, 'S')
	payload = append(payload, "ERROR"...)
	payload = append(payload, 0)
	payload = append(payload, 'C')
	payload = append(payload, "42P01"...)
	payload = append(payload, 0)
	payload = append(payload, 'M')
	payload = append(payload, "relation does not exist"...)
	payload = append(payload, 0)
	payload = append(payload, 0)

	f := Frame{Type: ErrorResponseTag, Payload: payload}
	fields, err := ParseFields(f)
	if err != nil {
		t.Fatalf("ParseFields: %v", err)
	}
	if fields[FieldSQLSTATE] != "42P01" {
		t.Fatalf("expected SQLSTATE 42P01, got %q", fields[FieldSQLSTATE])
	}
	if fields[FieldMessage] != "relation does not exist" {
		t.Fatalf("unexpected message: %q", fields[FieldMessage])
	}
}

func TestParseDataRowNull(t *testing.T) {
	payload := []byte{0, 1, 0xff, 0xff, 0xff, 0xff}
	f := Frame{Type: DataRowTag, Payload: payload}
	cols, err := ParseDataRow(f)
	if err != nil {
		t.Fatalf("ParseDataRow: %v", err)
	}
	if len(cols) != 1 || cols[0] != nil {
		t.Fatalf("expected single nil column, got %+v", cols)
	}
}
