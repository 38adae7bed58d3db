package wire

import (
	"bytes"
	"strings"
	"testing"

	"github.com/3E-972/pillow/pkg/pillowhttp/header"
)

func TestWriteSimpleGet(t *testing.T) {
	var buf bytes.Buffer
	h := header.New(1)
	h.AddString("Host", "example.com")

	if err := Get(&buf, "/users/42", h); err != nil {
		t.Fatalf("Get: %v", err)
	}

	output := buf.String()
	if !strings.HasPrefix(output, "GET /users/42 HTTP/1.1\r\n") {
		t.Fatalf("missing request line: %q", output)
	}
	if !strings.Contains(output, "Host: example.com\r\n") {
		t.Errorf("missing Host header: %q", output)
	}
	if !strings.HasSuffix(output, "\r\n\r\n") {
		t.Errorf("missing blank line terminator: %q", output)
	}
}

func TestWritePostAddsContentLength(t *testing.T) {
	var buf bytes.Buffer
	body := []byte(`{"ok":true}`)

	if err := Post(&buf, "/items", nil, body); err != nil {
		t.Fatalf("Post: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Content-Length: 11\r\n") {
		t.Errorf("Content-Length not appended: %q", output)
	}
	if !strings.HasSuffix(output, string(body)) {
		t.Errorf("body not written last: %q", output)
	}
}

func TestWriteDoesNotOverrideExplicitContentLength(t *testing.T) {
	var buf bytes.Buffer
	h := header.New(1)
	h.AddString("Content-Length", "999")

	if err := Put(&buf, "/x", h, []byte("short")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Content-Length: 999\r\n") {
		t.Errorf("caller-supplied Content-Length was overridden: %q", output)
	}
	if strings.Count(output, "Content-Length") != 1 {
		t.Errorf("expected exactly one Content-Length header: %q", output)
	}
}

func TestWriteNoHostHeaderAdded(t *testing.T) {
	var buf bytes.Buffer
	if err := Head(&buf, "/ping", nil); err != nil {
		t.Fatalf("Head: %v", err)
	}
	if strings.Contains(buf.String(), "Host:") {
		t.Errorf("wire.Write must not add a Host header itself: %q", buf.String())
	}
}
