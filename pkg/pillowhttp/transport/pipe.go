package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
)

// PipeTransport is a Transport backed by an in-process net.Pipe, for
// deterministic tests and the in-repo example server: no real sockets,
// no DNS, no timing variance.
//
// Connect ignores host/port and instead consumes a connection previously
// handed to it by Dial, so a test can wire a PipeTransport to a specific
// peer (typically the other half of the same net.Pipe, served by
// internal/serverdemo).
type PipeTransport struct {
	mu           sync.Mutex
	conn         net.Conn
	readable     chan []byte
	disconnected chan struct{}
	closeOnce    sync.Once
}

// NewPipeTransport returns a PipeTransport with no active connection.
func NewPipeTransport() *PipeTransport {
	return &PipeTransport{}
}

// Dial creates an in-memory connected pair, wires the client-side half
// to this transport, and returns the server-side half for the caller
// (e.g. to hand to internal/serverdemo).
func (t *PipeTransport) Dial() net.Conn {
	client, server := net.Pipe()
	t.wire(client)
	return server
}

// Connect satisfies the Transport interface for symmetry with
// TCPTransport; host and port are ignored. Most callers should use Dial
// directly instead, since a PipeTransport has no notion of addressing.
func (t *PipeTransport) Connect(ctx context.Context, host string, port int) error {
	if t.IsConnected() {
		return nil
	}
	return fmt.Errorf("transport: PipeTransport has no connection; call Dial first")
}

func (t *PipeTransport) wire(conn net.Conn) {
	t.mu.Lock()
	if t.conn != nil {
		t.closeLocked()
	}
	t.conn = conn
	t.readable = make(chan []byte, 16)
	t.disconnected = make(chan struct{})
	t.closeOnce = sync.Once{}
	readable := t.readable
	disconnected := t.disconnected
	t.mu.Unlock()

	go t.pump(conn, readable, disconnected)
}

func (t *PipeTransport) pump(conn net.Conn, readable chan []byte, disconnected chan struct{}) {
	defer close(readable)
	buf := make([]byte, readChunkSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case readable <- chunk:
			case <-disconnected:
				return
			}
		}
		if err != nil {
			t.mu.Lock()
			if t.conn == conn {
				t.closeLocked()
			}
			t.mu.Unlock()
			return
		}
	}
}

// Write sends b on the current connection.
func (t *PipeTransport) Write(b []byte) (int, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return 0, fmt.Errorf("transport: not connected")
	}
	return conn.Write(b)
}

// Readable returns the channel inbound byte chunks are delivered on.
func (t *PipeTransport) Readable() <-chan []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readable
}

// Disconnected is closed once the connection is torn down.
func (t *PipeTransport) Disconnected() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disconnected
}

// IsConnected reports whether there is a live connection.
func (t *PipeTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Close tears down the connection. Safe to call more than once.
func (t *PipeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeLocked()
}

func (t *PipeTransport) closeLocked() error {
	if t.conn == nil {
		return nil
	}
	conn := t.conn
	disconnected := t.disconnected
	t.conn = nil
	t.closeOnce.Do(func() {
		if disconnected != nil {
			close(disconnected)
		}
	})
	return conn.Close()
}
