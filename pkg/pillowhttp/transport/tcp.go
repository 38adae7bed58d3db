package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
)

// readChunkSize is the buffer size for each read pumped onto Readable.
// Matches the teacher's general preference for fixed, modestly sized
// buffers over per-read allocation (shockwave/pkg/shockwave/client/pool.go
// connection-dialing idiom, adapted here for a push-based read pump).
const readChunkSize = 16 * 1024

// TCPTransport is a Transport backed by a real net.Conn, dialed with
// net.Dialer so callers can pass a context for connect-time
// cancellation. Reads happen on a dedicated goroutine and are delivered
// on the channel returned by Readable; Client never calls Read itself.
type TCPTransport struct {
	mu           sync.Mutex
	conn         net.Conn
	readable     chan []byte
	disconnected chan struct{}
	closeOnce    sync.Once
}

// NewTCPTransport returns a TCPTransport with no active connection.
func NewTCPTransport() *TCPTransport {
	return &TCPTransport{}
}

// Connect dials host:port over TCP, closing any existing connection
// first.
func (t *TCPTransport) Connect(ctx context.Context, host string, port int) error {
	t.mu.Lock()
	if t.conn != nil {
		t.closeLocked()
	}
	t.mu.Unlock()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.conn = conn
	t.readable = make(chan []byte, 16)
	t.disconnected = make(chan struct{})
	t.closeOnce = sync.Once{}
	readable := t.readable
	disconnected := t.disconnected
	t.mu.Unlock()

	go t.pump(conn, readable, disconnected)
	return nil
}

func (t *TCPTransport) pump(conn net.Conn, readable chan []byte, disconnected chan struct{}) {
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
func (t *TCPTransport) Write(b []byte) (int, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return 0, fmt.Errorf("transport: not connected")
	}
	return conn.Write(b)
}

// Readable returns the channel inbound byte chunks are delivered on. It
// is closed when the connection reaches EOF or is closed.
func (t *TCPTransport) Readable() <-chan []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readable
}

// Disconnected is closed once the connection is torn down.
func (t *TCPTransport) Disconnected() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disconnected
}

// IsConnected reports whether there is a live connection.
func (t *TCPTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Close tears down the connection. Safe to call more than once or
// concurrently with the read pump.
func (t *TCPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeLocked()
}

func (t *TCPTransport) closeLocked() error {
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
