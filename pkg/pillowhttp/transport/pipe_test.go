package transport

import (
	"testing"
	"time"
)

func TestPipeTransportRoundTrip(t *testing.T) {
	pt := NewPipeTransport()
	serverConn := pt.Dial()
	defer serverConn.Close()

	if !pt.IsConnected() {
		t.Fatalf("expected PipeTransport to be connected after Dial")
	}

	go func() {
		buf := make([]byte, 64)
		n, err := serverConn.Read(buf)
		if err != nil {
			return
		}
		serverConn.Write(buf[:n])
	}()

	if _, err := pt.Write([]byte("ping")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	select {
	case chunk, ok := <-pt.Readable():
		if !ok {
			t.Fatalf("Readable closed unexpectedly")
		}
		if string(chunk) != "ping" {
			t.Errorf("chunk = %q, want ping", chunk)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echoed bytes")
	}
}

func TestPipeTransportCloseSignalsDisconnected(t *testing.T) {
	pt := NewPipeTransport()
	serverConn := pt.Dial()
	defer serverConn.Close()

	done := pt.Disconnected()
	pt.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Disconnected channel never closed")
	}

	if pt.IsConnected() {
		t.Errorf("expected IsConnected to be false after Close")
	}
}
