package client

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/3E-972/pillow/pkg/pillowhttp/header"
)

var errConnectFailed = errors.New("client test: connect failed")

type noopTransport struct{ connected bool }

func (t *noopTransport) Connect(context.Context, string, int) error { t.connected = true; return nil }
func (t *noopTransport) Write(b []byte) (int, error)                { return len(b), nil }
func (t *noopTransport) Readable() <-chan []byte                    { return nil }
func (t *noopTransport) Close() error                                { t.connected = false; return nil }
func (t *noopTransport) IsConnected() bool                           { return t.connected }
func (t *noopTransport) Disconnected() <-chan struct{}               { return nil }

type fakeMetrics struct {
	started, finished int
	lastErr           ErrorKind
}

func (m *fakeMetrics) RequestStarted(string, string) { m.started++ }
func (m *fakeMetrics) RequestFinished(_, _ string, _ int, err ErrorKind) {
	m.finished++
	m.lastErr = err
}
func (m *fakeMetrics) ConnectionOpened(string) {}
func (m *fakeMetrics) ConnectionReused(string) {}

func TestMetricsCountedOnceEvenOnConnectError(t *testing.T) {
	m := &fakeMetrics{}
	c := New(func() Transport { return &failingConnectTransport{} })
	c.SetMetrics(m)

	err := c.Request(context.Background(), "GET", "http://example.invalid/", nil, nil)
	if err == nil {
		t.Fatalf("expected a connect error")
	}
	if m.started != 1 {
		t.Errorf("RequestStarted called %d times, want 1", m.started)
	}
	if m.finished != 1 {
		t.Fatalf("RequestFinished called %d times, want 1", m.finished)
	}
	if m.lastErr != NetworkError {
		t.Errorf("lastErr = %v, want NetworkError", m.lastErr)
	}
}

type failingConnectTransport struct{ noopTransport }

func (t *failingConnectTransport) Connect(context.Context, string, int) error {
	return errConnectFailed
}

func TestRequestRefusesWhenResponsePending(t *testing.T) {
	c := New(func() Transport { return &noopTransport{} })
	c.responsePending = true

	err := c.Request(context.Background(), "GET", "http://example.invalid/", nil, nil)
	if err != nil {
		t.Fatalf("pipelining refusal should return nil, got %v", err)
	}
	if !c.responsePending {
		t.Errorf("pipelining refusal must not touch responsePending")
	}
}

func TestBuildEffectiveHeadersAddsAcceptOnly(t *testing.T) {
	out := buildEffectiveHeaders(nil, nil)
	if v, ok := out.GetString("Accept"); !ok || v != "*" {
		t.Errorf("Accept = %q, %v, want * true", v, ok)
	}
	if out.Has([]byte("Content-Length")) {
		t.Errorf("Content-Length should not be added for an empty body")
	}
}

func TestBuildEffectiveHeadersRespectsExistingAccept(t *testing.T) {
	h := header.New(1)
	h.AddString("Accept", "application/json")

	out := buildEffectiveHeaders(h, nil)
	all := out.GetAll([]byte("Accept"))
	if len(all) != 1 || string(all[0]) != "application/json" {
		t.Errorf("Accept headers = %v, want single application/json", all)
	}
}

func TestPortOfDefaultsAndExplicit(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"http://host/a", 80},
		{"https://host/a", 443},
		{"http://host:8080/a", 8080},
	}
	for _, tc := range cases {
		u, err := url.Parse(tc.raw)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.raw, err)
		}
		if got := portOf(u); got != tc.want {
			t.Errorf("portOf(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
