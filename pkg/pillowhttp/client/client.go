// Package client implements the single-slot HTTP client engine (spec
// component C4): one outstanding request at a time, connection reuse by
// (host, port), and explicit pipelining refusal. It orchestrates a
// Transport, a wire.Write call, and a message.Parser exactly as spec.md
// §4.4's issue algorithm describes.
package client

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/3E-972/pillow/pkg/pillowhttp/header"
	"github.com/3E-972/pillow/pkg/pillowhttp/message"
	"github.com/3E-972/pillow/pkg/pillowhttp/wire"
)

// Transport is the connection contract the client engine depends on. The
// concrete adapters live in package transport (TCPTransport,
// PipeTransport); the client never imports net directly.
type Transport interface {
	Connect(ctx context.Context, host string, port int) error
	Write(b []byte) (int, error)
	Readable() <-chan []byte
	Close() error
	IsConnected() bool
	Disconnected() <-chan struct{}
}

var acceptAnyHeader = []byte("Accept")

// Client holds at most one outstanding request at a time (spec §3
// "Client State" invariant: response_pending ⇒ transport.is_some()).
// It is not safe for concurrent use by multiple goroutines, mirroring
// the single-threaded-per-instance concurrency model of spec §5.
type Client struct {
	newTransport func() Transport

	transport   Transport
	currentHost string
	currentPort int

	parser          *message.Parser
	responsePending bool
	lastError       ErrorKind
	lastMethod      string

	listener Listener
	metrics  Metrics
}

// New returns a Client that dials fresh Transport instances with
// newTransport whenever it needs to connect (or reconnect) to a host.
func New(newTransport func() Transport) *Client {
	c := &Client{
		newTransport: newTransport,
		metrics:      nopMetrics{},
		listener:     NopListener{},
	}
	c.parser = message.NewParser(nil)
	return c
}

// SetListener replaces the client's lifecycle listener.
func (c *Client) SetListener(l Listener) {
	if l == nil {
		l = NopListener{}
	}
	c.listener = l
}

// SetMetrics replaces the client's metrics recorder.
func (c *Client) SetMetrics(m Metrics) {
	if m == nil {
		m = nopMetrics{}
	}
	c.metrics = m
}

// ResponsePending reports whether a request has been issued whose
// response has not yet fully arrived (or failed).
func (c *Client) ResponsePending() bool { return c.responsePending }

// LastError returns the outcome of the most recently completed request.
func (c *Client) LastError() ErrorKind { return c.lastError }

// StatusCode, Headers, Content, HTTPMajor, HTTPMinor and
// ShouldKeepAlive expose the most recently completed response. Their
// values are meaningless while ResponsePending is true or after a
// NetworkError/ResponseInvalidError.
func (c *Client) StatusCode() uint16          { return c.parser.StatusCode() }
func (c *Client) Headers() *header.Collection { return c.parser.Headers() }
func (c *Client) Content() []byte             { return c.parser.Content() }
func (c *Client) HTTPMajor() uint16           { return c.parser.HTTPMajor() }
func (c *Client) HTTPMinor() uint16           { return c.parser.HTTPMinor() }
func (c *Client) ShouldKeepAlive() bool       { return c.parser.ShouldKeepAlive() }

// Request issues method against rawURL with the given headers and body,
// following the issue algorithm in spec §4.4:
//
//  1. Clear prior response state.
//  2. Reuse the current transport if it is connected to the same
//     (host, port); otherwise close it and dial a new one.
//  3. Build an effective header list (Accept: * and Content-Length added
//     when absent).
//  4. Write the request via wire.Write.
//  5. Feed every inbound chunk into the parser until message_complete or
//     an error, then report the outcome.
//
// If a response is already pending, Request is a pipelining refusal: it
// returns immediately without writing any bytes or changing state (spec
// §4.4 "Pipelining refusal").
func (c *Client) Request(ctx context.Context, method, rawURL string, headers *header.Collection, body []byte) error {
	if c.responsePending {
		return nil
	}

	c.lastError = NoError
	c.parser.Clear()

	u, err := url.Parse(rawURL)
	if err != nil {
		c.lastError = NetworkError
		c.emitFinished()
		return fmt.Errorf("client: invalid URL: %w", err)
	}
	host := u.Hostname()
	port := portOf(u)

	reused := c.transport != nil && c.transport.IsConnected() && c.currentHost == host && c.currentPort == port

	c.responsePending = true
	c.lastMethod = method
	c.metrics.RequestStarted(method, host)

	if !reused {
		if c.transport != nil {
			c.transport.Close()
		}
		c.transport = c.newTransport()
		if err := c.transport.Connect(ctx, host, port); err != nil {
			c.fail(host, NetworkError)
			return err
		}
		c.currentHost, c.currentPort = host, port
	}

	if reused {
		c.metrics.ConnectionReused(host)
	} else {
		c.metrics.ConnectionOpened(host)
	}

	effective := buildEffectiveHeaders(headers, body)

	target := u.RequestURI()
	bw := bufio.NewWriter(transportWriter{c.transport})
	if err := wire.Write(bw, method, target, effective, body); err != nil {
		c.fail(host, NetworkError)
		return err
	}
	if err := bw.Flush(); err != nil {
		c.fail(host, NetworkError)
		return err
	}

	return c.pumpUntilComplete(host)
}

// pumpUntilComplete feeds inbound bytes into the parser until the
// message completes, the transport disconnects, or the transport
// signals EOF on Readable.
func (c *Client) pumpUntilComplete(host string) error {
	for {
		select {
		case chunk, ok := <-c.transport.Readable():
			if !ok {
				c.parser.InjectEOF()
				if c.parser.HasError() {
					c.fail(host, c.classifyParserError())
					return c.lastError
				}
				if c.parser.Phase() == message.PhaseComplete {
					c.finishSuccess(host)
					return nil
				}
				c.fail(host, RemoteHostClosedError)
				return c.lastError
			}
			c.parser.Inject(chunk)
			if c.parser.HasError() {
				c.fail(host, ResponseInvalidError)
				return c.lastError
			}
			if c.parser.Phase() == message.PhaseComplete {
				c.finishSuccess(host)
				return nil
			}
		case <-c.transport.Disconnected():
			// Drain whatever arrived before disconnection was observed.
			select {
			case chunk, ok := <-c.transport.Readable():
				if ok {
					c.parser.Inject(chunk)
					if c.parser.Phase() == message.PhaseComplete {
						c.finishSuccess(host)
						return nil
					}
				}
			default:
			}
			c.parser.InjectEOF()
			if c.parser.HasError() {
				c.fail(host, c.classifyParserError())
				return c.lastError
			}
			if c.parser.Phase() == message.PhaseComplete {
				c.finishSuccess(host)
				return nil
			}
			c.fail(host, RemoteHostClosedError)
			return c.lastError
		}
	}
}

func (c *Client) classifyParserError() ErrorKind {
	if c.parser.Error() == message.ErrUnexpectedEOF {
		return RemoteHostClosedError
	}
	return ResponseInvalidError
}

func (c *Client) finishSuccess(host string) {
	c.responsePending = false
	c.lastError = NoError
	if !c.parser.ShouldKeepAlive() {
		c.transport.Close()
	}
	c.metrics.RequestFinished(c.lastMethod, host, int(c.parser.StatusCode()), NoError)
	c.emitFinished()
}

func (c *Client) fail(host string, kind ErrorKind) {
	c.responsePending = false
	c.lastError = kind
	if c.transport != nil {
		c.transport.Close()
	}
	c.metrics.RequestFinished(c.lastMethod, host, 0, kind)
	c.emitFinished()
}

func (c *Client) emitFinished() {
	c.listener.OnFinished()
}

// buildEffectiveHeaders appends Accept: * and Content-Length, per spec
// §4.4 step 3, without mutating the caller's collection.
func buildEffectiveHeaders(headers *header.Collection, body []byte) *header.Collection {
	n := 2
	if headers != nil {
		n += headers.Len()
	}
	out := header.New(n)
	if headers != nil {
		headers.VisitAll(func(name, value []byte) bool {
			out.Add(name, value)
			return true
		})
	}
	if !out.Has(acceptAnyHeader) {
		out.AddString("Accept", "*")
	}
	if len(body) > 0 && !out.Has([]byte("Content-Length")) {
		out.AddString("Content-Length", strconv.Itoa(len(body)))
	}
	return out
}

func portOf(u *url.URL) int {
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			return n
		}
	}
	if u.Scheme == "https" {
		return 443
	}
	return 80
}

// transportWriter adapts Transport.Write to io.Writer for wire.Write.
type transportWriter struct {
	t Transport
}

func (w transportWriter) Write(b []byte) (int, error) {
	return w.t.Write(b)
}
