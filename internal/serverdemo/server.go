package serverdemo

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/3E-972/pillow/pkg/pillowhttp/header"
	"github.com/3E-972/pillow/pkg/pillowhttp/router"
)

// Server accepts connections and, off each one, reads requests one at a
// time and dispatches them through Router. Grounded on the accept/serve
// loop shape of the teacher's server_combined.go CombinedServer.Serve
// (accept, spawn a per-connection goroutine, per-request read/write
// deadlines) with the arena/generation allocation machinery dropped:
// this is a demonstration glue layer, not a throughput-tuned server.
type Server struct {
	Router *router.Router

	// ReadTimeout bounds reading a single request; WriteTimeout bounds
	// writing a single response. Zero means no deadline.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Logger receives one line per request-level failure, if set. A nil
	// Logger (the default) logs nothing, matching this toolkit's
	// library-wide silence-by-default stance.
	Logger *log.Logger

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

// ListenAndServe listens on addr and serves until Close is called.
func (s *Server) ListenAndServe(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve accepts connections off l, one goroutine per connection, until
// Close is called or Accept returns a non-transient error.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	defer l.Close()

	for {
		conn, err := l.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return err
		}
		go s.handleConnection(conn)
	}
}

// Close stops accepting new connections. Connections already accepted
// are not closed: they keep serving requests until the peer closes, a
// request fails to parse, or keepAlive ends them.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return nil
	}
	return l.Close()
}

func (s *Server) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

// handleConnection reads and dispatches requests off conn one at a time
// until the peer closes the connection, a request fails to parse, or
// keepAlive says the connection should not be reused.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	br := bufio.NewReader(conn)

	for {
		if s.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
		}
		req, err := readRequest(br)
		if err != nil {
			return
		}

		resp := &connResponder{conn: conn, writeTimeout: s.WriteTimeout}
		handled, static := s.Router.Dispatch(req.method, req.target, resp)

		switch {
		case !handled:
			if err := writeStaticResponse(conn, s.WriteTimeout, 404, nil, nil); err != nil {
				s.logf("serverdemo: write 404: %v", err)
				return
			}
		case static != nil:
			if err := writeStaticResponse(conn, s.WriteTimeout, static.Status, static.Headers, static.Body); err != nil {
				s.logf("serverdemo: write response: %v", err)
				return
			}
		case !resp.wrote:
			// A handler returned true without writing through resp; there
			// is nothing left to send this request, but the connection
			// itself is still good for the next one.
			s.logf("serverdemo: handler for %s %s reported handled but wrote nothing", req.method, req.target)
		}

		if !keepAlive(req) {
			return
		}
	}
}

// connResponder implements router.Responder against a connection, for
// handlers that build their own status/headers/body rather than
// returning a router.StaticResponse.
type connResponder struct {
	conn         net.Conn
	writeTimeout time.Duration
	wrote        bool
}

func (r *connResponder) WriteResponse(status int, headers *header.Collection, body []byte) error {
	r.wrote = true
	return writeStaticResponse(r.conn, r.writeTimeout, status, headers, body)
}

func writeStaticResponse(conn net.Conn, timeout time.Duration, status int, headers *header.Collection, body []byte) error {
	if timeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(timeout))
	}

	bw := bufio.NewWriter(conn)
	fmt.Fprintf(bw, "HTTP/1.1 %d %s\r\n", status, statusText(status))

	hasContentLength := headers != nil && headers.Has([]byte("Content-Length"))
	if headers != nil {
		headers.VisitAll(func(name, value []byte) bool {
			bw.Write(name)
			bw.WriteString(": ")
			bw.Write(value)
			bw.WriteString("\r\n")
			return true
		})
	}
	if !hasContentLength {
		fmt.Fprintf(bw, "Content-Length: %d\r\n", len(body))
	}
	bw.WriteString("\r\n")
	if len(body) > 0 {
		bw.Write(body)
	}
	return bw.Flush()
}

func statusText(status int) string {
	switch status {
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 204:
		return "No Content"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Found"
	case 304:
		return "Not Modified"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 500:
		return "Internal Server Error"
	case 502:
		return "Bad Gateway"
	case 503:
		return "Service Unavailable"
	default:
		return "Status"
	}
}
