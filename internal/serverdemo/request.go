// Package serverdemo is a minimal request-side counterpart to the
// response parser (package message): just enough to read one request
// line and header block off a connection, dispatch it through a
// router.Router, and write back whatever the router or a matched
// handler decided. It exists so router.RouteAction runs end-to-end
// against a real socket, not only against Router.Dispatch in a test;
// production-grade request parsing (chunked bodies, pipelining,
// trailers) stays the response parser's job on the other side of the
// wire, which is where spec.md actually specifies it.
package serverdemo

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/3E-972/pillow/pkg/pillowhttp/header"
	"github.com/3E-972/pillow/pkg/pillowhttp/message"
)

var (
	errLineTooLong          = errors.New("serverdemo: request or header line too long")
	errMalformedRequestLine = errors.New("serverdemo: malformed request line")
)

// incomingRequest is the parsed view of one request read off a
// connection.
type incomingRequest struct {
	method  string
	target  string
	proto   string
	headers *header.Collection
	body    []byte
}

// readRequest reads one request off r: a request line, a header block
// terminated by a blank line, and a body sized by Content-Length if
// present. It returns io.EOF (possibly wrapped) when the connection has
// no more requests to offer.
func readRequest(r *bufio.Reader) (*incomingRequest, error) {
	line, err := readBoundedLine(r)
	if err != nil {
		return nil, err
	}
	method, target, proto, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}

	headers := header.New(8)
	for {
		line, err := readBoundedLine(r)
		if err != nil {
			return nil, err
		}
		if len(line) == 0 {
			break
		}
		name, value, ok := splitHeaderLine(line)
		if !ok {
			return nil, fmt.Errorf("serverdemo: malformed header line %q", line)
		}
		headers.Add(name, value)
	}

	var body []byte
	if cl, ok := headers.GetString("Content-Length"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(cl))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("serverdemo: invalid Content-Length %q", cl)
		}
		if n > 0 {
			body = make([]byte, n)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, err
			}
		}
	}

	return &incomingRequest{method: method, target: target, proto: proto, headers: headers, body: body}, nil
}

// readBoundedLine reads one CRLF- or LF-terminated line, stripped of its
// terminator, bounded the same as a status/header line on the response
// side (message.MaxLineSize).
func readBoundedLine(r *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return nil, err
		}
		line = append(line, chunk...)
		if len(line) > message.MaxLineSize {
			return nil, errLineTooLong
		}
		if !isPrefix {
			return line, nil
		}
	}
}

func parseRequestLine(line []byte) (method, target, proto string, err error) {
	parts := bytes.SplitN(line, []byte(" "), 3)
	if len(parts) != 3 {
		return "", "", "", errMalformedRequestLine
	}
	return string(parts[0]), string(parts[1]), string(parts[2]), nil
}

func splitHeaderLine(line []byte) (name, value []byte, ok bool) {
	i := bytes.IndexByte(line, ':')
	if i < 0 {
		return nil, nil, false
	}
	return line[:i], bytes.TrimSpace(line[i+1:]), true
}

// keepAlive decides whether the connection serving req should read
// another request afterward, per the HTTP/1.0-vs-1.1 default Connection
// semantics (the request-side mirror of message.decideBodyFraming's
// keep-alive half).
func keepAlive(req *incomingRequest) bool {
	conn, has := req.headers.GetString("Connection")
	connLower := strings.ToLower(strings.TrimSpace(conn))
	if has && connLower == "close" {
		return false
	}
	if req.proto == "HTTP/1.0" {
		return has && connLower == "keep-alive"
	}
	return true
}
