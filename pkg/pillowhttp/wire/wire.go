// Package wire implements the request writer (spec component C3): it
// serializes a method, target, header collection and optional body onto
// any io.Writer in HTTP/1.1 wire format.
package wire

import (
	"io"
	"strconv"

	"github.com/3E-972/pillow/pkg/pillowhttp/header"
)

var (
	sp                  = []byte(" ")
	crlf                = []byte("\r\n")
	colonSpace          = []byte(": ")
	httpVersion         = []byte("HTTP/1.1")
	contentLengthHeader = []byte("Content-Length")
)

// Write emits "METHOD SP TARGET SP HTTP/1.1 CRLF (HEADER CRLF)* CRLF
// [BODY]" to w. The request target is used verbatim, already
// percent-encoded by the caller. If body is non-empty and headers does
// not already carry a Content-Length, one is appended with the body's
// byte length before any header is written. No Host header is added;
// that is the client engine's responsibility.
func Write(w io.Writer, method, target string, headers *header.Collection, body []byte) error {
	effective := headers
	if len(body) > 0 && (headers == nil || !headers.Has(contentLengthHeader)) {
		n := 1
		if headers != nil {
			n = headers.Len() + 1
		}
		effective = header.New(n)
		if headers != nil {
			headers.VisitAll(func(name, value []byte) bool {
				effective.Add(name, value)
				return true
			})
		}
		effective.AddString("Content-Length", strconv.Itoa(len(body)))
	} else if effective == nil {
		effective = header.New(0)
	}

	if _, err := w.Write([]byte(method)); err != nil {
		return err
	}
	if _, err := w.Write(sp); err != nil {
		return err
	}
	if _, err := w.Write([]byte(target)); err != nil {
		return err
	}
	if _, err := w.Write(sp); err != nil {
		return err
	}
	if _, err := w.Write(httpVersion); err != nil {
		return err
	}
	if _, err := w.Write(crlf); err != nil {
		return err
	}

	var writeErr error
	effective.VisitAll(func(name, value []byte) bool {
		if _, writeErr = w.Write(name); writeErr != nil {
			return false
		}
		if _, writeErr = w.Write(colonSpace); writeErr != nil {
			return false
		}
		if _, writeErr = w.Write(value); writeErr != nil {
			return false
		}
		if _, writeErr = w.Write(crlf); writeErr != nil {
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}

	if _, err := w.Write(crlf); err != nil {
		return err
	}

	if len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			return err
		}
	}
	return nil
}

// Get writes a GET request with no body.
func Get(w io.Writer, target string, headers *header.Collection) error {
	return Write(w, "GET", target, headers, nil)
}

// Head writes a HEAD request with no body.
func Head(w io.Writer, target string, headers *header.Collection) error {
	return Write(w, "HEAD", target, headers, nil)
}

// Post writes a POST request with the given body.
func Post(w io.Writer, target string, headers *header.Collection, body []byte) error {
	return Write(w, "POST", target, headers, body)
}

// Put writes a PUT request with the given body.
func Put(w io.Writer, target string, headers *header.Collection, body []byte) error {
	return Write(w, "PUT", target, headers, body)
}

// Delete writes a DELETE request with no body.
func Delete(w io.Writer, target string, headers *header.Collection) error {
	return Write(w, "DELETE", target, headers, nil)
}
