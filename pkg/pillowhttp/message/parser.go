package message

import (
	"github.com/3E-972/pillow/pkg/pillowhttp/header"
)

var (
	transferEncodingHeader = []byte("Transfer-Encoding")
	contentLengthHeader    = []byte("Content-Length")
	connectionHeader       = []byte("Connection")
	chunkedToken           = []byte("chunked")
	closeToken             = []byte("close")
	keepAliveToken         = []byte("keep-alive")
	httpPrefix             = []byte("HTTP/")
)

// Parser incrementally decodes one or more HTTP/1.x responses fed to it
// byte-fragment by byte-fragment via Inject. It is reusable across
// messages on a keep-alive connection (spec §4.1, §9 "Reusable parser
// across messages"): per-message state lives in fields reset by
// resetMessage; the sticky error lives at the top level and is only
// cleared by an explicit Clear().
type Parser struct {
	listener Listener

	phase        Phase
	messageBegun bool
	lineBuf      []byte

	httpMajor, httpMinor uint16
	statusCode           uint16
	headers              *header.Collection

	bodyMode       bodyMode
	bodyRemaining  int64
	completesOnEOF bool
	shouldKeepAlive bool

	chunkState     chunkState
	chunkRemaining uint64

	content []byte

	stickyError ErrorKind
}

// NewParser returns a Parser ready to decode the first message. listener
// may be nil.
func NewParser(listener Listener) *Parser {
	p := &Parser{listener: listener}
	p.resetMessage()
	return p
}

// SetListener replaces the parser's lifecycle listener.
func (p *Parser) SetListener(listener Listener) {
	p.listener = listener
}

func (p *Parser) resetMessage() {
	p.phase = PhaseIdle
	p.messageBegun = false
	p.lineBuf = nil
	p.httpMajor, p.httpMinor = 0, 0
	p.statusCode = 0
	p.headers = header.New(8)
	p.bodyMode = bodyModeNone
	p.bodyRemaining = 0
	p.completesOnEOF = false
	p.shouldKeepAlive = false
	p.chunkState = chunkReadSize
	p.chunkRemaining = 0
	p.content = nil
}

// Clear fully resets the parser, including the sticky error, and discards
// any partially parsed message.
func (p *Parser) Clear() {
	p.stickyError = ErrNone
	p.resetMessage()
}

// Inject feeds bytes into the parser and returns how many of them were
// consumed. It stops consuming as soon as the current message reaches
// Complete, so pipelined messages in the same buffer are delivered one at
// a time: the unconsumed remainder is meant to be re-injected (as the
// start of the next message) by the caller.
//
// Once HasError is true, Inject is a no-op that returns 0 until Clear is
// called (spec §4.1 "Sticky error").
func (p *Parser) Inject(data []byte) int {
	if p.stickyError != ErrNone {
		return 0
	}

	if p.phase == PhaseComplete {
		p.resetMessage()
	}

	total := 0
	for total < len(data) {
		switch p.phase {
		case PhaseIdle:
			if total >= len(data) {
				return total
			}
			p.messageBegun = true
			p.phase = PhaseStatusLine
			if p.listener != nil {
				p.listener.OnMessageBegin()
			}

		case PhaseStatusLine:
			line, n, found, tooLong := p.consumeLine(data[total:])
			total += n
			if tooLong {
				p.setError(ErrHeaderTooLarge)
				return total
			}
			if !found {
				return total
			}
			if err := p.parseStatusLine(line); err != ErrNone {
				p.setError(err)
				return total
			}
			p.phase = PhaseHeaders

		case PhaseHeaders:
			line, n, found, tooLong := p.consumeLine(data[total:])
			total += n
			if tooLong {
				p.setError(ErrHeaderTooLarge)
				return total
			}
			if !found {
				return total
			}
			if len(line) == 0 {
				if err := p.decideBodyFraming(); err != ErrNone {
					p.setError(err)
					return total
				}
				if p.listener != nil {
					p.listener.OnHeadersComplete()
				}
				if p.phase == PhaseComplete {
					if p.listener != nil {
						p.listener.OnMessageComplete()
					}
					return total
				}
				continue
			}
			if err := p.parseHeaderLine(line); err != ErrNone {
				p.setError(err)
				return total
			}

		case PhaseBody:
			n, done, err := p.consumeBody(data[total:])
			total += n
			if err != ErrNone {
				p.setError(err)
				return total
			}
			if done {
				p.phase = PhaseComplete
				if p.listener != nil {
					p.listener.OnMessageComplete()
				}
				return total
			}
			if n == 0 {
				return total
			}

		case PhaseComplete:
			return total

		case PhaseError:
			return total
		}
	}
	return total
}

// InjectEOF signals that the transport has reached end-of-stream. If the
// in-progress message's framing depends on EOF, it is finalized as
// Complete; if a message is only partially parsed and its framing does
// not depend on EOF, a sticky UnexpectedEOF error is set. An EOF arriving
// while Idle (no message in progress) or after Complete is not an error.
func (p *Parser) InjectEOF() {
	if p.stickyError != ErrNone {
		return
	}
	switch p.phase {
	case PhaseIdle, PhaseComplete:
		return
	case PhaseBody:
		if p.bodyMode == bodyModeEOF {
			p.phase = PhaseComplete
			if p.listener != nil {
				p.listener.OnMessageComplete()
			}
			return
		}
		p.setError(ErrUnexpectedEOF)
	default:
		p.setError(ErrUnexpectedEOF)
	}
}

// setError latches kind as the sticky error and, per spec §7, discards
// whatever partial response state had already been accumulated:
// status_code, headers and content must all read as zero/empty from this
// point on, not whatever a header or chunk parsed before the failure left
// behind.
func (p *Parser) setError(kind ErrorKind) {
	p.stickyError = kind
	p.phase = PhaseError
	p.statusCode = 0
	p.httpMajor, p.httpMinor = 0, 0
	p.headers = nil
	p.content = nil
}

// consumeLine accumulates bytes into p.lineBuf until a line terminator
// (CRLF or bare LF, per spec §4.1's lenient grammar) is found. It returns
// the line with any terminator stripped, how many bytes of data were
// consumed, whether a full line was found, and whether the accumulated
// line has exceeded MaxLineSize without terminating (a fatal condition
// the caller must turn into a sticky error).
func (p *Parser) consumeLine(data []byte) (line []byte, consumed int, found bool, tooLong bool) {
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			p.lineBuf = append(p.lineBuf, data[:i]...)
			line = p.lineBuf
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			p.lineBuf = nil
			return line, i + 1, true, false
		}
	}
	p.lineBuf = append(p.lineBuf, data...)
	if len(p.lineBuf) > MaxLineSize {
		return nil, len(data), false, true
	}
	return nil, len(data), false, false
}

// Content returns the bytes of the completed message's body, concatenated
// in delivery order. For an in-progress message it holds the body bytes
// received so far; it is empty after an error.
func (p *Parser) Content() []byte {
	if p.content == nil {
		return []byte{}
	}
	return p.content
}

// Headers returns the completed (or in-progress) message's headers, or
// an empty collection before any header line has been parsed or after an
// error.
func (p *Parser) Headers() *header.Collection {
	if p.headers == nil {
		return header.New(0)
	}
	return p.headers
}

// StatusCode returns the parsed status code, or 0 before the status line
// is parsed or after an error.
func (p *Parser) StatusCode() uint16 { return p.statusCode }

// HTTPMajor returns the parsed major version.
func (p *Parser) HTTPMajor() uint16 { return p.httpMajor }

// HTTPMinor returns the parsed minor version.
func (p *Parser) HTTPMinor() uint16 { return p.httpMinor }

// ShouldKeepAlive reports whether the connection this message arrived on
// may be reused for a further request (spec §4.1 "Keep-alive decision").
func (p *Parser) ShouldKeepAlive() bool { return p.shouldKeepAlive }

// CompletesOnEOF reports whether this message's body framing depends on
// transport EOF rather than Content-Length or chunked encoding.
func (p *Parser) CompletesOnEOF() bool { return p.completesOnEOF }

// Phase returns the parser's current lifecycle phase.
func (p *Parser) Phase() Phase { return p.phase }

// Error returns the sticky error, or ErrNone if none has occurred.
func (p *Parser) Error() ErrorKind { return p.stickyError }

// HasError reports whether a sticky error is set.
func (p *Parser) HasError() bool { return p.stickyError != ErrNone }
