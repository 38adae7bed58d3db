// Package message implements the incremental, byte-oriented HTTP/1.x
// response parser (spec component C2) and its lifecycle callbacks.
//
// The parser is fed via Inject and never blocks or allocates a goroutine:
// it is purely synchronous on whatever bytes its owner hands it, exactly
// like the node-http-parser-style engines this toolkit's response side is
// modeled after. It tolerates arbitrarily fragmented input — feeding a
// whole response in one Inject call or one byte at a time yields the same
// parsed result.
package message

// Phase tracks where the parser is within a single message's lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStatusLine
	PhaseHeaders
	PhaseBody
	PhaseComplete
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStatusLine:
		return "status-line"
	case PhaseHeaders:
		return "headers"
	case PhaseBody:
		return "body"
	case PhaseComplete:
		return "complete"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// bodyMode models the framing decision made at end-of-headers (spec §4.1).
// Go has no sum types, so the remaining-byte-count field is interpreted
// differently depending on this tag.
type bodyMode int

const (
	bodyModeNone bodyMode = iota
	bodyModeFixed
	bodyModeEOF
	bodyModeChunked
)

// chunkState tracks progress through a single chunked-encoding body.
type chunkState int

const (
	chunkReadSize chunkState = iota
	chunkReadData
	chunkReadDataCRLF
	chunkReadTrailer
)

// ErrorKind is the parser's fine-grained, sticky error classification.
// Once set it persists until Clear(); see spec §4.1 "Sticky error".
type ErrorKind int

const (
	// ErrNone means no error has occurred.
	ErrNone ErrorKind = iota
	// ErrInvalidStatusLine means the status line did not match the lenient
	// "HTTP/D.D SP CODE [SP REASON]" grammar.
	ErrInvalidStatusLine
	// ErrInvalidHeader means a header line had no colon separator.
	ErrInvalidHeader
	// ErrHeaderTooLarge means a single status, header or trailer line
	// exceeded MaxLineSize before a terminator was found.
	ErrHeaderTooLarge
	// ErrContentLengthInvalid means the Content-Length value was not a
	// valid non-negative decimal integer.
	ErrContentLengthInvalid
	// ErrInvalidChunkSize means a chunk-size line was not valid hex, a
	// chunk's size exceeded MaxChunkSize, or a chunk-size line or the line
	// ending a chunk's data exceeded MaxLineSize.
	ErrInvalidChunkSize
	// ErrUnexpectedEOF means the transport reached EOF while a message
	// was only partially parsed and its framing did not depend on EOF.
	ErrUnexpectedEOF
)

func (e ErrorKind) String() string {
	switch e {
	case ErrNone:
		return "none"
	case ErrInvalidStatusLine:
		return "invalid status line"
	case ErrInvalidHeader:
		return "invalid header"
	case ErrHeaderTooLarge:
		return "header or status line too large"
	case ErrContentLengthInvalid:
		return "invalid Content-Length"
	case ErrInvalidChunkSize:
		return "invalid chunk size"
	case ErrUnexpectedEOF:
		return "unexpected EOF"
	default:
		return "unknown error"
	}
}

// Limits, grounded on the teacher's http11.MaxRequestLineSize/MaxHeadersSize
// (shockwave/pkg/shockwave/http11/constants.go), re-tuned for response-side
// parsing where a single status/header/chunk-size line is the unit bounded,
// rather than the whole header block.
const (
	// MaxLineSize bounds a single status line, header line, chunk-size
	// line or trailer line. Prevents unbounded memory growth when a
	// terminator never arrives.
	MaxLineSize = 16 * 1024
	// MaxChunkSize bounds a single chunk's declared size.
	MaxChunkSize = 16 * 1024 * 1024
)
