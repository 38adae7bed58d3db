package client

// ErrorKind is the client engine's error taxonomy (spec §4.4 "Error
// kinds"). Unlike message.ErrorKind (which classifies how the wire
// format itself was malformed), ErrorKind classifies why a request did
// not produce a usable response at all.
type ErrorKind int

const (
	// NoError means the request completed, or none has been issued yet.
	NoError ErrorKind = iota
	// NetworkError covers an unparsable URL and a failed connect or
	// write. Read failures are not reported as NetworkError: the
	// transports close Readable on any read error, and the client handles
	// that exactly like EOF.
	NetworkError
	// ResponseInvalidError means the parser reported a sticky error.
	ResponseInvalidError
	// RemoteHostClosedError means the transport reached EOF before the
	// response's framing was complete (and the framing did not itself
	// depend on EOF).
	RemoteHostClosedError
	// AbortedError is reserved for future cancellation support.
	AbortedError
)

func (e ErrorKind) String() string {
	switch e {
	case NoError:
		return "no error"
	case NetworkError:
		return "network error"
	case ResponseInvalidError:
		return "invalid response"
	case RemoteHostClosedError:
		return "remote host closed"
	case AbortedError:
		return "aborted"
	default:
		return "unknown client error"
	}
}

// Error lets ErrorKind satisfy the error interface, so it can be
// returned directly from APIs that prefer a Go error over an enum.
func (e ErrorKind) Error() string { return e.String() }
