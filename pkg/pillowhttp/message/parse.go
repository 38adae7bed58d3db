package message

// parseStatusLine parses a lenient "HTTP/D.D SP CODE [SP REASON]" line
// (spec §4.2). The reason phrase, if present, is not retained: nothing in
// the toolkit's public API exposes it.
func (p *Parser) parseStatusLine(line []byte) ErrorKind {
	if len(line) < len(httpPrefix)+3 {
		return ErrInvalidStatusLine
	}
	for i := range httpPrefix {
		if line[i] != httpPrefix[i] {
			return ErrInvalidStatusLine
		}
	}
	rest := line[len(httpPrefix):]

	major, n, ok := readDigits(rest)
	if !ok || n == 0 || n >= len(rest) || rest[n] != '.' {
		return ErrInvalidStatusLine
	}
	rest = rest[n+1:]

	minor, n, ok := readDigits(rest)
	if !ok || n == 0 || n >= len(rest) || rest[n] != ' ' {
		return ErrInvalidStatusLine
	}
	rest = rest[n+1:]

	code, n, ok := readDigits(rest)
	if !ok || n != 3 {
		return ErrInvalidStatusLine
	}
	// Whatever follows (SP + reason phrase, or nothing) is ignored.

	p.httpMajor = uint16(major)
	p.httpMinor = uint16(minor)
	p.statusCode = uint16(code)
	return ErrNone
}

// readDigits reads a run of ASCII digits from the front of b, returning
// the parsed value and how many bytes were consumed. ok is always true;
// an empty run is reported via n == 0.
func readDigits(b []byte) (value int, n int, ok bool) {
	for n < len(b) && b[n] >= '0' && b[n] <= '9' {
		value = value*10 + int(b[n]-'0')
		n++
	}
	return value, n, true
}

// parseHeaderLine splits "Name: Value" at the first colon and appends it
// to the in-progress header collection, trimming optional whitespace
// (OWS) from both sides of the value per RFC 7230 §3.2.
func (p *Parser) parseHeaderLine(line []byte) ErrorKind {
	colon := -1
	for i, b := range line {
		if b == ':' {
			colon = i
			break
		}
	}
	if colon <= 0 {
		return ErrInvalidHeader
	}
	name := line[:colon]
	value := trimOWS(line[colon+1:])
	p.headers.Add(name, value)
	return ErrNone
}

func trimOWS(b []byte) []byte {
	start := 0
	for start < len(b) && isOWS(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isOWS(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isOWS(b byte) bool { return b == ' ' || b == '\t' }

// decideBodyFraming applies the five precedence rules of spec §4.1 "Body
// framing decision" once the end-of-headers blank line has been seen:
// no-body statuses, then chunked Transfer-Encoding, then Content-Length,
// then EOF-terminated (Connection: close, or HTTP/1.0 without an
// explicit Connection: keep-alive), and finally no body by default
// (the HTTP/1.1 keep-alive-implied case).
//
// Rule 4 is read broadly here to resolve the Open Question in spec §9:
// scenario NO_BODY_HTTP10_KA_200 is an HTTP/1.0 response that DOES carry
// Connection: keep-alive but no Content-Length and no chunked encoding,
// and the reference behavior still treats it as EOF-terminated with
// should_keep_alive=false rather than falling through to rule 5's
// no-body default. So any HTTP/1.0 response lacking explicit framing is
// EOF-terminated regardless of its Connection header; only HTTP/1.1+
// gets rule 5's "no body" default. See DESIGN.md.
func (p *Parser) decideBodyFraming() ErrorKind {
	te := p.headers.Get(transferEncodingHeader)
	cl := p.headers.Get(contentLengthHeader)

	isHTTP10 := p.httpMajor == 1 && p.httpMinor == 0
	closeRequested := containsTokenFold(p.headers.Get(connectionHeader), closeToken)
	keepAliveRequested := containsTokenFold(p.headers.Get(connectionHeader), keepAliveToken)

	noBodyStatus := p.statusCode == 204 || p.statusCode == 304 || (p.statusCode >= 100 && p.statusCode < 200)

	switch {
	case noBodyStatus:
		p.bodyMode = bodyModeNone
		p.completesOnEOF = false

	case te != nil && containsTokenFold(te, chunkedToken):
		p.bodyMode = bodyModeChunked
		p.chunkState = chunkReadSize
		p.completesOnEOF = false

	case cl != nil:
		n, ok := parseContentLength(cl)
		if !ok {
			return ErrContentLengthInvalid
		}
		p.bodyMode = bodyModeFixed
		if n == 0 {
			p.bodyMode = bodyModeNone
		}
		p.bodyRemaining = n
		p.completesOnEOF = false

	case closeRequested || isHTTP10:
		p.bodyMode = bodyModeEOF
		p.completesOnEOF = true

	default:
		p.bodyMode = bodyModeNone
		p.completesOnEOF = false
	}

	switch {
	case p.completesOnEOF:
		// EOF-terminated framing can never be safely reused, even if
		// the literal Connection header said keep-alive.
		p.shouldKeepAlive = false
	case isHTTP10:
		p.shouldKeepAlive = keepAliveRequested
	default:
		p.shouldKeepAlive = !closeRequested
	}

	if p.bodyMode == bodyModeNone {
		p.phase = PhaseComplete
	} else {
		p.phase = PhaseBody
	}
	return ErrNone
}

func parseContentLength(v []byte) (int64, bool) {
	if len(v) == 0 {
		return 0, false
	}
	var n int64
	for _, b := range v {
		if b < '0' || b > '9' {
			return 0, false
		}
		n = n*10 + int64(b-'0')
	}
	return n, true
}

// containsTokenFold reports whether a comma-separated header value
// contains token (case-insensitively) as one of its elements, ignoring
// surrounding whitespace around each element.
func containsTokenFold(value, token []byte) bool {
	start := 0
	for i := 0; i <= len(value); i++ {
		if i == len(value) || value[i] == ',' {
			elem := trimOWS(value[start:i])
			if len(elem) == len(token) && equalFoldBytes(elem, token) {
				return true
			}
			start = i + 1
		}
	}
	return false
}

func equalFoldBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 32
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 32
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// consumeBody advances the in-progress body by as much of data as it can
// use, returning how much was consumed and whether the body (and hence
// the message) is now complete.
func (p *Parser) consumeBody(data []byte) (consumed int, done bool, err ErrorKind) {
	switch p.bodyMode {
	case bodyModeFixed:
		n := len(data)
		if int64(n) > p.bodyRemaining {
			n = int(p.bodyRemaining)
		}
		p.content = append(p.content, data[:n]...)
		p.bodyRemaining -= int64(n)
		return n, p.bodyRemaining == 0, ErrNone

	case bodyModeEOF:
		p.content = append(p.content, data...)
		return len(data), false, ErrNone

	case bodyModeChunked:
		return p.consumeChunked(data)

	default:
		return 0, true, ErrNone
	}
}

// consumeChunked implements the chunked transfer-coding grammar (RFC 7230
// §4.1): a hex chunk-size line (chunk extensions after ';' are ignored),
// that many bytes of chunk data, a CRLF, repeated until a zero-size chunk
// is seen, followed by optional trailer header lines and a final blank
// line.
func (p *Parser) consumeChunked(data []byte) (consumed int, done bool, err ErrorKind) {
	total := 0
	for total < len(data) {
		switch p.chunkState {
		case chunkReadSize:
			line, n, found, tooLong := p.consumeLine(data[total:])
			total += n
			if tooLong {
				return total, false, ErrInvalidChunkSize
			}
			if !found {
				return total, false, ErrNone
			}
			size, ok := parseChunkSizeLine(line)
			if !ok || size > MaxChunkSize {
				return total, false, ErrInvalidChunkSize
			}
			p.chunkRemaining = size
			if size == 0 {
				p.chunkState = chunkReadTrailer
			} else {
				p.chunkState = chunkReadData
			}

		case chunkReadData:
			remaining := data[total:]
			n := len(remaining)
			if uint64(n) > p.chunkRemaining {
				n = int(p.chunkRemaining)
			}
			p.content = append(p.content, remaining[:n]...)
			p.chunkRemaining -= uint64(n)
			total += n
			if p.chunkRemaining == 0 {
				p.chunkState = chunkReadDataCRLF
			} else {
				return total, false, ErrNone
			}

		case chunkReadDataCRLF:
			line, n, found, tooLong := p.consumeLine(data[total:])
			total += n
			if tooLong {
				return total, false, ErrInvalidChunkSize
			}
			if !found {
				return total, false, ErrNone
			}
			_ = line
			p.chunkState = chunkReadSize

		case chunkReadTrailer:
			line, n, found, tooLong := p.consumeLine(data[total:])
			total += n
			if tooLong {
				return total, false, ErrHeaderTooLarge
			}
			if !found {
				return total, false, ErrNone
			}
			if len(line) == 0 {
				return total, true, ErrNone
			}
			if err := p.parseHeaderLine(line); err != ErrNone {
				return total, false, err
			}
		}
	}
	return total, false, ErrNone
}

// parseChunkSizeLine parses the hex size prefix of a chunk-size line,
// discarding any ";"-delimited chunk extensions.
func parseChunkSizeLine(line []byte) (uint64, bool) {
	end := len(line)
	for i, b := range line {
		if b == ';' {
			end = i
			break
		}
	}
	hex := trimOWS(line[:end])
	if len(hex) == 0 {
		return 0, false
	}
	var size uint64
	for _, b := range hex {
		var digit uint64
		switch {
		case b >= '0' && b <= '9':
			digit = uint64(b - '0')
		case b >= 'a' && b <= 'f':
			digit = uint64(b-'a') + 10
		case b >= 'A' && b <= 'F':
			digit = uint64(b-'A') + 10
		default:
			return 0, false
		}
		size = size*16 + digit
	}
	return size, true
}
