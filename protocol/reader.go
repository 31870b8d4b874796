package protocol

import (
	"bufio"
	"bytes"
	"io"
)

// LineReader frames an inbound byte stream into discrete request lines.
//
// A line ends at LF, CR, or CRLF; the terminator is stripped from the returned
// line. Accepting a bare CR keeps the reader usable for clients that changed
// their own line discipline, and makes the server tolerant of stray CR bytes:
// an "\n\r" (lfcr) client produces an empty line for the trailing CR, which
// the session discards as a no-op.
//
// LineReader is not goroutine-safe. A session owns exactly one reader and
// issues one ReadLine at a time, consistent with the strictly sequential
// command/response exchange of the protocol.
type LineReader struct {
	br *bufio.Reader
}

// NewLineReader creates a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{br: bufio.NewReader(r)}
}

// ReadLine returns the next line with its terminator stripped.
//
// It blocks until a terminator arrives or the stream ends. If the stream ends
// with a partial line, that line is returned with a nil error and the
// following call reports io.EOF.
func (lr *LineReader) ReadLine() (string, error) {
	var buf bytes.Buffer

	for {
		b, err := lr.br.ReadByte()
		if err != nil {
			if err == io.EOF && buf.Len() > 0 {
				return buf.String(), nil
			}
			return "", err
		}

		switch b {
		case '\n':
			return buf.String(), nil

		case '\r':
			// Consume an already-buffered LF so CRLF counts as one terminator.
			// Never block waiting for it: a bare CR completes the line on its
			// own, and a CRLF split across reads yields a discardable empty
			// line on the next call.
			if lr.br.Buffered() > 0 {
				next, err := lr.br.ReadByte()
				if err == nil && next != '\n' {
					_ = lr.br.UnreadByte()
				}
			}
			return buf.String(), nil

		default:
			buf.WriteByte(b)
		}
	}
}
