package protocol

import (
	"fmt"
	"strings"
)

// LineEnding represents the terminator appended to each response line sent to
// a session.
type LineEnding uint8

// Selectable line endings, in the order accepted by "ctrl : line_ending".
const (
	// LF terminates lines with "\n". This is the default for new sessions.
	LF LineEnding = iota
	// CR terminates lines with "\r".
	CR
	// LFCR terminates lines with "\n\r".
	LFCR
	// CRLF terminates lines with "\r\n".
	CRLF
)

// DefaultLineEnding is the terminator every session starts with.
const DefaultLineEnding = LF

// ParseLineEnding parses the argument of a "ctrl : line_ending" command.
// The mode is matched case-insensitively and stored normalized.
func ParseLineEnding(mode string) (LineEnding, error) {
	switch strings.ToLower(mode) {
	case "lf":
		return LF, nil
	case "cr":
		return CR, nil
	case "lfcr":
		return LFCR, nil
	case "crlf":
		return CRLF, nil
	default:
		return DefaultLineEnding, fmt.Errorf("unknown line ending mode %q", mode)
	}
}

// Bytes returns the terminator byte sequence.
func (le LineEnding) Bytes() []byte {
	switch le {
	case LF:
		return []byte{'\n'}
	case CR:
		return []byte{'\r'}
	case LFCR:
		return []byte{'\n', '\r'}
	case CRLF:
		return []byte{'\r', '\n'}
	default:
		return []byte{'\n'}
	}
}

// String returns the normalized mode name.
func (le LineEnding) String() string {
	switch le {
	case LF:
		return "lf"
	case CR:
		return "cr"
	case LFCR:
		return "lfcr"
	case CRLF:
		return "crlf"
	default:
		return "unknown"
	}
}
