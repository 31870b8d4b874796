package protocol

import (
	"fmt"
	"strings"
)

// Verb identifies the kind of request a command line carries.
type Verb uint8

const (
	// VerbCtrl changes server or session behavior without touching hardware.
	VerbCtrl Verb = iota
	// VerbCall invokes a named capability on the trough interface.
	VerbCall
	// VerbGet reads a trough interface property.
	VerbGet
	// VerbSet writes a trough interface property.
	VerbSet
)

// String returns the wire token for the verb.
func (v Verb) String() string {
	switch v {
	case VerbCtrl:
		return "ctrl"
	case VerbCall:
		return "call"
	case VerbGet:
		return "get"
	case VerbSet:
		return "set"
	default:
		return "unknown"
	}
}

// Command is one parsed request line. It is immutable once parsed.
type Command struct {
	Verb Verb
	Name string
	Args []string
}

// ParseError describes a request line that could not be parsed into a Command.
// It is always recovered locally: the session reports it on the wire and keeps
// running.
type ParseError struct {
	Reason string
	Line   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s in line %q", e.Reason, e.Line)
}

// ParseCommand converts one terminator-stripped request line into a Command.
//
// The grammar is `<verb> ":" <name> [" " <args...>]`. Whitespace around the
// colon is tolerated, matching the reference client which sends
// "ctrl : line_ending crlf". Verb and name matching is case-sensitive.
// Arguments are the residual tokens split on runs of whitespace; no quoting
// is supported.
//
// The caller is expected to filter out blank lines before parsing; they are
// treated as no-op keep-alives by the session, not as commands.
func ParseCommand(line string) (Command, error) {
	verbPart, rest, found := strings.Cut(line, ":")
	if !found {
		return Command{}, &ParseError{Reason: "missing ':' separator", Line: line}
	}

	var verb Verb
	switch strings.TrimSpace(verbPart) {
	case "ctrl":
		verb = VerbCtrl
	case "call":
		verb = VerbCall
	case "get":
		verb = VerbGet
	case "set":
		verb = VerbSet
	default:
		return Command{}, &ParseError{Reason: "unrecognised verb", Line: line}
	}

	tokens := strings.Fields(rest)
	if len(tokens) == 0 {
		return Command{}, &ParseError{Reason: "missing command name", Line: line}
	}

	return Command{Verb: verb, Name: tokens[0], Args: tokens[1:]}, nil
}
