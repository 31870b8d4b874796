package protocol

import "strings"

// Response is the transient result of executing one command. It serializes to
// exactly one line: "OK: <tokens...>" on success, "ERROR: <descriptor>" on
// failure.
type Response struct {
	tokens []string
	err    error
}

// Ok creates a success response carrying the given result tokens.
//
// The tokens are emitted space-joined, verbatim. Numeric formatting is owned
// by whoever produced the tokens; the protocol never reformats values.
func Ok(tokens ...string) Response {
	return Response{tokens: tokens}
}

// Fail creates an error response. The descriptor text on the wire is
// err.Error().
func Fail(err error) Response {
	return Response{err: err}
}

// IsError reports whether the response carries an error descriptor.
func (r Response) IsError() bool { return r.err != nil }

// Encode renders the response as a single wire line, including the session's
// terminator. Writing the returned slice in one call keeps the line atomic
// from the session's perspective.
func (r Response) Encode(term LineEnding) []byte {
	var sb strings.Builder

	if r.err != nil {
		sb.WriteString("ERROR: ")
		sb.WriteString(r.err.Error())
	} else {
		sb.WriteString("OK:")
		for _, tok := range r.tokens {
			sb.WriteByte(' ')
			sb.WriteString(tok)
		}
	}
	sb.Write(term.Bytes())

	return []byte(sb.String())
}
