// Package protocol implements the line-oriented text protocol spoken between the
// MicroTrough remote access server and its clients.
//
// Requests are single text lines of the form:
//
//	<verb> : <name> [arg1 arg2 ...]
//
// where verb is one of "ctrl", "call", "get" or "set". Responses are single
// lines beginning with "OK:" or "ERROR:", terminated with the line ending the
// session has selected via "ctrl : line_ending <mode>".
//
// The package provides:
//   - LineEnding: the four selectable response terminators (lf, cr, lfcr, crlf).
//   - LineReader: frames the inbound byte stream into terminator-stripped lines.
//   - ParseCommand: converts one request line into a Command.
//   - Response: renders OK/ERROR result lines.
//
// Tokenization policy: arguments are split on runs of whitespace and there is
// no quoting mechanism, so argument values cannot contain spaces. This matches
// the reference client library, which joins arguments with single spaces.
package protocol
