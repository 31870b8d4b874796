// Package server implements the MicroTrough remote access server: a TCP
// listener that serves at most one client session at a time and brokers its
// line-protocol commands to a trough.Provider.
//
// Lifecycle:
//   - Create a Config with NewConfig and any options.
//   - Create the server with New, injecting the trough provider.
//   - Call Listen to bind the port; a bind failure is fatal to the process
//     and is returned to the caller to report and exit non-zero.
//   - Call Serve with a context. Canceling the context starts draining: no
//     new connections are accepted, the active session (if any) runs until
//     its client disconnects, then Serve returns.
//
// Session rules:
//   - A newly accepted connection receives a two-line banner (product name,
//     then "Version: <version>") and becomes the active session.
//   - While a session is active, additional connections are closed
//     immediately without receiving any data.
//   - Each session starts with the lf line ending; "ctrl : line_ending"
//     changes it for that session only, beginning with its own response.
//   - Every recoverable fault produces exactly one "ERROR:" line and the
//     session stays open; only a transport fault ends the session.
package server
