package trough

import "context"

// Provider is the capability surface the server consumes from the instrument
// driver. It is injected into the server at construction so a fake can stand
// in for the hardware in tests; there is still exactly one instance per
// process, matching the one-instrument constraint.
//
// Result tokens are pre-formatted by the provider and pass through the
// protocol verbatim; the server never renegotiates numeric precision.
//
// Failures are reported as *CallError where the driver supplied a descriptor;
// any other error is treated as a driver communication fault.
//
// The server issues at most one invocation at a time (one session, strictly
// sequential commands), but providers should not rely on that for memory
// safety: the simulator, for one, is safe for concurrent use.
type Provider interface {
	// Call invokes the named capability with positional arguments.
	Call(ctx context.Context, name string, args []string) ([]string, error)
	// GetProperty reads a named property, returning a single token.
	GetProperty(ctx context.Context, name string) (string, error)
	// SetProperty writes a named property.
	SetProperty(ctx context.Context, name string, value string) error
}
