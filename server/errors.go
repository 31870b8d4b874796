package server

import "errors"

var (
	// ErrInvalidTransition is returned when an attempt is made to transition
	// the server state to an invalid state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNotListening indicates that Serve was called before Listen.
	ErrNotListening = errors.New("server is not listening")

	// ErrConfigNil indicates that a nil Config was provided.
	ErrConfigNil = errors.New("server config is nil")

	// ErrProviderNil indicates that a nil trough provider was provided.
	ErrProviderNil = errors.New("trough provider is nil")
)
