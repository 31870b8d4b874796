package server

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kibron/mtxserver/logger"
)

// State represents the lifecycle stage of the server process.
type State uint32

const (
	// ListeningState indicates the server is waiting for a client connection.
	ListeningState State = iota
	// SessionActiveState indicates a client session is being served; further
	// connections are refused.
	SessionActiveState
	// DrainingState indicates an interrupt was received: no new connections
	// are accepted, but an active session runs to natural completion.
	DrainingState
	// StoppedState is terminal: the listener is closed and no session remains.
	StoppedState
)

// IsListening returns if the current state is listening.
func (s State) IsListening() bool { return s == ListeningState }

// IsSessionActive returns if a session is currently being served.
func (s State) IsSessionActive() bool { return s == SessionActiveState }

// IsDraining returns if the server is draining.
func (s State) IsDraining() bool { return s == DrainingState }

// IsStopped returns if the server has stopped.
func (s State) IsStopped() bool { return s == StoppedState }

// String returns string representation of the current state.
func (s State) String() string {
	switch s {
	case ListeningState:
		return "listening"
	case SessionActiveState:
		return "session-active"
	case DrainingState:
		return "draining"
	case StoppedState:
		return "stopped"
	default:
		return "unknown"
	}
}

// StateChangeHandler is invoked when the server state changes.
//
// Note: the handler is invoked in a blocking mode. Take care with long-running
// implementations.
type StateChangeHandler func(prevState State, newState State)

// StateMgr manages the server lifecycle state.
//
// It provides methods for managing state transitions and notifying listeners
// of state changes. The state transitions are safe to perform concurrently.
type StateMgr struct {
	mu       sync.Mutex
	cond     *sync.Cond
	state    atomic.Uint32
	logger   logger.Logger
	handlers []StateChangeHandler
}

// NewStateMgr creates a StateMgr initialized to ListeningState.
func NewStateMgr(l logger.Logger, handlers ...StateChangeHandler) *StateMgr {
	mgr := &StateMgr{
		logger:   l,
		handlers: append([]StateChangeHandler(nil), handlers...),
	}
	mgr.state.Store(uint32(ListeningState))
	mgr.cond = sync.NewCond(&mgr.mu)

	return mgr
}

// State returns the current server state.
func (mgr *StateMgr) State() State {
	return State(mgr.state.Load())
}

// AddHandler adds one or more StateChangeHandler functions to be invoked on
// state changes.
func (mgr *StateMgr) AddHandler(handlers ...StateChangeHandler) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.handlers = append(mgr.handlers, handlers...)
}

// WaitState waits for the server state to reach the specified state or until
// the context is done.
func (mgr *StateMgr) WaitState(ctx context.Context, state State) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if mgr.State() == state {
		return nil
	}

	stopFunc := context.AfterFunc(ctx, func() {
		mgr.cond.Broadcast()
	})
	defer stopFunc()

	for mgr.State() != state {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			mgr.cond.Wait()
		}
	}

	return nil
}

// ToSessionActive transitions to SessionActiveState.
//
// Only allowed from ListeningState: a draining or stopped server never
// promotes a connection to a session.
func (mgr *StateMgr) ToSessionActive() error {
	return mgr.transition(SessionActiveState, func(cur State) bool {
		return cur.IsListening()
	})
}

// ToListening transitions back to ListeningState after a session ends.
//
// Only allowed from SessionActiveState.
func (mgr *StateMgr) ToListening() error {
	return mgr.transition(ListeningState, func(cur State) bool {
		return cur.IsSessionActive()
	})
}

// ToDraining transitions to DrainingState.
//
// Allowed from ListeningState and SessionActiveState. If the state is already
// DrainingState, the function is a no-op.
func (mgr *StateMgr) ToDraining() error {
	return mgr.transition(DrainingState, func(cur State) bool {
		return cur.IsListening() || cur.IsSessionActive()
	})
}

// ToStopped transitions to the terminal StoppedState. This transition is
// allowed from any state.
func (mgr *StateMgr) ToStopped() {
	_ = mgr.transition(StoppedState, func(State) bool { return true })
}

// IsDraining returns if the current state is draining.
func (mgr *StateMgr) IsDraining() bool { return mgr.State().IsDraining() }

// IsSessionActive returns if the current state is session-active.
func (mgr *StateMgr) IsSessionActive() bool { return mgr.State().IsSessionActive() }

func (mgr *StateMgr) transition(newState State, allowed func(cur State) bool) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	curState := mgr.State()
	if curState == newState {
		return nil // no-op
	}

	if !allowed(curState) {
		mgr.logger.Debug("state transition rejected", "cur_state", curState, "new_state", newState)
		return ErrInvalidTransition
	}

	mgr.state.Store(uint32(newState))
	mgr.cond.Broadcast()

	mgr.logger.Debug("state changed", "prev_state", curState, "new_state", newState)
	for _, handler := range mgr.handlers {
		if handler != nil {
			handler(curState, newState)
		}
	}

	return nil
}
