package server

import (
	"context"
	"testing"
	"time"

	"github.com/kibron/mtxserver/logger"
	"github.com/stretchr/testify/require"
)

func TestStateTransitions(t *testing.T) {
	require := require.New(t)

	t.Run("initial state", func(t *testing.T) {
		mgr := NewStateMgr(logger.GetLogger())
		require.Equal(ListeningState, mgr.State())
		require.True(mgr.State().IsListening())
	})

	t.Run("session lifecycle", func(t *testing.T) {
		stateChangeCount := 0
		mgr := NewStateMgr(logger.GetLogger())
		mgr.AddHandler(func(prevState State, newState State) { stateChangeCount++ })

		require.NoError(mgr.ToSessionActive())
		require.Equal(SessionActiveState, mgr.State())
		require.True(mgr.IsSessionActive())
		require.Equal(1, stateChangeCount)

		// no-op transition
		require.NoError(mgr.ToSessionActive())
		require.Equal(1, stateChangeCount)

		require.NoError(mgr.ToListening())
		require.Equal(ListeningState, mgr.State())
		require.Equal(2, stateChangeCount)

		// a second session cannot become active from anywhere but listening
		require.NoError(mgr.ToSessionActive())
		require.NoError(mgr.ToDraining())
		require.ErrorIs(mgr.ToSessionActive(), ErrInvalidTransition)
	})

	t.Run("draining", func(t *testing.T) {
		mgr := NewStateMgr(logger.GetLogger())

		require.NoError(mgr.ToDraining())
		require.True(mgr.IsDraining())

		// session end while draining does not resume listening
		require.ErrorIs(mgr.ToListening(), ErrInvalidTransition)

		mgr.ToStopped()
		require.True(mgr.State().IsStopped())
		require.ErrorIs(mgr.ToDraining(), ErrInvalidTransition)
	})

	t.Run("stopped from any state", func(t *testing.T) {
		mgr := NewStateMgr(logger.GetLogger())
		require.NoError(mgr.ToSessionActive())
		mgr.ToStopped()
		require.Equal(StoppedState, mgr.State())
	})
}

func TestWaitState(t *testing.T) {
	require := require.New(t)

	mgr := NewStateMgr(logger.GetLogger())

	// already in the desired state
	require.NoError(mgr.WaitState(context.Background(), ListeningState))

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = mgr.ToSessionActive()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(mgr.WaitState(ctx, SessionActiveState))

	// waiting for a state that never comes times out
	ctx2, cancel2 := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel2()
	require.ErrorIs(mgr.WaitState(ctx2, DrainingState), context.DeadlineExceeded)
}

func TestStateString(t *testing.T) {
	require := require.New(t)

	require.Equal("listening", ListeningState.String())
	require.Equal("session-active", SessionActiveState.String())
	require.Equal("draining", DrainingState.String())
	require.Equal("stopped", StoppedState.String())
	require.Equal("unknown", State(99).String())
}
