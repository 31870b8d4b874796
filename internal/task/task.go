// Package task manages the lifecycle of the goroutines a server runs: the
// accept loop and the per-session loop. It provides a structured way to start,
// stop and wait for goroutines with context cancellation and panic recovery.
package task

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kibron/mtxserver/logger"
)

// Func represents a function executed repeatedly by a managed goroutine.
// It should return true to continue running, or false to stop the goroutine.
type Func func() bool

// Manager manages a group of goroutines under one context.
//
// When the context is canceled, looping tasks stop between iterations; Wait
// blocks until every goroutine has terminated.
type Manager struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger logger.Logger
	count  atomic.Int32
}

// NewManager creates a Manager with the given parent context and logger.
func NewManager(ctx context.Context, l logger.Logger) *Manager {
	mgr := &Manager{logger: l}
	mgr.ctx, mgr.cancel = context.WithCancel(ctx)

	return mgr
}

// Context returns the manager's context. It is canceled by Stop.
func (mgr *Manager) Context() context.Context { return mgr.ctx }

// Start runs taskFunc in a loop on a new goroutine. The loop ends when
// taskFunc returns false or the manager is stopped.
func (mgr *Manager) Start(name string, taskFunc Func) error {
	select {
	case <-mgr.ctx.Done():
		return fmt.Errorf("task manager already stopped")
	default:
	}

	mgr.logger.Debug("start task", "name", name)
	mgr.spawn(name, func() {
		for {
			select {
			case <-mgr.ctx.Done():
				return
			default:
				if !taskFunc() {
					return
				}
			}
		}
	})

	return nil
}

// Go runs fn once on a new goroutine tracked by the manager.
//
// Unlike Start, fn is not interrupted by Stop; it is expected to observe its
// own termination condition. The session loop uses this so that draining does
// not cut off an in-flight client.
func (mgr *Manager) Go(name string, fn func()) error {
	select {
	case <-mgr.ctx.Done():
		return fmt.Errorf("task manager already stopped")
	default:
	}

	mgr.logger.Debug("start one-shot task", "name", name)
	mgr.spawn(name, fn)

	return nil
}

// Stop signals all looping goroutines to stop.
func (mgr *Manager) Stop() {
	mgr.cancel()
}

// Wait blocks until all goroutines have terminated.
func (mgr *Manager) Wait() {
	mgr.wg.Wait()
}

// TaskCount returns the number of currently running goroutines.
func (mgr *Manager) TaskCount() int {
	return int(mgr.count.Load())
}

func (mgr *Manager) spawn(name string, body func()) {
	mgr.wg.Add(1)
	mgr.count.Add(1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				mgr.logger.Error("panic in task", "name", name, "panic", r)
			}
			mgr.count.Add(-1)
			mgr.logger.Debug(fmt.Sprintf("%s task terminated", name), "task_count", mgr.TaskCount())
			mgr.wg.Done()
		}()

		body()
	}()
}
