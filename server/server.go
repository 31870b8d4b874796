package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kibron/mtxserver/internal/task"
	"github.com/kibron/mtxserver/logger"
	"github.com/kibron/mtxserver/trough"
)

// Server owns the listening socket and serves at most one client session at a
// time against the injected trough provider.
type Server struct {
	cfg      *Config
	provider trough.Provider
	logger   logger.Logger

	stateMgr *StateMgr
	taskMgr  *task.Manager

	// sessionCtx bounds provider invocations for the lifetime of the server;
	// it is independent of the Serve context so draining never cancels an
	// in-flight session.
	sessionCtx    context.Context
	sessionCancel context.CancelFunc

	listenerMutex sync.Mutex
	listener      net.Listener

	connMutex sync.Mutex
	conn      net.Conn

	// connCount is the single-session slot: acquired on accept, released on
	// disconnect. Arbitration happens here, not around business logic.
	connCount  atomic.Int32
	sessionSeq atomic.Uint64
	shutdown   atomic.Bool
}

// New creates a Server from the given configuration and trough provider.
func New(cfg *Config, provider trough.Provider) (*Server, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}
	if provider == nil {
		return nil, ErrProviderNil
	}

	srv := &Server{
		cfg:      cfg,
		provider: provider,
		logger:   cfg.logger,
		stateMgr: NewStateMgr(cfg.logger),
	}
	srv.sessionCtx, srv.sessionCancel = context.WithCancel(context.Background())
	srv.taskMgr = task.NewManager(context.Background(), cfg.logger)

	return srv, nil
}

// Listen binds the configured TCP port. A bind failure is fatal to the
// process; the caller should report the error and exit non-zero.
func (s *Server) Listen() error {
	address := net.JoinHostPort(s.cfg.host, strconv.Itoa(s.cfg.port))

	s.logger.Debug("try to listen", "address", address)
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", address)
	if err != nil {
		s.logger.Error("failed to listen", "address", address, "error", err)
		return fmt.Errorf("bind port %d: %w", s.cfg.port, err)
	}

	s.listenerMutex.Lock()
	s.listener = listener
	s.listenerMutex.Unlock()

	s.logger.Info("listening", "address", listener.Addr().String())

	return nil
}

// Port returns the port the server is actually bound to. It differs from the
// configured port when port 0 requested an ephemeral one.
func (s *Server) Port() int {
	s.listenerMutex.Lock()
	defer s.listenerMutex.Unlock()

	if s.listener == nil {
		return s.cfg.port
	}
	if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}

	return s.cfg.port
}

// State returns the current server lifecycle state.
func (s *Server) State() State { return s.stateMgr.State() }

// StateMgr exposes the lifecycle state manager, mainly so callers and tests
// can register handlers or wait for a state.
func (s *Server) StateMgr() *StateMgr { return s.stateMgr }

// Serve runs the accept loop until ctx is canceled, then drains: the listener
// closes, an active session runs until its client disconnects, and Serve
// returns. Listen must have been called first.
//
// Serve returns nil after a clean drain.
func (s *Server) Serve(ctx context.Context) error {
	s.listenerMutex.Lock()
	listening := s.listener != nil
	s.listenerMutex.Unlock()
	if !listening {
		return ErrNotListening
	}

	if err := s.taskMgr.Start("acceptLoop", s.tryAcceptConn); err != nil {
		return err
	}

	drained := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.drain()
		case <-drained:
		}
	}()

	s.taskMgr.Wait()
	close(drained)

	s.stateMgr.ToStopped()
	s.logger.Info("server stopped")

	return nil
}

// Close force-stops the server: the listener and any active connection are
// closed without waiting for the client to disconnect. Intended for tests and
// embedding; the command-line server shuts down by draining instead.
func (s *Server) Close() error {
	s.shutdown.Store(true)
	err := s.closeListener()

	s.connMutex.Lock()
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.connMutex.Unlock()

	s.sessionCancel()
	s.taskMgr.Stop()
	s.taskMgr.Wait()
	s.stateMgr.ToStopped()

	return err
}

// drain stops accepting new connections while leaving the active session, if
// any, undisturbed.
func (s *Server) drain() {
	s.logger.Info("draining: no longer accepting connections")
	s.shutdown.Store(true)
	_ = s.stateMgr.ToDraining()
	_ = s.closeListener()
}

// tryAcceptConn performs one accept iteration. It returns false to terminate
// the accept loop.
//
// At most one connection owns the session slot; any other connection is
// closed immediately without receiving a banner.
func (s *Server) tryAcceptConn() bool {
	tcpListener := s.deadlineListener()
	if tcpListener == nil {
		return false // listener already closed
	}

	conn, err := tcpListener.Accept()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return !s.shutdown.Load() // re-accept unless draining
		}

		if !s.shutdown.Load() {
			s.logger.Error("failed to accept connection", "error", err)
			return true // re-accept again
		}

		return false // listener closed for shutdown, terminate this task
	}

	if s.shutdown.Load() {
		// drain began between Accept and here; refuse silently
		_ = conn.Close()
		return false
	}

	if !s.connCount.CompareAndSwap(0, 1) {
		s.logger.Warn("session already active, refusing connection", "remote_addr", conn.RemoteAddr().String())
		_ = conn.Close()
		return true // re-accept again
	}

	if err := s.stateMgr.ToSessionActive(); err != nil {
		s.connCount.Store(0)
		_ = conn.Close()
		return true
	}

	s.connMutex.Lock()
	s.conn = conn
	s.connMutex.Unlock()

	id := s.sessionSeq.Add(1)
	s.logger.Debug("connection accepted", "session_id", id, "remote_addr", conn.RemoteAddr().String())

	sess := newSession(id, conn, s.cfg, s.provider)

	// one-shot task: draining must not interrupt the session
	err = s.taskMgr.Go(fmt.Sprintf("session-%d", id), func() {
		sess.run(s.sessionCtx)
		s.releaseSession()
	})
	if err != nil {
		s.releaseSession()
		return false
	}

	return true
}

// releaseSession frees the session slot after a session ends and returns the
// server to listening unless it is draining or stopped.
func (s *Server) releaseSession() {
	s.connMutex.Lock()
	s.conn = nil
	s.connMutex.Unlock()

	s.connCount.Store(0)

	if err := s.stateMgr.ToListening(); err != nil {
		// draining or stopped; the accept loop is already gone
		s.logger.Debug("session ended while not active-serving", "state", s.stateMgr.State())
	}
}

// deadlineListener returns the TCP listener armed with the accept timeout, or
// nil when the listener is closed.
func (s *Server) deadlineListener() *net.TCPListener {
	s.listenerMutex.Lock()
	defer s.listenerMutex.Unlock()

	if s.listener == nil {
		return nil
	}

	tcpListener, ok := s.listener.(*net.TCPListener)
	if !ok {
		s.logger.Error("listener is not a TCP listener")
		return nil
	}

	if err := tcpListener.SetDeadline(time.Now().Add(s.cfg.acceptTimeout)); err != nil {
		s.logger.Error("failed to set deadline for tcp listener", "error", err)
		return nil
	}

	return tcpListener
}

func (s *Server) closeListener() error {
	s.listenerMutex.Lock()
	defer s.listenerMutex.Unlock()

	if s.listener != nil {
		err := s.listener.Close()
		s.listener = nil
		return err
	}

	return nil
}
