package server

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/kibron/mtxserver/logger"
	"github.com/kibron/mtxserver/protocol"
	"github.com/kibron/mtxserver/trough"
)

// Session serves one accepted client connection: it sends the banner, then
// reads one command line at a time, executes it, and writes exactly one
// response line, until the client disconnects.
//
// The line-ending mode is session state. Every session starts at the default
// (lf); a "ctrl : line_ending" change never leaks into the next session.
type Session struct {
	id       uint64
	conn     net.Conn
	cfg      *Config
	provider trough.Provider
	logger   logger.Logger

	reader     *protocol.LineReader
	lineEnding protocol.LineEnding

	// verbosityChanged records that this session adjusted the server log
	// level, so run can restore savedLevel when the session ends.
	verbosityChanged bool
	savedLevel       logger.Level
}

func newSession(id uint64, conn net.Conn, cfg *Config, provider trough.Provider) *Session {
	return &Session{
		id:         id,
		conn:       conn,
		cfg:        cfg,
		provider:   provider,
		logger:     cfg.logger.With("session_id", id, "remote_addr", conn.RemoteAddr().String()),
		reader:     protocol.NewLineReader(conn),
		lineEnding: protocol.DefaultLineEnding,
	}
}

// run drives the session until the client disconnects or a transport fault
// occurs. It always closes the connection before returning.
//
// ctx bounds provider invocations only; it is not the drain signal. Draining
// never interrupts an in-flight session.
func (s *Session) run(ctx context.Context) {
	defer func() { _ = s.conn.Close() }()
	defer s.restoreVerbosity()

	if err := s.sendBanner(); err != nil {
		s.logger.Warn("failed to send banner", "error", err)
		return
	}

	s.logger.Info("session started")

	for {
		line, err := s.reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("client disconnected")
			} else {
				s.logger.Warn("transport error, closing session", "error", err)
			}
			return
		}

		// blank keep-alive, no response
		if strings.TrimSpace(line) == "" {
			continue
		}

		resp := s.execute(ctx, line)
		if err := s.writeResponse(resp); err != nil {
			s.logger.Warn("failed to write response, closing session", "error", err)
			return
		}
	}
}

// execute parses and runs one request line. Every failure is mapped to an
// error response; nothing a client sends can take the session down.
func (s *Session) execute(ctx context.Context, line string) protocol.Response {
	cmd, err := protocol.ParseCommand(line)
	if err != nil {
		var perr *protocol.ParseError
		if errors.As(err, &perr) {
			s.logger.Debug("malformed request line", "line", line, "reason", perr.Reason)
			return protocol.Fail(trough.NewCallError(trough.CodeParseError, perr.Reason, perr.Line))
		}
		return protocol.Fail(err)
	}

	s.logger.Debug("command received", "verb", cmd.Verb.String(), "name", cmd.Name, "args", cmd.Args)

	switch cmd.Verb {
	case protocol.VerbCtrl:
		return s.handleCtrl(cmd)

	case protocol.VerbCall:
		tokens, err := s.provider.Call(ctx, cmd.Name, cmd.Args)
		if err != nil {
			return protocol.Fail(asDescriptor(err, cmd.Name))
		}
		return protocol.Ok(tokens...)

	case protocol.VerbGet:
		value, err := s.provider.GetProperty(ctx, cmd.Name)
		if err != nil {
			return protocol.Fail(asDescriptor(err, cmd.Name))
		}
		return protocol.Ok(value)

	case protocol.VerbSet:
		if len(cmd.Args) != 1 {
			return protocol.Fail(trough.NewCallError(
				trough.CodeInvalidArgument, "Property set expects exactly one value", trough.OriginPrefix+cmd.Name))
		}
		if err := s.provider.SetProperty(ctx, cmd.Name, cmd.Args[0]); err != nil {
			return protocol.Fail(asDescriptor(err, cmd.Name))
		}
		return protocol.Ok()

	default:
		return protocol.Fail(trough.NewCallError(trough.CodeParseError, "unrecognised verb", line))
	}
}

// sendBanner writes the two greeting lines: product name, then version.
func (s *Session) sendBanner() error {
	if err := s.writeLine(s.cfg.productName); err != nil {
		return err
	}

	return s.writeLine("Version: " + s.cfg.version)
}

func (s *Session) writeResponse(resp protocol.Response) error {
	_, err := s.conn.Write(resp.Encode(s.lineEnding))
	return err
}

// writeLine writes one raw text line with the session's terminator in a
// single Write call.
func (s *Session) writeLine(text string) error {
	buf := make([]byte, 0, len(text)+2)
	buf = append(buf, text...)
	buf = append(buf, s.lineEnding.Bytes()...)

	_, err := s.conn.Write(buf)

	return err
}

// asDescriptor passes a driver CallError through untouched and wraps any
// other provider failure as a communication fault, so the client always sees
// the documented descriptor shape.
func asDescriptor(err error, name string) error {
	var cerr *trough.CallError
	if errors.As(err, &cerr) {
		return cerr
	}

	return trough.NewCallError(trough.ECommunicationFailure, err.Error(), trough.OriginPrefix+name)
}
