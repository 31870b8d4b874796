package server

import (
	"strconv"

	"github.com/kibron/mtxserver/logger"
	"github.com/kibron/mtxserver/protocol"
	"github.com/kibron/mtxserver/trough"
)

// Control command names. Origins in ctrl error descriptors are qualified with
// "ctrl." since controls live in the server, not the trough interface.
const (
	ctrlLineEnding = "line_ending"
	ctrlVerbosity  = "verbosity"
)

// handleCtrl executes a ctrl command, which affects session or server
// behavior rather than invoking hardware.
func (s *Session) handleCtrl(cmd protocol.Command) protocol.Response {
	switch cmd.Name {
	case ctrlLineEnding:
		return s.ctrlLineEnding(cmd.Args)

	case ctrlVerbosity:
		return s.ctrlVerbosity(cmd.Args)

	default:
		return protocol.Fail(trough.NewCallError(
			trough.CodeUnknownControl, "Unrecognised control name", "ctrl."+cmd.Name))
	}
}

// ctrlLineEnding switches the session's response terminator. The new mode
// applies starting with the response to this very command. On failure the
// terminator is left unchanged.
func (s *Session) ctrlLineEnding(args []string) protocol.Response {
	if len(args) != 1 {
		return protocol.Fail(trough.NewCallError(
			trough.CodeInvalidArgument, "Expected one line ending mode", "ctrl."+ctrlLineEnding))
	}

	le, err := protocol.ParseLineEnding(args[0])
	if err != nil {
		return protocol.Fail(trough.NewCallError(
			trough.CodeInvalidArgument, "Unknown line ending mode", "ctrl."+ctrlLineEnding))
	}

	s.lineEnding = le
	s.logger.Debug("line ending changed", "mode", le.String())

	return protocol.Ok()
}

// ctrlVerbosity adjusts the server log level: 0 errors only, 1 warnings,
// 2 informational, 3 debug. The change holds for the rest of the session;
// the prior level comes back when the session ends.
func (s *Session) ctrlVerbosity(args []string) protocol.Response {
	if len(args) != 1 {
		return protocol.Fail(trough.NewCallError(
			trough.CodeInvalidArgument, "Expected one verbosity level", "ctrl."+ctrlVerbosity))
	}

	level, err := strconv.Atoi(args[0])
	if err != nil || level < 0 || level > 3 {
		return protocol.Fail(trough.NewCallError(
			trough.CodeInvalidArgument, "Verbosity level out of range [0, 3]", "ctrl."+ctrlVerbosity))
	}

	if !s.verbosityChanged {
		s.savedLevel = s.cfg.logger.Level()
		s.verbosityChanged = true
	}

	s.cfg.logger.SetLevel(verbosityToLevel(level))
	s.logger.Debug("verbosity changed", "level", level)

	return protocol.Ok()
}

// restoreVerbosity undoes a "ctrl : verbosity" change when the session ends,
// so one client's choice never leaks into later sessions.
func (s *Session) restoreVerbosity() {
	if s.verbosityChanged {
		s.cfg.logger.SetLevel(s.savedLevel)
		s.verbosityChanged = false
	}
}

func verbosityToLevel(verbosity int) logger.Level {
	switch verbosity {
	case 0:
		return logger.ErrorLevel
	case 1:
		return logger.WarnLevel
	case 2:
		return logger.InfoLevel
	default:
		return logger.DebugLevel
	}
}
