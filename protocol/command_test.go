package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	require := require.New(t)

	tests := []struct {
		name string
		line string
		want Command
	}{
		{
			name: "documented ctrl spacing",
			line: "ctrl : line_ending crlf",
			want: Command{Verb: VerbCtrl, Name: "line_ending", Args: []string{"crlf"}},
		},
		{
			name: "documented call spacing",
			line: "call : GetData",
			want: Command{Verb: VerbCall, Name: "GetData", Args: []string{}},
		},
		{
			name: "no spaces around colon",
			line: "ctrl:line_ending lf",
			want: Command{Verb: VerbCtrl, Name: "line_ending", Args: []string{"lf"}},
		},
		{
			name: "call with numeric args",
			line: "call : NewMeasureMode 5",
			want: Command{Verb: VerbCall, Name: "NewMeasureMode", Args: []string{"5"}},
		},
		{
			name: "args split on runs of whitespace",
			line: "call :  SetBarrierSpeed   12.5\t 3",
			want: Command{Verb: VerbCall, Name: "SetBarrierSpeed", Args: []string{"12.5", "3"}},
		},
		{
			name: "get property",
			line: "get : CurrentSpeed",
			want: Command{Verb: VerbGet, Name: "CurrentSpeed", Args: []string{}},
		},
		{
			name: "set property",
			line: "set : ComPort 3",
			want: Command{Verb: VerbSet, Name: "ComPort", Args: []string{"3"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCommand(tt.line)
			require.NoError(err)
			require.Equal(tt.want.Verb, cmd.Verb)
			require.Equal(tt.want.Name, cmd.Name)
			require.Equal(tt.want.Args, cmd.Args)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	require := require.New(t)

	tests := []struct {
		name   string
		line   string
		reason string
	}{
		{name: "no colon", line: "call GetData", reason: "missing ':' separator"},
		{name: "unknown verb", line: "invoke : GetData", reason: "unrecognised verb"},
		{name: "uppercase verb rejected", line: "CALL : GetData", reason: "unrecognised verb"},
		{name: "missing name", line: "call : ", reason: "missing command name"},
		{name: "colon only", line: ":", reason: "unrecognised verb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommand(tt.line)
			require.Error(err)

			var perr *ParseError
			require.True(errors.As(err, &perr))
			require.Equal(tt.reason, perr.Reason)
			require.Equal(tt.line, perr.Line)
		})
	}
}
