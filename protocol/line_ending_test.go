package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLineEnding(t *testing.T) {
	require := require.New(t)

	tests := []struct {
		mode string
		want LineEnding
	}{
		{mode: "lf", want: LF},
		{mode: "cr", want: CR},
		{mode: "lfcr", want: LFCR},
		{mode: "crlf", want: CRLF},
		// accepted case-insensitively, stored normalized
		{mode: "CRLF", want: CRLF},
		{mode: "Lf", want: LF},
	}

	for _, tt := range tests {
		le, err := ParseLineEnding(tt.mode)
		require.NoError(err, "mode %q", tt.mode)
		require.Equal(tt.want, le)
	}

	_, err := ParseLineEnding("cr lf")
	require.Error(err)
	_, err = ParseLineEnding("")
	require.Error(err)
}

func TestLineEndingBytes(t *testing.T) {
	require := require.New(t)

	require.Equal([]byte("\n"), LF.Bytes())
	require.Equal([]byte("\r"), CR.Bytes())
	require.Equal([]byte("\n\r"), LFCR.Bytes())
	require.Equal([]byte("\r\n"), CRLF.Bytes())
}

func TestLineEndingString(t *testing.T) {
	require := require.New(t)

	require.Equal("lf", LF.String())
	require.Equal("cr", CR.String())
	require.Equal("lfcr", LFCR.String())
	require.Equal("crlf", CRLF.String())
	require.Equal(LF, DefaultLineEnding)
}
