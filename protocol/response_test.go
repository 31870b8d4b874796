package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseEncode(t *testing.T) {
	require := require.New(t)

	t.Run("ok with tokens", func(t *testing.T) {
		resp := Ok("0", "-4596.47753906", "12000")
		require.False(resp.IsError())
		require.Equal("OK: 0 -4596.47753906 12000\n", string(resp.Encode(LF)))
	})

	t.Run("ok without tokens", func(t *testing.T) {
		require.Equal("OK:\r\n", string(Ok().Encode(CRLF)))
	})

	t.Run("error descriptor", func(t *testing.T) {
		resp := Fail(errors.New("CallError(-100, 'Unrecognised command name', 'KBNuTAXCtrl.KBNuTAX.NotACommand')"))
		require.True(resp.IsError())
		require.Equal(
			"ERROR: CallError(-100, 'Unrecognised command name', 'KBNuTAXCtrl.KBNuTAX.NotACommand')\n",
			string(resp.Encode(LF)),
		)
	})

	t.Run("terminator follows response", func(t *testing.T) {
		require.Equal("OK: 1\r", string(Ok("1").Encode(CR)))
		require.Equal("OK: 1\n\r", string(Ok("1").Encode(LFCR)))
	})
}
