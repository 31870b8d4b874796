package server

import (
	"testing"
	"time"

	"github.com/kibron/mtxserver/logger"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := NewConfig(DefaultPort)
	require.NoError(err)
	require.Equal(9898, cfg.Port())
	require.Equal("MicrotroughX Remote Access Server", cfg.productName)
	require.Equal("0.1", cfg.version)
	require.Equal(time.Second, cfg.acceptTimeout)
	require.NotNil(cfg.logger)
}

func TestNewConfigOptions(t *testing.T) {
	require := require.New(t)

	l := logger.NewSlog(logger.ErrorLevel, false)
	cfg, err := NewConfig(0,
		WithHost("127.0.0.1"),
		WithProductName("Test Server"),
		WithVersion("9.9"),
		WithAcceptTimeout(50*time.Millisecond),
		WithLogger(l),
	)
	require.NoError(err)
	require.Equal(0, cfg.Port())
	require.Equal("127.0.0.1", cfg.host)
	require.Equal("Test Server", cfg.productName)
	require.Equal("9.9", cfg.version)
	require.Equal(50*time.Millisecond, cfg.acceptTimeout)
	require.Equal(l, cfg.logger)
}

func TestNewConfigValidation(t *testing.T) {
	require := require.New(t)

	_, err := NewConfig(-1)
	require.Error(err)

	_, err = NewConfig(70000)
	require.Error(err)

	_, err = NewConfig(DefaultPort, WithProductName(""))
	require.Error(err)

	_, err = NewConfig(DefaultPort, WithVersion(""))
	require.Error(err)

	_, err = NewConfig(DefaultPort, WithAcceptTimeout(time.Millisecond))
	require.ErrorContains(err, "[10ms, 2s]")

	_, err = NewConfig(DefaultPort, WithAcceptTimeout(time.Minute))
	require.ErrorContains(err, "[10ms, 2s]")

	_, err = NewConfig(DefaultPort, WithLogger(nil))
	require.Error(err)
}
