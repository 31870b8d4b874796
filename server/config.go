package server

import (
	"errors"
	"time"

	"github.com/kibron/mtxserver/logger"
)

// DefaultPort is the TCP port the server listens on unless configured
// otherwise.
const DefaultPort = 9898

// Config represents the configuration parameters for a remote access server.
type Config struct {
	// host is the local address to bind. Empty means all interfaces.
	host string

	// port is the TCP port to listen on. Port 0 asks the OS for an ephemeral
	// port, which tests rely on.
	port int

	// productName is the first banner line sent to a new session.
	productName string

	// version is reported in the second banner line as "Version: <version>".
	version string

	// acceptTimeout is the deadline for each iteration of accepting a
	// connection, so the accept loop can observe shutdown.
	// Defaults to 1 second.
	acceptTimeout time.Duration

	// logger provides a logger instance for server events and errors.
	logger logger.Logger
}

// NewConfig creates a server configuration with the given port and optional
// functional options.
func NewConfig(port int, opts ...Option) (*Config, error) {
	cfg := &Config{
		port:          port,
		productName:   "MicrotroughX Remote Access Server",
		version:       "0.1",
		acceptTimeout: 1 * time.Second,
		logger:        logger.GetLogger(),
	}

	if port < 0 || port > 65535 {
		return nil, errors.New("port is out of range [0, 65535]")
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Port returns the configured TCP port.
func (cfg *Config) Port() int { return cfg.port }

// Option represents a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc struct {
	name      string
	applyFunc func(*Config) error
}

func (o *optFunc) apply(cfg *Config) error { return o.applyFunc(cfg) }

func newOptFunc(name string, f func(*Config) error) *optFunc {
	return &optFunc{name: name, applyFunc: f}
}

// WithHost sets the local address to bind. The default binds all interfaces.
func WithHost(host string) Option {
	return newOptFunc("WithHost", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.host = host

		return nil
	})
}

// WithProductName sets the product name sent as the first banner line.
func WithProductName(name string) Option {
	return newOptFunc("WithProductName", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}
		if name == "" {
			return errors.New("product name is empty")
		}

		cfg.productName = name

		return nil
	})
}

// WithVersion sets the version string reported in the banner.
func WithVersion(version string) Option {
	return newOptFunc("WithVersion", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}
		if version == "" {
			return errors.New("version is empty")
		}

		cfg.version = version

		return nil
	})
}

// WithAcceptTimeout sets the timeout for each iteration of accepting a
// connection. It should be between 10 milliseconds and 2 seconds.
//
// The default value is 1 second.
func WithAcceptTimeout(val time.Duration) Option {
	return newOptFunc("WithAcceptTimeout", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}
		if val < 10*time.Millisecond || val > 2*time.Second {
			return errors.New("accept timeout out of range [10ms, 2s]")
		}

		cfg.acceptTimeout = val

		return nil
	})
}

// WithLogger sets the logger for the server.
//
// The default logger is the global logger instance.
func WithLogger(l logger.Logger) Option {
	return newOptFunc("WithLogger", func(cfg *Config) error {
		if cfg == nil {
			return ErrConfigNil
		}
		if l == nil {
			return errors.New("logger is nil")
		}

		cfg.logger = l

		return nil
	})
}
