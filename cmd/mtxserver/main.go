// mtxserver is the MicroTrough remote access server: it brokers access
// between a MicroTrough film balance and network clients over a line-oriented
// text protocol on a TCP socket.
//
// Without hardware attached it serves a built-in instrument simulator, which
// is enough to exercise client libraries and measurement scripts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/kibron/mtxserver/logger"
	"github.com/kibron/mtxserver/server"
	"github.com/kibron/mtxserver/trough"
)

// version is overridable at link time:
//
//	go build -ldflags "-X main.version=0.2"
var version = "0.1" //nolint:gochecknoglobals

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "mtxserver: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("mtxserver", flag.ContinueOnError)

	port := fs.IntP("port", "p", server.DefaultPort, "TCP port to listen on")
	verbose := fs.CountP("verbose", "v", "Increase log verbosity (repeatable)")
	showVersion := fs.Bool("version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Printf("mtxserver %s\n", version)
		return nil
	}

	log := logger.GetLogger()
	log.SetLevel(verbosityLevel(*verbose))

	cfg, err := server.NewConfig(*port,
		server.WithVersion(version),
		server.WithLogger(log),
	)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, trough.NewSimulator(log))
	if err != nil {
		return err
	}

	if err := srv.Listen(); err != nil {
		return err
	}

	fmt.Printf("Server listening on port %d\n", srv.Port())

	// An interrupt stops accepting connections; the server exits when all
	// clients have disconnected.
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return srv.Serve(ctx)
}

func verbosityLevel(verbose int) logger.Level {
	if verbose > 0 {
		return logger.DebugLevel
	}

	return logger.InfoLevel
}
