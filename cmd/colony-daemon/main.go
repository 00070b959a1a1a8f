package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrescamacho/colony-go/internal/infrastructure/config"
	"github.com/andrescamacho/colony-go/internal/infrastructure/logging"
	"github.com/andrescamacho/colony-go/internal/infrastructure/pidfile"
)

func main() {
	configPath := flag.String("config", "", "Path to colony.yaml (default: search ., ./configs, /etc/colony)")
	flag.Parse()

	fmt.Println("Colony Daemon v0.1.0")
	fmt.Println("====================")

	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configPath)

	// One daemon per PID file; a stale file from a crashed run is replaced
	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		var running *pidfile.RunningError
		if errors.As(err, &running) {
			stdlog.Fatalf("%v\nStop it first (kill %d) or point daemon.pid_file elsewhere", err, running.PID)
		}
		stdlog.Fatalf("Failed to acquire PID file lock: %v", err)
	}
	defer func() {
		if err := pf.Release(); err != nil {
			stdlog.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	if err := run(cfg); err != nil {
		// os.Exit skips deferred calls
		stdlog.Printf("Fatal error: %v", err)
		_ = pf.Release()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)
	d, err := newDaemon(ctx, cfg, logger)
	if err != nil {
		return err
	}
	fmt.Println("Colony loaded")

	fmt.Printf("Listening on %s\n", cfg.Daemon.SocketPath)
	if cfg.Metrics.Enabled {
		fmt.Printf("Metrics, health and events on http://%s:%d\n", cfg.Metrics.Host, cfg.Metrics.Port)
	}
	fmt.Println("Daemon running. Press Ctrl+C to stop.")

	if err := d.run(ctx); err != nil {
		return err
	}
	fmt.Println("Daemon stopped")
	return nil
}
