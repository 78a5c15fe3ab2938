// Command pueued is the pueue-go daemon: it loads configuration, boots the
// State Store, Process Supervisor, Scheduler Loop, and Request Handlers, and
// serves the control socket until terminated.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pueued/pueue-go/internal/config"
	"github.com/pueued/pueue-go/internal/daemon"
	"github.com/pueued/pueue-go/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, os.Getenv("ENV") != "production")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := daemon.Run(ctx, cfg); err != nil {
		logger.Get().Fatal().Err(err).Msg("daemon exited with error")
	}
}
