package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pueued/pueue-go/internal/config"
	"github.com/pueued/pueue-go/internal/daemon"
	"github.com/pueued/pueue-go/internal/logger"
)

// daemonCmd starts the daemon in the current process rather than dialing
// one. Convenient for local dev/testing; cmd/pueued is the binary meant for
// a real deployment.
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the pueue-go daemon in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger.Init(cfg.LogLevel, true)

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return daemon.Run(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
