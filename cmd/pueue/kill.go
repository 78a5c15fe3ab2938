package main

import (
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pueued/pueue-go/internal/handlers"
)

var killCmd = &cobra.Command{
	Use:   "kill [task_id...]",
	Short: "Send a signal to running tasks, SIGTERM by default",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseTaskIDs(args)
		if err != nil {
			return err
		}

		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		req := handlers.KillRequest{Selector: buildSelector(cmd, ids)}
		if sig, _ := cmd.Flags().GetInt("signal"); sig != 0 {
			s := syscall.Signal(sig)
			req.Signal = &s
		}

		reply, err := c.Kill(req)
		if err != nil {
			return err
		}
		printFailures(reply)
		return nil
	},
}

func init() {
	addSelectorFlags(killCmd)
	killCmd.Flags().Int("signal", 0, "signal number to send instead of SIGTERM")
	rootCmd.AddCommand(killCmd)
}
