package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pueued/pueue-go/internal/handlers"
)

var stashCmd = &cobra.Command{
	Use:   "stash task_id...",
	Short: "Stash tasks, optionally to be auto-enqueued after a delay",
	Args:  cobra.MinimumNArgs(1),
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

		req := handlers.StashRequest{TaskIDs: ids}
		if delay, _ := cmd.Flags().GetDuration("delay"); delay > 0 {
			at := time.Now().Add(delay).Unix()
			req.EnqueueAt = &at
		}

		reply, err := c.Stash(req)
		if err != nil {
			return err
		}
		printFailures(reply)
		return nil
	},
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue task_id...",
	Short: "Enqueue stashed tasks immediately",
	Args:  cobra.MinimumNArgs(1),
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

		reply, err := c.Enqueue(handlers.EnqueueRequest{TaskIDs: ids})
		if err != nil {
			return err
		}
		printFailures(reply)
		return nil
	},
}

func init() {
	stashCmd.Flags().Duration("delay", 0, "auto-enqueue after this delay")
	rootCmd.AddCommand(stashCmd)
	rootCmd.AddCommand(enqueueCmd)
}
