package main

import (
	"github.com/spf13/cobra"

	"github.com/pueued/pueue-go/internal/handlers"
)

var startCmd = &cobra.Command{
	Use:   "start [task_id...]",
	Short: "Resume paused tasks or a whole group",
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

		reply, err := c.Start(handlers.StartRequest{Selector: buildSelector(cmd, ids)})
		if err != nil {
			return err
		}
		printFailures(reply)
		return nil
	},
}

func init() {
	addSelectorFlags(startCmd)
	rootCmd.AddCommand(startCmd)
}
