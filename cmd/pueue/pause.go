package main

import (
	"github.com/spf13/cobra"

	"github.com/pueued/pueue-go/internal/handlers"
)

var pauseCmd = &cobra.Command{
	Use:   "pause [task_id...]",
	Short: "Pause running tasks or a whole group",
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

		reply, err := c.Pause(handlers.PauseRequest{Selector: buildSelector(cmd, ids)})
		if err != nil {
			return err
		}
		printFailures(reply)
		return nil
	},
}

func init() {
	addSelectorFlags(pauseCmd)
	rootCmd.AddCommand(pauseCmd)
}
