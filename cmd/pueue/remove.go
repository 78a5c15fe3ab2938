package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pueued/pueue-go/internal/handlers"
)

var removeCmd = &cobra.Command{
	Use:     "remove task_id...",
	Aliases: []string{"rm"},
	Short:   "Remove tasks from the queue",
	Args:    cobra.MinimumNArgs(1),
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

		reply, err := c.Remove(handlers.RemoveRequest{TaskIDs: ids})
		if err != nil {
			return err
		}
		printFailures(reply)
		return nil
	},
}

func printFailures(reply handlers.Reply) {
	for id, reason := range reply.Failures {
		fmt.Printf("task %d: %s\n", id, reason)
	}
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
