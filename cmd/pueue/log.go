package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pueued/pueue-go/internal/handlers"
)

var logCmd = &cobra.Command{
	Use:   "log [task_id...]",
	Short: "Print the captured stdout/stderr of one or more tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseTaskIDs(args)
		if err != nil {
			return err
		}
		lines, _ := cmd.Flags().GetInt("lines")

		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		reply, err := c.Log(handlers.LogRequest{TaskIDs: ids, Lines: lines})
		if err != nil {
			return err
		}

		for _, entry := range reply.Logs {
			fmt.Printf("==> task %d <==\n%s\n", entry.TaskID, entry.Data)
		}
		return nil
	},
}

func init() {
	logCmd.Flags().Int("lines", 0, "only show the last N lines, 0 means the whole log")
	rootCmd.AddCommand(logCmd)
}
