package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pueued/pueue-go/internal/handlers"
)

var addCmd = &cobra.Command{
	Use:   "add [flags] -- command",
	Short: "Enqueue a new task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		dir, err := os.Getwd()
		if err != nil {
			return err
		}

		label, _ := cmd.Flags().GetString("label")
		priority, _ := cmd.Flags().GetInt("priority")
		immediate, _ := cmd.Flags().GetBool("immediate")
		deps, _ := cmd.Flags().GetInt64Slice("after")
		delay, _ := cmd.Flags().GetDuration("delay")

		req := handlers.AddRequest{
			Command:          strings.Join(args, " "),
			Path:             dir,
			Group:            viper.GetString("group"),
			Label:            label,
			Dependencies:     deps,
			Priority:         priority,
			StartImmediately: immediate,
		}
		if delay > 0 {
			at := time.Now().Add(delay).Unix()
			req.EnqueueAt = &at
		}

		reply, err := c.Add(req)
		if err != nil {
			return err
		}
		for _, t := range reply.Tasks {
			fmt.Printf("New task added (id %d).\n", t.ID)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().String("label", "", "a human-readable label for the task")
	addCmd.Flags().Int("priority", 0, "priority value stored with the task (admission order is by task id)")
	addCmd.Flags().Bool("immediate", false, "request an immediate start; the task is admitted on the next tick if its group has a free slot, like any queued task")
	addCmd.Flags().Int64Slice("after", nil, "task ids this task depends on")
	addCmd.Flags().Duration("delay", 0, "stash the task and enqueue it after this delay")
	rootCmd.AddCommand(addCmd)
}
