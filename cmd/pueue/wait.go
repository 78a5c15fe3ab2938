package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pueued/pueue-go/internal/handlers"
	"github.com/pueued/pueue-go/internal/task"
)

var waitCmd = &cobra.Command{
	Use:   "wait [task_id...]",
	Short: "Block until the selected tasks all reach a Done state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseTaskIDs(args)
		if err != nil {
			return err
		}
		selector := buildSelector(cmd, ids)
		interval, _ := cmd.Flags().GetDuration("interval")
		quiet, _ := cmd.Flags().GetBool("quiet")

		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		for {
			reply, err := c.Status(handlers.StatusRequest{})
			if err != nil {
				return err
			}

			pending := selectMatching(reply.Tasks, selector)
			if len(pending) == 0 {
				return nil
			}
			if !quiet {
				fmt.Printf("waiting on %d task(s)...\n", len(pending))
			}
			time.Sleep(interval)
		}
	},
}

// selectMatching returns every task matched by sel that has not yet
// reached a Done status.
func selectMatching(tasks []*task.Task, sel handlers.Selector) []*task.Task {
	ids := make(map[int64]bool, len(sel.TaskIDs))
	for _, id := range sel.TaskIDs {
		ids[id] = true
	}

	var pending []*task.Task
	for _, t := range tasks {
		if t.Status.IsFinal() {
			continue
		}
		switch {
		case sel.All:
			pending = append(pending, t)
		case sel.Group != "" && t.Group == sel.Group:
			pending = append(pending, t)
		case ids[t.ID]:
			pending = append(pending, t)
		}
	}
	return pending
}

func init() {
	addSelectorFlags(waitCmd)
	waitCmd.Flags().Duration("interval", 500*time.Millisecond, "polling interval")
	waitCmd.Flags().Bool("quiet", false, "don't print progress while waiting")
	rootCmd.AddCommand(waitCmd)
}
