package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pueued/pueue-go/internal/handlers"
	"github.com/pueued/pueue-go/internal/task"
)

var statusCmd = &cobra.Command{
	Use:   "status [query fragments...]",
	Short: "List tasks, optionally filtered/ordered/limited by query fragments",
	Long: `status lists every task the daemon knows about. Extra positional
arguments are query fragments applied server-side, e.g.:

  pueue status status=running
  pueue status "first 10" "order_by status"
  pueue status columns=id,status,command`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		reply, err := c.Status(handlers.StatusRequest{Query: args})
		if err != nil {
			return err
		}
		printTaskTable(reply.Tasks)
		return nil
	},
}

func printTaskTable(tasks []*task.Task) {
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tGROUP\tPRIORITY\tLABEL\tCOMMAND")
	for _, t := range tasks {
		label := t.Label
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", t.ID, t.Status.String(), t.Group, t.Priority, label, t.Command)
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
