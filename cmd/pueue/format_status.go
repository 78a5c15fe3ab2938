package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pueued/pueue-go/internal/query"
	"github.com/pueued/pueue-go/internal/task"
)

var formatStatusCmd = &cobra.Command{
	Use:   "format-status [query fragments...]",
	Short: "Render a table from pre-serialized task JSON (stdin or --file) without talking to a daemon",
	Long: `format-status applies the same query grammar as "status" to a
task list that is already on disk: a JSON array of task objects.
Useful offline or when comparing a past snapshot against the live queue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")

		var r io.Reader = os.Stdin
		if path != "" {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}

		var tasks []*task.Task
		if err := json.NewDecoder(r).Decode(&tasks); err != nil {
			return fmt.Errorf("format-status: decode task list: %w", err)
		}

		if len(args) > 0 {
			plan, err := query.Parse(args)
			if err != nil {
				return err
			}
			tasks = query.Apply(tasks, plan)
		}

		printTaskTable(tasks)
		return nil
	},
}

func init() {
	formatStatusCmd.Flags().String("file", "", "path to a JSON task array; defaults to stdin")
	rootCmd.AddCommand(formatStatusCmd)
}
