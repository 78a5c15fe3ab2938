package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pueued/pueue-go/internal/handlers"
)

var switchCmd = &cobra.Command{
	Use:   "switch task_id_a task_id_b",
	Short: "Swap the command, path and envs of two tasks that are not running",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		b, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return err
		}

		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		_, err = c.Switch(handlers.SwitchRequest{TaskIDA: a, TaskIDB: b})
		return err
	},
}

func init() {
	rootCmd.AddCommand(switchCmd)
}
