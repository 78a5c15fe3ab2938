package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pueued/pueue-go/internal/handlers"
)

var followCmd = &cobra.Command{
	Use:   "follow task_id",
	Short: "Stream a task's output until the connection is closed (the stream does not end when the task exits)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}

		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		chunks, stop, err := c.StreamLog(handlers.StreamLogRequest{TaskID: id})
		if err != nil {
			return err
		}
		defer stop()

		for chunk := range chunks {
			os.Stdout.Write(chunk)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(followCmd)
}
