package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pueued/pueue-go/internal/handlers"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove finished tasks from the queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		successOnly, _ := cmd.Flags().GetBool("success-only")
		_, err = c.Clean(handlers.CleanRequest{
			Group:       viper.GetString("group"),
			SuccessOnly: successOnly,
		})
		return err
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Kill every task and clear the queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		_, err = c.Reset(handlers.ResetRequest{})
		return err
	},
}

func init() {
	cleanCmd.Flags().Bool("success-only", false, "only remove tasks that finished successfully")
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(resetCmd)
}
