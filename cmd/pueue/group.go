package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pueued/pueue-go/internal/handlers"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage parallel execution groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		reply, err := c.Group(handlers.GroupRequest{})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSTATUS\tSLOTS")
		for _, g := range reply.Groups {
			slots := fmt.Sprintf("%d", g.ParallelSlots)
			if g.HasUnlimitedSlots() {
				slots = "unlimited"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", g.Name, g.Status.String(), slots)
		}
		w.Flush()
		return nil
	},
}

var groupAddCmd = &cobra.Command{
	Use:   "add name",
	Short: "Create a new group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		slots, _ := cmd.Flags().GetInt("parallel")
		_, err = c.Group(handlers.GroupRequest{Add: args[0], Slots: &slots})
		return err
	},
}

var groupRemoveCmd = &cobra.Command{
	Use:   "remove name",
	Short: "Delete a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		_, err = c.Group(handlers.GroupRequest{Remove: args[0]})
		return err
	},
}

var groupPauseCmd = &cobra.Command{
	Use:   "pause name",
	Short: "Stop a group from admitting new tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		_, err = c.Group(handlers.GroupRequest{Pause: args[0]})
		return err
	},
}

var groupStartCmd = &cobra.Command{
	Use:   "start name",
	Short: "Resume admission for a paused group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		_, err = c.Group(handlers.GroupRequest{Start: args[0]})
		return err
	},
}

var groupSetParallelCmd = &cobra.Command{
	Use:   "set-parallel name n",
	Short: "Change an existing group's parallel slot count",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}

		c, err := dial()
		if err != nil {
			return err
		}
		defer c.Close()

		_, err = c.Group(handlers.GroupRequest{Modify: args[0], Slots: &n})
		return err
	},
}

func init() {
	groupAddCmd.Flags().Int("parallel", 0, "parallel slots, 0 means unlimited")
	groupCmd.AddCommand(groupAddCmd)
	groupCmd.AddCommand(groupRemoveCmd)
	groupCmd.AddCommand(groupPauseCmd)
	groupCmd.AddCommand(groupStartCmd)
	groupCmd.AddCommand(groupSetParallelCmd)
	rootCmd.AddCommand(groupCmd)
}
