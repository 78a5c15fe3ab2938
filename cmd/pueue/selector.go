package main

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pueued/pueue-go/internal/handlers"
)

// addSelectorFlags registers the --all flag shared by the subcommands
// that act on a Selector; --group is the root command's persistent flag.
func addSelectorFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("all", false, "act on every task")
}

// buildSelector turns positional task ids plus --all/--group into a
// handlers.Selector. The daemon resolves --all over --group over bare ids
// when more than one is set.
func buildSelector(cmd *cobra.Command, ids []int64) handlers.Selector {
	all, _ := cmd.Flags().GetBool("all")
	return handlers.Selector{
		All:     all,
		Group:   viper.GetString("group"),
		TaskIDs: ids,
	}
}

func parseTaskIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
