package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/lastmix/internal/errmsg"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent Last.fm cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete expired Last.fm cache entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openStore()
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.cache.CleanExpired(cmd.Context())
		if err != nil {
			return errmsg.Wrap(errmsg.OpCacheClean, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s expired %s\n",
			humanize.Comma(n), plural(n, "entry", "entries"))
		return nil
	},
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	cacheCmd.AddCommand(cacheCleanCmd)
	rootCmd.AddCommand(cacheCmd)
}
