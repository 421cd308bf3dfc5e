package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/lastmix/internal/errmsg"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search TERM...",
	Short: "Search Last.fm artists by name",
	Long: `Search Last.fm artists by name.

Exact matches come first, then names starting with the term, then fuzzy
matches.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		artists, err := a.engine.Searcher.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return errmsg.Wrap(errmsg.OpArtistSearch, err)
		}
		if len(artists) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no artists found")
			return nil
		}
		if searchLimit > 0 && len(artists) > searchLimit {
			artists = artists[:searchLimit]
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for i, artist := range artists {
			fmt.Fprintf(w, "%d\t%s\t(%s on Last.fm)\n", i+1, artist.Name, humanize.Ordinal(artist.Rank))
		}
		return w.Flush()
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
