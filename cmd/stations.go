package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/lastmix/internal/errmsg"
)

var stationsTimeout time.Duration

var stationsCmd = &cobra.Command{
	Use:     "stations",
	Aliases: []string{"ls"},
	Short:   "List stored stations",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openStore()
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.repo.List(cmd.Context())
		if err != nil {
			return errmsg.Wrap(errmsg.OpStationList, err)
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no stations")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDEFINITION\tTRACKS\tMODE\tCREATED")
		for _, st := range list {
			mode := "fixed"
			if st.Continuous {
				mode = "continuous"
			}
			fmt.Fprintf(w, "%s\t%s\t%s/%s\t%s\t%s\n",
				st.ID,
				st.Definition,
				humanize.Comma(int64(st.Len())),
				humanize.Comma(int64(st.Size)),
				mode,
				humanize.Time(st.CreatedAt),
			)
		}
		return w.Flush()
	},
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print the track ids of a station",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openStore()
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.repo.Get(cmd.Context(), args[0])
		if err != nil {
			return errmsg.WrapWith(errmsg.OpStationLoad, args[0], err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s/%d tracks)\n", st.Definition, humanize.Comma(int64(st.Len())), st.Size)
		for i, id := range st.TrackIDs() {
			fmt.Fprintf(out, "%4d  %s\n", i+1, id)
		}
		return nil
	},
}

var advanceCmd = &cobra.Command{
	Use:   "advance ID POSITION",
	Short: "Report the playback position of a continuous station",
	Long: `Report the playback position of a station.

When a continuous station is close to its end, a top-up is queued and
followed until it finishes.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("position: %w", err)
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := commandContext(cmd.Context(), stationsTimeout)
		defer cancel()

		queued, err := a.stations.Advance(ctx, args[0], pos)
		if err != nil {
			return errmsg.WrapWith(errmsg.OpStationAdvance, args[0], err)
		}
		if !queued {
			fmt.Fprintln(cmd.OutOrStdout(), "no top-up needed")
			return nil
		}
		return errmsg.WrapWith(errmsg.OpStationBuild, args[0], a.follow(ctx, cmd.OutOrStdout(), args[0], 1))
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Finish building every station below its size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := commandContext(cmd.Context(), stationsTimeout)
		defer cancel()

		n, err := a.stations.Resume(ctx)
		if err != nil {
			return errmsg.Wrap(errmsg.OpStationResume, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "resuming %d station(s)\n", n)
		if n == 0 {
			return nil
		}
		return errmsg.Wrap(errmsg.OpStationBuild, a.follow(ctx, cmd.OutOrStdout(), "", n))
	},
}

func init() {
	advanceCmd.Flags().DurationVar(&stationsTimeout, "timeout", 0, "give up after this long (0: no limit)")
	resumeCmd.Flags().DurationVar(&stationsTimeout, "timeout", 0, "give up after this long (0: no limit)")
	stationsCmd.AddCommand(showCmd, advanceCmd, resumeCmd)
	rootCmd.AddCommand(stationsCmd)
}
