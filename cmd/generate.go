package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/lastmix/internal/errmsg"
	"github.com/llehouerou/lastmix/internal/events"
	"github.com/llehouerou/lastmix/internal/radio"
	"github.com/llehouerou/lastmix/internal/station"
)

var (
	generateSize       int
	generateContinuous bool
	generatePeriod     string
	generateFixNames   bool
	generateTimeout    time.Duration
	generateStats      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate KIND ARGS...",
	Short: "Create a station and build its tracks",
	Long: `Create a station and build it up to its size.

Kinds:
  artists NAME...   top tracks of the given artists
  similar NAME      the artist and its similar artists
  tags TAG...       artists carrying every tag
  library USER      the user's top artists (see --period)

Track ids are printed as they are added.`,
	Example: `  lastmix generate similar Portishead --size 30
  lastmix generate tags "trip-hop" "female vocalists"
  lastmix generate library rj --period 3month --continuous`,
	Args: cobra.MinimumNArgs(2),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().IntVarP(&generateSize, "size", "n", 0, "number of tracks (default: radio.default_size)")
	generateCmd.Flags().BoolVar(&generateContinuous, "continuous", false, "keep topping up the station as it is played")
	generateCmd.Flags().StringVar(&generatePeriod, "period", "", "library chart period: overall, 7day, 1month, 3month, 6month, 12month")
	generateCmd.Flags().BoolVar(&generateFixNames, "fix-names", false, "replace artist names with their closest Last.fm match")
	generateCmd.Flags().DurationVar(&generateTimeout, "timeout", 0, "give up after this long (0: no limit)")
	generateCmd.Flags().BoolVar(&generateStats, "stats", false, "print cache statistics when done")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd.Context(), generateTimeout)
	defer cancel()

	kind, rest := args[0], args[1:]
	if generateFixNames && (kind == string(station.KindArtists) || kind == string(station.KindSimilarArtists)) {
		if rest, err = correctNames(ctx, a.engine.Searcher.Best, rest); err != nil {
			return errmsg.Wrap(errmsg.OpArtistSearch, err)
		}
	}
	def, err := parseDefinition(kind, rest, generatePeriod)
	if err != nil {
		return errmsg.Wrap(errmsg.OpStationCreate, err)
	}

	st, err := a.stations.Create(ctx, def, generateSize, generateContinuous)
	if err != nil {
		return errmsg.Wrap(errmsg.OpStationCreate, err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "station %s (%s, %d tracks)\n", st.ID, def, st.Size)

	if err := a.follow(ctx, out, st.ID, 1); err != nil {
		return errmsg.WrapWith(errmsg.OpStationBuild, st.ID, err)
	}
	if generateStats {
		printStats(out, "artist pools", a.engine.Pools.Stats())
		printStats(out, "top tracks", a.engine.Tracks.Stats())
	}
	return nil
}

// commandContext cancels on interrupt and, when timeout is positive, after
// timeout.
func commandContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// follow runs the drain and prints the events of stationID (every station
// when empty) until builds runs have finished or ctx is done.
func (a *app) follow(ctx context.Context, out io.Writer, stationID string, builds int) error {
	sub := a.broker.Subscribe(stationID)
	defer a.broker.Unsubscribe(sub)

	runCtx, stop := context.WithCancel(ctx)
	go a.drain.Run(runCtx) //nolint:errcheck // returns ctx.Err on stop
	defer func() {
		stop()
		a.drain.Wait()
	}()

	start := time.Now()
	for builds > 0 {
		select {
		case e := <-sub.TrackAdded:
			printTrack(out, e)
		case e := <-sub.GenerationFinished:
			builds--
			printFinished(out, e, time.Since(start))
		case <-sub.Done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	// Pick up track events still buffered behind the last finish.
	for {
		select {
		case e := <-sub.TrackAdded:
			printTrack(out, e)
		default:
			return nil
		}
	}
}

func printTrack(out io.Writer, e events.TrackAdded) {
	fmt.Fprintf(out, "%4d  %-12s  %s - %s\n", e.Position+1, e.TrackID, e.Artist, e.Title)
}

func printStats(out io.Writer, name string, s radio.CacheStats) {
	fmt.Fprintf(out, "%-12s  %s keys, %s loaded, %s dead, %s in flight\n",
		name,
		humanize.Comma(int64(s.Keys)),
		humanize.Comma(int64(s.Loaded)),
		humanize.Comma(int64(s.Dead)),
		humanize.Comma(int64(s.InFlight)),
	)
}

func printFinished(out io.Writer, e events.GenerationFinished, took time.Duration) {
	status := "done"
	if !e.Reached {
		status = "stalled"
	}
	fmt.Fprintf(out, "%s: added %s, %s/%s tracks in %s\n",
		status,
		humanize.Comma(int64(e.Added)),
		humanize.Comma(int64(e.Len)),
		humanize.Comma(int64(e.Target)),
		took.Round(time.Millisecond),
	)
}
