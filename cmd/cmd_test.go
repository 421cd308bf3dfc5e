package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/lastmix/internal/drain"
	"github.com/llehouerou/lastmix/internal/events"
	"github.com/llehouerou/lastmix/internal/radio"
	"github.com/llehouerou/lastmix/internal/station"
)

func TestParseDefinition(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		args    []string
		period  string
		wantKey string
		wantErr bool
	}{
		{
			name:    "artists",
			kind:    "artists",
			args:    []string{"Portishead", "Massive Attack"},
			wantKey: "artists:Portishead\x1fMassive Attack",
		},
		{
			name:    "similar",
			kind:    "similar",
			args:    []string{"Portishead"},
			wantKey: "similar:Portishead",
		},
		{
			name:    "similar with two artists",
			kind:    "similar",
			args:    []string{"Portishead", "Tricky"},
			wantErr: true,
		},
		{
			name:    "tags",
			kind:    "tags",
			args:    []string{"rock", "jazz"},
			wantKey: "tags:rock\x1fjazz",
		},
		{
			name:    "library defaults to overall",
			kind:    "library",
			args:    []string{"rj"},
			wantKey: "library:rj\x1foverall",
		},
		{
			name:    "library with period",
			kind:    "library",
			args:    []string{"rj"},
			period:  "3month",
			wantKey: "library:rj\x1f3month",
		},
		{
			name:    "library with unknown period",
			kind:    "library",
			args:    []string{"rj"},
			period:  "fortnight",
			wantErr: true,
		},
		{
			name:    "unknown kind",
			kind:    "genre",
			args:    []string{"rock"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := parseDefinition(tt.kind, tt.args, tt.period)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, station.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, def.Key())
		})
	}
}

func TestCorrectNames(t *testing.T) {
	best := func(_ context.Context, term string) (string, bool, error) {
		if term == "portishead" {
			return "Portishead", true, nil
		}
		return "", false, nil
	}

	got, err := correctNames(context.Background(), best, []string{"portishead", "Nobody Known"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Portishead", "Nobody Known"}, got)

	errBoom := errors.New("boom")
	_, err = correctNames(context.Background(), func(context.Context, string) (string, bool, error) {
		return "", false, errBoom
	}, []string{"x"})
	assert.ErrorIs(t, err, errBoom)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("info"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("loud"))
}

func TestPrintFinished(t *testing.T) {
	var buf bytes.Buffer
	printFinished(&buf, events.GenerationFinished{Added: 1200, Len: 1500, Target: 2000}, 1500*time.Millisecond)
	assert.Equal(t, "stalled: added 1,200, 1,500/2,000 tracks in 1.5s\n", buf.String())

	buf.Reset()
	printFinished(&buf, events.GenerationFinished{Added: 3, Len: 3, Target: 3, Reached: true}, time.Second)
	assert.True(t, strings.HasPrefix(buf.String(), "done: added 3"))
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, "top tracks", radio.CacheStats{Keys: 1500, Loaded: 1200, Dead: 3, InFlight: 1})
	assert.Equal(t, "top tracks    1,500 keys, 1,200 loaded, 3 dead, 1 in flight\n", buf.String())
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "entry", plural(1, "entry", "entries"))
	assert.Equal(t, "entries", plural(0, "entry", "entries"))
	assert.Equal(t, "entries", plural(4, "entry", "entries"))
}

func TestFollow_PrintsUntilFinished(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		broker := events.NewBroker()
		defer broker.Close()
		a := &app{
			broker: broker,
			drain:  drain.New(10*time.Millisecond, zerolog.Nop()),
		}

		a.drain.Enqueue("generate", func(context.Context) error {
			broker.TrackAdded(events.TrackAdded{StationID: "s1", TrackID: "42", Position: 0, Artist: "Portishead", Title: "Roads"})
			broker.TrackAdded(events.TrackAdded{StationID: "s2", TrackID: "99", Position: 0, Artist: "Other", Title: "Ignored"})
			broker.GenerationFinished(events.GenerationFinished{StationID: "s1", Added: 1, Len: 1, Target: 1, Reached: true})
			return nil
		})

		var buf bytes.Buffer
		require.NoError(t, a.follow(context.Background(), &buf, "s1", 1))

		out := buf.String()
		assert.Contains(t, out, "42")
		assert.Contains(t, out, "Portishead - Roads")
		assert.NotContains(t, out, "Ignored")
		assert.Contains(t, out, "done: added 1, 1/1 tracks")
	})
}

func TestFollow_StopsOnCancel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		broker := events.NewBroker()
		defer broker.Close()
		a := &app{
			broker: broker,
			drain:  drain.New(10*time.Millisecond, zerolog.Nop()),
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		err := a.follow(ctx, &bytes.Buffer{}, "s1", 1)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 0, a.drain.Pending())
	})
}
