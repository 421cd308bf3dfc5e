// Package errmsg formats command failures for the terminal.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/llehouerou/lastmix/internal/catalog"
	"github.com/llehouerou/lastmix/internal/lastfm"
	"github.com/llehouerou/lastmix/internal/station"
)

// Op represents an operation that can fail.
type Op string

const (
	// Setup
	OpLoadConfig   Op = "load configuration"
	OpOpenDatabase Op = "open database"

	// Stations
	OpStationCreate  Op = "create station"
	OpStationLoad    Op = "load station"
	OpStationList    Op = "list stations"
	OpStationAdvance Op = "advance station"
	OpStationResume  Op = "resume stations"
	OpStationBuild   Op = "build station"

	// Last.fm
	OpArtistSearch Op = "search artists"
	OpCacheClean   Op = "clean Last.fm cache"
)

// Error is a failed operation with optional context, such as a station id.
type Error struct {
	Op      Op
	Context string
	Err     error
}

func (e *Error) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s '%s': %v", e.Op, e.Context, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap attaches op to err. It returns nil for a nil err.
func Wrap(op Op, err error) error {
	return WrapWith(op, "", err)
}

// WrapWith attaches op and context to err. It returns nil for a nil err.
func WrapWith(op Op, context string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Context: context, Err: err}
}

// Hint returns a suggestion for errors the user can fix, or "".
func Hint(err error) string {
	switch {
	case errors.Is(err, lastfm.ErrNotConfigured):
		return "add your API key to ~/.config/lastmix/config.toml under [lastfm], or set LASTMIX_LASTFM_API_KEY"
	case errors.Is(err, station.ErrNotFound):
		return "run 'lastmix stations' to list station ids"
	case errors.Is(err, catalog.ErrEmptyQuery):
		return "artist and title must not be empty"
	case errors.Is(err, station.ErrInvalidArgument):
		return "run the command with --help for usage"
	}
	return ""
}

// Format renders err and its hint, if any, for display.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := "Error: " + err.Error()
	if hint := Hint(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}
