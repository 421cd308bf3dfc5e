package station

import "errors"

var (
	// ErrInvalidArgument is returned at call boundaries for malformed input:
	// nil or empty definitions, empty artist keys, non-positive bounds.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when a station does not exist.
	ErrNotFound = errors.New("station not found")

	// ErrDuplicateTrack is returned when appending a track id the station already holds.
	ErrDuplicateTrack = errors.New("duplicate track")
)
