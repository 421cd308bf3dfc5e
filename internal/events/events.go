// Package events fans station progress out to in-process subscribers.
package events

// TrackAdded is emitted after a track id is appended to a station.
type TrackAdded struct {
	StationID string
	TrackID   string
	Position  int
	Artist    string
	Title     string
}

// GenerationFinished is emitted when a Generate or TopUp run ends.
//
// Reached is false when the run stopped after too many consecutive failed
// picks; the station keeps whatever it had at that point.
type GenerationFinished struct {
	StationID string
	Added     int
	Len       int
	Target    int
	Reached   bool
}

// Sink receives station events. Implementations must not block.
type Sink interface {
	TrackAdded(e TrackAdded)
	GenerationFinished(e GenerationFinished)
}

// Discard is a Sink that drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) TrackAdded(TrackAdded)                 {}
func (discard) GenerationFinished(GenerationFinished) {}
