package events

const eventBufferSize = 64

// Subscription provides event channels for a subscriber.
type Subscription struct {
	TrackAdded         <-chan TrackAdded
	GenerationFinished <-chan GenerationFinished
	Done               <-chan struct{}

	stationID string // empty receives every station

	trackCh    chan TrackAdded
	finishedCh chan GenerationFinished
	doneCh     chan struct{}
}

func newSubscription(stationID string) *Subscription {
	s := &Subscription{
		stationID:  stationID,
		trackCh:    make(chan TrackAdded, eventBufferSize),
		finishedCh: make(chan GenerationFinished, eventBufferSize),
		doneCh:     make(chan struct{}),
	}
	s.TrackAdded = s.trackCh
	s.GenerationFinished = s.finishedCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) wants(stationID string) bool {
	return s.stationID == "" || s.stationID == stationID
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendTrack sends a track event (non-blocking).
func (s *Subscription) sendTrack(e TrackAdded) {
	select {
	case s.trackCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendFinished sends a generation event (non-blocking).
func (s *Subscription) sendFinished(e GenerationFinished) {
	select {
	case s.finishedCh <- e:
	default:
	}
}
