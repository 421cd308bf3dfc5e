package events

import (
	"slices"
	"sync"
)

// Broker is a Sink that copies every event to its subscriptions.
type Broker struct {
	mu     sync.RWMutex
	subs   []*Subscription
	closed bool
}

var _ Sink = (*Broker)(nil)

// NewBroker creates a broker with no subscribers.
func NewBroker() *Broker {
	return &Broker{}
}

// Subscribe creates a subscription for one station, or for all stations
// when stationID is empty. Slow subscribers lose events instead of
// blocking publishers.
func (b *Broker) Subscribe(stationID string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := newSubscription(stationID)
	if b.closed {
		sub.close()
		return sub
	}
	b.subs = append(b.subs, sub)
	return sub
}

// Unsubscribe removes sub and closes its Done channel.
func (b *Broker) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.Index(b.subs, sub)
	if i < 0 {
		return
	}
	b.subs = slices.Delete(b.subs, i, i+1)
	sub.close()
}

func (b *Broker) TrackAdded(e TrackAdded) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.wants(e.StationID) {
			sub.sendTrack(e)
		}
	}
}

func (b *Broker) GenerationFinished(e GenerationFinished) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.wants(e.StationID) {
			sub.sendFinished(e)
		}
	}
}

// Close closes every subscription. Later subscriptions start closed.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		sub.close()
	}
	b.subs = nil
}
