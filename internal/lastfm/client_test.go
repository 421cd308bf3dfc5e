package lastfm

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestClient_NotConfigured(t *testing.T) {
	c := New("", "", 5, zerolog.Nop())

	_, err := c.TopTracks(context.Background(), "Radiohead", 10)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = c.TagTopArtists(context.Background(), "rock", 1, 50)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_CancelledContext(t *testing.T) {
	c := New("key", "secret", 0.001, zerolog.Nop())
	// Drain the single burst token so the next Wait has to block.
	c.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.SimilarArtists(ctx, "Radiohead", 10)
	assert.Error(t, err)
}

func TestParseNumbers(t *testing.T) {
	assert.InDelta(t, 0.87, parseFloat("0.87"), 1e-9)
	assert.Zero(t, parseFloat(""))
	assert.Zero(t, parseFloat("n/a"))

	assert.Equal(t, 12345, parseInt("12345"))
	assert.Zero(t, parseInt(""))
}
