package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitions_ValueEquality(t *testing.T) {
	a1, err := NewTags("rock", "classic")
	require.NoError(t, err)
	a2, err := NewTags("rock", "classic")
	require.NoError(t, err)
	b, err := NewTags("classic", "rock")
	require.NoError(t, err)

	assert.True(t, a1 == a2, "same tags should compare equal")
	assert.False(t, a1 == b, "tag order is part of the identity")

	m := map[Definition]int{a1: 1}
	assert.Equal(t, 1, m[a2], "equal definitions should share a map slot")

	s1, _ := NewSimilarArtists("Radiohead")
	s2, _ := NewSimilarArtists("radiohead")
	assert.NotEqual(t, s1.Key(), s2.Key(), "artist identity is case-sensitive")
}

func TestDefinitions_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"no artists", func() error { _, err := NewArtists(); return err }},
		{"empty artist", func() error { _, err := NewArtists("A", " "); return err }},
		{"empty similar", func() error { _, err := NewSimilarArtists(""); return err }},
		{"no tags", func() error { _, err := NewTags(); return err }},
		{"separator in tag", func() error { _, err := NewTags("a" + sep + "b"); return err }},
		{"empty user", func() error { _, err := NewLibrary("", PeriodOverall); return err }},
		{"bad period", func() error { _, err := NewLibrary("bob", "fortnight"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.fn(), ErrInvalidArgument)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), ErrInvalidArgument)
	assert.ErrorIs(t, Validate(Tags{}), ErrInvalidArgument)
	assert.ErrorIs(t, Validate(Library{}), ErrInvalidArgument)

	d, _ := NewArtists("Björk")
	assert.NoError(t, Validate(d))
}

func TestParseKey_RoundTrip(t *testing.T) {
	artists, _ := NewArtists("Björk", "Sigur Rós")
	similar, _ := NewSimilarArtists("AC/DC")
	tags, _ := NewTags("post rock", "ambient")
	lib, _ := NewLibrary("rj", Period3Months)

	for _, d := range []Definition{artists, similar, tags, lib} {
		t.Run(string(d.Kind()), func(t *testing.T) {
			got, err := ParseKey(d.Key())
			require.NoError(t, err)
			assert.Equal(t, d, got)
		})
	}
}

func TestParseKey_Malformed(t *testing.T) {
	for _, key := range []string{"", "nokind", "radio:abc", "tags:"} {
		_, err := ParseKey(key)
		assert.ErrorIs(t, err, ErrInvalidArgument, "key %q", key)
	}
}

func TestLibrary_DefaultPeriod(t *testing.T) {
	lib, err := NewLibrary("rj", "")
	require.NoError(t, err)
	assert.Equal(t, PeriodOverall, lib.Period())
}
