package lastfm

// Artist is an artist returned by a Last.fm listing.
type Artist struct {
	Name       string
	MatchScore float64 // 0.0-1.0, only set by similar-artist lookups
	Playcount  int     // only set by user charts
	Rank       int     // 1-based position in the listing
}

// Track is a top track of an artist.
type Track struct {
	Artist    string
	Name      string
	Playcount int
	Rank      int
}
