package station

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies a station definition variant.
type Kind string

const (
	KindArtists        Kind = "artists"
	KindSimilarArtists Kind = "similar"
	KindTags           Kind = "tags"
	KindLibrary        Kind = "library"
)

// Period is a Last.fm chart period used by library stations.
type Period string

const (
	PeriodOverall  Period = "overall"
	Period7Days    Period = "7day"
	Period1Month   Period = "1month"
	Period3Months  Period = "3month"
	Period6Months  Period = "6month"
	Period12Months Period = "12month"
)

var periods = []Period{PeriodOverall, Period7Days, Period1Month, Period3Months, Period6Months, Period12Months}

// ParsePeriod validates a period string. Empty means overall.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return PeriodOverall, nil
	}
	p := Period(s)
	if !slices.Contains(periods, p) {
		return "", fmt.Errorf("%w: unknown period %q", ErrInvalidArgument, s)
	}
	return p, nil
}

// sep joins list fields inside definitions and keys. It cannot appear in
// artist names or tags returned by Last.fm.
const sep = "\x1f"

// Definition selects the artist pool strategy of a station.
//
// Definitions are immutable values: every variant only holds strings, so two
// definitions with the same content compare equal with == and can be used
// directly as map keys.
type Definition interface {
	Kind() Kind
	// Key is the canonical string form, unique per definition content.
	Key() string
	String() string
	validate() error
}

// Validate reports ErrInvalidArgument for nil or zero-value definitions.
func Validate(d Definition) error {
	if d == nil {
		return fmt.Errorf("%w: nil definition", ErrInvalidArgument)
	}
	return d.validate()
}

// Artists is a station over a fixed list of artists, in the given order.
type Artists struct {
	names string
}

// NewArtists creates an artists definition. Empty names are rejected.
func NewArtists(names ...string) (Artists, error) {
	if err := checkList("artist", names); err != nil {
		return Artists{}, err
	}
	return Artists{names: strings.Join(names, sep)}, nil
}

func (a Artists) Kind() Kind { return KindArtists }
func (a Artists) Key() string { return string(KindArtists) + ":" + a.names }
func (a Artists) Names() []string { return split(a.names) }
func (a Artists) String() string { return "artists: " + strings.Join(a.Names(), ", ") }
func (a Artists) validate() error { return zeroCheck(a.names == "", KindArtists) }

// SimilarArtists is a station seeded by one artist and its Last.fm neighborhood.
type SimilarArtists struct {
	source string
}

// NewSimilarArtists creates a similar-artists definition.
func NewSimilarArtists(source string) (SimilarArtists, error) {
	if strings.TrimSpace(source) == "" {
		return SimilarArtists{}, fmt.Errorf("%w: empty source artist", ErrInvalidArgument)
	}
	return SimilarArtists{source: source}, nil
}

func (s SimilarArtists) Kind() Kind { return KindSimilarArtists }
func (s SimilarArtists) Key() string { return string(KindSimilarArtists) + ":" + s.source }
func (s SimilarArtists) Source() string { return s.source }
func (s SimilarArtists) String() string { return "similar to " + s.source }
func (s SimilarArtists) validate() error { return zeroCheck(s.source == "", KindSimilarArtists) }

// Tags is a station over the artists shared by every tag. Tag order is part
// of the identity.
type Tags struct {
	tags string
}

// NewTags creates a tags definition from one or more tags.
func NewTags(tags ...string) (Tags, error) {
	if err := checkList("tag", tags); err != nil {
		return Tags{}, err
	}
	return Tags{tags: strings.Join(tags, sep)}, nil
}

func (t Tags) Kind() Kind { return KindTags }
func (t Tags) Key() string { return string(KindTags) + ":" + t.tags }
func (t Tags) Tags() []string { return split(t.tags) }
func (t Tags) String() string { return "tags: " + strings.Join(t.Tags(), ", ") }
func (t Tags) validate() error { return zeroCheck(t.tags == "", KindTags) }

// Library is a station over a Last.fm user's top artists for a period.
type Library struct {
	user   string
	period Period
}

// NewLibrary creates a library definition.
func NewLibrary(user string, period Period) (Library, error) {
	if strings.TrimSpace(user) == "" {
		return Library{}, fmt.Errorf("%w: empty user", ErrInvalidArgument)
	}
	p, err := ParsePeriod(string(period))
	if err != nil {
		return Library{}, err
	}
	return Library{user: user, period: p}, nil
}

func (l Library) Kind() Kind { return KindLibrary }
func (l Library) Key() string { return string(KindLibrary) + ":" + l.user + sep + string(l.period) }
func (l Library) User() string { return l.user }
func (l Library) Period() Period { return l.period }
func (l Library) String() string { return fmt.Sprintf("library of %s (%s)", l.user, l.period) }
func (l Library) validate() error { return zeroCheck(l.user == "", KindLibrary) }

// ParseKey rebuilds a definition from its Key.
func ParseKey(key string) (Definition, error) {
	kind, rest, ok := strings.Cut(key, ":")
	if !ok {
		return nil, fmt.Errorf("%w: malformed definition key %q", ErrInvalidArgument, key)
	}
	switch Kind(kind) {
	case KindArtists:
		return NewArtists(split(rest)...)
	case KindSimilarArtists:
		return NewSimilarArtists(rest)
	case KindTags:
		return NewTags(split(rest)...)
	case KindLibrary:
		user, period, _ := strings.Cut(rest, sep)
		return NewLibrary(user, Period(period))
	default:
		return nil, fmt.Errorf("%w: unknown definition kind %q", ErrInvalidArgument, kind)
	}
}

func checkList(what string, items []string) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: at least one %s required", ErrInvalidArgument, what)
	}
	for _, it := range items {
		if strings.TrimSpace(it) == "" {
			return fmt.Errorf("%w: empty %s", ErrInvalidArgument, what)
		}
		if strings.Contains(it, sep) {
			return fmt.Errorf("%w: %s %q contains a separator", ErrInvalidArgument, what, it)
		}
	}
	return nil
}

func zeroCheck(zero bool, kind Kind) error {
	if zero {
		return fmt.Errorf("%w: empty %s definition", ErrInvalidArgument, kind)
	}
	return nil
}

func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}
