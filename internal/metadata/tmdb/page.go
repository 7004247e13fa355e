package tmdb

import (
	"strconv"
	"strings"
)

// MaxPage is the highest page TMDb serves for any list endpoint.
const MaxPage = 500

// Kind identifies a fixed movie list endpoint.
type Kind string

// List kinds served by /movie/{kind}.
const (
	KindPopular    Kind = "popular"
	KindTopRated   Kind = "top_rated"
	KindUpcoming   Kind = "upcoming"
	KindNowPlaying Kind = "now_playing"
)

// Kinds lists every supported list kind in display order.
var Kinds = []Kind{KindPopular, KindTopRated, KindUpcoming, KindNowPlaying}

// ParseKind accepts the canonical kind names plus dashed aliases
// ("top-rated", "now-playing").
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// Title returns a human-readable label for the kind.
func (k Kind) Title() string {
	switch k {
	case KindPopular:
		return "Popular Movies"
	case KindTopRated:
		return "Top Rated Movies"
	case KindUpcoming:
		return "Upcoming Movies"
	case KindNowPlaying:
		return "Now Playing"
	}
	return string(k)
}

// ClampPage clamps a page number into [1, MaxPage].
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

// ParsePage parses a page number the way a browser's parseInt would: leading
// whitespace and sign are accepted, parsing stops at the first non-digit, and
// input without leading digits yields page 1. The result is clamped.
func ParsePage(s string) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 1
	}
	if neg {
		return 1
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// Only overflow gets here: digits were validated above.
		return MaxPage
	}
	return ClampPage(n)
}
