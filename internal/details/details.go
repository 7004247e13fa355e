// Package details derives the detail-page sections from a movie's credits,
// videos and related titles.
package details

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
)

const (
	// TopCastSize is the number of cast members shown on a detail page.
	TopCastSize = 6
	// SimilarPreviewSize is the number of similar titles previewed.
	SimilarPreviewSize = 6
)

var writerJobs = map[string]bool{
	"Screenplay": true,
	"Writer":     true,
	"Story":      true,
}

// Directors returns the crew credited as Director, in credit order.
func Directors(crew []tmdb.CrewMember) []tmdb.CrewMember {
	var out []tmdb.CrewMember
	for _, c := range crew {
		if c.Job == "Director" {
			out = append(out, c)
		}
	}
	return out
}

// Writers returns one entry per writing credit holder. A person credited for
// several writing jobs gets them joined with ", " in credit order.
func Writers(crew []tmdb.CrewMember) []tmdb.CrewMember {
	var out []tmdb.CrewMember
	index := make(map[int]int)
	for _, c := range crew {
		if !writerJobs[c.Job] {
			continue
		}
		i, seen := index[c.ID]
		if !seen {
			index[c.ID] = len(out)
			out = append(out, c)
			continue
		}
		if !slices.Contains(strings.Split(out[i].Job, ", "), c.Job) {
			out[i].Job += ", " + c.Job
		}
	}
	return out
}

// TopCast returns the first n cast members by billing order.
func TopCast(cast []tmdb.CastMember, n int) []tmdb.CastMember {
	sorted := slices.Clone(cast)
	slices.SortStableFunc(sorted, func(a, b tmdb.CastMember) int {
		return cmp.Compare(a.Order, b.Order)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// PickTrailer prefers a YouTube trailer, then any video.
func PickTrailer(videos []tmdb.Video) (tmdb.Video, bool) {
	for _, v := range videos {
		if v.Type == "Trailer" && v.Site == "YouTube" {
			return v, true
		}
	}
	if len(videos) > 0 {
		return videos[0], true
	}
	return tmdb.Video{}, false
}

// SortOrder is a client-side ordering of related titles.
type SortOrder string

const (
	ByPopularity  SortOrder = "popularity.desc"
	ByVoteAverage SortOrder = "vote_average.desc"
	ByReleaseDate SortOrder = "release_date.desc"
)

// SortOrders lists every supported order.
var SortOrders = []SortOrder{ByPopularity, ByVoteAverage, ByReleaseDate}

// ParseSortOrder accepts the full order name or its short form
// ("popularity", "vote", "release").
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "popularity", string(ByPopularity):
		return ByPopularity, nil
	case "vote", "rating", string(ByVoteAverage):
		return ByVoteAverage, nil
	case "release", "date", string(ByReleaseDate):
		return ByReleaseDate, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// SortMovies returns a sorted copy. Movies without a release date sort last
// under ByReleaseDate.
func SortMovies(movies []tmdb.Movie, order SortOrder) []tmdb.Movie {
	out := slices.Clone(movies)
	switch order {
	case ByPopularity:
		slices.SortStableFunc(out, func(a, b tmdb.Movie) int {
			return cmp.Compare(b.Popularity, a.Popularity)
		})
	case ByVoteAverage:
		slices.SortStableFunc(out, func(a, b tmdb.Movie) int {
			return cmp.Compare(b.VoteAverage, a.VoteAverage)
		})
	case ByReleaseDate:
		// ISO dates compare correctly as strings.
		slices.SortStableFunc(out, func(a, b tmdb.Movie) int {
			switch {
			case a.ReleaseDate == "" && b.ReleaseDate == "":
				return 0
			case a.ReleaseDate == "":
				return 1
			case b.ReleaseDate == "":
				return -1
			}
			return strings.Compare(b.ReleaseDate, a.ReleaseDate)
		})
	}
	return out
}

// ReleaseYear returns the year part of a YYYY-MM-DD date, or "".
func ReleaseYear(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// Page is everything a detail view renders.
type Page struct {
	Movie     *tmdb.MovieDetails
	Directors []tmdb.CrewMember
	Writers   []tmdb.CrewMember
	Cast      []tmdb.CastMember
	Trailer   *tmdb.Video
	Similar   []tmdb.Movie
	PosterURL string
	Backdrop  string
	Year      string
}

// Build derives the detail view of m. videos may be nil. A nil m yields an
// empty Page.
func Build(m *tmdb.MovieDetails, videos []tmdb.Video) Page {
	if m == nil {
		return Page{}
	}
	p := Page{
		Movie:     m,
		Directors: Directors(m.Credits.Crew),
		Writers:   Writers(m.Credits.Crew),
		Cast:      TopCast(m.Credits.Cast, TopCastSize),
		PosterURL: tmdb.PosterURL(m.PosterPath, tmdb.SizeW500),
		Backdrop:  tmdb.BackdropURL(m.BackdropPath),
		Year:      ReleaseYear(m.ReleaseDate),
	}
	if v, ok := PickTrailer(videos); ok {
		p.Trailer = &v
	}
	similar := m.Similar.Results
	if len(similar) > SimilarPreviewSize {
		similar = similar[:SimilarPreviewSize]
	}
	p.Similar = similar
	return p
}

// Names joins the names of crew members with ", ".
func Names(crew []tmdb.CrewMember) string {
	names := make([]string, 0, len(crew))
	for _, c := range crew {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}
