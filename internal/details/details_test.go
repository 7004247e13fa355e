package details

import (
	"testing"

	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
)

func TestWriters_MergesJobsPerPerson(t *testing.T) {
	crew := []tmdb.CrewMember{
		{ID: 1, Name: "Christopher Nolan", Job: "Director"},
		{ID: 1, Name: "Christopher Nolan", Job: "Screenplay"},
		{ID: 2, Name: "Jonathan Nolan", Job: "Story"},
		{ID: 1, Name: "Christopher Nolan", Job: "Story"},
		{ID: 1, Name: "Christopher Nolan", Job: "Screenplay"},
		{ID: 3, Name: "Hans Zimmer", Job: "Original Music Composer"},
	}

	got := Writers(crew)
	if len(got) != 2 {
		t.Fatalf("expected 2 writers, got %d: %+v", len(got), got)
	}
	if got[0].ID != 1 || got[0].Job != "Screenplay, Story" {
		t.Errorf("writer 0 = %+v, want id 1 with Screenplay, Story", got[0])
	}
	if got[1].ID != 2 || got[1].Job != "Story" {
		t.Errorf("writer 1 = %+v", got[1])
	}
	if crew[1].Job != "Screenplay" {
		t.Error("Writers mutated its input")
	}
}

func TestWriters_ExcludesDirector(t *testing.T) {
	got := Writers([]tmdb.CrewMember{{ID: 7, Job: "Director"}})
	if len(got) != 0 {
		t.Errorf("director listed as writer: %+v", got)
	}
}

func TestDirectors(t *testing.T) {
	crew := []tmdb.CrewMember{
		{ID: 1, Name: "Lana Wachowski", Job: "Director"},
		{ID: 2, Name: "Lilly Wachowski", Job: "Director"},
		{ID: 1, Name: "Lana Wachowski", Job: "Writer"},
	}
	got := Directors(crew)
	if len(got) != 2 {
		t.Fatalf("expected 2 directors, got %d", len(got))
	}
	if Names(got) != "Lana Wachowski, Lilly Wachowski" {
		t.Errorf("Names = %q", Names(got))
	}
}

func TestTopCast(t *testing.T) {
	cast := []tmdb.CastMember{
		{Name: "c", Order: 2}, {Name: "a", Order: 0}, {Name: "b", Order: 1},
		{Name: "d", Order: 3}, {Name: "e", Order: 4}, {Name: "f", Order: 5},
		{Name: "g", Order: 6},
	}
	got := TopCast(cast, TopCastSize)
	if len(got) != 6 {
		t.Fatalf("expected 6, got %d", len(got))
	}
	if got[0].Name != "a" || got[5].Name != "f" {
		t.Errorf("order = %s..%s, want a..f", got[0].Name, got[5].Name)
	}
}

func TestPickTrailer(t *testing.T) {
	tests := []struct {
		name    string
		videos  []tmdb.Video
		wantKey string
		wantOK  bool
	}{
		{"youtube trailer preferred", []tmdb.Video{
			{Key: "teaser", Site: "YouTube", Type: "Teaser"},
			{Key: "vimeo", Site: "Vimeo", Type: "Trailer"},
			{Key: "yt", Site: "YouTube", Type: "Trailer"},
		}, "yt", true},
		{"falls back to first", []tmdb.Video{
			{Key: "clip", Site: "YouTube", Type: "Clip"},
		}, "clip", true},
		{"none", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := PickTrailer(tt.videos)
			if ok != tt.wantOK || v.Key != tt.wantKey {
				t.Errorf("PickTrailer = %q, %v, want %q, %v", v.Key, ok, tt.wantKey, tt.wantOK)
			}
		})
	}
}

func TestSortMovies(t *testing.T) {
	movies := []tmdb.Movie{
		{ID: 1, Popularity: 10, VoteAverage: 9.1, ReleaseDate: "1999-03-31"},
		{ID: 2, Popularity: 50, VoteAverage: 6.0, ReleaseDate: ""},
		{ID: 3, Popularity: 30, VoteAverage: 7.5, ReleaseDate: "2021-10-22"},
	}
	tests := []struct {
		order SortOrder
		want  []int
	}{
		{ByPopularity, []int{2, 3, 1}},
		{ByVoteAverage, []int{1, 3, 2}},
		{ByReleaseDate, []int{3, 1, 2}},
	}
	for _, tt := range tests {
		got := SortMovies(movies, tt.order)
		for i, id := range tt.want {
			if got[i].ID != id {
				t.Errorf("%s: position %d = %d, want %d", tt.order, i, got[i].ID, id)
			}
		}
	}
	if movies[0].ID != 1 {
		t.Error("SortMovies mutated its input")
	}
}

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    SortOrder
		wantErr bool
	}{
		{"", ByPopularity, false},
		{"vote", ByVoteAverage, false},
		{"release_date.desc", ByReleaseDate, false},
		{"title", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSortOrder(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseSortOrder(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestBuild(t *testing.T) {
	similar := make([]tmdb.Movie, 8)
	m := &tmdb.MovieDetails{
		ID:          27205,
		Title:       "Inception",
		ReleaseDate: "2010-07-16",
		Credits: tmdb.Credits{
			Crew: []tmdb.CrewMember{{ID: 1, Name: "Christopher Nolan", Job: "Director"}},
		},
		Similar: tmdb.Page{Results: similar},
	}
	p := Build(m, []tmdb.Video{{Key: "yt", Site: "YouTube", Type: "Trailer"}})

	if p.Year != "2010" {
		t.Errorf("Year = %q", p.Year)
	}
	if len(p.Similar) != SimilarPreviewSize {
		t.Errorf("Similar = %d, want %d", len(p.Similar), SimilarPreviewSize)
	}
	if p.Trailer == nil || p.Trailer.Key != "yt" {
		t.Errorf("Trailer = %+v", p.Trailer)
	}
	if p.PosterURL != tmdb.PlaceholderPoster {
		t.Errorf("PosterURL = %q, want placeholder", p.PosterURL)
	}
	if len(p.Directors) != 1 || len(p.Writers) != 0 {
		t.Errorf("directors=%d writers=%d", len(p.Directors), len(p.Writers))
	}
}

func TestBuild_NilMovie(t *testing.T) {
	p := Build(nil, []tmdb.Video{{Key: "yt", Site: "YouTube", Type: "Trailer"}})
	if p.Movie != nil || p.Trailer != nil || p.PosterURL != "" || len(p.Cast) != 0 {
		t.Errorf("Build(nil) = %+v, want empty page", p)
	}
}

func TestReleaseYear(t *testing.T) {
	if ReleaseYear("2010-07-16") != "2010" || ReleaseYear("") != "" {
		t.Error("ReleaseYear mismatch")
	}
}
