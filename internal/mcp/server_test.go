package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vadimtrunov/MovieHub/internal/hooks"
	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
	"github.com/vadimtrunov/MovieHub/internal/swr"
)

// mockCatalog implements core.Catalog for testing.
type mockCatalog struct {
	page       *tmdb.Page
	pageErr    error
	details    *tmdb.MovieDetails
	detailsErr error
	videos     []tmdb.Video
	genres     []tmdb.Genre
	lastKind   tmdb.Kind
	lastQuery  string
	lastGenres []int
}

func (m *mockCatalog) FetchPage(_ context.Context, kind tmdb.Kind, _ int) (*tmdb.Page, error) {
	m.lastKind = kind
	return m.page, m.pageErr
}

func (m *mockCatalog) SearchMovies(_ context.Context, query string, _ int) (*tmdb.Page, error) {
	m.lastQuery = query
	return m.page, m.pageErr
}

func (m *mockCatalog) GetMoviesByGenre(_ context.Context, ids []int, _ int) (*tmdb.Page, error) {
	m.lastGenres = ids
	return m.page, m.pageErr
}

func (m *mockCatalog) GetMovieDetails(_ context.Context, _ int) (*tmdb.MovieDetails, error) {
	return m.details, m.detailsErr
}

func (m *mockCatalog) GetMovieVideos(_ context.Context, _ int) ([]tmdb.Video, error) {
	return m.videos, nil
}

func (m *mockCatalog) GetGenreList(_ context.Context) ([]tmdb.Genre, error) {
	return m.genres, nil
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T, cat *mockCatalog) *Server {
	t.Helper()
	cache := swr.New(swr.Options{Logger: discardLogger})
	t.Cleanup(cache.Close)
	return NewServer(hooks.New(cat, cache), discardLogger)
}

func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	_, err := srv.MCPServer().Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}
	return result
}

func resultText(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(*mcpsdk.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func samplePage() *tmdb.Page {
	return &tmdb.Page{
		Page:         1,
		Results:      []tmdb.Movie{{ID: 27205, Title: "Inception", ReleaseDate: "2010-07-16"}},
		TotalPages:   3,
		TotalResults: 42,
	}
}

func TestListMovies(t *testing.T) {
	t.Parallel()
	cat := &mockCatalog{page: samplePage()}
	srv := newTestServer(t, cat)

	result := callTool(t, srv, "list_movies", map[string]any{"kind": "top_rated", "page": 2})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}

	var got pageResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if got.Page != 2 || got.TotalPages != 3 || got.TotalResults != 42 {
		t.Errorf("unexpected paging: %+v", got)
	}
	if len(got.Results) != 1 || got.Results[0].ID != 27205 {
		t.Errorf("unexpected results: %+v", got.Results)
	}
	if cat.lastKind != tmdb.KindTopRated {
		t.Errorf("kind = %q, want %q", cat.lastKind, tmdb.KindTopRated)
	}
}

func TestListMoviesUnknownKind(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mockCatalog{page: samplePage()})

	result := callTool(t, srv, "list_movies", map[string]any{"kind": "trending"})
	if !result.IsError {
		t.Fatal("expected error for unknown kind")
	}
}

func TestSearchMovies(t *testing.T) {
	t.Parallel()
	cat := &mockCatalog{page: samplePage()}
	srv := newTestServer(t, cat)

	result := callTool(t, srv, "search_movies", map[string]any{"query": "Inception"})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}
	if cat.lastQuery != "Inception" {
		t.Errorf("query = %q, want Inception", cat.lastQuery)
	}

	var got pageResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Page != 1 {
		t.Errorf("page = %d, want 1", got.Page)
	}
}

func TestSearchMoviesEmptyQuery(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mockCatalog{page: samplePage()})

	result := callTool(t, srv, "search_movies", map[string]any{"query": "   "})
	if !result.IsError {
		t.Fatal("expected error for blank query")
	}
}

func TestSearchMoviesUpstreamError(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mockCatalog{pageErr: &tmdb.UpstreamError{Status: 401, Message: "Invalid API key"}})

	result := callTool(t, srv, "search_movies", map[string]any{"query": "Inception"})
	if !result.IsError {
		t.Fatal("expected error")
	}
	if !strings.Contains(resultText(t, result), "Invalid API key") {
		t.Errorf("error text should carry upstream message, got %q", resultText(t, result))
	}
}

func TestDiscoverMovies(t *testing.T) {
	t.Parallel()
	cat := &mockCatalog{page: samplePage()}
	srv := newTestServer(t, cat)

	result := callTool(t, srv, "discover_movies", map[string]any{"genre_ids": []any{35, 28}})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}
	if len(cat.lastGenres) != 2 || cat.lastGenres[0] != 28 || cat.lastGenres[1] != 35 {
		t.Errorf("genres = %v, want [28 35]", cat.lastGenres)
	}
}

func TestDiscoverMoviesRequiresGenre(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mockCatalog{page: samplePage()})

	result := callTool(t, srv, "discover_movies", map[string]any{"genre_ids": []any{}})
	if !result.IsError {
		t.Fatal("expected error for empty genre_ids")
	}
}

func TestGetMovieDetails(t *testing.T) {
	t.Parallel()
	cat := &mockCatalog{
		details: &tmdb.MovieDetails{
			ID:          27205,
			Title:       "Inception",
			ReleaseDate: "2010-07-16",
			Runtime:     148,
			Credits: tmdb.Credits{
				Crew: []tmdb.CrewMember{
					{ID: 525, Name: "Christopher Nolan", Job: "Director"},
					{ID: 525, Name: "Christopher Nolan", Job: "Screenplay"},
				},
				Cast: []tmdb.CastMember{{ID: 6193, Name: "Leonardo DiCaprio", Order: 0}},
			},
		},
	}
	srv := newTestServer(t, cat)

	result := callTool(t, srv, "get_movie_details", map[string]any{"tmdb_id": 27205})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["title"] != "Inception" {
		t.Errorf("title = %v, want Inception", got["title"])
	}
	if got["year"] != "2010" {
		t.Errorf("year = %v, want 2010", got["year"])
	}
	if got["directors"] != "Christopher Nolan" {
		t.Errorf("directors = %v", got["directors"])
	}
}

func TestGetMovieDetailsMissingID(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mockCatalog{})

	result := callTool(t, srv, "get_movie_details", map[string]any{})
	if !result.IsError {
		t.Fatal("expected error for missing tmdb_id")
	}
}

func TestGetMovieDetailsNotFound(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mockCatalog{
		detailsErr: &tmdb.UpstreamError{Status: 404, Message: "not found", Cause: errors.New("404")},
	})

	result := callTool(t, srv, "get_movie_details", map[string]any{"tmdb_id": 1})
	if !result.IsError {
		t.Fatal("expected error")
	}
}

func TestGetMovieVideos(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mockCatalog{
		videos: []tmdb.Video{
			{Key: "teaser1", Site: "YouTube", Type: "Teaser"},
			{Key: "YoEIfLc2nUE", Site: "YouTube", Type: "Trailer"},
		},
	})

	result := callTool(t, srv, "get_movie_videos", map[string]any{"tmdb_id": "27205"})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	url, _ := got["trailer_url"].(string)
	if !strings.Contains(url, "YoEIfLc2nUE") {
		t.Errorf("trailer_url = %q, want the YouTube trailer", url)
	}
}

func TestGetSimilarMovies(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mockCatalog{
		details: &tmdb.MovieDetails{
			ID: 27205,
			Similar: tmdb.Page{Results: []tmdb.Movie{
				{ID: 1, VoteAverage: 6.1},
				{ID: 2, VoteAverage: 8.4},
			}},
		},
	})

	result := callTool(t, srv, "get_similar_movies", map[string]any{"tmdb_id": 27205, "sort": "vote"})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}

	var got []tmdb.Movie
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 {
		t.Errorf("expected highest rated first, got %+v", got)
	}
}

func TestGetSimilarMoviesBadSort(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mockCatalog{details: &tmdb.MovieDetails{ID: 1}})

	result := callTool(t, srv, "get_similar_movies", map[string]any{"tmdb_id": 1, "sort": "alphabetical"})
	if !result.IsError {
		t.Fatal("expected error for unknown sort")
	}
}

func TestListGenres(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, &mockCatalog{genres: []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 35, Name: "Comedy"}}})

	result := callTool(t, srv, "list_genres", map[string]any{})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}

	var got []tmdb.Genre
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Action" {
		t.Errorf("unexpected genres: %+v", got)
	}
}

func TestExtractIntFromArgs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"number", `{"tmdb_id": 42}`, 42, false},
		{"string", `{"tmdb_id": "42"}`, 42, false},
		{"missing", `{}`, 0, true},
		{"bad string", `{"tmdb_id": "abc"}`, 0, true},
		{"wrong type", `{"tmdb_id": true}`, 0, true},
		{"invalid json", `{`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := extractIntFromArgs(json.RawMessage(tt.raw), "tmdb_id")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
