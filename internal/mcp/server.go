package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vadimtrunov/MovieHub/internal/details"
	"github.com/vadimtrunov/MovieHub/internal/hooks"
	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Server wraps an MCP SDK server with MovieHub catalog tools.
type Server struct {
	server *mcpsdk.Server
	hooks  *hooks.Hooks
	logger *slog.Logger
}

// NewServer creates an MCP server with all catalog tools registered.
func NewServer(h *hooks.Hooks, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "moviehub",
			Version: Version,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{server: s, hooks: h, logger: logger}
	srv.registerTools()
	return srv
}

// ServeStdio runs the MCP server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

// MCPServer returns the underlying MCP SDK server (for testing).
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.server
}

func (s *Server) registerTools() {
	s.server.AddTool(listMoviesTool(), s.handleListMovies)
	s.server.AddTool(searchMoviesTool(), s.handleSearchMovies)
	s.server.AddTool(discoverMoviesTool(), s.handleDiscoverMovies)
	s.server.AddTool(getMovieDetailsTool(), s.handleGetMovieDetails)
	s.server.AddTool(getMovieVideosTool(), s.handleGetMovieVideos)
	s.server.AddTool(getSimilarMoviesTool(), s.handleGetSimilarMovies)
	s.server.AddTool(listGenresTool(), s.handleListGenres)
}

// Tool definitions.

func listMoviesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "list_movies",
		Description: "List one page of a curated movie list: popular, top_rated, upcoming or now_playing.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"kind": map[string]any{
					"type":        "string",
					"enum":        []any{"popular", "top_rated", "upcoming", "now_playing"},
					"description": "Which list to fetch",
				},
				"page": pageProperty(),
			},
			"required": []any{"kind"},
		},
	}
}

func searchMoviesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "search_movies",
		Description: "Search movies by title. Returns one page of matches with TMDb IDs, release dates and ratings.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The movie title to search for",
				},
				"page": pageProperty(),
			},
			"required": []any{"query"},
		},
	}
}

func discoverMoviesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "discover_movies",
		Description: "Discover movies having every given genre, most popular first. Use list_genres to find genre IDs.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"genre_ids": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "integer"},
					"description": "TMDb genre IDs",
				},
				"page": pageProperty(),
			},
			"required": []any{"genre_ids"},
		},
	}
}

func getMovieDetailsTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "get_movie_details",
		Description: "Get a movie by its TMDb ID with runtime, genres, directors, writers, top cast and similar titles.",
		InputSchema: tmdbIDSchema("The TMDb ID of the movie"),
	}
}

func getMovieVideosTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "get_movie_videos",
		Description: "List trailers, teasers and clips for a movie, with the preferred trailer URL.",
		InputSchema: tmdbIDSchema("The TMDb ID of the movie"),
	}
}

func getSimilarMoviesTool() *mcpsdk.Tool {
	schema := tmdbIDSchema("The TMDb ID of the movie to find similar titles for")
	schema["properties"].(map[string]any)["sort"] = map[string]any{
		"type":        "string",
		"enum":        []any{"popularity", "vote", "release"},
		"description": "Ordering of the results (default popularity)",
	}
	return &mcpsdk.Tool{
		Name:        "get_similar_movies",
		Description: "List movies similar to a given movie.",
		InputSchema: schema,
	}
}

func listGenresTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "list_genres",
		Description: "List all movie genres with their TMDb IDs.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func pageProperty() map[string]any {
	return map[string]any{
		"type":        "integer",
		"description": "Page number, 1 to 500 (default 1)",
	}
}

func tmdbIDSchema(desc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tmdb_id": map[string]any{
				"type":        "integer",
				"description": desc,
			},
		},
		"required": []any{"tmdb_id"},
	}
}

// Tool handlers. Each parses arguments, reads through the cached hooks and
// returns JSON text content.

type pageResult struct {
	Page         int          `json:"page"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
	Results      []tmdb.Movie `json:"results"`
}

func newPageResult(page int, r hooks.Result[[]tmdb.Movie]) pageResult {
	return pageResult{
		Page:         tmdb.ClampPage(page),
		TotalPages:   r.TotalPages,
		TotalResults: r.TotalResults,
		Results:      r.Data,
	}
}

func (s *Server) handleListMovies(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	var args struct {
		Kind string `json:"kind"`
		Page int    `json:"page"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	kind, ok := tmdb.ParseKind(args.Kind)
	if !ok {
		return toolError(fmt.Sprintf("unknown list %q: use popular, top_rated, upcoming or now_playing", args.Kind)), nil
	}

	r, err := s.hooks.LoadList(ctx, kind, args.Page)
	if err != nil {
		return toolError(fmt.Sprintf("list %s failed: %v", kind, err)), nil
	}
	return toolJSON(newPageResult(args.Page, r))
}

func (s *Server) handleSearchMovies(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	var args struct {
		Query string `json:"query"`
		Page  int    `json:"page"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if hooks.SearchKey(args.Query, args.Page) == "" {
		return toolError("search_movies requires a non-empty 'query' string argument"), nil
	}

	r, err := s.hooks.LoadSearch(ctx, args.Query, args.Page)
	if err != nil {
		return toolError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return toolJSON(newPageResult(args.Page, r))
}

func (s *Server) handleDiscoverMovies(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	var args struct {
		GenreIDs []json.Number `json:"genre_ids"`
		Page     int           `json:"page"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	raw := make([]string, 0, len(args.GenreIDs))
	for _, n := range args.GenreIDs {
		raw = append(raw, n.String())
	}
	if len(hooks.NormalizeGenreIDs(raw)) == 0 {
		return toolError("discover_movies requires at least one numeric genre id"), nil
	}

	r, err := s.hooks.LoadByGenre(ctx, raw, args.Page)
	if err != nil {
		return toolError(fmt.Sprintf("discover failed: %v", err)), nil
	}
	return toolJSON(newPageResult(args.Page, r))
}

func (s *Server) handleGetMovieDetails(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	tmdbID, err := extractIntFromArgs(req.Params.Arguments, "tmdb_id")
	if err != nil {
		return toolError(err.Error()), nil
	}
	if tmdbID <= 0 {
		return toolError("tmdb_id must be a positive integer"), nil
	}

	r, err := s.hooks.LoadDetails(ctx, tmdbID)
	if err != nil {
		return toolError(fmt.Sprintf("get movie failed: %v", err)), nil
	}
	p := details.Build(r.Data, nil)
	if p.Movie == nil {
		return toolError(fmt.Sprintf("movie %d not found", tmdbID)), nil
	}
	return toolJSON(map[string]any{
		"id":        p.Movie.ID,
		"title":     p.Movie.Title,
		"year":      p.Year,
		"tagline":   p.Movie.Tagline,
		"overview":  p.Movie.Overview,
		"runtime":   p.Movie.Runtime,
		"rating":    p.Movie.VoteAverage,
		"genres":    p.Movie.Genres,
		"directors": details.Names(p.Directors),
		"writers":   p.Writers,
		"top_cast":  p.Cast,
		"poster":    p.PosterURL,
		"similar":   p.Similar,
	})
}

func (s *Server) handleGetMovieVideos(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	tmdbID, err := extractIntFromArgs(req.Params.Arguments, "tmdb_id")
	if err != nil {
		return toolError(err.Error()), nil
	}
	if tmdbID <= 0 {
		return toolError("tmdb_id must be a positive integer"), nil
	}

	r, err := s.hooks.LoadVideos(ctx, tmdbID)
	if err != nil {
		return toolError(fmt.Sprintf("get videos failed: %v", err)), nil
	}
	out := map[string]any{"videos": r.Data}
	if v, ok := details.PickTrailer(r.Data); ok {
		out["trailer_url"] = tmdb.TrailerURL(v)
	}
	return toolJSON(out)
}

func (s *Server) handleGetSimilarMovies(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	var args struct {
		TMDbID json.Number `json:"tmdb_id"`
		Sort   string      `json:"sort"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	tmdbID, err := strconv.Atoi(args.TMDbID.String())
	if err != nil || tmdbID <= 0 {
		return toolError("tmdb_id must be a positive integer"), nil
	}
	order, err := details.ParseSortOrder(args.Sort)
	if err != nil {
		return toolError(err.Error()), nil
	}

	r, err := s.hooks.LoadDetails(ctx, tmdbID)
	if err != nil {
		return toolError(fmt.Sprintf("get movie failed: %v", err)), nil
	}
	return toolJSON(details.SortMovies(r.Data.Similar.Results, order))
}

func (s *Server) handleListGenres(ctx context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	r, err := s.hooks.LoadGenres(ctx)
	if err != nil {
		return toolError(fmt.Sprintf("list genres failed: %v", err)), nil
	}
	return toolJSON(r.Data)
}

// Helper functions.

// toolJSON marshals v to JSON and returns it as text content.
func toolJSON(v any) (*mcpsdk.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil
}

// toolError returns a tool result indicating an error.
func toolError(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
		IsError: true,
	}
}

// extractIntFromArgs extracts an integer argument from raw JSON arguments.
func extractIntFromArgs(raw json.RawMessage, key string) (int, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("invalid arguments: %w", err)
	}

	val, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}

	switch v := val.(type) {
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, val)
	}
}
