package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vadimtrunov/MovieHub/internal/httpclient"
)

const (
	// DefaultBaseURL is the TMDb API v3 root.
	DefaultBaseURL = "https://api.themoviedb.org/3"

	detailsAppend = "credits,similar,recommendations"

	maxErrorBody = 4 << 10
)

// DiscoverPolicy holds the fixed filters applied to genre discovery.
type DiscoverPolicy struct {
	SortBy         string
	Region         string
	MinReleaseDate string // YYYY-MM-DD, inclusive
}

// DefaultDiscoverPolicy excludes pre-1980 titles and ranks by popularity in
// the US region.
func DefaultDiscoverPolicy() DiscoverPolicy {
	return DiscoverPolicy{
		SortBy:         "popularity.desc",
		Region:         "US",
		MinReleaseDate: "1980-01-01",
	}
}

// Options configures a Client.
type Options struct {
	APIKey   string
	BaseURL  string // defaults to DefaultBaseURL
	Discover DiscoverPolicy
	HTTP     httpclient.Config
}

// Client is a TMDb API v3 client. It performs no caching and no retries:
// every call is exactly one GET.
type Client struct {
	baseURL  string
	apiKey   string
	discover DiscoverPolicy
	http     *httpclient.Client
	logger   *slog.Logger
}

// New creates a new TMDb client.
func New(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	discover := opts.Discover
	if discover == (DiscoverPolicy{}) {
		discover = DefaultDiscoverPolicy()
	}
	httpCfg := opts.HTTP
	if httpCfg == (httpclient.Config{}) {
		httpCfg = httpclient.DefaultConfig()
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   opts.APIKey,
		discover: discover,
		http:     httpclient.New(httpCfg, logger),
		logger:   logger,
	}
}

// NewForTest creates a TMDb client with a custom base URL for testing.
// Exported because it is used by cross-package tests (e.g. internal/api).
func NewForTest(baseURL string, logger *slog.Logger) *Client {
	cfg := httpclient.DefaultConfig()
	cfg.RateLimit = 0
	return New(Options{APIKey: "test-key", BaseURL: baseURL, HTTP: cfg}, logger)
}

// FetchPage fetches one page of a fixed movie list.
func (c *Client) FetchPage(ctx context.Context, kind Kind, page int) (*Page, error) {
	if _, ok := ParseKind(string(kind)); !ok {
		return nil, &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown list %q", kind)}
	}
	page = ClampPage(page)

	var resp Page
	params := url.Values{"page": {strconv.Itoa(page)}}
	if err := c.get(ctx, "/movie/"+string(kind), params, &resp); err != nil {
		return nil, fmt.Errorf("fetch %s page %d: %w", kind, page, err)
	}
	return &resp, nil
}

// SearchMovies searches movies by title.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{Field: "query", Reason: "must not be empty"}
	}
	page = ClampPage(page)

	var resp Page
	params := url.Values{
		"query": {query},
		"page":  {strconv.Itoa(page)},
	}
	if err := c.get(ctx, "/search/movie", params, &resp); err != nil {
		return nil, fmt.Errorf("search movies %q: %w", query, err)
	}
	return &resp, nil
}

// GetMoviesByGenre discovers movies having all of the given genres.
func (c *Client) GetMoviesByGenre(ctx context.Context, genreIDs []int, page int) (*Page, error) {
	if len(genreIDs) == 0 {
		return nil, &ValidationError{Field: "genre_ids", Reason: "at least one genre is required"}
	}
	page = ClampPage(page)

	ids := make([]string, 0, len(genreIDs))
	for _, id := range genreIDs {
		ids = append(ids, strconv.Itoa(id))
	}
	joined := strings.Join(ids, ",")

	params := url.Values{
		"page":        {strconv.Itoa(page)},
		"with_genres": {joined},
	}
	if c.discover.SortBy != "" {
		params.Set("sort_by", c.discover.SortBy)
	}
	if c.discover.Region != "" {
		params.Set("region", c.discover.Region)
	}
	if c.discover.MinReleaseDate != "" {
		params.Set("primary_release_date.gte", c.discover.MinReleaseDate)
	}

	var resp Page
	if err := c.get(ctx, "/discover/movie", params, &resp); err != nil {
		c.logger.Warn("genre discovery failed",
			slog.String("genres", joined),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("discover genres %s: %w", joined, err)
	}
	return &resp, nil
}

// GetMovieDetails retrieves a movie with credits, similar titles and
// recommendations in one request.
func (c *Client) GetMovieDetails(ctx context.Context, id int) (*MovieDetails, error) {
	if id <= 0 {
		return nil, &ValidationError{Field: "movie_id", Reason: "must be a positive integer"}
	}

	var details MovieDetails
	params := url.Values{"append_to_response": {detailsAppend}}
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), params, &details); err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}
	return &details, nil
}

// GetMovieVideos lists the trailers, teasers and clips of a movie.
func (c *Client) GetMovieVideos(ctx context.Context, id int) ([]Video, error) {
	if id <= 0 {
		return nil, &ValidationError{Field: "movie_id", Reason: "must be a positive integer"}
	}

	var resp videosResponse
	if err := c.get(ctx, fmt.Sprintf("/movie/%d/videos", id), nil, &resp); err != nil {
		return nil, fmt.Errorf("get videos for %d: %w", id, err)
	}
	return resp.Results, nil
}

// GetGenreList returns the movie genre catalog.
func (c *Client) GetGenreList(ctx context.Context) ([]Genre, error) {
	var resp genresResponse
	if err := c.get(ctx, "/genre/movie/list", nil, &resp); err != nil {
		return nil, fmt.Errorf("get genres: %w", err)
	}
	return resp.Genres, nil
}

// get performs an authenticated GET request to the TMDb API and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	q := u.Query()
	q.Set("api_key", c.apiKey)
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("tmdb request", slog.String("path", path))

	resp, err := c.http.Do(req)
	if err != nil {
		err = c.redact(err)
		return &UpstreamError{Message: err.Error(), Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return upstreamError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &UpstreamError{Status: resp.StatusCode, Message: "malformed response body", Cause: err}
	}
	return nil
}

// redact strips the query, and with it the api_key, from the request URL a
// transport error carries.
func (c *Client) redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		if u, perr := url.Parse(ue.URL); perr == nil {
			u.RawQuery = ""
			ue.URL = u.String()
		}
	}
	if c.apiKey != "" && strings.Contains(err.Error(), c.apiKey) {
		return errors.New(strings.ReplaceAll(err.Error(), c.apiKey, "REDACTED"))
	}
	return err
}

// upstreamError builds an UpstreamError, preferring TMDb's status_message.
func upstreamError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.StatusMessage != "" {
		return &UpstreamError{Status: resp.StatusCode, Message: payload.StatusMessage}
	}
	msg := http.StatusText(resp.StatusCode)
	if msg == "" {
		msg = "unexpected status"
	}
	return &UpstreamError{Status: resp.StatusCode, Message: msg}
}
