package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vadimtrunov/MovieHub/internal/details"
	"github.com/vadimtrunov/MovieHub/internal/hooks"
	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
)

// pageResponse is the JSON shape of every paginated listing.
type pageResponse struct {
	Page         int          `json:"page"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
	Results      []movieEntry `json:"results"`
}

// movieEntry is a list movie with resolved image URLs.
type movieEntry struct {
	tmdb.Movie
	PosterURL string `json:"poster_url"`
}

type detailsResponse struct {
	Movie       *tmdb.MovieDetails `json:"movie"`
	Year        string             `json:"year,omitempty"`
	PosterURL   string             `json:"poster_url"`
	BackdropURL string             `json:"backdrop_url"`
	Directors   []tmdb.CrewMember  `json:"directors"`
	Writers     []tmdb.CrewMember  `json:"writers"`
	TopCast     []tmdb.CastMember  `json:"top_cast"`
	Trailer     *tmdb.Video        `json:"trailer,omitempty"`
	TrailerURL  string             `json:"trailer_url,omitempty"`
	Similar     []movieEntry       `json:"similar"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// Handler serves the catalog over JSON.
type Handler struct {
	hooks  *hooks.Hooks
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(h *hooks.Hooks, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{hooks: h, logger: logger}
}

// RegisterRoutes registers all API routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.handleHealth)

	api := r.Group("/api")
	api.GET("/movies/:kind", h.handleList)
	api.GET("/search", h.handleSearch)
	api.GET("/genres", h.handleGenres)
	api.GET("/discover", h.handleDiscover)
	api.GET("/movie/:id", h.handleDetails)
	api.GET("/movie/:id/videos", h.handleVideos)
	api.GET("/movie/:id/similar", h.handleSimilar)
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *Handler) handleList(c *gin.Context) {
	kind, ok := tmdb.ParseKind(c.Param("kind"))
	if !ok {
		h.writeError(c, &tmdb.ValidationError{Field: "kind", Reason: "must be one of popular, top_rated, upcoming, now_playing"})
		return
	}
	page := tmdb.ParsePage(c.Query("page"))
	r, err := h.hooks.LoadList(c.Request.Context(), kind, page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page, r))
}

func (h *Handler) handleSearch(c *gin.Context) {
	page := tmdb.ParsePage(c.Query("page"))
	r, err := h.hooks.LoadSearch(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageResponse(page, r))
}

func (h *Handler) handleGenres(c *gin.Context) {
	r, err := h.hooks.LoadGenres(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": r.Data})
}

func (h *Handler) handleDiscover(c *gin.Context) {
	var raw []string
	for _, v := range c.QueryArray("id") {
		raw = append(raw, strings.Split(v, ",")...)
	}
	page := tmdb.ParsePage(c.Query("page"))
	r, err := h.hooks.LoadByGenre(c.Request.Context(), raw, page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := newPageResponse(page, r)
	c.JSON(http.StatusOK, gin.H{
		"genre":         c.Query("name"),
		"page":          resp.Page,
		"total_pages":   resp.TotalPages,
		"total_results": resp.TotalResults,
		"results":       resp.Results,
	})
}

func (h *Handler) handleDetails(c *gin.Context) {
	id, ok := h.movieID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	r, err := h.hooks.LoadDetails(ctx, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	var videos []tmdb.Video
	if v, err := h.hooks.LoadVideos(ctx, id); err != nil {
		h.logger.Warn("videos unavailable for details",
			slog.Int("movie_id", id),
			slog.String("error", err.Error()),
		)
	} else {
		videos = v.Data
	}

	p := details.Build(r.Data, videos)
	resp := detailsResponse{
		Movie:       p.Movie,
		Year:        p.Year,
		PosterURL:   p.PosterURL,
		BackdropURL: p.Backdrop,
		Directors:   nonNil(p.Directors),
		Writers:     nonNil(p.Writers),
		TopCast:     nonNil(p.Cast),
		Trailer:     p.Trailer,
		Similar:     entries(p.Similar),
	}
	if p.Trailer != nil {
		resp.TrailerURL = tmdb.TrailerURL(*p.Trailer)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) handleVideos(c *gin.Context) {
	id, ok := h.movieID(c)
	if !ok {
		return
	}
	r, err := h.hooks.LoadVideos(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "results": r.Data})
}

func (h *Handler) handleSimilar(c *gin.Context) {
	id, ok := h.movieID(c)
	if !ok {
		return
	}
	order, err := details.ParseSortOrder(c.Query("sort"))
	if err != nil {
		h.writeError(c, &tmdb.ValidationError{Field: "sort", Reason: err.Error()})
		return
	}
	r, err := h.hooks.LoadDetails(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	similar := details.SortMovies(r.Data.Similar.Results, order)
	c.JSON(http.StatusOK, gin.H{
		"id":      id,
		"title":   r.Data.Title,
		"sort":    order,
		"results": entries(similar),
	})
}

func (h *Handler) movieID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		h.writeError(c, &tmdb.ValidationError{Field: "movie_id", Reason: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

// writeError maps the error taxonomy onto HTTP status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var valErr *tmdb.ValidationError
	var upErr *tmdb.UpstreamError
	switch {
	case errors.As(err, &valErr):
		status = http.StatusBadRequest
	case errors.As(err, &upErr) && upErr.NotFound():
		status = http.StatusNotFound
	case errors.As(err, &upErr):
		status = http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status >= 500 {
		h.logger.Error("request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	c.AbortWithStatusJSON(status, errorResponse{
		Error:     err.Error(),
		RequestID: c.GetString(requestIDKey),
	})
}

func newPageResponse(page int, r hooks.Result[[]tmdb.Movie]) pageResponse {
	return pageResponse{
		Page:         tmdb.ClampPage(page),
		TotalPages:   r.TotalPages,
		TotalResults: r.TotalResults,
		Results:      entries(r.Data),
	}
}

func entries(movies []tmdb.Movie) []movieEntry {
	out := make([]movieEntry, 0, len(movies))
	for _, m := range movies {
		out = append(out, movieEntry{Movie: m, PosterURL: tmdb.PosterURL(m.PosterPath, tmdb.SizeW500)})
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
