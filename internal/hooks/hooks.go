// Package hooks exposes one cached accessor per catalog resource. Each
// accessor builds a canonical cache key, reads it through the
// stale-while-revalidate cache and returns a uniform Result.
package hooks

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/vadimtrunov/MovieHub/internal/core"
	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
	"github.com/vadimtrunov/MovieHub/internal/swr"
)

// GenresKey is the cache key of the genre catalog.
const GenresKey = "genres"

// Result is the state of one resource as seen by a view.
// A zero Key means the hook was inert and issued no request.
type Result[T any] struct {
	Key          string
	Data         T
	TotalPages   int
	TotalResults int
	IsLoading    bool // no data yet and a fetch is in flight
	IsValidating bool // a fetch is in flight, possibly over stale data
	Err          error
}

// Inert reports whether the hook had insufficient input to issue a request.
func (r Result[T]) Inert() bool {
	return r.Key == ""
}

// Hooks binds a Catalog to a cache.
type Hooks struct {
	catalog core.Catalog
	cache   *swr.Cache
}

// New creates Hooks. The cache is shared and owned by the caller.
func New(catalog core.Catalog, cache *swr.Cache) *Hooks {
	return &Hooks{catalog: catalog, cache: cache}
}

// Cache returns the underlying cache.
func (h *Hooks) Cache() *swr.Cache {
	return h.cache
}

// Watch calls fn on every state change of key.
func (h *Hooks) Watch(key string, fn func(swr.Snapshot)) (cancel func()) {
	return h.cache.Subscribe(key, fn)
}

// --- keys ---

// ListKey returns the cache key of one page of a fixed list.
func ListKey(kind tmdb.Kind, page int) string {
	return fmt.Sprintf("/movie/%s/%d", kind, tmdb.ClampPage(page))
}

// SearchKey returns the cache key of one page of search results, or "" when
// the query is blank.
func SearchKey(query string, page int) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}
	return fmt.Sprintf("/search/movie/%s/%d", query, tmdb.ClampPage(page))
}

// NormalizeGenreIDs drops non-numeric and non-positive entries, then sorts
// and deduplicates the rest.
func NormalizeGenreIDs(raw []string) []int {
	ids := make([]int, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// GenreKey joins normalized genre ids with "-". It is independent of the
// input order.
func GenreKey(ids []int) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	parts := make([]string, 0, len(sorted))
	for _, id := range sorted {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, "-")
}

// DiscoverKey returns the cache key of one page of genre discovery, or ""
// when no valid genre remains.
func DiscoverKey(ids []int, page int) string {
	gk := GenreKey(ids)
	if gk == "" {
		return ""
	}
	return fmt.Sprintf("/genre/%s/%d", gk, tmdb.ClampPage(page))
}

// DetailsKey returns the cache key of a movie's details, or "" for a
// non-positive id.
func DetailsKey(id int) string {
	if id <= 0 {
		return ""
	}
	return fmt.Sprintf("/movie/%d", id)
}

// VideosKey returns the cache key of a movie's videos, or "" for a
// non-positive id.
func VideosKey(id int) string {
	if id <= 0 {
		return ""
	}
	return fmt.Sprintf("/movie/%d/videos", id)
}

// --- non-blocking hooks ---

// Popular reads one page of popular movies.
func (h *Hooks) Popular(page int) Result[[]tmdb.Movie] { return h.List(tmdb.KindPopular, page) }

// TopRated reads one page of top rated movies.
func (h *Hooks) TopRated(page int) Result[[]tmdb.Movie] { return h.List(tmdb.KindTopRated, page) }

// Upcoming reads one page of upcoming movies.
func (h *Hooks) Upcoming(page int) Result[[]tmdb.Movie] { return h.List(tmdb.KindUpcoming, page) }

// NowPlaying reads one page of movies in theatres.
func (h *Hooks) NowPlaying(page int) Result[[]tmdb.Movie] { return h.List(tmdb.KindNowPlaying, page) }

// List reads one page of a fixed list.
func (h *Hooks) List(kind tmdb.Kind, page int) Result[[]tmdb.Movie] {
	key := ListKey(kind, page)
	return pageResult(h.cache.Read(key, h.listFetcher(kind, page)))
}

// Search reads one page of search results. A blank query is inert.
func (h *Hooks) Search(query string, page int) Result[[]tmdb.Movie] {
	key := SearchKey(query, page)
	if key == "" {
		return Result[[]tmdb.Movie]{Data: []tmdb.Movie{}}
	}
	return pageResult(h.cache.Read(key, h.searchFetcher(query, page)))
}

// ByGenre reads one page of movies matching every genre. Raw ids typically
// come from a URL; an empty list after normalization is inert.
func (h *Hooks) ByGenre(rawIDs []string, page int) Result[[]tmdb.Movie] {
	ids := NormalizeGenreIDs(rawIDs)
	key := DiscoverKey(ids, page)
	if key == "" {
		return Result[[]tmdb.Movie]{Data: []tmdb.Movie{}}
	}
	return pageResult(h.cache.Read(key, h.genreFetcher(ids, page)))
}

// Details reads a movie's details. A non-positive id is inert.
func (h *Hooks) Details(id int) Result[*tmdb.MovieDetails] {
	key := DetailsKey(id)
	if key == "" {
		return Result[*tmdb.MovieDetails]{}
	}
	return valueResult[*tmdb.MovieDetails](h.cache.Read(key, h.detailsFetcher(id)))
}

// Videos reads a movie's videos. A non-positive id is inert.
func (h *Hooks) Videos(id int) Result[[]tmdb.Video] {
	key := VideosKey(id)
	if key == "" {
		return Result[[]tmdb.Video]{Data: []tmdb.Video{}}
	}
	return valueResult[[]tmdb.Video](h.cache.Read(key, h.videosFetcher(id)))
}

// Genres reads the genre catalog.
func (h *Hooks) Genres() Result[[]tmdb.Genre] {
	return valueResult[[]tmdb.Genre](h.cache.Read(GenresKey, h.genresFetcher()))
}

// --- blocking counterparts ---

// LoadList blocks until one page of a fixed list is available.
func (h *Hooks) LoadList(ctx context.Context, kind tmdb.Kind, page int) (Result[[]tmdb.Movie], error) {
	return loadPage(ctx, h.cache, ListKey(kind, page), h.listFetcher(kind, page))
}

// LoadSearch blocks until one page of search results is available.
// A blank query returns an inert result without error.
func (h *Hooks) LoadSearch(ctx context.Context, query string, page int) (Result[[]tmdb.Movie], error) {
	key := SearchKey(query, page)
	if key == "" {
		return Result[[]tmdb.Movie]{Data: []tmdb.Movie{}}, nil
	}
	return loadPage(ctx, h.cache, key, h.searchFetcher(query, page))
}

// LoadByGenre blocks until one page of genre discovery is available.
func (h *Hooks) LoadByGenre(ctx context.Context, rawIDs []string, page int) (Result[[]tmdb.Movie], error) {
	ids := NormalizeGenreIDs(rawIDs)
	key := DiscoverKey(ids, page)
	if key == "" {
		return Result[[]tmdb.Movie]{Data: []tmdb.Movie{}}, nil
	}
	return loadPage(ctx, h.cache, key, h.genreFetcher(ids, page))
}

// LoadDetails blocks until a movie's details are available.
func (h *Hooks) LoadDetails(ctx context.Context, id int) (Result[*tmdb.MovieDetails], error) {
	key := DetailsKey(id)
	if key == "" {
		return Result[*tmdb.MovieDetails]{}, nil
	}
	return loadValue[*tmdb.MovieDetails](ctx, h.cache, key, h.detailsFetcher(id))
}

// LoadVideos blocks until a movie's videos are available.
func (h *Hooks) LoadVideos(ctx context.Context, id int) (Result[[]tmdb.Video], error) {
	key := VideosKey(id)
	if key == "" {
		return Result[[]tmdb.Video]{Data: []tmdb.Video{}}, nil
	}
	return loadValue[[]tmdb.Video](ctx, h.cache, key, h.videosFetcher(id))
}

// LoadGenres blocks until the genre catalog is available.
func (h *Hooks) LoadGenres(ctx context.Context) (Result[[]tmdb.Genre], error) {
	return loadValue[[]tmdb.Genre](ctx, h.cache, GenresKey, h.genresFetcher())
}

// --- fetchers ---

func (h *Hooks) listFetcher(kind tmdb.Kind, page int) swr.Fetcher {
	return func(ctx context.Context) (any, error) {
		p, err := h.catalog.FetchPage(ctx, kind, page)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func (h *Hooks) searchFetcher(query string, page int) swr.Fetcher {
	return func(ctx context.Context) (any, error) {
		p, err := h.catalog.SearchMovies(ctx, query, page)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func (h *Hooks) genreFetcher(ids []int, page int) swr.Fetcher {
	return func(ctx context.Context) (any, error) {
		p, err := h.catalog.GetMoviesByGenre(ctx, ids, page)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func (h *Hooks) detailsFetcher(id int) swr.Fetcher {
	return func(ctx context.Context) (any, error) {
		d, err := h.catalog.GetMovieDetails(ctx, id)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

func (h *Hooks) videosFetcher(id int) swr.Fetcher {
	return func(ctx context.Context) (any, error) {
		v, err := h.catalog.GetMovieVideos(ctx, id)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func (h *Hooks) genresFetcher() swr.Fetcher {
	return func(ctx context.Context) (any, error) {
		g, err := h.catalog.GetGenreList(ctx)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
}

// --- snapshot conversion ---

func pageResult(snap swr.Snapshot) Result[[]tmdb.Movie] {
	r := Result[[]tmdb.Movie]{
		Key:          snap.Key,
		Data:         []tmdb.Movie{},
		IsLoading:    snap.Loading && !snap.HasData,
		IsValidating: snap.Loading,
		Err:          snap.Err,
	}
	if p, ok := snap.Data.(*tmdb.Page); ok && p != nil {
		fillPage(&r, p)
	}
	return r
}

func valueResult[T any](snap swr.Snapshot) Result[T] {
	r := Result[T]{
		Key:          snap.Key,
		IsLoading:    snap.Loading && !snap.HasData,
		IsValidating: snap.Loading,
		Err:          snap.Err,
	}
	if v, ok := snap.Data.(T); ok {
		r.Data = v
	}
	return r
}

func loadPage(ctx context.Context, cache *swr.Cache, key string, fetch swr.Fetcher) (Result[[]tmdb.Movie], error) {
	r := Result[[]tmdb.Movie]{Key: key, Data: []tmdb.Movie{}}
	v, err := cache.Load(ctx, key, fetch)
	if err != nil {
		r.Err = err
		return r, err
	}
	if p, ok := v.(*tmdb.Page); ok && p != nil {
		fillPage(&r, p)
	}
	return r, nil
}

func loadValue[T any](ctx context.Context, cache *swr.Cache, key string, fetch swr.Fetcher) (Result[T], error) {
	r := Result[T]{Key: key}
	v, err := cache.Load(ctx, key, fetch)
	if err != nil {
		r.Err = err
		return r, err
	}
	if t, ok := v.(T); ok {
		r.Data = t
	}
	return r, nil
}

func fillPage(r *Result[[]tmdb.Movie], p *tmdb.Page) {
	if p.Results != nil {
		r.Data = p.Results
	}
	r.TotalPages = p.TotalPages
	r.TotalResults = p.TotalResults
}
