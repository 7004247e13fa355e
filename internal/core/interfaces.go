package core

import (
	"context"

	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
)

// Catalog defines the movie metadata operations the front ends depend on.
// *tmdb.Client implements it; tests substitute fakes.
type Catalog interface {
	// FetchPage returns one page of a fixed list (popular, top rated, ...)
	FetchPage(ctx context.Context, kind tmdb.Kind, page int) (*tmdb.Page, error)

	// SearchMovies searches movies by title
	SearchMovies(ctx context.Context, query string, page int) (*tmdb.Page, error)

	// GetMoviesByGenre discovers movies matching every genre id
	GetMoviesByGenre(ctx context.Context, genreIDs []int, page int) (*tmdb.Page, error)

	// GetMovieDetails returns a movie with credits and related titles
	GetMovieDetails(ctx context.Context, id int) (*tmdb.MovieDetails, error)

	// GetMovieVideos lists trailers and clips for a movie
	GetMovieVideos(ctx context.Context, id int) ([]tmdb.Video, error)

	// GetGenreList returns the genre catalog
	GetGenreList(ctx context.Context) ([]tmdb.Genre, error)
}

// Frontend defines the interface for long-running front ends (HTTP API, Telegram)
type Frontend interface {
	// Start runs the frontend until ctx is cancelled
	Start(ctx context.Context) error

	// Name returns the frontend name (e.g., "http", "telegram")
	Name() string
}
