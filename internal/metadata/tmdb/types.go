package tmdb

// Movie represents a movie from TMDb list and search results.
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int   `json:"genre_ids"`
}

// MovieDetails represents a movie fetched with credits, similar and
// recommendations appended.
type MovieDetails struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	Overview        string  `json:"overview"`
	ReleaseDate     string  `json:"release_date,omitempty"`
	PosterPath      string  `json:"poster_path"`
	BackdropPath    string  `json:"backdrop_path"`
	VoteAverage     float64 `json:"vote_average"`
	Popularity      float64 `json:"popularity"`
	Runtime         int     `json:"runtime"`
	Status          string  `json:"status"`
	Tagline         string  `json:"tagline"`
	IMDbID          string  `json:"imdb_id"`
	Genres          []Genre `json:"genres"`
	Credits         Credits `json:"credits"`
	Similar         Page    `json:"similar"`
	Recommendations Page    `json:"recommendations"`
}

// Summary returns the list-shaped view of the details.
func (d *MovieDetails) Summary() Movie {
	ids := make([]int, 0, len(d.Genres))
	for _, g := range d.Genres {
		ids = append(ids, g.ID)
	}
	return Movie{
		ID:           d.ID,
		Title:        d.Title,
		Overview:     d.Overview,
		ReleaseDate:  d.ReleaseDate,
		PosterPath:   d.PosterPath,
		BackdropPath: d.BackdropPath,
		VoteAverage:  d.VoteAverage,
		Popularity:   d.Popularity,
		GenreIDs:     ids,
	}
}

// Genre represents a movie genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Credits holds the cast and crew of a movie.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// CastMember is an actor credit.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// CrewMember is a crew credit. The same person appears once per job.
type CrewMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path"`
}

// Video is a trailer, teaser or clip hosted on an external platform.
type Video struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// Page is one page of a paginated list endpoint.
type Page struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// videosResponse wraps the /movie/{id}/videos response.
type videosResponse struct {
	ID      int     `json:"id"`
	Results []Video `json:"results"`
}

// genresResponse wraps the /genre/movie/list response.
type genresResponse struct {
	Genres []Genre `json:"genres"`
}

// errorResponse is the body TMDb returns on failures.
type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
