// Package router models the navigable location of the interactive browser:
// a path plus query parameters, with push/replace/back history.
package router

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Route paths.
const (
	PathHome    = "/"
	PathSearch  = "/search"
	PathGenres  = "/genres"
	PathMovies  = "/movies"
	PathSimilar = "/similar"
)

// Location is a path and its query parameters.
type Location struct {
	Path   string
	Params url.Values
}

// Parse parses a path with an optional query string. An empty path is "/".
func Parse(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, err
	}
	path := u.Path
	if path == "" {
		path = PathHome
	}
	return Location{Path: path, Params: u.Query()}, nil
}

// String renders the location with sorted query parameters.
func (l Location) String() string {
	path := l.Path
	if path == "" {
		path = PathHome
	}
	if q := l.Params.Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

// Get returns a query parameter, or "".
func (l Location) Get(param string) string {
	return l.Params.Get(param)
}

// With returns a copy of l with param set; an empty value removes it.
func (l Location) With(param, value string) Location {
	params := url.Values{}
	for k, vs := range l.Params {
		params[k] = append([]string(nil), vs...)
	}
	if value == "" {
		params.Del(param)
	} else {
		params.Set(param, value)
	}
	return Location{Path: l.Path, Params: params}
}

// MovieID returns the id of a /movies/{id} location.
func (l Location) MovieID() (int, bool) {
	rest, ok := strings.CutPrefix(l.Path, PathMovies+"/")
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Home is the landing location.
func Home() Location { return Location{Path: PathHome, Params: url.Values{}} }

// Search is the search location for q.
func Search(q string) Location { return Home().at(PathSearch).With("q", q) }

// Genre is the genre listing location.
func Genre(id int, name string) Location {
	return Home().at(PathGenres).With("id", strconv.Itoa(id)).With("name", name)
}

// Movie is the detail location of a movie.
func Movie(id int) Location { return Home().at(PathMovies + "/" + strconv.Itoa(id)) }

// Similar is the similar-titles location of a movie.
func Similar(id int) Location { return Home().at(PathSimilar).With("id", strconv.Itoa(id)) }

func (l Location) at(path string) Location {
	l.Path = path
	return l
}

// Router holds the navigation history. It is safe for concurrent use;
// subscribers run synchronously after each change, outside the lock.
type Router struct {
	mu      sync.Mutex
	history []Location
	subs    map[uint64]func()
	nextID  uint64
}

// New creates a Router at start.
func New(start Location) *Router {
	if start.Params == nil {
		start.Params = url.Values{}
	}
	return &Router{
		history: []Location{start},
		subs:    make(map[uint64]func()),
	}
}

// Current returns the active location.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history[len(r.history)-1]
}

// Depth returns the number of history entries.
func (r *Router) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

// Push navigates to loc, adding a history entry.
func (r *Router) Push(loc Location) {
	r.mu.Lock()
	r.history = append(r.history, loc)
	r.mu.Unlock()
	r.notify()
}

// Replace swaps the active location without a new history entry.
func (r *Router) Replace(loc Location) {
	r.mu.Lock()
	r.history[len(r.history)-1] = loc
	r.mu.Unlock()
	r.notify()
}

// Back pops one entry. It reports false at the first entry.
func (r *Router) Back() bool {
	r.mu.Lock()
	if len(r.history) <= 1 {
		r.mu.Unlock()
		return false
	}
	r.history = r.history[:len(r.history)-1]
	r.mu.Unlock()
	r.notify()
	return true
}

// Subscribe calls fn after every navigation.
func (r *Router) Subscribe(fn func()) (cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// Query returns a parameter of the active location.
func (r *Router) Query(param string) string {
	return r.Current().Get(param)
}

// ReplaceQuery sets a parameter of the active location in place.
func (r *Router) ReplaceQuery(param, value string) {
	r.Replace(r.Current().With(param, value))
}

func (r *Router) notify() {
	r.mu.Lock()
	subs := make([]func(), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
