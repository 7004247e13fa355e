// Package search holds the shared search-query state and keeps it in step
// with the navigable location.
package search

import (
	"strings"
	"sync"
	"unicode/utf8"
)

// MinSuggestLen is the shortest query that triggers live suggestions.
const MinSuggestLen = 2

// Origin tags who caused a store update.
type Origin int

const (
	OriginUser Origin = iota // typed by the user
	OriginURL                // copied from the location
)

func (o Origin) String() string {
	if o == OriginURL {
		return "url"
	}
	return "user"
}

// Update is delivered to store subscribers.
type Update struct {
	Value  string
	Origin Origin
}

// Store is the application's current search query. It is created once at
// the application root and passed to every surface that reads or writes it.
// Writes are last-write-wins and subscribers are notified synchronously.
type Store struct {
	mu     sync.Mutex
	value  string
	subs   map[uint64]func(Update)
	nextID uint64
	closed bool
}

// NewStore creates a Store holding initial.
func NewStore(initial string) *Store {
	return &Store{
		value: initial,
		subs:  make(map[uint64]func(Update)),
	}
}

// Get returns the current query.
func (s *Store) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the query on behalf of the user.
func (s *Store) Set(value string) {
	s.SetFrom(value, OriginUser)
}

// SetFrom replaces the query and tags the update with origin. Writes after
// Close are ignored.
func (s *Store) SetFrom(value string, origin Origin) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.value = value
	subs := make([]func(Update), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	up := Update{Value: value, Origin: origin}
	for _, fn := range subs {
		fn(up)
	}
}

// Subscribe registers fn for every subsequent write.
func (s *Store) Subscribe(fn func(Update)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close drops all subscribers and freezes the value.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = make(map[uint64]func(Update))
}

// ShouldSuggest reports whether query is long enough for live suggestions.
func ShouldSuggest(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= MinSuggestLen
}
