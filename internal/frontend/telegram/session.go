package telegram

import (
	"sync"

	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
)

type viewMode int

const (
	viewList viewMode = iota
	viewSearch
	viewGenre
)

// view is the paginated listing a user last opened. Page callbacks replay it
// with a different page number.
type view struct {
	mode      viewMode
	kind      tmdb.Kind
	query     string
	genreIDs  []int
	genreName string
	page      int
}

// sessionManager tracks per-user views and access control.
type sessionManager struct {
	mu      sync.Mutex
	views   map[int64]view
	allowed map[int64]bool // nil or empty = allow all
}

// newSessionManager creates a session manager.
// If allowedUserIDs is empty, all users are allowed.
func newSessionManager(allowedUserIDs []int64) *sessionManager {
	allowed := make(map[int64]bool, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = true
	}
	return &sessionManager{
		views:   make(map[int64]view),
		allowed: allowed,
	}
}

// isAllowed checks if a user is authorized to use the bot.
func (sm *sessionManager) isAllowed(userID int64) bool {
	if len(sm.allowed) == 0 {
		return true
	}
	return sm.allowed[userID]
}

// current returns the user's last view.
func (sm *sessionManager) current(userID int64) (view, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	v, ok := sm.views[userID]
	return v, ok
}

func (sm *sessionManager) set(userID int64, v view) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.views[userID] = v
}

// reset forgets a user's view, so stale page buttons stop working.
func (sm *sessionManager) reset(userID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.views, userID)
}
