package hooks

import "sync"

// Tracker remembers which cache key each view currently wants, so responses
// for keys a view has moved away from can be dropped.
type Tracker struct {
	mu      sync.Mutex
	current map[string]string
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{current: make(map[string]string)}
}

// Want records key as the current key of view.
func (t *Tracker) Want(view, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current[view] = key
}

// Accept reports whether a response for key is still wanted by view.
func (t *Tracker) Accept(view, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.current[view]
	return ok && cur == key
}

// Current returns the key view wants, if any.
func (t *Tracker) Current(view string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key, ok := t.current[view]
	return key, ok
}

// Forget drops view.
func (t *Tracker) Forget(view string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.current, view)
}
