package search

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// QueryParam is the location parameter holding the search query.
const QueryParam = "q"

// Location is the navigable URL surface as seen by URLSync.
type Location interface {
	// Query returns the value of a query parameter, or "".
	Query(param string) string
	// ReplaceQuery sets a query parameter in place, without a history entry.
	ReplaceQuery(param, value string)
	// Subscribe calls fn after every location change.
	Subscribe(fn func()) (cancel func())
}

// Timer is the handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock abstracts time for URLSync.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SyncOptions configures URLSync.
type SyncOptions struct {
	Param  string        // defaults to QueryParam
	Delay  time.Duration // defaults to URLDelay
	Clock  Clock
	Logger *slog.Logger
}

// URLSync keeps a Store and a Location parameter converged. The store is
// seeded from the location once at Start; later user writes reach the
// location after Delay of quiet, and only when they differ from it. Location
// changes flow back into the store tagged OriginURL, which the debouncer
// ignores.
type URLSync struct {
	store  *Store
	loc    Location
	param  string
	clock  Clock
	logger *slog.Logger

	mu       sync.Mutex
	deb      *Debouncer
	timer    Timer
	stopped  bool
	applying atomic.Bool

	unsubStore func()
	unsubLoc   func()
}

// NewURLSync creates a URLSync. Call Start to begin syncing.
func NewURLSync(store *Store, loc Location, opts SyncOptions) *URLSync {
	if opts.Param == "" {
		opts.Param = QueryParam
	}
	if opts.Delay <= 0 {
		opts.Delay = URLDelay
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &URLSync{
		store:  store,
		loc:    loc,
		param:  opts.Param,
		clock:  opts.Clock,
		logger: opts.Logger,
		deb:    NewDebouncer(opts.Delay),
	}
}

// Start seeds the store from the location and subscribes to both sides.
func (u *URLSync) Start() {
	if v := u.loc.Query(u.param); v != u.store.Get() {
		u.store.SetFrom(v, OriginURL)
	}
	u.unsubStore = u.store.Subscribe(u.onStore)
	u.unsubLoc = u.loc.Subscribe(u.onLocation)
}

// Stop unsubscribes and drops any pending write.
func (u *URLSync) Stop() {
	u.mu.Lock()
	u.stopped = true
	u.deb.Cancel()
	if u.timer != nil {
		u.timer.Stop()
		u.timer = nil
	}
	u.mu.Unlock()

	if u.unsubStore != nil {
		u.unsubStore()
	}
	if u.unsubLoc != nil {
		u.unsubLoc()
	}
}

// Pending reports whether a store write is waiting to reach the location.
func (u *URLSync) Pending() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.deb.State() == Pending
}

func (u *URLSync) onStore(up Update) {
	if up.Origin == OriginURL {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.stopped {
		return
	}
	now := u.clock.Now()
	deadline := u.deb.Write(up.Value, now)
	if u.timer != nil {
		u.timer.Stop()
	}
	u.timer = u.clock.AfterFunc(deadline.Sub(now), u.fire)
}

func (u *URLSync) fire() {
	u.mu.Lock()
	if u.stopped {
		u.mu.Unlock()
		return
	}
	v, ok := u.deb.Expire(u.clock.Now())
	u.timer = nil
	u.mu.Unlock()
	if !ok {
		return
	}

	if u.loc.Query(u.param) == v {
		return
	}
	u.logger.Debug("search query synced to location",
		slog.String("param", u.param),
		slog.String("value", v),
	)
	u.applying.Store(true)
	u.loc.ReplaceQuery(u.param, v)
	u.applying.Store(false)
}

func (u *URLSync) onLocation() {
	if u.applying.Load() {
		return
	}
	v := u.loc.Query(u.param)

	// A navigation supersedes any write still waiting for the location.
	u.mu.Lock()
	if u.stopped {
		u.mu.Unlock()
		return
	}
	u.deb.Cancel()
	if u.timer != nil {
		u.timer.Stop()
		u.timer = nil
	}
	u.mu.Unlock()

	if v != u.store.Get() {
		u.store.SetFrom(v, OriginURL)
	}
}
