package search

import (
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"
)

// --- test doubles ---

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs due timers in deadline order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

type fakeLocation struct {
	mu       sync.Mutex
	params   map[string]string
	replaces []string
	subs     map[int]func()
	next     int
}

func newFakeLocation(q string) *fakeLocation {
	l := &fakeLocation{params: map[string]string{}, subs: map[int]func(){}}
	if q != "" {
		l.params[QueryParam] = q
	}
	return l
}

func (l *fakeLocation) Query(param string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.params[param]
}

func (l *fakeLocation) ReplaceQuery(param, value string) {
	l.mu.Lock()
	l.params[param] = value
	l.replaces = append(l.replaces, value)
	l.mu.Unlock()
	l.notify()
}

// navigate simulates a user-driven location change (back button, link).
func (l *fakeLocation) navigate(q string) {
	l.mu.Lock()
	l.params[QueryParam] = q
	l.mu.Unlock()
	l.notify()
}

func (l *fakeLocation) notify() {
	l.mu.Lock()
	subs := make([]func(), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

func (l *fakeLocation) Subscribe(fn func()) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	id := l.next
	l.subs[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

func (l *fakeLocation) replaceCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.replaces)
}

func newTestSync(t *testing.T, store *Store, loc *fakeLocation, clock *fakeClock) *URLSync {
	t.Helper()
	s := NewURLSync(store, loc, SyncOptions{
		Clock:  clock,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	s.Start()
	t.Cleanup(s.Stop)
	return s
}

// --- Store ---

func TestStore_LastWriteWinsAndNotifiesSynchronously(t *testing.T) {
	s := NewStore("")
	var got []Update
	cancel := s.Subscribe(func(u Update) { got = append(got, u) })

	s.Set("a")
	s.Set("ab")
	s.SetFrom("xyz", OriginURL)

	if s.Get() != "xyz" {
		t.Errorf("Get = %q, want xyz", s.Get())
	}
	if len(got) != 3 {
		t.Fatalf("notifications = %d, want 3", len(got))
	}
	if got[1].Value != "ab" || got[1].Origin != OriginUser {
		t.Errorf("second update = %+v", got[1])
	}
	if got[2].Origin != OriginURL {
		t.Errorf("third update origin = %v, want url", got[2].Origin)
	}

	cancel()
	s.Set("after cancel")
	if len(got) != 3 {
		t.Error("canceled subscriber was notified")
	}
}

func TestStore_IgnoresWritesAfterClose(t *testing.T) {
	s := NewStore("dune")
	called := false
	s.Subscribe(func(Update) { called = true })
	s.Close()
	s.Set("matrix")

	if s.Get() != "dune" {
		t.Errorf("Get = %q, want dune", s.Get())
	}
	if called {
		t.Error("subscriber called after Close")
	}
}

func TestShouldSuggest(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"a", false},
		{" a ", false},
		{"ab", true},
		{"日本", true},
	}
	for _, tt := range tests {
		if got := ShouldSuggest(tt.in); got != tt.want {
			t.Errorf("ShouldSuggest(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// --- Debouncer ---

func TestDebouncer(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := NewDebouncer(500 * time.Millisecond)

	if _, ok := d.Expire(start); ok {
		t.Fatal("idle debouncer emitted")
	}

	d.Write("a", start)
	deadline := d.Write("ab", start.Add(200*time.Millisecond))
	if want := start.Add(700 * time.Millisecond); !deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", deadline, want)
	}
	if d.State() != Pending {
		t.Errorf("state = %v, want pending", d.State())
	}

	if _, ok := d.Expire(start.Add(600 * time.Millisecond)); ok {
		t.Error("emitted before the reset deadline")
	}

	v, ok := d.Expire(start.Add(700 * time.Millisecond))
	if !ok || v != "ab" {
		t.Errorf("Expire = %q, %v, want ab, true", v, ok)
	}
	if d.State() != Idle {
		t.Errorf("state after emit = %v, want idle", d.State())
	}
	if _, ok := d.Expire(start.Add(time.Second)); ok {
		t.Error("emitted twice")
	}
}

// --- URLSync ---

func TestURLSync_RapidWritesProduceOneUpdate(t *testing.T) {
	store := NewStore("")
	loc := newFakeLocation("")
	clock := newFakeClock()
	newTestSync(t, store, loc, clock)

	for _, v := range []string{"d", "du", "dun", "dune"} {
		store.Set(v)
		clock.Advance(100 * time.Millisecond)
	}
	if n := loc.replaceCount(); n != 0 {
		t.Fatalf("location updated %d times inside the debounce window", n)
	}

	clock.Advance(399 * time.Millisecond)
	if n := loc.replaceCount(); n != 0 {
		t.Fatalf("location updated before the delay elapsed")
	}

	clock.Advance(time.Millisecond)
	if n := loc.replaceCount(); n != 1 {
		t.Fatalf("location updates = %d, want 1", n)
	}
	if got := loc.Query(QueryParam); got != "dune" {
		t.Errorf("location q = %q, want dune", got)
	}
	if store.Get() != loc.Query(QueryParam) {
		t.Error("store and location did not converge")
	}

	clock.Advance(5 * time.Second)
	if n := loc.replaceCount(); n != 1 {
		t.Errorf("location updates after quiet period = %d, want 1", n)
	}
}

func TestURLSync_SeedsStoreFromLocation(t *testing.T) {
	store := NewStore("")
	loc := newFakeLocation("matrix")
	clock := newFakeClock()
	newTestSync(t, store, loc, clock)

	if store.Get() != "matrix" {
		t.Errorf("store = %q, want matrix", store.Get())
	}
	clock.Advance(time.Second)
	if n := loc.replaceCount(); n != 0 {
		t.Errorf("seeding caused %d location updates", n)
	}
}

func TestURLSync_LocationChangeDoesNotFeedBack(t *testing.T) {
	store := NewStore("")
	loc := newFakeLocation("")
	clock := newFakeClock()
	newTestSync(t, store, loc, clock)

	var origins []Origin
	store.Subscribe(func(u Update) { origins = append(origins, u.Origin) })

	loc.navigate("alien")
	if store.Get() != "alien" {
		t.Fatalf("store = %q, want alien", store.Get())
	}
	if len(origins) != 1 || origins[0] != OriginURL {
		t.Errorf("origins = %v, want [url]", origins)
	}

	clock.Advance(time.Second)
	if n := loc.replaceCount(); n != 0 {
		t.Errorf("URL-originated update re-entered the debouncer: %d replaces", n)
	}
}

func TestURLSync_NavigationCancelsPendingWrite(t *testing.T) {
	store := NewStore("")
	loc := newFakeLocation("")
	clock := newFakeClock()
	s := newTestSync(t, store, loc, clock)

	store.Set("typed")
	if !s.Pending() {
		t.Fatal("expected a pending write")
	}
	loc.navigate("navigated")
	clock.Advance(time.Second)

	if loc.replaceCount() != 0 {
		t.Error("superseded write reached the location")
	}
	if store.Get() != "navigated" || loc.Query(QueryParam) != "navigated" {
		t.Errorf("store=%q location=%q, want both navigated", store.Get(), loc.Query(QueryParam))
	}
}

func TestURLSync_SkipsUnchangedValue(t *testing.T) {
	store := NewStore("")
	loc := newFakeLocation("dune")
	clock := newFakeClock()
	newTestSync(t, store, loc, clock)

	store.Set("dun")
	store.Set("dune")
	clock.Advance(time.Second)

	if n := loc.replaceCount(); n != 0 {
		t.Errorf("location updated %d times with an unchanged value", n)
	}
}

func TestURLSync_StopDropsPending(t *testing.T) {
	store := NewStore("")
	loc := newFakeLocation("")
	clock := newFakeClock()
	s := NewURLSync(store, loc, SyncOptions{Clock: clock, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	s.Start()

	store.Set("interstellar")
	s.Stop()
	clock.Advance(time.Second)

	if n := loc.replaceCount(); n != 0 {
		t.Errorf("location updated %d times after Stop", n)
	}
}
