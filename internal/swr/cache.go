// Package swr implements a stale-while-revalidate fetch cache keyed by a
// canonical request descriptor.
package swr

import (
	"container/list"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrClosed is returned by reads after Close.
var ErrClosed = errors.New("swr: cache closed")

// Defaults used when Options leaves a field zero.
const (
	DefaultFresh        = 60 * time.Second
	DefaultCapacity     = 256
	DefaultFetchTimeout = 15 * time.Second
)

// Fetcher loads the value for one key. The context is owned by the cache,
// not by any single reader, because one fetch serves every reader of the key.
// A failed fetch is cached like a successful one: until the entry goes stale
// or is invalidated, Read and Load both report the stored error instead of
// fetching again.
type Fetcher func(ctx context.Context) (any, error)

// Snapshot is the observable state of one key.
type Snapshot struct {
	Key       string
	Data      any
	HasData   bool
	Err       error
	Loading   bool // a fetch for this key is in flight
	UpdatedAt time.Time
}

// Options configures a Cache.
type Options struct {
	Fresh        time.Duration // how long data is served without revalidation
	Capacity     int           // max entries; in-flight and subscribed entries are never evicted
	FetchTimeout time.Duration
	Logger       *slog.Logger
	Now          func() time.Time
}

type entry struct {
	key       string
	data      any
	hasData   bool
	err       error
	updatedAt time.Time
	inflight  bool
	gen       uint64
}

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
	subs    map[string]map[uint64]func(Snapshot)
	nextSub uint64
	nextGen uint64
	closed  bool

	group  singleflight.Group
	ctx    context.Context
	cancel context.CancelFunc

	fresh        time.Duration
	capacity     int
	fetchTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// New creates a Cache.
func New(opts Options) *Cache {
	if opts.Fresh <= 0 {
		opts.Fresh = DefaultFresh
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		entries:      make(map[string]*list.Element),
		lru:          list.New(),
		subs:         make(map[string]map[uint64]func(Snapshot)),
		ctx:          ctx,
		cancel:       cancel,
		fresh:        opts.Fresh,
		capacity:     opts.Capacity,
		fetchTimeout: opts.FetchTimeout,
		now:          opts.Now,
		logger:       opts.Logger,
	}
}

// Read returns the current state of key without blocking. A miss starts a
// fetch and reports Loading. A stale hit returns the cached data and starts a
// background revalidation.
func (c *Cache) Read(key string, fetch Fetcher) Snapshot {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Snapshot{Key: key, Err: ErrClosed}
	}
	e := c.lookup(key)
	if e == nil {
		e = c.insert(key)
	}
	started := false
	if !e.inflight && !c.isFresh(e) {
		c.startLocked(e, fetch)
		started = true
	}
	snap := e.snapshot()
	var subs []func(Snapshot)
	if started {
		subs = c.subscribersLocked(key)
	}
	c.mu.Unlock()

	// Subscribers learn about the Loading transition too.
	notify(subs, snap)
	return snap
}

// Load returns fresh data for key, fetching if needed, and blocks until the
// fetch completes or ctx is done. A fresh entry holding an error returns that
// error without refetching, the same as Read.
func (c *Cache) Load(ctx context.Context, key string, fetch Fetcher) (any, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	e := c.lookup(key)
	if e == nil {
		e = c.insert(key)
	}
	if !e.inflight && c.isFresh(e) {
		data, err := e.data, e.err
		c.mu.Unlock()
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	ch := c.startLocked(e, fetch)
	c.mu.Unlock()

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Peek returns the state of key without starting a fetch.
func (c *Cache) Peek(key string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.lookup(key)
	if e == nil {
		return Snapshot{Key: key}, false
	}
	return e.snapshot(), true
}

// Subscribe registers fn to be called on every state change of key.
// fn runs on the goroutine that caused the change and must not block.
func (c *Cache) Subscribe(key string, fn func(Snapshot)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSub++
	id := c.nextSub
	if c.subs[key] == nil {
		c.subs[key] = make(map[uint64]func(Snapshot))
	}
	c.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs[key], id)
			if len(c.subs[key]) == 0 {
				delete(c.subs, key)
			}
		})
	}
}

// Invalidate drops key. A fetch already in flight for it completes but its
// result is discarded.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.lru.Remove(el)
		delete(c.entries, key)
	}
	c.group.Forget(key)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Close cancels in-flight fetches and rejects further reads.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.subs = make(map[string]map[uint64]func(Snapshot))
	c.mu.Unlock()
	c.cancel()
}

// startLocked begins (or joins) the fetch for e. c.mu must be held.
func (c *Cache) startLocked(e *entry, fetch Fetcher) <-chan singleflight.Result {
	e.inflight = true
	key, gen := e.key, e.gen
	return c.group.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(c.ctx, c.fetchTimeout)
		defer cancel()
		start := c.now()
		v, err := fetch(ctx)
		if err != nil {
			c.logger.Debug("fetch failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		} else {
			c.logger.Debug("fetched",
				slog.String("key", key),
				slog.Duration("elapsed", c.now().Sub(start)),
			)
		}
		c.complete(key, gen, v, err)
		return v, err
	})
}

// complete stores a fetch result and notifies subscribers. On error the
// previously cached data is kept and served alongside the error.
func (c *Cache) complete(key string, gen uint64, v any, err error) {
	c.mu.Lock()
	el, ok := c.entries[key]
	if !ok || c.closed {
		c.mu.Unlock()
		return
	}
	e := el.Value.(*entry)
	if e.gen != gen {
		c.mu.Unlock()
		return
	}
	e.inflight = false
	e.updatedAt = c.now()
	if err != nil {
		e.err = err
	} else {
		e.data = v
		e.hasData = true
		e.err = nil
	}
	snap := e.snapshot()
	subs := c.subscribersLocked(key)
	c.mu.Unlock()

	notify(subs, snap)
}

func (c *Cache) lookup(key string) *entry {
	el, ok := c.entries[key]
	if !ok {
		return nil
	}
	c.lru.MoveToFront(el)
	return el.Value.(*entry)
}

func (c *Cache) insert(key string) *entry {
	c.nextGen++
	e := &entry{key: key, gen: c.nextGen}
	c.entries[key] = c.lru.PushFront(e)
	c.evictLocked()
	return e
}

// evictLocked removes least recently used entries that nobody references.
func (c *Cache) evictLocked() {
	el := c.lru.Back()
	for c.lru.Len() > c.capacity && el != nil && el != c.lru.Front() {
		prev := el.Prev()
		e := el.Value.(*entry)
		if !e.inflight && len(c.subs[e.key]) == 0 {
			c.lru.Remove(el)
			delete(c.entries, e.key)
		}
		el = prev
	}
}

func (c *Cache) isFresh(e *entry) bool {
	if e.updatedAt.IsZero() {
		return false
	}
	return c.now().Sub(e.updatedAt) < c.fresh
}

func (c *Cache) subscribersLocked(key string) []func(Snapshot) {
	m := c.subs[key]
	if len(m) == 0 {
		return nil
	}
	out := make([]func(Snapshot), 0, len(m))
	for _, fn := range m {
		out = append(out, fn)
	}
	return out
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{
		Key:       e.key,
		Data:      e.data,
		HasData:   e.hasData,
		Err:       e.err,
		Loading:   e.inflight,
		UpdatedAt: e.updatedAt,
	}
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
