// Package carousel windows an in-memory list into fixed-size pages with
// optional auto-advance.
package carousel

import "time"

const (
	// PageSize is the number of items a carousel shows at once.
	PageSize = 6

	// ShowcaseInterval is how often the showcase advances on its own.
	ShowcaseInterval = 6 * time.Second
)

// Carousel is not safe for concurrent use; front ends drive it from a single
// event loop.
type Carousel[T any] struct {
	items   []T
	size    int
	current int // 1-based
	auto    bool
}

// New creates a carousel on page 1 with auto-advance enabled.
// A non-positive size falls back to PageSize.
func New[T any](items []T, size int) *Carousel[T] {
	if size <= 0 {
		size = PageSize
	}
	return &Carousel[T]{items: items, size: size, current: 1, auto: true}
}

// NewShowcase creates a one-item-per-page carousel.
func NewShowcase[T any](items []T) *Carousel[T] {
	return New(items, 1)
}

// SetItems replaces the list and keeps the current page in range.
func (c *Carousel[T]) SetItems(items []T) {
	c.items = items
	if total := c.TotalPages(); c.current > total {
		c.current = max(total, 1)
	}
}

// Len returns the number of items.
func (c *Carousel[T]) Len() int { return len(c.items) }

// TotalPages returns ceil(len/size).
func (c *Carousel[T]) TotalPages() int {
	return (len(c.items) + c.size - 1) / c.size
}

// Current returns the 1-based current page.
func (c *Carousel[T]) Current() int { return c.current }

// AutoAdvance reports whether Tick moves the carousel.
func (c *Carousel[T]) AutoAdvance() bool { return c.auto }

// Page returns the items of page n (1-based), or nil when out of range.
func (c *Carousel[T]) Page(n int) []T {
	if n < 1 || n > c.TotalPages() {
		return nil
	}
	start := (n - 1) * c.size
	end := min(start+c.size, len(c.items))
	return c.items[start:end]
}

// Visible returns the items of the current page.
func (c *Carousel[T]) Visible() []T {
	return c.Page(c.current)
}

// Next moves forward one page, wrapping around. Manual navigation stops
// auto-advance until Reset.
func (c *Carousel[T]) Next() {
	c.auto = false
	c.step(1)
}

// Prev moves back one page, wrapping around, and stops auto-advance.
func (c *Carousel[T]) Prev() {
	c.auto = false
	c.step(-1)
}

// Goto jumps to page n clamped into range and stops auto-advance.
func (c *Carousel[T]) Goto(n int) {
	c.auto = false
	total := c.TotalPages()
	if total == 0 {
		return
	}
	c.current = min(max(n, 1), total)
}

// Tick advances one page when auto-advance is on. It reports whether the
// page changed.
func (c *Carousel[T]) Tick() bool {
	if !c.auto || c.TotalPages() <= 1 {
		return false
	}
	c.step(1)
	return true
}

// Reset returns to page 1 and re-enables auto-advance.
func (c *Carousel[T]) Reset() {
	c.current = 1
	c.auto = true
}

func (c *Carousel[T]) step(delta int) {
	total := c.TotalPages()
	if total == 0 {
		return
	}
	c.current = ((c.current-1+delta)%total+total)%total + 1
}
