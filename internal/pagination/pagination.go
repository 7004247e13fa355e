// Package pagination computes page-button layouts and clamps navigation.
package pagination

// DefaultLimit caps the number of pages offered by the interactive front ends.
const DefaultLimit = 10

// Layout returns the page numbers to show for current out of total pages.
// limit caps total; limit <= 0 disables the cap. It returns nil when there is
// nothing to paginate.
func Layout(current, total, limit int) []int {
	pages := Capped(total, limit)
	if pages <= 0 {
		return nil
	}
	current = clamp(current, 1, pages)

	switch {
	case pages <= 7:
		return span(1, pages)
	case current <= 4:
		return append(span(1, 5), pages)
	case current >= pages-3:
		return append([]int{1}, span(pages-4, pages)...)
	default:
		return []int{1, current - 1, current, current + 1, pages}
	}
}

// Capped applies limit to total.
func Capped(total, limit int) int {
	if limit > 0 && total > limit {
		return limit
	}
	return total
}

// Item is one control in a rendered page bar.
type Item struct {
	Page     int  // 0 for an ellipsis
	Ellipsis bool
	Current  bool
}

// Items expands Layout into controls, inserting an ellipsis wherever two
// shown pages are not adjacent.
func Items(current, total, limit int) []Item {
	pages := Layout(current, total, limit)
	if len(pages) == 0 {
		return nil
	}
	current = clamp(current, 1, Capped(total, limit))

	items := make([]Item, 0, len(pages)+2)
	for i, p := range pages {
		if i > 0 && p-pages[i-1] > 1 {
			items = append(items, Item{Ellipsis: true})
		}
		items = append(items, Item{Page: p, Current: p == current})
	}
	return items
}

// Pager is the navigation state of one paginated view.
type Pager struct {
	Current int
	Total   int
	Limit   int
	Loading bool // navigation is disabled while the current page loads
}

// NewPager creates a Pager on page 1 with DefaultLimit.
func NewPager(total int) *Pager {
	return &Pager{Current: 1, Total: total, Limit: DefaultLimit}
}

// Pages returns the capped page count.
func (p *Pager) Pages() int {
	return Capped(p.Total, p.Limit)
}

// Visible reports whether controls should be rendered at all.
func (p *Pager) Visible() bool {
	return p.Pages() > 1
}

// CanPrev reports whether the previous-page control is enabled.
func (p *Pager) CanPrev() bool {
	return !p.Loading && p.Current > 1
}

// CanNext reports whether the next-page control is enabled.
func (p *Pager) CanNext() bool {
	return !p.Loading && p.Current < p.Pages()
}

// Prev moves one page back.
func (p *Pager) Prev() (int, bool) {
	return p.Goto(p.Current - 1)
}

// Next moves one page forward.
func (p *Pager) Next() (int, bool) {
	return p.Goto(p.Current + 1)
}

// Goto moves to page n clamped into range. It reports whether the page
// changed; nothing moves while loading.
func (p *Pager) Goto(n int) (int, bool) {
	if p.Loading || p.Pages() <= 0 {
		return p.Current, false
	}
	n = clamp(n, 1, p.Pages())
	if n == p.Current {
		return n, false
	}
	p.Current = n
	return n, true
}

// SetTotal updates the total after a fetch and keeps Current in range.
func (p *Pager) SetTotal(total int) {
	p.Total = total
	if pages := p.Pages(); pages > 0 && p.Current > pages {
		p.Current = pages
	}
	if p.Current < 1 {
		p.Current = 1
	}
}

// Items returns the controls for the current state.
func (p *Pager) Items() []Item {
	if !p.Visible() {
		return nil
	}
	return Items(p.Current, p.Total, p.Limit)
}

func span(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
