package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadimtrunov/MovieHub/internal/carousel"
	"github.com/vadimtrunov/MovieHub/internal/details"
	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
	"github.com/vadimtrunov/MovieHub/internal/pagination"
)

const carouselLabelWidth = 18

// theme is a palette for the terminal browser. Only the in-memory choice
// is kept; nothing is persisted.
type theme struct {
	name     string
	title    lipgloss.Style
	text     lipgloss.Style
	dim      lipgloss.Style
	accent   lipgloss.Style
	rating   lipgloss.Style
	errStyle lipgloss.Style
	selected lipgloss.Style
}

var (
	darkTheme = theme{
		name:     "dark",
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		text:     lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		rating:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		errStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		selected: lipgloss.NewStyle().Reverse(true),
	}
	lightTheme = theme{
		name:     "light",
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("54")),
		text:     lipgloss.NewStyle().Foreground(lipgloss.Color("0")),
		dim:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("25")).Bold(true),
		rating:   lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		errStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		selected: lipgloss.NewStyle().Reverse(true),
	}
)

// movieLabel is "Title (Year)".
func movieLabel(m tmdb.Movie) string {
	if y := details.ReleaseYear(m.ReleaseDate); y != "" {
		return fmt.Sprintf("%s (%s)", m.Title, y)
	}
	return m.Title
}

func ratingText(vote float64) string {
	if vote <= 0 {
		return ""
	}
	return fmt.Sprintf("★ %.1f", vote)
}

// renderMovieList renders a numbered list. cursor < 0 highlights nothing.
func renderMovieList(t theme, movies []tmdb.Movie, cursor int) string {
	var sb strings.Builder
	for i, m := range movies {
		line := fmt.Sprintf("%2d. %s", i+1, movieLabel(m))
		if i == cursor {
			line = t.selected.Render(line)
		} else {
			line = t.text.Render(line)
		}
		if r := ratingText(m.VoteAverage); r != "" {
			line += "  " + t.rating.Render(r)
		}
		line += "  " + t.dim.Render(fmt.Sprintf("#%d", m.ID))
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// renderPageBar renders "‹ 1 2 [3] 4 5 … 10 ›", or "" with nothing to page.
func renderPageBar(t theme, p *pagination.Pager) string {
	items := p.Items()
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(items)+2)
	parts = append(parts, arrow(t, "‹", p.CanPrev()))
	for _, it := range items {
		switch {
		case it.Ellipsis:
			parts = append(parts, t.dim.Render("…"))
		case it.Current:
			parts = append(parts, t.accent.Render(fmt.Sprintf("[%d]", it.Page)))
		default:
			parts = append(parts, t.text.Render(fmt.Sprintf("%d", it.Page)))
		}
	}
	parts = append(parts, arrow(t, "›", p.CanNext()))
	return strings.Join(parts, " ")
}

func arrow(t theme, s string, enabled bool) string {
	if enabled {
		return t.accent.Render(s)
	}
	return t.dim.Render(s)
}

// renderGenres renders the genre picker.
func renderGenres(t theme, genres []tmdb.Genre, cursor int) string {
	var sb strings.Builder
	for i, g := range genres {
		line := fmt.Sprintf("%-20s", g.Name)
		if i == cursor {
			line = t.selected.Render(line)
		} else {
			line = t.text.Render(line)
		}
		sb.WriteString(line + " " + t.dim.Render(fmt.Sprintf("%d", g.ID)) + "\n")
	}
	return sb.String()
}

// renderCarousel renders one titled carousel row. col < 0 highlights nothing.
func renderCarousel(t theme, title string, c *carousel.Carousel[tmdb.Movie], col int) string {
	header := t.title.Render(title)
	if c.TotalPages() > 1 {
		header += "  " + t.dim.Render(fmt.Sprintf("‹ %d/%d ›", c.Current(), c.TotalPages()))
	}
	visible := c.Visible()
	if len(visible) == 0 {
		return header + "\n" + t.dim.Render("  Loading...") + "\n"
	}
	cells := make([]string, 0, len(visible))
	for i, m := range visible {
		label := truncate(m.Title, carouselLabelWidth)
		cell := lipgloss.NewStyle().Width(carouselLabelWidth).Render(label)
		if i == col {
			cell = t.selected.Render(cell)
		} else {
			cell = t.text.Render(cell)
		}
		cells = append(cells, cell)
	}
	return header + "\n" + strings.Join(cells, t.dim.Render(" │ ")) + "\n"
}

// renderShowcase renders the current now-playing highlight.
func renderShowcase(t theme, c *carousel.Carousel[tmdb.Movie], focused bool, width int) string {
	visible := c.Visible()
	if len(visible) == 0 {
		return t.dim.Render("Loading now playing...") + "\n"
	}
	m := visible[0]
	title := movieLabel(m)
	if focused {
		title = t.selected.Render(title)
	} else {
		title = t.accent.Render(title)
	}
	head := t.title.Render("Now Playing") + "  " + title
	if r := ratingText(m.VoteAverage); r != "" {
		head += "  " + t.rating.Render(r)
	}
	head += "  " + t.dim.Render(fmt.Sprintf("%d/%d", c.Current(), c.TotalPages()))
	overview := wrap(truncate(m.Overview, 240), width)
	return head + "\n" + t.dim.Render(overview) + "\n"
}

// renderDetails renders the detail view. cursor indexes the similar preview.
func renderDetails(t theme, p details.Page, cursor, width int) string {
	m := p.Movie
	var sb strings.Builder

	title := m.Title
	if p.Year != "" {
		title += " (" + p.Year + ")"
	}
	sb.WriteString(t.title.Render(title) + "\n")
	if m.Tagline != "" {
		sb.WriteString(t.dim.Render(m.Tagline) + "\n")
	}

	var facts []string
	if r := ratingText(m.VoteAverage); r != "" {
		facts = append(facts, t.rating.Render(r))
	}
	if m.Runtime > 0 {
		facts = append(facts, fmt.Sprintf("%dh %02dm", m.Runtime/60, m.Runtime%60))
	}
	for _, g := range m.Genres {
		facts = append(facts, t.accent.Render(g.Name))
	}
	if len(facts) > 0 {
		sb.WriteString(strings.Join(facts, "  ") + "\n")
	}
	if m.Overview != "" {
		sb.WriteString("\n" + t.text.Render(wrap(m.Overview, width)) + "\n")
	}

	sb.WriteString("\n")
	writeRow(&sb, t, "Director", details.Names(p.Directors))
	if len(p.Writers) > 0 {
		writers := make([]string, 0, len(p.Writers))
		for _, w := range p.Writers {
			writers = append(writers, w.Name+" ("+w.Job+")")
		}
		writeRow(&sb, t, "Writers", strings.Join(writers, ", "))
	}
	if len(p.Cast) > 0 {
		cast := make([]string, 0, len(p.Cast))
		for _, c := range p.Cast {
			if c.Character != "" {
				cast = append(cast, c.Name+" as "+c.Character)
			} else {
				cast = append(cast, c.Name)
			}
		}
		writeRow(&sb, t, "Cast", wrap(strings.Join(cast, ", "), max(width-10, 20)))
	}
	if p.Trailer != nil {
		if u := tmdb.TrailerURL(*p.Trailer); u != "" {
			writeRow(&sb, t, "Trailer", u)
		}
	}
	writeRow(&sb, t, "Poster", p.PosterURL)

	if len(p.Similar) > 0 {
		sb.WriteString("\n" + t.title.Render("Similar titles") + "\n")
		sb.WriteString(renderMovieList(t, p.Similar, cursor))
	}
	return sb.String()
}

func writeRow(sb *strings.Builder, t theme, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString(t.dim.Render(fmt.Sprintf("%-9s", label)) + " " + t.text.Render(value) + "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
