package telegram

import (
	"fmt"
	"strings"

	"github.com/vadimtrunov/MovieHub/internal/details"
	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
)

// maxOverview caps the overview length in detail messages.
const maxOverview = 600

// mdV2Replacer escapes special characters for Telegram MarkdownV2.
var mdV2Replacer = strings.NewReplacer(
	`\`, `\\`,
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMdV2 escapes a string for safe use in Telegram MarkdownV2.
func EscapeMdV2(s string) string {
	return mdV2Replacer.Replace(s)
}

// FormatBold returns MarkdownV2 bold text.
func FormatBold(s string) string {
	return "*" + EscapeMdV2(s) + "*"
}

// FormatItalic returns MarkdownV2 italic text.
func FormatItalic(s string) string {
	return "_" + EscapeMdV2(s) + "_"
}

// FormatRating renders a 0-10 vote average as "★ 7.5", or "" when unrated.
func FormatRating(vote float64) string {
	if vote <= 0 {
		return ""
	}
	return fmt.Sprintf("★ %.1f", vote)
}

// MovieLabel is the plain one-line label of a movie: "Title (Year)".
func MovieLabel(m tmdb.Movie) string {
	if y := details.ReleaseYear(m.ReleaseDate); y != "" {
		return fmt.Sprintf("%s (%s)", m.Title, y)
	}
	return m.Title
}

// FormatMovieList renders a numbered MarkdownV2 list starting at first.
func FormatMovieList(movies []tmdb.Movie, first int) string {
	var sb strings.Builder
	for i, m := range movies {
		line := fmt.Sprintf("%d. %s", first+i, MovieLabel(m))
		if r := FormatRating(m.VoteAverage); r != "" {
			line += " " + r
		}
		sb.WriteString(EscapeMdV2(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatDetails renders the detail view as MarkdownV2.
func FormatDetails(p details.Page) string {
	m := p.Movie
	var sb strings.Builder

	title := m.Title
	if p.Year != "" {
		title += " (" + p.Year + ")"
	}
	sb.WriteString(FormatBold(title))
	sb.WriteByte('\n')
	if m.Tagline != "" {
		sb.WriteString(FormatItalic(m.Tagline))
		sb.WriteByte('\n')
	}

	var facts []string
	if r := FormatRating(m.VoteAverage); r != "" {
		facts = append(facts, r)
	}
	if m.Runtime > 0 {
		facts = append(facts, fmt.Sprintf("%dh %02dm", m.Runtime/60, m.Runtime%60))
	}
	if len(m.Genres) > 0 {
		names := make([]string, 0, len(m.Genres))
		for _, g := range m.Genres {
			names = append(names, g.Name)
		}
		facts = append(facts, strings.Join(names, ", "))
	}
	if len(facts) > 0 {
		sb.WriteString(EscapeMdV2(strings.Join(facts, " · ")))
		sb.WriteByte('\n')
	}

	if m.Overview != "" {
		overview := m.Overview
		if len([]rune(overview)) > maxOverview {
			overview = string([]rune(overview)[:maxOverview]) + "…"
		}
		sb.WriteString("\n" + EscapeMdV2(overview) + "\n")
	}

	sb.WriteByte('\n')
	writeField(&sb, "Director", details.Names(p.Directors))
	writeField(&sb, "Writers", writerNames(p.Writers))
	if len(p.Cast) > 0 {
		cast := make([]string, 0, len(p.Cast))
		for _, c := range p.Cast {
			if c.Character != "" {
				cast = append(cast, c.Name+" as "+c.Character)
			} else {
				cast = append(cast, c.Name)
			}
		}
		writeField(&sb, "Cast", strings.Join(cast, ", "))
	}
	return sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString(FormatBold(label+":") + " " + EscapeMdV2(value) + "\n")
}

// writerNames lists each writer with their merged jobs, e.g.
// "Jane Doe (Screenplay, Story)".
func writerNames(crew []tmdb.CrewMember) string {
	names := make([]string, 0, len(crew))
	for _, c := range crew {
		if c.Job != "" {
			names = append(names, c.Name+" ("+c.Job+")")
		} else {
			names = append(names, c.Name)
		}
	}
	return strings.Join(names, ", ")
}
