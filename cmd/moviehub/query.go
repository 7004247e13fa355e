package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/MovieHub/internal/config"
	"github.com/vadimtrunov/MovieHub/internal/details"
	"github.com/vadimtrunov/MovieHub/internal/hooks"
	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
	"github.com/vadimtrunov/MovieHub/internal/pagination"
)

// oneShotWidth wraps long text in one-shot output.
const oneShotWidth = 80

// queryFunc fetches through the hooks and renders the answer.
type queryFunc func(ctx context.Context, h *hooks.Hooks) (string, error)

func newListCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list <popular|top_rated|upcoming|now_playing>",
		Short: "Show one page of a movie list",
		Example: `  moviehub list popular
  moviehub list top-rated --page 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			kind, ok := tmdb.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("unknown list %q: use popular, top_rated, upcoming or now_playing", args[0])
			}
			return runQuery("Loading "+kind.Title()+"...", func(ctx context.Context, h *hooks.Hooks) (string, error) {
				r, err := h.LoadList(ctx, kind, page)
				if err != nil {
					return "", err
				}
				return renderResultPage(darkTheme, kind.Title(), r, page), nil
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:     "search <title>",
		Short:   "Search movies by title",
		Example: `  moviehub search blade runner`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runQuery("Searching...", func(ctx context.Context, h *hooks.Hooks) (string, error) {
				r, err := h.LoadSearch(ctx, query, page)
				if err != nil {
					return "", err
				}
				return renderResultPage(darkTheme, fmt.Sprintf("Results for %q", query), r, page), nil
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	return cmd
}

func newGenresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List movie genres",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runQuery("Loading genres...", func(ctx context.Context, h *hooks.Hooks) (string, error) {
				r, err := h.LoadGenres(ctx)
				if err != nil {
					return "", err
				}
				return styleHeader.Render("Genres") + "\n" + renderGenres(darkTheme, r.Data, -1), nil
			})
		},
	}
}

func newDiscoverCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "discover <genre-id>...",
		Short: "List movies having every given genre",
		Example: `  moviehub discover 28
  moviehub discover 35 10749 --page 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(hooks.NormalizeGenreIDs(args)) == 0 {
				return fmt.Errorf("no valid genre id in %v: run 'moviehub genres' for the list", args)
			}
			return runQuery("Discovering...", func(ctx context.Context, h *hooks.Hooks) (string, error) {
				r, err := h.LoadByGenre(ctx, args, page)
				if err != nil {
					return "", err
				}
				title := "Genres " + hooks.GenreKey(hooks.NormalizeGenreIDs(args))
				return renderResultPage(darkTheme, title, r, page), nil
			})
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	return cmd
}

func newMovieCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "movie <tmdb-id>",
		Short:   "Show movie details",
		Example: `  moviehub movie 27205`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			return runQuery("Loading movie...", func(ctx context.Context, h *hooks.Hooks) (string, error) {
				r, err := h.LoadDetails(ctx, id)
				if err != nil {
					return "", err
				}
				v, err := h.LoadVideos(ctx, id)
				if err != nil {
					return "", err
				}
				return renderDetails(darkTheme, details.Build(r.Data, v.Data), -1, oneShotWidth), nil
			})
		},
	}
}

func newSimilarCmd() *cobra.Command {
	var sortBy string
	cmd := &cobra.Command{
		Use:     "similar <tmdb-id>",
		Short:   "List movies similar to a movie",
		Example: `  moviehub similar 27205 --sort vote`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			order, err := details.ParseSortOrder(sortBy)
			if err != nil {
				return err
			}
			return runQuery("Loading similar titles...", func(ctx context.Context, h *hooks.Hooks) (string, error) {
				r, err := h.LoadDetails(ctx, id)
				if err != nil {
					return "", err
				}
				similar := details.SortMovies(r.Data.Similar.Results, order)
				if len(similar) == 0 {
					return styleDim.Render("No similar titles found."), nil
				}
				return styleHeader.Render("Similar to "+r.Data.Title) + "\n" + renderMovieList(darkTheme, similar, -1), nil
			})
		},
	}
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "popularity", "sort order: popularity, vote or release")
	return cmd
}

func parseMovieID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q: must be a positive integer", s)
	}
	return id, nil
}

// renderResultPage renders a titled list page with its page bar.
func renderResultPage(t theme, title string, r hooks.Result[[]tmdb.Movie], page int) string {
	if len(r.Data) == 0 {
		return styleDim.Render("No movies found.")
	}
	p := pagination.NewPager(r.TotalPages)
	p.Limit = 0
	p.Current = tmdb.ClampPage(page)

	out := styleHeader.Render(title) + "\n" + renderMovieList(t, r.Data, -1)
	if bar := renderPageBar(t, p); bar != "" {
		out += "\n" + bar + "  " + styleDim.Render(fmt.Sprintf("%d results", r.TotalResults))
	}
	return out
}

// runQuery loads the services and runs fn behind a spinner.
func runQuery(label string, fn queryFunc) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := config.SetupLoggerTo(cfg.App.LogLevel, os.Stderr)
	svc := initServices(cfg, logger)
	defer svc.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p := tea.NewProgram(newQueryModel(ctx, svc.hooks, label, fn))
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}

	qm, ok := m.(queryModel)
	if !ok {
		return fmt.Errorf("unexpected model type from tea program")
	}
	if qm.err != nil {
		return qm.err
	}
	return nil
}

// queryResponseMsg carries the rendered answer back to the TUI.
type queryResponseMsg struct {
	response string
	err      error
}

type queryModel struct {
	ctx      context.Context
	hooks    *hooks.Hooks
	label    string
	fn       queryFunc
	spinner  spinner.Model
	response string
	err      error
	done     bool
}

func newQueryModel(ctx context.Context, h *hooks.Hooks, label string, fn queryFunc) queryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo
	return queryModel{
		ctx:     ctx,
		hooks:   h,
		label:   label,
		fn:      fn,
		spinner: s,
	}
}

func (m queryModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.sendQuery())
}

func (m queryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case queryResponseMsg:
		m.response = msg.response
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m queryModel) View() string {
	if m.done {
		if m.err != nil {
			return styleError.Render("Error: "+m.err.Error()) + "\n"
		}
		return m.response + "\n"
	}
	return m.spinner.View() + styleDim.Render(" "+m.label) + "\n"
}

func (m queryModel) sendQuery() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.fn(m.ctx, m.hooks)
		return queryResponseMsg{response: resp, err: err}
	}
}
