package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/MovieHub/internal/carousel"
	"github.com/vadimtrunov/MovieHub/internal/config"
	"github.com/vadimtrunov/MovieHub/internal/details"
	"github.com/vadimtrunov/MovieHub/internal/hooks"
	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
	"github.com/vadimtrunov/MovieHub/internal/pagination"
	"github.com/vadimtrunov/MovieHub/internal/router"
	"github.com/vadimtrunov/MovieHub/internal/search"
)

const (
	suggestionCount = 5
	eventBuffer     = 64
)

// Tracker views.
const (
	viewList    = "list"
	viewGenres  = "genres"
	viewDetails = "details"
	viewSuggest = "suggest"
	viewHome    = "home:"
)

// homeKinds are the carousels below the showcase, top to bottom.
var homeKinds = []tmdb.Kind{tmdb.KindPopular, tmdb.KindTopRated, tmdb.KindUpcoming}

// newBrowseCmd returns the "browse" subcommand, the interactive terminal browser.
func newBrowseCmd() *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "browse [location]",
		Short: "Browse movies interactively",
		Long: "Open the terminal browser. An optional location deep-links into a view,\n" +
			"for example /search?q=dune, /genres?id=28&name=Action or /movies/27205.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			start := router.Home()
			if len(args) == 1 {
				loc, err := router.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid location %q: %w", args[0], err)
				}
				start = loc
			}
			return runBrowse(start, logFile)
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (logs are discarded by default)")
	return cmd
}

// runBrowse initializes services and starts the Bubble Tea browser.
func runBrowse(start router.Location, logFile string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := config.SetupLoggerTo(cfg.App.LogLevel, logOut)

	svc := initServices(cfg, logger)
	defer svc.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m := newBrowseModel(ctx, svc.hooks, start, logger)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Bridge OS signal cancellation into the Bubble Tea event loop.
	go func() {
		<-ctx.Done()
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

// Messages.

// eventMsg wraps a message produced outside the Update loop (router and
// store subscribers).
type eventMsg struct{ msg tea.Msg }

type routeMsg struct{}

// queryMsg carries a URL-originated search store update.
type queryMsg struct{ value string }

type pageMsg struct {
	view   string
	key    string
	result hooks.Result[[]tmdb.Movie]
	err    error
}

type genresMsg struct {
	key    string
	result hooks.Result[[]tmdb.Genre]
	err    error
}

type detailsMsg struct {
	key    string
	movie  *tmdb.MovieDetails
	videos []tmdb.Video
	err    error
}

type showcaseTickMsg struct{}

type inputDebounceMsg struct{}

type homeRow struct {
	kind tmdb.Kind
	c    *carousel.Carousel[tmdb.Movie]
}

// browseModel is the Bubble Tea model of the terminal browser. Every view is
// derived from the router location; navigation goes through the router and
// comes back as a routeMsg.
type browseModel struct {
	ctx    context.Context
	hooks  *hooks.Hooks
	logger *slog.Logger

	router   *router.Router
	lastPath string // path of the previous onRoute
	store    *search.Store
	urlSync  *search.URLSync
	events   chan tea.Msg
	unsubs   []func()
	tracker  *hooks.Tracker
	inputDeb *search.Debouncer

	input        textinput.Model
	inputFocused bool
	suggestions  []tmdb.Movie
	spinner      spinner.Model

	theme  theme
	width  int
	height int

	// home
	showcase *carousel.Carousel[tmdb.Movie]
	rows     []homeRow
	focusRow int // 0 is the showcase
	col      int

	// paged listings: search results and genre discovery
	list      []tmdb.Movie
	listScope string // query or genre ids the pager belongs to
	pager     *pagination.Pager
	cursor    int
	loading   bool
	err       error

	genres []tmdb.Genre

	detail  *details.Page
	similar []tmdb.Movie
	order   details.SortOrder
}

func newBrowseModel(ctx context.Context, h *hooks.Hooks, start router.Location, logger *slog.Logger) *browseModel {
	ti := textinput.New()
	ti.Placeholder = "Search movies..."
	ti.CharLimit = 200

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo

	rows := make([]homeRow, 0, len(homeKinds))
	for _, k := range homeKinds {
		rows = append(rows, homeRow{kind: k, c: carousel.New[tmdb.Movie](nil, carousel.PageSize)})
	}

	m := &browseModel{
		ctx:      ctx,
		hooks:    h,
		logger:   logger,
		router:   router.New(start),
		store:    search.NewStore(""),
		events:   make(chan tea.Msg, eventBuffer),
		tracker:  hooks.NewTracker(),
		inputDeb: search.NewDebouncer(search.InputDelay),
		input:    ti,
		spinner:  s,
		theme:    darkTheme,
		showcase: carousel.NewShowcase[tmdb.Movie](nil),
		rows:     rows,
		pager:    pagination.NewPager(0),
		order:    details.ByPopularity,
	}

	m.unsubs = append(m.unsubs,
		m.router.Subscribe(func() { m.emit(routeMsg{}) }),
		m.store.Subscribe(func(up search.Update) {
			if up.Origin == search.OriginURL {
				m.emit(queryMsg{value: up.Value})
			}
		}),
	)
	return m
}

// emit queues a message from a subscriber. It never blocks the caller.
func (m *browseModel) emit(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
		m.logger.Warn("browser event dropped", slog.String("type", fmt.Sprintf("%T", msg)))
	}
}

// waitForEvent delivers the next subscriber message into the Update loop.
func (m *browseModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.events:
			return eventMsg{msg: msg}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Close stops URL syncing and releases subscriptions.
func (m *browseModel) Close() {
	m.stopSync()
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
	m.store.Close()
}

func showcaseTick() tea.Cmd {
	return tea.Tick(carousel.ShowcaseInterval, func(time.Time) tea.Msg { return showcaseTickMsg{} })
}

// Init loads the start location and arms the event pump and showcase timer.
func (m *browseModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForEvent(), showcaseTick(), m.onRoute())
}

// Update handles incoming messages and user input.
func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(m.width-6, 10)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case eventMsg:
		return m, tea.Batch(m.handleEvent(msg.msg), m.waitForEvent())

	case pageMsg:
		m.handlePage(msg)
		return m, nil

	case genresMsg:
		if !m.tracker.Accept(viewGenres, msg.key) {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.genres = msg.result.Data
			m.cursor = min(m.cursor, max(len(m.genres)-1, 0))
		}
		return m, nil

	case detailsMsg:
		m.handleDetails(msg)
		return m, nil

	case showcaseTickMsg:
		if m.router.Current().Path == router.PathHome {
			m.showcase.Tick()
		}
		return m, showcaseTick()

	case inputDebounceMsg:
		return m, m.flushInput()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.inputFocused {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *browseModel) handleEvent(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case routeMsg:
		return m.onRoute()
	case queryMsg:
		if m.input.Value() != msg.value {
			m.input.SetValue(msg.value)
			m.input.CursorEnd()
		}
		m.inputDeb.Cancel()
		m.suggestions = nil
		m.tracker.Forget(viewSuggest)
	}
	return nil
}

// onRoute derives the view from the current location and starts its loads.
func (m *browseModel) onRoute() tea.Cmd {
	loc := m.router.Current()
	prev := m.lastPath
	m.lastPath = loc.Path
	m.err = nil
	m.loading = false

	if loc.Path == router.PathSearch {
		m.startSync()
	} else {
		m.stopSync()
		m.blurInput()
	}

	switch {
	case loc.Path == router.PathHome:
		m.focusRow, m.col = 0, 0
		if prev != router.PathHome {
			// Coming back home restarts auto-advance stopped by manual paging.
			m.showcase.Reset()
			for _, r := range m.rows {
				r.c.Reset()
			}
		}
		return m.loadHome()

	case loc.Path == router.PathSearch:
		m.resetScope(loc.Path + "?" + loc.Get(search.QueryParam))
		return m.loadList()

	case loc.Path == router.PathGenres:
		if loc.Get("id") == "" {
			m.cursor = 0
			return m.loadGenres()
		}
		m.resetScope(loc.Path + "?" + loc.Get("id"))
		return m.loadList()

	case strings.HasPrefix(loc.Path, router.PathMovies+"/"):
		id, ok := loc.MovieID()
		if !ok {
			m.router.Replace(router.Home())
			return nil
		}
		m.cursor = 0
		return m.loadDetails(id)

	case loc.Path == router.PathSimilar:
		id, err := strconv.Atoi(loc.Get("id"))
		if err != nil || id <= 0 {
			m.router.Replace(router.Home())
			return nil
		}
		m.cursor = 0
		return m.loadDetails(id)
	}

	m.router.Replace(router.Home())
	return nil
}

// resetScope starts a paged listing over from page 1 when its input changed.
func (m *browseModel) resetScope(scope string) {
	if scope == m.listScope {
		return
	}
	m.listScope = scope
	m.list = nil
	m.cursor = 0
	m.pager = pagination.NewPager(0)
}

func (m *browseModel) startSync() {
	if m.urlSync != nil {
		return
	}
	m.urlSync = search.NewURLSync(m.store, m.router, search.SyncOptions{Logger: m.logger})
	m.urlSync.Start()
}

func (m *browseModel) stopSync() {
	if m.urlSync == nil {
		return
	}
	m.urlSync.Stop()
	m.urlSync = nil
	m.inputDeb.Cancel()
}

func (m *browseModel) focusInput() tea.Cmd {
	m.inputFocused = true
	return m.input.Focus()
}

func (m *browseModel) blurInput() {
	m.inputFocused = false
	m.input.Blur()
	m.suggestions = nil
	m.tracker.Forget(viewSuggest)
}

// Loads.

func (m *browseModel) loadHome() tea.Cmd {
	cmds := []tea.Cmd{m.loadRow(tmdb.KindNowPlaying)}
	for _, r := range m.rows {
		cmds = append(cmds, m.loadRow(r.kind))
	}
	return tea.Batch(cmds...)
}

// loadRow shows whatever the cache holds for the first page of kind at once
// and returns the command that waits for fresh data.
func (m *browseModel) loadRow(kind tmdb.Kind) tea.Cmd {
	view := viewHome + string(kind)
	key := hooks.ListKey(kind, 1)
	m.tracker.Want(view, key)
	if snap := m.hooks.List(kind, 1); len(snap.Data) > 0 {
		m.setRow(kind, snap.Data)
	}
	return func() tea.Msg {
		r, err := m.hooks.LoadList(m.ctx, kind, 1)
		return pageMsg{view: view, key: key, result: r, err: err}
	}
}

func (m *browseModel) setRow(kind tmdb.Kind, movies []tmdb.Movie) {
	if kind == tmdb.KindNowPlaying {
		m.showcase.SetItems(movies)
		return
	}
	for _, r := range m.rows {
		if r.kind == kind {
			r.c.SetItems(movies)
		}
	}
}

// loadList loads the current page of the search or genre listing.
func (m *browseModel) loadList() tea.Cmd {
	loc := m.router.Current()
	page := m.pager.Current

	var (
		key  string
		read func() hooks.Result[[]tmdb.Movie]
		load func(context.Context) (hooks.Result[[]tmdb.Movie], error)
	)
	switch loc.Path {
	case router.PathSearch:
		q := loc.Get(search.QueryParam)
		key = hooks.SearchKey(q, page)
		read = func() hooks.Result[[]tmdb.Movie] { return m.hooks.Search(q, page) }
		load = func(ctx context.Context) (hooks.Result[[]tmdb.Movie], error) { return m.hooks.LoadSearch(ctx, q, page) }
	case router.PathGenres:
		raw := strings.Split(loc.Get("id"), ",")
		key = hooks.DiscoverKey(hooks.NormalizeGenreIDs(raw), page)
		read = func() hooks.Result[[]tmdb.Movie] { return m.hooks.ByGenre(raw, page) }
		load = func(ctx context.Context) (hooks.Result[[]tmdb.Movie], error) { return m.hooks.LoadByGenre(ctx, raw, page) }
	default:
		return nil
	}

	m.tracker.Want(viewList, key)
	if key == "" {
		m.list = nil
		m.pager.SetTotal(0)
		m.pager.Loading = false
		return nil
	}

	snap := read()
	if snap.Data != nil {
		m.list = snap.Data
		m.pager.SetTotal(snap.TotalPages)
		m.cursor = min(m.cursor, max(len(m.list)-1, 0))
	}
	m.loading = snap.IsLoading
	m.pager.Loading = true

	return func() tea.Msg {
		r, err := load(m.ctx)
		return pageMsg{view: viewList, key: key, result: r, err: err}
	}
}

func (m *browseModel) loadGenres() tea.Cmd {
	m.tracker.Want(viewGenres, hooks.GenresKey)
	if snap := m.hooks.Genres(); snap.Data != nil {
		m.genres = snap.Data
	} else {
		m.loading = true
	}
	return func() tea.Msg {
		r, err := m.hooks.LoadGenres(m.ctx)
		return genresMsg{key: hooks.GenresKey, result: r, err: err}
	}
}

func (m *browseModel) loadDetails(id int) tea.Cmd {
	key := hooks.DetailsKey(id)
	m.tracker.Want(viewDetails, key)
	m.detail = nil
	m.similar = nil
	m.loading = true
	return func() tea.Msg {
		r, err := m.hooks.LoadDetails(m.ctx, id)
		if err != nil {
			return detailsMsg{key: key, err: err}
		}
		var videos []tmdb.Video
		if v, err := m.hooks.LoadVideos(m.ctx, id); err != nil {
			m.logger.Warn("videos unavailable",
				slog.Int("movie_id", id),
				slog.String("error", err.Error()),
			)
		} else {
			videos = v.Data
		}
		return detailsMsg{key: key, movie: r.Data, videos: videos}
	}
}

func (m *browseModel) loadSuggestions(q string) tea.Cmd {
	key := hooks.SearchKey(q, 1)
	m.tracker.Want(viewSuggest, key)
	return func() tea.Msg {
		r, err := m.hooks.LoadSearch(m.ctx, q, 1)
		return pageMsg{view: viewSuggest, key: key, result: r, err: err}
	}
}

func (m *browseModel) handlePage(msg pageMsg) {
	if !m.tracker.Accept(msg.view, msg.key) {
		return
	}
	switch {
	case msg.view == viewSuggest:
		if msg.err != nil {
			m.suggestions = nil
			return
		}
		s := msg.result.Data
		m.suggestions = s[:min(len(s), suggestionCount)]

	case msg.view == viewList:
		m.loading = false
		m.pager.Loading = false
		if msg.err != nil {
			m.err = msg.err
			return
		}
		m.err = nil
		m.list = msg.result.Data
		m.pager.SetTotal(msg.result.TotalPages)
		m.cursor = min(m.cursor, max(len(m.list)-1, 0))

	case strings.HasPrefix(msg.view, viewHome):
		if msg.err != nil {
			m.logger.Warn("home row failed",
				slog.String("view", msg.view),
				slog.String("error", msg.err.Error()),
			)
			m.err = msg.err
			return
		}
		m.setRow(tmdb.Kind(strings.TrimPrefix(msg.view, viewHome)), msg.result.Data)
	}
}

func (m *browseModel) handleDetails(msg detailsMsg) {
	if !m.tracker.Accept(viewDetails, msg.key) {
		return
	}
	m.loading = false
	if msg.err != nil {
		m.err = msg.err
		return
	}
	if msg.movie == nil {
		m.err = &tmdb.UpstreamError{Status: 404, Message: "movie not found"}
		return
	}
	p := details.Build(msg.movie, msg.videos)
	m.detail = &p
	m.similar = details.SortMovies(msg.movie.Similar.Results, m.order)
}

// Input.

// flushInput emits the debounced input value once its deadline has passed.
func (m *browseModel) flushInput() tea.Cmd {
	value, ok := m.inputDeb.Expire(time.Now())
	if !ok {
		return nil
	}
	m.store.Set(value)
	if !search.ShouldSuggest(value) {
		m.suggestions = nil
		m.tracker.Forget(viewSuggest)
		return nil
	}
	return m.loadSuggestions(value)
}

func (m *browseModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if m.inputFocused {
		return m.handleInputKey(msg)
	}

	switch msg.String() {
	case "q":
		return tea.Quit
	case "t":
		m.toggleTheme()
		return nil
	case "esc", "backspace":
		m.router.Back()
		return nil
	case "/":
		if m.router.Current().Path != router.PathSearch {
			m.router.Push(router.Search(m.store.Get()))
		}
		return m.focusInput()
	case "g":
		m.router.Push(router.Location{Path: router.PathGenres})
		return nil
	case "h":
		m.router.Push(router.Home())
		return nil
	}

	loc := m.router.Current()
	switch {
	case loc.Path == router.PathHome:
		return m.handleHomeKey(msg)
	case loc.Path == router.PathGenres && loc.Get("id") == "":
		return m.handleGenreKey(msg)
	case loc.Path == router.PathSearch, loc.Path == router.PathGenres:
		return m.handleListKey(msg)
	case strings.HasPrefix(loc.Path, router.PathMovies+"/"):
		return m.handleDetailsKey(msg)
	case loc.Path == router.PathSimilar:
		return m.handleSimilarKey(msg)
	}
	return nil
}

func (m *browseModel) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "tab":
		m.blurInput()
		return nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.inputDeb.Cancel()
		m.blurInput()
		m.store.Set(value)
		m.router.Push(router.Search(value))
		return nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return cmd
	}
	deadline := m.inputDeb.Write(m.input.Value(), time.Now())
	return tea.Batch(cmd, tea.Tick(time.Until(deadline), func(time.Time) tea.Msg { return inputDebounceMsg{} }))
}

func (m *browseModel) handleHomeKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		m.focusRow = max(m.focusRow-1, 0)
		m.col = 0
	case "down", "j":
		m.focusRow = min(m.focusRow+1, len(m.rows))
		m.col = 0
	case "left":
		if m.focusRow == 0 {
			m.showcase.Prev()
			return nil
		}
		c := m.rows[m.focusRow-1].c
		if m.col > 0 {
			m.col--
			return nil
		}
		c.Prev()
		m.col = max(len(c.Visible())-1, 0)
	case "right":
		if m.focusRow == 0 {
			m.showcase.Next()
			return nil
		}
		c := m.rows[m.focusRow-1].c
		if m.col < len(c.Visible())-1 {
			m.col++
			return nil
		}
		c.Next()
		m.col = 0
	case "r":
		for _, r := range m.rows {
			r.c.Reset()
		}
		m.showcase.Reset()
	case "enter":
		var visible []tmdb.Movie
		col := 0
		if m.focusRow == 0 {
			visible = m.showcase.Visible()
		} else {
			visible = m.rows[m.focusRow-1].c.Visible()
			col = m.col
		}
		if col < len(visible) {
			m.router.Push(router.Movie(visible[col].ID))
		}
	}
	return nil
}

func (m *browseModel) handleGenreKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, max(len(m.genres)-1, 0))
	case "enter":
		if m.cursor < len(m.genres) {
			g := m.genres[m.cursor]
			m.router.Push(router.Genre(g.ID, g.Name))
		}
	}
	return nil
}

func (m *browseModel) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		if m.router.Current().Path == router.PathSearch {
			return m.focusInput()
		}
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, max(len(m.list)-1, 0))
	case "left", "p":
		if _, ok := m.pager.Prev(); ok {
			m.cursor = 0
			return m.loadList()
		}
	case "right", "n":
		if _, ok := m.pager.Next(); ok {
			m.cursor = 0
			return m.loadList()
		}
	case "enter":
		if m.cursor < len(m.list) {
			m.router.Push(router.Movie(m.list[m.cursor].ID))
		}
	}
	return nil
}

func (m *browseModel) handleDetailsKey(msg tea.KeyMsg) tea.Cmd {
	if m.detail == nil {
		return nil
	}
	switch msg.String() {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, max(len(m.detail.Similar)-1, 0))
	case "enter":
		if m.cursor < len(m.detail.Similar) {
			m.router.Push(router.Movie(m.detail.Similar[m.cursor].ID))
		}
	case "s":
		m.router.Push(router.Similar(m.detail.Movie.ID))
	}
	return nil
}

func (m *browseModel) handleSimilarKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, max(len(m.similar)-1, 0))
	case "s":
		m.order = nextOrder(m.order)
		m.similar = details.SortMovies(m.similar, m.order)
		m.cursor = 0
	case "enter":
		if m.cursor < len(m.similar) {
			m.router.Push(router.Movie(m.similar[m.cursor].ID))
		}
	}
	return nil
}

func nextOrder(o details.SortOrder) details.SortOrder {
	for i, known := range details.SortOrders {
		if known == o {
			return details.SortOrders[(i+1)%len(details.SortOrders)]
		}
	}
	return details.ByPopularity
}

func (m *browseModel) toggleTheme() {
	if m.theme.name == darkTheme.name {
		m.theme = lightTheme
	} else {
		m.theme = darkTheme
	}
}

// View.

// View renders the header, the view of the current location and the key help.
func (m *browseModel) View() string {
	t := m.theme
	loc := m.router.Current()

	header := t.title.Render("MovieHub") + "  " + t.dim.Render(loc.String()) +
		"  " + t.dim.Render("theme: "+t.name)

	var body, help string
	switch {
	case loc.Path == router.PathHome:
		body = m.viewHome()
		help = "↑/↓ row • ←/→ move • enter open • r resume auto-advance"
	case loc.Path == router.PathSearch:
		body = m.viewSearch()
		help = "/ or tab edit query • ↑/↓ select • ←/→ page • enter open"
	case loc.Path == router.PathGenres && loc.Get("id") == "":
		body = m.viewGenrePicker()
		help = "↑/↓ select • enter browse genre"
	case loc.Path == router.PathGenres:
		body = m.viewListing(loc.Get("name"))
		help = "↑/↓ select • ←/→ page • enter open"
	case strings.HasPrefix(loc.Path, router.PathMovies+"/"):
		body = m.viewDetails()
		help = "↑/↓ similar • enter open • s all similar titles"
	case loc.Path == router.PathSimilar:
		body = m.viewSimilar()
		help = "↑/↓ select • s sort • enter open"
	}
	help += " • / search • g genres • h home • esc back • t theme • q quit"

	return header + "\n\n" + body + "\n" + t.dim.Render(help)
}

func (m *browseModel) viewHome() string {
	t := m.theme
	var sb strings.Builder
	sb.WriteString(renderShowcase(t, m.showcase, m.focusRow == 0, m.contentWidth()))
	sb.WriteString("\n")
	for i, r := range m.rows {
		col := -1
		if m.focusRow == i+1 {
			col = m.col
		}
		sb.WriteString(renderCarousel(t, r.kind.Title(), r.c, col))
		sb.WriteString("\n")
	}
	if m.err != nil {
		sb.WriteString(m.viewError() + "\n")
	}
	return sb.String()
}

func (m *browseModel) viewSearch() string {
	t := m.theme
	var sb strings.Builder
	sb.WriteString(m.input.View() + "\n")
	if m.inputFocused && len(m.suggestions) > 0 {
		for _, s := range m.suggestions {
			sb.WriteString(t.dim.Render("  ↳ "+movieLabel(s)) + "\n")
		}
	}
	sb.WriteString("\n")

	q := m.router.Current().Get(search.QueryParam)
	if strings.TrimSpace(q) == "" {
		sb.WriteString(t.dim.Render("Type a title to search.") + "\n")
		return sb.String()
	}
	sb.WriteString(m.viewListing(fmt.Sprintf("Results for %q", q)))
	return sb.String()
}

func (m *browseModel) viewListing(title string) string {
	t := m.theme
	if title == "" {
		title = "Genre"
	}
	var sb strings.Builder
	sb.WriteString(t.title.Render(title) + "\n")
	switch {
	case m.err != nil:
		sb.WriteString(m.viewError() + "\n")
	case m.loading && len(m.list) == 0:
		sb.WriteString(m.spinner.View() + t.dim.Render(" Loading...") + "\n")
	case len(m.list) == 0:
		sb.WriteString(t.dim.Render("No movies found.") + "\n")
	default:
		cursor := m.cursor
		if m.inputFocused {
			cursor = -1
		}
		sb.WriteString(renderMovieList(t, m.list, cursor))
		if bar := renderPageBar(t, m.pager); bar != "" {
			line := bar
			if m.pager.Loading {
				line += " " + m.spinner.View()
			}
			sb.WriteString("\n" + line + "\n")
		}
	}
	return sb.String()
}

func (m *browseModel) viewGenrePicker() string {
	t := m.theme
	var sb strings.Builder
	sb.WriteString(t.title.Render("Genres") + "\n")
	switch {
	case m.err != nil:
		sb.WriteString(m.viewError() + "\n")
	case m.loading && len(m.genres) == 0:
		sb.WriteString(m.spinner.View() + t.dim.Render(" Loading...") + "\n")
	default:
		sb.WriteString(renderGenres(t, m.genres, m.cursor))
	}
	return sb.String()
}

func (m *browseModel) viewDetails() string {
	switch {
	case m.err != nil:
		return m.viewError() + "\n"
	case m.detail == nil:
		return m.spinner.View() + m.theme.dim.Render(" Loading...") + "\n"
	}
	return renderDetails(m.theme, *m.detail, m.cursor, m.contentWidth())
}

func (m *browseModel) viewSimilar() string {
	t := m.theme
	switch {
	case m.err != nil:
		return m.viewError() + "\n"
	case m.detail == nil:
		return m.spinner.View() + t.dim.Render(" Loading...") + "\n"
	}
	title := t.title.Render("Similar to "+m.detail.Movie.Title) + "  " + t.dim.Render("sorted by "+string(m.order))
	if len(m.similar) == 0 {
		return title + "\n" + t.dim.Render("No similar titles found.") + "\n"
	}
	return title + "\n" + renderMovieList(t, m.similar, m.cursor)
}

func (m *browseModel) viewError() string {
	var upErr *tmdb.UpstreamError
	if errors.As(m.err, &upErr) && upErr.NotFound() {
		return m.theme.errStyle.Render("Not found.")
	}
	return m.theme.errStyle.Render("Error: " + m.err.Error())
}

func (m *browseModel) contentWidth() int {
	if m.width <= 0 {
		return oneShotWidth
	}
	return max(m.width-2, 20)
}
