package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/MovieHub/internal/details"
	"github.com/vadimtrunov/MovieHub/internal/hooks"
	"github.com/vadimtrunov/MovieHub/internal/metadata/tmdb"
	"github.com/vadimtrunov/MovieHub/internal/pagination"
)

const (
	unauthorizedMsg = "Sorry, you are not authorized to use this bot."
	errorMsg        = "An error occurred while processing your request. Please try again."
	notFoundMsg     = "Movie not found."
	emptyMsg        = "No movies found."
	expiredMsg      = "This list has expired. Open it again to keep browsing."
	resetMsg        = "Browsing state cleared."
	unknownMsg      = "Unknown command. Send /help for the list of commands."

	helpMsg = `Welcome to MovieHub! Browse movies from TMDb.

/popular [page] - popular movies
/toprated [page] - top rated movies
/upcoming [page] - upcoming releases
/nowplaying [page] - in theaters now
/search <title> - search by title
/genres - browse by genre
/movie <id> - movie details
/similar <id> [popularity|vote|release] - similar titles
/reset - clear browsing state

Any other text is treated as a search.`

	// Callback data prefixes.
	cbPage    = "pg:"
	cbMovie   = "mv:"
	cbGenre   = "gn:"
	cbSimilar = "sim:"
	cbNoop    = "noop"

	maxButtonLabel = 30 // max characters in inline keyboard button label
	moviesPerRow   = 2
	genresPerRow   = 3
)

var commandKinds = map[string]tmdb.Kind{
	"popular":    tmdb.KindPopular,
	"toprated":   tmdb.KindTopRated,
	"upcoming":   tmdb.KindUpcoming,
	"nowplaying": tmdb.KindNowPlaying,
}

// handleMessage processes an incoming text message.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID

	b.logger.Debug("received message",
		slog.Int64("user_id", userID),
	)

	if !b.sessions.isAllowed(userID) {
		b.sendText(chatID, unauthorizedMsg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	b.out.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)) //nolint:errcheck // best-effort typing indicator

	cmd, args, isCmd := parseCommand(text)
	if !isCmd {
		b.showView(ctx, chatID, userID, view{mode: viewSearch, query: text, page: 1}, 0)
		return
	}

	if kind, ok := commandKinds[cmd]; ok {
		b.showView(ctx, chatID, userID, view{mode: viewList, kind: kind, page: pageArg(args)}, 0)
		return
	}

	switch cmd {
	case "start", "help":
		b.sendText(chatID, helpMsg)
	case "reset":
		b.sessions.reset(userID)
		b.sendText(chatID, resetMsg)
	case "search":
		if args == "" {
			b.sendText(chatID, "Usage: /search <title>")
			return
		}
		b.showView(ctx, chatID, userID, view{mode: viewSearch, query: args, page: 1}, 0)
	case "genres":
		b.showGenres(ctx, chatID)
	case "movie":
		id, ok := parseID(args)
		if !ok {
			b.sendText(chatID, "Usage: /movie <tmdb id>")
			return
		}
		b.showDetails(ctx, chatID, id)
	case "similar":
		fields := strings.Fields(args)
		if len(fields) == 0 {
			b.sendText(chatID, "Usage: /similar <tmdb id> [popularity|vote|release]")
			return
		}
		id, ok := parseID(fields[0])
		if !ok {
			b.sendText(chatID, "Usage: /similar <tmdb id> [popularity|vote|release]")
			return
		}
		sortArg := ""
		if len(fields) > 1 {
			sortArg = fields[1]
		}
		order, err := details.ParseSortOrder(sortArg)
		if err != nil {
			b.sendText(chatID, err.Error())
			return
		}
		b.showSimilar(ctx, chatID, id, order)
	default:
		b.sendText(chatID, unknownMsg)
	}
}

// handleCallback processes inline keyboard callback queries.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID

	b.logger.Debug("received callback",
		slog.Int64("user_id", userID),
		slog.String("data", cq.Data),
	)

	// Acknowledge the callback immediately.
	b.out.Request(tgbotapi.NewCallback(cq.ID, "")) //nolint:errcheck // best-effort ack

	if !b.sessions.isAllowed(userID) {
		return
	}

	data := cq.Data
	switch {
	case data == cbNoop:
	case strings.HasPrefix(data, cbPage):
		page, err := strconv.Atoi(strings.TrimPrefix(data, cbPage))
		if err != nil {
			return
		}
		v, ok := b.sessions.current(userID)
		if !ok {
			b.sendText(chatID, expiredMsg)
			return
		}
		v.page = min(tmdb.ClampPage(page), pagination.DefaultLimit)
		b.showView(ctx, chatID, userID, v, cq.Message.MessageID)
	case strings.HasPrefix(data, cbMovie):
		if id, ok := parseID(strings.TrimPrefix(data, cbMovie)); ok {
			b.showDetails(ctx, chatID, id)
		}
	case strings.HasPrefix(data, cbGenre):
		if id, ok := parseID(strings.TrimPrefix(data, cbGenre)); ok {
			v := view{mode: viewGenre, genreIDs: []int{id}, genreName: b.genreName(ctx, id), page: 1}
			b.showView(ctx, chatID, userID, v, 0)
		}
	case strings.HasPrefix(data, cbSimilar):
		if id, ok := parseID(strings.TrimPrefix(data, cbSimilar)); ok {
			b.showSimilar(ctx, chatID, id, details.ByPopularity)
		}
	}
}

// showView loads one page of a listing and sends it, or edits messageID in
// place when it is non-zero.
func (b *Bot) showView(ctx context.Context, chatID, userID int64, v view, messageID int) {
	r, err := b.loadView(ctx, v)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.sessions.set(userID, v)

	if len(r.Data) == 0 {
		b.sendText(chatID, emptyMsg)
		return
	}

	pages := pagination.Capped(r.TotalPages, pagination.DefaultLimit)
	text := FormatBold(viewTitle(v)) + "\n" +
		EscapeMdV2(fmt.Sprintf("Page %d of %d", v.page, max(pages, 1))) + "\n\n" +
		FormatMovieList(r.Data, 1)
	kb := resultsKeyboard(r.Data, v.page, r.TotalPages)

	if messageID != 0 {
		b.editMarkdown(chatID, messageID, text, kb)
		return
	}
	b.sendMarkdown(chatID, text, &kb)
}

func (b *Bot) loadView(ctx context.Context, v view) (hooks.Result[[]tmdb.Movie], error) {
	switch v.mode {
	case viewSearch:
		return b.hooks.LoadSearch(ctx, v.query, v.page)
	case viewGenre:
		raw := make([]string, 0, len(v.genreIDs))
		for _, id := range v.genreIDs {
			raw = append(raw, strconv.Itoa(id))
		}
		return b.hooks.LoadByGenre(ctx, raw, v.page)
	default:
		return b.hooks.LoadList(ctx, v.kind, v.page)
	}
}

func viewTitle(v view) string {
	switch v.mode {
	case viewSearch:
		return fmt.Sprintf("Results for %q", v.query)
	case viewGenre:
		if v.genreName != "" {
			return v.genreName
		}
		return "Genre"
	default:
		return v.kind.Title()
	}
}

func (b *Bot) showGenres(ctx context.Context, chatID int64) {
	r, err := b.hooks.LoadGenres(ctx)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if len(r.Data) == 0 {
		b.sendText(chatID, "No genres available.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, g := range r.Data {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(g.Name, cbGenre+strconv.Itoa(g.ID)))
		if len(row) == genresPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	msg := tgbotapi.NewMessage(chatID, "Pick a genre:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(chatID, msg)
}

// genreName resolves a genre id through the cached genre list.
func (b *Bot) genreName(ctx context.Context, id int) string {
	r, err := b.hooks.LoadGenres(ctx)
	if err != nil {
		return ""
	}
	for _, g := range r.Data {
		if g.ID == id {
			return g.Name
		}
	}
	return ""
}

func (b *Bot) showDetails(ctx context.Context, chatID int64, id int) {
	r, err := b.hooks.LoadDetails(ctx, id)
	if err != nil {
		b.replyError(chatID, err)
		return
	}

	var videos []tmdb.Video
	if v, err := b.hooks.LoadVideos(ctx, id); err != nil {
		b.logger.Warn("videos unavailable",
			slog.Int("movie_id", id),
			slog.String("error", err.Error()),
		)
	} else {
		videos = v.Data
	}

	p := details.Build(r.Data, videos)
	if r.Data.PosterPath != "" {
		b.sendPoster(chatID, r.Data.PosterPath, MovieLabel(r.Data.Summary()))
	}

	var buttons []tgbotapi.InlineKeyboardButton
	if p.Trailer != nil {
		if u := tmdb.TrailerURL(*p.Trailer); u != "" {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL("▶ Trailer", u))
		}
	}
	if len(p.Similar) > 0 {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData("Similar titles", cbSimilar+strconv.Itoa(id)))
	}

	var kb *tgbotapi.InlineKeyboardMarkup
	if len(buttons) > 0 {
		m := tgbotapi.NewInlineKeyboardMarkup(buttons)
		kb = &m
	}
	b.sendMarkdown(chatID, FormatDetails(p), kb)
}

func (b *Bot) showSimilar(ctx context.Context, chatID int64, id int, order details.SortOrder) {
	r, err := b.hooks.LoadDetails(ctx, id)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	similar := details.SortMovies(r.Data.Similar.Results, order)
	if len(similar) == 0 {
		b.sendText(chatID, "No similar titles found.")
		return
	}

	text := FormatBold("Similar to "+r.Data.Title) + "\n\n" + FormatMovieList(similar, 1)
	kb := resultsKeyboard(similar, 1, 0)
	b.sendMarkdown(chatID, text, &kb)
}

// resultsKeyboard builds one button per movie plus a page bar when total
// spans more than one page.
func resultsKeyboard(movies []tmdb.Movie, page, total int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, m := range movies {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			truncateLabel(MovieLabel(m)),
			cbMovie+strconv.Itoa(m.ID),
		))
		if len(row) == moviesPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	items := pagination.Items(page, total, pagination.DefaultLimit)
	if len(items) > 1 {
		var bar []tgbotapi.InlineKeyboardButton
		for _, it := range items {
			switch {
			case it.Ellipsis:
				bar = append(bar, tgbotapi.NewInlineKeyboardButtonData("…", cbNoop))
			case it.Current:
				bar = append(bar, tgbotapi.NewInlineKeyboardButtonData("· "+strconv.Itoa(it.Page)+" ·", cbNoop))
			default:
				bar = append(bar, tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(it.Page), cbPage+strconv.Itoa(it.Page)))
			}
		}
		rows = append(rows, bar)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// replyError maps catalog errors onto user-facing messages.
func (b *Bot) replyError(chatID int64, err error) {
	var valErr *tmdb.ValidationError
	var upErr *tmdb.UpstreamError
	switch {
	case errors.As(err, &valErr):
		b.sendText(chatID, "Invalid request: "+valErr.Reason)
	case errors.As(err, &upErr) && upErr.NotFound():
		b.sendText(chatID, notFoundMsg)
	default:
		b.logger.Error("catalog request failed",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
		b.sendText(chatID, errorMsg)
	}
}

// sendMarkdown sends MarkdownV2 text, falling back to plain text when
// Telegram rejects the markup.
func (b *Bot) sendMarkdown(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if kb != nil {
		msg.ReplyMarkup = kb
	}
	if _, err := b.out.Send(msg); err != nil {
		b.logger.Warn("failed to send markdown, retrying plain",
			slog.String("error", err.Error()),
		)
		plain := tgbotapi.NewMessage(chatID, stripMdV2(text))
		if kb != nil {
			plain.ReplyMarkup = kb
		}
		b.send(chatID, plain)
	}
}

func (b *Bot) editMarkdown(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.out.Send(edit); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return
		}
		b.logger.Warn("failed to edit message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}

// sendText sends a plain text message (no parse mode).
func (b *Bot) sendText(chatID int64, text string) {
	b.send(chatID, tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(chatID int64, c tgbotapi.Chattable) {
	if _, err := b.out.Send(c); err != nil {
		b.logger.Error("failed to send message",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
	}
}

// sendPoster sends a movie poster photo with a caption.
func (b *Bot) sendPoster(chatID int64, posterPath, caption string) {
	url := tmdb.ImageURL(posterPath, tmdb.SizeW500)
	if url == "" {
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
	photo.Caption = caption
	if _, err := b.out.Send(photo); err != nil {
		b.logger.Debug("failed to send poster",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}

// parseCommand splits "/cmd@bot args" into its lower-cased command and the
// trimmed argument string. ok is false for non-command text.
func parseCommand(text string) (cmd, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", text, false
	}
	head, rest, _ := strings.Cut(text, " ")
	cmd = strings.ToLower(strings.TrimPrefix(head, "/"))
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd, strings.TrimSpace(rest), true
}

// pageArg parses an optional page argument, capped to the pages the page bar
// can reach.
func pageArg(s string) int {
	return min(tmdb.ParsePage(s), pagination.DefaultLimit)
}

func parseID(s string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func truncateLabel(s string) string {
	r := []rune(s)
	if len(r) > maxButtonLabel {
		return string(r[:maxButtonLabel]) + "…"
	}
	return s
}

// stripMdV2 removes MarkdownV2 escapes and bold/italic markers.
func stripMdV2(s string) string {
	var sb strings.Builder
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			sb.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '*' || r == '_':
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
