package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ndorokhov/go-movie-bot/internal/kinopoisk"
	"github.com/ndorokhov/go-movie-bot/internal/services"
	"github.com/ndorokhov/go-movie-bot/internal/session"
)

// Transport is the chat-facing contract of the dispatcher. *Client
// implements it; tests substitute a recorder.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, kb *InlineKeyboardMarkup) (int, error)
	SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, kb *InlineKeyboardMarkup) (int, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, kb *InlineKeyboardMarkup) error
	EditMessageReplyMarkup(ctx context.Context, chatID int64, messageID int, kb *InlineKeyboardMarkup) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
	SetMyCommands(ctx context.Context, commands []BotCommand) error
}

// Dispatcher routes inbound updates to handlers and owns the single
// recover/classify boundary per update. Inner components never talk to the
// chat; all user-facing error display happens here.
type Dispatcher struct {
	TG       Transport
	Sessions *session.Store
	Search   *services.SearchService
	Pager    *services.Paginator
	Status   *services.StatusService
	History  *services.HistoryService
	Log      zerolog.Logger

	callbacks map[actionKind]func(*turn, string) error
}

// NewDispatcher wires the handler table.
func NewDispatcher(tg Transport, sessions *session.Store, search *services.SearchService, status *services.StatusService, history *services.HistoryService, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		TG:       tg,
		Sessions: sessions,
		Search:   search,
		Pager:    services.NewPaginator(search),
		Status:   status,
		History:  history,
		Log:      log,
	}
	d.callbacks = map[actionKind]func(*turn, string) error{
		actMenu:      (*turn).onMenu,
		actFilter:    (*turn).onFilter,
		actType:      (*turn).onTypePick,
		actGenre:     (*turn).onGenrePick,
		actCountry:   (*turn).onCountryPick,
		actYear:      (*turn).onYearAction,
		actRating:    (*turn).onRatingClick,
		actSortField: (*turn).onSortField,
		actSortDir:   (*turn).onSortDirection,
		actPage:      (*turn).onPage,
		actToggle:    (*turn).onToggle,
		actPostponed: (*turn).onPostponedPick,
		actHistory:   (*turn).onHistoryType,
		actPeriod:    (*turn).onHistoryPeriod,
		actDate:      (*turn).onHistoryDate,
		actEntry:     (*turn).onHistoryEntry,
		actHistPage:  (*turn).onHistoryPage,
		actClear:     (*turn).onHistoryClear,
	}
	return d
}

// Commands registered as the bot's command menu at startup.
var commandMenu = []BotCommand{
	{Command: "start", Description: "Главное меню"},
	{Command: "help", Description: "Справка"},
	{Command: "movie_search", Description: "Поиск по названию"},
	{Command: "movie_by_filters", Description: "Поиск по фильтрам"},
	{Command: "movie_postponed", Description: "Отложенные фильмы"},
	{Command: "history", Description: "История поиска"},
}

// RegisterCommands publishes the command menu.
func (d *Dispatcher) RegisterCommands(ctx context.Context) error {
	return d.TG.SetMyCommands(ctx, commandMenu)
}

// turn is the per-update handler context: one session, one logger, one
// inbound event.
type turn struct {
	d      *Dispatcher
	ctx    context.Context
	log    zerolog.Logger
	chatID int64
	userID string
	data   *session.Data
	cb     *CallbackQuery
}

// HandleUpdate processes one inbound update end to end. It serializes on
// the session, recovers panics, classifies failures and renders the
// user-facing outcome.
func (d *Dispatcher) HandleUpdate(ctx context.Context, upd Update) {
	var (
		from   *User
		chatID int64
		cb     *CallbackQuery
		msg    *Message
	)
	switch {
	case upd.CallbackQuery != nil:
		cb = upd.CallbackQuery
		from = &cb.From
		if cb.Message != nil {
			chatID = cb.Message.Chat.ID
		} else {
			chatID = cb.From.ID
		}
	case upd.Message != nil:
		msg = upd.Message
		from = msg.From
		chatID = msg.Chat.ID
	default:
		return
	}
	if from == nil {
		return
	}
	userID := fmt.Sprintf("%d", from.ID)

	log := d.Log.With().
		Str("update_id", uuid.NewString()).
		Str("user_id", userID).
		Int64("chat_id", chatID).
		Logger()

	key := session.Key{UserID: userID, ChatID: chatID}
	data, release := d.Sessions.Acquire(key)
	defer release()

	t := &turn{d: d, ctx: ctx, log: log, chatID: chatID, userID: userID, data: data, cb: cb}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("classification", "internal").
				Str("panic", fmt.Sprint(r)).
				Bytes("stack", debug.Stack()).
				Msg("update handler panicked")
			t.notify(msgFault)
		}
	}()

	var err error
	switch {
	case cb != nil:
		err = t.handleCallback(cb)
	case strings.HasPrefix(msg.Text, "/"):
		err = t.handleCommand(msg.Text)
	default:
		err = t.handleText(msg.Text)
	}
	if err != nil {
		t.fail(err)
	}
}

// fail maps a handler error onto the taxonomy: session-expired is a named
// recovery path, connectivity and server payload errors are transient "try
// later" outcomes, store errors get a generic message. Each class logs
// distinctly.
func (t *turn) fail(err error) {
	var serverErr *kinopoisk.ServerError
	switch {
	case errors.Is(err, services.ErrBrowsingExpired):
		t.log.Info().Str("classification", "session_expired").Msg("browsing state missing")
		t.data.Reset()
		t.data.State = session.StateTitleEntry
		t.notify(msgExpired)
	case errors.Is(err, kinopoisk.ErrUnavailable):
		t.log.Warn().Str("classification", "connectivity").Err(err).Msg("remote search unreachable")
		t.data.Reset()
		t.data.State = session.StateTitleEntry
		t.notify(msgTryLater)
	case errors.As(err, &serverErr):
		t.log.Warn().
			Str("classification", "server_error").
			Int("status_code", serverErr.StatusCode).
			Str("message", serverErr.Message).
			Msg("remote search reported an error payload")
		t.notify(msgTryLater)
	case errors.Is(err, gorm.ErrInvalidDB) || isStoreError(err):
		t.log.Error().Str("classification", "store").Err(err).Msg("store operation failed")
		t.notify(msgFault)
	default:
		t.log.Error().Str("classification", "internal").Err(err).Msg("update handling failed")
		t.notify(msgFault)
	}
}

// isStoreError recognizes persistence failures that are not sentinel
// conditions.
func isStoreError(err error) bool {
	return errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated)
}

// notify sends a plain message, best effort: the boundary has nothing
// better to do if the transport also fails.
func (t *turn) notify(text string) {
	if _, err := t.d.TG.SendMessage(t.ctx, t.chatID, text, nil); err != nil {
		t.log.Warn().Err(err).Msg("failed to deliver notice")
	}
}

func (t *turn) send(text string, kb *InlineKeyboardMarkup) error {
	_, err := t.d.TG.SendMessage(t.ctx, t.chatID, text, kb)
	return err
}

// editOrSend updates the pressed message's grid in place when possible,
// otherwise sends a fresh message.
func (t *turn) editOrSend(text string, kb *InlineKeyboardMarkup) error {
	if t.cb != nil && t.cb.Message != nil {
		if err := t.d.TG.EditMessageText(t.ctx, t.chatID, t.cb.Message.MessageID, text, kb); err == nil {
			return nil
		}
	}
	return t.send(text, kb)
}

func (t *turn) handleCommand(text string) error {
	cmd, _, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	switch cmd {
	case "start":
		t.data.Reset()
		return t.send(msgGreeting, mainMenuKeyboard())
	case "help":
		return t.send(msgHelps, nil)
	case "movie_search":
		return t.startTitleSearch()
	case "movie_by_filters":
		return t.startFilterSearch()
	case "movie_postponed":
		return t.startPostponed()
	case "history":
		return t.startHistory()
	default:
		t.log.Info().Str("classification", "validation").Str("command", cmd).Msg("unknown command")
		return t.send(msgGreeting, mainMenuKeyboard())
	}
}

func (t *turn) handleText(text string) error {
	switch t.data.State {
	case session.StateTitleEntry:
		return t.runTitleSearch(text)
	case session.StateYearEntry:
		return t.onYearText(text)
	default:
		// Free text outside an input state is routed to the menu.
		return t.send(msgGreeting, mainMenuKeyboard())
	}
}

func (t *turn) handleCallback(cb *CallbackQuery) error {
	// Acknowledge first so the client stops the spinner even if handling
	// takes a remote round-trip.
	if err := t.d.TG.AnswerCallbackQuery(t.ctx, cb.ID, ""); err != nil {
		t.log.Warn().Err(err).Msg("failed to answer callback")
	}
	kind, param, ok := parseAction(cb.Data)
	if !ok {
		t.log.Info().Str("classification", "validation").Str("data", cb.Data).Msg("malformed callback payload")
		return nil
	}
	h, ok := t.d.callbacks[kind]
	if !ok {
		t.log.Info().Str("classification", "validation").Str("data", cb.Data).Msg("unrecognized callback kind")
		return nil
	}
	return h(t, param)
}

func (t *turn) onMenu(param string) error {
	switch param {
	case "search":
		return t.startTitleSearch()
	case "filters":
		return t.startFilterSearch()
	case "postponed":
		return t.startPostponed()
	case "history":
		return t.startHistory()
	default:
		t.log.Info().Str("classification", "validation").Str("menu", param).Msg("unknown menu item")
		return nil
	}
}
