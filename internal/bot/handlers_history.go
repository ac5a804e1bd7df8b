package bot

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
	"github.com/ndorokhov/go-movie-bot/internal/services"
	"github.com/ndorokhov/go-movie-bot/internal/session"
)

func (t *turn) startHistory() error {
	t.data.History = nil
	t.data.State = session.StateHistoryMenu
	return t.send("История поиска. Какие поиски показать?", historyTypeKeyboard())
}

// onHistoryType picks the search-type axis, or branches into the purge menu.
func (t *turn) onHistoryType(param string) error {
	if param == "clear" {
		return t.editOrSend("Что удалить из истории?", clearKeyboard())
	}
	h := t.data.EnsureHistory()
	switch param {
	case string(domain.KindTitle), string(domain.KindFilters):
		h.Kind = domain.SearchKind(param)
	case "all":
		h.Kind = ""
	default:
		t.log.Info().Str("classification", "validation").Str("history_type", param).Msg("unknown history type")
		return nil
	}
	t.data.State = session.StateHistoryFilterPick
	return t.editOrSend("За какой период?", historyPeriodKeyboard())
}

// onHistoryPeriod either lists entries for a period or offers the exact-date
// keyboard built from the distinct search dates of the last two weeks.
func (t *turn) onHistoryPeriod(param string) error {
	h := t.data.EnsureHistory()
	if param == "date" {
		dates, err := t.d.History.Dates(t.ctx, t.userID)
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			return t.send(msgNoHist, mainMenuKeyboard())
		}
		h.Dates = dates
		t.data.State = session.StateHistoryDateOrPeriod
		return t.editOrSend("Выберите дату:", historyDatesKeyboard(dates))
	}
	switch services.Period(param) {
	case services.PeriodDay, services.PeriodWeek, services.PeriodMonth, services.PeriodAll:
	default:
		t.log.Info().Str("classification", "validation").Str("period", param).Msg("unknown history period")
		return nil
	}
	h.Period = param
	return t.showHistoryList(services.Selection{Kind: h.Kind, Period: services.Period(param)})
}

func (t *turn) onHistoryDate(param string) error {
	h := t.data.EnsureHistory()
	h.Period = ""
	return t.showHistoryList(services.Selection{Kind: h.Kind, OnDate: param})
}

// showHistoryList loads the filtered entries and renders their first page.
func (t *turn) showHistoryList(sel services.Selection) error {
	entries, err := t.d.History.List(t.ctx, t.userID, sel)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return t.send(msgNoHist, mainMenuKeyboard())
	}
	h := t.data.EnsureHistory()
	h.Entries = entries
	h.Page = 1
	t.data.State = session.StateHistoryBrowsing
	return t.renderHistoryList()
}

func (t *turn) renderHistoryList() error {
	h := t.data.EnsureHistory()
	pageEntries, total := services.Page(h.Entries, h.Page)
	if total == 0 {
		return t.send(msgNoHist, mainMenuKeyboard())
	}
	h.Page = clampPage(h.Page, total)
	text := renderHistoryPage(pageEntries, h.Page, total)
	return t.editOrSend(text, historyListKeyboard(pageEntries, h.Page, total))
}

func clampPage(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

func (t *turn) onHistoryPage(param string) error {
	h := t.data.EnsureHistory()
	switch param {
	case pageNext:
		h.Page++
	case pagePrev:
		h.Page--
	default:
		t.log.Info().Str("classification", "validation").Str("history_page", param).Msg("unknown history page action")
		return nil
	}
	return t.renderHistoryList()
}

// onHistoryEntry replays one history entry. Stored results are the normal
// path; a title search whose rows were purged is re-fetched from the remote
// catalog using the identity as the query.
func (t *turn) onHistoryEntry(param string) error {
	id, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		t.log.Info().Str("classification", "validation").Str("entry", param).Msg("malformed history entry id")
		return nil
	}
	entry, err := t.d.History.Get(t.ctx, t.userID, uint(id))
	if err != nil {
		if errors.Is(err, services.ErrHistoryEntryNotFound) {
			t.log.Info().Str("classification", "validation").Uint64("entry_id", id).Msg("history entry vanished before selection")
			return t.send(msgNoHist, mainMenuKeyboard())
		}
		return err
	}

	movies, ok, err := t.d.Search.Reuse(t.ctx, t.userID, entry.Kind, entry.Identity)
	if err != nil {
		return err
	}
	if !ok && entry.Kind == domain.KindTitle {
		req := services.Request{
			UserID:     t.userID,
			Kind:       domain.KindTitle,
			Identity:   entry.Identity,
			TitleQuery: entry.Identity,
		}
		res, err := t.d.Search.FetchOrReuse(t.ctx, req)
		if err != nil {
			return err
		}
		movies = res.Movies
	}
	if len(movies) == 0 {
		return t.send(msgNothing, mainMenuKeyboard())
	}

	b := &session.Browse{
		UserID:       t.userID,
		Kind:         domain.KindHistory,
		Identity:     entry.Identity,
		List:         movies,
		Index:        1,
		RemoteOffset: 1,
		RemotePages:  1,
	}
	t.data.StartBrowse(b)
	t.data.State = session.StateHistoryBrowsing

	v, err := t.d.Pager.Current(b)
	if err != nil {
		return err
	}
	return t.sendMovieView(v)
}

// onHistoryClear runs a filter-based purge: by period, by search type, or
// everything, keeping the all-results store in lockstep.
func (t *turn) onHistoryClear(param string) error {
	var sel services.Selection
	switch param {
	case string(services.PeriodDay), string(services.PeriodWeek), string(services.PeriodMonth):
		sel.Period = services.Period(param)
	case string(domain.KindTitle), string(domain.KindFilters):
		sel.Kind = domain.SearchKind(param)
	case "all":
	default:
		t.log.Info().Str("classification", "validation").Str("clear", param).Msg("unknown purge selector")
		return nil
	}
	queries, results, err := t.d.History.Purge(t.ctx, t.userID, sel)
	if err != nil {
		return err
	}
	t.data.History = nil
	t.data.State = session.StateNone
	if queries == 0 {
		return t.send("Под этот фильтр ничего не попало.", mainMenuKeyboard())
	}
	return t.send(fmt.Sprintf("Удалено записей истории: %d, сохранённых результатов: %d.", queries, results), mainMenuKeyboard())
}
