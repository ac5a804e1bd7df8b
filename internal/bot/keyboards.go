package bot

import (
	"fmt"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
	"github.com/ndorokhov/go-movie-bot/internal/filters"
	"github.com/ndorokhov/go-movie-bot/internal/services"
	"github.com/ndorokhov/go-movie-bot/internal/session"
)

// filterKindLabels names the top-level filter menu entries.
var filterKindLabels = map[filters.Kind]string{
	filters.KindType:    "тип",
	filters.KindGenre:   "жанры",
	filters.KindCountry: "страны",
	filters.KindYear:    "год выпуска",
	filters.KindRating:  "рейтинг",
	filters.KindSort:    "сортировка",
}

func btn(text string, kind actionKind, param string) InlineKeyboardButton {
	return InlineKeyboardButton{Text: text, CallbackData: payload(kind, param)}
}

func grid(perRow int, buttons []InlineKeyboardButton) *InlineKeyboardMarkup {
	if perRow < 1 {
		perRow = 1
	}
	kb := &InlineKeyboardMarkup{}
	for len(buttons) > 0 {
		n := perRow
		if n > len(buttons) {
			n = len(buttons)
		}
		kb.InlineKeyboard = append(kb.InlineKeyboard, buttons[:n])
		buttons = buttons[n:]
	}
	return kb
}

func appendRow(kb *InlineKeyboardMarkup, row ...InlineKeyboardButton) *InlineKeyboardMarkup {
	kb.InlineKeyboard = append(kb.InlineKeyboard, row)
	return kb
}

// mainMenuKeyboard is the rest-state menu.
func mainMenuKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{btn("Поиск по названию", actMenu, "search")},
		{btn("Поиск по фильтрам", actMenu, "filters")},
		{btn("Отложенные фильмы", actMenu, "postponed")},
		{btn("История поиска", actMenu, "history")},
	}}
}

// filterMenuKeyboard offers only the not-yet-configured sub-flows plus the
// preview and search actions.
func filterMenuKeyboard(acc *filters.Accumulator) *InlineKeyboardMarkup {
	var buttons []InlineKeyboardButton
	for _, k := range acc.MenuKinds() {
		buttons = append(buttons, btn(filterKindLabels[k], actFilter, string(k)))
	}
	kb := grid(2, buttons)
	appendRow(kb, btn("Текущие фильтры", actFilter, filterView))
	appendRow(kb, btn("Начать поиск", actFilter, filterGo))
	return kb
}

func typeKeyboard(acc *filters.Accumulator) *InlineKeyboardMarkup {
	var buttons []InlineKeyboardButton
	for _, o := range acc.TypeOptions() {
		buttons = append(buttons, btn(o.Label, actType, o.Slug))
	}
	kb := grid(2, buttons)
	appendRow(kb, btn("Закончить ввод", actFilter, filterEnd))
	return kb
}

func genreKeyboard(acc *filters.Accumulator) *InlineKeyboardMarkup {
	var buttons []InlineKeyboardButton
	for _, o := range acc.GenreOptions() {
		buttons = append(buttons, btn(o.Label, actGenre, o.Slug))
	}
	kb := grid(3, buttons)
	appendRow(kb, btn("Исключить жанр", actGenre, "!"))
	appendRow(kb, btn("Закончить ввод", actFilter, filterEnd))
	return kb
}

func countryKeyboard(acc *filters.Accumulator, other bool) *InlineKeyboardMarkup {
	var buttons []InlineKeyboardButton
	for _, o := range acc.CountryOptions(other) {
		buttons = append(buttons, btn(o.Label, actCountry, o.Slug))
	}
	kb := grid(3, buttons)
	if other {
		appendRow(kb, btn("Основные страны", actCountry, "main"))
	} else {
		appendRow(kb, btn("Другие страны", actCountry, "other"))
	}
	appendRow(kb, btn("Закончить ввод", actFilter, filterEnd))
	return kb
}

func yearKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{btn("Пропустить год", actYear, "skip")},
	}}
}

func ratingKeyboard() *InlineKeyboardMarkup {
	var buttons []InlineKeyboardButton
	for v := 0; v <= 10; v++ {
		buttons = append(buttons, btn(fmt.Sprintf("%d", v), actRating, fmt.Sprintf("%d", v)))
	}
	kb := grid(6, buttons)
	appendRow(kb, btn("Закончить ввод", actFilter, filterEnd))
	return kb
}

func sortFieldKeyboard() *InlineKeyboardMarkup {
	var buttons []InlineKeyboardButton
	for _, o := range filters.SortFields {
		buttons = append(buttons, btn(o.Label, actSortField, o.Slug))
	}
	return grid(2, buttons)
}

func sortDirectionKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{
			btn("по возрастанию", actSortDir, filters.SortAscending),
			btn("по убыванию", actSortDir, filters.SortDescending),
		},
	}}
}

// movieKeyboard is the pagination grid for one movie page. Button presence
// follows the cursor: prev/next appear only when there is somewhere to go.
func movieKeyboard(v services.View, m domain.Movie) *InlineKeyboardMarkup {
	kb := &InlineKeyboardMarkup{}

	var nav []InlineKeyboardButton
	if v.HasPrev {
		nav = append(nav, btn("« Назад", actPage, pagePrev))
	}
	if v.HasNext {
		nav = append(nav, btn("Вперёд »", actPage, pageNext))
	}
	if len(nav) > 0 {
		kb.InlineKeyboard = append(kb.InlineKeyboard, nav)
	}

	fav := "В избранное"
	if m.IsFavorite {
		fav = "Убрать из избранного"
	}
	seen := "Просмотрено"
	if m.IsViewed {
		seen = "Не просмотрено"
	}
	appendRow(kb, btn(fav, actToggle, services.FlagFavorite), btn(seen, actToggle, services.FlagViewed))
	appendRow(kb, btn("Описание", actPage, pageDesc))
	appendRow(kb, InlineKeyboardButton{Text: "Страница фильма", URL: movieURL(m)})
	appendRow(kb, btn("Новый поиск", actPage, pageNew))
	return kb
}

// descriptionKeyboard is the reduced grid of the description sub-mode.
func descriptionKeyboard(m domain.Movie) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{InlineKeyboardButton{Text: "Страница фильма", URL: movieURL(m)}},
		{btn("Назад к фильму", actPage, pageBack)},
	}}
}

// boundaryKeyboard is shown with the terminal "all results shown" notice.
func boundaryKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{btn("Назад", actPage, pageBack)},
		{btn("Новый поиск", actPage, pageNew)},
	}}
}

// postponedMenuKeyboard offers only the categories that currently have rows.
func postponedMenuKeyboard(favorites, viewed int64) *InlineKeyboardMarkup {
	kb := &InlineKeyboardMarkup{}
	if favorites > 0 {
		appendRow(kb, btn(fmt.Sprintf("Избранное (%d)", favorites), actPostponed, "favorites"))
	}
	if viewed > 0 {
		appendRow(kb, btn(fmt.Sprintf("Просмотренное (%d)", viewed), actPostponed, "viewed"))
	}
	return kb
}

// historyTypeKeyboard picks the search-type filter for listing and purging.
func historyTypeKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{btn("По названию", actHistory, string(domain.KindTitle))},
		{btn("По фильтрам", actHistory, string(domain.KindFilters))},
		{btn("Все", actHistory, "all")},
		{btn("Очистить историю", actHistory, "clear")},
	}}
}

func historyPeriodKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{btn("За неделю", actPeriod, string(services.PeriodWeek))},
		{btn("За месяц", actPeriod, string(services.PeriodMonth))},
		{btn("По дате", actPeriod, "date")},
		{btn("За всё время", actPeriod, string(services.PeriodAll))},
	}}
}

func historyDatesKeyboard(dates []string) *InlineKeyboardMarkup {
	var buttons []InlineKeyboardButton
	for _, d := range dates {
		buttons = append(buttons, btn(d, actDate, d))
	}
	return grid(2, buttons)
}

// historyListKeyboard numbers the entries of the current listing page and
// adds paging arrows when there is more than one page.
func historyListKeyboard(entries []domain.SearchQuery, page, totalPages int) *InlineKeyboardMarkup {
	var buttons []InlineKeyboardButton
	for i, e := range entries {
		n := (page-1)*services.HistoryPageSize + i + 1
		buttons = append(buttons, btn(fmt.Sprintf("%d", n), actEntry, fmt.Sprintf("%d", e.ID)))
	}
	kb := grid(4, buttons)
	var nav []InlineKeyboardButton
	if page > 1 {
		nav = append(nav, btn("« Назад", actHistPage, pagePrev))
	}
	if page < totalPages {
		nav = append(nav, btn("Вперёд »", actHistPage, pageNext))
	}
	if len(nav) > 0 {
		kb.InlineKeyboard = append(kb.InlineKeyboard, nav)
	}
	return kb
}

// clearKeyboard offers the purge taxonomy: period, type, everything.
func clearKeyboard() *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{btn("За сутки", actClear, string(services.PeriodDay))},
		{btn("За неделю", actClear, string(services.PeriodWeek))},
		{btn("За месяц", actClear, string(services.PeriodMonth))},
		{btn("Поиски по названию", actClear, string(domain.KindTitle))},
		{btn("Поиски по фильтрам", actClear, string(domain.KindFilters))},
		{btn("Полностью", actClear, "all")},
	}}
}

// browseKindForNewSearch routes the "new search" action to the entry point
// that produced the current browse.
func browseKindForNewSearch(b *session.Browse) domain.SearchKind {
	if b == nil {
		return domain.KindTitle
	}
	return b.Kind
}
