package bot

import (
	"fmt"
	"html"
	"strings"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
	"github.com/ndorokhov/go-movie-bot/internal/filters"
	"github.com/ndorokhov/go-movie-bot/internal/services"
)

// movieURL is the public catalog page for a movie record.
func movieURL(m domain.Movie) string {
	return "https://www.kinopoisk.ru/film/" + m.MovieID + "/"
}

// renderMovie builds the HTML card shown for one pagination step.
func renderMovie(m domain.Movie, index, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>", html.EscapeString(m.Name))
	if m.AltName != "" {
		fmt.Fprintf(&b, " / %s", html.EscapeString(m.AltName))
	}
	b.WriteString("\n")
	if m.Year > 0 {
		fmt.Fprintf(&b, "Год: %d\n", m.Year)
	}
	fmt.Fprintf(&b, "Тип: %s\n", html.EscapeString(filters.TypeLabel(m.MovieType)))
	if m.Genres != "" {
		fmt.Fprintf(&b, "Жанры: %s\n", html.EscapeString(m.Genres))
	}
	if m.Countries != "" {
		fmt.Fprintf(&b, "Страны: %s\n", html.EscapeString(m.Countries))
	}
	if m.Rating > 0 {
		fmt.Fprintf(&b, "Рейтинг: %.1f\n", m.Rating)
	}
	if m.AgeRating > 0 {
		fmt.Fprintf(&b, "Возраст: %d+\n", m.AgeRating)
	}
	if m.ShortDescription != "" {
		fmt.Fprintf(&b, "\n%s\n", html.EscapeString(m.ShortDescription))
	}
	var marks []string
	if m.IsFavorite {
		marks = append(marks, "⭐ в избранном")
	}
	if m.IsViewed {
		marks = append(marks, "✅ просмотрено")
	}
	if len(marks) > 0 {
		b.WriteString("\n" + strings.Join(marks, " · ") + "\n")
	}
	fmt.Fprintf(&b, "\n%d из %d", index, total)
	return b.String()
}

// renderDescription is the full-description sub-mode content.
func renderDescription(m domain.Movie) string {
	text := m.Description
	if text == "" {
		text = m.ShortDescription
	}
	return fmt.Sprintf("<b>%s</b>\n\n%s", html.EscapeString(m.Name), html.EscapeString(text))
}

// renderFilterPreview shows the would-be search identity with defaults
// applied, without consuming menu entries.
func renderFilterPreview(acc *filters.Accumulator) string {
	_, identity := filters.Resolve(acc)
	return "Текущие фильтры:\n" + html.EscapeString(identity)
}

var kindIcons = map[domain.SearchKind]string{
	domain.KindTitle:   "🔎",
	domain.KindFilters: "🎛",
}

// renderHistoryPage numbers the entries of one listing page:
// "N. <date> <type icon> <identity>".
func renderHistoryPage(entries []domain.SearchQuery, page, totalPages int) string {
	var b strings.Builder
	b.WriteString("<b>История поиска</b>\n\n")
	for i, e := range entries {
		n := (page-1)*services.HistoryPageSize + i + 1
		icon := kindIcons[e.Kind]
		fmt.Fprintf(&b, "%d. %s %s %s\n", n, e.SearchedAt.Format("02.01.2006"), icon, html.EscapeString(e.Identity))
	}
	if totalPages > 1 {
		fmt.Fprintf(&b, "\nСтраница %d из %d", page, totalPages)
	}
	return b.String()
}

// User-facing notices. Exact wording is presentation, not contract.
const (
	msgGreeting = "Привет! Я помогу найти фильм или сериал.\nВыберите действие:"
	msgHelps    = "/start — главное меню\n/help — справка\n/movie_search — поиск по названию\n/movie_by_filters — поиск по фильтрам\n/movie_postponed — отложенные фильмы\n/history — история поиска"
	msgAskTitle = "Введите название фильма или сериала:"
	msgAskYear  = "Введите год или диапазон (например, 2005 или 2005-2010):"
	msgBadYear  = "Не понял год. Введите, например, 2005 или 2005-2010, либо пропустите."
	msgNoTitle  = "Ничего не нашлось. Попробуйте другое название."
	msgNoByFlt  = "По таким фильтрам ничего нет. Попробуйте изменить фильтры."
	msgTryLater = "Сервис сейчас недоступен. Попробуйте позже."
	msgExpired  = "Сессия просмотра закончилась. Начните новый поиск по названию:"
	msgBoundary = "Все результаты показаны."
	msgNothing  = "В этом разделе ничего не осталось."
	msgNoPost   = "Отложенных фильмов пока нет."
	msgNoHist   = "История поиска пуста."
	msgFault    = "Что-то пошло не так. Попробуйте позже."
)

// renderDefaultNotice tells the user a default was substituted for a
// skipped filter.
func renderDefaultNotice(what, value string) string {
	return fmt.Sprintf("%s не выбраны — использую по умолчанию: %s", what, html.EscapeString(value))
}
