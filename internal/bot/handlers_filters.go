package bot

import (
	"strconv"
	"strings"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
	"github.com/ndorokhov/go-movie-bot/internal/filters"
	"github.com/ndorokhov/go-movie-bot/internal/services"
	"github.com/ndorokhov/go-movie-bot/internal/session"
)

func (t *turn) startTitleSearch() error {
	t.data.Reset()
	t.data.State = session.StateTitleEntry
	return t.send(msgAskTitle, nil)
}

func (t *turn) runTitleSearch(text string) error {
	identity := filters.TitleIdentity(text)
	if identity == "" {
		t.log.Info().Str("classification", "validation").Msg("empty title input")
		return t.send(msgAskTitle, nil)
	}
	req := services.Request{
		UserID:     t.userID,
		Kind:       domain.KindTitle,
		Identity:   identity,
		TitleQuery: text,
	}
	res, err := t.d.Search.FetchOrReuse(t.ctx, req)
	if err != nil {
		return err
	}
	if len(res.Movies) == 0 {
		// Stay in title entry so the user can just type again.
		return t.send(msgNoTitle, nil)
	}
	return t.startBrowse(req, res)
}

func (t *turn) startFilterSearch() error {
	// Entering the menu never wipes already-chosen filters; a fresh flow
	// starts only from /start or a completed search.
	t.data.State = session.StateQuery
	acc := t.data.EnsureFilters()
	return t.send("Настройте фильтры и начните поиск:", filterMenuKeyboard(acc))
}

// onFilter handles the top-level filter menu: sub-flow entry, the preview,
// the shared "end input" action, and search start.
func (t *turn) onFilter(param string) error {
	acc := t.data.EnsureFilters()
	switch param {
	case filterView:
		// Preview never consumes menu entries.
		if err := t.send(renderFilterPreview(acc), nil); err != nil {
			return err
		}
		return t.send("Настройте фильтры и начните поиск:", filterMenuKeyboard(acc))
	case filterEnd:
		return t.endSubFlow()
	case filterGo:
		return t.runFilterSearch()
	}
	switch filters.Kind(param) {
	case filters.KindType:
		t.data.State = session.StateTypePick
		return t.editOrSend("Выберите тип:", typeKeyboard(acc))
	case filters.KindGenre:
		t.data.State = session.StateGenrePick
		return t.editOrSend("Выберите жанры:", genreKeyboard(acc))
	case filters.KindCountry:
		t.data.State = session.StateCountryPick
		return t.editOrSend("Выберите страны:", countryKeyboard(acc, false))
	case filters.KindYear:
		t.data.State = session.StateYearEntry
		return t.editOrSend(msgAskYear, yearKeyboard())
	case filters.KindRating:
		t.data.State = session.StateRatingPick
		return t.editOrSend("Выберите диапазон рейтинга (два клика):", ratingKeyboard())
	case filters.KindSort:
		t.data.State = session.StateSortFieldPick
		return t.editOrSend("Сортировать:", sortFieldKeyboard())
	}
	t.log.Info().Str("classification", "validation").Str("filter", param).Msg("unknown filter kind")
	return nil
}

// endSubFlow finalizes the sub-flow the session is currently in, applying
// the documented default when nothing was picked and telling the user so.
func (t *turn) endSubFlow() error {
	acc := t.data.EnsureFilters()
	var notice string
	switch t.data.State {
	case session.StateTypePick:
		labels, usedDefault := acc.FinishTypes()
		if usedDefault {
			notice = renderDefaultNotice("Типы", strings.Join(labels, ", "))
		}
	case session.StateGenrePick:
		resolved, usedDefault := acc.FinishGenres()
		if usedDefault {
			notice = renderDefaultNotice("Жанры", strings.Join(resolved, ", "))
		}
	case session.StateCountryPick, session.StateCountryOtherPick:
		if _, unset := acc.FinishCountries(); unset {
			notice = "Страны не выбраны — без ограничения по странам"
		}
	case session.StateRatingPick:
		r, usedDefault := acc.FinishRating()
		if usedDefault {
			notice = renderDefaultNotice("Рейтинг", r.String())
		}
	default:
		// Self-healing: end-input with no active sub-flow just reopens the
		// menu.
	}
	t.data.State = session.StateQuery
	if notice != "" {
		if err := t.send(notice, nil); err != nil {
			return err
		}
	}
	return t.send("Настройте фильтры и начните поиск:", filterMenuKeyboard(acc))
}

func (t *turn) onTypePick(param string) error {
	t.data.State = session.StateTypePick
	acc := t.data.EnsureFilters()
	if !acc.PickType(param) {
		t.log.Info().Str("classification", "validation").Str("type", param).Msg("type not in offered set")
		return nil
	}
	return t.refreshKeyboard(typeKeyboard(acc))
}

func (t *turn) onGenrePick(param string) error {
	t.data.State = session.StateGenrePick
	acc := t.data.EnsureFilters()
	if param == "!" {
		acc.MarkGenreExclude()
		return t.send("Следующий выбранный жанр будет исключён.", nil)
	}
	if !acc.PickGenre(param) {
		t.log.Info().Str("classification", "validation").Str("genre", param).Msg("genre not in offered set")
		return nil
	}
	return t.refreshKeyboard(genreKeyboard(acc))
}

func (t *turn) onCountryPick(param string) error {
	acc := t.data.EnsureFilters()
	switch param {
	case "other":
		t.data.State = session.StateCountryOtherPick
		return t.refreshKeyboard(countryKeyboard(acc, true))
	case "main":
		t.data.State = session.StateCountryPick
		return t.refreshKeyboard(countryKeyboard(acc, false))
	}
	if t.data.State != session.StateCountryOtherPick {
		t.data.State = session.StateCountryPick
	}
	if !acc.PickCountry(param) {
		t.log.Info().Str("classification", "validation").Str("country", param).Msg("country not in offered set")
		return nil
	}
	return t.refreshKeyboard(countryKeyboard(acc, t.data.State == session.StateCountryOtherPick))
}

func (t *turn) onYearAction(param string) error {
	if param != "skip" {
		t.log.Info().Str("classification", "validation").Str("year", param).Msg("unknown year action")
		return nil
	}
	t.data.EnsureFilters().SkipYear()
	t.data.State = session.StateQuery
	return t.send("Настройте фильтры и начните поиск:", filterMenuKeyboard(t.data.EnsureFilters()))
}

func (t *turn) onYearText(text string) error {
	acc := t.data.EnsureFilters()
	if err := acc.SetYear(text); err != nil {
		// Validation errors re-prompt in place, with the skip option.
		t.log.Info().Str("classification", "validation").Str("input", text).Msg("year input rejected")
		return t.send(msgBadYear, yearKeyboard())
	}
	t.data.State = session.StateQuery
	return t.send("Настройте фильтры и начните поиск:", filterMenuKeyboard(acc))
}

func (t *turn) onRatingClick(param string) error {
	v, err := strconv.Atoi(param)
	if err != nil {
		t.log.Info().Str("classification", "validation").Str("rating", param).Msg("malformed rating value")
		return nil
	}
	t.data.State = session.StateRatingPick
	acc := t.data.EnsureFilters()
	if acc.ClickRating(v) {
		t.data.State = session.StateQuery
		return t.send("Настройте фильтры и начните поиск:", filterMenuKeyboard(acc))
	}
	return nil
}

func (t *turn) onSortField(param string) error {
	acc := t.data.EnsureFilters()
	if !acc.PickSortField(param) {
		t.log.Info().Str("classification", "validation").Str("sort_field", param).Msg("sort field not in offered set")
		return nil
	}
	t.data.State = session.StateSortDirectionPick
	return t.editOrSend("Направление сортировки:", sortDirectionKeyboard())
}

func (t *turn) onSortDirection(param string) error {
	acc := t.data.EnsureFilters()
	if !acc.PickSortDirection(param) {
		t.log.Info().Str("classification", "validation").Str("sort_dir", param).Msg("invalid sort direction")
		return nil
	}
	t.data.State = session.StateQuery
	return t.send("Настройте фильтры и начните поиск:", filterMenuKeyboard(acc))
}

func (t *turn) runFilterSearch() error {
	acc := t.data.EnsureFilters()
	query, identity := filters.Resolve(acc)
	req := services.Request{
		UserID:   t.userID,
		Kind:     domain.KindFilters,
		Identity: identity,
		Query:    query,
	}
	res, err := t.d.Search.FetchOrReuse(t.ctx, req)
	if err != nil {
		return err
	}
	if len(res.Movies) == 0 {
		if err := t.send(msgNoByFlt, nil); err != nil {
			return err
		}
		return t.send("Настройте фильтры и начните поиск:", filterMenuKeyboard(acc))
	}
	return t.startBrowse(req, res)
}

// refreshKeyboard swaps the pressed message's grid so consumed options
// disappear.
func (t *turn) refreshKeyboard(kb *InlineKeyboardMarkup) error {
	if t.cb != nil && t.cb.Message != nil {
		if err := t.d.TG.EditMessageReplyMarkup(t.ctx, t.chatID, t.cb.Message.MessageID, kb); err == nil {
			return nil
		}
	}
	return t.send("Продолжайте выбор:", kb)
}
