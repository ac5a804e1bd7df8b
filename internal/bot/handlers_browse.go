package bot

import (
	"github.com/ndorokhov/go-movie-bot/internal/domain"
	"github.com/ndorokhov/go-movie-bot/internal/repo"
	"github.com/ndorokhov/go-movie-bot/internal/services"
	"github.com/ndorokhov/go-movie-bot/internal/session"
)

// startBrowse opens a pagination window over a resolved search. Cache hits
// carry no continuation inputs: they are single logical pages.
func (t *turn) startBrowse(req services.Request, res services.Result) error {
	b := &session.Browse{
		UserID:       t.userID,
		Kind:         req.Kind,
		Identity:     req.Identity,
		List:         res.Movies,
		Index:        1,
		RemoteOffset: 1,
		RemotePages:  res.TotalPages,
	}
	if !res.CacheHit {
		b.TitleQuery = req.TitleQuery
		b.Query = req.Query
	}
	t.data.StartBrowse(b)

	v, err := t.d.Pager.Current(b)
	if err != nil {
		return err
	}
	return t.sendMovieView(v)
}

// sendMovieView renders one pagination step: photo card when a poster
// exists, text card otherwise, terminal notices for the boundary states.
func (t *turn) sendMovieView(v services.View) error {
	switch {
	case v.Empty:
		t.data.Browse = nil
		t.data.State = session.StateNone
		return t.send(msgNothing, mainMenuKeyboard())
	case v.Boundary:
		return t.send(msgBoundary, boundaryKeyboard())
	}

	b := t.data.Browse
	total := len(b.List)
	text := renderMovie(v.Movie, b.Index, total)
	kb := movieKeyboard(v, v.Movie)

	if v.Movie.PosterURL != "" {
		if id, err := t.d.TG.SendPhoto(t.ctx, t.chatID, v.Movie.PosterURL, text, kb); err == nil {
			b.MessageID = id
			return nil
		}
		// Poster delivery failures degrade to a text card.
	}
	id, err := t.d.TG.SendMessage(t.ctx, t.chatID, text, kb)
	if err != nil {
		return err
	}
	b.MessageID = id
	return nil
}

func (t *turn) onPage(param string) error {
	b := t.data.Browse
	if b == nil {
		return services.ErrBrowsingExpired
	}
	switch param {
	case pageNext, pagePrev:
		b.ShowingDescription = false
		v, err := t.d.Pager.Advance(t.ctx, b, param == pageNext)
		if err != nil {
			return err
		}
		return t.sendMovieView(v)
	case pageDesc:
		m, ok := b.Current()
		if !ok {
			return services.ErrBrowsingExpired
		}
		b.ShowingDescription = true
		return t.send(renderDescription(m), descriptionKeyboard(m))
	case pageBack:
		b.ShowingDescription = false
		v, err := t.d.Pager.Current(b)
		if err != nil {
			return err
		}
		return t.sendMovieView(v)
	case pageNew:
		kind := browseKindForNewSearch(b)
		t.data.Browse = nil
		if kind == domain.KindFilters {
			t.data.Filters = nil
			return t.startFilterSearch()
		}
		return t.startTitleSearch()
	}
	t.log.Info().Str("classification", "validation").Str("page", param).Msg("unknown page action")
	return nil
}

// onToggle flips a favorite/viewed flag on the current movie: the record is
// mutated first, the coordinator persists it everywhere, and a postponed
// window whose criterion the toggle broke is requeried from durable state.
func (t *turn) onToggle(param string) error {
	b := t.data.Browse
	if b == nil {
		return services.ErrBrowsingExpired
	}
	m, ok := b.Current()
	if !ok {
		return services.ErrBrowsingExpired
	}

	switch param {
	case services.FlagFavorite:
		m.IsFavorite = !m.IsFavorite
	case services.FlagViewed:
		m.IsViewed = !m.IsViewed
	default:
		t.log.Info().Str("classification", "validation").Str("flag", param).Msg("unknown toggle flag")
		return nil
	}
	if err := t.d.Status.Toggle(t.ctx, t.userID, m); err != nil {
		return err
	}
	b.List[b.Index-1] = m

	if b.Kind == domain.KindPostponed && t.toggleBrokeCriterion(m, param) {
		column := repo.FlagFavorite
		if b.PostponedField == "viewed" {
			column = repo.FlagViewed
		}
		movies, err := t.d.Status.ListPostponed(t.ctx, t.userID, column)
		if err != nil {
			return err
		}
		v, err := t.d.Pager.ReplaceList(b, movies)
		if err != nil {
			return err
		}
		return t.sendMovieView(v)
	}

	v, err := t.d.Pager.Current(b)
	if err != nil {
		return err
	}
	return t.sendMovieView(v)
}

// toggleBrokeCriterion reports whether the flag that was just cleared is
// the one the postponed window filters on.
func (t *turn) toggleBrokeCriterion(m domain.Movie, flag string) bool {
	switch t.data.Browse.PostponedField {
	case "favorites":
		return flag == services.FlagFavorite && !m.IsFavorite
	case "viewed":
		return flag == services.FlagViewed && !m.IsViewed
	default:
		return false
	}
}

func (t *turn) startPostponed() error {
	favorites, viewed, err := t.d.Status.Categories(t.ctx, t.userID)
	if err != nil {
		return err
	}
	if favorites == 0 && viewed == 0 {
		return t.send(msgNoPost, mainMenuKeyboard())
	}
	return t.send("Отложенные фильмы:", postponedMenuKeyboard(favorites, viewed))
}

func (t *turn) onPostponedPick(param string) error {
	var column string
	switch param {
	case "favorites":
		column = repo.FlagFavorite
	case "viewed":
		column = repo.FlagViewed
	default:
		t.log.Info().Str("classification", "validation").Str("category", param).Msg("unknown postponed category")
		return nil
	}
	movies, err := t.d.Status.ListPostponed(t.ctx, t.userID, column)
	if err != nil {
		return err
	}
	if len(movies) == 0 {
		return t.send(msgNoPost, mainMenuKeyboard())
	}
	b := &session.Browse{
		UserID:         t.userID,
		Kind:           domain.KindPostponed,
		List:           movies,
		Index:          1,
		RemoteOffset:   1,
		RemotePages:    1,
		PostponedField: param,
	}
	t.data.StartBrowse(b)
	t.data.State = session.StatePostponedBrowsing

	v, err := t.d.Pager.Current(b)
	if err != nil {
		return err
	}
	return t.sendMovieView(v)
}
