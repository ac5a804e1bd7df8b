package filters

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// noiseGenres are always excluded from filter searches, after any user
// picks. The catalog files concert footage and award ceremonies as movies;
// nobody asks a movie bot for those.
var noiseGenres = []string{"!концерт", "!церемония", "!ток-шоу"}

// RemoteQuery is the resolved parameter set for a filter search against the
// remote catalog. Set-valued criteria are in canonical order; empty slices
// and strings mean the criterion is not constrained.
type RemoteQuery struct {
	Types     []string // type slugs
	Genres    []string // signed genre names, noise excludes appended
	Countries []string // display names
	Year      string   // "2005" / "2005-2010", empty when unset
	Rating    string   // "7-10"
	SortField string
	SortType  string // "1" ascending, "-1" descending
}

var russianLower = cases.Lower(language.Russian)

// TitleIdentity canonicalizes free-text title input into the identity stored
// with history entries and result rows: trimmed and lowercased.
func TitleIdentity(text string) string {
	return russianLower.String(strings.TrimSpace(text))
}

// Resolve turns an accumulator into the remote query and the canonical
// search identity. Defaults are applied for type, genres, rating and sort
// without mutating the accumulator, so Resolve doubles as the
// "current filters" preview. Two accumulations that are semantically equal
// after defaults yield byte-identical identities regardless of click order.
func Resolve(a *Accumulator) (RemoteQuery, string) {
	types := append([]string(nil), a.Types...)
	if len(types) == 0 {
		types = append(types, defaultTypes...)
	}
	sortByCatalog(types, MovieTypes)

	genres := normalizeGenres(a.Genres)
	if len(genres) == 0 {
		genres = append(genres, defaultGenres...)
	}
	include, exclude := splitSigned(genres)
	sort.Strings(include)
	sort.Strings(exclude)

	countries := append([]string(nil), a.Countries...)
	sort.Strings(countries)

	rating := RatingRange{Lo: defaultRatingLo, Hi: defaultRatingHi}
	switch {
	case a.Rating != nil:
		rating = *a.Rating
	case a.hasPending:
		rating = RatingRange{Lo: a.pendingRating, Hi: a.pendingRating}
	}

	sortField := a.SortField
	if sortField == "" {
		sortField = DefaultSortField
	}
	sortDir := a.SortDir
	if sortDir == "" {
		sortDir = SortDescending
	}

	q := RemoteQuery{
		Types:     types,
		Countries: countries,
		Rating:    rating.String(),
		SortField: sortField,
		SortType:  sortDir,
	}
	for _, g := range include {
		q.Genres = append(q.Genres, "+"+g)
	}
	for _, g := range exclude {
		q.Genres = append(q.Genres, "!"+g)
	}
	q.Genres = append(q.Genres, noiseGenres...)
	if a.Year != nil {
		q.Year = a.Year.String()
	}

	return q, identityOf(q, include, exclude)
}

// identityOf renders the deterministic identity string stored in history.
// Segment order is fixed; unset year and countries are omitted.
func identityOf(q RemoteQuery, include, exclude []string) string {
	var b strings.Builder

	labels := make([]string, len(q.Types))
	for i, t := range q.Types {
		labels[i] = TypeLabel(t)
	}
	b.WriteString("тип: ")
	b.WriteString(strings.Join(labels, ", "))

	if len(include) > 0 {
		b.WriteString(" | жанры: ")
		b.WriteString(strings.Join(include, ", "))
	}
	if len(exclude) > 0 {
		b.WriteString(" | искл. жанры: ")
		b.WriteString(strings.Join(exclude, ", "))
	}
	if len(q.Countries) > 0 {
		b.WriteString(" | страны: ")
		b.WriteString(strings.Join(q.Countries, ", "))
	}
	if q.Year != "" {
		b.WriteString(" | год: ")
		b.WriteString(q.Year)
	}
	b.WriteString(" | рейтинг: ")
	b.WriteString(q.Rating)
	b.WriteString(" | сортировка: ")
	b.WriteString(SortFieldLabel(q.SortField))
	if q.SortType == SortAscending {
		b.WriteString(", по возрастанию")
	} else {
		b.WriteString(", по убыванию")
	}
	return b.String()
}

func splitSigned(genres []string) (include, exclude []string) {
	for _, g := range genres {
		switch {
		case strings.HasPrefix(g, "!"):
			exclude = append(exclude, strings.TrimPrefix(g, "!"))
		case strings.HasPrefix(g, "+"):
			include = append(include, strings.TrimPrefix(g, "+"))
		default:
			include = append(include, g)
		}
	}
	return include, exclude
}

// sortByCatalog orders slugs by their position in a catalog list, so the
// identity does not depend on click order. Unknown slugs sink to the end.
func sortByCatalog(slugs []string, catalog []Option) {
	pos := make(map[string]int, len(catalog))
	for i, o := range catalog {
		pos[o.Slug] = i
	}
	sort.SliceStable(slugs, func(i, j int) bool {
		pi, iok := pos[slugs[i]]
		pj, jok := pos[slugs[j]]
		if iok != jok {
			return iok
		}
		if !iok {
			return slugs[i] < slugs[j]
		}
		return pi < pj
	})
}
