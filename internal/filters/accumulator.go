package filters

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Year input bounds. MinYear matches the earliest year the remote catalog
// holds meaningful data for; the upper bound is the current year at parse
// time.
const MinYear = 1920

// ErrBadYear reports a year entry that failed validation. Callers re-prompt
// with a skip option rather than aborting the flow.
var ErrBadYear = errors.New("filters: invalid year input")

// Default values applied by the per-kind finalizers when nothing was picked.
var (
	defaultTypes  = []string{"movie", "tv-series"}
	defaultGenres = []string{"+драма"}
)

const (
	defaultRatingLo = 7
	defaultRatingHi = 10
)

// YearRange is a closed year interval. Lo == Hi for a single-year pick.
type YearRange struct {
	Lo int
	Hi int
}

// String renders the range the way the remote service and the identity
// expect it: "2005" or "2005-2010".
func (y YearRange) String() string {
	if y.Lo == y.Hi {
		return strconv.Itoa(y.Lo)
	}
	return fmt.Sprintf("%d-%d", y.Lo, y.Hi)
}

// RatingRange is a closed rating interval on the 0..10 button scale.
type RatingRange struct {
	Lo int
	Hi int
}

// String renders "7-10", or a single value when Lo == Hi.
func (r RatingRange) String() string {
	if r.Lo == r.Hi {
		return strconv.Itoa(r.Lo)
	}
	return fmt.Sprintf("%d-%d", r.Lo, r.Hi)
}

// Accumulator collects filter picks across the multi-step configuration
// dialogue. Each pick is an independent button press; the accumulator keeps
// insertion order, shrinks the offer lists as options are consumed, and
// removes a sub-flow from the top-level menu once it completes.
//
// The zero value is not usable; construct with New.
type Accumulator struct {
	// Picked values, in click order.
	Types     []string // type slugs
	Genres    []string // signed entries: "+драма", "!ужасы"; a bare "!" is a pending exclude marker
	Countries []string // display names
	Year      *YearRange
	Rating    *RatingRange
	SortField string
	SortDir   string

	pendingRating int
	hasPending    bool

	menu           []Kind
	types          []Option
	genres         []Option
	countries      []Option
	otherCountries []Option
	sortFieldDone  bool
	sortDirDone    bool
}

// New returns an empty accumulator with full offer lists.
func New() *Accumulator {
	return &Accumulator{
		pendingRating:  -1,
		menu:           append([]Kind(nil), Menu...),
		types:          append([]Option(nil), MovieTypes...),
		genres:         append([]Option(nil), Genres...),
		countries:      append([]Option(nil), Countries...),
		otherCountries: append([]Option(nil), OtherCountries...),
	}
}

// MenuKinds returns the sub-flows still offered on the top-level menu.
func (a *Accumulator) MenuKinds() []Kind { return a.menu }

// TypeOptions returns the not-yet-picked type options.
func (a *Accumulator) TypeOptions() []Option { return a.types }

// GenreOptions returns the not-yet-picked genre options.
func (a *Accumulator) GenreOptions() []Option { return a.genres }

// CountryOptions returns the not-yet-picked options of the primary or the
// extended country keyboard.
func (a *Accumulator) CountryOptions(other bool) []Option {
	if other {
		return a.otherCountries
	}
	return a.countries
}

// SortFieldPending reports whether the sort sub-flow still needs a field.
func (a *Accumulator) SortFieldPending() bool { return !a.sortFieldDone }

// PickType records a type selection and removes it from the offer list.
// An unknown or already-consumed slug is a no-op and returns false.
func (a *Accumulator) PickType(slug string) bool {
	opt, ok := take(&a.types, slug)
	if !ok {
		return false
	}
	a.Types = append(a.Types, opt.Slug)
	return true
}

// FinishTypes closes the type sub-flow. When nothing was picked the default
// set (movie, tv-series) is applied and usedDefault is true. The returned
// labels are the display names of the effective selection.
func (a *Accumulator) FinishTypes() (labels []string, usedDefault bool) {
	if len(a.Types) == 0 {
		a.Types = append(a.Types, defaultTypes...)
		usedDefault = true
	}
	a.consumeMenu(KindType)
	for _, slug := range a.Types {
		labels = append(labels, TypeLabel(slug))
	}
	return labels, usedDefault
}

// PickGenre records a genre selection. The sign depends on whether a bare
// exclude marker is pending: MarkGenreExclude appends "!", and the next pick
// consumes it, turning into "!<genre>"; otherwise the pick is "+<genre>".
func (a *Accumulator) PickGenre(slug string) bool {
	opt, ok := take(&a.genres, slug)
	if !ok {
		return false
	}
	name := canonicalGenre(opt.Label)
	if n := len(a.Genres); n > 0 && a.Genres[n-1] == "!" {
		a.Genres[n-1] = "!" + name
	} else {
		a.Genres = append(a.Genres, "+"+name)
	}
	return true
}

// MarkGenreExclude arms the exclude sign for the next genre pick. Repeated
// presses are collapsed by normalizeGenres.
func (a *Accumulator) MarkGenreExclude() {
	a.Genres = append(a.Genres, "!")
}

// FinishGenres closes the genre sub-flow: normalizes the signed list and
// applies the default (+драма) when nothing effective was picked.
func (a *Accumulator) FinishGenres() (resolved []string, usedDefault bool) {
	a.Genres = normalizeGenres(a.Genres)
	if len(a.Genres) == 0 {
		a.Genres = append(a.Genres, defaultGenres...)
		usedDefault = true
	}
	a.consumeMenu(KindGenre)
	return append([]string(nil), a.Genres...), usedDefault
}

// PickCountry records a country from either keyboard, removing it from both
// offer lists so it cannot be picked twice.
func (a *Accumulator) PickCountry(slug string) bool {
	opt, ok := take(&a.countries, slug)
	if !ok {
		opt, ok = take(&a.otherCountries, slug)
	}
	if !ok {
		return false
	}
	a.Countries = append(a.Countries, opt.Label)
	return true
}

// FinishCountries closes the country sub-flow. Countries have no default:
// usedDefault just reports that the criterion stays unset.
func (a *Accumulator) FinishCountries() (names []string, usedDefault bool) {
	a.consumeMenu(KindCountry)
	if len(a.Countries) == 0 {
		return nil, true
	}
	return append([]string(nil), a.Countries...), false
}

// SetYear parses free-text year input ("2005" or "2005-2010") and closes the
// year sub-flow. Bounds are MinYear..time.Now().Year(); a reversed pair and
// extra dash segments are rejected; lo == hi collapses to a single year.
// On error the sub-flow stays open so the caller can re-prompt.
func (a *Accumulator) SetYear(text string) error {
	r, err := parseYear(text, time.Now().Year())
	if err != nil {
		return err
	}
	a.Year = &r
	a.consumeMenu(KindYear)
	return nil
}

// SkipYear closes the year sub-flow with no year criterion.
func (a *Accumulator) SkipYear() {
	a.consumeMenu(KindYear)
}

// ClickRating records one press on the 0..10 rating scale. The first press
// is held pending; the second closes the range (ordered lo-hi) and the
// sub-flow. Out-of-scale values are no-ops.
func (a *Accumulator) ClickRating(v int) (closed bool) {
	if v < 0 || v > 10 {
		return false
	}
	if !a.hasPending {
		a.pendingRating = v
		a.hasPending = true
		return false
	}
	lo, hi := a.pendingRating, v
	if lo > hi {
		lo, hi = hi, lo
	}
	a.Rating = &RatingRange{Lo: lo, Hi: hi}
	a.hasPending = false
	a.consumeMenu(KindRating)
	return true
}

// FinishRating closes the rating sub-flow on "end input". One pending click
// resolves to that single value; none applies the 7-10 default.
func (a *Accumulator) FinishRating() (r RatingRange, usedDefault bool) {
	switch {
	case a.Rating != nil:
		r = *a.Rating
	case a.hasPending:
		r = RatingRange{Lo: a.pendingRating, Hi: a.pendingRating}
		a.Rating = &r
		a.hasPending = false
	default:
		r = RatingRange{Lo: defaultRatingLo, Hi: defaultRatingHi}
		a.Rating = &r
		usedDefault = true
	}
	a.consumeMenu(KindRating)
	return r, usedDefault
}

// PickSortField records the sort field; unknown slugs are no-ops.
func (a *Accumulator) PickSortField(slug string) bool {
	if _, ok := sortFieldLabels[slug]; !ok {
		return false
	}
	a.SortField = slug
	a.sortFieldDone = true
	a.maybeFinishSort()
	return true
}

// PickSortDirection records the sort direction (SortAscending or
// SortDescending); anything else is a no-op.
func (a *Accumulator) PickSortDirection(dir string) bool {
	if dir != SortAscending && dir != SortDescending {
		return false
	}
	a.SortDir = dir
	a.sortDirDone = true
	a.maybeFinishSort()
	return true
}

func (a *Accumulator) maybeFinishSort() {
	if a.sortFieldDone && a.sortDirDone {
		a.consumeMenu(KindSort)
	}
}

func (a *Accumulator) consumeMenu(k Kind) {
	for i, m := range a.menu {
		if m == k {
			a.menu = append(a.menu[:i], a.menu[i+1:]...)
			return
		}
	}
}

func take(opts *[]Option, slug string) (Option, bool) {
	for i, o := range *opts {
		if o.Slug == slug {
			*opts = append((*opts)[:i], (*opts)[i+1:]...)
			return o, true
		}
	}
	return Option{}, false
}

// normalizeGenres resolves pending exclude markers in a signed genre list:
// runs of bare "!" collapse to one, a "!" followed by a pick signs that pick
// negative, and a trailing dangling "!" is dropped.
func normalizeGenres(in []string) []string {
	out := make([]string, 0, len(in))
	exclude := false
	for _, g := range in {
		if g == "!" {
			exclude = true
			continue
		}
		if exclude {
			exclude = false
			if !strings.HasPrefix(g, "!") {
				g = "!" + strings.TrimPrefix(g, "+")
			}
		}
		out = append(out, g)
	}
	return out
}

func parseYear(text string, maxYear int) (YearRange, error) {
	text = strings.TrimSpace(text)
	parts := strings.Split(text, "-")
	if len(parts) > 2 {
		return YearRange{}, ErrBadYear
	}
	vals := make([]int, 0, 2)
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < MinYear || n > maxYear {
			return YearRange{}, ErrBadYear
		}
		vals = append(vals, n)
	}
	if len(vals) == 1 {
		return YearRange{Lo: vals[0], Hi: vals[0]}, nil
	}
	lo, hi := vals[0], vals[1]
	if lo > hi {
		return YearRange{}, ErrBadYear
	}
	return YearRange{Lo: lo, Hi: hi}, nil
}
