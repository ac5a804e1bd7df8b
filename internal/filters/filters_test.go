package filters

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestPickTypeShrinksOfferList(t *testing.T) {
	a := New()
	if !a.PickType("movie") {
		t.Fatalf("PickType(movie) = false, want true")
	}
	for _, o := range a.TypeOptions() {
		if o.Slug == "movie" {
			t.Fatalf("movie still offered after being picked")
		}
	}
	if a.PickType("movie") {
		t.Fatalf("second PickType(movie) = true, want no-op")
	}
	if got := len(a.Types); got != 1 {
		t.Fatalf("len(Types) = %d, want 1", got)
	}
}

func TestPickUnknownIsNoOp(t *testing.T) {
	a := New()
	if a.PickType("radio-play") {
		t.Fatalf("unknown type accepted")
	}
	if a.PickGenre("nope") {
		t.Fatalf("unknown genre accepted")
	}
	if a.PickCountry("Atlantida") {
		t.Fatalf("unknown country accepted")
	}
	if a.PickSortField("shoe-size") {
		t.Fatalf("unknown sort field accepted")
	}
	if a.PickSortDirection("0") {
		t.Fatalf("invalid sort direction accepted")
	}
}

func TestFinishTypesDefault(t *testing.T) {
	a := New()
	labels, usedDefault := a.FinishTypes()
	if !usedDefault {
		t.Fatalf("usedDefault = false, want true")
	}
	want := []string{"фильм", "сериал"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("labels = %v, want %v", labels, want)
		}
	}
	for _, k := range a.MenuKinds() {
		if k == KindType {
			t.Fatalf("type sub-flow still on menu after finish")
		}
	}
}

func TestGenreExcludeMarker(t *testing.T) {
	a := New()
	a.MarkGenreExclude()
	if !a.PickGenre("uzhasy") {
		t.Fatalf("PickGenre(uzhasy) = false")
	}
	a.PickGenre("drama")
	got, usedDefault := a.FinishGenres()
	if usedDefault {
		t.Fatalf("usedDefault = true with explicit picks")
	}
	want := []string{"!ужасы", "+драма"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("genres = %v, want %v", got, want)
	}
}

func TestGenreAliases(t *testing.T) {
	a := New()
	a.PickGenre("dlya-vzroslyh")
	a.PickGenre("dokumentalnyy")
	got, _ := a.FinishGenres()
	want := []string{"+для взрослых", "+документальный"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("genres = %v, want %v", got, want)
	}
}

func TestNormalizeGenres(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"dangling marker dropped", []string{"+драма", "!"}, []string{"+драма"}},
		{"marker run collapses", []string{"!", "!", "!", "+ужасы"}, []string{"!ужасы"}},
		{"plain pass-through", []string{"+драма", "!ужасы"}, []string{"+драма", "!ужасы"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeGenres(tc.in)
			if fmt.Sprint(got) != fmt.Sprint(tc.want) {
				t.Fatalf("normalizeGenres(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseYear(t *testing.T) {
	cur := time.Now().Year()
	tests := []struct {
		in      string
		want    YearRange
		wantErr bool
	}{
		{"2005", YearRange{2005, 2005}, false},
		{" 2005-2010 ", YearRange{2005, 2010}, false},
		{"2010-2010", YearRange{2010, 2010}, false},
		{fmt.Sprint(cur), YearRange{cur, cur}, false},
		{"2010-2005", YearRange{}, true},
		{"1919", YearRange{}, true},
		{fmt.Sprint(cur + 1), YearRange{}, true},
		{"2000-2005-2010", YearRange{}, true},
		{"once upon a time", YearRange{}, true},
		{"", YearRange{}, true},
	}
	for _, tc := range tests {
		got, err := parseYear(tc.in, cur)
		if tc.wantErr {
			if !errors.Is(err, ErrBadYear) {
				t.Fatalf("parseYear(%q) err = %v, want ErrBadYear", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseYear(%q) err = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parseYear(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSetYearKeepsSubFlowOpenOnError(t *testing.T) {
	a := New()
	if err := a.SetYear("not-a-year"); !errors.Is(err, ErrBadYear) {
		t.Fatalf("SetYear err = %v, want ErrBadYear", err)
	}
	found := false
	for _, k := range a.MenuKinds() {
		if k == KindYear {
			found = true
		}
	}
	if !found {
		t.Fatalf("year sub-flow consumed despite invalid input")
	}
	if err := a.SetYear("1999-2001"); err != nil {
		t.Fatalf("SetYear err = %v", err)
	}
	if a.Year == nil || *a.Year != (YearRange{1999, 2001}) {
		t.Fatalf("Year = %v, want 1999-2001", a.Year)
	}
}

func TestRatingClicksOrderIndependent(t *testing.T) {
	a := New()
	if closed := a.ClickRating(9); closed {
		t.Fatalf("first click closed the range")
	}
	if closed := a.ClickRating(4); !closed {
		t.Fatalf("second click did not close the range")
	}
	if *a.Rating != (RatingRange{4, 9}) {
		t.Fatalf("Rating = %v, want 4-9", *a.Rating)
	}

	b := New()
	b.ClickRating(4)
	b.ClickRating(9)
	if *b.Rating != *a.Rating {
		t.Fatalf("click order changed the range: %v vs %v", *b.Rating, *a.Rating)
	}
}

func TestRatingOutOfScaleIgnored(t *testing.T) {
	a := New()
	if a.ClickRating(11) || a.ClickRating(-1) {
		t.Fatalf("out-of-scale click closed the range")
	}
	r, usedDefault := a.FinishRating()
	if !usedDefault || r != (RatingRange{7, 10}) {
		t.Fatalf("FinishRating = %v usedDefault=%v, want 7-10 default", r, usedDefault)
	}
}

func TestFinishRatingSinglePending(t *testing.T) {
	a := New()
	a.ClickRating(8)
	r, usedDefault := a.FinishRating()
	if usedDefault {
		t.Fatalf("usedDefault = true with a pending click")
	}
	if r != (RatingRange{8, 8}) {
		t.Fatalf("FinishRating = %v, want 8", r)
	}
	if r.String() != "8" {
		t.Fatalf("String() = %q, want %q", r.String(), "8")
	}
}

func menuHas(a *Accumulator, k Kind) bool {
	for _, m := range a.MenuKinds() {
		if m == k {
			return true
		}
	}
	return false
}

func TestSortCompletesAfterBothPicks(t *testing.T) {
	a := New()
	a.PickSortField("year")
	if !menuHas(a, KindSort) {
		t.Fatalf("sort sub-flow consumed after field only")
	}
	a.PickSortDirection(SortAscending)
	if menuHas(a, KindSort) {
		t.Fatalf("sort sub-flow still on menu after field and direction")
	}
}

func TestResolveAppliesDefaults(t *testing.T) {
	q, id := Resolve(New())
	if fmt.Sprint(q.Types) != fmt.Sprint([]string{"movie", "tv-series"}) {
		t.Fatalf("Types = %v", q.Types)
	}
	wantGenres := []string{"+драма", "!концерт", "!церемония", "!ток-шоу"}
	if fmt.Sprint(q.Genres) != fmt.Sprint(wantGenres) {
		t.Fatalf("Genres = %v, want %v", q.Genres, wantGenres)
	}
	if q.Rating != "7-10" || q.SortField != "rating.kp" || q.SortType != SortDescending {
		t.Fatalf("defaults not applied: %+v", q)
	}
	if q.Year != "" || len(q.Countries) != 0 {
		t.Fatalf("year/countries set without picks: %+v", q)
	}
	if !strings.Contains(id, "тип: фильм, сериал") || !strings.Contains(id, "рейтинг: 7-10") {
		t.Fatalf("identity = %q", id)
	}
	if strings.Contains(id, "концерт") {
		t.Fatalf("noise excludes leaked into identity: %q", id)
	}
}

func TestResolveIdentityClickOrderIndependent(t *testing.T) {
	a := New()
	a.PickType("tv-series")
	a.PickType("movie")
	a.PickGenre("komediya")
	a.PickGenre("drama")
	a.PickCountry("SShA")
	a.PickCountry("Rossiya")
	a.ClickRating(9)
	a.ClickRating(6)

	b := New()
	b.PickType("movie")
	b.PickType("tv-series")
	b.PickGenre("drama")
	b.PickGenre("komediya")
	b.PickCountry("Rossiya")
	b.PickCountry("SShA")
	b.ClickRating(6)
	b.ClickRating(9)

	_, idA := Resolve(a)
	_, idB := Resolve(b)
	if idA != idB {
		t.Fatalf("identities differ:\n%q\n%q", idA, idB)
	}
}

func TestResolveDoesNotMutateAccumulator(t *testing.T) {
	a := New()
	Resolve(a)
	if len(a.Types) != 0 || len(a.Genres) != 0 || a.Rating != nil || a.SortField != "" {
		t.Fatalf("Resolve mutated the accumulator: %+v", a)
	}
	if got := len(a.MenuKinds()); got != len(Menu) {
		t.Fatalf("Resolve consumed menu entries: %d left", got)
	}
}

func TestTitleIdentity(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Matrix  ", "matrix"},
		{"БРАТ", "брат"},
		{"Зелёная Миля", "зелёная миля"},
	}
	for _, tc := range tests {
		if got := TitleIdentity(tc.in); got != tc.want {
			t.Fatalf("TitleIdentity(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
