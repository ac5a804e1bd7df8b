// Package filters implements the multi-step filter accumulator and the query
// resolver that turns accumulated picks into a canonical search identity and
// a remote-query parameter set.
//
// The accumulator is deliberately forgiving: picks arrive as independent
// button presses with no call stack, so every merge uses set-if-absent
// semantics and unknown picks are no-ops. Canonicalization happens once, in
// Resolve, so that equivalent pick orders produce identical identities.
package filters

// Kind identifies one of the configurable filter sub-flows.
type Kind string

const (
	KindType    Kind = "type"
	KindGenre   Kind = "genre"
	KindCountry Kind = "country"
	KindYear    Kind = "year"
	KindRating  Kind = "rating"
	KindSort    Kind = "sort"
)

// Option is a selectable catalog entry: a stable slug used in callback
// payloads and a display label shown on the button and in identities.
type Option struct {
	Slug  string
	Label string
}

// Sort direction values as the remote service expects them.
const (
	SortAscending  = "1"
	SortDescending = "-1"
)

// DefaultSortField is applied when the user never configures sorting.
const DefaultSortField = "rating.kp"

// Menu is the top-level filter menu in display order. Completed sub-flows
// are removed from a session's copy; this slice is never mutated.
var Menu = []Kind{KindType, KindGenre, KindCountry, KindYear, KindRating, KindSort}

// MovieTypes lists the selectable media types in keyboard order.
var MovieTypes = []Option{
	{"movie", "фильм"},
	{"tv-series", "сериал"},
	{"cartoon", "мультфильм"},
	{"anime", "аниме"},
	{"animated-series", "мультсериал"},
}

// Genres lists the selectable genres in keyboard order. Two labels are
// shorthand aliases normalized before they reach a query: "18+" and "д/ф".
var Genres = []Option{
	{"biografiya", "биография"},
	{"boevik", "боевик"},
	{"vestern", "вестерн"},
	{"voennyy", "военный"},
	{"detektiv", "детектив"},
	{"detskiy", "детский"},
	{"dlya-vzroslyh", "18+"},
	{"dokumentalnyy", "д/ф"},
	{"drama", "драма"},
	{"igra", "игра"},
	{"istoriya", "история"},
	{"komediya", "комедия"},
	{"kriminal", "криминал"},
	{"melodrama", "мелодрама"},
	{"myuzikl", "мюзикл"},
	{"muzyka", "музыка"},
	{"priklyucheniya", "приключения"},
	{"semeynyy", "семейный"},
	{"sport", "спорт"},
	{"triller", "триллер"},
	{"uzhasy", "ужасы"},
	{"fantastika", "фантастика"},
	{"fentezi", "фэнтези"},
	{"film-nuar", "фильм-нуар"},
}

// Countries is the primary country keyboard; OtherCountries is the extended
// list offered behind a "more countries" button.
var Countries = []Option{
	{"Avstraliya", "Австралия"},
	{"Argentina", "Аргентина"},
	{"Belarus", "Беларусь"},
	{"Velikobritaniya", "Великобритания"},
	{"Vengriya", "Венгрия"},
	{"Germaniya", "Германия"},
	{"Gonkong", "Гонконг"},
	{"Izrail", "Израиль"},
	{"Indiya", "Индия"},
	{"Ispaniya", "Испания"},
	{"Islandiya", "Исландия"},
	{"Italiya", "Италия"},
	{"Kazahstan", "Казахстан"},
	{"Kanada", "Канада"},
	{"Kitay", "Китай"},
	{"Koreya-Yuzhnaya", "Корея Южная"},
	{"Meksika", "Мексика"},
	{"Niderlandy", "Нидерланды"},
	{"Norvegiya", "Норвегия"},
	{"Polsha", "Польша"},
	{"Rossiya", "Россия"},
	{"SSSR", "СССР"},
	{"SShA", "США"},
	{"Turciya", "Турция"},
	{"Ukraina", "Украина"},
	{"Franciya", "Франция"},
	{"Yaponiya", "Япония"},
}

// OtherCountries extends Countries for the secondary keyboard.
var OtherCountries = []Option{
	{"Avstriya", "Австрия"},
	{"Armeniya", "Армения"},
	{"Belgiya", "Бельгия"},
	{"Bolgariya", "Болгария"},
	{"Braziliya", "Бразилия"},
	{"Greciya", "Греция"},
	{"Gruziya", "Грузия"},
	{"Daniya", "Дания"},
	{"Egipet", "Египет"},
	{"Iran", "Иран"},
	{"Irlandiya", "Ирландия"},
	{"Latviya", "Латвия"},
	{"Litva", "Литва"},
	{"Portugaliya", "Португалия"},
	{"Rumyniya", "Румыния"},
	{"Serbiya", "Сербия"},
	{"Singapur", "Сингапур"},
	{"Slovakiya", "Словакия"},
	{"Sloveniya", "Словения"},
	{"Tadzhikistan", "Таджикистан"},
	{"Tailand", "Таиланд"},
	{"Uzbekistan", "Узбекистан"},
	{"Finlyandiya", "Финляндия"},
	{"Horvatiya", "Хорватия"},
	{"Chehiya", "Чехия"},
	{"Shveycariya", "Швейцария"},
	{"Shveciya", "Швеция"},
}

// SortFields lists the selectable sort fields. Slugs are the remote
// service's sortField values.
var SortFields = []Option{
	{"name", "по названию"},
	{"year", "по году выпуска"},
	{"rating.kp", "по рейтингу"},
	{"ageRating", "по возрасту+"},
	{"top10", "Топ-10"},
	{"top250", "Топ-250"},
}

// genreAliases maps shorthand display labels to the genre names the remote
// service understands.
var genreAliases = map[string]string{
	"18+": "для взрослых",
	"д/ф": "документальный",
}

// movieTypeLabels maps type slugs to display labels, for identity rendering.
var movieTypeLabels = func() map[string]string {
	m := make(map[string]string, len(MovieTypes))
	for _, o := range MovieTypes {
		m[o.Slug] = o.Label
	}
	return m
}()

// sortFieldLabels maps sort-field slugs to display labels.
var sortFieldLabels = func() map[string]string {
	m := make(map[string]string, len(SortFields))
	for _, o := range SortFields {
		m[o.Slug] = o.Label
	}
	return m
}()

// TypeLabel returns the display label for a movie-type slug, or the slug
// itself when unknown (remote data can carry types outside the catalog).
func TypeLabel(slug string) string {
	if l, ok := movieTypeLabels[slug]; ok {
		return l
	}
	return slug
}

// SortFieldLabel returns the display label for a sort-field slug.
func SortFieldLabel(slug string) string {
	if l, ok := sortFieldLabels[slug]; ok {
		return l
	}
	return slug
}

func canonicalGenre(label string) string {
	if alias, ok := genreAliases[label]; ok {
		return alias
	}
	return label
}
