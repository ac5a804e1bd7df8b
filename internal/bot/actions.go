package bot

import "strings"

// actionKind is the closed set of recognized callback payload kinds. Every
// button press encodes "kind#param"; unknown kinds are logged no-ops.
type actionKind string

const (
	actMenu      actionKind = "menu"    // top-level menu routing
	actFilter    actionKind = "filter"  // filter menu: sub-flow entry, preview, end, search
	actType      actionKind = "type"    // movie type pick
	actGenre     actionKind = "genre"   // genre pick or exclude marker
	actCountry   actionKind = "country" // country pick or keyboard switch
	actYear      actionKind = "year"    // year skip
	actRating    actionKind = "rating"  // rating scale click
	actSortField actionKind = "sortf"   // sort field pick
	actSortDir   actionKind = "sortd"   // sort direction pick
	actPage      actionKind = "page"    // pagination movement and sub-modes
	actToggle    actionKind = "toggle"  // favorite/viewed flips
	actPostponed actionKind = "post"    // postponed category entry
	actHistory   actionKind = "hist"    // history type filter
	actPeriod    actionKind = "period"  // history period filter
	actDate      actionKind = "date"    // exact-date pick
	actEntry     actionKind = "entry"   // history entry selection
	actHistPage  actionKind = "histpage"
	actClear     actionKind = "clear" // history purge options
)

// Filter-menu params.
const (
	filterView = "view"
	filterEnd  = "end"
	filterGo   = "go"
)

// Pagination params.
const (
	pageNext = "next"
	pagePrev = "prev"
	pageDesc = "desc"
	pageBack = "back"
	pageNew  = "new"
)

// parseAction splits a callback payload into its kind and parameter. The
// parameter may itself contain '#' (never the kind), so only the first
// separator splits.
func parseAction(data string) (actionKind, string, bool) {
	kind, param, found := strings.Cut(data, "#")
	if !found || kind == "" {
		return "", "", false
	}
	return actionKind(kind), param, true
}

func payload(kind actionKind, param string) string {
	return string(kind) + "#" + param
}
