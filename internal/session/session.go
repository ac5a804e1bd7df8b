// Package session holds the ephemeral conversational state of the bot: one
// record per (user, chat), created on first command, cleared on reset or a
// new search, never persisted across restarts.
//
// Handlers read-modify-write a session within a single update; the store
// hands out a per-session lock so concurrent webhook deliveries for the same
// key serialize instead of interleaving accumulator or cursor updates.
package session

import (
	"sync"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
	"github.com/ndorokhov/go-movie-bot/internal/filters"
)

// State is the top-level conversational state.
type State int

const (
	// StateNone means no active flow; only commands are expected.
	StateNone State = iota
	// StateQuery is the idle rest state with the filter menu open.
	StateQuery
	StateTypePick
	StateGenrePick
	StateCountryPick
	StateCountryOtherPick
	StateYearEntry
	StateRatingPick
	StateSortFieldPick
	StateSortDirectionPick
	// StateTitleEntry awaits free-text title input.
	StateTitleEntry
	// StateBrowsing is active result pagination.
	StateBrowsing
	StateHistoryMenu
	StateHistoryFilterPick
	StateHistoryDateOrPeriod
	StateHistoryBrowsing
	StatePostponedBrowsing
)

var stateNames = map[State]string{
	StateNone:                "none",
	StateQuery:               "query",
	StateTypePick:            "type_pick",
	StateGenrePick:           "genre_pick",
	StateCountryPick:         "country_pick",
	StateCountryOtherPick:    "country_other_pick",
	StateYearEntry:           "year_entry",
	StateRatingPick:          "rating_pick",
	StateSortFieldPick:       "sort_field_pick",
	StateSortDirectionPick:   "sort_direction_pick",
	StateTitleEntry:          "title_entry",
	StateBrowsing:            "browsing",
	StateHistoryMenu:         "history_menu",
	StateHistoryFilterPick:   "history_filter_pick",
	StateHistoryDateOrPeriod: "history_date_or_period",
	StateHistoryBrowsing:     "history_browsing",
	StatePostponedBrowsing:   "postponed_browsing",
}

// String returns the log-friendly state name.
func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Browse is the pagination cursor over the materialized result window.
// Index is 1-based within List; RemoteOffset counts remote pages already
// consumed and RemotePages the total the remote service reported.
type Browse struct {
	List         []domain.Movie
	Index        int
	RemoteOffset int
	RemotePages  int

	UserID   string
	Kind     domain.SearchKind
	Identity string

	// Remote continuation inputs. Query is set for filter searches,
	// TitleQuery for title searches; cache-hit and postponed windows carry
	// neither and never continue remotely.
	Query      filters.RemoteQuery
	TitleQuery string

	// PostponedField is "favorites" or "viewed" while browsing the
	// postponed store; the toggle coordinator requeries the window when the
	// matching flag flips.
	PostponedField string

	// ShowingDescription marks the full-description sub-mode that reuses
	// the same index with swapped content.
	ShowingDescription bool

	// MessageID is the chat message the pagination view edits in place.
	MessageID int
}

// Current returns the movie at the cursor, or false when the window is
// empty or the index is out of range. Rendering must never proceed on false.
func (b *Browse) Current() (domain.Movie, bool) {
	if b == nil || b.Index < 1 || b.Index > len(b.List) {
		return domain.Movie{}, false
	}
	return b.List[b.Index-1], true
}

// HistoryBrowse tracks the history listing flow: the filtered entries, the
// 1-based listing page, and the selection that produced them.
type HistoryBrowse struct {
	Entries []domain.SearchQuery
	Page    int
	Period  string
	Kind    domain.SearchKind
	Dates   []string
}

// Data is the per-session record. Pointer fields are sub-flow payloads that
// exist only while their flow is active; merge helpers use set-if-absent
// semantics so re-entering a sub-flow never wipes unrelated progress.
type Data struct {
	State   State
	Filters *filters.Accumulator
	Browse  *Browse
	History *HistoryBrowse
}

// EnsureFilters returns the accumulator, creating it only when absent.
// Repeated entry into a filter sub-flow keeps already-chosen filters.
func (d *Data) EnsureFilters() *filters.Accumulator {
	if d.Filters == nil {
		d.Filters = filters.New()
	}
	return d.Filters
}

// EnsureHistory returns the history browsing payload, creating it on first
// use.
func (d *Data) EnsureHistory() *HistoryBrowse {
	if d.History == nil {
		d.History = &HistoryBrowse{}
	}
	return d.History
}

// StartBrowse replaces any previous pagination cursor with a fresh one.
func (d *Data) StartBrowse(b *Browse) {
	d.Browse = b
	d.State = StateBrowsing
}

// Reset clears the session back to the no-flow rest state.
func (d *Data) Reset() {
	*d = Data{}
}

// Key identifies one session.
type Key struct {
	UserID string
	ChatID int64
}

type entry struct {
	mu   sync.Mutex
	data Data
}

// Store is the in-memory session registry. Sessions are created lazily on
// first Acquire and live until the process exits.
type Store struct {
	mu       sync.Mutex
	sessions map[Key]*entry
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[Key]*entry)}
}

// Acquire returns the session data for key with its lock held. The caller
// owns the session until it calls release; mutations made through the
// returned pointer are visible to the next Acquire.
func (s *Store) Acquire(key Key) (data *Data, release func()) {
	s.mu.Lock()
	e, ok := s.sessions[key]
	if !ok {
		e = &entry{}
		s.sessions[key] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	return &e.data, e.mu.Unlock
}

// Len reports the number of known sessions, for metrics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
