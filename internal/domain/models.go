// Package domain defines the persistence models for search history, search
// results, and postponed (favorite/viewed) movies. These types are mapped
// with GORM and form the core data layer of the bot.
package domain

import (
	"time"
)

// SearchKind tags where a result list came from. It is stored alongside
// history entries and result rows and drives the "new search" routing and
// the postponed-browsing toggle path.
type SearchKind string

const (
	// KindTitle marks a search resolved from free-text title input.
	KindTitle SearchKind = "title_search"
	// KindFilters marks a search resolved from the filter accumulator.
	KindFilters SearchKind = "filter_search"
	// KindPostponed marks a result list materialized from the postponed store.
	KindPostponed SearchKind = "postponed"
	// KindHistory marks a result list replayed from a history entry.
	KindHistory SearchKind = "history"
)

// SearchQuery is one history entry: a resolved search identity for a user.
//
// Re-running the identical identity replaces (deletes and recreates) the
// prior row so that both ID and SearchedAt reflect the most recent run —
// history ordering relies on ID recency.
type SearchQuery struct {
	ID         uint       `json:"id"          gorm:"primaryKey;autoIncrement"`
	UserID     string     `json:"user_id"     gorm:"type:varchar(64);not null;index:idx_user_queries"`
	Kind       SearchKind `json:"kind"        gorm:"type:varchar(32);not null"`
	Identity   string     `json:"identity"    gorm:"type:text;not null"`
	SearchedAt time.Time  `json:"searched_at" gorm:"not null;index"`
}

// TableName returns the database table name for SearchQuery.
func (SearchQuery) TableName() string { return "search_queries" }

// MovieResult is one catalog item as seen by one user in one search context.
// There is one row per (user, movie, search identity); the same movie found
// under two identities yields two rows, both kept in sync on flag toggles.
type MovieResult struct {
	ID         uint       `json:"id"          gorm:"primaryKey;autoIncrement"`
	UserID     string     `json:"user_id"     gorm:"type:varchar(64);not null;index:idx_user_results"`
	MovieID    string     `json:"movie_id"    gorm:"type:varchar(32);not null;index"`
	Kind       SearchKind `json:"kind"        gorm:"type:varchar(32);not null"`
	Identity   string     `json:"identity"    gorm:"type:text;not null"`
	SearchedAt time.Time  `json:"searched_at" gorm:"not null;index"`

	Name             string  `json:"name"              gorm:"type:text"`
	AltName          string  `json:"alt_name"          gorm:"type:text"`
	MovieType        string  `json:"movie_type"        gorm:"type:varchar(32)"`
	Year             int     `json:"year"`
	Countries        string  `json:"countries"         gorm:"type:text"`
	Genres           string  `json:"genres"            gorm:"type:text"`
	Rating           float64 `json:"rating"`
	AgeRating        int     `json:"age_rating"`
	ShortDescription string  `json:"short_description" gorm:"type:text"`
	Description      string  `json:"description"       gorm:"type:text"`
	PosterURL        string  `json:"poster_url"        gorm:"type:text"`
	IsSeries         bool    `json:"is_series"`
	IsViewed         bool    `json:"is_viewed"`
	IsFavorite       bool    `json:"is_favorite"`
}

// TableName returns the database table name for MovieResult.
func (MovieResult) TableName() string { return "movie_results" }

// PostponedMovie is the durable favorite/viewed bookkeeping for one movie and
// one user, independent of any search identity. A row exists only while at
// least one of the two flags is set; it is deleted when both go false.
type PostponedMovie struct {
	ID      uint      `json:"id"       gorm:"primaryKey;autoIncrement"`
	UserID  string    `json:"user_id"  gorm:"type:varchar(64);not null;uniqueIndex:ux_postponed_user_movie"`
	MovieID string    `json:"movie_id" gorm:"type:varchar(32);not null;uniqueIndex:ux_postponed_user_movie"`
	AddedAt time.Time `json:"added_at" gorm:"not null"`

	Name             string  `json:"name"              gorm:"type:text"`
	AltName          string  `json:"alt_name"          gorm:"type:text"`
	MovieType        string  `json:"movie_type"        gorm:"type:varchar(32)"`
	Year             int     `json:"year"`
	Countries        string  `json:"countries"         gorm:"type:text"`
	Genres           string  `json:"genres"            gorm:"type:text"`
	Rating           float64 `json:"rating"`
	AgeRating        int     `json:"age_rating"`
	ShortDescription string  `json:"short_description" gorm:"type:text"`
	Description      string  `json:"description"       gorm:"type:text"`
	PosterURL        string  `json:"poster_url"        gorm:"type:text"`
	IsSeries         bool    `json:"is_series"`
	IsViewed         bool    `json:"is_viewed"`
	IsFavorite       bool    `json:"is_favorite"`
}

// TableName returns the database table name for PostponedMovie.
func (PostponedMovie) TableName() string { return "postponed_movies" }

// Movie is the in-memory record driving pagination rendering. It mirrors a
// MovieResult row plus the search context it was materialized under; the
// pagination layer flips its flags before handing it to the status
// coordinator for persistence.
type Movie struct {
	MovieID          string
	Name             string
	AltName          string
	MovieType        string
	Year             int
	Countries        string
	Genres           string
	Rating           float64
	AgeRating        int
	ShortDescription string
	Description      string
	PosterURL        string
	IsSeries         bool
	IsViewed         bool
	IsFavorite       bool
	Kind             SearchKind
	Identity         string
}

// FromResult converts a stored result row into a pagination record, tagging
// it with the browsing context it is shown under. The identity is carried
// only for contexts that can be re-searched (title/filter browsing).
func FromResult(r MovieResult, kind SearchKind) Movie {
	identity := r.Identity
	if kind != KindTitle && kind != KindFilters {
		identity = ""
	}
	return Movie{
		MovieID:          r.MovieID,
		Name:             r.Name,
		AltName:          r.AltName,
		MovieType:        r.MovieType,
		Year:             r.Year,
		Countries:        r.Countries,
		Genres:           r.Genres,
		Rating:           r.Rating,
		AgeRating:        r.AgeRating,
		ShortDescription: r.ShortDescription,
		Description:      r.Description,
		PosterURL:        r.PosterURL,
		IsSeries:         r.IsSeries,
		IsViewed:         r.IsViewed,
		IsFavorite:       r.IsFavorite,
		Kind:             kind,
		Identity:         identity,
	}
}

// FromPostponed converts a postponed row into a pagination record. Postponed
// rows are identity-agnostic, so Kind is always KindPostponed.
func FromPostponed(p PostponedMovie) Movie {
	return Movie{
		MovieID:          p.MovieID,
		Name:             p.Name,
		AltName:          p.AltName,
		MovieType:        p.MovieType,
		Year:             p.Year,
		Countries:        p.Countries,
		Genres:           p.Genres,
		Rating:           p.Rating,
		AgeRating:        p.AgeRating,
		ShortDescription: p.ShortDescription,
		Description:      p.Description,
		PosterURL:        p.PosterURL,
		IsSeries:         p.IsSeries,
		IsViewed:         p.IsViewed,
		IsFavorite:       p.IsFavorite,
		Kind:             KindPostponed,
	}
}
