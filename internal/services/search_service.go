// Package services – SearchService
//
// This file implements the result cache and dedup store logic: deciding, for
// a given user and search identity, whether to replay previously stored
// results or issue a fresh remote query, and keeping the all-results store
// and the history log consistent while doing so.
package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
	"github.com/ndorokhov/go-movie-bot/internal/filters"
	"github.com/ndorokhov/go-movie-bot/internal/kinopoisk"
	"github.com/ndorokhov/go-movie-bot/internal/repo"
)

// cacheHitPages is the nominal page count reported for cache hits. Cached
// results are shown as one logical page with no remote continuation; the
// constant only feeds the "pages" display.
const cacheHitPages = 2

// Searcher is the remote catalog contract required by SearchService.
type Searcher interface {
	SearchByTitle(ctx context.Context, query string, page int) (kinopoisk.Page, error)
	SearchByFilters(ctx context.Context, q filters.RemoteQuery, page int) (kinopoisk.Page, error)
}

// ResultStore defines the all-results persistence contract.
type ResultStore interface {
	ListResults(ctx context.Context, db *gorm.DB, userID, identity string) ([]domain.MovieResult, error)
	InsertResults(ctx context.Context, db *gorm.DB, rows []domain.MovieResult) error
	DeleteResults(ctx context.Context, db *gorm.DB, userID, identity string) (int64, error)
}

// HistoryWriter is the slice of the history store SearchService needs.
type HistoryWriter interface {
	ReplaceQuery(ctx context.Context, db *gorm.DB, userID string, kind domain.SearchKind, identity string, at time.Time) (*domain.SearchQuery, error)
}

// FlagSource reads durable favorite/viewed flags; the postponed store is
// authoritative for them during any re-materialization.
type FlagSource interface {
	GetPostponed(ctx context.Context, db *gorm.DB, userID, movieID string) (*domain.PostponedMovie, error)
}

// Request describes one resolved search: its identity plus the inputs
// needed to run it remotely. TitleQuery is set for title searches, Query for
// filter searches.
type Request struct {
	UserID     string
	Kind       domain.SearchKind
	Identity   string
	TitleQuery string
	Query      filters.RemoteQuery
}

// Result is the outcome of FetchOrReuse.
type Result struct {
	Movies     []domain.Movie
	TotalPages int
	CacheHit   bool
}

// SearchService resolves searches against the cache or the remote catalog.
type SearchService struct {
	DB        *gorm.DB
	API       Searcher
	Results   ResultStore
	History   HistoryWriter
	Postponed FlagSource
}

// NewSearchService constructs a SearchService.
func NewSearchService(db *gorm.DB, api Searcher, results ResultStore, history HistoryWriter, postponed FlagSource) *SearchService {
	return &SearchService{DB: db, API: api, Results: results, History: history, Postponed: postponed}
}

// FetchOrReuse resolves one search. Stored rows for (user, identity) are a
// cache hit: they are replayed with a refresh-by-replace (fresh ids and
// dates, flags re-read from the postponed store, history entry refreshed the
// same way) and a nominal page count. Otherwise the remote catalog is
// queried for the first page; zero usable results cause no writes at all.
func (s *SearchService) FetchOrReuse(ctx context.Context, req Request) (Result, error) {
	movies, ok, err := s.Reuse(ctx, req.UserID, req.Kind, req.Identity)
	if err != nil {
		return Result{}, err
	}
	if ok {
		return Result{Movies: movies, TotalPages: cacheHitPages, CacheHit: true}, nil
	}

	page, err := s.fetch(ctx, req, 1)
	if err != nil {
		return Result{}, err
	}
	docs := filterDocs(req, page.Docs)
	if len(docs) == 0 {
		return Result{}, nil
	}

	rows, err := s.materialize(ctx, req, docs)
	if err != nil {
		return Result{}, err
	}
	now := time.Now().UTC()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Results.InsertResults(ctx, tx, rows); err != nil {
			return err
		}
		_, err := s.History.ReplaceQuery(ctx, tx, req.UserID, req.Kind, req.Identity, now)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	out := make([]domain.Movie, len(rows))
	for i, r := range rows {
		out[i] = domain.FromResult(r, req.Kind)
	}
	return Result{Movies: out, TotalPages: page.Pages}, nil
}

// Reuse replays stored rows for (userID, identity) if any exist: one
// transaction deletes them, re-inserts copies with fresh ids and dates, and
// refreshes the matching history entry, so "most recently (re)searched"
// ordering stays correct. Flags come from the postponed store, not the
// stale rows. ok is false on a cache miss.
func (s *SearchService) Reuse(ctx context.Context, userID string, kind domain.SearchKind, identity string) (movies []domain.Movie, ok bool, err error) {
	stored, err := s.Results.ListResults(ctx, s.DB, userID, identity)
	if err != nil {
		return nil, false, err
	}
	if len(stored) == 0 {
		return nil, false, nil
	}

	now := time.Now().UTC()
	fresh := make([]domain.MovieResult, len(stored))
	for i, r := range stored {
		viewed, favorite, err := s.currentFlags(ctx, userID, r.MovieID)
		if err != nil {
			return nil, false, err
		}
		r.ID = 0
		r.SearchedAt = now
		r.IsViewed = viewed
		r.IsFavorite = favorite
		fresh[i] = r
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.Results.DeleteResults(ctx, tx, userID, identity); err != nil {
			return err
		}
		if err := s.Results.InsertResults(ctx, tx, fresh); err != nil {
			return err
		}
		_, err := s.History.ReplaceQuery(ctx, tx, userID, kind, identity, now)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	movies = make([]domain.Movie, len(fresh))
	for i, r := range fresh {
		movies[i] = domain.FromResult(r, kind)
	}
	return movies, true, nil
}

// FetchPage runs a fresh remote call for a continuation page, bypassing the
// cache lookup. Continuation batches are display-only: the store keeps the
// rows of the initial resolve, so (user, movie, identity) stays unique and
// replays return exactly the first page. Status flags are still seeded from
// the postponed store.
func (s *SearchService) FetchPage(ctx context.Context, req Request, page int) ([]domain.Movie, int, error) {
	p, err := s.fetch(ctx, req, page)
	if err != nil {
		return nil, 0, err
	}
	docs := filterDocs(req, p.Docs)
	if len(docs) == 0 {
		return nil, p.Pages, nil
	}
	rows, err := s.materialize(ctx, req, docs)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.Movie, len(rows))
	for i, r := range rows {
		out[i] = domain.FromResult(r, req.Kind)
	}
	return out, p.Pages, nil
}

func (s *SearchService) fetch(ctx context.Context, req Request, page int) (kinopoisk.Page, error) {
	if req.Kind == domain.KindTitle {
		return s.API.SearchByTitle(ctx, req.TitleQuery, page)
	}
	return s.API.SearchByFilters(ctx, req.Query, page)
}

// filterDocs applies the acceptance rules: every search drops items lacking
// both descriptions; title searches additionally require the fuzzy word
// match against the candidate name.
func filterDocs(req Request, docs []kinopoisk.Doc) []kinopoisk.Doc {
	if req.Kind == domain.KindTitle {
		return kinopoisk.FilterByTitle(req.TitleQuery, docs)
	}
	return kinopoisk.FilterDescribed(docs)
}

// materialize converts remote docs into store rows, seeding the status
// flags from the postponed store.
func (s *SearchService) materialize(ctx context.Context, req Request, docs []kinopoisk.Doc) ([]domain.MovieResult, error) {
	now := time.Now().UTC()
	rows := make([]domain.MovieResult, len(docs))
	for i, d := range docs {
		movieID := strconv.Itoa(d.ID)
		viewed, favorite, err := s.currentFlags(ctx, req.UserID, movieID)
		if err != nil {
			return nil, err
		}
		rows[i] = domain.MovieResult{
			UserID:           req.UserID,
			MovieID:          movieID,
			Kind:             req.Kind,
			Identity:         req.Identity,
			SearchedAt:       now,
			Name:             d.Name,
			AltName:          d.AlternativeName,
			MovieType:        d.Type,
			Year:             d.Year,
			Countries:        kinopoisk.JoinNames(d.Countries),
			Genres:           kinopoisk.JoinNames(d.Genres),
			Rating:           d.Rating.KP,
			AgeRating:        d.AgeRating,
			ShortDescription: d.ShortDescription,
			Description:      d.Description,
			PosterURL:        d.Poster.URL,
			IsSeries:         d.IsSeries,
			IsViewed:         viewed,
			IsFavorite:       favorite,
		}
	}
	return rows, nil
}

func (s *SearchService) currentFlags(ctx context.Context, userID, movieID string) (viewed, favorite bool, err error) {
	p, err := s.Postponed.GetPostponed(ctx, s.DB, userID, movieID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return p.IsViewed, p.IsFavorite, nil
}
