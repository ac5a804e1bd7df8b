// Package services – HistoryService
//
// This file implements the history log: filtered reads by search type and
// period, the grouped-date listing for the date keyboard, history paging,
// and filter-based purges kept in lockstep with the all-results store.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
	"github.com/ndorokhov/go-movie-bot/internal/repo"
)

// HistoryPageSize is the number of history entries per listing page.
const HistoryPageSize = 7

// dateWindow bounds the grouped-date listing for the date keyboard.
const dateWindow = 14 * 24 * time.Hour

// Period selects a time window for history reads and purges.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// Since translates a period into its lower time bound; zero means
// unbounded.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodDay:
		return now.Add(-24 * time.Hour)
	case PeriodWeek:
		return now.Add(-7 * 24 * time.Hour)
	case PeriodMonth:
		return now.Add(-30 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

// Selection combines the history filter axes: search type, period and exact
// date. Zero values leave an axis unconstrained; OnDate overrides Period.
type Selection struct {
	Kind   domain.SearchKind
	Period Period
	OnDate string // "2006-01-02"
}

func (sel Selection) filter(now time.Time) repo.Filter {
	f := repo.Filter{Kind: sel.Kind}
	if sel.OnDate != "" {
		f.OnDate = sel.OnDate
		return f
	}
	f.Since = sel.Period.Since(now)
	return f
}

// HistoryStore defines the history persistence contract.
type HistoryStore interface {
	ListQueries(ctx context.Context, db *gorm.DB, userID string, f repo.Filter) ([]domain.SearchQuery, error)
	GetQuery(ctx context.Context, db *gorm.DB, userID string, id uint) (*domain.SearchQuery, error)
	DistinctDates(ctx context.Context, db *gorm.DB, userID string, since time.Time) ([]string, error)
	PurgeQueries(ctx context.Context, db *gorm.DB, userID string, f repo.Filter) (int64, error)
}

// ResultPurger mirrors history purges onto the all-results store.
type ResultPurger interface {
	PurgeResults(ctx context.Context, db *gorm.DB, userID string, f repo.Filter) (int64, error)
}

// HistoryService reads and purges the search history.
type HistoryService struct {
	DB      *gorm.DB
	History HistoryStore
	Results ResultPurger
}

// NewHistoryService constructs a HistoryService.
func NewHistoryService(db *gorm.DB, history HistoryStore, results ResultPurger) *HistoryService {
	return &HistoryService{DB: db, History: history, Results: results}
}

// List returns the user's history entries matching sel, most recent first.
func (h *HistoryService) List(ctx context.Context, userID string, sel Selection) ([]domain.SearchQuery, error) {
	return h.History.ListQueries(ctx, h.DB, userID, sel.filter(time.Now().UTC()))
}

// Get fetches one history entry, mapping a missing row to
// ErrHistoryEntryNotFound (it may have been purged between listing and
// selection).
func (h *HistoryService) Get(ctx context.Context, userID string, id uint) (*domain.SearchQuery, error) {
	q, err := h.History.GetQuery(ctx, h.DB, userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrHistoryEntryNotFound
	}
	return q, err
}

// Dates returns the distinct search dates of the last 14 days, descending,
// for the exact-date keyboard.
func (h *HistoryService) Dates(ctx context.Context, userID string) ([]string, error) {
	return h.History.DistinctDates(ctx, h.DB, userID, time.Now().UTC().Add(-dateWindow))
}

// Page slices a listing into its 1-based page and reports the page count.
// An out-of-range page clamps to the nearest valid one.
func Page(entries []domain.SearchQuery, page int) ([]domain.SearchQuery, int) {
	if len(entries) == 0 {
		return nil, 0
	}
	total := (len(entries) + HistoryPageSize - 1) / HistoryPageSize
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	lo := (page - 1) * HistoryPageSize
	hi := lo + HistoryPageSize
	if hi > len(entries) {
		hi = len(entries)
	}
	return entries[lo:hi], total
}

// Purge deletes the user's history entries matching sel together with the
// matching all-results rows, in one transaction, so a purged entry never
// leaves orphaned result rows. It returns the removed row counts.
func (h *HistoryService) Purge(ctx context.Context, userID string, sel Selection) (queries, results int64, err error) {
	f := sel.filter(time.Now().UTC())
	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if queries, err = h.History.PurgeQueries(ctx, tx, userID, f); err != nil {
			return err
		}
		results, err = h.Results.PurgeResults(ctx, tx, userID, f)
		return err
	})
	return queries, results, err
}
