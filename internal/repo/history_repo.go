// This file provides repository functions for the search-history store.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only CRUD persistence and query composition.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// Filter narrows history reads and purges. The zero value matches every
// entry of a user. Since and OnDate are mutually exclusive by construction
// at the call sites (period buttons vs the exact-date keyboard).
type Filter struct {
	Kind   domain.SearchKind // empty = any search type
	Since  time.Time         // zero = no lower time bound
	OnDate string            // "2006-01-02"; empty = no exact-date constraint
}

func (f Filter) apply(tx *gorm.DB) *gorm.DB {
	if f.Kind != "" {
		tx = tx.Where("kind = ?", f.Kind)
	}
	if !f.Since.IsZero() {
		tx = tx.Where("searched_at >= ?", f.Since)
	}
	if f.OnDate != "" {
		tx = tx.Where("date(searched_at) = ?", f.OnDate)
	}
	return tx
}

// ReplaceQuery records a resolved search identity with most-recent-wins
// semantics: any prior entry for (userID, identity) is deleted and a fresh
// row inserted, so both the auto id and the timestamp reflect the latest
// run. Callers wrap it in a transaction together with the result rows.
func ReplaceQuery(ctx context.Context, db *gorm.DB, userID string, kind domain.SearchKind, identity string, at time.Time) (*domain.SearchQuery, error) {
	tx := db.WithContext(ctx)
	if err := tx.Where("user_id = ? AND identity = ?", userID, identity).
		Delete(&domain.SearchQuery{}).Error; err != nil {
		return nil, err
	}
	q := &domain.SearchQuery{
		UserID:     userID,
		Kind:       kind,
		Identity:   identity,
		SearchedAt: at,
	}
	if err := tx.Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

// ListQueries returns the user's history entries matching f, most recent
// first (by auto id, which ReplaceQuery keeps aligned with recency).
func ListQueries(ctx context.Context, db *gorm.DB, userID string, f Filter) ([]domain.SearchQuery, error) {
	var out []domain.SearchQuery
	tx := db.WithContext(ctx).Where("user_id = ?", userID)
	err := f.apply(tx).Order("id desc").Find(&out).Error
	return out, err
}

// GetQuery fetches one history entry by id, enforcing ownership.
func GetQuery(ctx context.Context, db *gorm.DB, userID string, id uint) (*domain.SearchQuery, error) {
	var q domain.SearchQuery
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// DistinctDates returns the distinct search dates ("2006-01-02") of the
// user's entries since the given bound, descending. The date keyboard uses
// it with a 14-day bound.
func DistinctDates(ctx context.Context, db *gorm.DB, userID string, since time.Time) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.SearchQuery{}).
		Distinct("date(searched_at)").
		Where("user_id = ? AND searched_at >= ?", userID, since).
		Order("date(searched_at) desc").
		Pluck("date(searched_at)", &out).Error
	return out, err
}

// PurgeQueries deletes the user's history entries matching f and returns the
// number of rows removed. Result rows are purged in lockstep by the service
// layer inside the same transaction.
func PurgeQueries(ctx context.Context, db *gorm.DB, userID string, f Filter) (int64, error) {
	tx := db.WithContext(ctx).Where("user_id = ?", userID)
	res := f.apply(tx).Delete(&domain.SearchQuery{})
	return res.RowsAffected, res.Error
}
