// This file provides repository functions for the all-results store: one row
// per (user, movie, search identity), written when a search resolves and
// replayed on cache hits.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
)

// ListResults returns the stored result rows for (userID, identity) in
// insertion order. An empty slice means a cache miss.
func ListResults(ctx context.Context, db *gorm.DB, userID, identity string) ([]domain.MovieResult, error) {
	var out []domain.MovieResult
	err := db.WithContext(ctx).
		Where("user_id = ? AND identity = ?", userID, identity).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// InsertResults persists a batch of result rows. IDs must be zero; the
// store assigns fresh ones.
func InsertResults(ctx context.Context, db *gorm.DB, rows []domain.MovieResult) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rows).Error
}

// DeleteResults removes every stored row for (userID, identity) and returns
// the number of rows removed. Paired with InsertResults inside one
// transaction for the cache-hit refresh.
func DeleteResults(ctx context.Context, db *gorm.DB, userID, identity string) (int64, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND identity = ?", userID, identity).
		Delete(&domain.MovieResult{})
	return res.RowsAffected, res.Error
}

// UpdateResultFlags sets both status flags on every stored row for
// (userID, movieID), across all search identities, so future cache-hit
// renders stay consistent with the postponed store.
func UpdateResultFlags(ctx context.Context, db *gorm.DB, userID, movieID string, viewed, favorite bool) error {
	return db.WithContext(ctx).
		Model(&domain.MovieResult{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Updates(map[string]any{"is_viewed": viewed, "is_favorite": favorite}).Error
}

// PurgeResults deletes the user's result rows matching f, mirroring
// PurgeQueries so the two stores stay in lockstep.
func PurgeResults(ctx context.Context, db *gorm.DB, userID string, f Filter) (int64, error) {
	tx := db.WithContext(ctx).Where("user_id = ?", userID)
	res := f.apply(tx).Delete(&domain.MovieResult{})
	return res.RowsAffected, res.Error
}
