// This file provides repository functions for the postponed store: at most
// one row per (user, movie), existing only while at least one of the
// favorite/viewed flags is set.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
)

// Flag columns accepted by ListPostponed and CountPostponed. The column
// name is spliced into the query, so only these constants may be passed.
const (
	FlagViewed   = "is_viewed"
	FlagFavorite = "is_favorite"
)

// GetPostponed fetches the postponed row for (userID, movieID), or
// ErrNotFound when the movie carries no flags.
func GetPostponed(ctx context.Context, db *gorm.DB, userID, movieID string) (*domain.PostponedMovie, error) {
	var p domain.PostponedMovie
	err := db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePostponed inserts a new postponed row derived from a pagination
// record. Search-context fields are not part of the model: postponed rows
// are identity-agnostic.
func CreatePostponed(ctx context.Context, db *gorm.DB, userID string, m domain.Movie) (*domain.PostponedMovie, error) {
	p := &domain.PostponedMovie{
		UserID:           userID,
		MovieID:          m.MovieID,
		AddedAt:          time.Now().UTC(),
		Name:             m.Name,
		AltName:          m.AltName,
		MovieType:        m.MovieType,
		Year:             m.Year,
		Countries:        m.Countries,
		Genres:           m.Genres,
		Rating:           m.Rating,
		AgeRating:        m.AgeRating,
		ShortDescription: m.ShortDescription,
		Description:      m.Description,
		PosterURL:        m.PosterURL,
		IsSeries:         m.IsSeries,
		IsViewed:         m.IsViewed,
		IsFavorite:       m.IsFavorite,
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePostponedFlags sets both status flags on an existing postponed row.
func UpdatePostponedFlags(ctx context.Context, db *gorm.DB, userID, movieID string, viewed, favorite bool) error {
	return db.WithContext(ctx).
		Model(&domain.PostponedMovie{}).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Updates(map[string]any{"is_viewed": viewed, "is_favorite": favorite}).Error
}

// DeletePostponed removes the postponed row for (userID, movieID). Called
// when both flags go false.
func DeletePostponed(ctx context.Context, db *gorm.DB, userID, movieID string) error {
	return db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", userID, movieID).
		Delete(&domain.PostponedMovie{}).Error
}

// ListPostponed returns the user's postponed rows with the given flag set,
// most recently added first (reverse-chronological by auto id).
func ListPostponed(ctx context.Context, db *gorm.DB, userID, flagColumn string) ([]domain.PostponedMovie, error) {
	var out []domain.PostponedMovie
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(flagColumn+" = ?", true).
		Order("id desc").
		Find(&out).Error
	return out, err
}

// CountPostponed counts the user's postponed rows with the given flag set;
// the postponed menu offers only non-empty categories.
func CountPostponed(ctx context.Context, db *gorm.DB, userID, flagColumn string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.PostponedMovie{}).
		Where("user_id = ?", userID).
		Where(flagColumn+" = ?", true).
		Count(&total).Error
	return total, err
}
