// Package services – StatusService
//
// This file implements the favorite/viewed toggle coordinator: one mutation
// must land consistently on the postponed store (create / update /
// delete-when-both-false) and on every all-results row of the movie.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
	"github.com/ndorokhov/go-movie-bot/internal/repo"
)

// Flag names accepted by Toggle.
const (
	FlagFavorite = "favorite"
	FlagViewed   = "viewed"
)

// PostponedStore defines the postponed persistence contract.
type PostponedStore interface {
	GetPostponed(ctx context.Context, db *gorm.DB, userID, movieID string) (*domain.PostponedMovie, error)
	CreatePostponed(ctx context.Context, db *gorm.DB, userID string, m domain.Movie) (*domain.PostponedMovie, error)
	UpdatePostponedFlags(ctx context.Context, db *gorm.DB, userID, movieID string, viewed, favorite bool) error
	DeletePostponed(ctx context.Context, db *gorm.DB, userID, movieID string) error
	ListPostponed(ctx context.Context, db *gorm.DB, userID, flagColumn string) ([]domain.PostponedMovie, error)
	CountPostponed(ctx context.Context, db *gorm.DB, userID, flagColumn string) (int64, error)
}

// ResultFlagStore is the all-results slice StatusService needs for fan-out.
type ResultFlagStore interface {
	UpdateResultFlags(ctx context.Context, db *gorm.DB, userID, movieID string, viewed, favorite bool) error
}

// StatusService coordinates favorite/viewed mutations across stores.
type StatusService struct {
	DB        *gorm.DB
	Postponed PostponedStore
	Results   ResultFlagStore
}

// NewStatusService constructs a StatusService.
func NewStatusService(db *gorm.DB, postponed PostponedStore, results ResultFlagStore) *StatusService {
	return &StatusService{DB: db, Postponed: postponed, Results: results}
}

// Toggle persists an already-flipped record. The caller flips the flag on m
// first; Toggle then, in one transaction, reconciles the postponed row
// (lazy create on first flag-set, update otherwise, delete when both flags
// end up false) and updates every all-results row for (user, movie) so
// future cache-hit renders agree.
func (s *StatusService) Toggle(ctx context.Context, userID string, m domain.Movie) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.Postponed.GetPostponed(ctx, tx, userID, m.MovieID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			if m.IsViewed || m.IsFavorite {
				if _, err := s.Postponed.CreatePostponed(ctx, tx, userID, m); err != nil {
					return err
				}
			}
		case err != nil:
			return err
		default:
			if !m.IsViewed && !m.IsFavorite {
				if err := s.Postponed.DeletePostponed(ctx, tx, userID, existing.MovieID); err != nil {
					return err
				}
			} else if err := s.Postponed.UpdatePostponedFlags(ctx, tx, userID, m.MovieID, m.IsViewed, m.IsFavorite); err != nil {
				return err
			}
		}
		return s.Results.UpdateResultFlags(ctx, tx, userID, m.MovieID, m.IsViewed, m.IsFavorite)
	})
}

// ListPostponed materializes the user's postponed movies with the given
// flag set, most recently added first. flagColumn is repo.FlagFavorite or
// repo.FlagViewed.
func (s *StatusService) ListPostponed(ctx context.Context, userID, flagColumn string) ([]domain.Movie, error) {
	rows, err := s.Postponed.ListPostponed(ctx, s.DB, userID, flagColumn)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Movie, len(rows))
	for i, r := range rows {
		out[i] = domain.FromPostponed(r)
	}
	return out, nil
}

// Categories reports how many favorites and viewed movies the user has; the
// postponed menu offers only the non-empty categories.
func (s *StatusService) Categories(ctx context.Context, userID string) (favorites, viewed int64, err error) {
	if favorites, err = s.Postponed.CountPostponed(ctx, s.DB, userID, repo.FlagFavorite); err != nil {
		return 0, 0, err
	}
	if viewed, err = s.Postponed.CountPostponed(ctx, s.DB, userID, repo.FlagViewed); err != nil {
		return 0, 0, err
	}
	return favorites, viewed, nil
}
