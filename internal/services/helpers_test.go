package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
	"github.com/ndorokhov/go-movie-bot/internal/filters"
	"github.com/ndorokhov/go-movie-bot/internal/kinopoisk"
	"github.com/ndorokhov/go-movie-bot/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// gormStores adapts the repository free functions to the service
// interfaces, the same shim the production wiring uses.
type gormStores struct{}

func (gormStores) ListResults(ctx context.Context, db *gorm.DB, userID, identity string) ([]domain.MovieResult, error) {
	return repo.ListResults(ctx, db, userID, identity)
}

func (gormStores) InsertResults(ctx context.Context, db *gorm.DB, rows []domain.MovieResult) error {
	return repo.InsertResults(ctx, db, rows)
}

func (gormStores) DeleteResults(ctx context.Context, db *gorm.DB, userID, identity string) (int64, error) {
	return repo.DeleteResults(ctx, db, userID, identity)
}

func (gormStores) UpdateResultFlags(ctx context.Context, db *gorm.DB, userID, movieID string, viewed, favorite bool) error {
	return repo.UpdateResultFlags(ctx, db, userID, movieID, viewed, favorite)
}

func (gormStores) PurgeResults(ctx context.Context, db *gorm.DB, userID string, f repo.Filter) (int64, error) {
	return repo.PurgeResults(ctx, db, userID, f)
}

func (gormStores) ReplaceQuery(ctx context.Context, db *gorm.DB, userID string, kind domain.SearchKind, identity string, at time.Time) (*domain.SearchQuery, error) {
	return repo.ReplaceQuery(ctx, db, userID, kind, identity, at)
}

func (gormStores) ListQueries(ctx context.Context, db *gorm.DB, userID string, f repo.Filter) ([]domain.SearchQuery, error) {
	return repo.ListQueries(ctx, db, userID, f)
}

func (gormStores) GetQuery(ctx context.Context, db *gorm.DB, userID string, id uint) (*domain.SearchQuery, error) {
	return repo.GetQuery(ctx, db, userID, id)
}

func (gormStores) DistinctDates(ctx context.Context, db *gorm.DB, userID string, since time.Time) ([]string, error) {
	return repo.DistinctDates(ctx, db, userID, since)
}

func (gormStores) PurgeQueries(ctx context.Context, db *gorm.DB, userID string, f repo.Filter) (int64, error) {
	return repo.PurgeQueries(ctx, db, userID, f)
}

func (gormStores) GetPostponed(ctx context.Context, db *gorm.DB, userID, movieID string) (*domain.PostponedMovie, error) {
	return repo.GetPostponed(ctx, db, userID, movieID)
}

func (gormStores) CreatePostponed(ctx context.Context, db *gorm.DB, userID string, m domain.Movie) (*domain.PostponedMovie, error) {
	return repo.CreatePostponed(ctx, db, userID, m)
}

func (gormStores) UpdatePostponedFlags(ctx context.Context, db *gorm.DB, userID, movieID string, viewed, favorite bool) error {
	return repo.UpdatePostponedFlags(ctx, db, userID, movieID, viewed, favorite)
}

func (gormStores) DeletePostponed(ctx context.Context, db *gorm.DB, userID, movieID string) error {
	return repo.DeletePostponed(ctx, db, userID, movieID)
}

func (gormStores) ListPostponed(ctx context.Context, db *gorm.DB, userID, flagColumn string) ([]domain.PostponedMovie, error) {
	return repo.ListPostponed(ctx, db, userID, flagColumn)
}

func (gormStores) CountPostponed(ctx context.Context, db *gorm.DB, userID, flagColumn string) (int64, error) {
	return repo.CountPostponed(ctx, db, userID, flagColumn)
}

// fakeAPI is a scripted Searcher.
type fakeAPI struct {
	titlePages  map[int]kinopoisk.Page
	filterPages map[int]kinopoisk.Page
	err         error

	titleCalls  int
	filterCalls int
	lastPage    int
	lastQuery   filters.RemoteQuery
}

func (f *fakeAPI) SearchByTitle(ctx context.Context, query string, page int) (kinopoisk.Page, error) {
	f.titleCalls++
	f.lastPage = page
	if f.err != nil {
		return kinopoisk.Page{}, f.err
	}
	return f.titlePages[page], nil
}

func (f *fakeAPI) SearchByFilters(ctx context.Context, q filters.RemoteQuery, page int) (kinopoisk.Page, error) {
	f.filterCalls++
	f.lastPage = page
	f.lastQuery = q
	if f.err != nil {
		return kinopoisk.Page{}, f.err
	}
	return f.filterPages[page], nil
}

func newSearchService(db *gorm.DB, api Searcher) *SearchService {
	return NewSearchService(db, api, gormStores{}, gormStores{}, gormStores{})
}

func titleDoc(id int, name string) kinopoisk.Doc {
	return kinopoisk.Doc{ID: id, Name: name, ShortDescription: "sd", Type: "movie", Year: 2000}
}
