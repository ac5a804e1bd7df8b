package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
	"github.com/ndorokhov/go-movie-bot/internal/kinopoisk"
	"github.com/ndorokhov/go-movie-bot/internal/repo"
)

func titleRequest(user, text string) Request {
	return Request{
		UserID:     user,
		Kind:       domain.KindTitle,
		Identity:   text,
		TitleQuery: text,
	}
}

func TestFetchOrReuseFreshPersistsOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	api := &fakeAPI{titlePages: map[int]kinopoisk.Page{
		1: {Docs: []kinopoisk.Doc{titleDoc(1, "Брат"), titleDoc(2, "Брат 2")}, Pages: 3},
	}}
	svc := newSearchService(db, api)

	res, err := svc.FetchOrReuse(ctx, titleRequest("u1", "брат"))
	if err != nil {
		t.Fatalf("FetchOrReuse: %v", err)
	}
	if res.CacheHit || res.TotalPages != 3 || len(res.Movies) != 2 {
		t.Fatalf("result = %+v", res)
	}
	if res.Movies[0].Kind != domain.KindTitle || res.Movies[0].Identity != "брат" {
		t.Fatalf("movie context wrong: %+v", res.Movies[0])
	}

	rows, err := repo.ListResults(ctx, db, "u1", "брат")
	if err != nil || len(rows) != 2 {
		t.Fatalf("stored rows = %d err=%v, want 2", len(rows), err)
	}
	hist, err := repo.ListQueries(ctx, db, "u1", repo.Filter{})
	if err != nil || len(hist) != 1 || hist[0].Kind != domain.KindTitle {
		t.Fatalf("history = %+v err=%v", hist, err)
	}
}

func TestFetchOrReuseZeroResultsNoWrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	// Remote returns a doc that fails the fuzzy title match, so nothing
	// survives filtering.
	api := &fakeAPI{titlePages: map[int]kinopoisk.Page{
		1: {Docs: []kinopoisk.Doc{titleDoc(9, "Чужой")}, Pages: 1},
	}}
	svc := newSearchService(db, api)

	res, err := svc.FetchOrReuse(ctx, titleRequest("u1", "брат"))
	if err != nil {
		t.Fatalf("FetchOrReuse: %v", err)
	}
	if len(res.Movies) != 0 {
		t.Fatalf("movies = %+v, want none", res.Movies)
	}
	if rows, _ := repo.ListResults(ctx, db, "u1", "брат"); len(rows) != 0 {
		t.Fatalf("rows written despite empty result")
	}
	if hist, _ := repo.ListQueries(ctx, db, "u1", repo.Filter{}); len(hist) != 0 {
		t.Fatalf("history written despite empty result")
	}
}

func TestFetchOrReuseRemoteErrorNoWrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	api := &fakeAPI{err: kinopoisk.ErrUnavailable}
	svc := newSearchService(db, api)

	_, err := svc.FetchOrReuse(ctx, titleRequest("u1", "брат"))
	if !errors.Is(err, kinopoisk.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if hist, _ := repo.ListQueries(ctx, db, "u1", repo.Filter{}); len(hist) != 0 {
		t.Fatalf("history written despite connectivity failure")
	}
}

func TestFetchOrReuseCacheHitRefreshesRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	api := &fakeAPI{titlePages: map[int]kinopoisk.Page{
		1: {Docs: []kinopoisk.Doc{titleDoc(1, "Брат")}, Pages: 3},
	}}
	svc := newSearchService(db, api)

	first, err := svc.FetchOrReuse(ctx, titleRequest("u1", "брат"))
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	oldRows, _ := repo.ListResults(ctx, db, "u1", "брат")
	oldID := oldRows[0].ID
	oldHist, _ := repo.ListQueries(ctx, db, "u1", repo.Filter{})

	// The durable flag set in between must win over the stale row.
	m := first.Movies[0]
	m.IsFavorite = true
	if _, err := repo.CreatePostponed(ctx, db, "u1", m); err != nil {
		t.Fatalf("CreatePostponed: %v", err)
	}

	second, err := svc.FetchOrReuse(ctx, titleRequest("u1", "брат"))
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !second.CacheHit {
		t.Fatalf("second run not a cache hit")
	}
	if second.TotalPages != cacheHitPages {
		t.Fatalf("TotalPages = %d, want nominal %d", second.TotalPages, cacheHitPages)
	}
	if api.titleCalls != 1 {
		t.Fatalf("remote called %d times, want 1 (cache hit must not refetch)", api.titleCalls)
	}
	if !second.Movies[0].IsFavorite {
		t.Fatalf("postponed flag not re-seeded on replay")
	}

	newRows, _ := repo.ListResults(ctx, db, "u1", "брат")
	if len(newRows) != 1 || newRows[0].ID == oldID {
		t.Fatalf("rows not re-created: old id %d, new %+v", oldID, newRows)
	}
	newHist, _ := repo.ListQueries(ctx, db, "u1", repo.Filter{})
	if len(newHist) != 1 || newHist[0].ID == oldHist[0].ID {
		t.Fatalf("history entry not refreshed: %+v -> %+v", oldHist, newHist)
	}
}

func TestFetchPageWritesNothing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	api := &fakeAPI{titlePages: map[int]kinopoisk.Page{
		2: {Docs: []kinopoisk.Doc{titleDoc(3, "Брат 2")}, Pages: 3},
	}}
	svc := newSearchService(db, api)

	movies, pages, err := svc.FetchPage(ctx, titleRequest("u1", "брат"), 2)
	if err != nil || len(movies) != 1 || pages != 3 {
		t.Fatalf("FetchPage = %v,%d err=%v", movies, pages, err)
	}
	if api.lastPage != 2 {
		t.Fatalf("requested page %d, want 2", api.lastPage)
	}
	if hist, _ := repo.ListQueries(ctx, db, "u1", repo.Filter{}); len(hist) != 0 {
		t.Fatalf("continuation page wrote a history entry")
	}
	if rows, _ := repo.ListResults(ctx, db, "u1", "брат"); len(rows) != 0 {
		t.Fatalf("continuation page persisted rows: %d", len(rows))
	}
}

func TestMaterializeSeedsFlagsForFreshFetch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := repo.CreatePostponed(ctx, db, "u1", domain.Movie{MovieID: "1", Name: "Брат", IsViewed: true}); err != nil {
		t.Fatalf("CreatePostponed: %v", err)
	}
	api := &fakeAPI{titlePages: map[int]kinopoisk.Page{
		1: {Docs: []kinopoisk.Doc{titleDoc(1, "Брат")}, Pages: 1},
	}}
	svc := newSearchService(db, api)

	res, err := svc.FetchOrReuse(ctx, titleRequest("u1", "брат"))
	if err != nil {
		t.Fatalf("FetchOrReuse: %v", err)
	}
	if !res.Movies[0].IsViewed || res.Movies[0].IsFavorite {
		t.Fatalf("flags not seeded from postponed store: %+v", res.Movies[0])
	}
}

func TestReplaceQueryTimestampMonotonic(t *testing.T) {
	// Guards the most-recent-wins contract end to end through the service.
	db := newTestDB(t)
	ctx := context.Background()
	api := &fakeAPI{titlePages: map[int]kinopoisk.Page{
		1: {Docs: []kinopoisk.Doc{titleDoc(1, "Брат")}, Pages: 1},
	}}
	svc := newSearchService(db, api)

	if _, err := svc.FetchOrReuse(ctx, titleRequest("u1", "брат")); err != nil {
		t.Fatalf("first: %v", err)
	}
	before, _ := repo.ListQueries(ctx, db, "u1", repo.Filter{})
	time.Sleep(10 * time.Millisecond)
	if _, err := svc.FetchOrReuse(ctx, titleRequest("u1", "брат")); err != nil {
		t.Fatalf("second: %v", err)
	}
	after, _ := repo.ListQueries(ctx, db, "u1", repo.Filter{})
	if !after[0].SearchedAt.After(before[0].SearchedAt) {
		t.Fatalf("timestamp not refreshed: %v -> %v", before[0].SearchedAt, after[0].SearchedAt)
	}
}
