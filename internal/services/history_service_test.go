package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
	"github.com/ndorokhov/go-movie-bot/internal/repo"
)

func newHistoryService(t *testing.T) (*HistoryService, context.Context) {
	t.Helper()
	return NewHistoryService(newTestDB(t), gormStores{}, gormStores{}), context.Background()
}

func seedHistory(t *testing.T, h *HistoryService, entries []domain.SearchQuery, rows []domain.MovieResult) {
	t.Helper()
	if len(entries) > 0 {
		if err := h.DB.Create(&entries).Error; err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}
	if len(rows) > 0 {
		if err := h.DB.Create(&rows).Error; err != nil {
			t.Fatalf("seed rows: %v", err)
		}
	}
}

func TestListBySelection(t *testing.T) {
	h, ctx := newHistoryService(t)
	now := time.Now().UTC()
	seedHistory(t, h, []domain.SearchQuery{
		{UserID: "u1", Kind: domain.KindTitle, Identity: "брат", SearchedAt: now},
		{UserID: "u1", Kind: domain.KindFilters, Identity: "тип: фильм", SearchedAt: now.Add(-2 * 24 * time.Hour)},
		{UserID: "u1", Kind: domain.KindTitle, Identity: "матрица", SearchedAt: now.Add(-10 * 24 * time.Hour)},
	}, nil)

	week, err := h.List(ctx, "u1", Selection{Period: PeriodWeek})
	if err != nil || len(week) != 2 {
		t.Fatalf("week = %d err=%v, want 2", len(week), err)
	}

	titlesAll, err := h.List(ctx, "u1", Selection{Kind: domain.KindTitle, Period: PeriodAll})
	if err != nil || len(titlesAll) != 2 {
		t.Fatalf("titles = %d err=%v, want 2", len(titlesAll), err)
	}

	onDate, err := h.List(ctx, "u1", Selection{OnDate: now.Format("2006-01-02")})
	if err != nil || len(onDate) != 1 || onDate[0].Identity != "брат" {
		t.Fatalf("onDate = %+v err=%v", onDate, err)
	}
}

func TestGetMapsMissingToSentinel(t *testing.T) {
	h, ctx := newHistoryService(t)
	if _, err := h.Get(ctx, "u1", 12345); !errors.Is(err, ErrHistoryEntryNotFound) {
		t.Fatalf("err = %v, want ErrHistoryEntryNotFound", err)
	}
}

func TestPageSlicing(t *testing.T) {
	entries := make([]domain.SearchQuery, 16)
	for i := range entries {
		entries[i] = domain.SearchQuery{ID: uint(i + 1)}
	}

	first, total := Page(entries, 1)
	if total != 3 || len(first) != HistoryPageSize {
		t.Fatalf("page 1: len=%d total=%d", len(first), total)
	}
	last, _ := Page(entries, 3)
	if len(last) != 2 {
		t.Fatalf("page 3: len=%d, want 2", len(last))
	}
	clamped, _ := Page(entries, 99)
	if len(clamped) != 2 {
		t.Fatalf("out-of-range page not clamped: len=%d", len(clamped))
	}
	if got, total := Page(nil, 1); got != nil || total != 0 {
		t.Fatalf("empty listing: %v %d", got, total)
	}
}

func TestPurgeLockstep(t *testing.T) {
	h, ctx := newHistoryService(t)
	now := time.Now().UTC()
	seedHistory(t, h,
		[]domain.SearchQuery{
			{UserID: "u1", Kind: domain.KindTitle, Identity: "брат", SearchedAt: now},
			{UserID: "u1", Kind: domain.KindFilters, Identity: "тип: фильм", SearchedAt: now},
		},
		[]domain.MovieResult{
			{UserID: "u1", MovieID: "1", Kind: domain.KindTitle, Identity: "брат", SearchedAt: now},
			{UserID: "u1", MovieID: "2", Kind: domain.KindTitle, Identity: "брат", SearchedAt: now},
			{UserID: "u1", MovieID: "3", Kind: domain.KindFilters, Identity: "тип: фильм", SearchedAt: now},
		})

	nq, nr, err := h.Purge(ctx, "u1", Selection{Kind: domain.KindTitle, Period: PeriodAll})
	if err != nil || nq != 1 || nr != 2 {
		t.Fatalf("Purge = %d,%d err=%v, want 1,2", nq, nr, err)
	}

	left, _ := repo.ListResults(ctx, h.DB, "u1", "тип: фильм")
	if len(left) != 1 {
		t.Fatalf("filter-search rows caught by title purge: %d left", len(left))
	}
	if hist, _ := h.List(ctx, "u1", Selection{Period: PeriodAll}); len(hist) != 1 {
		t.Fatalf("history rows left = %d, want 1", len(hist))
	}
}

func TestPurgeAllWipesUser(t *testing.T) {
	h, ctx := newHistoryService(t)
	now := time.Now().UTC()
	seedHistory(t, h,
		[]domain.SearchQuery{
			{UserID: "u1", Kind: domain.KindTitle, Identity: "a", SearchedAt: now},
			{UserID: "u2", Kind: domain.KindTitle, Identity: "b", SearchedAt: now},
		},
		[]domain.MovieResult{
			{UserID: "u1", MovieID: "1", Kind: domain.KindTitle, Identity: "a", SearchedAt: now},
			{UserID: "u2", MovieID: "2", Kind: domain.KindTitle, Identity: "b", SearchedAt: now},
		})

	if _, _, err := h.Purge(ctx, "u1", Selection{Period: PeriodAll}); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if hist, _ := h.List(ctx, "u1", Selection{Period: PeriodAll}); len(hist) != 0 {
		t.Fatalf("u1 history not wiped")
	}
	if hist, _ := h.List(ctx, "u2", Selection{Period: PeriodAll}); len(hist) != 1 {
		t.Fatalf("wipe leaked into another user")
	}
}

func TestPeriodSince(t *testing.T) {
	now := time.Now().UTC()
	if !PeriodAll.Since(now).IsZero() {
		t.Fatalf("PeriodAll must be unbounded")
	}
	if d := now.Sub(PeriodWeek.Since(now)); d != 7*24*time.Hour {
		t.Fatalf("week bound = %v", d)
	}
	if d := now.Sub(PeriodDay.Since(now)); d != 24*time.Hour {
		t.Fatalf("day bound = %v", d)
	}
}
