package repo

import (
	"context"
	"testing"
	"time"

	"github.com/ndorokhov/go-movie-bot/internal/domain"
)

func TestResultsInsertListDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rows := []domain.MovieResult{
		{UserID: "u1", MovieID: "1", Kind: domain.KindTitle, Identity: "брат", SearchedAt: now, Name: "Брат"},
		{UserID: "u1", MovieID: "2", Kind: domain.KindTitle, Identity: "брат", SearchedAt: now, Name: "Брат 2"},
		{UserID: "u1", MovieID: "3", Kind: domain.KindFilters, Identity: "тип: фильм", SearchedAt: now, Name: "Сёстры"},
	}
	if err := InsertResults(ctx, db, rows); err != nil {
		t.Fatalf("InsertResults: %v", err)
	}

	got, err := ListResults(ctx, db, "u1", "брат")
	if err != nil || len(got) != 2 {
		t.Fatalf("ListResults = %d err=%v, want 2", len(got), err)
	}
	if got[0].Name != "Брат" || got[1].Name != "Брат 2" {
		t.Fatalf("insertion order lost: %+v", got)
	}

	n, err := DeleteResults(ctx, db, "u1", "брат")
	if err != nil || n != 2 {
		t.Fatalf("DeleteResults = %d err=%v, want 2", n, err)
	}
	left, _ := ListResults(ctx, db, "u1", "тип: фильм")
	if len(left) != 1 {
		t.Fatalf("unrelated identity affected: %+v", left)
	}
}

func TestInsertResultsEmptyBatchIsNoOp(t *testing.T) {
	db := newTestDB(t)
	if err := InsertResults(context.Background(), db, nil); err != nil {
		t.Fatalf("InsertResults(nil) = %v", err)
	}
}

func TestUpdateResultFlagsFansOut(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// Same movie under two identities, plus a bystander.
	rows := []domain.MovieResult{
		{UserID: "u1", MovieID: "326", Kind: domain.KindTitle, Identity: "побег", SearchedAt: now},
		{UserID: "u1", MovieID: "326", Kind: domain.KindFilters, Identity: "тип: фильм", SearchedAt: now},
		{UserID: "u1", MovieID: "999", Kind: domain.KindTitle, Identity: "побег", SearchedAt: now},
	}
	if err := InsertResults(ctx, db, rows); err != nil {
		t.Fatalf("InsertResults: %v", err)
	}

	if err := UpdateResultFlags(ctx, db, "u1", "326", false, true); err != nil {
		t.Fatalf("UpdateResultFlags: %v", err)
	}

	var favs int64
	if err := db.Model(&domain.MovieResult{}).
		Where("user_id = ? AND is_favorite = ?", "u1", true).
		Count(&favs).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if favs != 2 {
		t.Fatalf("favorite rows = %d, want 2 (both identities, not the bystander)", favs)
	}
}

func TestPurgeResultsMatchesQueryTaxonomy(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rows := []domain.MovieResult{
		{UserID: "u1", MovieID: "1", Kind: domain.KindTitle, Identity: "a", SearchedAt: now},
		{UserID: "u1", MovieID: "2", Kind: domain.KindTitle, Identity: "b", SearchedAt: now.Add(-40 * 24 * time.Hour)},
		{UserID: "u1", MovieID: "3", Kind: domain.KindFilters, Identity: "c", SearchedAt: now},
	}
	if err := InsertResults(ctx, db, rows); err != nil {
		t.Fatalf("InsertResults: %v", err)
	}

	n, err := PurgeResults(ctx, db, "u1", Filter{Kind: domain.KindTitle, Since: now.Add(-30 * 24 * time.Hour)})
	if err != nil || n != 1 {
		t.Fatalf("PurgeResults = %d err=%v, want 1", n, err)
	}
}
