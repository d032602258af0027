package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"flightdeck-service/internal/domain/entity"
	"flightdeck-service/internal/infrastructure/persistence"
	"flightdeck-service/pkg/logger"
	"flightdeck-service/pkg/searching"
	"flightdeck-service/pkg/sorting"
)

func newSQLiteHistory(t *testing.T) *SQLiteRunHistory {
	t.Helper()
	db, err := persistence.OpenSQLite(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	h, err := NewSQLiteRunHistory(db, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestSQLiteRunHistoryRoundTrip(t *testing.T) {
	h := newSQLiteHistory(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	h.AppendSortRun(entity.SortRun{
		ID: 1, Key: entity.SortByPrice, Order: entity.Descending,
		Algorithm: sorting.Quick, Records: 500, Elapsed: 0.012, StartedAt: base,
	})
	h.AppendSortRun(entity.SortRun{
		ID: 2, Key: entity.SortByDate, Order: entity.Ascending,
		Algorithm: sorting.Merge, Records: 800, Elapsed: 0.02, StartedAt: base.Add(time.Minute),
	})
	h.AppendSearchRun(entity.SearchRun{
		ID: 1, Query: "JFK", Field: entity.FieldOrigin,
		Algorithm: searching.Hash, Matches: 12, Elapsed: 0.001, StartedAt: base,
	})
	// Close drains the write buffer before the reads below
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	sortRuns, err := h.RecentSortRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(sortRuns) != 2 {
		t.Fatalf("got %d sort runs, want 2", len(sortRuns))
	}
	// Newest first
	if sortRuns[0].ID != 2 || sortRuns[1].ID != 1 {
		t.Fatalf("wrong order: %+v", sortRuns)
	}
	got := sortRuns[1]
	if got.Key != entity.SortByPrice || got.Order != entity.Descending ||
		got.Algorithm != sorting.Quick || got.Records != 500 || got.Elapsed != 0.012 {
		t.Fatalf("sort run fields lost: %+v", got)
	}
	if !got.StartedAt.Equal(base) {
		t.Fatalf("started at %v, want %v", got.StartedAt, base)
	}

	searchRuns, err := h.RecentSearchRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(searchRuns) != 1 {
		t.Fatalf("got %d search runs, want 1", len(searchRuns))
	}
	s := searchRuns[0]
	if s.Query != "JFK" || s.Field != entity.FieldOrigin || s.Algorithm != searching.Hash || s.Matches != 12 {
		t.Fatalf("search run fields lost: %+v", s)
	}
}

func TestSQLiteRunHistoryLimit(t *testing.T) {
	h := newSQLiteHistory(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		h.AppendSortRun(entity.SortRun{
			ID: int64(i + 1), Key: entity.SortByDate, Order: entity.Ascending,
			Algorithm: sorting.Merge, Records: i, StartedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	runs, err := h.RecentSortRuns(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != 5 || runs[1].ID != 4 {
		t.Fatalf("expected the two newest runs, got %+v", runs)
	}
}

func TestMemoryRunHistoryNewestFirst(t *testing.T) {
	h := NewMemoryRunHistory()
	for i := 1; i <= 3; i++ {
		h.AppendSortRun(entity.SortRun{ID: int64(i)})
		h.AppendSearchRun(entity.SearchRun{ID: int64(i)})
	}
	runs, err := h.RecentSortRuns(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != 3 || runs[1].ID != 2 {
		t.Fatalf("expected newest two, got %+v", runs)
	}
	all, err := h.RecentSearchRuns(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ID != 3 {
		t.Fatalf("zero limit should return everything newest first, got %+v", all)
	}
}
