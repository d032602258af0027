// internal/interface/repository/run_history_repo.go
package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"flightdeck-service/internal/domain/entity"
	"flightdeck-service/internal/domain/repository"
	"flightdeck-service/pkg/logger"
	"flightdeck-service/pkg/searching"
	"flightdeck-service/pkg/sorting"
)

// runHistorySchema backs the durable run log. Applied by NewSQLiteRunHistory.
const runHistorySchema = `
CREATE TABLE IF NOT EXISTS sort_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id INTEGER NOT NULL,
	sort_key TEXT NOT NULL,
	sort_order TEXT NOT NULL,
	algorithm TEXT NOT NULL,
	records INTEGER NOT NULL,
	elapsed_seconds REAL NOT NULL,
	started_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sort_runs_started ON sort_runs(started_at);
CREATE TABLE IF NOT EXISTS search_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id INTEGER NOT NULL,
	query TEXT NOT NULL,
	field TEXT NOT NULL,
	algorithm TEXT NOT NULL,
	matches INTEGER NOT NULL,
	elapsed_seconds REAL NOT NULL,
	started_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_search_runs_started ON search_runs(started_at);
`

type runEntry struct {
	sort   *entity.SortRun
	search *entity.SearchRun
}

// SQLiteRunHistory persists run records to SQLite asynchronously. Appends
// are non-blocking and drop when the buffer is full, so the pipeline never
// waits on the log.
type SQLiteRunHistory struct {
	db     *sql.DB
	logger logger.Logger
	ch     chan runEntry
	done   chan struct{}
	once   sync.Once
}

// NewSQLiteRunHistory applies the schema and starts the flush loop.
func NewSQLiteRunHistory(db *sql.DB, log logger.Logger) (*SQLiteRunHistory, error) {
	if _, err := db.Exec(runHistorySchema); err != nil {
		return nil, err
	}
	h := &SQLiteRunHistory{
		db:     db,
		logger: log,
		ch:     make(chan runEntry, 1024),
		done:   make(chan struct{}),
	}
	go h.flushLoop()
	return h, nil
}

// AppendSortRun queues a sort run for persistence.
func (h *SQLiteRunHistory) AppendSortRun(run entity.SortRun) {
	select {
	case h.ch <- runEntry{sort: &run}:
	default:
	}
}

// AppendSearchRun queues a search run for persistence.
func (h *SQLiteRunHistory) AppendSearchRun(run entity.SearchRun) {
	select {
	case h.ch <- runEntry{search: &run}:
	default:
	}
}

// RecentSortRuns returns up to limit sort runs, newest first.
func (h *SQLiteRunHistory) RecentSortRuns(ctx context.Context, limit int) ([]entity.SortRun, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT run_id, sort_key, sort_order, algorithm, records, elapsed_seconds, started_at
		 FROM sort_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []entity.SortRun
	for rows.Next() {
		var r entity.SortRun
		var key, order, algo string
		var startedUnix int64
		if err := rows.Scan(&r.ID, &key, &order, &algo, &r.Records, &r.Elapsed, &startedUnix); err != nil {
			return nil, err
		}
		r.Key = entity.SortKey(key)
		r.Order = entity.SortOrder(order)
		r.Algorithm = sorting.Algorithm(algo)
		r.StartedAt = time.UnixMilli(startedUnix).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RecentSearchRuns returns up to limit search runs, newest first.
func (h *SQLiteRunHistory) RecentSearchRuns(ctx context.Context, limit int) ([]entity.SearchRun, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT run_id, query, field, algorithm, matches, elapsed_seconds, started_at
		 FROM search_runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []entity.SearchRun
	for rows.Next() {
		var r entity.SearchRun
		var field, algo string
		var startedUnix int64
		if err := rows.Scan(&r.ID, &r.Query, &field, &algo, &r.Matches, &r.Elapsed, &startedUnix); err != nil {
			return nil, err
		}
		r.Field = entity.SearchField(field)
		r.Algorithm = searching.Algorithm(algo)
		r.StartedAt = time.UnixMilli(startedUnix).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close drains the buffer and stops the flush loop.
func (h *SQLiteRunHistory) Close() error {
	h.once.Do(func() {
		close(h.ch)
		<-h.done
	})
	return nil
}

func (h *SQLiteRunHistory) flushLoop() {
	defer close(h.done)

	batch := make([]runEntry, 0, 64)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-h.ch:
			if !ok {
				h.flushBatch(batch)
				return
			}
			batch = append(batch, e)
			if len(batch) >= 64 {
				h.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				h.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (h *SQLiteRunHistory) flushBatch(batch []runEntry) {
	if len(batch) == 0 {
		return
	}
	tx, err := h.db.Begin()
	if err != nil {
		h.logger.Error("run history: begin tx", "error", err)
		return
	}
	for _, e := range batch {
		if e.sort != nil {
			r := e.sort
			_, err = tx.Exec(
				`INSERT INTO sort_runs (run_id, sort_key, sort_order, algorithm, records, elapsed_seconds, started_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				r.ID, string(r.Key), string(r.Order), string(r.Algorithm), r.Records, r.Elapsed, r.StartedAt.UnixMilli())
		} else if e.search != nil {
			r := e.search
			_, err = tx.Exec(
				`INSERT INTO search_runs (run_id, query, field, algorithm, matches, elapsed_seconds, started_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				r.ID, r.Query, string(r.Field), string(r.Algorithm), r.Matches, r.Elapsed, r.StartedAt.UnixMilli())
		}
		if err != nil {
			h.logger.Error("run history: insert", "error", err)
		}
	}
	if err := tx.Commit(); err != nil {
		h.logger.Error("run history: commit", "error", err)
	}
}

// MemoryRunHistory keeps run records in memory, for tests and for running
// without a durable log configured.
type MemoryRunHistory struct {
	mu         sync.Mutex
	sortRuns   []entity.SortRun
	searchRuns []entity.SearchRun
}

func NewMemoryRunHistory() *MemoryRunHistory {
	return &MemoryRunHistory{}
}

func (h *MemoryRunHistory) AppendSortRun(run entity.SortRun) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sortRuns = append(h.sortRuns, run)
}

func (h *MemoryRunHistory) AppendSearchRun(run entity.SearchRun) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.searchRuns = append(h.searchRuns, run)
}

func (h *MemoryRunHistory) RecentSortRuns(ctx context.Context, limit int) ([]entity.SortRun, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return lastN(h.sortRuns, limit), nil
}

func (h *MemoryRunHistory) RecentSearchRuns(ctx context.Context, limit int) ([]entity.SearchRun, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return lastN(h.searchRuns, limit), nil
}

func (h *MemoryRunHistory) Close() error { return nil }

// lastN copies the newest entries, newest first.
func lastN[T any](runs []T, limit int) []T {
	if limit <= 0 || limit > len(runs) {
		limit = len(runs)
	}
	out := make([]T, 0, limit)
	for i := len(runs) - 1; i >= len(runs)-limit; i-- {
		out = append(out, runs[i])
	}
	return out
}

var (
	_ repository.RunHistory = (*SQLiteRunHistory)(nil)
	_ repository.RunHistory = (*MemoryRunHistory)(nil)
)
