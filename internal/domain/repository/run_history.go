package repository

import (
	"context"

	"flightdeck-service/internal/domain/entity"
)

// RunHistory persists sort and search run records. Append calls must not
// block the pipeline; implementations may drop under backpressure.
type RunHistory interface {
	AppendSortRun(run entity.SortRun)
	AppendSearchRun(run entity.SearchRun)
	RecentSortRuns(ctx context.Context, limit int) ([]entity.SortRun, error)
	RecentSearchRuns(ctx context.Context, limit int) ([]entity.SearchRun, error)
	Close() error
}
