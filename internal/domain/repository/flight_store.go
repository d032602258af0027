package repository

import (
	"context"

	"flightdeck-service/internal/domain/entity"
)

// FlightStore defines the paged gateway to the external record store. Pages
// are identifier slices in the store's fixed total order (departure date
// ascending, then origin, then id); FindByIDs returns records in no
// particular order and callers restore the page order themselves.
type FlightStore interface {
	PageIDs(ctx context.Context, offset, limit int) ([]int64, error)
	Count(ctx context.Context) (int64, error)
	FindByIDs(ctx context.Context, ids []int64) ([]entity.Flight, error)
}
