// internal/usecase/search.go
package usecase

import (
	"context"
	"time"

	"flightdeck-service/internal/domain/entity"
	"flightdeck-service/pkg/searching"
	"flightdeck-service/pkg/utils"
)

// accessorFor maps a search field to the string the search algorithms see.
// Prices are indexed in their two-decimal display form.
func accessorFor(field entity.SearchField) func(entity.Flight) string {
	switch field {
	case entity.FieldID:
		return func(f entity.Flight) string { return utils.FormatID(f.ID) }
	case entity.FieldDestination:
		return func(f entity.Flight) string { return f.Destination }
	case entity.FieldAirline:
		return func(f entity.Flight) string { return f.Airline }
	case entity.FieldPrice:
		return func(f entity.Flight) string { return utils.FormatPrice(f.EconomyPrice) }
	default:
		return func(f entity.Flight) string { return f.Origin }
	}
}

// runSearch executes one keyed search over a snapshot and measures it. The
// returned run has no ID yet; the commit point assigns one.
func runSearch(ctx context.Context, flights []entity.Flight, query string, field entity.SearchField, algorithm searching.Algorithm) ([]entity.Flight, entity.SearchRun, error) {
	started := time.Now()
	matches, err := searching.Search(ctx, flights, query, accessorFor(field), algorithm)
	if err != nil {
		return nil, entity.SearchRun{}, err
	}
	run := entity.SearchRun{
		Query:     query,
		Field:     field,
		Algorithm: algorithm,
		Matches:   len(matches),
		Elapsed:   time.Since(started).Seconds(),
		StartedAt: started,
	}
	return matches, run, nil
}
