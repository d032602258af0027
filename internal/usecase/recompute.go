// internal/usecase/recompute.go
package usecase

import (
	"context"
	"strings"
	"time"

	"flightdeck-service/internal/domain/entity"
	"flightdeck-service/pkg/searching"
	"flightdeck-service/pkg/sorting"
	"flightdeck-service/pkg/utils"
)

// recompute derives the visible list from one immutable snapshot: free-text,
// price, route and date filters in that order, then a sort with the selected
// algorithm. The returned run has no ID yet; the commit point assigns one.
func recompute(ctx context.Context, flights []entity.Flight, criteria entity.QueryCriteria, dates *utils.DateParser) ([]entity.Flight, *entity.SortRun, error) {
	kept := filterFreeText(flights, criteria.Query)
	kept = filterPrice(kept, criteria.MinPrice, criteria.MaxPrice)
	kept = filterRoute(kept, criteria.OriginFilter, func(f entity.Flight) string { return f.Origin })
	kept = filterRoute(kept, criteria.DestinationFilter, func(f entity.Flight) string { return f.Destination })
	kept = filterDates(kept, criteria.DateFrom, criteria.DateTo, dates)

	cmp := comparatorFor(criteria, dates)
	started := time.Now()
	sorted, err := sorting.Sort(ctx, kept, cmp, criteria.SortAlgorithm)
	if err != nil {
		return nil, nil, err
	}
	run := &entity.SortRun{
		Key:       criteria.SortKey,
		Order:     criteria.SortOrder,
		Algorithm: criteria.SortAlgorithm,
		Records:   len(sorted),
		Elapsed:   time.Since(started).Seconds(),
		StartedAt: started,
	}
	return sorted, run, nil
}

// fastPath reports whether the criteria match the store's natural page order
// with no active filters, so the accumulated set can be published as-is.
// The store breaks date ties by origin then id while a full date-ascending
// sort keeps snapshot order among ties; the two only diverge on equal dates,
// which is why the divergence is surfaced here and not silently resolved.
func fastPath(criteria entity.QueryCriteria) bool {
	return strings.TrimSpace(criteria.Query) == "" &&
		criteria.MinPrice == nil && criteria.MaxPrice == nil &&
		strings.TrimSpace(criteria.OriginFilter) == "" &&
		strings.TrimSpace(criteria.DestinationFilter) == "" &&
		criteria.DateFrom == nil && criteria.DateTo == nil &&
		criteria.SortKey == entity.SortByDate &&
		criteria.SortOrder == entity.Ascending
}

// filterFreeText keeps records whose origin, destination or airline contains
// the folded query. A blank query keeps everything.
func filterFreeText(flights []entity.Flight, query string) []entity.Flight {
	q := searching.Fold(strings.TrimSpace(query))
	if q == "" {
		return flights
	}
	kept := make([]entity.Flight, 0, len(flights))
	for _, f := range flights {
		if strings.Contains(searching.Fold(f.Origin), q) ||
			strings.Contains(searching.Fold(f.Destination), q) ||
			strings.Contains(searching.Fold(f.Airline), q) {
			kept = append(kept, f)
		}
	}
	return kept
}

// filterPrice keeps records inside the inclusive economy price bounds.
func filterPrice(flights []entity.Flight, min, max *float64) []entity.Flight {
	if min == nil && max == nil {
		return flights
	}
	kept := make([]entity.Flight, 0, len(flights))
	for _, f := range flights {
		if min != nil && f.EconomyPrice < *min {
			continue
		}
		if max != nil && f.EconomyPrice > *max {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// filterRoute applies one origin or destination filter string. When every
// comma-separated token is exactly three characters the filter is a set of
// airport codes and membership is exact; anything else falls back to a
// substring match over the whole filter string. Both are case-insensitive.
func filterRoute(flights []entity.Flight, filter string, field func(entity.Flight) string) []entity.Flight {
	if strings.TrimSpace(filter) == "" {
		return flights
	}
	codes := make(map[string]struct{})
	for _, tok := range utils.SplitCSV(filter) {
		if len(tok) != 3 {
			codes = nil
			break
		}
		codes[searching.Fold(tok)] = struct{}{}
	}

	kept := make([]entity.Flight, 0, len(flights))
	if len(codes) > 0 {
		for _, f := range flights {
			if _, ok := codes[searching.Fold(field(f))]; ok {
				kept = append(kept, f)
			}
		}
		return kept
	}

	sub := searching.Fold(strings.TrimSpace(filter))
	for _, f := range flights {
		if strings.Contains(searching.Fold(field(f)), sub) {
			kept = append(kept, f)
		}
	}
	return kept
}

// filterDates keeps records inside the inclusive departure window. A record
// whose date string does not parse never matches an active window.
func filterDates(flights []entity.Flight, from, to *time.Time, dates *utils.DateParser) []entity.Flight {
	if from == nil && to == nil {
		return flights
	}
	kept := make([]entity.Flight, 0, len(flights))
	for _, f := range flights {
		t, ok := dates.Parse(f.DepartureDate)
		if !ok {
			continue
		}
		if from != nil && t.Before(*from) {
			continue
		}
		if to != nil && t.After(*to) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// comparatorFor builds the total order for the selected key and direction.
// Dates compare by parsed instant; a record whose date fails to parse is
// treated as maximally unknown, so it sorts last ascending, and the order
// flag flips that to first descending. Two unparseable dates compare equal.
func comparatorFor(criteria entity.QueryCriteria, dates *utils.DateParser) func(a, b entity.Flight) int {
	var base func(a, b entity.Flight) int
	switch criteria.SortKey {
	case entity.SortByPrice:
		base = func(a, b entity.Flight) int {
			return compareFloat(a.EconomyPrice, b.EconomyPrice)
		}
	case entity.SortByDuration:
		base = func(a, b entity.Flight) int {
			return a.DurationMinutes - b.DurationMinutes
		}
	default: // date
		base = func(a, b entity.Flight) int {
			ta, oka := dates.Parse(a.DepartureDate)
			tb, okb := dates.Parse(b.DepartureDate)
			switch {
			case oka && okb:
				return ta.Compare(tb)
			case oka:
				return -1
			case okb:
				return 1
			default:
				return 0
			}
		}
	}
	if criteria.SortOrder == entity.Descending {
		return func(a, b entity.Flight) int { return -base(a, b) }
	}
	return base
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
