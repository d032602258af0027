// internal/domain/entity/criteria.go
package entity

import (
	"fmt"
	"time"

	"flightdeck-service/pkg/sorting"
)

// SortKey selects which record field ordering reads.
type SortKey string

const (
	SortByPrice    SortKey = "price"
	SortByDate     SortKey = "date"
	SortByDuration SortKey = "duration"
)

// ParseSortKey validates a sort key coming from config or an API request.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case SortByPrice, SortByDate, SortByDuration:
		return SortKey(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// SortOrder is the requested direction.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortOrder validates a sort order coming from config or an API request.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case Ascending, Descending:
		return SortOrder(s), nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// QueryCriteria is everything one recompute pass reads.
type QueryCriteria struct {
	Query             string            `json:"query"`
	MinPrice          *float64          `json:"minPrice,omitempty"`
	MaxPrice          *float64          `json:"maxPrice,omitempty"`
	OriginFilter      string            `json:"originFilter"`
	DestinationFilter string            `json:"destinationFilter"`
	DateFrom          *time.Time        `json:"dateFrom,omitempty"`
	DateTo            *time.Time        `json:"dateTo,omitempty"`
	SortKey           SortKey           `json:"sortKey"`
	SortOrder         SortOrder         `json:"sortOrder"`
	SortAlgorithm     sorting.Algorithm `json:"sortAlgorithm"`
}

// DefaultCriteria matches the store's natural order: no filters, departure
// date ascending.
func DefaultCriteria() QueryCriteria {
	return QueryCriteria{
		SortKey:       SortByDate,
		SortOrder:     Ascending,
		SortAlgorithm: sorting.Merge,
	}
}

// CriteriaPatch is the partial update produced by the external criteria
// parser. Nil fields leave the current value alone.
type CriteriaPatch struct {
	Query             *string            `json:"query,omitempty"`
	MinPrice          *float64           `json:"minPrice,omitempty"`
	MaxPrice          *float64           `json:"maxPrice,omitempty"`
	OriginFilter      *string            `json:"originFilter,omitempty"`
	DestinationFilter *string            `json:"destinationFilter,omitempty"`
	DateFrom          *time.Time         `json:"dateFrom,omitempty"`
	DateTo            *time.Time         `json:"dateTo,omitempty"`
	SortKey           *SortKey           `json:"sortKey,omitempty"`
	SortOrder         *SortOrder         `json:"sortOrder,omitempty"`
	SortAlgorithm     *sorting.Algorithm `json:"sortAlgorithm,omitempty"`
}

// CriteriaSnapshot preserves criteria as they were before a parsed patch was
// applied, so the previous state can be restored.
type CriteriaSnapshot struct {
	ID       string        `json:"id"`
	TakenAt  time.Time     `json:"takenAt"`
	Criteria QueryCriteria `json:"criteria"`
}
