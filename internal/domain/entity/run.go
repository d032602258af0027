// internal/domain/entity/run.go
package entity

import (
	"fmt"
	"time"

	"flightdeck-service/pkg/searching"
	"flightdeck-service/pkg/sorting"
)

// SearchField selects which record value the search surface reads.
type SearchField string

const (
	FieldID          SearchField = "id"
	FieldOrigin      SearchField = "origin"
	FieldDestination SearchField = "destination"
	FieldAirline     SearchField = "airline"
	FieldPrice       SearchField = "price"
)

// ParseSearchField validates a field selector coming from config or an API
// request.
func ParseSearchField(s string) (SearchField, error) {
	switch SearchField(s) {
	case FieldID, FieldOrigin, FieldDestination, FieldAirline, FieldPrice:
		return SearchField(s), nil
	}
	return "", fmt.Errorf("unknown search field %q", s)
}

// SortRun records one completed sort inside a recompute pass.
type SortRun struct {
	ID        int64             `json:"id"`
	Key       SortKey           `json:"key"`
	Order     SortOrder         `json:"order"`
	Algorithm sorting.Algorithm `json:"algorithm"`
	Records   int               `json:"records"`
	Elapsed   float64           `json:"elapsedSeconds"`
	StartedAt time.Time         `json:"startedAt"`
}

// SearchRun records one keyed search invocation.
type SearchRun struct {
	ID        int64               `json:"id"`
	Query     string              `json:"query"`
	Field     SearchField         `json:"field"`
	Algorithm searching.Algorithm `json:"algorithm"`
	Matches   int                 `json:"matches"`
	Elapsed   float64             `json:"elapsedSeconds"`
	StartedAt time.Time           `json:"startedAt"`
}
