// internal/interface/api/types.go
package api

import (
	"time"

	"flightdeck-service/internal/domain/entity"
	"flightdeck-service/internal/usecase"
)

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FlightsResponse carries the visible list.
type FlightsResponse struct {
	Flights []entity.Flight `json:"flights"`
	Count   int             `json:"count"`
}

// CriteriaRequest carries criteria edits. Absent fields are left alone;
// string pointers set to "" clear the corresponding filter.
type CriteriaRequest struct {
	Query             *string  `json:"query,omitempty"`
	MinPrice          *float64 `json:"minPrice,omitempty"`
	MaxPrice          *float64 `json:"maxPrice,omitempty"`
	ClearMinPrice     bool     `json:"clearMinPrice,omitempty"`
	ClearMaxPrice     bool     `json:"clearMaxPrice,omitempty"`
	OriginFilter      *string  `json:"originFilter,omitempty"`
	DestinationFilter *string  `json:"destinationFilter,omitempty"`
	DateFrom          *string  `json:"dateFrom,omitempty"`
	DateTo            *string  `json:"dateTo,omitempty"`
	ClearDateFrom     bool     `json:"clearDateFrom,omitempty"`
	ClearDateTo       bool     `json:"clearDateTo,omitempty"`
	SortKey           *string  `json:"sortKey,omitempty"`
	SortOrder         *string  `json:"sortOrder,omitempty"`
	SortAlgorithm     *string  `json:"sortAlgorithm,omitempty"`
	SearchField       *string  `json:"searchField,omitempty"`
	SearchAlgorithm   *string  `json:"searchAlgorithm,omitempty"`
}

// ParseRequest is the body of the natural-language criteria endpoint.
type ParseRequest struct {
	Text string `json:"text"`
}

// SearchRequest is the body of the keyed search and benchmark endpoints.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResponse answers one keyed search.
type SearchResponse struct {
	Flights []entity.Flight  `json:"flights"`
	Count   int              `json:"count"`
	Run     entity.SearchRun `json:"run"`
}

// BenchmarkResponse answers a benchmark sweep over every algorithm.
type BenchmarkResponse struct {
	Runs []entity.SearchRun `json:"runs"`
}

// SortRunsResponse and SearchRunsResponse expose the run histories.
type SortRunsResponse struct {
	Runs  []entity.SortRun `json:"runs"`
	Count int              `json:"count"`
}

type SearchRunsResponse struct {
	Runs  []entity.SearchRun `json:"runs"`
	Count int                `json:"count"`
}

// HistoryResponse exposes the criteria rollback stack.
type HistoryResponse struct {
	Snapshots []entity.CriteriaSnapshot `json:"snapshots"`
	Count     int                       `json:"count"`
}

// StateResponse wraps the pipeline state snapshot.
type StateResponse struct {
	State usecase.State `json:"state"`
	Time  time.Time     `json:"time"`
}
