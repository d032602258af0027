// internal/interface/repository/memory_flight_store.go
package repository

import (
	"context"
	"sort"
	"sync"

	"flightdeck-service/internal/domain/entity"
)

// MemoryFlightStore implements the FlightStore interface in memory for
// development and tests. It honors the same page order as the database
// stores; FindByIDs intentionally answers in id order, not page order, the
// way a real batch fetch would.
type MemoryFlightStore struct {
	mu      sync.RWMutex
	byID    map[int64]entity.Flight
	ordered []int64
}

// NewMemoryFlightStore creates an empty in-memory flight store
func NewMemoryFlightStore() *MemoryFlightStore {
	return &MemoryFlightStore{
		byID: make(map[int64]entity.Flight),
	}
}

// Load replaces the store contents
func (s *MemoryFlightStore) Load(flights []entity.Flight) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID = make(map[int64]entity.Flight, len(flights))
	for _, f := range flights {
		s.byID[f.ID] = f
	}
	s.ordered = make([]int64, 0, len(s.byID))
	for id := range s.byID {
		s.ordered = append(s.ordered, id)
	}
	sort.Slice(s.ordered, func(a, b int) bool {
		fa, fb := s.byID[s.ordered[a]], s.byID[s.ordered[b]]
		if fa.DepartureDate != fb.DepartureDate {
			return fa.DepartureDate < fb.DepartureDate
		}
		if fa.Origin != fb.Origin {
			return fa.Origin < fb.Origin
		}
		return fa.ID < fb.ID
	})
}

// PageIDs returns one page of identifiers in the store's page order
func (s *MemoryFlightStore) PageIDs(ctx context.Context, offset, limit int) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset >= len(s.ordered) || limit <= 0 {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.ordered) {
		end = len(s.ordered)
	}
	page := make([]int64, end-offset)
	copy(page, s.ordered[offset:end])
	return page, nil
}

// Count returns the total number of records in the store
func (s *MemoryFlightStore) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.ordered)), nil
}

// FindByIDs fetches the given records in id order
func (s *MemoryFlightStore) FindByIDs(ctx context.Context, ids []int64) ([]entity.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	flights := make([]entity.Flight, 0, len(ids))
	for _, id := range ids {
		if f, ok := s.byID[id]; ok {
			flights = append(flights, f)
		}
	}
	sort.Slice(flights, func(a, b int) bool {
		return flights[a].ID < flights[b].ID
	})
	return flights, nil
}
