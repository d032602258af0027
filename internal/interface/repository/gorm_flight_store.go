// internal/interface/repository/gorm_flight_store.go
package repository

import (
	"context"

	"flightdeck-service/internal/domain/entity"
	"flightdeck-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormFlightStore implements the FlightStore interface over PostgreSQL
type GormFlightStore struct {
	db *gorm.DB
}

// NewGormFlightStore creates a new GORM flight store
func NewGormFlightStore(db *gorm.DB) repository.FlightStore {
	return &GormFlightStore{
		db: db,
	}
}

// Flights GORM model for database mapping
type Flights struct {
	ID              int64    `gorm:"column:id;primaryKey"`
	Origin          string   `gorm:"column:origin"`
	Destination     string   `gorm:"column:destination"`
	Airline         string   `gorm:"column:airline"`
	DepartureDate   string   `gorm:"column:departure_date;index:idx_flights_page_order,priority:1"`
	DurationMinutes int      `gorm:"column:duration_minutes"`
	EconomyPrice    float64  `gorm:"column:economy_price"`
	ExecutivePrice  *float64 `gorm:"column:executive_price"`
	PremiumPrice    *float64 `gorm:"column:premium_price"`
	Demand          int      `gorm:"column:demand"`
	LegacyFare      float64  `gorm:"column:legacy_fare"`
	LegacyTax       float64  `gorm:"column:legacy_tax"`
}

// TableName overrides the default table name
func (Flights) TableName() string {
	return "m_flights"
}

const gormPageOrder = "departure_date ASC, origin ASC, id ASC"

// PageIDs returns one page of identifiers in the store's page order
func (s *GormFlightStore) PageIDs(ctx context.Context, offset, limit int) ([]int64, error) {
	var ids []int64
	result := s.db.WithContext(ctx).
		Model(&Flights{}).
		Order(gormPageOrder).
		Offset(offset).
		Limit(limit).
		Pluck("id", &ids)

	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}

// Count returns the total number of records in the store
func (s *GormFlightStore) Count(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&Flights{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// FindByIDs fetches the given records in no particular order
func (s *GormFlightStore) FindByIDs(ctx context.Context, ids []int64) ([]entity.Flight, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []Flights
	result := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	// Convert GORM models to domain entities
	flights := make([]entity.Flight, len(rows))
	for i, row := range rows {
		flights[i] = entity.Flight{
			ID:              row.ID,
			Origin:          row.Origin,
			Destination:     row.Destination,
			Airline:         row.Airline,
			DepartureDate:   row.DepartureDate,
			DurationMinutes: row.DurationMinutes,
			EconomyPrice:    row.EconomyPrice,
			ExecutivePrice:  row.ExecutivePrice,
			PremiumPrice:    row.PremiumPrice,
			Demand:          row.Demand,
			LegacyFare:      row.LegacyFare,
			LegacyTax:       row.LegacyTax,
		}
	}
	return flights, nil
}
