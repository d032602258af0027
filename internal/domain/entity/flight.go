// internal/domain/entity/flight.go
package entity

// Flight is one browsable flight offer. DepartureDate stays the raw string
// the upstream store holds; the pipeline parses it on demand.
type Flight struct {
	ID              int64    `bson:"_id" json:"id"`
	Origin          string   `bson:"origin" json:"origin"`
	Destination     string   `bson:"destination" json:"destination"`
	Airline         string   `bson:"airline" json:"airline"`
	DepartureDate   string   `bson:"departureDate" json:"departureDate"`
	DurationMinutes int      `bson:"durationMinutes" json:"durationMinutes"`
	EconomyPrice    float64  `bson:"economyPrice" json:"economyPrice"`
	ExecutivePrice  *float64 `bson:"executivePrice,omitempty" json:"executivePrice,omitempty"`
	PremiumPrice    *float64 `bson:"premiumPrice,omitempty" json:"premiumPrice,omitempty"`
	Demand          int      `bson:"demand" json:"demand"` // 0-100 relative demand score
	LegacyFare      float64  `bson:"legacyFare,omitempty" json:"-"`  // old importer fields, not read anywhere
	LegacyTax       float64  `bson:"legacyTax,omitempty" json:"-"`
}
