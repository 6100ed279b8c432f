package models

// Location represents the structure for the 'locations' table.
// Exactly one Location is created per successful registration and is
// immutable afterwards in this flow.
type Location struct {
	LocationID    int64   `json:"location_id" db:"location_id"` // Primary key, generated on insert
	StreetAddress string  `json:"street_address" db:"street_address"`
	City          string  `json:"city" db:"city"`
	State         string  `json:"state" db:"state"`
	Country       string  `json:"country" db:"country"`
	LocationX     float64 `json:"location_x" db:"location_x"` // Latitude, [-90, 90]
	LocationY     float64 `json:"location_y" db:"location_y"` // Longitude, [-180, 180]
}
