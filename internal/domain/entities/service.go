package entities

import "time"

// Service is a bookable service from the catalog.
type Service struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	DurationMinutes int       `json:"duration_minutes" db:"duration_minutes"`
	Price           float64   `json:"price" db:"price"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
