package ports

import (
	"route-schedule-service/internal/domain"
	"time"
)

// Distance and travel duration between two points.
type Leg struct {
	DistanceKm float64
	Duration   time.Duration
}

// Contract for estimating a travel leg between two coordinates.
// Implementations must be pure and total: no error conditions.
type TravelEstimator interface {
	Estimate(from, to domain.Coordinates) Leg
}
