package geo

import (
	"math"
	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/ports"
	"time"
)

const (
	// Mean sphere radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// Fixed conversion factor for reporting and speed math.
	KmToMiles = 0.621371
)

// Distance returns the great-circle distance in kilometres between two
// coordinates via the haversine formula. Pure and total.
func Distance(a, b domain.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Estimator converts straight-line distances into travel durations.
//
// The constants are deliberately exposed configuration rather than hidden
// magic so callers can tune for urban vs. rural route mixes. A zero distance
// still costs BufferMinutes (parking, walking in, etc).
type Estimator struct {
	SpeedMPH      float64
	BufferMinutes int
}

// NewEstimator returns an estimator with sensible mixed-route defaults.
func NewEstimator() Estimator {
	return Estimator{SpeedMPH: 30, BufferMinutes: 10}
}

// TravelMinutes estimates door-to-door minutes for a distance in kilometres.
func (e Estimator) TravelMinutes(km float64) int {
	miles := km * KmToMiles
	return int(math.Round(miles/e.SpeedMPH*60)) + e.BufferMinutes
}

// Estimate implements ports.TravelEstimator.
func (e Estimator) Estimate(from, to domain.Coordinates) ports.Leg {
	km := Distance(from, to)
	return ports.Leg{
		DistanceKm: km,
		Duration:   time.Duration(e.TravelMinutes(km)) * time.Minute,
	}
}
