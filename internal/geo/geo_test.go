package geo

import (
	"math"
	"route-schedule-service/internal/domain"
	"testing"
	"time"
)

func TestDistance(t *testing.T) {
	origin := domain.Coordinates{Lat: 0, Lon: 0}

	if d := Distance(origin, origin); d != 0 {
		t.Fatalf("zero-length distance = %f, want 0", d)
	}

	// One degree of longitude at the equator is ~111.19 km.
	oneDegree := domain.Coordinates{Lat: 0, Lon: 1}
	d := Distance(origin, oneDegree)
	if math.Abs(d-111.195) > 0.01 {
		t.Fatalf("equator degree distance = %f, want ~111.195", d)
	}

	// Symmetry.
	if back := Distance(oneDegree, origin); math.Abs(back-d) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", d, back)
	}

	// London to Paris, a well-known pair (~343 km).
	london := domain.Coordinates{Lat: 51.5074, Lon: -0.1278}
	paris := domain.Coordinates{Lat: 48.8566, Lon: 2.3522}
	lp := Distance(london, paris)
	if lp < 330 || lp > 355 {
		t.Fatalf("london-paris distance = %f, want ~343", lp)
	}
}

func TestTravelMinutes(t *testing.T) {
	est := Estimator{SpeedMPH: 30, BufferMinutes: 10}

	if got := est.TravelMinutes(0); got != 10 {
		t.Fatalf("zero distance minutes = %d, want buffer 10", got)
	}

	// 111.195 km = ~69.09 miles; at 30 mph that's ~138 min driving + buffer.
	if got := est.TravelMinutes(111.195); got != 148 {
		t.Fatalf("degree-distance minutes = %d, want 148", got)
	}
}

func TestEstimate(t *testing.T) {
	est := Estimator{SpeedMPH: 30, BufferMinutes: 10}

	origin := domain.Coordinates{Lat: 0, Lon: 0}
	oneDegree := domain.Coordinates{Lat: 0, Lon: 1}

	leg := est.Estimate(origin, oneDegree)
	if math.Abs(leg.DistanceKm-111.195) > 0.01 {
		t.Fatalf("leg distance = %f, want ~111.195", leg.DistanceKm)
	}
	if leg.Duration != 148*time.Minute {
		t.Fatalf("leg duration = %v, want 148m", leg.Duration)
	}
}
