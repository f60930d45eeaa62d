package domain

// Represents a site to be visited during a field manager's day.
// Stops are supplied per build by the caller and are immutable for the day.
// Lat/Lon are nullable: a stop without coordinates cannot be routed and is
// excluded from the timeline.
type Stop struct {
	ID       string
	Name     string
	Postcode string
	Lat      *float64
	Lon      *float64
}

// Coordinates returns the stop's position and whether one is present.
func (s Stop) Coordinates() (Coordinates, bool) {
	if s.Lat == nil || s.Lon == nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *s.Lat, Lon: *s.Lon}, true
}

// ManagerHome is the manager's start and end point for the day.
// When absent (nil pointer at the call site) no home legs are synthesized.
type ManagerHome struct {
	Coordinates
	Address string
}
