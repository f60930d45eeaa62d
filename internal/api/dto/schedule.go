package dto

import "time"

type StopRequest struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Postcode string   `json:"postcode,omitempty"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
}

type HomeRequest struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address"`
}

// The full build input for one manager-day. The engine keeps no state between
// requests, so every schedule call carries it.
type RouteRequest struct {
	ManagerID string        `json:"manager_id"`
	Day       string        `json:"day"`
	Area      string        `json:"area"`
	DayStart  time.Time     `json:"day_start"`
	Home      *HomeRequest  `json:"home"`
	Stops     []StopRequest `json:"stops"`
}

type PinVisitRequest struct {
	RouteRequest
	StopID string    `json:"stop_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

type OperationalItemRequest struct {
	RouteRequest
	ID              int64     `json:"id,omitempty"`
	Title           string    `json:"title"`
	Location        string    `json:"location"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
}

type ScheduleItemResponse struct {
	ID              string     `json:"id"`
	Kind            string     `json:"kind"`
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end,omitempty"`
	StopID          string     `json:"stop_id,omitempty"`
	FromStopID      string     `json:"from_stop_id,omitempty"`
	ToStopID        string     `json:"to_stop_id,omitempty"`
	Title           string     `json:"title,omitempty"`
	Location        string     `json:"location,omitempty"`
	DistanceKm      float64    `json:"distance_km,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	Pinned          bool       `json:"pinned"`
	OperationalID   int64      `json:"operational_id,omitempty"`
}

type ScheduleResponse struct {
	Day           string                 `json:"day"`
	Version       int                    `json:"version"`
	ExcludedStops int                    `json:"excluded_stops"`
	Items         []ScheduleItemResponse `json:"items"`
}
