package domain

import "time"

// ItemKind is the tagged discriminator for schedule items.
type ItemKind string

const (
	KindLeaveHome   ItemKind = "leave_home"
	KindVisit       ItemKind = "visit"
	KindTravel      ItemKind = "travel"
	KindOperational ItemKind = "operational"
	KindArriveHome  ItemKind = "arrive_home"
)

// A single entry in the day's itinerary.
//
// ScheduleItems are ephemeral planning output: they are recomputed on every
// build or edit and never stored directly. Pinned marks a window that came
// from a persisted override (or a persisted operational block) rather than
// from computation.
type ScheduleItem struct {
	ID    string
	Kind  ItemKind
	Start time.Time
	End   *time.Time

	// Visit items reference the stop; travel items reference both endpoints.
	StopID     string
	FromStopID string
	ToStopID   string

	Title    string
	Location string

	// Populated for travel and home-leg items.
	DistanceKm float64
	Duration   time.Duration

	Pinned bool

	// Persistence id for operational items.
	OperationalID int64
}

// EndOrStart returns End when set, otherwise Start.
func (it ScheduleItem) EndOrStart() time.Time {
	if it.End != nil {
		return *it.End
	}
	return it.Start
}

// Overlaps reports whether the item's window strictly intersects [from, to).
func (it ScheduleItem) Overlaps(from, to time.Time) bool {
	return it.Start.Before(to) && it.EndOrStart().After(from)
}
