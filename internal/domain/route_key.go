package domain

import "time"

// RouteKey identifies one manager's route for one day in one area.
// All persisted override and operational-item records are scoped to it.
type RouteKey struct {
	ManagerID string
	Day       string
	Area      string
}

// A user-pinned visit window for a single stop. Overrides survive rebuilds:
// the builder reproduces exactly this window until the override is changed
// or the visit is displaced by an overlapping operational item.
type VisitOverride struct {
	StopID string
	Start  time.Time
	End    time.Time
}

// A fixed, user-defined block (meeting, break) not tied to a stop.
type OperationalItem struct {
	ID              int64
	Title           string
	Location        string
	Start           time.Time
	DurationMinutes int
}

// End returns the block's end instant.
func (o OperationalItem) End() time.Time {
	return o.Start.Add(time.Duration(o.DurationMinutes) * time.Minute)
}
