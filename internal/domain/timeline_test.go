package domain

import (
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2026, 1, 2, h, m, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestSortHomeLegsAnchor(t *testing.T) {
	tl := &Timeline{Items: []ScheduleItem{
		{ID: "visit-a", Kind: KindVisit, Start: at(9, 0), End: ptr(at(11, 0))},
		{ID: "arrive-home", Kind: KindArriveHome, Start: at(14, 0)},
		// A home departure with a clock time after other items still sorts first.
		{ID: "leave-home", Kind: KindLeaveHome, Start: at(10, 30), End: ptr(at(11, 0))},
		{ID: "op-1", Kind: KindOperational, Start: at(8, 0), End: ptr(at(8, 30))},
	}}

	tl.Sort()

	if tl.Items[0].ID != "leave-home" {
		t.Fatalf("first item = %q, want leave-home", tl.Items[0].ID)
	}
	if tl.Items[len(tl.Items)-1].ID != "arrive-home" {
		t.Fatalf("last item = %q, want arrive-home", tl.Items[len(tl.Items)-1].ID)
	}
	if tl.Items[1].ID != "op-1" || tl.Items[2].ID != "visit-a" {
		t.Fatalf("interior order wrong: %q, %q", tl.Items[1].ID, tl.Items[2].ID)
	}
}

func TestValidate(t *testing.T) {
	ok := &Timeline{Items: []ScheduleItem{
		{ID: "leave-home", Kind: KindLeaveHome, Start: at(8, 30), End: ptr(at(9, 0))},
		{ID: "visit-a", Kind: KindVisit, StopID: "a", Start: at(9, 0), End: ptr(at(11, 0))},
		{ID: "travel-a-b", Kind: KindTravel, FromStopID: "a", ToStopID: "b", Start: at(11, 0), End: ptr(at(11, 30))},
		{ID: "visit-b", Kind: KindVisit, StopID: "b", Start: at(11, 30), End: ptr(at(13, 30))},
		{ID: "arrive-home", Kind: KindArriveHome, Start: at(14, 0)},
	}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	misplacedLeave := &Timeline{Items: []ScheduleItem{
		{ID: "visit-a", Kind: KindVisit, Start: at(9, 0), End: ptr(at(11, 0))},
		{ID: "leave-home", Kind: KindLeaveHome, Start: at(8, 30), End: ptr(at(9, 0))},
	}}
	if err := misplacedLeave.Validate(); err == nil {
		t.Fatal("expected error for home departure not first")
	}

	outOfOrder := &Timeline{Items: []ScheduleItem{
		{ID: "visit-b", Kind: KindVisit, Start: at(11, 30), End: ptr(at(13, 30))},
		{ID: "visit-a", Kind: KindVisit, Start: at(9, 0), End: ptr(at(11, 0))},
	}}
	if err := outOfOrder.Validate(); err == nil {
		t.Fatal("expected error for descending start times")
	}

	earlyTravel := &Timeline{Items: []ScheduleItem{
		{ID: "visit-a", Kind: KindVisit, StopID: "a", Start: at(9, 0), End: ptr(at(11, 0))},
		{ID: "travel-a-b", Kind: KindTravel, FromStopID: "a", ToStopID: "b", Start: at(10, 45), End: ptr(at(11, 15))},
	}}
	if err := earlyTravel.Validate(); err == nil {
		t.Fatal("expected error for travel departing before visit end")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	tl := &Timeline{
		Key:   RouteKey{ManagerID: "m1", Day: "2026-01-02", Area: "north"},
		Items: []ScheduleItem{{ID: "visit-a", Kind: KindVisit, Start: at(9, 0), End: ptr(at(11, 0))}},
	}

	cp := tl.Clone()
	cp.Items[0].Start = at(10, 0)
	*cp.Items[0].End = at(12, 0)

	if !tl.Items[0].Start.Equal(at(9, 0)) {
		t.Fatalf("clone mutated original start: %v", tl.Items[0].Start)
	}
	if !tl.Items[0].End.Equal(at(11, 0)) {
		t.Fatalf("clone mutated original end: %v", tl.Items[0].End)
	}
}

func TestStopCoordinates(t *testing.T) {
	lat, lon := 51.5, -0.12
	s := Stop{ID: "a", Lat: &lat, Lon: &lon}
	c, ok := s.Coordinates()
	if !ok || c.Lat != lat || c.Lon != lon {
		t.Fatalf("coordinates = %+v ok=%v", c, ok)
	}

	if _, ok := (Stop{ID: "b", Lat: &lat}).Coordinates(); ok {
		t.Fatal("stop without longitude should have no coordinates")
	}
}
