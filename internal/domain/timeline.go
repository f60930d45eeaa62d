package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Timeline is the ordered schedule for one manager-day. It is a versioned
// value owned by the caller: every edit produces a fresh copy with Version
// bumped, and no engine component retains one between calls.
type Timeline struct {
	Key      RouteKey
	DayStart time.Time
	Items    []ScheduleItem
	Version  int
}

// Clone returns a deep copy; edits never mutate the caller's value.
func (t *Timeline) Clone() *Timeline {
	out := &Timeline{Key: t.Key, DayStart: t.DayStart, Version: t.Version}
	out.Items = make([]ScheduleItem, len(t.Items))
	copy(out.Items, t.Items)
	for i := range out.Items {
		if out.Items[i].End != nil {
			end := *out.Items[i].End
			out.Items[i].End = &end
		}
	}
	return out
}

// VisitIndex returns the position of the visit for stopID, or -1.
func (t *Timeline) VisitIndex(stopID string) int {
	for i, it := range t.Items {
		if it.Kind == KindVisit && it.StopID == stopID {
			return i
		}
	}
	return -1
}

// Sort orders items for presentation: a home departure is always first and a
// home arrival always last regardless of their clock times; everything in
// between ascends by start time.
func (t *Timeline) Sort() {
	SortItems(t.Items)
}

func itemRank(k ItemKind) int {
	switch k {
	case KindLeaveHome:
		return 0
	case KindArriveHome:
		return 2
	default:
		return 1
	}
}

// SortItems sorts a raw item slice with the Timeline ordering rules.
func SortItems(items []ScheduleItem) {
	slices.SortStableFunc(items, func(a, b ScheduleItem) int {
		if ra, rb := itemRank(a.Kind), itemRank(b.Kind); ra != rb {
			return ra - rb
		}
		return a.Start.Compare(b.Start)
	})
}

// Validate checks the structural rules every built or edited timeline must
// satisfy. It is asserted by the builder and by every edit operation before
// the timeline is handed back.
func (t *Timeline) Validate() error {
	leaves := 0
	arrives := 0
	for i, it := range t.Items {
		switch it.Kind {
		case KindLeaveHome:
			leaves++
			if i != 0 {
				return fmt.Errorf("validate timeline: home departure at index %d, want 0", i)
			}
		case KindArriveHome:
			arrives++
			if i != len(t.Items)-1 {
				return fmt.Errorf("validate timeline: home arrival at index %d, want last", i)
			}
		}
	}
	if leaves > 1 {
		return errors.New("validate timeline: more than one home departure")
	}
	if arrives > 1 {
		return errors.New("validate timeline: more than one home arrival")
	}

	// Interior items ascend by start time.
	prev := time.Time{}
	first := true
	for _, it := range t.Items {
		if it.Kind == KindLeaveHome || it.Kind == KindArriveHome {
			continue
		}
		if !first && it.Start.Before(prev) {
			return fmt.Errorf("validate timeline: item %q starts %s before preceding item %s",
				it.ID, it.Start.Format(time.RFC3339), prev.Format(time.RFC3339))
		}
		prev = it.Start
		first = false
	}

	// A travel leg never departs before its origin visit ends.
	for i := 1; i < len(t.Items); i++ {
		cur := t.Items[i]
		before := t.Items[i-1]
		if cur.Kind == KindTravel && before.Kind == KindVisit &&
			cur.FromStopID == before.StopID && before.End != nil {
			if cur.Start.Before(*before.End) {
				return fmt.Errorf("validate timeline: travel %q departs %s before visit %q ends %s",
					cur.ID, cur.Start.Format(time.RFC3339), before.StopID, before.End.Format(time.RFC3339))
			}
		}
	}

	return nil
}
