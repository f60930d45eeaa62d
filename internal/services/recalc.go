package services

import (
	"context"
	"fmt"
	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/platform/obs"
	"route-schedule-service/internal/ports"
	"time"
)

// Recalculator applies a single edit to a timeline and reflows everything
// downstream. It holds no timeline state of its own: each operation takes the
// caller's current value and returns a fresh one, persisting pinned windows
// and operational blocks through the store as a side effect.
//
// The caller serializes edits; there is no internal locking.
type Recalculator struct {
	Store     ports.RouteStore
	Estimator ports.TravelEstimator
	Builder   *Builder
}

func NewRecalculator(b *Builder) *Recalculator {
	return &Recalculator{Store: b.Store, Estimator: b.Estimator, Builder: b}
}

// PinVisit fixes a visit's window, recomputes the leg departing it, and
// reflows every later item. The home departure is never moved by a downstream
// edit. Start/end are accepted as given: range validation is the caller's
// decision.
//
// The returned timeline reflects the edit even when persistence fails; the
// error is surfaced alongside it and a full rebuild is the recovery path.
func (r *Recalculator) PinVisit(
	ctx context.Context,
	tl *domain.Timeline,
	stopID string,
	start, end time.Time,
) (_ *domain.Timeline, err error) {
	defer obs.Time(ctx, "schedule.PinVisit")(&err)

	out := tl.Clone()
	out.Version++

	idx := out.VisitIndex(stopID)
	if idx < 0 {
		return nil, fmt.Errorf("pin visit: no visit for stop %q", stopID)
	}

	visitEnd := end
	out.Items[idx].Start = start
	out.Items[idx].End = &visitEnd
	out.Items[idx].Pinned = true

	reflowFrom(out.Items, idx)
	out.Sort()

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("pin visit: %w", err)
	}

	ov := domain.VisitOverride{StopID: stopID, Start: start, End: end}
	if err := r.Store.SaveVisitOverride(ctx, out.Key, ov); err != nil {
		return out, fmt.Errorf("pin visit: save override for stop %q: %w", stopID, err)
	}

	return out, nil
}

// AddOperationalItem inserts a fixed block, displaces any visit it overlaps
// (duration preserved, new window persisted as an override), and reflows the
// rest of the day.
func (r *Recalculator) AddOperationalItem(
	ctx context.Context,
	tl *domain.Timeline,
	item domain.OperationalItem,
) (_ *domain.Timeline, _ domain.OperationalItem, err error) {
	defer obs.Time(ctx, "schedule.AddOperationalItem")(&err)

	out := tl.Clone()
	out.Version++

	id, persistErr := r.Store.SaveOperationalItem(ctx, out.Key, item)
	if persistErr != nil {
		persistErr = fmt.Errorf("add operational item: save: %w", persistErr)
	}
	item.ID = id

	opEnd := item.End()
	opItem := domain.ScheduleItem{
		ID:            fmt.Sprintf("op-%d", item.ID),
		Kind:          domain.KindOperational,
		Start:         item.Start,
		End:           &opEnd,
		Title:         item.Title,
		Location:      item.Location,
		Duration:      opEnd.Sub(item.Start),
		Pinned:        true,
		OperationalID: item.ID,
	}
	out.Items = append(out.Items, opItem)

	if anchor := firstVisitIndex(out.Items); anchor >= 0 {
		reflowFrom(out.Items, anchor)
	}

	var shiftErr error
	if err := r.displaceIntoBlocks(ctx, out); err != nil {
		shiftErr = fmt.Errorf("add operational item: %w", err)
	}
	out.Sort()

	if err := out.Validate(); err != nil {
		return nil, item, fmt.Errorf("add operational item: %w", err)
	}

	if persistErr != nil {
		return out, item, persistErr
	}
	return out, item, shiftErr
}

// displaceIntoBlocks re-applies the no-overlap rule against every operational
// block in the timeline until it is stable: a visit intersecting a block moves
// to the block's end, keeps its duration, becomes pinned, and its new window
// is persisted. Pins only accumulate, so the loop terminates. The first
// persistence error is reported after the timeline settles.
func (r *Recalculator) displaceIntoBlocks(ctx context.Context, out *domain.Timeline) error {
	var firstErr error
	for moved := true; moved; {
		moved = false
		for bi := range out.Items {
			block := out.Items[bi]
			if block.Kind != domain.KindOperational {
				continue
			}
			blockEnd := block.EndOrStart()
			for i := range out.Items {
				it := &out.Items[i]
				if it.Kind != domain.KindVisit || !it.Overlaps(block.Start, blockEnd) {
					continue
				}
				dur := it.EndOrStart().Sub(it.Start)
				newEnd := blockEnd.Add(dur)
				it.Start = blockEnd
				it.End = &newEnd
				it.Pinned = true

				ov := domain.VisitOverride{StopID: it.StopID, Start: it.Start, End: newEnd}
				if err := r.Store.SaveVisitOverride(ctx, out.Key, ov); err != nil && firstErr == nil {
					firstErr = fmt.Errorf("save shifted override for stop %q: %w", it.StopID, err)
				}
				moved = true
			}
		}
		if moved {
			if anchor := firstVisitIndex(out.Items); anchor >= 0 {
				reflowFrom(out.Items, anchor)
			}
		}
	}
	return firstErr
}

// EditOperationalItem persists the change then rebuilds from fresh store
// state. Patching the live timeline for edits accumulates order-dependent
// cascade bugs; a rebuild cannot diverge.
func (r *Recalculator) EditOperationalItem(
	ctx context.Context,
	req BuildRequest,
	item domain.OperationalItem,
) (_ *BuildResult, err error) {
	defer obs.Time(ctx, "schedule.EditOperationalItem")(&err)

	if err := r.Store.UpdateOperationalItem(ctx, req.Key, item); err != nil {
		return nil, fmt.Errorf("edit operational item %d: %w", item.ID, err)
	}

	res, err := r.Builder.Build(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("edit operational item %d: rebuild: %w", item.ID, err)
	}
	return res, nil
}

// DeleteOperationalItem removes the block then rebuilds, same as edits.
func (r *Recalculator) DeleteOperationalItem(
	ctx context.Context,
	req BuildRequest,
	id int64,
) (_ *BuildResult, err error) {
	defer obs.Time(ctx, "schedule.DeleteOperationalItem")(&err)

	if err := r.Store.DeleteOperationalItem(ctx, req.Key, id); err != nil {
		return nil, fmt.Errorf("delete operational item %d: %w", id, err)
	}

	res, err := r.Builder.Build(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("delete operational item %d: rebuild: %w", id, err)
	}
	return res, nil
}

func firstVisitIndex(items []domain.ScheduleItem) int {
	for i, it := range items {
		if it.Kind == domain.KindVisit {
			return i
		}
	}
	return -1
}

func nextVisitIndex(items []domain.ScheduleItem, after int) int {
	for i := after + 1; i < len(items); i++ {
		if items[i].Kind == domain.KindVisit {
			return i
		}
	}
	return -1
}

// reflowFrom recomputes every derived item after the anchor, walking the
// item sequence in stop order: travel legs depart when the previous visit
// ends (or back-solved toward a pinned arrival, or delayed past a fixed
// block), unpinned visits follow their leg, pinned windows hold, and the home
// arrival trails the final visit. The home departure and operational blocks
// are never touched.
func reflowFrom(items []domain.ScheduleItem, anchor int) {
	var ops []domain.OperationalItem
	for _, it := range items {
		if it.Kind == domain.KindOperational {
			ops = append(ops, domain.OperationalItem{
				ID:              it.OperationalID,
				Title:           it.Title,
				Start:           it.Start,
				DurationMinutes: int(it.EndOrStart().Sub(it.Start) / time.Minute),
			})
		}
	}

	clock := items[anchor].EndOrStart()
	for j := anchor + 1; j < len(items); j++ {
		it := &items[j]
		switch it.Kind {
		case domain.KindTravel:
			depart := clock
			if nv := nextVisitIndex(items, j); nv >= 0 && items[nv].Pinned {
				if bs := items[nv].Start.Add(-it.Duration); bs.After(depart) {
					depart = bs
				}
			}
			depart = departAfterOps(depart, ops)
			end := depart.Add(it.Duration)
			it.Start = depart
			it.End = &end
			clock = end
		case domain.KindVisit:
			if it.Pinned {
				clock = it.EndOrStart()
				continue
			}
			dur := it.EndOrStart().Sub(it.Start)
			end := clock.Add(dur)
			it.Start = clock
			it.End = &end
			clock = end
		case domain.KindArriveHome:
			it.Start = clock.Add(it.Duration)
			it.End = nil
		}
	}
}
