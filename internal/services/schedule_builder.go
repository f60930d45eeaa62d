package services

import (
	"context"
	"fmt"
	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/platform/obs"
	"route-schedule-service/internal/ports"
	"slices"
	"time"
)

// Tuning knobs for timeline construction.
//
// FirstStopAtDayStart preserves the observed business rule that the day's
// first visit always begins at the fixed day start, even when a pinned window
// exists for that stop. It is configurable rather than hard-coded because the
// rule contradicts pinning for every other stop.
type BuildConfig struct {
	DefaultVisitDuration time.Duration
	FirstStopAtDayStart  bool
}

func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		DefaultVisitDuration: 2 * time.Hour,
		FirstStopAtDayStart:  true,
	}
}

// Everything needed to synthesize one manager-day. Stops arrive already
// selected and ordered by the upstream advisory step; the builder never
// reorders them.
type BuildRequest struct {
	Key      domain.RouteKey
	Stops    []domain.Stop
	Home     *domain.ManagerHome
	DayStart time.Time
}

type BuildResult struct {
	Timeline *domain.Timeline
	// Stops dropped for missing coordinates. Surfaced for a user-facing
	// warning, never raised as an error.
	ExcludedStops int
}

// Builder derives a full day timeline from stops plus the persisted
// override/operational-item set. Construction itself is a pure function;
// the builder is the impure shell that reads the store, runs it, and writes
// back any overrides created by displacement so the next build is stable.
type Builder struct {
	Store     ports.RouteStore
	Estimator ports.TravelEstimator
	Config    BuildConfig
}

func NewBuilder(store ports.RouteStore, est ports.TravelEstimator, cfg BuildConfig) *Builder {
	return &Builder{Store: store, Estimator: est, Config: cfg}
}

// Build synthesizes the timeline for req. Rebuilding from unchanged persisted
// state reproduces an identical timeline.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (_ *BuildResult, err error) {
	defer obs.Time(ctx, "schedule.Build")(&err)

	overrides, err := b.Store.VisitOverrides(ctx, req.Key)
	if err != nil {
		return nil, fmt.Errorf("build schedule: load visit overrides: %w", err)
	}

	ops, err := b.Store.OperationalItems(ctx, req.Key)
	if err != nil {
		return nil, fmt.Errorf("build schedule: load operational items: %w", err)
	}

	byStop := make(map[string]domain.VisitOverride, len(overrides))
	for _, ov := range overrides {
		byStop[ov.StopID] = ov
	}

	items, shifted, excluded := assembleDay(req, byStop, ops, b.Estimator, b.Config)

	// Persist displacement-created pins so the timeline survives rebuilds.
	for _, ov := range shifted {
		if err := b.Store.SaveVisitOverride(ctx, req.Key, ov); err != nil {
			return nil, fmt.Errorf("build schedule: save shifted override for stop %q: %w", ov.StopID, err)
		}
	}

	tl := &domain.Timeline{
		Key:      req.Key,
		DayStart: req.DayStart,
		Items:    items,
		Version:  1,
	}
	if err := tl.Validate(); err != nil {
		return nil, fmt.Errorf("build schedule: %w", err)
	}

	return &BuildResult{Timeline: tl, ExcludedStops: excluded}, nil
}

// A stop with its resolved visit window during construction.
type plannedVisit struct {
	stop   domain.Stop
	coords domain.Coordinates
	start  time.Time
	end    time.Time
	pinned bool
}

func (v plannedVisit) overlaps(from, to time.Time) bool {
	return v.start.Before(to) && v.end.After(from)
}

// assembleDay is the canonical, pure construction path. Every build and every
// edit funnels through it (directly, or via the item-level reflow that mirrors
// it), so there is exactly one place that decides where things land.
func assembleDay(
	req BuildRequest,
	overrides map[string]domain.VisitOverride,
	ops []domain.OperationalItem,
	est ports.TravelEstimator,
	cfg BuildConfig,
) (items []domain.ScheduleItem, shifted []domain.VisitOverride, excluded int) {
	visits := make([]plannedVisit, 0, len(req.Stops))
	for _, s := range req.Stops {
		c, ok := s.Coordinates()
		if !ok {
			excluded++
			continue
		}
		visits = append(visits, plannedVisit{stop: s, coords: c})
	}

	sortedOps := slices.Clone(ops)
	slices.SortStableFunc(sortedOps, func(a, b domain.OperationalItem) int {
		return a.Start.Compare(b.Start)
	})

	if len(visits) == 0 {
		return operationalOnly(sortedOps), nil, excluded
	}

	placeVisits(visits, overrides, sortedOps, est, cfg, req.DayStart)

	// Home departure anchors to the first visit's position before any
	// operational displacement, and is never moved afterwards.
	preOpsFirstStart := visits[0].start

	shifted = overlayOperational(visits, sortedOps, est)

	items = buildItems(visits, sortedOps, req.Home, est, preOpsFirstStart)
	domain.SortItems(items)
	return items, shifted, excluded
}

// placeVisits resolves each visit window per the construction rules: first
// stop at day start, pinned windows verbatim, everything else chained through
// estimated travel from the previous stop.
func placeVisits(
	visits []plannedVisit,
	overrides map[string]domain.VisitOverride,
	ops []domain.OperationalItem,
	est ports.TravelEstimator,
	cfg BuildConfig,
	dayStart time.Time,
) {
	clock := dayStart
	for i := range visits {
		v := &visits[i]
		ov, hasOv := overrides[v.stop.ID]

		switch {
		case i == 0 && cfg.FirstStopAtDayStart:
			v.start = dayStart
			v.end = dayStart.Add(cfg.DefaultVisitDuration)
		case hasOv:
			v.start = ov.Start
			v.end = ov.End
			v.pinned = true
		case i == 0:
			v.start = dayStart
			v.end = dayStart.Add(cfg.DefaultVisitDuration)
		default:
			leg := est.Estimate(visits[i-1].coords, v.coords)
			depart := departAfterOps(clock, ops)
			v.start = depart.Add(leg.Duration)
			v.end = v.start.Add(cfg.DefaultVisitDuration)
		}

		clock = v.end
	}
}

// reflowVisits recomputes every derived (unpinned) window after something
// moved, keeping pinned windows exactly where they are. The first visit is an
// anchor and never reflowed.
func reflowVisits(visits []plannedVisit, ops []domain.OperationalItem, est ports.TravelEstimator) {
	if len(visits) == 0 {
		return
	}
	clock := visits[0].end
	for i := 1; i < len(visits); i++ {
		v := &visits[i]
		if v.pinned {
			clock = v.end
			continue
		}
		dur := v.end.Sub(v.start)
		leg := est.Estimate(visits[i-1].coords, v.coords)
		depart := departAfterOps(clock, ops)
		v.start = depart.Add(leg.Duration)
		v.end = v.start.Add(dur)
		clock = v.end
	}
}

// overlayOperational applies the no-overlap rule: a visit whose window
// intersects an operational block moves to start exactly when the block ends,
// keeps its duration, becomes pinned, and is reported for persistence.
// Derived visits downstream reflow; already-pinned windows stay put.
func overlayOperational(
	visits []plannedVisit,
	ops []domain.OperationalItem,
	est ports.TravelEstimator,
) []domain.VisitOverride {
	var shifted []domain.VisitOverride

	for _, op := range ops {
		opEnd := op.End()
		moved := false
		for i := range visits {
			if !visits[i].overlaps(op.Start, opEnd) {
				continue
			}
			dur := visits[i].end.Sub(visits[i].start)
			visits[i].start = opEnd
			visits[i].end = opEnd.Add(dur)
			visits[i].pinned = true
			shifted = upsertOverride(shifted, domain.VisitOverride{
				StopID: visits[i].stop.ID,
				Start:  visits[i].start,
				End:    visits[i].end,
			})
			moved = true
		}
		if moved {
			reflowVisits(visits, ops, est)
		}
	}

	return shifted
}

func upsertOverride(list []domain.VisitOverride, ov domain.VisitOverride) []domain.VisitOverride {
	for i := range list {
		if list[i].StopID == ov.StopID {
			list[i] = ov
			return list
		}
	}
	return append(list, ov)
}

// departAfterOps bumps a departure instant past any operational block that
// covers it, so travel legs start at a block's end instead of inside it.
func departAfterOps(t time.Time, ops []domain.OperationalItem) time.Time {
	for changed := true; changed; {
		changed = false
		for _, op := range ops {
			if !t.Before(op.Start) && t.Before(op.End()) {
				t = op.End()
				changed = true
			}
		}
	}
	return t
}

// buildItems materializes schedule items from resolved visit windows: visits,
// the travel legs between them, operational blocks, and home legs.
func buildItems(
	visits []plannedVisit,
	ops []domain.OperationalItem,
	home *domain.ManagerHome,
	est ports.TravelEstimator,
	preOpsFirstStart time.Time,
) []domain.ScheduleItem {
	items := make([]domain.ScheduleItem, 0, 2*len(visits)+len(ops)+2)

	if home != nil {
		leg := est.Estimate(home.Coordinates, visits[0].coords)
		arrive := preOpsFirstStart
		items = append(items, domain.ScheduleItem{
			ID:         "leave-home",
			Kind:       domain.KindLeaveHome,
			Start:      preOpsFirstStart.Add(-leg.Duration),
			End:        &arrive,
			ToStopID:   visits[0].stop.ID,
			Location:   home.Address,
			DistanceKm: leg.DistanceKm,
			Duration:   leg.Duration,
		})
	}

	for i := range visits {
		v := visits[i]

		if i > 0 {
			prev := visits[i-1]
			leg := est.Estimate(prev.coords, v.coords)

			depart := prev.end
			if v.pinned {
				// Back-solve so arrival aligns with the pinned start, but
				// never depart before the origin visit ends.
				if bs := v.start.Add(-leg.Duration); bs.After(depart) {
					depart = bs
				}
			}
			depart = departAfterOps(depart, ops)

			end := depart.Add(leg.Duration)
			items = append(items, domain.ScheduleItem{
				ID:         "travel-" + prev.stop.ID + "-" + v.stop.ID,
				Kind:       domain.KindTravel,
				Start:      depart,
				End:        &end,
				FromStopID: prev.stop.ID,
				ToStopID:   v.stop.ID,
				DistanceKm: leg.DistanceKm,
				Duration:   leg.Duration,
			})
		}

		end := v.end
		items = append(items, domain.ScheduleItem{
			ID:       "visit-" + v.stop.ID,
			Kind:     domain.KindVisit,
			Start:    v.start,
			End:      &end,
			StopID:   v.stop.ID,
			Title:    v.stop.Name,
			Location: v.stop.Postcode,
			Pinned:   v.pinned,
		})
	}

	items = append(items, operationalOnly(ops)...)

	if home != nil {
		last := visits[len(visits)-1]
		leg := est.Estimate(last.coords, home.Coordinates)
		items = append(items, domain.ScheduleItem{
			ID:         "arrive-home",
			Kind:       domain.KindArriveHome,
			Start:      last.end.Add(leg.Duration),
			FromStopID: last.stop.ID,
			Location:   home.Address,
			DistanceKm: leg.DistanceKm,
			Duration:   leg.Duration,
		})
	}

	return items
}

func operationalOnly(ops []domain.OperationalItem) []domain.ScheduleItem {
	items := make([]domain.ScheduleItem, 0, len(ops))
	for _, op := range ops {
		end := op.End()
		items = append(items, domain.ScheduleItem{
			ID:            fmt.Sprintf("op-%d", op.ID),
			Kind:          domain.KindOperational,
			Start:         op.Start,
			End:           &end,
			Title:         op.Title,
			Location:      op.Location,
			Duration:      end.Sub(op.Start),
			Pinned:        true,
			OperationalID: op.ID,
		})
	}
	return items
}
