package ports

import (
	"context"
	"route-schedule-service/internal/domain"
)

// Port: the persisted override/operational-item set for a route.
//
// Records are keyed by (manager, day, area) and treated as last-write-wins;
// the store carries no optimistic-concurrency token. The schedule engine is
// the sole writer of overrides created by shifting, and one of possibly
// several writers of user-pinned edits.
type RouteStore interface {
	// Retrieve all pinned visit windows for the route.
	VisitOverrides(ctx context.Context, key domain.RouteKey) ([]domain.VisitOverride, error)

	// Insert or replace the pinned window for one stop.
	SaveVisitOverride(ctx context.Context, key domain.RouteKey, ov domain.VisitOverride) error

	// Retrieve all operational blocks for the route.
	OperationalItems(ctx context.Context, key domain.RouteKey) ([]domain.OperationalItem, error)

	// Persist a new operational block, returning its id.
	SaveOperationalItem(ctx context.Context, key domain.RouteKey, item domain.OperationalItem) (int64, error)

	// Replace an existing operational block identified by item.ID.
	UpdateOperationalItem(ctx context.Context, key domain.RouteKey, item domain.OperationalItem) error

	// Remove an operational block.
	DeleteOperationalItem(ctx context.Context, key domain.RouteKey, id int64) error
}
