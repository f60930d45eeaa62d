package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-schedule-service/internal/domain"
	"route-schedule-service/internal/platform/obs"
)

// SQLRouteStore is a Postgres-backed route store (pgx stdlib driver).
type SQLRouteStore struct {
	DB *sql.DB
}

func NewSQLRouteStore(db *sql.DB) *SQLRouteStore {
	return &SQLRouteStore{DB: db}
}

// Initialize the Postgres schema.
func InitSQLSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	createOverridesQuery := `
	CREATE TABLE IF NOT EXISTS visit_overrides (
		manager_id TEXT NOT NULL,
		day TEXT NOT NULL,
		area TEXT NOT NULL,
		stop_id TEXT NOT NULL,
		start_at TIMESTAMPTZ NOT NULL,
		end_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (manager_id, day, area, stop_id)
	);
	`

	createOperationalQuery := `
	CREATE TABLE IF NOT EXISTS operational_items (
		id BIGSERIAL PRIMARY KEY,
		manager_id TEXT NOT NULL,
		day TEXT NOT NULL,
		area TEXT NOT NULL,
		title TEXT NOT NULL,
		location TEXT NOT NULL,
		start_at TIMESTAMPTZ NOT NULL,
		duration_minutes INTEGER NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_operational_items_route
    ON operational_items(manager_id, day, area);
	`

	for i, stmt := range []string{createOverridesQuery, createOperationalQuery, createIndexQuery} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	return nil
}

func (s *SQLRouteStore) VisitOverrides(ctx context.Context, key domain.RouteKey) (_ []domain.VisitOverride, err error) {
	defer obs.Time(ctx, "store.VisitOverrides")(&err)

	if s.DB == nil {
		return nil, errors.New("route store: db is nil")
	}

	q := `
	SELECT stop_id, start_at, end_at
    FROM visit_overrides
    WHERE manager_id = $1 AND day = $2 AND area = $3;
	`

	rows, err := s.DB.QueryContext(ctx, q, key.ManagerID, key.Day, key.Area)
	if err != nil {
		return nil, fmt.Errorf("get visit overrides: query: %w", err)
	}
	defer rows.Close()

	var out []domain.VisitOverride
	for rows.Next() {
		var ov domain.VisitOverride
		if err := rows.Scan(&ov.StopID, &ov.Start, &ov.End); err != nil {
			return nil, fmt.Errorf("get visit overrides: scan rows: %w", err)
		}
		out = append(out, ov)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get visit overrides: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLRouteStore) SaveVisitOverride(ctx context.Context, key domain.RouteKey, ov domain.VisitOverride) (err error) {
	defer obs.Time(ctx, "store.SaveVisitOverride")(&err)

	if s.DB == nil {
		return errors.New("route store: db is nil")
	}
	if ov.StopID == "" {
		return errors.New("save visit override: stop id must not be empty")
	}

	q := `
	INSERT INTO visit_overrides (manager_id, day, area, stop_id, start_at, end_at)
    VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (manager_id, day, area, stop_id) DO UPDATE
	SET start_at = EXCLUDED.start_at,
		end_at = EXCLUDED.end_at;
	`

	if _, err := s.DB.ExecContext(ctx, q, key.ManagerID, key.Day, key.Area, ov.StopID, ov.Start, ov.End); err != nil {
		return fmt.Errorf("save visit override stop=%q: %w", ov.StopID, err)
	}

	return nil
}

func (s *SQLRouteStore) OperationalItems(ctx context.Context, key domain.RouteKey) (_ []domain.OperationalItem, err error) {
	defer obs.Time(ctx, "store.OperationalItems")(&err)

	if s.DB == nil {
		return nil, errors.New("route store: db is nil")
	}

	q := `
	SELECT id, title, location, start_at, duration_minutes
    FROM operational_items
    WHERE manager_id = $1 AND day = $2 AND area = $3
    ORDER BY start_at;
	`

	rows, err := s.DB.QueryContext(ctx, q, key.ManagerID, key.Day, key.Area)
	if err != nil {
		return nil, fmt.Errorf("get operational items: query: %w", err)
	}
	defer rows.Close()

	var out []domain.OperationalItem
	for rows.Next() {
		var it domain.OperationalItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Location, &it.Start, &it.DurationMinutes); err != nil {
			return nil, fmt.Errorf("get operational items: scan rows: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get operational items: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLRouteStore) SaveOperationalItem(ctx context.Context, key domain.RouteKey, item domain.OperationalItem) (_ int64, err error) {
	defer obs.Time(ctx, "store.SaveOperationalItem")(&err)

	if s.DB == nil {
		return 0, errors.New("route store: db is nil")
	}

	q := `
	INSERT INTO operational_items (manager_id, day, area, title, location, start_at, duration_minutes)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id;
	`

	var id int64
	err = s.DB.QueryRowContext(ctx, q,
		key.ManagerID, key.Day, key.Area,
		item.Title, item.Location, item.Start, item.DurationMinutes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save operational item: %w", err)
	}

	return id, nil
}

func (s *SQLRouteStore) UpdateOperationalItem(ctx context.Context, key domain.RouteKey, item domain.OperationalItem) (err error) {
	defer obs.Time(ctx, "store.UpdateOperationalItem")(&err)

	if s.DB == nil {
		return errors.New("route store: db is nil")
	}

	q := `
	UPDATE operational_items
    SET title = $1, location = $2, start_at = $3, duration_minutes = $4
    WHERE id = $5 AND manager_id = $6 AND day = $7 AND area = $8;
	`

	res, err := s.DB.ExecContext(ctx, q,
		item.Title, item.Location, item.Start, item.DurationMinutes,
		item.ID, key.ManagerID, key.Day, key.Area,
	)
	if err != nil {
		return fmt.Errorf("update operational item id=%d: %w", item.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update operational item id=%d: rows affected: %w", item.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update operational item id=%d: no such item for route", item.ID)
	}

	return nil
}

func (s *SQLRouteStore) DeleteOperationalItem(ctx context.Context, key domain.RouteKey, id int64) (err error) {
	defer obs.Time(ctx, "store.DeleteOperationalItem")(&err)

	if s.DB == nil {
		return errors.New("route store: db is nil")
	}

	q := `
	DELETE FROM operational_items
    WHERE id = $1 AND manager_id = $2 AND day = $3 AND area = $4;
	`

	if _, err := s.DB.ExecContext(ctx, q, id, key.ManagerID, key.Day, key.Area); err != nil {
		return fmt.Errorf("delete operational item id=%d: %w", id, err)
	}

	return nil
}
