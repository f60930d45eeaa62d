package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-schedule-service/internal/domain"
	"time"
)

// SQLite backed route store. Timestamps are stored as RFC 3339 text; SQLite
// has no native time type.
type SqliteRouteStore struct {
	DB *sql.DB
}

func NewSqliteRouteStore(db *sql.DB) *SqliteRouteStore {
	return &SqliteRouteStore{DB: db}
}

func (s *SqliteRouteStore) VisitOverrides(ctx context.Context, key domain.RouteKey) ([]domain.VisitOverride, error) {
	if s.DB == nil {
		return nil, errors.New("route store: db is nil")
	}

	q := `
	SELECT stop_id, start_at, end_at
    FROM visit_overrides
    WHERE manager_id = ? AND day = ? AND area = ?;
	`

	rows, err := s.DB.QueryContext(ctx, q, key.ManagerID, key.Day, key.Area)
	if err != nil {
		return nil, fmt.Errorf("get visit overrides: query: %w", err)
	}
	defer rows.Close()

	var out []domain.VisitOverride
	for rows.Next() {
		var stopID, startAt, endAt string
		if err := rows.Scan(&stopID, &startAt, &endAt); err != nil {
			return nil, fmt.Errorf("get visit overrides: scan rows: %w", err)
		}

		start, err := time.Parse(time.RFC3339, startAt)
		if err != nil {
			return nil, fmt.Errorf("get visit overrides: parse start for stop %q: %w", stopID, err)
		}
		end, err := time.Parse(time.RFC3339, endAt)
		if err != nil {
			return nil, fmt.Errorf("get visit overrides: parse end for stop %q: %w", stopID, err)
		}

		out = append(out, domain.VisitOverride{StopID: stopID, Start: start, End: end})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get visit overrides: row iteration: %w", err)
	}

	return out, nil
}

func (s *SqliteRouteStore) SaveVisitOverride(ctx context.Context, key domain.RouteKey, ov domain.VisitOverride) error {
	if s.DB == nil {
		return errors.New("route store: db is nil")
	}
	if ov.StopID == "" {
		return errors.New("save visit override: stop id must not be empty")
	}

	q := `
	INSERT OR REPLACE INTO visit_overrides (
        manager_id, day, area, stop_id, start_at, end_at
    )
    VALUES (?, ?, ?, ?, ?, ?);
	`

	_, err := s.DB.ExecContext(ctx, q,
		key.ManagerID, key.Day, key.Area, ov.StopID,
		ov.Start.Format(time.RFC3339), ov.End.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save visit override stop=%q: %w", ov.StopID, err)
	}

	return nil
}

func (s *SqliteRouteStore) OperationalItems(ctx context.Context, key domain.RouteKey) ([]domain.OperationalItem, error) {
	if s.DB == nil {
		return nil, errors.New("route store: db is nil")
	}

	q := `
	SELECT id, title, location, start_at, duration_minutes
    FROM operational_items
    WHERE manager_id = ? AND day = ? AND area = ?
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
		var startAt string
		if err := rows.Scan(&it.ID, &it.Title, &it.Location, &startAt, &it.DurationMinutes); err != nil {
			return nil, fmt.Errorf("get operational items: scan rows: %w", err)
		}

		it.Start, err = time.Parse(time.RFC3339, startAt)
		if err != nil {
			return nil, fmt.Errorf("get operational items: parse start for id=%d: %w", it.ID, err)
		}

		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get operational items: row iteration: %w", err)
	}

	return out, nil
}

func (s *SqliteRouteStore) SaveOperationalItem(ctx context.Context, key domain.RouteKey, item domain.OperationalItem) (int64, error) {
	if s.DB == nil {
		return 0, errors.New("route store: db is nil")
	}

	q := `
	INSERT INTO operational_items (
        manager_id, day, area, title, location, start_at, duration_minutes
    )
    VALUES (?, ?, ?, ?, ?, ?, ?);
	`

	res, err := s.DB.ExecContext(ctx, q,
		key.ManagerID, key.Day, key.Area,
		item.Title, item.Location, item.Start.Format(time.RFC3339), item.DurationMinutes,
	)
	if err != nil {
		return 0, fmt.Errorf("save operational item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save operational item: last insert id: %w", err)
	}

	return id, nil
}

func (s *SqliteRouteStore) UpdateOperationalItem(ctx context.Context, key domain.RouteKey, item domain.OperationalItem) error {
	if s.DB == nil {
		return errors.New("route store: db is nil")
	}

	q := `
	UPDATE operational_items
    SET title = ?, location = ?, start_at = ?, duration_minutes = ?
    WHERE id = ? AND manager_id = ? AND day = ? AND area = ?;
	`

	res, err := s.DB.ExecContext(ctx, q,
		item.Title, item.Location, item.Start.Format(time.RFC3339), item.DurationMinutes,
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

func (s *SqliteRouteStore) DeleteOperationalItem(ctx context.Context, key domain.RouteKey, id int64) error {
	if s.DB == nil {
		return errors.New("route store: db is nil")
	}

	q := `
	DELETE FROM operational_items
    WHERE id = ? AND manager_id = ? AND day = ? AND area = ?;
	`

	if _, err := s.DB.ExecContext(ctx, q, id, key.ManagerID, key.Day, key.Area); err != nil {
		return fmt.Errorf("delete operational item id=%d: %w", id, err)
	}

	return nil
}
