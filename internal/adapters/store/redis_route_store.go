package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-schedule-service/internal/domain"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis backed route store. Each route key maps to one hash: override fields
// are keyed "ov:<stopID>", operational fields "op:<id>", with JSON values.
// Ids come from a per-route INCR counter. Matches the last-write-wins
// contract exactly: HSET replaces whatever was there.
type RedisRouteStore struct {
	Client *redis.Client
}

func NewRedisRouteStore(client *redis.Client) *RedisRouteStore {
	return &RedisRouteStore{Client: client}
}

type redisOverride struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type redisOperational struct {
	Title           string    `json:"title"`
	Location        string    `json:"location"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
}

func routeHashKey(key domain.RouteKey) string {
	return fmt.Sprintf("route:%s:%s:%s", key.ManagerID, key.Day, key.Area)
}

func (s *RedisRouteStore) VisitOverrides(ctx context.Context, key domain.RouteKey) ([]domain.VisitOverride, error) {
	if s.Client == nil {
		return nil, errors.New("route store: redis client is nil")
	}

	fields, err := s.Client.HGetAll(ctx, routeHashKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("get visit overrides: hgetall: %w", err)
	}

	var out []domain.VisitOverride
	for field, raw := range fields {
		stopID, ok := strings.CutPrefix(field, "ov:")
		if !ok {
			continue
		}

		var rec redisOverride
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("get visit overrides: decode stop %q: %w", stopID, err)
		}
		out = append(out, domain.VisitOverride{StopID: stopID, Start: rec.Start, End: rec.End})
	}

	return out, nil
}

func (s *RedisRouteStore) SaveVisitOverride(ctx context.Context, key domain.RouteKey, ov domain.VisitOverride) error {
	if s.Client == nil {
		return errors.New("route store: redis client is nil")
	}
	if ov.StopID == "" {
		return errors.New("save visit override: stop id must not be empty")
	}

	raw, err := json.Marshal(redisOverride{Start: ov.Start, End: ov.End})
	if err != nil {
		return fmt.Errorf("save visit override stop=%q: encode: %w", ov.StopID, err)
	}

	if err := s.Client.HSet(ctx, routeHashKey(key), "ov:"+ov.StopID, raw).Err(); err != nil {
		return fmt.Errorf("save visit override stop=%q: %w", ov.StopID, err)
	}

	return nil
}

func (s *RedisRouteStore) OperationalItems(ctx context.Context, key domain.RouteKey) ([]domain.OperationalItem, error) {
	if s.Client == nil {
		return nil, errors.New("route store: redis client is nil")
	}

	fields, err := s.Client.HGetAll(ctx, routeHashKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("get operational items: hgetall: %w", err)
	}

	var out []domain.OperationalItem
	for field, raw := range fields {
		idStr, ok := strings.CutPrefix(field, "op:")
		if !ok {
			continue
		}

		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("get operational items: bad field %q: %w", field, err)
		}

		var rec redisOperational
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("get operational items: decode id=%d: %w", id, err)
		}

		out = append(out, domain.OperationalItem{
			ID:              id,
			Title:           rec.Title,
			Location:        rec.Location,
			Start:           rec.Start,
			DurationMinutes: rec.DurationMinutes,
		})
	}

	return out, nil
}

func (s *RedisRouteStore) SaveOperationalItem(ctx context.Context, key domain.RouteKey, item domain.OperationalItem) (int64, error) {
	if s.Client == nil {
		return 0, errors.New("route store: redis client is nil")
	}

	id, err := s.Client.Incr(ctx, routeHashKey(key)+":opseq").Result()
	if err != nil {
		return 0, fmt.Errorf("save operational item: next id: %w", err)
	}

	if err := s.writeOperational(ctx, key, id, item); err != nil {
		return 0, fmt.Errorf("save operational item: %w", err)
	}

	return id, nil
}

func (s *RedisRouteStore) UpdateOperationalItem(ctx context.Context, key domain.RouteKey, item domain.OperationalItem) error {
	if s.Client == nil {
		return errors.New("route store: redis client is nil")
	}

	field := "op:" + strconv.FormatInt(item.ID, 10)
	exists, err := s.Client.HExists(ctx, routeHashKey(key), field).Result()
	if err != nil {
		return fmt.Errorf("update operational item id=%d: %w", item.ID, err)
	}
	if !exists {
		return fmt.Errorf("update operational item id=%d: no such item for route", item.ID)
	}

	if err := s.writeOperational(ctx, key, item.ID, item); err != nil {
		return fmt.Errorf("update operational item id=%d: %w", item.ID, err)
	}

	return nil
}

func (s *RedisRouteStore) DeleteOperationalItem(ctx context.Context, key domain.RouteKey, id int64) error {
	if s.Client == nil {
		return errors.New("route store: redis client is nil")
	}

	field := "op:" + strconv.FormatInt(id, 10)
	if err := s.Client.HDel(ctx, routeHashKey(key), field).Err(); err != nil {
		return fmt.Errorf("delete operational item id=%d: %w", id, err)
	}

	return nil
}

func (s *RedisRouteStore) writeOperational(ctx context.Context, key domain.RouteKey, id int64, item domain.OperationalItem) error {
	raw, err := json.Marshal(redisOperational{
		Title:           item.Title,
		Location:        item.Location,
		Start:           item.Start,
		DurationMinutes: item.DurationMinutes,
	})
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	field := "op:" + strconv.FormatInt(id, 10)
	if err := s.Client.HSet(ctx, routeHashKey(key), field, raw).Err(); err != nil {
		return err
	}

	return nil
}
