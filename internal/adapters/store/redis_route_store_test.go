package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"route-schedule-service/internal/domain"
)

func newRedisTestStore(t *testing.T) *RedisRouteStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRouteStore(client)
}

func testKey() domain.RouteKey {
	return domain.RouteKey{ManagerID: "m1", Day: "2026-01-02", Area: "north"}
}

func TestRedisVisitOverrideRoundTrip(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()
	key := testKey()

	start := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	if err := s.SaveVisitOverride(ctx, key, domain.VisitOverride{StopID: "a", Start: start, End: end}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.VisitOverrides(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("overrides = %d, want 1", len(got))
	}
	if got[0].StopID != "a" || !got[0].Start.Equal(start) || !got[0].End.Equal(end) {
		t.Fatalf("override = %+v", got[0])
	}
}

func TestRedisSaveVisitOverrideReplaces(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()
	key := testKey()

	start := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	if err := s.SaveVisitOverride(ctx, key, domain.VisitOverride{StopID: "a", Start: start, End: start.Add(time.Hour)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	later := start.Add(2 * time.Hour)
	if err := s.SaveVisitOverride(ctx, key, domain.VisitOverride{StopID: "a", Start: later, End: later.Add(time.Hour)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.VisitOverrides(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || !got[0].Start.Equal(later) {
		t.Fatalf("overrides = %+v, want single replaced window", got)
	}
}

func TestRedisSaveVisitOverrideRequiresStopID(t *testing.T) {
	s := newRedisTestStore(t)
	if err := s.SaveVisitOverride(context.Background(), testKey(), domain.VisitOverride{}); err == nil {
		t.Fatal("expected error for empty stop id")
	}
}

func TestRedisOperationalItemLifecycle(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()
	key := testKey()

	start := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	id1, err := s.SaveOperationalItem(ctx, key, domain.OperationalItem{Title: "Team meeting", Start: start, DurationMinutes: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2, err := s.SaveOperationalItem(ctx, key, domain.OperationalItem{Title: "Paperwork", Start: start.Add(4 * time.Hour), DurationMinutes: 60})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("ids not increasing: %d then %d", id1, id2)
	}

	items, err := s.OperationalItems(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	moved := start.Add(time.Hour)
	if err := s.UpdateOperationalItem(ctx, key, domain.OperationalItem{ID: id1, Title: "Team meeting", Start: moved, DurationMinutes: 45}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, err = s.OperationalItems(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var found bool
	for _, it := range items {
		if it.ID == id1 {
			found = true
			if !it.Start.Equal(moved) || it.DurationMinutes != 45 {
				t.Fatalf("updated item = %+v", it)
			}
		}
	}
	if !found {
		t.Fatalf("item %d missing after update", id1)
	}

	if err := s.DeleteOperationalItem(ctx, key, id1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items, err = s.OperationalItems(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != id2 {
		t.Fatalf("items after delete = %+v", items)
	}
}

func TestRedisUpdateMissingOperationalItem(t *testing.T) {
	s := newRedisTestStore(t)
	err := s.UpdateOperationalItem(context.Background(), testKey(), domain.OperationalItem{ID: 99, Title: "x", Start: time.Now()})
	if err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestRedisRoutesAreIsolated(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()

	start := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	if err := s.SaveVisitOverride(ctx, testKey(), domain.VisitOverride{StopID: "a", Start: start, End: start.Add(time.Hour)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := domain.RouteKey{ManagerID: "m2", Day: "2026-01-02", Area: "south"}
	got, err := s.VisitOverrides(ctx, other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("overrides leaked across routes: %+v", got)
	}
}

func TestMemoryStoreOperationalUpdateMissing(t *testing.T) {
	s := NewMemoryRouteStore()
	err := s.UpdateOperationalItem(context.Background(), testKey(), domain.OperationalItem{ID: 7})
	if err == nil {
		t.Fatal("expected error for unknown id")
	}
}
