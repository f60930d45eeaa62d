package store

import (
	"context"
	"fmt"
	"route-schedule-service/internal/domain"
	"sync"
)

// In-memory route store for tests and local demos.
type MemoryRouteStore struct {
	mu        sync.Mutex
	overrides map[domain.RouteKey]map[string]domain.VisitOverride
	items     map[domain.RouteKey]map[int64]domain.OperationalItem
	nextID    int64
}

func NewMemoryRouteStore() *MemoryRouteStore {
	return &MemoryRouteStore{
		overrides: make(map[domain.RouteKey]map[string]domain.VisitOverride),
		items:     make(map[domain.RouteKey]map[int64]domain.OperationalItem),
	}
}

func (s *MemoryRouteStore) VisitOverrides(ctx context.Context, key domain.RouteKey) ([]domain.VisitOverride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.VisitOverride, 0, len(s.overrides[key]))
	for _, ov := range s.overrides[key] {
		out = append(out, ov)
	}
	return out, nil
}

func (s *MemoryRouteStore) SaveVisitOverride(ctx context.Context, key domain.RouteKey, ov domain.VisitOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.overrides[key] == nil {
		s.overrides[key] = make(map[string]domain.VisitOverride)
	}
	s.overrides[key][ov.StopID] = ov
	return nil
}

func (s *MemoryRouteStore) OperationalItems(ctx context.Context, key domain.RouteKey) ([]domain.OperationalItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.OperationalItem, 0, len(s.items[key]))
	for _, it := range s.items[key] {
		out = append(out, it)
	}
	return out, nil
}

func (s *MemoryRouteStore) SaveOperationalItem(ctx context.Context, key domain.RouteKey, item domain.OperationalItem) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	item.ID = s.nextID
	if s.items[key] == nil {
		s.items[key] = make(map[int64]domain.OperationalItem)
	}
	s.items[key][item.ID] = item
	return item.ID, nil
}

func (s *MemoryRouteStore) UpdateOperationalItem(ctx context.Context, key domain.RouteKey, item domain.OperationalItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key][item.ID]; !ok {
		return fmt.Errorf("update operational item id=%d: no such item for route", item.ID)
	}
	s.items[key][item.ID] = item
	return nil
}

func (s *MemoryRouteStore) DeleteOperationalItem(ctx context.Context, key domain.RouteKey, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items[key], id)
	return nil
}
