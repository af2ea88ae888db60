package usecases_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mabteam/poimap/internal/core/domain"
)

// --- Mock POIStore ---

type mockPOIStore struct {
	fetchFn          func(ctx context.Context, region domain.Region) ([]domain.POI, error)
	addFn            func(ctx context.Context, poi *domain.POI) error
	addBatchFn       func(ctx context.Context, pois []domain.POI) error
	deleteFn         func(ctx context.Context, id string) error
	deleteAllFn      func(ctx context.Context) error
	getByIDFn        func(ctx context.Context, id string) (*domain.POI, error)
	listByCategoryFn func(ctx context.Context, category string, limit int) ([]domain.POI, error)
	searchFn         func(ctx context.Context, region domain.Region, query string) ([]domain.POI, error)

	mu         sync.Mutex
	fetchCalls int
}

func (m *mockPOIStore) FetchPOIs(ctx context.Context, region domain.Region) ([]domain.POI, error) {
	m.mu.Lock()
	m.fetchCalls++
	m.mu.Unlock()
	if m.fetchFn != nil {
		return m.fetchFn(ctx, region)
	}
	return nil, nil
}

func (m *mockPOIStore) AddPOI(ctx context.Context, poi *domain.POI) error {
	if m.addFn != nil {
		return m.addFn(ctx, poi)
	}
	return nil
}

func (m *mockPOIStore) AddPOIs(ctx context.Context, pois []domain.POI) error {
	if m.addBatchFn != nil {
		return m.addBatchFn(ctx, pois)
	}
	return nil
}

func (m *mockPOIStore) DeletePOI(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPOIStore) DeleteAll(ctx context.Context) error {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx)
	}
	return nil
}

func (m *mockPOIStore) GetByID(ctx context.Context, id string) (*domain.POI, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockPOIStore) ListByCategory(ctx context.Context, category string, limit int) ([]domain.POI, error) {
	if m.listByCategoryFn != nil {
		return m.listByCategoryFn(ctx, category, limit)
	}
	return nil, nil
}

func (m *mockPOIStore) Search(ctx context.Context, region domain.Region, query string) ([]domain.POI, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, region, query)
	}
	return nil, nil
}

func (m *mockPOIStore) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCache) DeletePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	added   []string
	deleted []string
	cleared int
	err     error
}

func (m *mockPublisher) PublishPOIAdded(ctx context.Context, poi *domain.POI) error {
	m.added = append(m.added, poi.ID)
	return m.err
}

func (m *mockPublisher) PublishPOIDeleted(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockPublisher) PublishPOIsCleared(ctx context.Context) error {
	m.cleared++
	return m.err
}

// --- Fixtures ---

func poi(id string, lat, lng float64) domain.POI {
	return domain.POI{ID: id, Name: "name-" + id, Category: "cafe", Coordinate: domain.GeoPoint{Lat: lat, Lng: lng}}
}

func seoul() domain.Region {
	return domain.Region{
		SouthWest: domain.GeoPoint{Lat: 37.0, Lng: 126.0},
		NorthEast: domain.GeoPoint{Lat: 41.0, Lng: 131.0},
	}
}

func storeWith(pois ...domain.POI) *mockPOIStore {
	return &mockPOIStore{
		fetchFn: func(ctx context.Context, region domain.Region) ([]domain.POI, error) {
			out := make([]domain.POI, 0, len(pois))
			for _, p := range pois {
				if region.Contains(p.Coordinate) {
					out = append(out, p)
				}
			}
			return out, nil
		},
	}
}
