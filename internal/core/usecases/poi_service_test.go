package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/core/usecases"
)

func TestPOIService_AddPOI(t *testing.T) {
	var stored *domain.POI
	store := &mockPOIStore{
		addFn: func(ctx context.Context, p *domain.POI) error {
			stored = p
			return nil
		},
	}
	cache := newMockCache()
	pub := &mockPublisher{}
	svc := usecases.NewPOIService(store, cache, pub)

	_ = cache.Set(context.Background(), "pois:id:p1", []byte(`{"id":"p1","name":"stale"}`), 60)

	got, err := svc.AddPOI(context.Background(), domain.Place{ID: "p1", Name: "Cafe", Category: "cafe", X: "127.0", Y: "37.5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil || stored.ID != "p1" {
		t.Fatalf("expected p1 stored, got %+v", stored)
	}
	if got.Coordinate.Lat != 37.5 || got.Coordinate.Lng != 127.0 {
		t.Errorf("unexpected coordinate %+v", got.Coordinate)
	}
	if len(pub.added) != 1 || pub.added[0] != "p1" {
		t.Errorf("expected added event for p1, got %v", pub.added)
	}
	if _, err := cache.Get(context.Background(), "pois:id:p1"); err == nil {
		t.Error("expected cached detail to be invalidated")
	}
}

func TestPOIService_AddPOI_InvalidCoordinate(t *testing.T) {
	called := false
	store := &mockPOIStore{
		addFn: func(ctx context.Context, p *domain.POI) error {
			called = true
			return nil
		},
	}
	svc := usecases.NewPOIService(store, nil, nil)

	_, err := svc.AddPOI(context.Background(), domain.Place{Name: "x", X: "0", Y: "91"})
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if called {
		t.Error("store must not be called for invalid input")
	}
}

func TestPOIService_AddPOI_StoreFailure(t *testing.T) {
	store := &mockPOIStore{
		addFn: func(ctx context.Context, p *domain.POI) error {
			return errors.New("disk full")
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewPOIService(store, nil, pub)

	_, err := svc.AddPOI(context.Background(), domain.Place{Name: "x", X: "1", Y: "1"})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if len(pub.added) != 0 {
		t.Error("no event should be published on failure")
	}
}

func TestPOIService_AddPOI_PublishFailureIsNotFatal(t *testing.T) {
	svc := usecases.NewPOIService(&mockPOIStore{}, nil, &mockPublisher{err: errors.New("nats down")})

	if _, err := svc.AddPOI(context.Background(), domain.Place{Name: "x", X: "1", Y: "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPOIService_AddPOIs_RejectsWholeBatch(t *testing.T) {
	called := false
	store := &mockPOIStore{
		addBatchFn: func(ctx context.Context, pois []domain.POI) error {
			called = true
			return nil
		},
	}
	svc := usecases.NewPOIService(store, nil, nil)

	_, err := svc.AddPOIs(context.Background(), []domain.Place{
		{Name: "ok", X: "1", Y: "1"},
		{Name: "bad", X: "abc", Y: "1"},
	})
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if called {
		t.Error("store must not be called when any place is invalid")
	}
}

func TestPOIService_AddPOIs(t *testing.T) {
	var batch []domain.POI
	store := &mockPOIStore{
		addBatchFn: func(ctx context.Context, pois []domain.POI) error {
			batch = pois
			return nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewPOIService(store, nil, pub)

	pois, err := svc.AddPOIs(context.Background(), []domain.Place{
		{ID: "a", Name: "A", X: "1", Y: "1"},
		{ID: "b", Name: "B", X: "2", Y: "2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pois) != 2 || len(batch) != 2 {
		t.Fatalf("expected 2 stored, got %d/%d", len(pois), len(batch))
	}
	if len(pub.added) != 2 {
		t.Errorf("expected 2 events, got %d", len(pub.added))
	}
}

func TestPOIService_DeletePOI_NotFound(t *testing.T) {
	store := &mockPOIStore{
		deleteFn: func(ctx context.Context, id string) error {
			return domain.ErrNotFound
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewPOIService(store, nil, pub)

	err := svc.DeletePOI(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, domain.ErrStoreUnavailable) {
		t.Error("not found must not be reported as store unavailable")
	}
	if len(pub.deleted) != 0 {
		t.Error("no event should be published on failure")
	}
}

func TestPOIService_DeleteAll(t *testing.T) {
	cache := newMockCache()
	ctx := context.Background()
	_ = cache.Set(ctx, "pois:id:a", []byte(`{}`), 60)
	_ = cache.Set(ctx, "pois:id:b", []byte(`{}`), 60)
	_ = cache.Set(ctx, "other", []byte(`{}`), 60)
	pub := &mockPublisher{}
	svc := usecases.NewPOIService(&mockPOIStore{}, cache, pub)

	if err := svc.DeleteAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cache.data) != 1 {
		t.Errorf("expected only unrelated key left, got %v", cache.data)
	}
	if pub.cleared != 1 {
		t.Errorf("expected one cleared event, got %d", pub.cleared)
	}
}

func TestPOIService_DeleteAll_StoreFailure(t *testing.T) {
	store := &mockPOIStore{
		deleteAllFn: func(ctx context.Context) error { return errors.New("timeout") },
	}
	svc := usecases.NewPOIService(store, nil, nil)

	if err := svc.DeleteAll(context.Background()); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestPOIService_GetByID_Cached(t *testing.T) {
	calls := 0
	store := &mockPOIStore{
		getByIDFn: func(ctx context.Context, id string) (*domain.POI, error) {
			calls++
			p := poi(id, 1, 2)
			return &p, nil
		},
	}
	svc := usecases.NewPOIService(store, newMockCache(), nil)

	for i := 0; i < 3; i++ {
		got, err := svc.GetByID(context.Background(), "x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != "x" {
			t.Errorf("expected x, got %s", got.ID)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 store call, got %d", calls)
	}
}

func TestPOIService_ListInRegion(t *testing.T) {
	store := &mockPOIStore{
		searchFn: func(ctx context.Context, region domain.Region, query string) ([]domain.POI, error) {
			if query != "cafe" {
				t.Errorf("expected query 'cafe', got %q", query)
			}
			return []domain.POI{
				poi("c", 37.6, 127.0),
				poi("a", 37.4, 127.2),
				poi("b", 37.4, 127.1),
			}, nil
		},
	}
	svc := usecases.NewPOIService(store, nil, nil)

	page, total, err := svc.ListInRegion(context.Background(), seoul(), "cafe", 0, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(page) != 2 || page[0].ID != "b" || page[1].ID != "a" {
		t.Fatalf("unexpected page order: %+v", page)
	}
	if page[0].Distance == nil || *page[0].Distance <= 0 {
		t.Error("expected distance from region center")
	}

	rest, _, err := svc.ListInRegion(context.Background(), seoul(), "cafe", 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != "c" {
		t.Errorf("unexpected second page: %+v", rest)
	}

	empty, _, _ := svc.ListInRegion(context.Background(), seoul(), "cafe", 10, 2)
	if len(empty) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(empty))
	}
}

func TestPOIService_ListInRegion_InvalidRegion(t *testing.T) {
	svc := usecases.NewPOIService(&mockPOIStore{}, nil, nil)

	_, _, err := svc.ListInRegion(context.Background(), domain.Region{}, "", 0, 10)
	if !errors.Is(err, domain.ErrInvalidRegion) {
		t.Fatalf("expected ErrInvalidRegion, got %v", err)
	}
}

func TestPOIService_ListByCategory_Empty(t *testing.T) {
	svc := usecases.NewPOIService(&mockPOIStore{}, nil, nil)
	if _, err := svc.ListByCategory(context.Background(), "", 10); err == nil {
		t.Error("expected error for empty category")
	}
}

func TestPOIService_HandleEvent(t *testing.T) {
	cache := newMockCache()
	ctx := context.Background()
	_ = cache.Set(ctx, "pois:id:a", []byte(`{}`), 60)
	_ = cache.Set(ctx, "pois:id:b", []byte(`{}`), 60)
	_ = cache.Set(ctx, "other", []byte(`{}`), 60)
	svc := usecases.NewPOIService(&mockPOIStore{}, cache, nil)

	p := poi("a", 1, 2)
	if err := svc.HandleEvent(ctx, &domain.POIEvent{Type: domain.POIAdded, POI: &p}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cache.data["pois:id:a"]; ok {
		t.Error("added event should evict the cached record")
	}

	if err := svc.HandleEvent(ctx, &domain.POIEvent{Type: domain.POICleared}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cache.data) != 1 {
		t.Errorf("expected only unrelated key left, got %v", cache.data)
	}

	if err := svc.HandleEvent(ctx, &domain.POIEvent{Type: domain.POIDeleted}); err == nil {
		t.Error("expected error for deleted event without id")
	}
}
