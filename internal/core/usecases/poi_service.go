package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/core/ports"
	"github.com/mabteam/poimap/internal/pkg/geospatial"
	"github.com/mabteam/poimap/internal/pkg/metrics"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// POIService handles POI mutations and the detail list.
type POIService struct {
	store     ports.POIStore
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewPOIService creates a new POIService. cache and publisher may be nil.
func NewPOIService(store ports.POIStore, cache ports.CacheService, publisher ports.EventPublisher) *POIService {
	return &POIService{store: store, cache: cache, publisher: publisher}
}

func poiCacheKey(id string) string {
	return "pois:id:" + id
}

// AddPOI validates place and stores it.
func (s *POIService) AddPOI(ctx context.Context, place domain.Place) (*domain.POI, error) {
	poi, err := place.ToPOI()
	if err != nil {
		return nil, err
	}
	if err := s.store.AddPOI(ctx, &poi); err != nil {
		return nil, storeErr("add poi", err)
	}

	s.invalidate(ctx, poi.ID)
	if s.publisher != nil {
		if err := s.publisher.PublishPOIAdded(ctx, &poi); err != nil {
			slog.Warn("publish poi added", "id", poi.ID, "error", err)
		}
	}
	return &poi, nil
}

// AddPOIs validates every place first and stores them as one batch.
func (s *POIService) AddPOIs(ctx context.Context, places []domain.Place) ([]domain.POI, error) {
	pois, err := PlacesToPOIs(places)
	if err != nil {
		return nil, err
	}
	if len(pois) == 0 {
		return pois, nil
	}
	if err := s.store.AddPOIs(ctx, pois); err != nil {
		return nil, storeErr("add pois", err)
	}

	for i := range pois {
		s.invalidate(ctx, pois[i].ID)
		if s.publisher != nil {
			if err := s.publisher.PublishPOIAdded(ctx, &pois[i]); err != nil {
				slog.Warn("publish poi added", "id", pois[i].ID, "error", err)
			}
		}
	}
	return pois, nil
}

// PlacesToPOIs converts places, reporting the index of the first invalid one.
func PlacesToPOIs(places []domain.Place) ([]domain.POI, error) {
	pois := make([]domain.POI, 0, len(places))
	for i, p := range places {
		poi, err := p.ToPOI()
		if err != nil {
			return nil, fmt.Errorf("place %d: %w", i, err)
		}
		pois = append(pois, poi)
	}
	return pois, nil
}

// DeletePOI removes one POI. Unknown ids yield domain.ErrNotFound.
func (s *POIService) DeletePOI(ctx context.Context, id string) error {
	if err := s.store.DeletePOI(ctx, id); err != nil {
		return storeErr("delete poi", err)
	}

	s.invalidate(ctx, id)
	if s.publisher != nil {
		if err := s.publisher.PublishPOIDeleted(ctx, id); err != nil {
			slog.Warn("publish poi deleted", "id", id, "error", err)
		}
	}
	return nil
}

// DeleteAll removes every POI.
func (s *POIService) DeleteAll(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return storeErr("delete all", err)
	}
	if s.cache != nil {
		if err := s.cache.DeletePrefix(ctx, poiCacheKey("")); err != nil {
			slog.Warn("cache invalidate", "prefix", poiCacheKey(""), "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishPOIsCleared(ctx); err != nil {
			slog.Warn("publish pois cleared", "error", err)
		}
	}
	return nil
}

// GetByID returns a single POI.
func (s *POIService) GetByID(ctx context.Context, id string) (*domain.POI, error) {
	cacheKey := poiCacheKey(id)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var poi domain.POI
			if err := json.Unmarshal(data, &poi); err == nil {
				metrics.CacheHits.WithLabelValues("poi").Inc()
				return &poi, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("poi").Inc()
	}

	poi, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get poi", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(poi); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}
	return poi, nil
}

// ListInRegion returns one page of POIs inside region whose name contains
// query, ordered by latitude then longitude, with the total match count.
// Each POI carries its distance in meters from the region center.
func (s *POIService) ListInRegion(ctx context.Context, region domain.Region, query string, offset, limit int) ([]domain.POI, int, error) {
	if err := region.Validate(); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	pois, err := s.store.Search(ctx, region, query)
	if err != nil {
		return nil, 0, storeErr("search pois", err)
	}
	domain.SortByPosition(pois)

	total := len(pois)
	if offset >= total {
		return []domain.POI{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := pois[offset:end]

	center := region.Center()
	for i := range page {
		d := geospatial.Haversine(center.Lat, center.Lng, page[i].Coordinate.Lat, page[i].Coordinate.Lng)
		page[i].Distance = &d
	}
	return page, total, nil
}

// InRegion returns every POI inside region.
func (s *POIService) InRegion(ctx context.Context, region domain.Region) ([]domain.POI, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}
	pois, err := s.store.FetchPOIs(ctx, region)
	if err != nil {
		return nil, storeErr("fetch pois", err)
	}
	domain.SortPOIs(pois)
	return pois, nil
}

// ListByCategory returns up to limit POIs of one category.
func (s *POIService) ListByCategory(ctx context.Context, category string, limit int) ([]domain.POI, error) {
	if category == "" {
		return nil, fmt.Errorf("category must not be empty")
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	pois, err := s.store.ListByCategory(ctx, category, limit)
	if err != nil {
		return nil, storeErr("list by category", err)
	}
	return pois, nil
}

// HandleEvent applies a change published by another instance to the local
// cache so GetByID does not serve stale records.
func (s *POIService) HandleEvent(ctx context.Context, event *domain.POIEvent) error {
	if s.cache == nil || event == nil {
		return nil
	}
	switch event.Type {
	case domain.POIAdded, domain.POIDeleted:
		id := event.ID
		if id == "" && event.POI != nil {
			id = event.POI.ID
		}
		if id == "" {
			return fmt.Errorf("%s event without id", event.Type)
		}
		return s.cache.Delete(ctx, poiCacheKey(id))
	case domain.POICleared:
		return s.cache.DeletePrefix(ctx, poiCacheKey(""))
	default:
		slog.Debug("ignoring poi event", "type", event.Type)
		return nil
	}
}

func (s *POIService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, poiCacheKey(id)); err != nil {
		slog.Debug("cache invalidate", "key", poiCacheKey(id), "error", err)
	}
}
