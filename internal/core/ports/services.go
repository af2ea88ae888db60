package ports

import (
	"context"

	"github.com/mabteam/poimap/internal/core/domain"
)

// EventPublisher publishes POI change events to a message broker.
type EventPublisher interface {
	PublishPOIAdded(ctx context.Context, poi *domain.POI) error
	PublishPOIDeleted(ctx context.Context, id string) error
	PublishPOIsCleared(ctx context.Context) error
}

// EventSubscriber subscribes to POI change events from a message broker.
type EventSubscriber interface {
	SubscribePOIChanges(ctx context.Context, handler func(ctx context.Context, event *domain.POIEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Projector maps coordinates to screen pixels and back for one rendered view.
type Projector interface {
	ToScreen(p domain.GeoPoint) (x, y float64)
	FromScreen(x, y float64) domain.GeoPoint
}
