package ports

import (
	"context"

	"github.com/mabteam/poimap/internal/core/domain"
)

// POIStore persists points of interest. Implementations return
// domain.ErrNotFound for missing ids.
type POIStore interface {
	// FetchPOIs returns every POI inside region (boundary inclusive).
	FetchPOIs(ctx context.Context, region domain.Region) ([]domain.POI, error)
	AddPOI(ctx context.Context, poi *domain.POI) error
	AddPOIs(ctx context.Context, pois []domain.POI) error
	DeletePOI(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	GetByID(ctx context.Context, id string) (*domain.POI, error)
	ListByCategory(ctx context.Context, category string, limit int) ([]domain.POI, error)
	// Search returns POIs inside region whose name contains query, case-insensitively.
	Search(ctx context.Context, region domain.Region, query string) ([]domain.POI, error)
}
