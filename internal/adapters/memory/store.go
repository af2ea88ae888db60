// Package memory is an in-process POIStore backed by an R-tree. It serves
// demo mode and tests where no Postgres is available.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dhconnelly/rtreego"

	"github.com/mabteam/poimap/internal/core/domain"
)

// Slack added around query rectangles; rtreego treats touching rectangles as
// disjoint, so boundary points are recovered by Region.Contains afterwards.
const searchSlack = 1e-9

type entry struct {
	poi domain.POI
}

func (e *entry) Bounds() rtreego.Rect {
	return rtreego.Point{e.poi.Coordinate.Lng, e.poi.Coordinate.Lat}.ToRect(0)
}

// Store implements ports.POIStore in memory.
type Store struct {
	mu   sync.RWMutex
	tree *rtreego.Rtree
	byID map[string]*entry
	now  func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		tree: rtreego.NewTree(2, 25, 50),
		byID: make(map[string]*entry),
		now:  time.Now,
	}
}

// FetchPOIs returns every POI inside region, boundary inclusive, ordered by id.
func (s *Store) FetchPOIs(ctx context.Context, region domain.Region) ([]domain.POI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inRegion(region, func(domain.POI) bool { return true })
}

// AddPOI inserts or replaces a POI.
func (s *Store) AddPOI(ctx context.Context, poi *domain.POI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(*poi)
	return nil
}

// AddPOIs inserts or replaces every POI.
func (s *Store) AddPOIs(ctx context.Context, pois []domain.POI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pois {
		s.put(p)
	}
	return nil
}

// DeletePOI removes a POI by id.
func (s *Store) DeletePOI(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("poi %s: %w", id, domain.ErrNotFound)
	}
	s.tree.Delete(e)
	delete(s.byID, id)
	return nil
}

// DeleteAll removes every POI.
func (s *Store) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = rtreego.NewTree(2, 25, 50)
	s.byID = make(map[string]*entry)
	return nil
}

// GetByID returns a POI by id.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.POI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("poi %s: %w", id, domain.ErrNotFound)
	}
	p := e.poi
	return &p, nil
}

// ListByCategory returns up to limit POIs of category ordered by name.
func (s *Store) ListByCategory(ctx context.Context, category string, limit int) ([]domain.POI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.POI, 0)
	for _, e := range s.byID {
		if e.poi.Category == category {
			out = append(out, e.poi)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Search returns POIs in region whose name contains query, ignoring case.
func (s *Store) Search(ctx context.Context, region domain.Region, query string) ([]domain.POI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	pois, err := s.inRegion(region, func(p domain.POI) bool {
		return strings.Contains(strings.ToLower(p.Name), q)
	})
	if err != nil {
		return nil, err
	}
	domain.SortByPosition(pois)
	return pois, nil
}

// Len reports the number of stored POIs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *Store) put(p domain.POI) {
	if old, ok := s.byID[p.ID]; ok {
		s.tree.Delete(old)
		if p.CreatedAt.IsZero() {
			p.CreatedAt = old.poi.CreatedAt
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	e := &entry{poi: p}
	s.byID[p.ID] = e
	s.tree.Insert(e)
}

func (s *Store) inRegion(region domain.Region, keep func(domain.POI) bool) ([]domain.POI, error) {
	sw, ne := region.SouthWest, region.NorthEast
	rect, err := rtreego.NewRect(
		rtreego.Point{sw.Lng - searchSlack, sw.Lat - searchSlack},
		[]float64{ne.Lng - sw.Lng + 2*searchSlack, ne.Lat - sw.Lat + 2*searchSlack},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRegion, err)
	}

	out := make([]domain.POI, 0)
	for _, sp := range s.tree.SearchIntersect(rect) {
		p := sp.(*entry).poi
		if region.Contains(p.Coordinate) && keep(p) {
			out = append(out, p)
		}
	}
	domain.SortPOIs(out)
	return out, nil
}
