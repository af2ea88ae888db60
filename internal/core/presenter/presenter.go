// Package presenter turns clustering results into a map-SDK agnostic view
// model: markers, cluster area overlays and fit-to bounds.
package presenter

import (
	"math"
	"sort"
	"strconv"

	"github.com/mabteam/poimap/internal/clustering"
	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/core/ports"
)

const (
	DefaultBaseRadius = 15
	DefaultMaxRadius  = 30
)

// ScreenPoint is a pixel offset from the top-left corner of the rendered view.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Marker is one drawable cluster marker.
type Marker struct {
	ID          string          `json:"id"`
	Position    domain.GeoPoint `json:"position"`
	Screen      *ScreenPoint    `json:"screen,omitempty"`
	Radius      float64         `json:"radius"`
	MemberCount int             `json:"member_count"`
	Leaf        bool            `json:"leaf"`
	Caption     string          `json:"caption"`
	Category    string          `json:"category,omitempty"`
}

// Polygon is the area overlay of an aggregate marker.
type Polygon struct {
	MarkerID string         `json:"marker_id"`
	Vertices domain.Polygon `json:"vertices"`
}

// ViewModel is everything a map view needs to render one clustering frame.
// Bounds[i] is the region to zoom to when Markers[i] is tapped.
type ViewModel struct {
	Markers  []Marker        `json:"markers"`
	Polygons []Polygon       `json:"polygons"`
	Bounds   []domain.Region `json:"bounds"`
	Count    int             `json:"count"`
}

// Snapshots returns the displayed markers in the form the animation planner diffs.
func (vm ViewModel) Snapshots() []clustering.Snapshot {
	out := make([]clustering.Snapshot, len(vm.Markers))
	for i, m := range vm.Markers {
		out[i] = clustering.Snapshot{ID: m.ID, Center: m.Position, Count: m.MemberCount}
	}
	return out
}

// Presenter builds view models. A nil Projector leaves Marker.Screen unset.
type Presenter struct {
	BaseRadius float64
	MaxRadius  float64
	Projector  ports.Projector
}

// New creates a Presenter with default marker radii.
func New() *Presenter {
	return &Presenter{BaseRadius: DefaultBaseRadius, MaxRadius: DefaultMaxRadius}
}

// WithProjector returns a copy of p that also fills in screen positions.
func (p *Presenter) WithProjector(proj ports.Projector) *Presenter {
	cp := *p
	cp.Projector = proj
	return &cp
}

// Present renders clusters in order; marker i corresponds to clusters[i].
func (p *Presenter) Present(clusters []domain.Cluster) ViewModel {
	vm := ViewModel{
		Markers:  make([]Marker, 0, len(clusters)),
		Polygons: make([]Polygon, 0),
		Bounds:   make([]domain.Region, 0, len(clusters)),
	}

	for _, c := range clusters {
		m := Marker{
			ID:          c.ID(),
			Position:    c.Center,
			Radius:      p.radius(c.MemberCount()),
			MemberCount: c.MemberCount(),
			Leaf:        c.IsLeaf(),
			Category:    dominantCategory(c.Members),
		}
		if m.Leaf {
			m.Caption = c.Members[0].Name
		} else {
			m.Caption = strconv.Itoa(m.MemberCount)
			if area := c.Area(); len(area) >= 3 {
				vm.Polygons = append(vm.Polygons, Polygon{MarkerID: m.ID, Vertices: area})
			}
		}
		if p.Projector != nil {
			x, y := p.Projector.ToScreen(c.Center)
			m.Screen = &ScreenPoint{X: x, Y: y}
		}

		vm.Markers = append(vm.Markers, m)
		vm.Bounds = append(vm.Bounds, c.Bounds())
		vm.Count += m.MemberCount
	}

	return vm
}

// radius grows logarithmically with the member count, capped at MaxRadius.
func (p *Presenter) radius(members int) float64 {
	base := p.BaseRadius
	if base <= 0 {
		base = DefaultBaseRadius
	}
	if members <= 1 {
		return base
	}
	r := base * (1 + 0.25*math.Log2(float64(members)))
	if p.MaxRadius > 0 && r > p.MaxRadius {
		return p.MaxRadius
	}
	return r
}

// dominantCategory is the most frequent non-empty category, alphabetical on ties.
func dominantCategory(members []domain.POI) string {
	counts := make(map[string]int)
	for _, m := range members {
		if m.Category != "" {
			counts[m.Category]++
		}
	}
	cats := make([]string, 0, len(counts))
	for c := range counts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if counts[cats[i]] != counts[cats[j]] {
			return counts[cats[i]] > counts[cats[j]]
		}
		return cats[i] < cats[j]
	})
	if len(cats) == 0 {
		return ""
	}
	return cats[0]
}
