package clustering

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/pkg/geospatial"
)

const (
	// DefaultRadius is the on-screen marker radius in pixels.
	DefaultRadius = 30
	// DefaultTileSize is the map tile edge in pixels.
	DefaultTileSize = 256
	// MinZoom and MaxZoom bound the supported zoom range; anything outside is clamped.
	MinZoom = 0
	MaxZoom = 21
)

// Engine partitions points into clusters for a viewport and zoom level.
// Radius is the merge distance in screen pixels; TileSize converts it into a
// ground distance at a given zoom. Zero Radius disables merging entirely and
// math.Inf(1) collapses every point into one cluster.
type Engine struct {
	Radius   float64
	TileSize float64
	MinZoom  float64
	MaxZoom  float64

	// MergeUntilStable repeats merge passes over cluster centers until no two
	// centers are within the threshold.
	MergeUntilStable bool

	// R-tree node fan-out.
	MinChildren int
	MaxChildren int
}

// NewEngine creates an Engine with default parameters:
// Radius = 30, TileSize = 256, zoom range 0..21, merge passes enabled.
func NewEngine() *Engine {
	return &Engine{
		Radius:           DefaultRadius,
		TileSize:         DefaultTileSize,
		MinZoom:          MinZoom,
		MaxZoom:          MaxZoom,
		MergeUntilStable: true,
		MinChildren:      8,
		MaxChildren:      16,
	}
}

// ClampZoom limits zoom to the supported range. NaN maps to MinZoom.
func (e *Engine) ClampZoom(zoom float64) float64 {
	if math.IsNaN(zoom) || zoom < e.MinZoom {
		return e.MinZoom
	}
	if zoom > e.MaxZoom {
		return e.MaxZoom
	}
	return zoom
}

// Threshold returns the merge distance on the Web Mercator plane at zoom.
// It shrinks by half with every zoom level.
func (e *Engine) Threshold(zoom float64) float64 {
	return geospatial.PixelToMeters(e.Radius, e.ClampZoom(zoom), e.tileSize())
}

// Cluster groups the points inside viewport at zoom. Points outside the
// viewport are ignored. The result is never nil.
func (e *Engine) Cluster(points []domain.POI, zoom float64, viewport domain.Region) []domain.Cluster {
	visible := make([]domain.POI, 0, len(points))
	for _, p := range points {
		if viewport.Contains(p.Coordinate) {
			visible = append(visible, p)
		}
	}
	domain.SortPOIs(visible)
	return e.ClusterWithThreshold(visible, e.Threshold(zoom))
}

// ClusterWithThreshold groups points, visited in the given order, using an
// explicit Mercator-plane threshold in meters.
func (e *Engine) ClusterWithThreshold(points []domain.POI, threshold float64) []domain.Cluster {
	clusters := make([]domain.Cluster, 0, len(points))
	if len(points) == 0 {
		return clusters
	}

	idx := newCenterIndex(e.fanOut())
	for _, p := range points {
		pos := project(p.Coordinate)
		if i, ok := idx.firstWithin(pos[0], pos[1], threshold, distance); ok {
			idx.remove(i)
			clusters[i] = clusters[i].Combine(domain.NewCluster(p))
			c := project(clusters[i].Center)
			idx.insert(i, c[0], c[1])
			continue
		}
		clusters = append(clusters, domain.NewCluster(p))
		idx.insert(len(clusters)-1, pos[0], pos[1])
	}

	if e.MergeUntilStable {
		clusters = mergeCenters(clusters, threshold)
	}
	return clusters
}

// mergeCenters folds clusters whose centers are within threshold into the
// earlier one until the set is stable.
func mergeCenters(clusters []domain.Cluster, threshold float64) []domain.Cluster {
	if threshold <= 0 {
		return clusters
	}
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); {
				if planar.Distance(project(clusters[i].Center), project(clusters[j].Center)) < threshold {
					clusters[i] = clusters[i].Combine(clusters[j])
					clusters = append(clusters[:j], clusters[j+1:]...)
					merged = true
					continue
				}
				j++
			}
		}
	}
	return clusters
}

func (e *Engine) tileSize() float64 {
	if e.TileSize <= 0 {
		return DefaultTileSize
	}
	return e.TileSize
}

func (e *Engine) fanOut() (int, int) {
	minC, maxC := e.MinChildren, e.MaxChildren
	if minC <= 0 {
		minC = 8
	}
	if maxC < 2*minC {
		maxC = 2 * minC
	}
	return minC, maxC
}

func project(p domain.GeoPoint) orb.Point {
	return geospatial.Mercator(p.Lat, p.Lng)
}

func distance(x1, y1, x2, y2 float64) float64 {
	return planar.Distance(orb.Point{x1, y1}, orb.Point{x2, y2})
}
