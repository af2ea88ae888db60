package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate reports ErrInvalidCoordinate for NaN, infinite or out-of-range values.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return fmt.Errorf("%w: (%v, %v) is not a number", ErrInvalidCoordinate, p.Lat, p.Lng)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, p.Lng)
	}
	return nil
}

// Point returns the orb representation (x = lng, y = lat).
func (p GeoPoint) Point() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// GeoPointFromOrb converts an orb point back to a GeoPoint.
func GeoPointFromOrb(p orb.Point) GeoPoint {
	return GeoPoint{Lat: p.Lat(), Lng: p.Lon()}
}

// Region represents a rectangular geographic bounding box.
type Region struct {
	SouthWest GeoPoint `json:"south_west"`
	NorthEast GeoPoint `json:"north_east"`
}

// NewRegion builds a validated Region.
func NewRegion(southWest, northEast GeoPoint) (Region, error) {
	r := Region{SouthWest: southWest, NorthEast: northEast}
	if err := r.Validate(); err != nil {
		return Region{}, err
	}
	return r, nil
}

// Validate rejects degenerate and inverted regions.
func (r Region) Validate() error {
	if err := r.SouthWest.Validate(); err != nil {
		return fmt.Errorf("%w: south-west: %v", ErrInvalidRegion, err)
	}
	if err := r.NorthEast.Validate(); err != nil {
		return fmt.Errorf("%w: north-east: %v", ErrInvalidRegion, err)
	}
	if !(r.NorthEast.Lat > r.SouthWest.Lat && r.NorthEast.Lng > r.SouthWest.Lng) {
		return fmt.Errorf("%w: north-east %v is not strictly north-east of south-west %v",
			ErrInvalidRegion, r.NorthEast, r.SouthWest)
	}
	return nil
}

// Bound returns the orb bound of the region.
func (r Region) Bound() orb.Bound {
	return orb.Bound{Min: r.SouthWest.Point(), Max: r.NorthEast.Point()}
}

// RegionFromBound converts an orb bound into a Region.
func RegionFromBound(b orb.Bound) Region {
	return Region{SouthWest: GeoPointFromOrb(b.Min), NorthEast: GeoPointFromOrb(b.Max)}
}

// Contains reports whether p lies inside the region, edges included.
func (r Region) Contains(p GeoPoint) bool {
	return r.Bound().Contains(p.Point())
}

// Intersects reports whether two regions overlap (touching edges count).
func (r Region) Intersects(o Region) bool {
	return r.Bound().Intersects(o.Bound())
}

// Center returns the midpoint of the region.
func (r Region) Center() GeoPoint {
	return GeoPointFromOrb(r.Bound().Center())
}

// Corners returns the region as a counter-clockwise polygon starting at south-west.
func (r Region) Corners() Polygon {
	return Polygon{
		r.SouthWest,
		{Lat: r.SouthWest.Lat, Lng: r.NorthEast.Lng},
		r.NorthEast,
		{Lat: r.NorthEast.Lat, Lng: r.SouthWest.Lng},
	}
}

// Polygon is an open ring of coordinates (the closing vertex is implied).
type Polygon []GeoPoint

// Ring returns the closed orb ring for the polygon.
func (pg Polygon) Ring() orb.Ring {
	ring := make(orb.Ring, 0, len(pg)+1)
	for _, p := range pg {
		ring = append(ring, p.Point())
	}
	if len(pg) > 0 {
		ring = append(ring, pg[0].Point())
	}
	return ring
}

// Contains reports whether p is inside the polygon or on its boundary.
// Points within BoundaryTolerance of an edge count as on the boundary, so
// one and two vertex polygons behave as a point and a segment.
func (pg Polygon) Contains(p GeoPoint) bool {
	if len(pg) == 0 {
		return false
	}
	pt := p.Point()
	ring := pg.Ring()
	for i := 0; i+1 < len(ring); i++ {
		if planar.DistanceFromSegment(ring[i], ring[i+1], pt) <= BoundaryTolerance {
			return true
		}
	}
	if len(pg) < 3 {
		return false
	}
	return planar.RingContains(ring, pt)
}

// BoundaryTolerance is the distance in degrees (about 0.1 mm) within which a
// point lies on a polygon edge.
const BoundaryTolerance = 1e-9
