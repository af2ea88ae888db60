package domain

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/mabteam/poimap/internal/pkg/geospatial"
)

// minBoundsMeters pads degenerate cluster bounds so they remain a valid Region.
const minBoundsMeters = 50.0

var clusterNamespace = uuid.MustParse("6f1c6d1e-2a55-4c3e-9b7a-4f0f9d8a1c21")

// Cluster is an immutable aggregate of one or more POIs rendered as a single
// marker. Combine never mutates its operands; it returns a new value.
type Cluster struct {
	Center  GeoPoint `json:"center"`
	Members []POI    `json:"members"`
}

// NewCluster starts a leaf cluster centered on the POI.
func NewCluster(poi POI) Cluster {
	return Cluster{Center: poi.Coordinate, Members: []POI{poi}}
}

// Combine returns the union of both clusters. The new center is the average of
// both centers weighted by member count, so the result matches the centroid of
// all members regardless of merge order up to floating-point rounding.
func (c Cluster) Combine(other Cluster) Cluster {
	n1, n2 := float64(len(c.Members)), float64(len(other.Members))
	members := make([]POI, 0, len(c.Members)+len(other.Members))
	members = append(members, c.Members...)
	members = append(members, other.Members...)

	switch {
	case n1 == 0:
		return Cluster{Center: other.Center, Members: members}
	case n2 == 0:
		return Cluster{Center: c.Center, Members: members}
	}

	return Cluster{
		Center: GeoPoint{
			Lat: (c.Center.Lat*n1 + other.Center.Lat*n2) / (n1 + n2),
			Lng: (c.Center.Lng*n1 + other.Center.Lng*n2) / (n1 + n2),
		},
		Members: members,
	}
}

// MemberCount returns 1 for a leaf and the aggregate size otherwise.
func (c Cluster) MemberCount() int {
	return len(c.Members)
}

// IsLeaf reports whether the cluster holds exactly one POI.
func (c Cluster) IsLeaf() bool {
	return len(c.Members) == 1
}

// MemberIDs returns the sorted member IDs.
func (c Cluster) MemberIDs() []string {
	ids := make([]string, len(c.Members))
	for i, m := range c.Members {
		ids[i] = m.ID
	}
	sort.Strings(ids)
	return ids
}

// ID is a marker identity stable across recluster cycles: the POI ID for a
// leaf, a name-based UUID of the membership for aggregates.
func (c Cluster) ID() string {
	switch len(c.Members) {
	case 0:
		return ""
	case 1:
		return c.Members[0].ID
	}
	return uuid.NewSHA1(clusterNamespace, []byte(strings.Join(c.MemberIDs(), ","))).String()
}

// Area returns the convex hull of the member coordinates in counter-clockwise
// order. Every member lies inside the hull or on its boundary.
func (c Cluster) Area() Polygon {
	pts := make([]orb.Point, 0, len(c.Members))
	seen := make(map[orb.Point]struct{}, len(c.Members))
	for _, m := range c.Members {
		p := m.Coordinate.Point()
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		pts = append(pts, p)
	}

	hull := convexHull(pts)
	area := make(Polygon, len(hull))
	for i, p := range hull {
		area[i] = GeoPointFromOrb(p)
	}
	return area
}

// Bounds returns the bounding box of the members, padded when it collapses to
// a point or a line.
func (c Cluster) Bounds() Region {
	if len(c.Members) == 0 {
		return Region{}
	}
	b := orb.Bound{Min: c.Members[0].Coordinate.Point(), Max: c.Members[0].Coordinate.Point()}
	for _, m := range c.Members[1:] {
		b = b.Extend(m.Coordinate.Point())
	}

	if b.Min[0] == b.Max[0] || b.Min[1] == b.Max[1] {
		center := b.Center()
		minLat, minLng, maxLat, maxLng := geospatial.BoundingBox(center.Lat(), center.Lon(), minBoundsMeters)
		b = b.Union(orb.Bound{Min: orb.Point{minLng, minLat}, Max: orb.Point{maxLng, maxLat}})
	}
	return RegionFromBound(b)
}

// convexHull is Andrew's monotone chain. Collinear points are dropped from the
// hull; they stay within BoundaryTolerance of an edge.
func convexHull(pts []orb.Point) []orb.Point {
	if len(pts) < 3 {
		out := make([]orb.Point, len(pts))
		copy(out, pts)
		return out
	}

	sorted := make([]orb.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i][0] != sorted[j][0] {
			return sorted[i][0] < sorted[j][0]
		}
		return sorted[i][1] < sorted[j][1]
	})

	hull := make([]orb.Point, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// last point repeats the first
	return hull[:len(hull)-1]
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}
