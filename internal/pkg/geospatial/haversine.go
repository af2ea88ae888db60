package geospatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Haversine returns the great-circle distance in meters between two points.
// It is only used for human-facing distances (detail sheet), never for
// clustering decisions; those use MercatorDistance.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	return geo.DistanceHaversine(orb.Point{lng1, lat1}, orb.Point{lng2, lat2})
}

// BoundingBox returns a box extending radiusMeters around a point.
func BoundingBox(lat, lng, radiusMeters float64) (minLat, minLng, maxLat, maxLng float64) {
	b := geo.NewBoundAroundPoint(orb.Point{lng, lat}, radiusMeters)
	return b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon()
}
