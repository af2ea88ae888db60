package geospatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
)

// MaxMercatorLat is the latitude where the square Web Mercator world ends.
const MaxMercatorLat = 85.05112878

// Mercator projects a lat/lng pair onto the spherical Web Mercator plane (meters).
// Latitudes beyond MaxMercatorLat are clamped so the result stays finite.
func Mercator(lat, lng float64) orb.Point {
	if lat > MaxMercatorLat {
		lat = MaxMercatorLat
	}
	if lat < -MaxMercatorLat {
		lat = -MaxMercatorLat
	}
	return project.Point(orb.Point{lng, lat}, project.WGS84.ToMercator)
}

// MercatorDistance is the Euclidean distance between two lat/lng pairs on the
// Web Mercator plane. It is the single distance used for every clustering and
// diffing decision so that merges match on-screen marker overlap.
func MercatorDistance(lat1, lng1, lat2, lng2 float64) float64 {
	return planar.Distance(Mercator(lat1, lng1), Mercator(lat2, lng2))
}

// MetersPerPixel returns the Web Mercator ground resolution at the given zoom
// for square tiles of tileSize pixels.
func MetersPerPixel(zoom, tileSize float64) float64 {
	return 2 * math.Pi * orb.EarthRadius / (tileSize * math.Pow(2, zoom))
}

// PixelToMeters converts a screen distance at zoom into a Mercator-plane distance.
func PixelToMeters(pixels, zoom, tileSize float64) float64 {
	return pixels * MetersPerPixel(zoom, tileSize)
}
