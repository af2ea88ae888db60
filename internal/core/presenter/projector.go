package presenter

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/pkg/geospatial"
)

// MercatorProjector is a Web Mercator screen projection anchored at the
// north-west corner of a viewport.
type MercatorProjector struct {
	origin         orb.Point
	metersPerPixel float64
}

// NewMercatorProjector projects coordinates for viewport rendered at zoom.
func NewMercatorProjector(viewport domain.Region, zoom, tileSize float64) *MercatorProjector {
	if tileSize <= 0 {
		tileSize = 256
	}
	return &MercatorProjector{
		origin:         geospatial.Mercator(viewport.NorthEast.Lat, viewport.SouthWest.Lng),
		metersPerPixel: geospatial.MetersPerPixel(zoom, tileSize),
	}
}

func (m *MercatorProjector) ToScreen(p domain.GeoPoint) (float64, float64) {
	pt := geospatial.Mercator(p.Lat, p.Lng)
	return (pt[0] - m.origin[0]) / m.metersPerPixel, (m.origin[1] - pt[1]) / m.metersPerPixel
}

func (m *MercatorProjector) FromScreen(x, y float64) domain.GeoPoint {
	pt := orb.Point{m.origin[0] + x*m.metersPerPixel, m.origin[1] - y*m.metersPerPixel}
	return domain.GeoPointFromOrb(project.Point(pt, project.Mercator.ToWGS84))
}
