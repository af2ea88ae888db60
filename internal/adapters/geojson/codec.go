// Package geojson converts between POIs and GeoJSON feature collections.
package geojson

import (
	"fmt"
	"io"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mabteam/poimap/internal/core/domain"
)

// Property keys used on exported and imported features.
const (
	PropName     = "name"
	PropCategory = "category"
	PropImageURL = "image_url"
)

// Encode renders pois as a FeatureCollection of points.
func Encode(pois []domain.POI) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, p := range pois {
		f := geojson.NewFeature(p.Coordinate.Point())
		f.ID = p.ID
		f.Properties[PropName] = p.Name
		if p.Category != "" {
			f.Properties[PropCategory] = p.Category
		}
		if p.ImageURL != "" {
			f.Properties[PropImageURL] = p.ImageURL
		}
		fc.Append(f)
	}
	return fc.MarshalJSON()
}

// Decode reads a FeatureCollection and returns one place per point feature.
// Non-point geometries are rejected with the index of the offending feature.
func Decode(r io.Reader) ([]domain.Place, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	places := make([]domain.Place, 0, len(fc.Features))
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("feature %d: %w: geometry must be a Point", i, domain.ErrInvalidCoordinate)
		}
		places = append(places, domain.Place{
			ID:       featureID(f.ID),
			Name:     f.Properties.MustString(PropName, ""),
			Category: f.Properties.MustString(PropCategory, ""),
			X:        strconv.FormatFloat(pt.Lon(), 'f', -1, 64),
			Y:        strconv.FormatFloat(pt.Lat(), 'f', -1, 64),
			ImageURL: f.Properties.MustString(PropImageURL, ""),
		})
	}
	return places, nil
}

func featureID(id interface{}) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
