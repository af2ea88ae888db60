package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// POI is a named, geo-located point of interest.
type POI struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Coordinate GeoPoint  `json:"coordinate"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Distance   *float64  `json:"distance,omitempty"` // computed field
}

// Place is a raw add-location request. Coordinates arrive as text (x = lng, y = lat).
type Place struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Category string `json:"category"`
	X        string `json:"x"`
	Y        string `json:"y"`
	ImageURL string `json:"image_url,omitempty"`
}

// ToPOI parses and validates the place. An empty ID gets a fresh UUID.
func (p Place) ToPOI() (POI, error) {
	lng, err := strconv.ParseFloat(strings.TrimSpace(p.X), 64)
	if err != nil {
		return POI{}, fmt.Errorf("%w: x %q is not numeric", ErrInvalidCoordinate, p.X)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(p.Y), 64)
	if err != nil {
		return POI{}, fmt.Errorf("%w: y %q is not numeric", ErrInvalidCoordinate, p.Y)
	}

	coord := GeoPoint{Lat: lat, Lng: lng}
	if err := coord.Validate(); err != nil {
		return POI{}, err
	}

	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}

	return POI{
		ID:         id,
		Name:       p.Name,
		Category:   p.Category,
		Coordinate: coord,
		ImageURL:   p.ImageURL,
	}, nil
}

// PlaceFromPOI is the inverse of ToPOI, used by exports and the import saga.
func PlaceFromPOI(poi POI) Place {
	return Place{
		ID:       poi.ID,
		Name:     poi.Name,
		Category: poi.Category,
		X:        strconv.FormatFloat(poi.Coordinate.Lng, 'f', -1, 64),
		Y:        strconv.FormatFloat(poi.Coordinate.Lat, 'f', -1, 64),
		ImageURL: poi.ImageURL,
	}
}

// SortPOIs orders points by ID. The clustering engine relies on this for
// reproducible partitions.
func SortPOIs(pois []POI) {
	sort.SliceStable(pois, func(i, j int) bool { return pois[i].ID < pois[j].ID })
}

// SortByPosition orders points by latitude, then longitude.
func SortByPosition(pois []POI) {
	sort.SliceStable(pois, func(i, j int) bool {
		if pois[i].Coordinate.Lat != pois[j].Coordinate.Lat {
			return pois[i].Coordinate.Lat < pois[j].Coordinate.Lat
		}
		return pois[i].Coordinate.Lng < pois[j].Coordinate.Lng
	})
}
