package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabteam/poimap/internal/core/domain"
)

func TestNewRegion_RejectsInvertedAndDegenerate(t *testing.T) {
	cases := []struct {
		name   string
		sw, ne domain.GeoPoint
	}{
		{"inverted lat", domain.GeoPoint{Lat: 38, Lng: 127}, domain.GeoPoint{Lat: 37, Lng: 128}},
		{"inverted lng", domain.GeoPoint{Lat: 37, Lng: 128}, domain.GeoPoint{Lat: 38, Lng: 127}},
		{"zero height", domain.GeoPoint{Lat: 37, Lng: 127}, domain.GeoPoint{Lat: 37, Lng: 128}},
		{"zero width", domain.GeoPoint{Lat: 37, Lng: 127}, domain.GeoPoint{Lat: 38, Lng: 127}},
		{"out of range", domain.GeoPoint{Lat: -100, Lng: 127}, domain.GeoPoint{Lat: 38, Lng: 128}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.NewRegion(tc.sw, tc.ne)
			assert.True(t, errors.Is(err, domain.ErrInvalidRegion), "got %v", err)
		})
	}
}

func TestRegion_ContainsIsInclusive(t *testing.T) {
	r, err := domain.NewRegion(domain.GeoPoint{Lat: 37, Lng: 127}, domain.GeoPoint{Lat: 38, Lng: 128})
	require.NoError(t, err)

	assert.True(t, r.Contains(domain.GeoPoint{Lat: 37.5, Lng: 127.5}))
	assert.True(t, r.Contains(domain.GeoPoint{Lat: 37, Lng: 127}))
	assert.True(t, r.Contains(domain.GeoPoint{Lat: 38, Lng: 128}))
	assert.False(t, r.Contains(domain.GeoPoint{Lat: 38.1, Lng: 127.5}))
	assert.Equal(t, domain.GeoPoint{Lat: 37.5, Lng: 127.5}, r.Center())
}

func TestRegion_Intersects(t *testing.T) {
	a := domain.Region{SouthWest: domain.GeoPoint{Lat: 0, Lng: 0}, NorthEast: domain.GeoPoint{Lat: 2, Lng: 2}}
	b := domain.Region{SouthWest: domain.GeoPoint{Lat: 1, Lng: 1}, NorthEast: domain.GeoPoint{Lat: 3, Lng: 3}}
	c := domain.Region{SouthWest: domain.GeoPoint{Lat: 5, Lng: 5}, NorthEast: domain.GeoPoint{Lat: 6, Lng: 6}}

	assert.True(t, a.Intersects(b))
	assert.True(t, b.Intersects(a))
	assert.False(t, a.Intersects(c))
}

func TestGeoPoint_Validate(t *testing.T) {
	assert.NoError(t, domain.GeoPoint{Lat: 37.5, Lng: 127.05}.Validate())
	assert.ErrorIs(t, domain.GeoPoint{Lat: math.NaN(), Lng: 0}.Validate(), domain.ErrInvalidCoordinate)
	assert.ErrorIs(t, domain.GeoPoint{Lat: 0, Lng: 181}.Validate(), domain.ErrInvalidCoordinate)
}

func TestPolygon_ContainsDegenerate(t *testing.T) {
	p := domain.GeoPoint{Lat: 1, Lng: 1}
	q := domain.GeoPoint{Lat: 3, Lng: 3}

	assert.True(t, domain.Polygon{p}.Contains(p))
	assert.False(t, domain.Polygon{p}.Contains(q))
	assert.True(t, domain.Polygon{p, q}.Contains(domain.GeoPoint{Lat: 2, Lng: 2}))
	assert.False(t, domain.Polygon{p, q}.Contains(domain.GeoPoint{Lat: 2, Lng: 2.5}))
	assert.False(t, domain.Polygon{}.Contains(p))
}

func TestPolygon_ContainsNearEdge(t *testing.T) {
	a := domain.GeoPoint{Lat: 37.5, Lng: 127.0}
	b := domain.GeoPoint{Lat: 37.6, Lng: 127.3}
	mid := domain.GeoPoint{Lat: 37.549145556039990, Lng: 127.14743666811995}

	// off the segment by rounding only
	assert.True(t, domain.Polygon{a, b}.Contains(mid))

	// sliver triangle sharing that edge
	tri := domain.Polygon{a, {Lat: 37.6, Lng: 127.3000000001}, b}
	assert.True(t, tri.Contains(mid))

	assert.False(t, domain.Polygon{a, b}.Contains(domain.GeoPoint{Lat: 37.55, Lng: 127.2}))
}

func TestPolygon_ContainsSquare(t *testing.T) {
	r := domain.Region{SouthWest: domain.GeoPoint{Lat: 0, Lng: 0}, NorthEast: domain.GeoPoint{Lat: 2, Lng: 2}}
	square := r.Corners()

	assert.True(t, square.Contains(domain.GeoPoint{Lat: 1, Lng: 1}))
	assert.True(t, square.Contains(domain.GeoPoint{Lat: 0, Lng: 0}))
	assert.False(t, square.Contains(domain.GeoPoint{Lat: 3, Lng: 1}))
}
