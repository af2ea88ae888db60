package presenter_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/core/presenter"
)

func poi(id, category string, lat, lng float64) domain.POI {
	return domain.POI{ID: id, Name: "name-" + id, Category: category, Coordinate: domain.GeoPoint{Lat: lat, Lng: lng}}
}

func aggregate(pois ...domain.POI) domain.Cluster {
	c := domain.NewCluster(pois[0])
	for _, p := range pois[1:] {
		c = c.Combine(domain.NewCluster(p))
	}
	return c
}

func TestPresent_LeafAndAggregate(t *testing.T) {
	leaf := domain.NewCluster(poi("a", "cafe", 37.5, 127))
	agg := aggregate(
		poi("b", "park", 37.50, 127.00),
		poi("c", "cafe", 37.51, 127.00),
		poi("d", "park", 37.50, 127.01),
	)

	vm := presenter.New().Present([]domain.Cluster{leaf, agg})

	require.Len(t, vm.Markers, 2)
	require.Len(t, vm.Bounds, 2)
	assert.Equal(t, 4, vm.Count)

	assert.True(t, vm.Markers[0].Leaf)
	assert.Equal(t, "a", vm.Markers[0].ID)
	assert.Equal(t, "name-a", vm.Markers[0].Caption)
	assert.Equal(t, float64(presenter.DefaultBaseRadius), vm.Markers[0].Radius)
	assert.Nil(t, vm.Markers[0].Screen)

	assert.False(t, vm.Markers[1].Leaf)
	assert.Equal(t, "3", vm.Markers[1].Caption)
	assert.Equal(t, "park", vm.Markers[1].Category)
	assert.Greater(t, vm.Markers[1].Radius, vm.Markers[0].Radius)

	require.Len(t, vm.Polygons, 1)
	assert.Equal(t, vm.Markers[1].ID, vm.Polygons[0].MarkerID)
	assert.Len(t, vm.Polygons[0].Vertices, 3)

	for i, b := range vm.Bounds {
		assert.NoError(t, b.Validate())
		assert.True(t, b.Contains(vm.Markers[i].Position))
	}
}

func TestPresent_NoPolygonForCollinearAggregate(t *testing.T) {
	agg := aggregate(poi("a", "", 37.5, 127), poi("b", "", 37.6, 127))

	vm := presenter.New().Present([]domain.Cluster{agg})
	assert.Empty(t, vm.Polygons)
	assert.Equal(t, "", vm.Markers[0].Category)
}

func TestPresent_RadiusCapped(t *testing.T) {
	pois := make([]domain.POI, 0, 100)
	for i := 0; i < 100; i++ {
		pois = append(pois, poi(fmt.Sprintf("p%03d", i), "x", 37.5, 127))
	}

	vm := presenter.New().Present([]domain.Cluster{aggregate(pois...)})
	assert.Equal(t, float64(presenter.DefaultMaxRadius), vm.Markers[0].Radius)
}

func TestPresent_Empty(t *testing.T) {
	vm := presenter.New().Present(nil)
	assert.NotNil(t, vm.Markers)
	assert.NotNil(t, vm.Polygons)
	assert.Zero(t, vm.Count)
	assert.Empty(t, vm.Snapshots())
}

func TestViewModel_Snapshots(t *testing.T) {
	c := domain.NewCluster(poi("a", "cafe", 1, 2))
	vm := presenter.New().Present([]domain.Cluster{c})

	snaps := vm.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, "a", snaps[0].ID)
	assert.Equal(t, 1, snaps[0].Count)
	assert.Equal(t, c.Center, snaps[0].Center)
}

func TestMercatorProjector(t *testing.T) {
	viewport := domain.Region{
		SouthWest: domain.GeoPoint{Lat: 37.4, Lng: 126.8},
		NorthEast: domain.GeoPoint{Lat: 37.7, Lng: 127.2},
	}
	proj := presenter.NewMercatorProjector(viewport, 12, 256)

	x, y := proj.ToScreen(domain.GeoPoint{Lat: 37.7, Lng: 126.8})
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	x, y = proj.ToScreen(viewport.SouthWest)
	assert.InDelta(t, 0, x, 1e-6)
	assert.Greater(t, y, 0.0)

	back := proj.FromScreen(proj.ToScreen(domain.GeoPoint{Lat: 37.55, Lng: 127.0}))
	assert.InDelta(t, 37.55, back.Lat, 1e-9)
	assert.InDelta(t, 127.0, back.Lng, 1e-9)

	vm := presenter.New().WithProjector(proj).Present([]domain.Cluster{domain.NewCluster(poi("a", "", 37.55, 127.0))})
	require.NotNil(t, vm.Markers[0].Screen)
	assert.Greater(t, vm.Markers[0].Screen.X, 0.0)
}
