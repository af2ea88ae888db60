package geojson_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabteam/poimap/internal/adapters/geojson"
	"github.com/mabteam/poimap/internal/core/domain"
)

func TestEncodeDecode(t *testing.T) {
	pois := []domain.POI{
		{ID: "a", Name: "Cafe", Category: "cafe", Coordinate: domain.GeoPoint{Lat: 37.5, Lng: 127.05}},
		{ID: "b", Name: "Park", Coordinate: domain.GeoPoint{Lat: 37.6, Lng: 126.9}, ImageURL: "https://img/1.png"},
	}

	data, err := geojson.Encode(pois)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)

	places, err := geojson.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, places, 2)

	got, err := places[0].ToPOI()
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, "cafe", got.Category)
	assert.Equal(t, 37.5, got.Coordinate.Lat)
	assert.Equal(t, 127.05, got.Coordinate.Lng)
	assert.Equal(t, "https://img/1.png", places[1].ImageURL)
}

func TestDecode_NumericIDAndMissingProps(t *testing.T) {
	in := `{"type":"FeatureCollection","features":[
		{"type":"Feature","id":7,"geometry":{"type":"Point","coordinates":[127,37]},"properties":null}
	]}`
	places, err := geojson.Decode(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "7", places[0].ID)
	assert.Equal(t, "", places[0].Name)
	assert.Equal(t, "127", places[0].X)
	assert.Equal(t, "37", places[0].Y)
}

func TestDecode_RejectsNonPoint(t *testing.T) {
	in := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{}}
	]}`
	_, err := geojson.Decode(strings.NewReader(in))
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := geojson.Decode(strings.NewReader(`{"type":`))
	assert.Error(t, err)
}
