package main

import (
	"testing"
)

func TestParsePlaces(t *testing.T) {
	arr := []byte(`[{"name":"Cafe","category":"cafe","x":"127.05","y":"37.5"}]`)
	places, err := parsePlaces("seed.json", arr)
	if err != nil {
		t.Fatalf("parse array: %v", err)
	}
	if len(places) != 1 || places[0].X != "127.05" || places[0].Y != "37.5" {
		t.Errorf("unexpected places %+v", places)
	}

	fc := []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"a","geometry":{"type":"Point","coordinates":[127.05,37.5]},"properties":{"name":"Cafe"}}
	]}`)
	places, err = parsePlaces("seed.geojson", fc)
	if err != nil {
		t.Fatalf("parse geojson: %v", err)
	}
	if len(places) != 1 || places[0].ID != "a" || places[0].Name != "Cafe" {
		t.Errorf("unexpected places %+v", places)
	}
}
