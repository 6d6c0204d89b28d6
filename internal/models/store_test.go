package models

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const worldJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "FRA", "properties": {"name": "France"},
     "geometry": {"type": "Polygon", "coordinates": [[[-4,43],[8,43],[8,51],[-4,51],[-4,43]]]}},
    {"type": "Feature", "id": "ATA", "properties": {"name": "Antarctica"},
     "geometry": {"type": "Polygon", "coordinates": [[[-180,-60],[180,-60],[180,-85],[-180,-85],[-180,-60]]]}},
    {"type": "Feature", "properties": {"name": "Nowhere", "iso_a3": "NWH"},
     "geometry": {"type": "Point", "coordinates": [0, 0]}}
  ]
}`

func TestParseWorldAndFilter(t *testing.T) {
	world, err := ParseWorld([]byte(worldJSON))
	if err != nil {
		t.Fatalf("ParseWorld failed: %v", err)
	}
	if len(world.Features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(world.Features))
	}

	ids := []string{FeatureID(world.Features[0]), FeatureID(world.Features[1]), FeatureID(world.Features[2])}
	if ids[0] != "FRA" || ids[1] != "ATA" || ids[2] != "NWH" {
		t.Errorf("unexpected feature ids %v", ids)
	}

	noAntarctica := world.Filter(func(f *geojson.Feature) bool { return FeatureID(f) != "ATA" })
	if len(noAntarctica.Features) != 2 {
		t.Errorf("expected 2 features after filter, got %d", len(noAntarctica.Features))
	}
	if len(world.Features) != 3 {
		t.Error("Filter must not mutate the source world")
	}
}

func TestParseWorldInvalid(t *testing.T) {
	if _, err := ParseWorld([]byte("not json")); err == nil {
		t.Error("expected error for invalid GeoJSON")
	}
}

func TestStoreCentroids(t *testing.T) {
	centroids, err := ParseCSV([]byte("iso_code,long,lat\nFRA,2.2,46.2\nFRA,0,0\nGBR,bad,54\n,1,1\n"))
	if err != nil {
		t.Fatal(err)
	}
	s := NewStore(nil, nil, centroids)

	p, ok := s.Centroid("FRA")
	if !ok || p != (orb.Point{2.2, 46.2}) {
		t.Errorf("expected first FRA centroid, got %v, %v", p, ok)
	}
	if _, ok := s.Centroid("GBR"); ok {
		t.Error("unparsable centroid should be skipped")
	}
	if _, ok := s.Centroid("XYZ"); ok {
		t.Error("unknown code should have no centroid")
	}
	if s.World == nil {
		t.Error("store should default to an empty world")
	}

	var nilStore *Store
	if _, ok := nilStore.Centroid("FRA"); ok {
		t.Error("nil store has no centroids")
	}
	if !nilStore.Empty() || !NewStore(nil, nil, nil).Empty() {
		t.Error("expected empty stores")
	}
	if s.Empty() {
		t.Error("store with centroid rows is not empty")
	}
}
