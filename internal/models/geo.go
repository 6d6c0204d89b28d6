package models

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// World is the parsed boundary data for the bubble map.
type World struct {
	Features []*geojson.Feature
}

// ParseWorld parses a GeoJSON feature collection.
func ParseWorld(data []byte) (*World, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}
	return &World{Features: fc.Features}, nil
}

// Filter returns a new World with the features keep accepts. The receiver is
// left untouched.
func (w *World) Filter(keep func(*geojson.Feature) bool) *World {
	if w == nil {
		return &World{}
	}
	out := &World{Features: make([]*geojson.Feature, 0, len(w.Features))}
	for _, f := range w.Features {
		if keep == nil || keep(f) {
			out.Features = append(out.Features, f)
		}
	}
	return out
}

// FeatureID returns the feature's identifier: the top-level "id" member, or
// an "id"/"iso_a3" property when the member is absent.
func FeatureID(f *geojson.Feature) string {
	if f == nil {
		return ""
	}
	switch id := f.ID.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return fmt.Sprintf("%g", id)
	}
	for _, key := range []string{"id", "iso_a3"} {
		if v := f.Properties.MustString(key, ""); v != "" {
			return v
		}
	}
	return ""
}
