package models

import (
	"strconv"

	"github.com/paulmach/orb"
)

// ISOCodeField is the OWID column that keys every row by country.
const ISOCodeField = "iso_code"

// Store holds the three loaded datasets. It is created once the loader has
// resolved every source and is read-only afterwards.
type Store struct {
	OWID      Rows
	World     *World
	Centroids Rows

	centroids map[string]orb.Point
}

// NewStore assembles a store and indexes centroid rows by ISO code. Rows
// whose long/lat do not parse are left out of the index; the first row wins
// for duplicated codes.
func NewStore(owid Rows, world *World, centroids Rows) *Store {
	if world == nil {
		world = &World{}
	}
	s := &Store{
		OWID:      owid,
		World:     world,
		Centroids: centroids,
		centroids: make(map[string]orb.Point, len(centroids)),
	}
	for _, row := range centroids {
		code := row.Get(ISOCodeField)
		if code == "" {
			continue
		}
		if _, seen := s.centroids[code]; seen {
			continue
		}
		lon, errLon := strconv.ParseFloat(row.Get("long"), 64)
		lat, errLat := strconv.ParseFloat(row.Get("lat"), 64)
		if errLon != nil || errLat != nil {
			continue
		}
		s.centroids[code] = orb.Point{lon, lat}
	}
	return s
}

// Centroid returns the representative lon/lat point for an ISO code.
func (s *Store) Centroid(code string) (orb.Point, bool) {
	if s == nil {
		return orb.Point{}, false
	}
	p, ok := s.centroids[code]
	return p, ok
}

// Empty reports whether no dataset carries any content.
func (s *Store) Empty() bool {
	return s == nil || (len(s.OWID) == 0 && len(s.World.Features) == 0 && len(s.Centroids) == 0)
}
