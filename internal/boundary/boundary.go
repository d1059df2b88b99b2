// Package boundary loads the fixed electorate boundary and answers
// point-in-electorate queries. The geometry is a display-only overlay:
// it carries no points and nothing is authored on it.
package boundary

import (
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Boundary holds the electorate geometry plus the raw GeoJSON it was
// loaded from, which is what map clients are served.
type Boundary struct {
	raw    []byte
	polys  []orb.Polygon
	mpolys []orb.MultiPolygon
	bound  orb.Bound
}

// Load reads a GeoJSON FeatureCollection from disk. Only polygonal
// features contribute to containment checks.
func Load(path string) (*Boundary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boundary: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("parse boundary: %w", err)
	}

	b := &Boundary{raw: raw}
	first := true
	for _, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			b.polys = append(b.polys, g)
		case orb.MultiPolygon:
			b.mpolys = append(b.mpolys, g)
		default:
			continue
		}
		gb := f.Geometry.Bound()
		if first {
			b.bound = gb
			first = false
		} else {
			b.bound = b.bound.Union(gb)
		}
	}
	if first {
		return nil, errors.New("boundary has no polygon features")
	}
	return b, nil
}

// GeoJSON returns the boundary exactly as loaded, for overlay rendering.
func (b *Boundary) GeoJSON() []byte {
	return b.raw
}

// Bound returns the bounding box of the electorate, for map centering.
func (b *Boundary) Bound() orb.Bound {
	return b.bound
}

// Contains reports whether a coordinate falls inside the electorate.
func (b *Boundary) Contains(lat, lng float64) bool {
	pt := orb.Point{lng, lat}
	for _, p := range b.polys {
		if planar.PolygonContains(p, pt) {
			return true
		}
	}
	for _, mp := range b.mpolys {
		if planar.MultiPolygonContains(mp, pt) {
			return true
		}
	}
	return false
}
