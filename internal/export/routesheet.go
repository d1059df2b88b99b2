// Package export turns a saved route into the printable route-sheet
// data: ordered stops resolved from the live point mirror, the drawn
// path with its walking distance, and a static-map path parameter.
// Composing the actual PDF/bitmap happens downstream; the core's job
// ends at a complete sheet.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/DoorstepHQ/canvass-backend/internal/boundary"
	"github.com/DoorstepHQ/canvass-backend/internal/canvass"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Stop is one selected point on the sheet, in selection order.
type Stop struct {
	Seq          int     `json:"seq"`
	ID           string  `json:"id"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Status       string  `json:"status,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	InElectorate bool    `json:"in_electorate"`
}

// RouteSheet is the complete artifact handed to the rendering collaborator.
type RouteSheet struct {
	Name       string            `json:"name"`
	RouteType  canvass.RouteType `json:"route_type"`
	CreatedAt  time.Time         `json:"created_at"`
	Stops      []Stop            `json:"stops"`
	Path       []canvass.LatLng  `json:"path"`
	PathMeters float64           `json:"path_meters"`
	// EncodedPath is the drawn path in Google encoded-polyline form, for
	// static-map URLs.
	EncodedPath string `json:"encoded_path,omitempty"`
}

// Build assembles the sheet for one route. Point ids that no longer
// resolve (deleted since the route was planned) are skipped; the
// boundary, when provided, flags stops outside the electorate.
func Build(route canvass.Route, cache *canvass.PointCache, b *boundary.Boundary) (RouteSheet, error) {
	path, err := route.Path()
	if err != nil {
		return RouteSheet{}, fmt.Errorf("decode route path: %w", err)
	}

	sheet := RouteSheet{
		Name:      route.Name,
		RouteType: route.RouteType,
		CreatedAt: route.CreatedAt,
		Path:      path,
	}

	for _, raw := range route.PointIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		p, ok := cache.Get(id)
		if !ok {
			continue
		}
		stop := Stop{
			Seq: len(sheet.Stops) + 1,
			ID:  raw,
			Lat: p.Lat,
			Lng: p.Lng,
		}
		if p.Status != nil {
			stop.Status = *p.Status
		}
		if p.Notes != nil {
			stop.Notes = *p.Notes
		}
		if b != nil {
			stop.InElectorate = b.Contains(p.Lat, p.Lng)
		}
		sheet.Stops = append(sheet.Stops, stop)
	}

	for i := 1; i < len(path); i++ {
		a := orb.Point{path[i-1].Lng, path[i-1].Lat}
		z := orb.Point{path[i].Lng, path[i].Lat}
		sheet.PathMeters += geo.Distance(a, z)
	}

	if len(path) > 0 {
		sheet.EncodedPath = encodePolyline(path)
	}
	return sheet, nil
}

// StaticMapURL builds the Google Static Maps request for the sheet's
// drawn path. Empty when there is no path to draw or no key configured.
func (s RouteSheet) StaticMapURL(apiKey string) string {
	if s.EncodedPath == "" || apiKey == "" {
		return ""
	}
	q := url.Values{}
	q.Set("size", "600x300")
	q.Set("maptype", "satellite")
	q.Set("path", "enc:"+s.EncodedPath)
	q.Set("key", apiKey)
	return "https://maps.googleapis.com/maps/api/staticmap?" + q.Encode()
}

// WriteCSV writes the downloadable stop list.
func (s RouteSheet) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"seq", "lat", "lng", "status", "notes", "in_electorate"}); err != nil {
		return err
	}
	for _, stop := range s.Stops {
		row := []string{
			strconv.Itoa(stop.Seq),
			strconv.FormatFloat(stop.Lat, 'f', -1, 64),
			strconv.FormatFloat(stop.Lng, 'f', -1, 64),
			stop.Status,
			stop.Notes,
			strconv.FormatBool(stop.InElectorate),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// encodePolyline implements the Google encoded-polyline algorithm with
// 1e-5 precision.
func encodePolyline(path []canvass.LatLng) string {
	var out []byte
	var prevLat, prevLng int64
	for _, c := range path {
		lat := int64(math.Round(c.Lat * 1e5))
		lng := int64(math.Round(c.Lng * 1e5))
		out = encodeSigned(out, lat-prevLat)
		out = encodeSigned(out, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return string(out)
}

func encodeSigned(out []byte, v int64) []byte {
	u := uint64(v) << 1
	if v < 0 {
		u = ^u
	}
	for u >= 0x20 {
		out = append(out, byte(0x20|(u&0x1f))+63)
		u >>= 5
	}
	return append(out, byte(u)+63)
}
