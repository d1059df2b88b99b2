package importer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/DoorstepHQ/canvass-backend/internal/canvass"
)

// ErrNothingToImport means every candidate record was dropped during
// normalization — a distinct outcome from a store failure.
var ErrNothingToImport = errors.New("no valid points to import")

// Record is one loosely-typed candidate row: source field names (any
// casing) mapped to raw string values.
type Record map[string]string

// get returns the first present, non-empty field among names,
// case-insensitively.
func (r Record) get(names ...string) string {
	for _, want := range names {
		for k, v := range r {
			if strings.EqualFold(strings.TrimSpace(k), want) && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// Normalize maps candidate records into the point schema. Records whose
// coordinates do not parse to finite numbers, or that name an unknown
// layer_kind, are dropped, not errors: the rest of the batch still
// imports. Returned points carry created_at = now and are in input
// order.
func Normalize(records []Record, target canvass.LayerKind, defaultStatus string, now time.Time) (points []canvass.MapPoint, skipped int) {
	for _, rec := range records {
		lat, latErr := strconv.ParseFloat(rec.get("lat", "latitude"), 64)
		lng, lngErr := strconv.ParseFloat(rec.get("lng", "long", "lon", "longitude"), 64)
		if latErr != nil || lngErr != nil ||
			math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
			skipped++
			continue
		}

		kind := target
		if k := rec.get("layer_kind"); k != "" {
			kind = canvass.LayerKind(k)
			if _, ok := canvass.SchemaFor(kind); !ok {
				skipped++
				continue
			}
		}

		p := canvass.MapPoint{
			LayerKind: kind,
			Lat:       lat,
			Lng:       lng,
			CreatedAt: now,
			UpdatedAt: now,
		}

		status := rec.get("status")
		if status == "" {
			status = defaultStatus
		}
		if status != "" {
			p.Status = &status
		}
		if category := rec.get("category", "event_type", "sign_type"); category != "" {
			p.Category = &category
		}
		if notes := rec.get("notes"); notes != "" {
			p.Notes = &notes
		}

		points = append(points, p)
	}
	return points, skipped
}

// Result reports an import outcome: how many points landed and how many
// candidate records were dropped during normalization.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Run normalizes the candidates and submits the survivors as one
// all-or-nothing batch insert. A store failure reports the attempted
// count and imports nothing; skipped records are never counted as
// failures.
func Run(ctx context.Context, s canvass.Store, records []Record, target canvass.LayerKind, defaultStatus string) (Result, error) {
	points, skipped := Normalize(records, target, defaultStatus, time.Now())
	if len(points) == 0 {
		return Result{Skipped: skipped}, ErrNothingToImport
	}

	if _, err := s.InsertPoints(ctx, points); err != nil {
		return Result{Skipped: skipped}, fmt.Errorf("import %d points: %w", len(points), err)
	}
	return Result{Imported: len(points), Skipped: skipped}, nil
}
