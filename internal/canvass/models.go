package canvass

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// LayerKind identifies which of the fixed map layers a point belongs to.
// "boundary" is the electorate overlay only — it never carries points.
type LayerKind string

const (
	LayerBoundary  LayerKind = "boundary"
	LayerDoorKnock LayerKind = "door_knock"
	LayerLetterbox LayerKind = "letterbox"
	LayerEvents    LayerKind = "events"
	LayerSentiment LayerKind = "sentiment"
	LayerSignage   LayerKind = "signage"
)

// Point statuses, per layer. Door knocking and letterboxing have a "to do"
// default applied when the volunteer submits without picking one.
const (
	StatusToKnock  = "to_knock"
	StatusKnocked  = "knocked"
	StatusFollowUp = "follow_up"
	StatusToDrop   = "to_drop"
	StatusDropped  = "dropped"
	StatusPlanned  = "planned"
	StatusPlaced   = "placed"
	StatusRemoved  = "removed"
)

// SentimentLevels is the fixed support scale recorded on sentiment points.
var SentimentLevels = []string{
	"Strong support", "Lean support", "Neutral", "Lean against", "Strong against",
}

// SignTypes is the fixed category domain for signage points.
var SignTypes = []string{"flute", "corflute", "poster"}

// LayerSchema describes the attribute domain of one point layer: which
// statuses it accepts, which status submit falls back to, and how the
// free-slot attribute is interpreted (category vs sentiment).
type LayerSchema struct {
	Statuses      []string
	DefaultStatus string
	UsesCategory  bool
	UsesSentiment bool
	// CategoryValues is nil for free-text categories (events).
	CategoryValues []string
}

var layerSchemas = map[LayerKind]LayerSchema{
	LayerDoorKnock: {
		Statuses:      []string{StatusToKnock, StatusKnocked, StatusFollowUp},
		DefaultStatus: StatusToKnock,
	},
	LayerLetterbox: {
		Statuses:      []string{StatusToDrop, StatusDropped},
		DefaultStatus: StatusToDrop,
	},
	LayerEvents: {
		UsesCategory: true,
	},
	LayerSentiment: {
		UsesSentiment: true,
	},
	LayerSignage: {
		Statuses:       []string{StatusPlanned, StatusPlaced, StatusRemoved},
		UsesCategory:   true,
		CategoryValues: SignTypes,
	},
}

// PointLayers returns the five layers that carry points, in display order.
func PointLayers() []LayerKind {
	return []LayerKind{LayerDoorKnock, LayerLetterbox, LayerEvents, LayerSentiment, LayerSignage}
}

// AllLayers returns every layer including the boundary overlay.
func AllLayers() []LayerKind {
	return append([]LayerKind{LayerBoundary}, PointLayers()...)
}

// SchemaFor returns the attribute schema for a point layer. The boundary
// overlay and unknown kinds have no schema.
func SchemaFor(kind LayerKind) (LayerSchema, bool) {
	s, ok := layerSchemas[kind]
	return s, ok
}

// LatLng is one map coordinate in floating-point degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Finite reports whether both components are real numbers. Points failing
// this are never persisted.
func (c LatLng) Finite() bool {
	return !math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0) &&
		!math.IsNaN(c.Lng) && !math.IsInf(c.Lng, 0)
}

// MapPoint is one geo-located canvassing record. LayerKind is immutable
// after creation; status/category/sentiment domains depend on it.
type MapPoint struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	LayerKind LayerKind `json:"layer_kind" gorm:"type:text;index"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Status    *string   `json:"status,omitempty"`
	Category  *string   `json:"category,omitempty"`
	Sentiment *string   `json:"sentiment,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MapPoint) TableName() string {
	return "canvass.map_points"
}

// Coord returns the point's coordinate pair.
func (p MapPoint) Coord() LatLng {
	return LatLng{Lat: p.Lat, Lng: p.Lng}
}

// Validate checks the invariants that hold for every persisted point:
// a point layer kind and finite coordinates.
func (p MapPoint) Validate() error {
	if _, ok := layerSchemas[p.LayerKind]; !ok {
		return ErrUnknownLayer
	}
	if !p.Coord().Finite() {
		return ErrBadCoordinate
	}
	return nil
}

// RouteType restricts routes to the two layer kinds they are planned for.
type RouteType string

const (
	RouteDoorKnock RouteType = "door_knock"
	RouteLetterbox RouteType = "letterbox"
)

// Route is one committed planning session: a name, the point ids in the
// order they were selected, and an optional freehand path. Routes are
// immutable once created.
type Route struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string         `json:"name"`
	RouteType RouteType      `json:"route_type" gorm:"type:text"`
	PointIDs  pq.StringArray `json:"point_ids" gorm:"type:text[]"`
	Polyline  string         `json:"polyline"`
	CreatedAt time.Time      `json:"created_at"`
}

func (Route) TableName() string {
	return "canvass.routes"
}

// Path decodes the stored polyline back into its coordinate sequence.
func (r Route) Path() ([]LatLng, error) {
	return DecodePath(r.Polyline)
}
