package canvass

import (
	"context"

	"github.com/google/uuid"
)

// EventType tags one change-feed notification.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// PointEvent is one change-feed delivery for the map_points table. For
// deletes only the record id is meaningful.
type PointEvent struct {
	Type  EventType `json:"type"`
	Point MapPoint  `json:"point"`
}

// PointUpdate is a partial update: nil fields are left untouched on the
// stored record (merge semantics, never replace).
type PointUpdate struct {
	Status    *string `json:"status,omitempty"`
	Category  *string `json:"category,omitempty"`
	Sentiment *string `json:"sentiment,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u PointUpdate) Empty() bool {
	return u.Status == nil && u.Category == nil && u.Sentiment == nil && u.Notes == nil
}

// Store is the backing-store contract the canvassing core consumes. Writes
// are all-or-nothing; the change feed is the single source of truth for
// convergence of the local point cache.
type Store interface {
	ListPoints(ctx context.Context) ([]MapPoint, error)
	// InsertPoints persists the batch atomically and returns the stored
	// records with their assigned ids, in input order.
	InsertPoints(ctx context.Context, points []MapPoint) ([]MapPoint, error)
	UpdatePoint(ctx context.Context, id uuid.UUID, u PointUpdate) error
	DeletePoint(ctx context.Context, id uuid.UUID) error

	InsertRoute(ctx context.Context, route Route) (Route, error)
	ListRoutes(ctx context.Context) ([]Route, error)

	// SubscribePoints yields a live feed of map_points changes, delivered
	// in store order per record id, until cancel is called.
	SubscribePoints(ctx context.Context) (<-chan PointEvent, func())
}
