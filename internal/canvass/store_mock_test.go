package canvass_test

import (
	"context"

	"github.com/DoorstepHQ/canvass-backend/internal/canvass"
	"github.com/google/uuid"
)

// fakeStore implements canvass.Store without any database dependency,
// recording every write and failing on demand.
type fakeStore struct {
	insertErr error
	updateErr error
	deleteErr error
	routeErr  error

	inserted []canvass.MapPoint
	updates  []recordedUpdate
	deleted  []uuid.UUID
	routes   []canvass.Route
}

type recordedUpdate struct {
	ID     uuid.UUID
	Update canvass.PointUpdate
}

func (f *fakeStore) ListPoints(ctx context.Context) ([]canvass.MapPoint, error) {
	return append([]canvass.MapPoint(nil), f.inserted...), nil
}

func (f *fakeStore) InsertPoints(ctx context.Context, points []canvass.MapPoint) ([]canvass.MapPoint, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	stored := make([]canvass.MapPoint, len(points))
	for i, p := range points {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		stored[i] = p
	}
	f.inserted = append(f.inserted, stored...)
	return stored, nil
}

func (f *fakeStore) UpdatePoint(ctx context.Context, id uuid.UUID, u canvass.PointUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, recordedUpdate{ID: id, Update: u})
	return nil
}

func (f *fakeStore) DeletePoint(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) InsertRoute(ctx context.Context, route canvass.Route) (canvass.Route, error) {
	if f.routeErr != nil {
		return canvass.Route{}, f.routeErr
	}
	route.ID = uuid.New()
	f.routes = append(f.routes, route)
	return route, nil
}

func (f *fakeStore) ListRoutes(ctx context.Context) ([]canvass.Route, error) {
	return append([]canvass.Route(nil), f.routes...), nil
}

func (f *fakeStore) SubscribePoints(ctx context.Context) (<-chan canvass.PointEvent, func()) {
	ch := make(chan canvass.PointEvent)
	return ch, func() {}
}
