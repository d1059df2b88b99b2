package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/DoorstepHQ/canvass-backend/internal/canvass"
	"github.com/google/uuid"
)

// ErrPointNotFound is returned when an update targets a record that no
// longer exists (e.g. it lost a race with a delete).
var ErrPointNotFound = errors.New("point not found")

// subscriberBuffer is the per-subscriber event queue depth. A subscriber
// that falls further behind than this loses events rather than blocking
// writers.
const subscriberBuffer = 64

// Memory is an in-process implementation of the canvass store contract.
// It backs tests and single-machine local mode, and doubles as the
// reference semantics for the postgres implementation: atomic batch
// inserts, merge-style updates, and a per-record-ordered change feed.
type Memory struct {
	mu     sync.Mutex
	points map[uuid.UUID]canvass.MapPoint
	routes map[uuid.UUID]canvass.Route
	subs   map[string]chan canvass.PointEvent
}

func NewMemory() *Memory {
	return &Memory{
		points: make(map[uuid.UUID]canvass.MapPoint),
		routes: make(map[uuid.UUID]canvass.Route),
		subs:   make(map[string]chan canvass.PointEvent),
	}
}

func (m *Memory) ListPoints(ctx context.Context) ([]canvass.MapPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]canvass.MapPoint, 0, len(m.points))
	for _, p := range m.points {
		out = append(out, p)
	}
	return out, nil
}

// InsertPoints stores the batch atomically: if any record fails
// validation, nothing is stored.
func (m *Memory) InsertPoints(ctx context.Context, points []canvass.MapPoint) ([]canvass.MapPoint, error) {
	for _, p := range points {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	now := time.Now()
	stored := make([]canvass.MapPoint, len(points))
	for i, p := range points {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
		m.points[p.ID] = p
		stored[i] = p
	}
	events := make([]canvass.PointEvent, len(stored))
	for i, p := range stored {
		events[i] = canvass.PointEvent{Type: canvass.EventInsert, Point: p}
	}
	m.publishLocked(events)
	m.mu.Unlock()

	return stored, nil
}

// UpdatePoint merges the provided fields into the stored record and
// stamps updated_at. Updating a deleted record is an error, not an
// implicit re-insert.
func (m *Memory) UpdatePoint(ctx context.Context, id uuid.UUID, u canvass.PointUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.points[id]
	if !ok {
		return ErrPointNotFound
	}
	if u.Status != nil {
		p.Status = u.Status
	}
	if u.Category != nil {
		p.Category = u.Category
	}
	if u.Sentiment != nil {
		p.Sentiment = u.Sentiment
	}
	if u.Notes != nil {
		p.Notes = u.Notes
	}
	p.UpdatedAt = time.Now()
	m.points[id] = p

	m.publishLocked([]canvass.PointEvent{{Type: canvass.EventUpdate, Point: p}})
	return nil
}

// DeletePoint removes the record. Deleting an id that is already gone is
// a no-op: deletes are idempotent.
func (m *Memory) DeletePoint(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.points[id]
	if !ok {
		return nil
	}
	delete(m.points, id)
	m.publishLocked([]canvass.PointEvent{{Type: canvass.EventDelete, Point: p}})
	return nil
}

func (m *Memory) InsertRoute(ctx context.Context, route canvass.Route) (canvass.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if route.ID == uuid.Nil {
		route.ID = uuid.New()
	}
	if route.CreatedAt.IsZero() {
		route.CreatedAt = time.Now()
	}
	m.routes[route.ID] = route
	return route, nil
}

func (m *Memory) ListRoutes(ctx context.Context) ([]canvass.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]canvass.Route, 0, len(m.routes))
	for _, r := range m.routes {
		out = append(out, r)
	}
	return out, nil
}

// SubscribePoints registers a change-feed subscriber. Events publish
// under the store lock, so each subscriber sees changes in store order.
// The subscription ends when cancel is called or ctx is done.
func (m *Memory) SubscribePoints(ctx context.Context) (<-chan canvass.PointEvent, func()) {
	subID := uuid.New().String()
	ch := make(chan canvass.PointEvent, subscriberBuffer)

	m.mu.Lock()
	m.subs[subID] = ch
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if sub, ok := m.subs[subID]; ok {
			delete(m.subs, subID)
			close(sub)
		}
		m.mu.Unlock()
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel
}

// publishLocked fans events out to every subscriber. Callers hold m.mu.
func (m *Memory) publishLocked(events []canvass.PointEvent) {
	for subID, ch := range m.subs {
		for _, ev := range events {
			select {
			case ch <- ev:
			default:
				log.Printf("[store] subscriber %s full, dropping %s event", subID, ev.Type)
			}
		}
	}
}
