package canvass

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Planner is the route-planning state machine: a modal session that
// accumulates references to existing points and freehand path vertices,
// then commits them as one route record.
//
// While a session is active the planner owns map clicks outright — point
// clicks toggle selection instead of opening the editor, background
// clicks extend the drawn path instead of authoring new points.
type Planner struct {
	store Store

	planning  bool
	name      string
	routeType RouteType
	selected  []uuid.UUID // first-selection order, the order the route keeps
	selSet    map[uuid.UUID]bool
	path      []LatLng
}

func NewPlanner(store Store) *Planner {
	return &Planner{store: store, routeType: RouteDoorKnock}
}

// Planning reports whether a session is active.
func (p *Planner) Planning() bool {
	return p.planning
}

// Start opens a fresh session: empty name, empty selection, empty path.
// Whatever a previous session left behind is cleared.
func (p *Planner) Start() {
	p.reset()
	p.planning = true
}

// SetName sets the route name for the pending save.
func (p *Planner) SetName(name string) {
	p.name = name
}

// SetType sets the route type. Defaults to door_knock.
func (p *Planner) SetType(t RouteType) {
	p.routeType = t
}

// Name returns the session's route name.
func (p *Planner) Name() string {
	return p.name
}

// TogglePoint flips a point's membership in the selection. A point keeps
// the position of its first selection; deselecting and re-selecting moves
// it to the end. No-op outside a session.
func (p *Planner) TogglePoint(id uuid.UUID) {
	if !p.planning {
		return
	}
	if p.selSet[id] {
		delete(p.selSet, id)
		for i, sel := range p.selected {
			if sel == id {
				p.selected = append(p.selected[:i], p.selected[i+1:]...)
				break
			}
		}
		return
	}
	p.selSet[id] = true
	p.selected = append(p.selected, id)
}

// Selected reports whether a point is in the session's selection.
func (p *Planner) Selected(id uuid.UUID) bool {
	return p.selSet[id]
}

// SelectedPointIDs returns the selection in first-selection order.
func (p *Planner) SelectedPointIDs() []uuid.UUID {
	out := make([]uuid.UUID, len(p.selected))
	copy(out, p.selected)
	return out
}

// AddPathVertex appends one freehand vertex to the drawn path. No-op
// outside a session.
func (p *Planner) AddPathVertex(v LatLng) {
	if !p.planning {
		return
	}
	p.path = append(p.path, v)
}

// UndoLastPathVertex drops the most recent vertex; no-op on an empty path.
func (p *Planner) UndoLastPathVertex() {
	if len(p.path) > 0 {
		p.path = p.path[:len(p.path)-1]
	}
}

// ClearPath empties the drawn path. The point selection is untouched.
func (p *Planner) ClearPath() {
	p.path = nil
}

// Path returns a copy of the drawn path.
func (p *Planner) Path() []LatLng {
	out := make([]LatLng, len(p.path))
	copy(out, p.path)
	return out
}

// Save commits the session as one route record. An empty name fails
// locally before any store call. On success the persisted route (with its
// assigned id) is returned and the session ends; on a store failure the
// session and everything in it survive for a retry.
func (p *Planner) Save(ctx context.Context) (Route, error) {
	if !p.planning {
		return Route{}, ErrNotPlanning
	}
	name := strings.TrimSpace(p.name)
	if name == "" {
		return Route{}, ErrEmptyRouteName
	}

	polyline, err := EncodePath(p.path)
	if err != nil {
		return Route{}, fmt.Errorf("encode path: %w", err)
	}

	ids := make(pq.StringArray, len(p.selected))
	for i, id := range p.selected {
		ids[i] = id.String()
	}

	route := Route{
		Name:      name,
		RouteType: p.routeType,
		PointIDs:  ids,
		Polyline:  polyline,
		CreatedAt: time.Now(),
	}

	saved, err := p.store.InsertRoute(ctx, route)
	if err != nil {
		return Route{}, fmt.Errorf("save route: %w", err)
	}

	p.reset()
	return saved, nil
}

// Cancel discards the session — selection and path — with no write.
func (p *Planner) Cancel() {
	p.reset()
}

func (p *Planner) reset() {
	p.planning = false
	p.name = ""
	p.routeType = RouteDoorKnock
	p.selected = nil
	p.selSet = make(map[uuid.UUID]bool)
	p.path = nil
}
