package canvass

import "github.com/google/uuid"

// ClickOutcome says which component, if any, claimed a click.
type ClickOutcome int

const (
	// ClickIgnored: nothing was armed and no session was active.
	ClickIgnored ClickOutcome = iota
	// ClickPathVertex: route planning appended a freehand vertex.
	ClickPathVertex
	// ClickAuthoring: a point-authoring draft opened at the click.
	ClickAuthoring
	// ClickToggledSelection: route planning toggled the point's membership.
	ClickToggledSelection
	// ClickOpenEditor: the caller should open the point editor.
	ClickOpenEditor
)

// Dispatcher is the single entry point for raw map clicks, with explicit
// priority: route planning claims the click while a session is active;
// otherwise authoring claims it if a layer is armed; otherwise the click
// is unclaimed. Point and background clicks are routed separately because
// the map surface reports them separately.
type Dispatcher struct {
	Layers    *LayerState
	Planner   *Planner
	Authoring *Authoring
}

// MapClick routes a click on empty map background.
func (d *Dispatcher) MapClick(coord LatLng) (ClickOutcome, error) {
	if d.Planner.Planning() {
		d.Planner.AddPathVertex(coord)
		return ClickPathVertex, nil
	}
	if kind, ok := d.Layers.Armed(); ok {
		if err := d.Authoring.Begin(coord, kind); err != nil {
			return ClickIgnored, err
		}
		return ClickAuthoring, nil
	}
	return ClickIgnored, nil
}

// PointClick routes a click on an existing point marker. While planning
// it toggles selection and never opens the editor.
func (d *Dispatcher) PointClick(id uuid.UUID) ClickOutcome {
	if d.Planner.Planning() {
		d.Planner.TogglePoint(id)
		return ClickToggledSelection
	}
	return ClickOpenEditor
}
