package canvass

import (
	"context"
	"fmt"
	"time"
)

// Draft is the attribute-collection state of one authoring session: the
// captured click plus whatever the volunteer has entered so far.
type Draft struct {
	Coord  LatLng
	Kind   LayerKind
	Status string
	// Category holds the free-slot value; on submit it lands in the
	// sentiment column for sentiment-layer points and in category
	// everywhere else.
	Category string
	Notes    string
}

// Authoring turns a qualifying map click into a persisted point. It is a
// two-state machine: idle, or collecting attributes for one draft. A
// failed write keeps the draft (and everything typed into it) so the
// volunteer can retry; cancel throws the draft away without a write.
type Authoring struct {
	store Store
	draft *Draft
}

func NewAuthoring(store Store) *Authoring {
	return &Authoring{store: store}
}

// Collecting reports whether a draft is open.
func (a *Authoring) Collecting() bool {
	return a.draft != nil
}

// Draft returns a copy of the open draft, if any.
func (a *Authoring) Draft() (Draft, bool) {
	if a.draft == nil {
		return Draft{}, false
	}
	return *a.draft, true
}

// Begin opens attribute collection for a click at coord on the armed
// layer. Any draft already open is replaced — the previous click simply
// loses to the new one, same as reopening the dialog.
func (a *Authoring) Begin(coord LatLng, kind LayerKind) error {
	if _, ok := SchemaFor(kind); !ok {
		return ErrUnknownLayer
	}
	a.draft = &Draft{Coord: coord, Kind: kind}
	return nil
}

// SetStatus records the chosen status. No-op while idle.
func (a *Authoring) SetStatus(status string) {
	if a.draft != nil {
		a.draft.Status = status
	}
}

// SetCategory records the free-slot value (event type, sign type or
// sentiment level depending on the draft's layer). No-op while idle.
func (a *Authoring) SetCategory(category string) {
	if a.draft != nil {
		a.draft.Category = category
	}
}

// SetNotes records free-text notes. No-op while idle.
func (a *Authoring) SetNotes(notes string) {
	if a.draft != nil {
		a.draft.Notes = notes
	}
}

// Submit builds the point and writes it. Validation failures and store
// rejections both leave the draft open with everything intact; only a
// successful write closes the session.
func (a *Authoring) Submit(ctx context.Context) (MapPoint, error) {
	if a.draft == nil {
		return MapPoint{}, ErrNotCollecting
	}
	d := *a.draft

	p := BuildPoint(d, time.Now())
	if err := p.Validate(); err != nil {
		return MapPoint{}, err
	}

	stored, err := a.store.InsertPoints(ctx, []MapPoint{p})
	if err != nil {
		return MapPoint{}, fmt.Errorf("create point: %w", err)
	}

	a.draft = nil
	return stored[0], nil
}

// Cancel discards the draft with no write.
func (a *Authoring) Cancel() {
	a.draft = nil
}

// BuildPoint materializes a draft into a MapPoint: layer-default status
// when none was chosen (to_knock / to_drop), the free slot routed to the
// right column, empty strings dropped rather than stored.
func BuildPoint(d Draft, now time.Time) MapPoint {
	p := MapPoint{
		LayerKind: d.Kind,
		Lat:       d.Coord.Lat,
		Lng:       d.Coord.Lng,
		CreatedAt: now,
		UpdatedAt: now,
	}

	status := d.Status
	if status == "" {
		if schema, ok := SchemaFor(d.Kind); ok {
			status = schema.DefaultStatus
		}
	}
	if status != "" {
		p.Status = &status
	}

	if d.Category != "" {
		v := d.Category
		if d.Kind == LayerSentiment {
			p.Sentiment = &v
		} else {
			p.Category = &v
		}
	}
	if d.Notes != "" {
		v := d.Notes
		p.Notes = &v
	}
	return p
}
