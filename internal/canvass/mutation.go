package canvass

import (
	"context"
	"fmt"
)

// FieldUpdate is the editor-facing partial update for one point. Nil
// fields are left untouched. Category carries the free-slot value; which
// column it lands in depends on the point's layer kind.
type FieldUpdate struct {
	Notes    *string
	Status   *string
	Category *string
}

// Mutator edits, quick-transitions and deletes existing points. It never
// touches the point cache itself: after a successful write the visible
// state converges through the change feed, which avoids double-removal
// races between a local splice and the feed's delete.
type Mutator struct {
	store Store
}

func NewMutator(store Store) *Mutator {
	return &Mutator{store: store}
}

// UpdateFields applies a partial update to the point. Only provided
// fields change; the store stamps updated_at on success. For sentiment
// points the category value is written to the sentiment column.
func (m *Mutator) UpdateFields(ctx context.Context, point MapPoint, u FieldUpdate) error {
	pu := PointUpdate{Status: u.Status, Notes: u.Notes}
	if u.Category != nil {
		if point.LayerKind == LayerSentiment {
			pu.Sentiment = u.Category
		} else {
			pu.Category = u.Category
		}
	}

	if err := m.store.UpdatePoint(ctx, point.ID, pu); err != nil {
		return fmt.Errorf("update point %s: %w", point.ID, err)
	}
	return nil
}

// QuickTransition is the single-tap status advance (knocked, dropped).
// It is a one-field update and deliberately does not close or reopen any
// editing session.
func (m *Mutator) QuickTransition(ctx context.Context, point MapPoint, newStatus string) error {
	return m.UpdateFields(ctx, point, FieldUpdate{Status: &newStatus})
}

// Delete removes the point after the confirm gate approves. The cache is
// left alone: the feed's delete event is what removes the marker.
func (m *Mutator) Delete(ctx context.Context, point MapPoint, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return ErrNotConfirmed
	}
	if err := m.store.DeletePoint(ctx, point.ID); err != nil {
		return fmt.Errorf("delete point %s: %w", point.ID, err)
	}
	return nil
}
