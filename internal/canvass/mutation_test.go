package canvass_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DoorstepHQ/canvass-backend/internal/canvass"
	"github.com/google/uuid"
)

func strptr(s string) *string { return &s }

// TestMutator_UpdateFieldsPartial verifies that only provided fields
// reach the store (merge, not replace).
func TestMutator_UpdateFieldsPartial(t *testing.T) {
	store := &fakeStore{}
	m := canvass.NewMutator(store)
	point := canvass.MapPoint{ID: uuid.New(), LayerKind: canvass.LayerDoorKnock}

	if err := m.UpdateFields(context.Background(), point, canvass.FieldUpdate{Notes: strptr("left a flyer")}); err != nil {
		t.Fatal(err)
	}

	if len(store.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(store.updates))
	}
	u := store.updates[0].Update
	if u.Notes == nil || *u.Notes != "left a flyer" {
		t.Errorf("notes = %v, want set", u.Notes)
	}
	if u.Status != nil || u.Category != nil || u.Sentiment != nil {
		t.Errorf("omitted fields must stay untouched, got %+v", u)
	}
}

// TestMutator_CategoryRoutesToSentiment verifies the free-slot routing
// rule: for a sentiment-layer point the value is written to sentiment,
// never category.
func TestMutator_CategoryRoutesToSentiment(t *testing.T) {
	store := &fakeStore{}
	m := canvass.NewMutator(store)
	point := canvass.MapPoint{ID: uuid.New(), LayerKind: canvass.LayerSentiment}

	if err := m.UpdateFields(context.Background(), point, canvass.FieldUpdate{Category: strptr("Strong support")}); err != nil {
		t.Fatal(err)
	}

	u := store.updates[0].Update
	if u.Sentiment == nil || *u.Sentiment != "Strong support" {
		t.Errorf("sentiment = %v, want Strong support", u.Sentiment)
	}
	if u.Category != nil {
		t.Errorf("category = %q, want unset for sentiment layer", *u.Category)
	}
}

// TestMutator_QuickTransition verifies the one-tap status advance is a
// single-field update.
func TestMutator_QuickTransition(t *testing.T) {
	store := &fakeStore{}
	m := canvass.NewMutator(store)
	point := canvass.MapPoint{ID: uuid.New(), LayerKind: canvass.LayerDoorKnock, Status: strptr(canvass.StatusToKnock)}

	if err := m.QuickTransition(context.Background(), point, canvass.StatusKnocked); err != nil {
		t.Fatal(err)
	}

	u := store.updates[0].Update
	if u.Status == nil || *u.Status != canvass.StatusKnocked {
		t.Errorf("status = %v, want knocked", u.Status)
	}
	if u.Notes != nil || u.Category != nil || u.Sentiment != nil {
		t.Errorf("quick transition must touch status only, got %+v", u)
	}
}

// TestMutator_DeleteRequiresConfirmation verifies nothing is deleted
// when the confirm gate declines.
func TestMutator_DeleteRequiresConfirmation(t *testing.T) {
	store := &fakeStore{}
	m := canvass.NewMutator(store)
	point := canvass.MapPoint{ID: uuid.New(), LayerKind: canvass.LayerDoorKnock}

	err := m.Delete(context.Background(), point, func() bool { return false })
	if !errors.Is(err, canvass.ErrNotConfirmed) {
		t.Fatalf("Delete: got %v, want ErrNotConfirmed", err)
	}
	if len(store.deleted) != 0 {
		t.Error("declined confirmation must not delete")
	}

	if err := m.Delete(context.Background(), point, func() bool { return true }); err != nil {
		t.Fatal(err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != point.ID {
		t.Errorf("deleted = %v, want [%s]", store.deleted, point.ID)
	}
}

// TestMutator_FailureSurfacesWithoutLocalChange verifies a store
// rejection is returned to the caller and nothing is recorded.
func TestMutator_FailureSurfacesWithoutLocalChange(t *testing.T) {
	store := &fakeStore{updateErr: errors.New("row locked")}
	m := canvass.NewMutator(store)
	point := canvass.MapPoint{ID: uuid.New(), LayerKind: canvass.LayerLetterbox}

	if err := m.UpdateFields(context.Background(), point, canvass.FieldUpdate{Status: strptr(canvass.StatusDropped)}); err == nil {
		t.Fatal("expected update failure to surface")
	}
	if len(store.updates) != 0 {
		t.Error("failed update must not be recorded")
	}
}
