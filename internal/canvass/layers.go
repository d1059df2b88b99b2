package canvass

// LayerState tracks which layers are drawn and which single layer is armed
// for new-point creation. It is ephemeral per session: nothing here is
// persisted, and a reload starts over with only the boundary visible.
//
// LayerState is written only through its own methods (single writer); the
// dispatcher and rendering code read it.
type LayerState struct {
	visible map[LayerKind]bool
	armed   LayerKind // empty when nothing is armed
}

// NewLayerState returns the default layer state: boundary visible, all
// point layers hidden, nothing armed.
func NewLayerState() *LayerState {
	v := make(map[LayerKind]bool, len(AllLayers()))
	for _, k := range AllLayers() {
		v[k] = k == LayerBoundary
	}
	return &LayerState{visible: v}
}

// Toggle flips visibility for one layer. Double-toggle restores the
// previous state.
func (s *LayerState) Toggle(kind LayerKind) {
	s.visible[kind] = !s.visible[kind]
}

// IsVisible reports whether a layer is currently drawn.
func (s *LayerState) IsVisible(kind LayerKind) bool {
	return s.visible[kind]
}

// Arm selects the single layer that map clicks create points on. Arming a
// layer silently disarms whichever layer was armed before: at most one
// layer is armed at all times, which is what makes click routing exclusive.
// The boundary overlay cannot be armed.
func (s *LayerState) Arm(kind LayerKind) error {
	if _, ok := SchemaFor(kind); !ok {
		return ErrUnknownLayer
	}
	s.armed = kind
	return nil
}

// Disarm clears the armed layer.
func (s *LayerState) Disarm() {
	s.armed = ""
}

// Armed returns the armed layer and whether one is armed.
func (s *LayerState) Armed() (LayerKind, bool) {
	return s.armed, s.armed != ""
}
