package canvass

import "errors"

// Validation failures are caught before any store call; the originating
// session or draft stays open so the volunteer can correct and retry.
var (
	ErrUnknownLayer   = errors.New("unknown or non-point layer kind")
	ErrBadCoordinate  = errors.New("latitude/longitude must be finite numbers")
	ErrEmptyRouteName = errors.New("route name must not be empty")
	ErrNotCollecting  = errors.New("no point authoring session in progress")
	ErrNotPlanning    = errors.New("no route planning session in progress")
	ErrNotConfirmed   = errors.New("delete was not confirmed")
)
