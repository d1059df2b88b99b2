package config

import (
	"fmt"
	"os"

	"github.com/DoorstepHQ/canvass-backend/internal/canvass"
	"github.com/goccy/go-yaml"
)

// LayerDisplay is the presentation half of a layer: the panel label and
// marker color clients render with. The state half (visibility, arming)
// lives in canvass.LayerState and is never configured.
type LayerDisplay struct {
	Label string `yaml:"label" json:"label"`
	Color string `yaml:"color" json:"color"`
}

// DefaultLayerDisplay returns the built-in palette.
func DefaultLayerDisplay() map[canvass.LayerKind]LayerDisplay {
	return map[canvass.LayerKind]LayerDisplay{
		canvass.LayerBoundary:  {Label: "Electorate Boundary", Color: "#3b82f6"},
		canvass.LayerDoorKnock: {Label: "Door Knocking", Color: "#22c55e"},
		canvass.LayerLetterbox: {Label: "Letterbox Drop", Color: "#eab308"},
		canvass.LayerEvents:    {Label: "Events / Booths", Color: "#ec4899"},
		canvass.LayerSentiment: {Label: "Polling Sentiment", Color: "#8b5cf6"},
		canvass.LayerSignage:   {Label: "Signage", Color: "#f97316"},
	}
}

// LoadLayerDisplay merges a YAML file of per-layer overrides on top of
// the defaults. An empty path returns the defaults as-is; a file naming
// an unknown layer is an error rather than a silent extra layer.
func LoadLayerDisplay(path string) (map[canvass.LayerKind]LayerDisplay, error) {
	display := DefaultLayerDisplay()
	if path == "" {
		return display, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layer config: %w", err)
	}

	var overrides map[string]LayerDisplay
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse layer config: %w", err)
	}

	for name, o := range overrides {
		kind := canvass.LayerKind(name)
		base, ok := display[kind]
		if !ok {
			return nil, fmt.Errorf("layer config: unknown layer %q", name)
		}
		if o.Label != "" {
			base.Label = o.Label
		}
		if o.Color != "" {
			base.Color = o.Color
		}
		display[kind] = base
	}
	return display, nil
}
