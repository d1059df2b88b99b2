package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DoorstepHQ/canvass-backend/internal/canvass"
	"github.com/DoorstepHQ/canvass-backend/internal/config"
)

func writeYAML(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layers.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadLayerDisplay_Defaults verifies an empty path yields the full
// built-in palette.
func TestLoadLayerDisplay_Defaults(t *testing.T) {
	display, err := config.LoadLayerDisplay("")
	if err != nil {
		t.Fatal(err)
	}
	if len(display) != len(canvass.AllLayers()) {
		t.Errorf("display covers %d layers, want %d", len(display), len(canvass.AllLayers()))
	}
	if display[canvass.LayerDoorKnock].Color == "" {
		t.Error("default palette must set a color per layer")
	}
}

// TestLoadLayerDisplay_Overrides verifies partial per-layer overrides
// merge onto the defaults.
func TestLoadLayerDisplay_Overrides(t *testing.T) {
	path := writeYAML(t, "door_knock:\n  color: \"#ff0000\"\nsignage:\n  label: Corflutes\n")

	display, err := config.LoadLayerDisplay(path)
	if err != nil {
		t.Fatal(err)
	}

	dk := display[canvass.LayerDoorKnock]
	if dk.Color != "#ff0000" {
		t.Errorf("door_knock color = %q, want override", dk.Color)
	}
	if dk.Label != "Door Knocking" {
		t.Errorf("door_knock label = %q, want default kept", dk.Label)
	}
	if display[canvass.LayerSignage].Label != "Corflutes" {
		t.Errorf("signage label = %q", display[canvass.LayerSignage].Label)
	}
	if display[canvass.LayerEvents].Label != "Events / Booths" {
		t.Error("untouched layers must keep defaults")
	}
}

// TestLoadLayerDisplay_UnknownLayer verifies a typo'd layer name fails
// loudly instead of adding a phantom layer.
func TestLoadLayerDisplay_UnknownLayer(t *testing.T) {
	path := writeYAML(t, "door_knocking:\n  color: \"#ff0000\"\n")
	if _, err := config.LoadLayerDisplay(path); err == nil {
		t.Error("expected error for unknown layer name")
	}
}

// TestConfig_Validate verifies the database DSN is the one hard
// requirement.
func TestConfig_Validate(t *testing.T) {
	if err := (config.Config{}).Validate(); !errors.Is(err, config.ErrMissingDatabaseURL) {
		t.Errorf("Validate: got %v, want ErrMissingDatabaseURL", err)
	}
	if err := (config.Config{DatabaseURL: "postgres://localhost/canvass"}).Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

// TestLoadFromEnv_Defaults verifies defaults apply when the environment
// is empty.
func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("BOUNDARY_GEOJSON", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/canvass")

	cfg := config.LoadFromEnv()
	if cfg.Port != "5050" {
		t.Errorf("port = %q, want 5050", cfg.Port)
	}
	if cfg.BoundaryPath != "data/oatley.geojson" {
		t.Errorf("boundary path = %q", cfg.BoundaryPath)
	}
}
