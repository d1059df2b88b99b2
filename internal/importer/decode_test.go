package importer_test

import (
	"strings"
	"testing"

	"github.com/DoorstepHQ/canvass-backend/internal/importer"
)

// TestDecodeCSV verifies header mapping, BOM stripping, and padding of
// short rows.
func TestDecodeCSV(t *testing.T) {
	in := "\ufefflat,lng,notes\n-33.9,151.0,front gate\n-33.91,151.01\n"

	records, err := importer.DecodeCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0]["lat"] != "-33.9" || records[0]["notes"] != "front gate" {
		t.Errorf("first record = %v", records[0])
	}
	if _, ok := records[1]["notes"]; ok {
		t.Error("short row must not invent fields")
	}
}

// TestDecodeCSV_HeaderOnly verifies a file with no data rows is an
// error.
func TestDecodeCSV_HeaderOnly(t *testing.T) {
	if _, err := importer.DecodeCSV(strings.NewReader("lat,lng\n")); err == nil {
		t.Error("expected error for header-only csv")
	}
}

// TestDecodeGeoJSON verifies point features map to records and other
// geometries are ignored.
func TestDecodeGeoJSON(t *testing.T) {
	in := `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [151.07, -33.97]},
	     "properties": {"name": "Oatley station"}},
	    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[151.0, -33.9], [151.1, -33.8]]},
	     "properties": {}}
	  ]
	}`

	records, err := importer.DecodeGeoJSON([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1 (line string skipped)", len(records))
	}
	if records[0]["lat"] != "-33.97" || records[0]["lng"] != "151.07" {
		t.Errorf("coords = %v", records[0])
	}
	if records[0]["notes"] != "Oatley station" {
		t.Errorf("notes = %q", records[0]["notes"])
	}
}

// TestDecodeGeoJSON_Empty verifies an empty collection is an error.
func TestDecodeGeoJSON_Empty(t *testing.T) {
	if _, err := importer.DecodeGeoJSON([]byte(`{"type":"FeatureCollection","features":[]}`)); err == nil {
		t.Error("expected error for empty feature collection")
	}
}
