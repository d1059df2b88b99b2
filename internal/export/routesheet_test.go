package export_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/DoorstepHQ/canvass-backend/internal/canvass"
	"github.com/DoorstepHQ/canvass-backend/internal/export"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

func strptr(s string) *string { return &s }

func seededCache(points ...canvass.MapPoint) *canvass.PointCache {
	c := canvass.NewPointCache()
	c.Seed(points)
	return c
}

// TestBuild_StopsFollowSelectionOrder verifies stops come out in the
// route's point order with sequence numbers from one.
func TestBuild_StopsFollowSelectionOrder(t *testing.T) {
	a := canvass.MapPoint{ID: uuid.New(), LayerKind: canvass.LayerDoorKnock, Lat: -33.97, Lng: 151.07, Status: strptr(canvass.StatusToKnock)}
	b := canvass.MapPoint{ID: uuid.New(), LayerKind: canvass.LayerDoorKnock, Lat: -33.98, Lng: 151.08, Notes: strptr("side entrance")}

	route := canvass.Route{
		Name:      "West Loop",
		RouteType: canvass.RouteDoorKnock,
		PointIDs:  pq.StringArray{b.ID.String(), a.ID.String()},
		Polyline:  "[]",
		CreatedAt: time.Now(),
	}

	sheet, err := export.Build(route, seededCache(a, b), nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(sheet.Stops) != 2 {
		t.Fatalf("stops = %d, want 2", len(sheet.Stops))
	}
	if sheet.Stops[0].ID != b.ID.String() || sheet.Stops[1].ID != a.ID.String() {
		t.Error("stops must follow the route's point order")
	}
	if sheet.Stops[0].Seq != 1 || sheet.Stops[1].Seq != 2 {
		t.Errorf("seq = %d,%d", sheet.Stops[0].Seq, sheet.Stops[1].Seq)
	}
	if sheet.Stops[0].Notes != "side entrance" {
		t.Errorf("notes = %q", sheet.Stops[0].Notes)
	}
}

// TestBuild_SkipsUnresolvableIDs verifies deleted points drop out of
// the sheet without breaking the sequence.
func TestBuild_SkipsUnresolvableIDs(t *testing.T) {
	alive := canvass.MapPoint{ID: uuid.New(), LayerKind: canvass.LayerLetterbox, Lat: -33.97, Lng: 151.07}
	gone := uuid.New()

	route := canvass.Route{
		Name:      "Drop Run",
		RouteType: canvass.RouteLetterbox,
		PointIDs:  pq.StringArray{gone.String(), alive.ID.String()},
		Polyline:  "[]",
	}

	sheet, err := export.Build(route, seededCache(alive), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(sheet.Stops) != 1 || sheet.Stops[0].ID != alive.ID.String() || sheet.Stops[0].Seq != 1 {
		t.Errorf("stops = %+v", sheet.Stops)
	}
}

// TestBuild_PathDistance verifies the walking distance sums segment
// lengths: two vertices ~111m apart in latitude.
func TestBuild_PathDistance(t *testing.T) {
	path, err := canvass.EncodePath([]canvass.LatLng{
		{Lat: -33.970, Lng: 151.070},
		{Lat: -33.971, Lng: 151.070},
	})
	if err != nil {
		t.Fatal(err)
	}
	route := canvass.Route{Name: "Short", RouteType: canvass.RouteDoorKnock, Polyline: path}

	sheet, err := export.Build(route, seededCache(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if sheet.PathMeters < 100 || sheet.PathMeters > 125 {
		t.Errorf("path meters = %f, want roughly 111", sheet.PathMeters)
	}
	if sheet.EncodedPath == "" {
		t.Error("expected an encoded path")
	}
}

// TestBuild_EncodedPolyline checks the encoder against the published
// reference vector for the algorithm.
func TestBuild_EncodedPolyline(t *testing.T) {
	path, err := canvass.EncodePath([]canvass.LatLng{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	})
	if err != nil {
		t.Fatal(err)
	}
	route := canvass.Route{Name: "Reference", RouteType: canvass.RouteDoorKnock, Polyline: path}

	sheet, err := export.Build(route, seededCache(), nil)
	if err != nil {
		t.Fatal(err)
	}
	const want = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"
	if sheet.EncodedPath != want {
		t.Errorf("encoded path = %q, want %q", sheet.EncodedPath, want)
	}
}

// TestStaticMapURL verifies the key and encoded path land in the query
// and that a pathless sheet produces no URL.
func TestStaticMapURL(t *testing.T) {
	sheet := export.RouteSheet{EncodedPath: "_p~iF~ps|U"}
	u := sheet.StaticMapURL("test-key")
	if !strings.Contains(u, "maps.googleapis.com") || !strings.Contains(u, "key=test-key") {
		t.Errorf("url = %q", u)
	}
	if !strings.Contains(u, "enc%3A_p~iF~ps%7CU") {
		t.Errorf("url missing encoded path: %q", u)
	}

	if (export.RouteSheet{}).StaticMapURL("test-key") != "" {
		t.Error("pathless sheet must produce no url")
	}
	if sheet.StaticMapURL("") != "" {
		t.Error("sheet without a configured key must produce no url")
	}
}

// TestWriteCSV verifies the downloadable stop list layout.
func TestWriteCSV(t *testing.T) {
	sheet := export.RouteSheet{
		Stops: []export.Stop{
			{Seq: 1, Lat: -33.97, Lng: 151.07, Status: canvass.StatusToKnock, InElectorate: true},
			{Seq: 2, Lat: -33.98, Lng: 151.08, Notes: "beware dog"},
		},
	}

	var buf bytes.Buffer
	if err := sheet.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 stops", len(lines))
	}
	if lines[0] != "seq,lat,lng,status,notes,in_electorate" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,-33.97,151.07,to_knock,,true") {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "beware dog") {
		t.Errorf("row 2 = %q", lines[2])
	}
}
