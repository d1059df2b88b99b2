package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/DoorstepHQ/canvass-backend/internal/boundary"
	"github.com/DoorstepHQ/canvass-backend/internal/canvass"
	"github.com/DoorstepHQ/canvass-backend/internal/config"
	"github.com/DoorstepHQ/canvass-backend/internal/export"
	"github.com/DoorstepHQ/canvass-backend/internal/importer"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxImportBody caps uploaded CSV/GeoJSON payloads.
const maxImportBody = 10 << 20

// Server holds the shared state behind the HTTP surface: the backing
// store, the live point mirror, the electorate boundary and display
// config.
type Server struct {
	Store         canvass.Store
	Cache         *canvass.PointCache
	Boundary      *boundary.Boundary
	Display       map[canvass.LayerKind]config.LayerDisplay
	StaticMapsKey string
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListPointsHandler serves the mirrored point set.
func (s *Server) ListPointsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Cache.Snapshot())
}

// CreatePointHandler persists one point with the same semantics as the
// in-map authoring flow: layer-default status when none is given, the
// free slot routed by layer kind, coordinate validation before any write.
func (s *Server) CreatePointHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		LayerKind canvass.LayerKind `json:"layer_kind"`
		Lat       float64           `json:"lat"`
		Lng       float64           `json:"lng"`
		Status    string            `json:"status"`
		Category  string            `json:"category"`
		Notes     string            `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	authoring := canvass.NewAuthoring(s.Store)
	if err := authoring.Begin(canvass.LatLng{Lat: input.Lat, Lng: input.Lng}, input.LayerKind); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	authoring.SetStatus(input.Status)
	authoring.SetCategory(input.Category)
	authoring.SetNotes(input.Notes)

	point, err := authoring.Submit(r.Context())
	if err != nil {
		if errors.Is(err, canvass.ErrBadCoordinate) || errors.Is(err, canvass.ErrUnknownLayer) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to save point: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, point)
}

// UpdatePointHandler applies a partial edit. Omitted fields are left
// untouched; for sentiment points the category value lands in the
// sentiment column.
func (s *Server) UpdatePointHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid point id", http.StatusBadRequest)
		return
	}
	point, ok := s.Cache.Get(id)
	if !ok {
		http.Error(w, "Point not found", http.StatusNotFound)
		return
	}

	var input canvass.FieldUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	mutator := canvass.NewMutator(s.Store)
	if err := mutator.UpdateFields(r.Context(), point, input); err != nil {
		http.Error(w, "Failed to update point: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePointHandler removes a point. The HTTP DELETE is the explicit
// confirmation; the mirror converges through the change feed rather
// than being spliced here.
func (s *Server) DeletePointHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid point id", http.StatusBadRequest)
		return
	}
	if err := s.Store.DeletePoint(r.Context(), id); err != nil {
		http.Error(w, "Failed to delete point: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRoutesHandler serves the saved routes.
func (s *Server) ListRoutesHandler(w http.ResponseWriter, r *http.Request) {
	routes, err := s.Store.ListRoutes(r.Context())
	if err != nil {
		http.Error(w, "Failed to list routes: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, routes)
}

// CreateRouteHandler replays a finished planning session against the
// planner state machine so a saved route keeps its invariants: non-empty
// name checked before any store call, point ids in selection order, one
// atomic insert.
func (s *Server) CreateRouteHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name      string            `json:"name"`
		RouteType canvass.RouteType `json:"route_type"`
		PointIDs  []uuid.UUID       `json:"point_ids"`
		Path      []canvass.LatLng  `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	planner := canvass.NewPlanner(s.Store)
	planner.Start()
	planner.SetName(input.Name)
	if input.RouteType != "" {
		planner.SetType(input.RouteType)
	}
	for _, id := range input.PointIDs {
		planner.TogglePoint(id)
	}
	for _, v := range input.Path {
		planner.AddPathVertex(v)
	}

	route, err := planner.Save(r.Context())
	if err != nil {
		if errors.Is(err, canvass.ErrEmptyRouteName) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to save route: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, route)
}

// RouteSheetHandler builds the printable route sheet. ?format=csv
// downloads the stop list; the default JSON body carries the full sheet
// plus the static-map URL when a key is configured.
func (s *Server) RouteSheetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid route id", http.StatusBadRequest)
		return
	}

	routes, err := s.Store.ListRoutes(r.Context())
	if err != nil {
		http.Error(w, "Failed to load route: "+err.Error(), http.StatusInternalServerError)
		return
	}
	var route *canvass.Route
	for i := range routes {
		if routes[i].ID == id {
			route = &routes[i]
			break
		}
	}
	if route == nil {
		http.Error(w, "Route not found", http.StatusNotFound)
		return
	}

	sheet, err := export.Build(*route, s.Cache, s.Boundary)
	if err != nil {
		http.Error(w, "Failed to build route sheet: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", route.Name+".csv"))
		if err := sheet.WriteCSV(w); err != nil {
			http.Error(w, "Failed to write route sheet", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, struct {
		export.RouteSheet
		StaticMapURL string `json:"static_map_url,omitempty"`
	}{sheet, sheet.StaticMapURL(s.StaticMapsKey)})
}

// ImportHandler runs the bulk import normalizer over an uploaded CSV or
// GeoJSON body. Invalid rows are skipped and reported; the surviving
// rows land as one all-or-nothing batch.
func (s *Server) ImportHandler(w http.ResponseWriter, r *http.Request) {
	target := canvass.LayerKind(r.URL.Query().Get("layer"))
	if _, ok := canvass.SchemaFor(target); !ok {
		http.Error(w, "Unknown target layer", http.StatusBadRequest)
		return
	}
	defaultStatus := r.URL.Query().Get("status")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBody))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var records []importer.Record
	switch r.URL.Query().Get("format") {
	case "geojson":
		records, err = importer.DecodeGeoJSON(body)
	default:
		records, err = importer.DecodeCSV(bytes.NewReader(body))
	}
	if err != nil {
		http.Error(w, "Failed to parse upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := importer.Run(r.Context(), s.Store, records, target, defaultStatus)
	if err != nil {
		if errors.Is(err, importer.ErrNothingToImport) {
			http.Error(w, "No valid points found", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "Import failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// LayersHandler serves the layer panel data: display config plus live
// per-layer point counts.
func (s *Server) LayersHandler(w http.ResponseWriter, r *http.Request) {
	counts := s.Cache.CountByKind()

	type layerOut struct {
		Kind  canvass.LayerKind `json:"kind"`
		Label string            `json:"label"`
		Color string            `json:"color"`
		Count int               `json:"count"`
	}
	out := make([]layerOut, 0, len(canvass.AllLayers()))
	for _, kind := range canvass.AllLayers() {
		d := s.Display[kind]
		out = append(out, layerOut{Kind: kind, Label: d.Label, Color: d.Color, Count: counts[kind]})
	}
	writeJSON(w, http.StatusOK, out)
}

// BoundaryHandler serves the electorate overlay geometry.
func (s *Server) BoundaryHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(s.Boundary.GeoJSON())
}

// FeedHandler streams the map_points change feed as server-sent events,
// one event per delivery, until the client disconnects.
func (s *Server) FeedHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	feed, cancel := s.Store.SubscribePoints(r.Context())
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-feed:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
			flusher.Flush()
		}
	}
}
