package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/points", s.ListPointsHandler)
	r.Post("/points", s.CreatePointHandler)
	r.Patch("/points/{id}", s.UpdatePointHandler)
	r.Delete("/points/{id}", s.DeletePointHandler)

	r.Get("/routes", s.ListRoutesHandler)
	r.Post("/routes", s.CreateRouteHandler)
	r.Get("/routes/{id}/sheet", s.RouteSheetHandler)

	r.Post("/import", s.ImportHandler)

	r.Get("/layers", s.LayersHandler)
	r.Get("/boundary", s.BoundaryHandler)
	r.Get("/feed", s.FeedHandler)

	return r
}
