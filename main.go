package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/DoorstepHQ/canvass-backend/internal/boundary"
	"github.com/DoorstepHQ/canvass-backend/internal/canvass"
	"github.com/DoorstepHQ/canvass-backend/internal/config"
	"github.com/DoorstepHQ/canvass-backend/internal/db"
	"github.com/DoorstepHQ/canvass-backend/internal/middleware"
	"github.com/DoorstepHQ/canvass-backend/internal/server"
	"github.com/DoorstepHQ/canvass-backend/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	db.Connect()
	if err := store.Init(db.DB); err != nil {
		log.Fatal("Failed to init canvass tables: ", err)
	}
	pg := store.NewPostgres(db.DB, cfg.DatabaseURL)

	cache := canvass.NewPointCache()
	if err := cache.Follow(context.Background(), pg); err != nil {
		log.Fatal("Failed to start point cache: ", err)
	}

	bnd, err := boundary.Load(cfg.BoundaryPath)
	if err != nil {
		log.Fatal("Failed to load electorate boundary: ", err)
	}

	display, err := config.LoadLayerDisplay(cfg.LayersPath)
	if err != nil {
		log.Fatal("Failed to load layer config: ", err)
	}

	srv := &server.Server{
		Store:         pg,
		Cache:         cache,
		Boundary:      bnd,
		Display:       display,
		StaticMapsKey: cfg.StaticMapsKey,
	}

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.WriteLimitMiddleware(20, 40))
	r.Get("/", RootHandler)

	r.Mount("/canvass", srv.SetupRoutes())

	fmt.Println("Server listening on port :" + cfg.Port + "...")

	http.ListenAndServe("0.0.0.0:"+cfg.Port, r)
}
