package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/DoorstepHQ/canvass-backend/internal/canvass"
	"github.com/DoorstepHQ/canvass-backend/internal/importer"
	"github.com/DoorstepHQ/canvass-backend/internal/store"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Bulk-loads a CSV or GeoJSON file of points into one layer, with the
// same normalization the in-app importer applies.
func main() {
	var (
		path   = flag.String("file", "", "path to CSV or GeoJSON file")
		format = flag.String("format", "csv", "file format: csv or geojson")
		layer  = flag.String("layer", "", "target layer kind (door_knock, letterbox, events, sentiment, signage)")
		status = flag.String("status", "", "default status for records without one")
		dbURL  = flag.String("db", os.Getenv("DATABASE_URL"), "DATABASE_URL")
	)
	flag.Parse()

	if *path == "" || *layer == "" || *dbURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	target := canvass.LayerKind(*layer)
	if _, ok := canvass.SchemaFor(target); !ok {
		log.Fatalf("unknown target layer %q", *layer)
	}

	var records []importer.Record
	switch *format {
	case "csv":
		f, err := os.Open(*path)
		if err != nil {
			log.Fatal(err)
		}
		records, err = importer.DecodeCSV(f)
		f.Close()
		if err != nil {
			log.Fatal(err)
		}
	case "geojson":
		raw, err := os.ReadFile(*path)
		if err != nil {
			log.Fatal(err)
		}
		records, err = importer.DecodeGeoJSON(raw)
		if err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown format %q", *format)
	}

	gdb, err := gorm.Open(postgres.Open(*dbURL), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}

	result, err := importer.Run(context.Background(), store.NewPostgres(gdb, *dbURL), records, target, *status)
	if err != nil {
		log.Fatalf("import failed (%d skipped): %v", result.Skipped, err)
	}
	log.Printf("imported %d points, skipped %d invalid records", result.Imported, result.Skipped)
}
