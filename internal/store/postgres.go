package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/DoorstepHQ/canvass-backend/internal/canvass"
	"github.com/DoorstepHQ/canvass-backend/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// feedChannel is the pg_notify channel the map_points trigger publishes
// on and the listener subscribes to.
const feedChannel = "canvass_map_points"

// Postgres implements the canvass store contract on the shared gorm
// connection, with the change feed bridged from LISTEN/NOTIFY.
type Postgres struct {
	db *gorm.DB
	// connString is handed to the pgx listener; gorm's pool cannot hold a
	// LISTEN session open.
	connString string
}

func NewPostgres(d *gorm.DB, connString string) *Postgres {
	return &Postgres{db: d, connString: connString}
}

// uuidExtensionDDL provides uuid_generate_v4(), which the id columns
// default to. Must run before migration or table creation fails on a
// fresh database.
const uuidExtensionDDL = `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`

// Init creates the canvass schema, migrates the tables and installs the
// change-feed trigger. Called once at startup.
func Init(d *gorm.DB) error {
	if err := db.EnsureSchema(d, "canvass"); err != nil {
		return fmt.Errorf("create canvass schema: %w", err)
	}
	if err := d.Exec(uuidExtensionDDL).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp extension: %w", err)
	}
	if err := d.AutoMigrate(&canvass.MapPoint{}, &canvass.Route{}); err != nil {
		return fmt.Errorf("migrate canvass tables: %w", err)
	}
	if err := installChangeFeed(d); err != nil {
		return fmt.Errorf("install change feed: %w", err)
	}
	return nil
}

// installChangeFeed wires a row-level trigger that publishes every
// map_points change as a JSON payload on the feed channel. The payload
// shape matches canvass.PointEvent.
func installChangeFeed(d *gorm.DB) error {
	return d.Exec(changeFeedDDL()).Error
}

func changeFeedDDL() string {
	return `
		CREATE OR REPLACE FUNCTION canvass.notify_map_points() RETURNS trigger AS $$
		DECLARE
			payload text;
		BEGIN
			IF TG_OP = 'DELETE' THEN
				payload = json_build_object('type', 'delete', 'point', row_to_json(OLD))::text;
			ELSIF TG_OP = 'UPDATE' THEN
				payload = json_build_object('type', 'update', 'point', row_to_json(NEW))::text;
			ELSE
				payload = json_build_object('type', 'insert', 'point', row_to_json(NEW))::text;
			END IF;
			PERFORM pg_notify('` + feedChannel + `', payload);
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql;

		DROP TRIGGER IF EXISTS map_points_notify ON canvass.map_points;
		CREATE TRIGGER map_points_notify
			AFTER INSERT OR UPDATE OR DELETE ON canvass.map_points
			FOR EACH ROW EXECUTE FUNCTION canvass.notify_map_points();
	`
}

func (p *Postgres) ListPoints(ctx context.Context) ([]canvass.MapPoint, error) {
	var points []canvass.MapPoint
	if err := p.db.WithContext(ctx).Find(&points).Error; err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	return points, nil
}

func (p *Postgres) InsertPoints(ctx context.Context, points []canvass.MapPoint) ([]canvass.MapPoint, error) {
	for _, pt := range points {
		if err := pt.Validate(); err != nil {
			return nil, err
		}
	}
	if len(points) == 0 {
		return nil, nil
	}

	stored := make([]canvass.MapPoint, len(points))
	copy(stored, points)

	// Single transaction: the batch lands whole or not at all.
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&stored).Error
	})
	if err != nil {
		return nil, fmt.Errorf("insert points: %w", err)
	}
	return stored, nil
}

func (p *Postgres) UpdatePoint(ctx context.Context, id uuid.UUID, u canvass.PointUpdate) error {
	updates := map[string]interface{}{"updated_at": time.Now()}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	if u.Category != nil {
		updates["category"] = *u.Category
	}
	if u.Sentiment != nil {
		updates["sentiment"] = *u.Sentiment
	}
	if u.Notes != nil {
		updates["notes"] = *u.Notes
	}

	res := p.db.WithContext(ctx).Model(&canvass.MapPoint{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update point: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPointNotFound
	}
	return nil
}

func (p *Postgres) DeletePoint(ctx context.Context, id uuid.UUID) error {
	// Deleting an already-gone row is fine; the feed said everything
	// there was to say about it.
	if err := p.db.WithContext(ctx).Where("id = ?", id).Delete(&canvass.MapPoint{}).Error; err != nil {
		return fmt.Errorf("delete point: %w", err)
	}
	return nil
}

func (p *Postgres) InsertRoute(ctx context.Context, route canvass.Route) (canvass.Route, error) {
	if err := p.db.WithContext(ctx).Create(&route).Error; err != nil {
		return canvass.Route{}, fmt.Errorf("insert route: %w", err)
	}
	return route, nil
}

func (p *Postgres) ListRoutes(ctx context.Context) ([]canvass.Route, error) {
	var routes []canvass.Route
	if err := p.db.WithContext(ctx).Order("created_at").Find(&routes).Error; err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return routes, nil
}

// SubscribePoints bridges the LISTEN/NOTIFY channel onto a Go channel.
// If the listener connection drops the feed closes and is not retried;
// subscribers go stale rather than seeing fabricated events.
func (p *Postgres) SubscribePoints(ctx context.Context) (<-chan canvass.PointEvent, func()) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan canvass.PointEvent, subscriberBuffer)

	go func() {
		defer close(ch)
		if err := listen(ctx, p.connString, ch); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[store] change feed listener stopped: %v", err)
		}
	}()

	return ch, cancel
}
