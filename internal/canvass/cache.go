package canvass

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// PointCache is the live local mirror of the map_points table. It owns the
// in-memory point collection outright: every other component reads through
// it, and only change-feed events (plus the initial seed) write to it.
//
// The feed is the single source of truth for convergence. In particular an
// update arriving for an id the cache no longer holds is dropped rather
// than re-inserted, so a delete racing a concurrent update always settles
// on "point absent".
type PointCache struct {
	mu     sync.Mutex
	points map[uuid.UUID]MapPoint

	// onChange is invoked after every mutation, outside the lock. The map
	// view hangs its re-render here.
	onChange func()
}

func NewPointCache() *PointCache {
	return &PointCache{points: make(map[uuid.UUID]MapPoint)}
}

// OnChange registers the re-render hook. Pass nil to clear it.
func (c *PointCache) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Seed replaces the cache contents with a full read of the table. Called
// once before the feed is attached.
func (c *PointCache) Seed(points []MapPoint) {
	c.mu.Lock()
	c.points = make(map[uuid.UUID]MapPoint, len(points))
	for _, p := range points {
		c.points[p.ID] = p
	}
	c.mu.Unlock()
	c.notify()
}

// Apply folds one change-feed event into the mirror.
func (c *PointCache) Apply(ev PointEvent) {
	c.mu.Lock()
	switch ev.Type {
	case EventInsert:
		c.points[ev.Point.ID] = ev.Point
	case EventUpdate:
		// Only updates records we still hold; never resurrects a delete.
		if _, ok := c.points[ev.Point.ID]; ok {
			c.points[ev.Point.ID] = ev.Point
		}
	case EventDelete:
		delete(c.points, ev.Point.ID)
	}
	c.mu.Unlock()
	c.notify()
}

// Run applies feed events sequentially until the channel closes or the
// context is cancelled. Sequential application is what preserves the
// store's per-id delivery order.
func (c *PointCache) Run(ctx context.Context, feed <-chan PointEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-feed:
			if !ok {
				// No recovery on feed loss; the mirror goes silently stale.
				log.Println("[cache] change feed closed")
				return
			}
			c.Apply(ev)
		}
	}
}

// Follow seeds the cache from the store and starts mirroring its change
// feed until ctx is cancelled.
func (c *PointCache) Follow(ctx context.Context, s Store) error {
	feed, cancel := s.SubscribePoints(ctx)

	points, err := s.ListPoints(ctx)
	if err != nil {
		cancel()
		return err
	}
	c.Seed(points)

	go func() {
		defer cancel()
		c.Run(ctx, feed)
	}()
	return nil
}

// Get returns one point by id.
func (c *PointCache) Get(id uuid.UUID) (MapPoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.points[id]
	return p, ok
}

// Len returns the number of mirrored points.
func (c *PointCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.points)
}

// Snapshot returns all points ordered by creation time (ties broken by id
// so the order is stable).
func (c *PointCache) Snapshot() []MapPoint {
	c.mu.Lock()
	out := make([]MapPoint, 0, len(c.points))
	for _, p := range c.points {
		out = append(out, p)
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Visible filters the snapshot down to layers currently toggled on.
func (c *PointCache) Visible(layers *LayerState) []MapPoint {
	all := c.Snapshot()
	out := all[:0]
	for _, p := range all {
		if layers.IsVisible(p.LayerKind) {
			out = append(out, p)
		}
	}
	return out
}

// CountByKind reports per-layer point counts for the layer panel.
func (c *PointCache) CountByKind() map[LayerKind]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	counts := make(map[LayerKind]int, len(layerSchemas))
	for _, p := range c.points {
		counts[p.LayerKind]++
	}
	return counts
}

func (c *PointCache) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
