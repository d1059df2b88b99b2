package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/DoorstepHQ/canvass-backend/internal/canvass"
	"github.com/jackc/pgx/v5"
)

// listen holds a dedicated connection on LISTEN and forwards each
// notification payload as a PointEvent until ctx is cancelled. Payloads
// that fail to decode are logged and skipped; everything else is
// forwarded in delivery order.
func listen(ctx context.Context, connString string, out chan<- canvass.PointEvent) error {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return fmt.Errorf("connect listener: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+feedChannel); err != nil {
		return fmt.Errorf("listen %s: %w", feedChannel, err)
	}

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var ev canvass.PointEvent
		if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
			log.Printf("[store] bad feed payload: %v", err)
			continue
		}

		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
