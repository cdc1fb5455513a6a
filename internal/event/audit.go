package event

import (
	"context"
	"log/slog"
)

// StartAuditLogger subscribes a slog writer to the bus and drains it
// until ctx is cancelled. Every security-relevant event lands in the
// process log with its subject and detail.
func StartAuditLogger(ctx context.Context, bus Bus) {
	ch, unsubscribe := bus.Subscribe()

	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-ch:
				if !ok {
					return
				}
				slog.Info("audit",
					"event", e.Type,
					"subject", e.Subject,
					"detail", e.Detail,
					"event_id", e.ID,
				)
			}
		}
	}()
}
