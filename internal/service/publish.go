package service

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/Skotchmaster/restaurant_pos/internal/events"
	"github.com/Skotchmaster/restaurant_pos/internal/logging"
)

var tracer = otel.Tracer("github.com/Skotchmaster/restaurant_pos/internal/service")

// publish sends evs in one write after the state change has been committed.
// Failures are logged and never undo the change.
func publish(ctx context.Context, p events.Publisher, key uint, evs ...events.Event) {
	if p == nil || len(evs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := p.Publish(ctx, strconv.FormatUint(uint64(key), 10), evs...); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "type", evs[0].Type, "count", len(evs), "error", err)
	}
}

func clock(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now().UTC()
}
