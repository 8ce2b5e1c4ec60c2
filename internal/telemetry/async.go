package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/shahwaiz14/event-tracker/internal/lib/logger/sl"
	"github.com/shahwaiz14/event-tracker/internal/telemetry/domain"
)

// emitTimeout is the max time allowed for a single async emit. Used by EmitAsync and by ShutdownDrainDuration.
const emitTimeout = 5 * time.Second

// ShutdownDrainDuration is how long to wait after the HTTP server stops before closing sinks,
// so in-flight async emits have time to complete. Must be >= emitTimeout.
const ShutdownDrainDuration = emitTimeout

// EmitAsync runs Emit in a goroutine with a short timeout so the request is not blocked.
// emitter and event may be nil; EmitAsync then returns without starting a goroutine.
// The goroutine keeps ctx values (trace span) but not its cancellation.
func EmitAsync(emitter EventEmitter, ctx context.Context, event *domain.Recorded) {
	if emitter == nil || event == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	go func() {
		emitCtx, cancel := context.WithTimeout(base, emitTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil {
			slog.WarnContext(emitCtx, "telemetry: async emit failed",
				slog.String("event_name", event.EventName), sl.Err(err))
		}
	}()
}
