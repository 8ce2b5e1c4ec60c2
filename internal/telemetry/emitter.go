// Package telemetry fans recorded event logs out to best-effort sinks (Kafka, OTel logs).
package telemetry

import (
	"context"
	"errors"

	"github.com/shahwaiz14/event-tracker/internal/telemetry/domain"
)

// EventEmitter publishes Recorded notifications. Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *domain.Recorded) error
}

// Multi returns an emitter that forwards to every non-nil emitter in order.
// All emitters are tried; their errors are joined.
func Multi(emitters ...EventEmitter) EventEmitter {
	out := make(multiEmitter, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

type multiEmitter []EventEmitter

func (m multiEmitter) Emit(ctx context.Context, event *domain.Recorded) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
