package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/shahwaiz14/event-tracker/internal/telemetry"
	"github.com/shahwaiz14/event-tracker/internal/telemetry/domain"
)

const instrumentationName = "github.com/shahwaiz14/event-tracker/internal/telemetry"

// recordEmitter is the subset of otellog.Logger the emitter needs.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends Recorded notifications as OTel log records.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return NewEventEmitterWithLogger(provider.Logger(instrumentationName))
}

// NewEventEmitterWithLogger wraps an existing logger.
func NewEventEmitterWithLogger(l recordEmitter) telemetry.EventEmitter {
	if l == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: l}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *domain.Recorded) error { return nil }

type otelEmitter struct {
	logger recordEmitter
}

// Emit converts the notification to a log record: the payload becomes the body and the
// identifying fields become attributes.
func (e *otelEmitter) Emit(ctx context.Context, event *domain.Recorded) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetEventName(domain.RecordedType)
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	rec.SetTimestamp(ts)
	if len(event.Data) > 0 {
		rec.SetBody(otellog.BytesValue(event.Data))
	}
	if event.EventName != "" {
		rec.AddAttributes(otellog.String("event_name", event.EventName))
	}
	if event.CreatorID != "" {
		rec.AddAttributes(otellog.String("creator_id", event.CreatorID))
	}
	if event.EventID != 0 {
		rec.AddAttributes(otellog.Int64("event_id", event.EventID))
	}
	if event.LogID != 0 {
		rec.AddAttributes(otellog.Int64("log_id", event.LogID))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
