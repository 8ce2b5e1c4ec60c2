// Package service implements the event log recorder.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
	eventdomain "github.com/shahwaiz14/event-tracker/internal/event/domain"
	"github.com/shahwaiz14/event-tracker/internal/eventlog/domain"
	"github.com/shahwaiz14/event-tracker/internal/telemetry"
	telemetrydomain "github.com/shahwaiz14/event-tracker/internal/telemetry/domain"
)

const scope = "github.com/shahwaiz14/event-tracker/internal/eventlog"

// EventLookup resolves an event by name across all owners.
type EventLookup interface {
	FindByName(ctx context.Context, name string) (*eventdomain.Event, error)
}

// LogRepo stores event logs.
type LogRepo interface {
	Insert(ctx context.Context, l *domain.EventLog) error
}

// StatsInvalidator drops cached statistics for the given users. Best-effort.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context, userIDs ...string)
}

// Recorder appends event logs.
type Recorder struct {
	events      EventLookup
	logs        LogRepo
	invalidator StatsInvalidator
	emitter     telemetry.EventEmitter
	tracer      trace.Tracer
	recorded    metric.Int64Counter
}

// NewRecorder returns a Recorder. invalidator and emitter may be nil.
func NewRecorder(events EventLookup, logs LogRepo, invalidator StatsInvalidator, emitter telemetry.EventEmitter) *Recorder {
	recorded, err := otel.Meter(scope).Int64Counter("eventlogs.recorded",
		metric.WithDescription("Event logs written"),
		metric.WithUnit("{log}"))
	if err != nil {
		otel.Handle(err)
	}
	return &Recorder{
		events:      events,
		logs:        logs,
		invalidator: invalidator,
		emitter:     emitter,
		tracer:      otel.Tracer(scope),
		recorded:    recorded,
	}
}

// Record appends a log for the event called eventName. The event is looked up among all
// events, not only the caller's; when several share the name the oldest wins.
func (s *Recorder) Record(ctx context.Context, callerID, eventName string, data json.RawMessage) (*domain.EventLog, error) {
	if callerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	eventName = domain.NormalizeName(eventName)
	if err := domain.ValidateInput(eventName, data); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "eventlog.Record", trace.WithAttributes(attribute.String("event.name", eventName)))
	defer span.End()

	ev, err := s.events.FindByName(ctx, eventName)
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("find event: %w", err))
	}
	if ev == nil {
		return nil, apperr.ErrEventNotFound
	}

	l := &domain.EventLog{
		CreatorID: callerID,
		EventID:   ev.ID,
		EventName: ev.Name,
		Data:      data,
	}
	if err := s.logs.Insert(ctx, l); err != nil {
		if errors.Is(err, apperr.ErrEventNotFound) {
			return nil, err
		}
		return nil, spanErr(span, fmt.Errorf("insert event log: %w", err))
	}
	span.SetAttributes(attribute.Int64("eventlog.id", l.ID))

	if s.recorded != nil {
		s.recorded.Add(ctx, 1, metric.WithAttributes(attribute.String("event.name", l.EventName)))
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateStats(ctx, callerID)
	}
	telemetry.EmitAsync(s.emitter, ctx, &telemetrydomain.Recorded{
		Type:      telemetrydomain.RecordedType,
		LogID:     l.ID,
		EventID:   l.EventID,
		EventName: l.EventName,
		CreatorID: l.CreatorID,
		Timestamp: l.Timestamp,
		Data:      l.Data,
	})
	return l, nil
}

func spanErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
