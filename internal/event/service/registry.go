// Package service implements the event registry: create, list, retrieve, update and delete
// of events, always scoped to the calling user.
package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
	"github.com/shahwaiz14/event-tracker/internal/event/domain"
)

// EventRepo is the event persistence the registry needs.
type EventRepo interface {
	ListNames(ctx context.Context, ownerID, search string) ([]string, error)
	ExistsByName(ctx context.Context, ownerID, name string) (bool, error)
	Create(ctx context.Context, e *domain.Event) error
	GetByID(ctx context.Context, ownerID string, id int64) (*domain.Event, error)
	Update(ctx context.Context, e *domain.Event) error
	Delete(ctx context.Context, ownerID string, id int64) ([]string, bool, error)
}

// StatsInvalidator drops cached statistics for the given users. Best-effort.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context, userIDs ...string)
}

// CreateInput is the caller-supplied part of a new event.
type CreateInput struct {
	Name        string
	Description *string
}

// UpdateInput is a partial update. Nil Name leaves the name alone; SetDescription
// distinguishes "clear the description" (Description nil) from "leave it".
type UpdateInput struct {
	Name           *string
	SetDescription bool
	Description    *string
}

// Registry implements the event registry.
type Registry struct {
	repo        EventRepo
	invalidator StatsInvalidator
	tracer      trace.Tracer
}

// NewRegistry returns a Registry. invalidator may be nil when statistics are not cached.
func NewRegistry(repo EventRepo, invalidator StatsInvalidator) *Registry {
	return &Registry{
		repo:        repo,
		invalidator: invalidator,
		tracer:      otel.Tracer("github.com/shahwaiz14/event-tracker/internal/event"),
	}
}

// List returns the caller's event names, newest first, optionally filtered by search.
func (s *Registry) List(ctx context.Context, callerID, search string) ([]string, error) {
	if callerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	ctx, span := s.tracer.Start(ctx, "event.List", trace.WithAttributes(attribute.String("search", search)))
	defer span.End()

	names, err := s.repo.ListNames(ctx, callerID, search)
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("list events: %w", err))
	}
	return names, nil
}

// Create adds a new event owned by the caller. The name is trimmed before it is
// validated and stored.
func (s *Registry) Create(ctx context.Context, callerID string, in CreateInput) (*domain.Event, error) {
	if callerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	ctx, span := s.tracer.Start(ctx, "event.Create")
	defer span.End()

	e := &domain.Event{
		OwnerID:     callerID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByName(ctx, callerID, e.Name)
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("create event: %w", err))
	}
	if exists {
		return nil, apperr.ErrDuplicate
	}
	// Concurrent creates are settled by the unique index.
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, spanErr(span, fmt.Errorf("create event: %w", err))
	}
	span.SetAttributes(attribute.Int64("event.id", e.ID))
	return e, nil
}

// Retrieve returns the caller's event. Events owned by others are reported as not found.
func (s *Registry) Retrieve(ctx context.Context, callerID string, id int64) (*domain.Event, error) {
	if callerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	ctx, span := s.tracer.Start(ctx, "event.Retrieve", trace.WithAttributes(attribute.Int64("event.id", id)))
	defer span.End()

	e, err := s.repo.GetByID(ctx, callerID, id)
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("get event: %w", err))
	}
	if e == nil {
		return nil, apperr.ErrNotFound
	}
	return e, nil
}

// Update applies a partial update to the caller's event. Renaming onto another of the
// caller's event names fails with apperr.ErrDuplicate.
func (s *Registry) Update(ctx context.Context, callerID string, id int64, in UpdateInput) (*domain.Event, error) {
	if callerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	ctx, span := s.tracer.Start(ctx, "event.Update", trace.WithAttributes(attribute.Int64("event.id", id)))
	defer span.End()

	e, err := s.repo.GetByID(ctx, callerID, id)
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("update event: %w", err))
	}
	if e == nil {
		return nil, apperr.ErrNotFound
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := domain.ValidateName(name); err != nil {
			return nil, err
		}
		if name != e.Name {
			exists, err := s.repo.ExistsByName(ctx, callerID, name)
			if err != nil {
				return nil, spanErr(span, fmt.Errorf("update event: %w", err))
			}
			if exists {
				return nil, apperr.ErrDuplicate
			}
		}
		e.Name = name
	}
	if in.SetDescription {
		e.Description = in.Description
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, spanErr(span, fmt.Errorf("update event: %w", err))
	}
	return e, nil
}

// Delete removes the caller's event together with every log recorded against it.
func (s *Registry) Delete(ctx context.Context, callerID string, id int64) error {
	if callerID == "" {
		return apperr.ErrUnauthenticated
	}
	ctx, span := s.tracer.Start(ctx, "event.Delete", trace.WithAttributes(attribute.Int64("event.id", id)))
	defer span.End()

	creators, deleted, err := s.repo.Delete(ctx, callerID, id)
	if err != nil {
		return spanErr(span, fmt.Errorf("delete event: %w", err))
	}
	if !deleted {
		return apperr.ErrNotFound
	}
	if s.invalidator != nil && len(creators) > 0 {
		s.invalidator.InvalidateStats(ctx, creators...)
	}
	return nil
}

func spanErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
