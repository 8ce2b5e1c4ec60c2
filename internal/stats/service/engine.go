// Package service implements the statistics engine: frequency counts and per-day trends
// over the logs the caller created.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
	"github.com/shahwaiz14/event-tracker/internal/lib/logger/sl"
	"github.com/shahwaiz14/event-tracker/internal/stats/domain"
)

// DefaultStartDate is the lower bound used when a frequency query names no start_date.
const DefaultStartDate = "2020-01-01"

// StatsRepo aggregates the caller's event logs.
type StatsRepo interface {
	CountByName(ctx context.Context, creatorID, eventName, start, end string) (int64, error)
	CountAll(ctx context.Context, creatorID string) ([]domain.Frequency, error)
	DailyCounts(ctx context.Context, creatorID string) ([]domain.DailyCount, error)
}

// TrendCache stores computed trends per user and generation. Invalidate advances a
// user's generation.
type TrendCache interface {
	Generation(ctx context.Context, userID string) (int64, error)
	Get(ctx context.Context, userID string, gen int64) (domain.Trend, bool, error)
	Set(ctx context.Context, userID string, gen int64, t domain.Trend) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

// FrequencyQuery holds the optional frequency filters as received.
type FrequencyQuery struct {
	EventName string
	StartDate string
	EndDate   string
}

// FrequencyResult is either a single count (Single set) or one entry per event name.
type FrequencyResult struct {
	Single *domain.Frequency
	All    []domain.Frequency
}

// Engine computes statistics. The cache is optional.
type Engine struct {
	repo   StatsRepo
	cache  TrendCache
	log    *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewEngine returns an Engine. cache may be nil.
func NewEngine(repo StatsRepo, cache TrendCache, log *slog.Logger) *Engine {
	if log == nil {
		log = sl.Discard()
	}
	return &Engine{
		repo:   repo,
		cache:  cache,
		log:    log,
		tracer: otel.Tracer("github.com/shahwaiz14/event-tracker/internal/stats"),
		now:    time.Now,
	}
}

// Frequency counts the caller's logs. With an event name the count is restricted to days
// strictly between start and end; without one, logs are counted per name over all time
// and the dates are not consulted.
func (e *Engine) Frequency(ctx context.Context, callerID string, q FrequencyQuery) (FrequencyResult, error) {
	if callerID == "" {
		return FrequencyResult{}, apperr.ErrUnauthenticated
	}
	ctx, span := e.tracer.Start(ctx, "stats.Frequency")
	defer span.End()

	if q.EventName == "" {
		all, err := e.repo.CountAll(ctx, callerID)
		if err != nil {
			return FrequencyResult{}, spanErr(span, fmt.Errorf("count all: %w", err))
		}
		return FrequencyResult{All: all}, nil
	}

	start, end, err := e.dateRange(q.StartDate, q.EndDate)
	if err != nil {
		return FrequencyResult{}, err
	}
	span.SetAttributes(
		attribute.String("event.name", q.EventName),
		attribute.String("start_date", start),
		attribute.String("end_date", end),
	)
	n, err := e.repo.CountByName(ctx, callerID, q.EventName, start, end)
	if err != nil {
		return FrequencyResult{}, spanErr(span, fmt.Errorf("count by name: %w", err))
	}
	return FrequencyResult{Single: &domain.Frequency{EventName: q.EventName, Total: n}}, nil
}

// dateRange applies defaults and checks the format of both bounds.
func (e *Engine) dateRange(start, end string) (string, string, error) {
	verr := &apperr.ValidationError{}
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" {
		start = DefaultStartDate
	} else if _, err := time.Parse(domain.DateLayout, start); err != nil {
		verr.Add("start_date", dateFormatMessage)
	}
	if end == "" {
		end = e.now().Format(domain.DateLayout)
	} else if _, err := time.Parse(domain.DateLayout, end); err != nil {
		verr.Add("end_date", dateFormatMessage)
	}
	return start, end, verr.OrNil()
}

const dateFormatMessage = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."

// Trend returns the caller's per-day counts, from the cache when possible. The
// generation is read before the store is queried, so a result computed across an
// invalidation is stored under a generation that is already retired.
func (e *Engine) Trend(ctx context.Context, callerID string) (domain.Trend, error) {
	if callerID == "" {
		return nil, apperr.ErrUnauthenticated
	}
	ctx, span := e.tracer.Start(ctx, "stats.Trend")
	defer span.End()

	cacheable := false
	var gen int64
	if e.cache != nil {
		var err error
		gen, err = e.cache.Generation(ctx, callerID)
		if err != nil {
			e.log.WarnContext(ctx, "trend cache read failed", slog.String("user_id", callerID), sl.Err(err))
		} else {
			cacheable = true
			t, ok, err := e.cache.Get(ctx, callerID, gen)
			if err != nil {
				e.log.WarnContext(ctx, "trend cache read failed", slog.String("user_id", callerID), sl.Err(err))
			} else if ok {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return t, nil
			}
		}
	}

	buckets, err := e.repo.DailyCounts(ctx, callerID)
	if err != nil {
		return nil, spanErr(span, fmt.Errorf("daily counts: %w", err))
	}
	t := domain.BuildTrend(buckets)

	if cacheable {
		if err := e.cache.Set(ctx, callerID, gen, t); err != nil {
			e.log.WarnContext(ctx, "trend cache write failed", slog.String("user_id", callerID), sl.Err(err))
		}
	}
	return t, nil
}

// InvalidateStats retires the cached statistics of userIDs. Failures are logged; the
// cache TTL bounds how long a stale value can be served.
func (e *Engine) InvalidateStats(ctx context.Context, userIDs ...string) {
	if e.cache == nil || len(userIDs) == 0 {
		return
	}
	if err := e.cache.Invalidate(ctx, userIDs...); err != nil {
		e.log.WarnContext(ctx, "trend cache invalidation failed", slog.Int("users", len(userIDs)), sl.Err(err))
	}
}

func spanErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
