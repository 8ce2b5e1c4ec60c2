// Package server assembles the HTTP API: routes from every handler package plus the
// cross-cutting middleware chain.
package server

import (
	"log/slog"
	"net/http"

	"github.com/shahwaiz14/event-tracker/internal/audit"
	eventhandler "github.com/shahwaiz14/event-tracker/internal/event/handler"
	eventloghandler "github.com/shahwaiz14/event-tracker/internal/eventlog/handler"
	healthhandler "github.com/shahwaiz14/event-tracker/internal/health/handler"
	identityhandler "github.com/shahwaiz14/event-tracker/internal/identity/handler"
	"github.com/shahwaiz14/event-tracker/internal/lib/logger/sl"
	"github.com/shahwaiz14/event-tracker/internal/platform/validate"
	"github.com/shahwaiz14/event-tracker/internal/server/middleware"
	statshandler "github.com/shahwaiz14/event-tracker/internal/stats/handler"
)

// Deps holds the services behind the HTTP routes. Nil services make their routes answer 501.
type Deps struct {
	// Auth serves /auth/register and /auth/login.
	Auth identityhandler.AuthService
	// Events serves /events/.
	Events eventhandler.Registry
	// EventLogs serves /eventlogs/.
	EventLogs eventloghandler.Recorder
	// Stats serves /stats/.
	Stats statshandler.Engine
	// Tokens validates bearer tokens. If nil, every protected route answers 401.
	Tokens middleware.AccessValidator
	// AuditLogger records mutating authenticated requests. If nil, nothing is audited.
	AuditLogger audit.AuditLogger
	// HealthPinger is used by /healthz for readiness (e.g. *sql.DB). If nil, the DB check is skipped.
	HealthPinger healthhandler.Pinger
	// HealthCache is the optional stats cache checked by /healthz.
	HealthCache healthhandler.CachePinger
	// Metrics collects request metrics and serves /metrics. If nil, a fresh set is created.
	Metrics *middleware.Metrics
	// Log receives request and panic logs. If nil, logs are discarded.
	Log *slog.Logger
}

// NewHandler returns the root handler.
//
// Route → handler mapping:
//   - /auth/       → internal/identity/handler (public)
//   - /healthz     → internal/health/handler (public)
//   - /metrics     → Prometheus registry (public)
//   - /events/     → internal/event/handler (bearer)
//   - /eventlogs/  → internal/eventlog/handler (bearer)
//   - /stats/      → internal/stats/handler (bearer)
//
// Middleware order, outermost first: request context, recover, logging, metrics, mux.
// Protected routes additionally run RequireAuth then Audit.
func NewHandler(deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = sl.Discard()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = middleware.NewMetrics()
	}
	v := validate.New()

	requireAuth := middleware.RequireAuth(deps.Tokens)
	auditReq := middleware.Audit(deps.AuditLogger)
	protected := func(h http.Handler) http.Handler {
		return requireAuth(auditReq(h))
	}

	mux := http.NewServeMux()
	identityhandler.New(deps.Auth, v).Register(mux)
	healthhandler.NewServer(deps.HealthPinger, deps.HealthCache).Register(mux)
	mux.Handle("GET /metrics", metrics.Handler())
	eventhandler.New(deps.Events, v).Register(mux, protected)
	eventloghandler.New(deps.EventLogs, v).Register(mux, protected)
	statshandler.New(deps.Stats, v).Register(mux, protected)

	var h http.Handler = mux
	h = metrics.Middleware(h)
	h = middleware.Logging(log)(h)
	h = middleware.Recover(log, metrics.Panics)(h)
	h = middleware.RequestContext(h)
	return h
}
