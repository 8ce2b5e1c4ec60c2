package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/shahwaiz14/event-tracker/internal/lib/logger/sl"
	"github.com/shahwaiz14/event-tracker/internal/platform/httpjson"
)

const checkTimeout = 2 * time.Second

// Pinger is implemented by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger is implemented by the trend cache.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// Server answers readiness/liveness probes for load balancers and CI.
type Server struct {
	db    Pinger
	cache CachePinger
}

// NewServer returns a health server. Either dependency may be nil and is then skipped.
func NewServer(db Pinger, cache CachePinger) *Server {
	return &Server{db: db, cache: cache}
}

// Register mounts GET /healthz on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.healthz)
}

type response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthz reports 503 when Postgres is unreachable. The cache is optional, so a cache
// failure is reported but the service stays ready.
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	resp := response{Status: "ok"}
	status := http.StatusOK
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			slog.WarnContext(ctx, "health: database ping failed", sl.Err(err))
			resp.Status = "unavailable"
			resp.Checks = map[string]string{"database": "unavailable"}
			status = http.StatusServiceUnavailable
		}
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "health: cache ping failed", sl.Err(err))
			if resp.Checks == nil {
				resp.Checks = map[string]string{}
			}
			resp.Checks["cache"] = "unavailable"
		}
	}
	httpjson.Write(w, status, resp)
}
