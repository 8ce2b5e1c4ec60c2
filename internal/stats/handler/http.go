// Package handler exposes the statistics engine over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
	"github.com/shahwaiz14/event-tracker/internal/platform/httpjson"
	"github.com/shahwaiz14/event-tracker/internal/platform/validate"
	"github.com/shahwaiz14/event-tracker/internal/server/middleware"
	"github.com/shahwaiz14/event-tracker/internal/stats/domain"
	"github.com/shahwaiz14/event-tracker/internal/stats/service"
)

// Engine is the statistics service the handler delegates to.
type Engine interface {
	Frequency(ctx context.Context, callerID string, q service.FrequencyQuery) (service.FrequencyResult, error)
	Trend(ctx context.Context, callerID string) (domain.Trend, error)
}

// Handler serves /stats/.
type Handler struct {
	svc      Engine
	validate *validate.Validator
}

// New returns a Handler. When svc is nil every route answers 501.
func New(svc Engine, v *validate.Validator) *Handler {
	if v == nil {
		v = validate.New()
	}
	return &Handler{svc: svc, validate: v}
}

// Register mounts the statistics routes on mux, each wrapped by wrap.
func (h *Handler) Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	if wrap == nil {
		wrap = func(next http.Handler) http.Handler { return next }
	}
	mux.Handle("GET /stats/event_frequency", wrap(http.HandlerFunc(h.frequency)))
	mux.Handle("GET /stats/event_trend", wrap(http.HandlerFunc(h.trend)))
}

type frequencyParams struct {
	EventName string `json:"event_name"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) frequency(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	params := frequencyParams{
		EventName: q.Get("event_name"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
	}
	// Dates only matter for a single-name count.
	if params.EventName == "" {
		params.StartDate, params.EndDate = "", ""
	}
	if err := h.validate.Struct(params); err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	res, err := h.svc.Frequency(r.Context(), callerID, service.FrequencyQuery(params))
	if err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	if res.Single != nil {
		httpjson.Write(w, http.StatusOK, res.Single)
		return
	}
	all := res.All
	if all == nil {
		all = []domain.Frequency{}
	}
	httpjson.Write(w, http.StatusOK, all)
}

func (h *Handler) trend(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Trend(r.Context(), callerID)
	if err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	if t == nil {
		t = domain.Trend{}
	}
	httpjson.Write(w, http.StatusOK, t)
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.svc == nil {
		httpjson.Write(w, http.StatusNotImplemented, httpjson.ErrorBody{Error: "statistics not configured"})
		return "", false
	}
	id, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpjson.WriteError(w, r, apperr.ErrUnauthenticated)
		return "", false
	}
	return id, true
}
