// Package handler exposes the event log recorder over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
	"github.com/shahwaiz14/event-tracker/internal/eventlog/domain"
	"github.com/shahwaiz14/event-tracker/internal/platform/httpjson"
	"github.com/shahwaiz14/event-tracker/internal/platform/validate"
	"github.com/shahwaiz14/event-tracker/internal/server/middleware"
)

// Recorder is the service the handler delegates to.
type Recorder interface {
	Record(ctx context.Context, callerID, eventName string, data json.RawMessage) (*domain.EventLog, error)
}

// Handler serves /eventlogs/.
type Handler struct {
	svc      Recorder
	validate *validate.Validator
}

// New returns a Handler. When svc is nil the route answers 501.
func New(svc Recorder, v *validate.Validator) *Handler {
	if v == nil {
		v = validate.New()
	}
	return &Handler{svc: svc, validate: v}
}

// Register mounts POST /eventlogs/ on mux, wrapped by wrap.
func (h *Handler) Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	if wrap == nil {
		wrap = func(next http.Handler) http.Handler { return next }
	}
	mux.Handle("POST /eventlogs/{$}", wrap(http.HandlerFunc(h.create)))
}

type recordRequest struct {
	EventName *string         `json:"event_name" validate:"required"`
	Data      json.RawMessage `json:"data"`
}

type recordResponse struct {
	EventName string          `json:"event_name"`
	Data      json.RawMessage `json:"data"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		httpjson.Write(w, http.StatusNotImplemented, httpjson.ErrorBody{Error: "event log recorder not configured"})
		return
	}
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpjson.WriteError(w, r, apperr.ErrUnauthenticated)
		return
	}
	var req recordRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	l, err := h.svc.Record(r.Context(), callerID, *req.EventName, req.Data)
	if err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, recordResponse{EventName: l.EventName, Data: l.Data})
}
