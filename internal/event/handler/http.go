// Package handler exposes the event registry over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
	"github.com/shahwaiz14/event-tracker/internal/event/domain"
	"github.com/shahwaiz14/event-tracker/internal/event/service"
	"github.com/shahwaiz14/event-tracker/internal/platform/httpjson"
	"github.com/shahwaiz14/event-tracker/internal/platform/validate"
	"github.com/shahwaiz14/event-tracker/internal/server/middleware"
)

// Registry is the event registry the handler delegates to.
type Registry interface {
	List(ctx context.Context, callerID, search string) ([]string, error)
	Create(ctx context.Context, callerID string, in service.CreateInput) (*domain.Event, error)
	Retrieve(ctx context.Context, callerID string, id int64) (*domain.Event, error)
	Update(ctx context.Context, callerID string, id int64, in service.UpdateInput) (*domain.Event, error)
	Delete(ctx context.Context, callerID string, id int64) error
}

// Handler serves /events/.
type Handler struct {
	svc      Registry
	validate *validate.Validator
}

// New returns a Handler. When svc is nil every route answers 501.
func New(svc Registry, v *validate.Validator) *Handler {
	if v == nil {
		v = validate.New()
	}
	return &Handler{svc: svc, validate: v}
}

// Register mounts the event routes on mux, each wrapped by wrap (typically auth).
func (h *Handler) Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	if wrap == nil {
		wrap = func(next http.Handler) http.Handler { return next }
	}
	mux.Handle("GET /events/{$}", wrap(http.HandlerFunc(h.list)))
	mux.Handle("POST /events/{$}", wrap(http.HandlerFunc(h.create)))
	mux.Handle("GET /events/{id}", wrap(http.HandlerFunc(h.retrieve)))
	mux.Handle("PATCH /events/{id}", wrap(http.HandlerFunc(h.partialUpdate)))
	mux.Handle("PUT /events/{id}", wrap(http.HandlerFunc(h.fullUpdate)))
	mux.Handle("DELETE /events/{id}", wrap(http.HandlerFunc(h.delete)))
}

type createRequest struct {
	Name        *string `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
}

type eventResponse struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func toResponse(e *domain.Event) eventResponse {
	return eventResponse{Name: e.Name, Description: e.Description}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	names, err := h.svc.List(r.Context(), callerID, r.URL.Query().Get("search"))
	if err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	httpjson.Write(w, http.StatusOK, names)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	e, err := h.svc.Create(r.Context(), callerID, service.CreateInput{Name: *req.Name, Description: req.Description})
	if err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) retrieve(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.svc.Retrieve(r.Context(), callerID, id)
	if err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toResponse(e))
}

func (h *Handler) partialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *Handler) fullUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

// update applies PATCH and PUT. Only fields present in the body are changed; PUT
// additionally requires name.
func (h *Handler) update(w http.ResponseWriter, r *http.Request, full bool) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body map[string]json.RawMessage
	if err := httpjson.Decode(w, r, &body); err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	in, err := parseUpdate(body, full)
	if err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	e, err := h.svc.Update(r.Context(), callerID, id, in)
	if err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toResponse(e))
}

func parseUpdate(body map[string]json.RawMessage, full bool) (service.UpdateInput, error) {
	var in service.UpdateInput
	verr := &apperr.ValidationError{}

	if raw, ok := body["name"]; ok {
		if isNull(raw) {
			verr.Add("name", "This field may not be null.")
		} else {
			var name string
			if err := json.Unmarshal(raw, &name); err != nil {
				verr.Add("name", "Not a valid string.")
			} else {
				in.Name = &name
			}
		}
	} else if full {
		verr.Add("name", "This field is required.")
	}

	if raw, ok := body["description"]; ok {
		in.SetDescription = true
		if !isNull(raw) {
			var desc string
			if err := json.Unmarshal(raw, &desc); err != nil {
				verr.Add("description", "Not a valid string.")
			} else {
				in.Description = &desc
			}
		}
	}
	return in, verr.OrNil()
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), callerID, id); err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusNoContent, nil)
}

// caller returns the authenticated user id, writing the error response when the
// handler cannot proceed.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.svc == nil {
		httpjson.Write(w, http.StatusNotImplemented, httpjson.ErrorBody{Error: "event registry not configured"})
		return "", false
	}
	id, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpjson.WriteError(w, r, apperr.ErrUnauthenticated)
		return "", false
	}
	return id, true
}

// pathID parses {id}. Anything that is not a positive integer cannot name an event.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpjson.WriteError(w, r, apperr.ErrNotFound)
		return 0, false
	}
	return id, true
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
