// Package handler exposes registration and login over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/shahwaiz14/event-tracker/internal/identity/service"
	"github.com/shahwaiz14/event-tracker/internal/platform/httpjson"
	"github.com/shahwaiz14/event-tracker/internal/platform/validate"
)

// AuthService is the account service the handler delegates to.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*service.AuthResult, error)
	Login(ctx context.Context, username, password string) (*service.AuthResult, error)
}

// Handler serves /auth/.
type Handler struct {
	svc      AuthService
	validate *validate.Validator
}

// New returns a Handler. When svc is nil every route answers 501.
func New(svc AuthService, v *validate.Validator) *Handler {
	if v == nil {
		v = validate.New()
	}
	return &Handler{svc: svc, validate: v}
}

// Register mounts the unauthenticated auth routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", h.register)
	mux.HandleFunc("POST /auth/login", h.login)
}

type credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	UserID string `json:"user_id"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var req credentials
	if h.svc == nil {
		httpjson.Write(w, http.StatusNotImplemented, httpjson.ErrorBody{Error: "auth not configured"})
		return req, false
	}
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.WriteError(w, r, err)
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpjson.WriteError(w, r, err)
		return req, false
	}
	return req, true
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, registerResponse{UserID: res.UserID})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httpjson.WriteError(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, loginResponse{AccessToken: res.AccessToken, ExpiresAt: res.ExpiresAt.UTC()})
}
