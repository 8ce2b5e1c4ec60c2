package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
	"github.com/shahwaiz14/event-tracker/internal/event/domain"
	"github.com/shahwaiz14/event-tracker/internal/event/service"
	"github.com/shahwaiz14/event-tracker/internal/server/middleware"
)

type fakeRegistry struct {
	names      []string
	created    service.CreateInput
	updated    service.UpdateInput
	updatedID  int64
	deletedID  int64
	lastSearch string
	lastCaller string
	err        error
	event      *domain.Event
}

func (f *fakeRegistry) List(_ context.Context, callerID, search string) ([]string, error) {
	f.lastCaller, f.lastSearch = callerID, search
	return f.names, f.err
}

func (f *fakeRegistry) Create(_ context.Context, callerID string, in service.CreateInput) (*domain.Event, error) {
	f.lastCaller, f.created = callerID, in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Event{ID: 1, OwnerID: callerID, Name: in.Name, Description: in.Description}, nil
}

func (f *fakeRegistry) Retrieve(_ context.Context, callerID string, id int64) (*domain.Event, error) {
	f.lastCaller = callerID
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeRegistry) Update(_ context.Context, callerID string, id int64, in service.UpdateInput) (*domain.Event, error) {
	f.lastCaller, f.updatedID, f.updated = callerID, id, in
	if f.err != nil {
		return nil, f.err
	}
	e := &domain.Event{ID: id, Name: "unchanged"}
	if in.Name != nil {
		e.Name = *in.Name
	}
	e.Description = in.Description
	return e, nil
}

func (f *fakeRegistry) Delete(_ context.Context, callerID string, id int64) error {
	f.lastCaller, f.deletedID = callerID, id
	return f.err
}

const testCaller = "8a6e0804-2bd0-4672-b79d-d97027f9071a"

func asCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), testCaller, "alice")))
	})
}

func newMux(svc Registry) *http.ServeMux {
	mux := http.NewServeMux()
	New(svc, nil).Register(mux, asCaller)
	return mux
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestList(t *testing.T) {
	svc := &fakeRegistry{names: []string{"view", "click"}}
	rec := do(t, newMux(svc), http.MethodGet, "/events/?search=cl", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["view","click"]`, rec.Body.String())
	assert.Equal(t, "cl", svc.lastSearch)
	assert.Equal(t, testCaller, svc.lastCaller)
}

func TestList_EmptyIsArray(t *testing.T) {
	rec := do(t, newMux(&fakeRegistry{}), http.MethodGet, "/events/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreate(t *testing.T) {
	svc := &fakeRegistry{}
	rec := do(t, newMux(svc), http.MethodPost, "/events/", `{"name":"click","description":"Button click"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"name":"click","description":"Button click"}`, rec.Body.String())
	assert.Equal(t, "click", svc.created.Name)
}

func TestCreate_MissingName(t *testing.T) {
	rec := do(t, newMux(&fakeRegistry{}), http.MethodPost, "/events/", `{"description":"x"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":{"name":["This field is required."]}}`, rec.Body.String())
}

func TestCreate_Duplicate(t *testing.T) {
	rec := do(t, newMux(&fakeRegistry{err: apperr.ErrDuplicate}), http.MethodPost, "/events/", `{"name":"click"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Event with this name already exists."}`, rec.Body.String())
}

func TestCreate_MalformedBody(t *testing.T) {
	rec := do(t, newMux(&fakeRegistry{}), http.MethodPost, "/events/", `{"name":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["errors"], "body")
}

func TestRetrieve(t *testing.T) {
	svc := &fakeRegistry{event: &domain.Event{ID: 3, Name: "click"}}
	rec := do(t, newMux(svc), http.MethodGet, "/events/3", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"click","description":null}`, rec.Body.String())
}

func TestRetrieve_NotFound(t *testing.T) {
	rec := do(t, newMux(&fakeRegistry{err: apperr.ErrNotFound}), http.MethodGet, "/events/3", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}

func TestNonIntegerIDIsNotFound(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodPut, http.MethodDelete} {
		rec := do(t, newMux(&fakeRegistry{}), method, "/events/abc", `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
	}
}

func TestPatch_OnlyPresentFields(t *testing.T) {
	svc := &fakeRegistry{}
	rec := do(t, newMux(svc), http.MethodPatch, "/events/5", `{"name":"tap"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), svc.updatedID)
	require.NotNil(t, svc.updated.Name)
	assert.Equal(t, "tap", *svc.updated.Name)
	assert.False(t, svc.updated.SetDescription)
}

func TestPatch_NullDescriptionClears(t *testing.T) {
	svc := &fakeRegistry{}
	rec := do(t, newMux(svc), http.MethodPatch, "/events/5", `{"description":null}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.updated.Name)
	assert.True(t, svc.updated.SetDescription)
	assert.Nil(t, svc.updated.Description)
}

func TestPatch_NullName(t *testing.T) {
	rec := do(t, newMux(&fakeRegistry{}), http.MethodPatch, "/events/5", `{"name":null}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":{"name":["This field may not be null."]}}`, rec.Body.String())
}

func TestPut_RequiresName(t *testing.T) {
	rec := do(t, newMux(&fakeRegistry{}), http.MethodPut, "/events/5", `{"description":"d"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":{"name":["This field is required."]}}`, rec.Body.String())
}

func TestDelete(t *testing.T) {
	svc := &fakeRegistry{}
	rec := do(t, newMux(svc), http.MethodDelete, "/events/9", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, int64(9), svc.deletedID)
}

func TestNoCallerIsUnauthorized(t *testing.T) {
	mux := http.NewServeMux()
	New(&fakeRegistry{}, nil).Register(mux, nil)

	rec := do(t, mux, http.MethodGet, "/events/", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNilService(t *testing.T) {
	mux := http.NewServeMux()
	New(nil, nil).Register(mux, asCaller)

	rec := do(t, mux, http.MethodGet, "/events/", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
