package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahwaiz14/event-tracker/internal/security"
)

func TestRequestContext_GeneratesID(t *testing.T) {
	var gotID, gotIP string
	h := RequestContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetRequestID(r.Context())
		gotIP = ClientIPFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/events/", nil)
	req.RemoteAddr = "192.0.2.7:51234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.NotEmpty(t, gotID)
	assert.Equal(t, gotID, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "192.0.2.7", gotIP)
}

func TestRequestContext_ReusesIncomingID(t *testing.T) {
	var gotID string
	h := RequestContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc-123", gotID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, strings.Repeat("x", maxRequestIDLen+1), gotID)
}

func TestClientIP(t *testing.T) {
	testCases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded first hop", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "10.0.0.2:80", "203.0.113.1"},
		{"forwarded single", map[string]string{"X-Forwarded-For": " 203.0.113.9 "}, "", "203.0.113.9"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:80", "198.51.100.4"},
		{"remote addr", nil, "10.0.0.2:80", "10.0.0.2"},
		{"remote addr without port", nil, "10.0.0.3", "10.0.0.3"},
		{"nothing", nil, "", "unknown"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ClientIP(req))
		})
	}
}

func TestClientIPFromContext_Unset(t *testing.T) {
	assert.Equal(t, "unknown", ClientIPFromContext(context.Background()))
}

func TestLogging_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodPost, "/eventlogs/", nil)
	req = req.WithContext(WithRequestID(req.Context(), "rid-1"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"path":"/eventlogs/"`)
	assert.Contains(t, out, `"request_id":"rid-1"`)
	assert.Contains(t, out, `"level":"WARN"`)
}

func TestLogging_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	h := Logging(slog.New(slog.NewJSONHandler(&buf, nil)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Contains(t, buf.String(), `"status":200`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

type countingPanics struct{ n int }

func (c *countingPanics) Inc() { c.n++ }

func TestRecover_RendersInternalError(t *testing.T) {
	var buf bytes.Buffer
	panics := &countingPanics{}
	h := Recover(slog.New(slog.NewTextHandler(&buf, nil)), panics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
	assert.Equal(t, 1, panics.n)
	assert.Contains(t, buf.String(), "recovered from panic")
}

func TestRecover_NilCounter(t *testing.T) {
	h := Recover(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRecover_RepanicsAbortHandler(t *testing.T) {
	h := Recover(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestMetrics_LabelsByPattern(t *testing.T) {
	m := NewMetrics()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /events/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := m.Middleware(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/1", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/2", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "GET /events/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, unmatchedRoute, "404")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.Panics.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_req_panics_recovered_total 1")
}

type auditCall struct {
	userID, action, resource, metadata string
}

type fakeAuditLogger struct {
	mu    sync.Mutex
	calls []auditCall
}

func (f *fakeAuditLogger) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, auditCall{userID, action, resource, metadata})
}

func TestAudit_MutatingRequests(t *testing.T) {
	logger := &fakeAuditLogger{}
	h := Audit(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	do := func(method, path string) {
		req := httptest.NewRequest(method, path, nil)
		req = req.WithContext(WithIdentity(req.Context(), "user-1", "alice"))
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	do(http.MethodPost, "/events/")
	do(http.MethodGet, "/events/")
	do(http.MethodDelete, "/events/4")

	require.Len(t, logger.calls, 2)
	assert.Equal(t, auditCall{"user-1", "create", "event", `{"status":201}`}, logger.calls[0])
	assert.Equal(t, auditCall{"user-1", "delete", "event", `{"status":204}`}, logger.calls[1])
}

func TestAudit_SkipsAnonymous(t *testing.T) {
	logger := &fakeAuditLogger{}
	h := Audit(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/eventlogs/", nil))
	assert.Empty(t, logger.calls)
}

func TestRequireAuth(t *testing.T) {
	tp, err := security.NewTestTokenProvider()
	require.NoError(t, err)
	token, _, err := tp.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	var gotUser, gotName string
	h := RequireAuth(tp)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = GetUserID(r.Context())
		gotName, _ = GetUsername(r.Context())
	}))

	testCases := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gotUser, gotName = "", ""
			req := httptest.NewRequest(http.MethodGet, "/events/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "user-1", gotUser)
				assert.Equal(t, "alice", gotName)
			} else {
				assert.Empty(t, gotUser)
				assert.JSONEq(t, `{"error":"authentication credentials were not provided or are invalid"}`, rec.Body.String())
			}
		})
	}
}
