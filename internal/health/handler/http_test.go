package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// mockPinger implements Pinger and CachePinger for tests.
type mockPinger struct {
	pingErr error
}

func (m *mockPinger) PingContext(context.Context) error {
	return m.pingErr
}

func (m *mockPinger) Ping(context.Context) error {
	return m.pingErr
}

func probe(t *testing.T, srv *Server) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	srv.Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	return rec
}

func TestHealthz_NilDependencies(t *testing.T) {
	rec := probe(t, NewServer(nil, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("body = %s", got)
	}
}

func TestHealthz_DatabaseHealthy(t *testing.T) {
	rec := probe(t, NewServer(&mockPinger{}, &mockPinger{}))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHealthz_DatabaseDown(t *testing.T) {
	rec := probe(t, NewServer(&mockPinger{pingErr: errors.New("connection refused")}, nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"database":"unavailable"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHealthz_CacheDownStaysReady(t *testing.T) {
	rec := probe(t, NewServer(&mockPinger{}, &mockPinger{pingErr: errors.New("redis down")}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"cache":"unavailable"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
