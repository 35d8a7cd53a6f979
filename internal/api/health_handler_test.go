package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthzHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	HealthzHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestReadyzHandler(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		transport  TransportHealth
		wantStatus int
	}{
		{"ready", &mockPinger{}, &mockTransportHealth{healthy: true}, http.StatusOK},
		{"no transport checker", &mockPinger{}, nil, http.StatusOK},
		{"database down", &mockPinger{err: errors.New("refused")}, &mockTransportHealth{healthy: true}, http.StatusServiceUnavailable},
		{"transport down", &mockPinger{}, &mockTransportHealth{healthy: false}, http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rec := httptest.NewRecorder()
			ReadyzHandler(tc.db, tc.transport).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if tc.wantStatus == http.StatusServiceUnavailable && rec.Header().Get("Retry-After") != "30" {
				t.Error("expected Retry-After: 30 on 503")
			}
		})
	}
}
