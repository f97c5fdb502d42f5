package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/happyhourhub/backend/internal/auth"
	"github.com/happyhourhub/backend/internal/metrics"
)

// newTestCollector returns a collector on a private registry so tests do not
// clash on metric registration.
func newTestCollector() *metrics.Collector {
	return metrics.NewCollector(prometheus.NewRegistry())
}

// The repositories are nil on purpose: the handlers must reject these
// requests before touching any store.

func authedRequest(req *http.Request) *http.Request {
	userCtx := &auth.UserContext{ID: uuid.New(), Email: "drinker@example.com"}
	return req.WithContext(context.WithValue(req.Context(), auth.UserContextKey, userCtx))
}

func TestCreateInterest_RequiresAuth(t *testing.T) {
	h := NewInterestHandlers(nil, nil, newTestCollector())

	req := httptest.NewRequest(http.MethodPost, "/api/interests", strings.NewReader(`{"happy_hour_id":1}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	assertErrorEnvelope(t, rec)
}

func TestCreateInterest_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"happy_hour_id":`},
		{"missing happy_hour_id", `{}`},
		{"zero happy_hour_id", `{"happy_hour_id":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewInterestHandlers(nil, nil, newTestCollector())

			req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/interests", strings.NewReader(tt.body)))
			rec := httptest.NewRecorder()
			h.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			assertErrorEnvelope(t, rec)
		})
	}
}

func TestListInterests_RequiresAuth(t *testing.T) {
	h := NewInterestHandlers(nil, nil, newTestCollector())

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/interests", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	assertErrorEnvelope(t, rec)
}

func TestDeleteInterest_RequiresAuth(t *testing.T) {
	h := NewInterestHandlers(nil, nil, newTestCollector())

	req := httptest.NewRequest(http.MethodDelete, "/api/interests/1", nil)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	assertErrorEnvelope(t, rec)
}

func TestDeleteInterest_InvalidID(t *testing.T) {
	h := NewInterestHandlers(nil, nil, newTestCollector())

	req := authedRequest(httptest.NewRequest(http.MethodDelete, "/api/interests/abc", nil))
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	assertErrorEnvelope(t, rec)
}
