package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homelinkcare/homecare-booking/internal/scheduling"
)

func newServicesHandler(t *testing.T, now time.Time) *ServicesHandler {
	t.Helper()
	gen := scheduling.NewGenerator(scheduling.AlwaysAvailable{}, nil, scheduling.WithLocation(time.UTC))
	h := NewServicesHandler(gen, 14, nil)
	h.now = func() time.Time { return now }
	return h
}

func servicesRouter(h *ServicesHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/services", h.List)
	r.Get("/api/v1/services/{serviceID}/dates", h.Dates)
	r.Get("/api/v1/services/{serviceID}/slots", h.Slots)
	return r
}

func TestListServices(t *testing.T) {
	h := newServicesHandler(t, time.Now())
	rec := httptest.NewRecorder()
	servicesRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/services", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Services []struct {
			ID         string `json:"id"`
			PriceMinor int64  `json:"price_minor"`
		} `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Services, 8)
	for _, svc := range resp.Services {
		assert.Equal(t, int64(500000), svc.PriceMinor, "flat assessment fee for %s", svc.ID)
	}
}

func TestDatesSkipWeekends(t *testing.T) {
	// Monday 2025-03-10.
	h := newServicesHandler(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	rec := httptest.NewRecorder()
	servicesRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/services/general-checkup/dates", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Dates []string `json:"dates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Dates, 10, "14 days minus two weekends")
	assert.NotContains(t, resp.Dates, "2025-03-15")
	assert.NotContains(t, resp.Dates, "2025-03-16")
}

func TestDatesIncludeWeekendsForEmergency(t *testing.T) {
	h := newServicesHandler(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	rec := httptest.NewRecorder()
	servicesRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/services/emergency-response/dates", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Dates []string `json:"dates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Dates, 14)
	assert.Contains(t, resp.Dates, "2025-03-15")
}

func TestDatesUnknownService(t *testing.T) {
	h := newServicesHandler(t, time.Now())
	rec := httptest.NewRecorder()
	servicesRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/services/nope/dates", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSlotsForWeekday(t *testing.T) {
	h := newServicesHandler(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	rec := httptest.NewRecorder()
	servicesRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/services/general-checkup/slots?date=2025-03-11", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Slots []struct {
			ID                  string `json:"id"`
			DisplayTime         string `json:"display_time"`
			IsOffHoursEmergency bool   `json:"is_off_hours_emergency"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Slots, 10, "hourly slots 08:00 through 17:00")
	for _, s := range resp.Slots {
		assert.False(t, s.IsOffHoursEmergency)
	}
}

func TestSlotsWeekendRejected(t *testing.T) {
	h := newServicesHandler(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	rec := httptest.NewRecorder()
	servicesRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/services/general-checkup/slots?date=2025-03-15", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSlotsBadDate(t *testing.T) {
	h := newServicesHandler(t, time.Now())
	rec := httptest.NewRecorder()
	servicesRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/services/general-checkup/slots?date=15-03-2025", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
