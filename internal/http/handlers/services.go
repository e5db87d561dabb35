package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/homelinkcare/homecare-booking/internal/catalog"
	"github.com/homelinkcare/homecare-booking/internal/scheduling"
	"github.com/homelinkcare/homecare-booking/pkg/logging"
)

// ServicesHandler exposes the service catalog and slot availability.
type ServicesHandler struct {
	slots      *scheduling.Generator
	windowDays int
	logger     *logging.Logger
	now        func() time.Time
}

// NewServicesHandler creates a catalog/availability handler. windowDays is
// how far ahead dates are offered.
func NewServicesHandler(slots *scheduling.Generator, windowDays int, logger *logging.Logger) *ServicesHandler {
	if slots == nil {
		panic("handlers: slot generator required")
	}
	if windowDays <= 0 {
		windowDays = 14
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ServicesHandler{slots: slots, windowDays: windowDays, logger: logger, now: time.Now}
}

// List returns all bookable services.
// GET /api/v1/services
func (h *ServicesHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"services": catalog.List()})
}

// Dates returns the dates currently offered for a service. Weekends are
// skipped unless the service is an emergency one.
// GET /api/v1/services/{serviceID}/dates
func (h *ServicesHandler) Dates(w http.ResponseWriter, r *http.Request) {
	svc, err := catalog.Lookup(chi.URLParam(r, "serviceID"))
	if err != nil {
		jsonError(w, "unknown service", http.StatusNotFound)
		return
	}

	dates := h.slots.SelectableDates(h.now(), h.windowDays, svc)
	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format("2006-01-02"))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service_id": svc.ID,
		"dates":      formatted,
	})
}

// Slots returns the time slots for a service on a given date.
// GET /api/v1/services/{serviceID}/slots?date=YYYY-MM-DD
func (h *ServicesHandler) Slots(w http.ResponseWriter, r *http.Request) {
	svc, err := catalog.Lookup(chi.URLParam(r, "serviceID"))
	if err != nil {
		jsonError(w, "unknown service", http.StatusNotFound)
		return
	}

	date, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("date"), h.slots.Location())
	if err != nil {
		jsonError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	slots, err := h.slots.GenerateSlots(date, svc)
	if err != nil {
		if errors.Is(err, scheduling.ErrWeekendUnavailable) {
			jsonError(w, "weekends are unavailable for this service", http.StatusUnprocessableEntity)
			return
		}
		h.logger.Error("failed to generate slots", "error", err, "service", svc.ID)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"service_id": svc.ID,
		"date":       date.Format("2006-01-02"),
		"slots":      slots,
	})
}
