package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/homelinkcare/homecare-booking/internal/booking"
	"github.com/homelinkcare/homecare-booking/internal/bookings"
	"github.com/homelinkcare/homecare-booking/internal/catalog"
	"github.com/homelinkcare/homecare-booking/internal/confirmation"
	"github.com/homelinkcare/homecare-booking/internal/observability/metrics"
	"github.com/homelinkcare/homecare-booking/internal/payments"
	"github.com/homelinkcare/homecare-booking/internal/scheduling"
	"github.com/homelinkcare/homecare-booking/internal/session"
	"github.com/homelinkcare/homecare-booking/pkg/logging"
)

// FlowHandler drives the step-gated booking flow server-side. Each guest
// session owns at most one in-progress attempt; a confirmed booking removes
// it so the next request starts fresh.
type FlowHandler struct {
	sessions      *session.Manager
	slots         *scheduling.Generator
	resolver      *payments.Resolver
	confirmations *confirmation.Generator
	store         *bookings.Service
	repo          *bookings.Repository
	metrics       *metrics.BookingMetrics
	logger        *logging.Logger
	now           func() time.Time

	mu    sync.Mutex
	flows map[string]*booking.Machine
}

var _ FlowResetter = (*FlowHandler)(nil)

// FlowHandlerDeps bundles the engine collaborators the flow needs.
type FlowHandlerDeps struct {
	Sessions      *session.Manager
	Slots         *scheduling.Generator
	Resolver      *payments.Resolver
	Confirmations *confirmation.Generator
	Store         *bookings.Service
	Repo          *bookings.Repository
	Metrics       *metrics.BookingMetrics
	Logger        *logging.Logger
}

// NewFlowHandler creates the booking flow handler.
func NewFlowHandler(deps FlowHandlerDeps) *FlowHandler {
	if deps.Sessions == nil || deps.Slots == nil || deps.Resolver == nil || deps.Confirmations == nil {
		panic("handlers: flow requires sessions, slots, resolver and confirmations")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &FlowHandler{
		sessions:      deps.Sessions,
		slots:         deps.Slots,
		resolver:      deps.Resolver,
		confirmations: deps.Confirmations,
		store:         deps.Store,
		repo:          deps.Repo,
		metrics:       deps.Metrics,
		logger:        logger,
		now:           time.Now,
		flows:         make(map[string]*booking.Machine),
	}
}

// activeSession resolves the caller's session or writes the error response.
func (h *FlowHandler) activeSession(w http.ResponseWriter, r *http.Request) (*session.GuestSession, bool) {
	sessionID := r.Header.Get(SessionIDHeader)
	if sessionID == "" {
		jsonError(w, "missing "+SessionIDHeader+" header", http.StatusUnauthorized)
		return nil, false
	}
	sess, err := h.sessions.GetActive(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionExpired):
			h.DropFlow(sessionID)
			jsonError(w, "session expired, start a new one", http.StatusUnauthorized)
		case errors.Is(err, session.ErrSessionNotFound):
			h.DropFlow(sessionID)
			jsonError(w, "session not found", http.StatusUnauthorized)
		default:
			h.logger.Error("failed to load session", "error", err)
			jsonError(w, "internal error", http.StatusInternalServerError)
		}
		return nil, false
	}
	return sess, true
}

func (h *FlowHandler) machineFor(sess *session.GuestSession) *booking.Machine {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.flows[sess.SessionID]
	if !ok {
		m = booking.NewMachine(sess, h.logger)
		h.flows[sess.SessionID] = m
	}
	return m
}

// DropFlow discards the in-memory booking attempt for a session, if any.
// Called when the session ends or vanishes so an abandoned draft does not
// outlive its session.
func (h *FlowHandler) DropFlow(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.flows, sessionID)
}

// flowState is the snapshot returned after every flow mutation.
type flowState struct {
	Stage booking.Stage `json:"stage"`
	Draft booking.Draft `json:"draft"`
}

func (h *FlowHandler) writeState(w http.ResponseWriter, status int, m *booking.Machine) {
	writeJSON(w, status, flowState{Stage: m.Stage(), Draft: m.Draft()})
}

// writeGuardError maps engine errors to HTTP responses. A guard violation is
// a caller defect (409), everything else falls through to 500.
func (h *FlowHandler) writeGuardError(w http.ResponseWriter, err error) {
	var guard *booking.StepGuardViolation
	switch {
	case errors.As(err, &guard):
		h.metrics.ObserveGuardViolation()
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "step guard violation",
			"from":  string(guard.From),
			"to":    string(guard.To),
			"why":   guard.Reason,
		})
	case errors.Is(err, booking.ErrPaymentInFlight):
		jsonError(w, "a payment is already being processed for this booking", http.StatusConflict)
	default:
		h.logger.Error("booking flow error", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

// State returns the current stage and draft.
// GET /api/v1/bookings/flow
func (h *FlowHandler) State(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.activeSession(w, r)
	if !ok {
		return
	}
	h.writeState(w, http.StatusOK, h.machineFor(sess))
}

// SelectServiceRequest chooses the service on the first stage.
type SelectServiceRequest struct {
	ServiceID string `json:"service_id"`
}

// SelectService records the chosen service and advances to scheduling.
// POST /api/v1/bookings/flow/service
func (h *FlowHandler) SelectService(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.activeSession(w, r)
	if !ok {
		return
	}
	var req SelectServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	svc, err := catalog.Lookup(req.ServiceID)
	if err != nil {
		jsonError(w, "unknown service", http.StatusNotFound)
		return
	}

	m := h.machineFor(sess)
	if err := m.SelectService(svc); err != nil {
		h.writeGuardError(w, err)
		return
	}
	if err := m.Advance(); err != nil {
		h.writeGuardError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, m)
}

// SetScheduleRequest records the scheduling stage output.
type SetScheduleRequest struct {
	Date                string          `json:"date"` // YYYY-MM-DD
	SlotID              string          `json:"slot_id"`
	Address             booking.Address `json:"address"`
	SpecialRequirements string          `json:"special_requirements,omitempty"`
}

// SetSchedule resolves the chosen slot, records it and advances to patient
// details. The slot is re-derived server-side so a stale or fabricated slot
// id cannot be booked.
// POST /api/v1/bookings/flow/schedule
func (h *FlowHandler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.activeSession(w, r)
	if !ok {
		return
	}
	var req SetScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	m := h.machineFor(sess)
	draft := m.Draft()
	if draft.Service == nil {
		jsonError(w, "select a service first", http.StatusConflict)
		return
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, h.slots.Location())
	if err != nil {
		jsonError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	slot, err := h.slots.FindSlot(date, *draft.Service, req.SlotID)
	if err != nil {
		if errors.Is(err, scheduling.ErrWeekendUnavailable) {
			jsonError(w, "weekends are unavailable for this service", http.StatusUnprocessableEntity)
			return
		}
		jsonError(w, "slot not found for that date", http.StatusNotFound)
		return
	}
	if !slot.Available {
		jsonError(w, "slot is no longer available", http.StatusConflict)
		return
	}

	sel := booking.ScheduleSelection{
		Date:                date,
		TimeSlot:            slot,
		Address:             req.Address,
		SpecialRequirements: req.SpecialRequirements,
	}
	if err := m.SetSchedule(sel); err != nil {
		h.writeGuardError(w, err)
		return
	}
	if err := m.Advance(); err != nil {
		h.writeGuardError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, m)
}

// SetPatient records patient details and advances to payment.
// POST /api/v1/bookings/flow/patient
func (h *FlowHandler) SetPatient(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.activeSession(w, r)
	if !ok {
		return
	}
	var req booking.PatientInformation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	m := h.machineFor(sess)
	if err := m.SetPatient(req); err != nil {
		h.writeGuardError(w, err)
		return
	}
	if err := m.Advance(); err != nil {
		h.writeGuardError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, m)
}

// Back moves one stage backward, keeping downstream data in the draft.
// POST /api/v1/bookings/flow/back
func (h *FlowHandler) Back(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.activeSession(w, r)
	if !ok {
		return
	}
	m := h.machineFor(sess)
	if err := m.Back(); err != nil {
		h.writeGuardError(w, err)
		return
	}
	h.writeState(w, http.StatusOK, m)
}

// SubmitRequest triggers payment resolution and, on success, confirmation.
type SubmitRequest struct {
	Method    payments.Method `json:"method"`
	PromoCode string          `json:"promo_code,omitempty"`
}

// SubmitResponse is returned for a confirmed or payment-pending booking.
type SubmitResponse struct {
	Confirmation *confirmation.BookingConfirmation `json:"confirmation"`
	Payment      payments.PaymentResult            `json:"payment"`
}

// Submit resolves payment for the drafted booking and produces the
// confirmation. A failed payment keeps the flow on the payment stage and
// returns 402 with the failure reason; the patient can retry with another
// method. A duplicate submit while one is being processed gets 409.
// POST /api/v1/bookings/flow/submit
func (h *FlowHandler) Submit(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	sess, ok := h.activeSession(w, r)
	if !ok {
		return
	}
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	m := h.machineFor(sess)
	draft := m.Draft()
	if draft.Service == nil || draft.Schedule == nil || draft.Patient == nil {
		jsonError(w, "booking draft is incomplete", http.StatusConflict)
		return
	}

	amount := draft.Service.PriceMinor
	if req.PromoCode != "" {
		discounted, err := payments.ApplyPromo(amount, req.PromoCode)
		if err != nil {
			jsonError(w, "promo code invalid", http.StatusBadRequest)
			return
		}
		amount = discounted
	}

	if err := m.BeginPayment(); err != nil {
		h.writeGuardError(w, err)
		return
	}

	payer := payments.PayerContact{
		Name:  draft.Patient.FirstName + " " + draft.Patient.LastName,
		Phone: draft.Patient.Phone,
		Email: draft.Patient.Email,
	}
	result, err := h.resolver.Resolve(r.Context(), req.Method, amount, payer)
	if err != nil {
		// Record a failed result so the latch clears and the flow stays on
		// the payment stage for a retry.
		_ = m.CompletePayment(payments.PaymentResult{
			Method:        req.Method,
			AmountMinor:   amount,
			Status:        payments.StatusFailed,
			FailureReason: err.Error(),
		})
		if errors.Is(err, payments.ErrUnknownMethod) {
			jsonError(w, "unknown payment method", http.StatusBadRequest)
			return
		}
		h.logger.Error("payment resolution failed", "error", err)
		jsonError(w, "payment could not be processed", http.StatusBadGateway)
		return
	}
	if err := m.CompletePayment(result); err != nil {
		h.writeGuardError(w, err)
		return
	}
	h.metrics.ObservePaymentOutcome(string(result.Method), string(result.Status))

	if result.Status == payments.StatusFailed {
		writeJSON(w, http.StatusPaymentRequired, map[string]any{
			"error":   "payment failed",
			"payment": result,
		})
		return
	}

	if err := m.Advance(); err != nil {
		h.writeGuardError(w, err)
		return
	}

	draft = m.Draft()
	conf, err := h.confirmations.Generate(r.Context(), *draft.Service, *draft.Schedule, *draft.Patient, *draft.Payment)
	if err != nil {
		h.logger.Error("failed to generate confirmation", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	if h.store != nil {
		if err := h.store.Finalize(r.Context(), draft, conf); err != nil {
			h.logger.Error("failed to store booking", "error", err, "booking_id", conf.BookingID)
			jsonError(w, "booking could not be stored", http.StatusInternalServerError)
			return
		}
	}

	h.DropFlow(sess.SessionID)
	h.metrics.ObserveSubmitLatency(h.now().Sub(start).Seconds())
	writeJSON(w, http.StatusCreated, SubmitResponse{Confirmation: conf, Payment: result})
}

// GetBooking looks up a stored booking by its public id.
// GET /api/v1/bookings/{bookingID}
func (h *FlowHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		jsonError(w, "booking lookup not configured", http.StatusServiceUnavailable)
		return
	}
	rec, err := h.repo.GetByBookingID(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			jsonError(w, "booking not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load booking", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
