package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/homelinkcare/homecare-booking/internal/session"
	"github.com/homelinkcare/homecare-booking/pkg/logging"
)

// SessionIDHeader carries the guest session id on every flow request.
const SessionIDHeader = "X-Session-Id"

// FlowResetter discards any in-memory booking attempt tied to a session.
// Satisfied by *FlowHandler.
type FlowResetter interface {
	DropFlow(sessionID string)
}

// SessionHandler exposes the guest session lifecycle over HTTP.
type SessionHandler struct {
	sessions *session.Manager
	flows    FlowResetter
	logger   *logging.Logger
}

// NewSessionHandler creates a session handler. flows may be nil when no
// booking flow runs in-process.
func NewSessionHandler(sessions *session.Manager, flows FlowResetter, logger *logging.Logger) *SessionHandler {
	if sessions == nil {
		panic("handlers: session manager required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionHandler{sessions: sessions, flows: flows, logger: logger}
}

// CreateSessionRequest is the request body for starting a guest session.
type CreateSessionRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// SessionResponse describes an active guest session.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func sessionResponse(sess *session.GuestSession) SessionResponse {
	return SessionResponse{
		SessionID: sess.SessionID,
		Phone:     sess.Phone,
		Name:      sess.Name,
		Email:     sess.Email,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt(),
	}
}

// Create starts a guest session without any account.
// POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	sess, err := h.sessions.Create(r.Context(), "", req.Phone, req.Email, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidPhone):
			jsonError(w, "phone number is invalid", http.StatusBadRequest)
		case errors.Is(err, session.ErrInvalidName):
			jsonError(w, "name is required", http.StatusBadRequest)
		default:
			h.logger.Error("failed to create session", "error", err)
			jsonError(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse(sess))
}

// Get returns the caller's session while it is still valid.
// GET /api/v1/sessions/current
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(SessionIDHeader)
	if sessionID == "" {
		jsonError(w, "missing "+SessionIDHeader+" header", http.StatusUnauthorized)
		return
	}

	sess, err := h.sessions.GetActive(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionExpired):
			jsonError(w, "session expired, start a new one", http.StatusUnauthorized)
		case errors.Is(err, session.ErrSessionNotFound):
			jsonError(w, "session not found", http.StatusUnauthorized)
		default:
			h.logger.Error("failed to load session", "error", err)
			jsonError(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

// Delete ends the caller's session early.
// DELETE /api/v1/sessions/current
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(SessionIDHeader)
	if sessionID == "" {
		jsonError(w, "missing "+SessionIDHeader+" header", http.StatusUnauthorized)
		return
	}
	if err := h.sessions.Clear(r.Context(), sessionID); err != nil {
		h.logger.Error("failed to clear session", "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	// Ending the session discards any booking attempt drafted under it.
	if h.flows != nil {
		h.flows.DropFlow(sessionID)
	}
	w.WriteHeader(http.StatusNoContent)
}
