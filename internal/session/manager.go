package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homelinkcare/homecare-booking/pkg/logging"
)

// Manager owns the guest session lifecycle: mint, read-with-lazy-expiry,
// explicit invalidation. There is no background sweep; an expired session is
// discarded the next time it is read.
type Manager struct {
	store  Store
	logger *logging.Logger
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a session manager backed by the given store.
func NewManager(store Store, logger *logging.Logger, opts ...Option) *Manager {
	if store == nil {
		panic("session: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	m := &Manager{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create validates the contact details and mints a fresh session for the
// client, replacing any previous one.
func (m *Manager) Create(ctx context.Context, clientID, phone, email, name string) (*GuestSession, error) {
	normalized := NormalizePhone(phone)
	if !validPhone(normalized) {
		return nil, ErrInvalidPhone
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}

	sess := &GuestSession{
		SessionID: uuid.NewString(),
		Phone:     normalized,
		Email:     strings.TrimSpace(email),
		Name:      strings.TrimSpace(name),
		CreatedAt: m.now().UTC(),
	}
	// Anonymous clients are keyed by the minted session id itself.
	if strings.TrimSpace(clientID) == "" {
		clientID = sess.SessionID
	}
	if err := m.store.Put(ctx, clientID, sess); err != nil {
		return nil, err
	}
	m.logger.Info("guest session created", "session_id", sess.SessionID)
	return sess, nil
}

// GetActive returns the client's session while it is within its TTL. An
// expired session is cleared from the store and nil is returned with
// ErrSessionExpired so the caller can transparently mint a new one.
func (m *Manager) GetActive(ctx context.Context, clientID string) (*GuestSession, error) {
	sess, err := m.store.Get(ctx, clientID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if !sess.Valid(m.now()) {
		if err := m.store.Delete(ctx, clientID); err != nil {
			m.logger.Warn("failed to clear expired session", "error", err, "session_id", sess.SessionID)
		}
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Clear explicitly invalidates the client's session, e.g. after conversion to
// a full account.
func (m *Manager) Clear(ctx context.Context, clientID string) error {
	return m.store.Delete(ctx, clientID)
}
