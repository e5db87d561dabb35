package session

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// TTL is how long a guest session remains valid after creation.
const TTL = 24 * time.Hour

var (
	// ErrInvalidPhone is returned when the phone number fails format validation
	ErrInvalidPhone = errors.New("session: phone number is invalid")

	// ErrInvalidName is returned when the guest name is missing
	ErrInvalidName = errors.New("session: name is required")

	// ErrSessionExpired indicates the stored session has passed its TTL and
	// was discarded
	ErrSessionExpired = errors.New("session: expired")

	// ErrSessionNotFound indicates no session exists for the client
	ErrSessionNotFound = errors.New("session: not found")
)

// GuestSession anchors a booking to an anonymous identity without requiring
// account registration. One session may back multiple sequential booking
// attempts until it expires.
type GuestSession struct {
	SessionID string    `json:"session_id"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ExpiresAt returns the moment the session stops being valid.
func (s *GuestSession) ExpiresAt() time.Time {
	return s.CreatedAt.Add(TTL)
}

// Valid reports whether the session is still within its TTL at now.
func (s *GuestSession) Valid(now time.Time) bool {
	return now.Sub(s.CreatedAt) < TTL
}

var phoneDigitsRe = regexp.MustCompile(`[0-9]+`)

// NormalizePhone strips formatting and returns a +<digits> representation, or
// an empty string when no digits are present.
func NormalizePhone(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	digits := strings.Join(phoneDigitsRe.FindAllString(value, -1), "")
	if digits == "" {
		return ""
	}
	return "+" + digits
}

// validPhone requires a normalized number with a plausible digit count.
func validPhone(normalized string) bool {
	if !strings.HasPrefix(normalized, "+") {
		return false
	}
	digits := len(normalized) - 1
	return digits >= 10 && digits <= 15
}
