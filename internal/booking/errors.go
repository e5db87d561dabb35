package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrPaymentInFlight is returned when payment resolution is requested
	// while a prior attempt for the same booking is still outstanding
	ErrPaymentInFlight = errors.New("booking: payment resolution already in flight")

	// ErrMissingConsent is returned when either treatment or data-processing
	// consent is absent
	ErrMissingConsent = errors.New("booking: both treatment and data-processing consent are required")

	// ErrInvalidPatientPhone is returned when a contact phone fails format validation
	ErrInvalidPatientPhone = errors.New("booking: contact phone is invalid")
)

// StepGuardViolation indicates the calling layer tried to force a transition
// whose guard does not hold. It signals a caller defect, not user error, and
// never changes machine state.
type StepGuardViolation struct {
	From   Stage
	To     Stage
	Reason string
}

func (e *StepGuardViolation) Error() string {
	return fmt.Sprintf("booking: cannot move from %s to %s: %s", e.From, e.To, e.Reason)
}

func guardViolation(from, to Stage, reason string) error {
	return &StepGuardViolation{From: from, To: to, Reason: reason}
}
