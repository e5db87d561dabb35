package booking

import (
	"sync"

	"github.com/homelinkcare/homecare-booking/internal/catalog"
	"github.com/homelinkcare/homecare-booking/internal/payments"
	"github.com/homelinkcare/homecare-booking/internal/session"
	"github.com/homelinkcare/homecare-booking/pkg/logging"
)

// Stage is one of the five ordered steps of the guided booking flow.
type Stage string

const (
	StageServiceSelection Stage = "service_selection"
	StageScheduling       Stage = "scheduling"
	StagePatientDetails   Stage = "patient_details"
	StagePayment          Stage = "payment"
	StageConfirmation     Stage = "confirmation"
)

// order maps stages to their position; the flow is linear with no skipping.
var order = map[Stage]int{
	StageServiceSelection: 0,
	StageScheduling:       1,
	StagePatientDetails:   2,
	StagePayment:          3,
	StageConfirmation:     4,
}

var stages = []Stage{
	StageServiceSelection,
	StageScheduling,
	StagePatientDetails,
	StagePayment,
	StageConfirmation,
}

// Machine drives one booking attempt through the four gated stages. Each
// stage's output is recorded with a setter valid only for the current stage;
// Advance checks the stage guard and refuses to move without it. Reaching
// confirmation is terminal: a new booking starts a fresh Machine, optionally
// reusing the same guest session.
//
// A Machine is safe for concurrent use. In particular, BeginPayment is
// atomic: when several callers race, exactly one acquires the in-flight
// latch and the rest get ErrPaymentInFlight.
type Machine struct {
	mu              sync.Mutex
	stage           Stage
	draft           Draft
	paymentInFlight bool
	logger          *logging.Logger
}

// NewMachine begins a booking attempt anchored to the given guest session.
func NewMachine(sess *session.GuestSession, logger *logging.Logger) *Machine {
	if logger == nil {
		logger = logging.Default()
	}
	return &Machine{
		stage:  StageServiceSelection,
		draft:  Draft{Session: sess},
		logger: logger,
	}
}

// Stage returns the current stage.
func (m *Machine) Stage() Stage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stage
}

// Draft returns a copy of the accumulated draft.
func (m *Machine) Draft() Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// Completed reports whether the machine has reached confirmation.
func (m *Machine) Completed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stage == StageConfirmation
}

// SelectService records the chosen service. Only valid while on the
// service-selection stage; to change the service later, navigate back first.
func (m *Machine) SelectService(svc catalog.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage != StageServiceSelection {
		return guardViolation(m.stage, StageServiceSelection, "service can only be set on the service-selection stage")
	}
	m.draft.Service = &svc
	return nil
}

// SetSchedule records the schedule selection. Only valid on the scheduling
// stage.
func (m *Machine) SetSchedule(sel ScheduleSelection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage != StageScheduling {
		return guardViolation(m.stage, StageScheduling, "schedule can only be set on the scheduling stage")
	}
	m.draft.Schedule = &sel
	return nil
}

// SetPatient records patient information. Only valid on the patient-details
// stage.
func (m *Machine) SetPatient(p PatientInformation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage != StagePatientDetails {
		return guardViolation(m.stage, StagePatientDetails, "patient details can only be set on the patient-details stage")
	}
	m.draft.Patient = &p
	return nil
}

// BeginPayment marks a payment resolution as outstanding for this attempt.
// A second call before CompletePayment returns ErrPaymentInFlight, which
// prevents duplicate submission.
func (m *Machine) BeginPayment() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage != StagePayment {
		return guardViolation(m.stage, StagePayment, "payment can only begin on the payment stage")
	}
	if m.paymentInFlight {
		return ErrPaymentInFlight
	}
	m.paymentInFlight = true
	return nil
}

// CompletePayment records the terminal payment result and clears the
// in-flight latch. A failed result keeps the machine on the payment stage so
// the patient can retry with another method.
func (m *Machine) CompletePayment(result payments.PaymentResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage != StagePayment {
		return guardViolation(m.stage, StagePayment, "no payment stage in progress")
	}
	m.paymentInFlight = false
	m.draft.Payment = &result
	return nil
}

// PaymentInFlight reports whether a resolution is outstanding.
func (m *Machine) PaymentInFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paymentInFlight
}

// Advance moves to the next stage if the current stage's guard holds,
// otherwise it returns a StepGuardViolation and state is unchanged.
func (m *Machine) Advance() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stage == StageConfirmation {
		return guardViolation(m.stage, m.stage, "confirmation is terminal")
	}
	next := stages[order[m.stage]+1]
	switch m.stage {
	case StageServiceSelection:
		if m.draft.Service == nil {
			return guardViolation(m.stage, next, "no service selected")
		}
	case StageScheduling:
		if !m.draft.Schedule.Complete() {
			return guardViolation(m.stage, next, "schedule selection incomplete")
		}
	case StagePatientDetails:
		if err := m.draft.Patient.Validate(); err != nil {
			return guardViolation(m.stage, next, err.Error())
		}
	case StagePayment:
		if m.paymentInFlight {
			return guardViolation(m.stage, next, "payment resolution still in flight")
		}
		if m.draft.Payment == nil {
			return guardViolation(m.stage, next, "no payment result")
		}
		if m.draft.Payment.Status == payments.StatusFailed {
			return guardViolation(m.stage, next, "payment failed")
		}
	}
	m.stage = next
	m.logger.Debug("booking stage advanced", "stage", m.stage)
	return nil
}

// Back moves one stage backward. Downstream data already captured stays in
// the draft, pending re-confirmation on the way forward. Backing out of the
// first stage or a confirmed booking is a caller defect.
func (m *Machine) Back() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.stage {
	case StageServiceSelection:
		return guardViolation(m.stage, m.stage, "no earlier stage")
	case StageConfirmation:
		return guardViolation(m.stage, m.stage, "confirmed bookings are immutable")
	}
	if m.paymentInFlight {
		return guardViolation(m.stage, m.stage, "payment resolution still in flight")
	}
	m.stage = stages[order[m.stage]-1]
	return nil
}
