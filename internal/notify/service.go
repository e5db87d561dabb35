package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/homelinkcare/homecare-booking/internal/booking"
	"github.com/homelinkcare/homecare-booking/internal/confirmation"
	"github.com/homelinkcare/homecare-booking/pkg/logging"
)

// SMSSender sends SMS messages to patients.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Service composes and delivers booking notifications. It is fire-and-forget
// from the engine's perspective: a delivery failure never rolls back a
// confirmed booking.
type Service struct {
	email  EmailSender
	sms    SMSSender
	logger *logging.Logger
}

// NewService creates a notification service. Either sender may be nil, in
// which case that channel is skipped.
func NewService(email EmailSender, sms SMSSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, sms: sms, logger: logger}
}

// NotifyBookingConfirmed sends the confirmation to the patient over every
// configured channel.
func (s *Service) NotifyBookingConfirmed(ctx context.Context, draft booking.Draft, conf *confirmation.BookingConfirmation) error {
	if draft.Patient == nil || conf == nil {
		return nil
	}

	patientName := fmt.Sprintf("%s %s", draft.Patient.FirstName, draft.Patient.LastName)
	visitTime := draft.Schedule.TimeSlot.StartsAt.Format("Monday, January 2 at 3:04 PM")
	arrival := conf.EstimatedArrival.Format("3:04 PM")

	statusLine := "Your visit is confirmed."
	if conf.Status == confirmation.StatusPending {
		statusLine = "Your visit is reserved and will be confirmed once payment is received."
	}

	var errs []error

	email := strings.TrimSpace(draft.Patient.Email)
	if email == "" && draft.Session != nil {
		email = strings.TrimSpace(draft.Session.Email)
	}
	if s.email != nil && email != "" {
		body := fmt.Sprintf(`Hello %s,

%s

Booking reference: %s
Confirmation code: %s
Service: %s
Visit time: %s
Estimated arrival: %s
Assigned professional: %s (%s)

Before the visit:
%s

%s

- HomeLink Care`,
			patientName, statusLine, conf.BookingID, conf.ConfirmationCode,
			draft.Service.Name, visitTime, arrival,
			conf.AssignedProfessional.Name, conf.AssignedProfessional.Title,
			"- "+strings.Join(conf.AssessmentInstructions, "\n- "),
			conf.CancellationPolicy)

		msg := EmailMessage{
			To:      email,
			ToName:  patientName,
			Subject: fmt.Sprintf("Booking %s - %s", conf.BookingID, draft.Service.Name),
			Body:    body,
		}
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: confirmation email failed", "error", err, "booking_id", conf.BookingID)
			errs = append(errs, err)
		} else {
			s.logger.Info("notify: confirmation email sent", "to", email, "booking_id", conf.BookingID)
		}
	}

	if s.sms != nil && draft.Patient.Phone != "" {
		smsBody := fmt.Sprintf("HomeLink Care: %s %s arrives ~%s for your %s. Code: %s",
			conf.AssignedProfessional.Title, conf.AssignedProfessional.Name, arrival,
			draft.Service.Name, conf.ConfirmationCode)
		if err := s.sms.SendSMS(ctx, draft.Patient.Phone, smsBody); err != nil {
			s.logger.Error("notify: confirmation SMS failed", "error", err, "booking_id", conf.BookingID)
			errs = append(errs, err)
		} else {
			s.logger.Info("notify: confirmation SMS sent", "to", draft.Patient.Phone, "booking_id", conf.BookingID)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d notification(s) failed", len(errs))
	}
	return nil
}

// StubSMSSender is a no-op sender for testing.
type StubSMSSender struct {
	logger *logging.Logger
}

// NewStubSMSSender creates a stub SMS sender.
func NewStubSMSSender(logger *logging.Logger) *StubSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSMSSender{logger: logger}
}

// SendSMS logs but doesn't send.
func (s *StubSMSSender) SendSMS(ctx context.Context, to, body string) error {
	s.logger.Info("stub SMS sender: would send", "to", to, "body_preview", truncate(body, 50))
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ SMSSender = (*StubSMSSender)(nil)
