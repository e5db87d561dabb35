package confirmation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/homelinkcare/homecare-booking/internal/booking"
	"github.com/homelinkcare/homecare-booking/internal/catalog"
	"github.com/homelinkcare/homecare-booking/internal/dispatch"
	"github.com/homelinkcare/homecare-booking/internal/payments"
	"github.com/homelinkcare/homecare-booking/pkg/logging"
)

var confirmationTracer = otel.Tracer("homecare.internal.confirmation")

// ArrivalLeadTime is how far ahead of the slot the professional aims to
// arrive.
const ArrivalLeadTime = 15 * time.Minute

// Status is the confirmation state of a booking.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

// ErrPaymentNotSettled is returned when a failed payment result reaches the
// generator. The step machine's payment guard should make this unreachable.
var ErrPaymentNotSettled = errors.New("confirmation: payment result is failed")

// BookingConfirmation is the derived, read-only booking artifact.
type BookingConfirmation struct {
	BookingID              string                `json:"booking_id"`
	ConfirmationCode       string                `json:"confirmation_code"`
	Status                 Status                `json:"status"`
	CreatedAt              time.Time             `json:"created_at"`
	EstimatedArrival       time.Time             `json:"estimated_arrival"`
	AssessmentInstructions []string              `json:"assessment_instructions"`
	AssignedProfessional   dispatch.Professional `json:"assigned_professional"`
	CancellationPolicy     string                `json:"cancellation_policy"`
	FollowUpInfo           string                `json:"follow_up_info"`
}

const (
	cancellationPolicy = "Free cancellation up to 4 hours before the visit. Later cancellations forfeit 50% of the assessment fee."
	followUpInfo       = "A care coordinator will call within 24 hours of the visit to review the assessment and next steps."
)

// Generator derives the final booking artifact from a completed draft.
type Generator struct {
	dispatcher dispatch.Dispatcher
	logger     *logging.Logger
	now        func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a confirmation generator using the given dispatcher.
func NewGenerator(dispatcher dispatch.Dispatcher, logger *logging.Logger, opts ...GeneratorOption) *Generator {
	if dispatcher == nil {
		panic("confirmation: dispatcher required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	g := &Generator{dispatcher: dispatcher, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate derives the confirmation artifact. The payment must be success or
// pending; pending payments yield a pending confirmation awaiting out-of-band
// reconciliation.
func (g *Generator) Generate(ctx context.Context, svc catalog.Service, schedule booking.ScheduleSelection, patient booking.PatientInformation, payment payments.PaymentResult) (*BookingConfirmation, error) {
	ctx, span := confirmationTracer.Start(ctx, "confirmation.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("homecare.service_id", svc.ID),
		attribute.String("homecare.payment_status", string(payment.Status)),
	)

	if payment.Status == payments.StatusFailed {
		return nil, ErrPaymentNotSettled
	}

	professional, err := g.dispatcher.AssignProfessional(ctx, schedule.Date, svc)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("confirmation: assign professional: %w", err)
	}

	now := g.now().UTC()
	status := StatusConfirmed
	if payment.Status == payments.StatusPending {
		status = StatusPending
	}

	conf := &BookingConfirmation{
		BookingID:              newBookingID(),
		ConfirmationCode:       confirmationCode(professional, now),
		Status:                 status,
		CreatedAt:              now,
		EstimatedArrival:       schedule.TimeSlot.StartsAt.Add(-ArrivalLeadTime),
		AssessmentInstructions: assessmentInstructions(svc.ID),
		AssignedProfessional:   professional,
		CancellationPolicy:     cancellationPolicy,
		FollowUpInfo:           followUpInfo,
	}

	g.logger.Info("booking confirmation generated",
		"booking_id", conf.BookingID,
		"confirmation_code", conf.ConfirmationCode,
		"status", conf.Status,
		"professional_id", professional.ID,
	)
	return conf, nil
}

// newBookingID mints a unique booking token. Collision probability of the
// 128-bit UUID source is negligible at expected volume.
func newBookingID() string {
	return "HC-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// confirmationCode builds a short, human-reference-friendly code from the
// professional's initials and the booking timestamp. A random suffix keeps
// codes distinct even for two bookings minted in the same millisecond for
// the same professional.
func confirmationCode(p dispatch.Professional, at time.Time) string {
	var initials strings.Builder
	for _, part := range strings.Fields(p.Name) {
		initials.WriteByte(part[0])
	}
	prefix := strings.ToUpper(initials.String())
	if prefix == "" {
		prefix = "HC"
	}
	stamp := strings.ToUpper(strconv.FormatInt(at.UnixMilli(), 36))
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return prefix + "-" + stamp + suffix
}
