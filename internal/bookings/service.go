package bookings

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/homelinkcare/homecare-booking/internal/booking"
	"github.com/homelinkcare/homecare-booking/internal/confirmation"
	"github.com/homelinkcare/homecare-booking/internal/observability/metrics"
	"github.com/homelinkcare/homecare-booking/pkg/logging"
)

var bookingsTracer = otel.Tracer("homecare.internal.bookings")

// Notifier delivers the confirmation to the patient. Failures here must not
// roll back a confirmed booking.
type Notifier interface {
	NotifyBookingConfirmed(ctx context.Context, draft booking.Draft, conf *confirmation.BookingConfirmation) error
}

// Service stores completed bookings and triggers notifications.
type Service struct {
	repo     *Repository
	notifier Notifier
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewService constructs a bookings service. The notifier and metrics may be
// nil.
func NewService(repo *Repository, notifier Notifier, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, notifier: notifier, metrics: m, logger: logger}
}

// Finalize durably stores the confirmation with its originating draft, then
// notifies the patient. Persistence failure is returned to the caller; the
// engine does not retry it. Notification failure is logged and swallowed.
func (s *Service) Finalize(ctx context.Context, draft booking.Draft, conf *confirmation.BookingConfirmation) error {
	ctx, span := bookingsTracer.Start(ctx, "bookings.finalize")
	defer span.End()
	span.SetAttributes(
		attribute.String("homecare.booking_id", conf.BookingID),
		attribute.String("homecare.status", string(conf.Status)),
	)

	if err := s.repo.Insert(ctx, conf, draft); err != nil {
		span.RecordError(err)
		return err
	}

	s.metrics.ObserveCompleted(string(conf.Status), draft.Service.ID)
	s.logger.Info("booking stored",
		"booking_id", conf.BookingID,
		"status", conf.Status,
		"service", draft.Service.ID,
	)

	if s.notifier != nil {
		if err := s.notifier.NotifyBookingConfirmed(ctx, draft, conf); err != nil {
			s.logger.Warn("booking notification failed", "error", err, "booking_id", conf.BookingID)
		}
	}
	return nil
}
