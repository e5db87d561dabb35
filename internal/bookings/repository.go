package bookings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/homelinkcare/homecare-booking/internal/booking"
	"github.com/homelinkcare/homecare-booking/internal/confirmation"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository stores completed bookings. Only confirmed or pending bookings
// reach this point; the step machine never persists a partial draft.
type Repository struct {
	db DB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("bookings: db required")
	}
	return &Repository{db: db}
}

// Record is a stored booking row.
type Record struct {
	BookingID        string
	ConfirmationCode string
	Status           string
	ServiceID        string
	SessionID        string
	PatientName      string
	PatientPhone     string
	ScheduledFor     time.Time
	EstimatedArrival time.Time
	PaymentReference string
	PaymentStatus    string
	PaymentMethod    string
	AmountMinor      int64
	Draft            []byte
	CreatedAt        time.Time
}

// Insert stores the confirmation together with its originating draft.
func (r *Repository) Insert(ctx context.Context, conf *confirmation.BookingConfirmation, draft booking.Draft) error {
	draftJSON, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("bookings: marshal draft: %w", err)
	}

	var sessionID string
	if draft.Session != nil {
		sessionID = draft.Session.SessionID
	}
	patientName := fmt.Sprintf("%s %s", draft.Patient.FirstName, draft.Patient.LastName)

	query := `
		INSERT INTO bookings (
			booking_id, confirmation_code, status, service_id, session_id,
			patient_name, patient_phone, scheduled_for, estimated_arrival,
			payment_reference, payment_status, payment_method, amount_minor,
			draft, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	if _, err := r.db.Exec(ctx, query,
		conf.BookingID,
		conf.ConfirmationCode,
		string(conf.Status),
		draft.Service.ID,
		sessionID,
		patientName,
		draft.Patient.Phone,
		draft.Schedule.TimeSlot.StartsAt,
		conf.EstimatedArrival,
		draft.Payment.Reference,
		string(draft.Payment.Status),
		string(draft.Payment.Method),
		draft.Payment.AmountMinor,
		draftJSON,
		conf.CreatedAt,
	); err != nil {
		return fmt.Errorf("bookings: insert: %w", err)
	}
	return nil
}

// GetByBookingID fetches a stored booking.
func (r *Repository) GetByBookingID(ctx context.Context, bookingID string) (*Record, error) {
	query := `
		SELECT booking_id, confirmation_code, status, service_id, session_id,
		       patient_name, patient_phone, scheduled_for, estimated_arrival,
		       payment_reference, payment_status, payment_method, amount_minor,
		       draft, created_at
		FROM bookings
		WHERE booking_id = $1
	`
	var rec Record
	if err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&rec.BookingID,
		&rec.ConfirmationCode,
		&rec.Status,
		&rec.ServiceID,
		&rec.SessionID,
		&rec.PatientName,
		&rec.PatientPhone,
		&rec.ScheduledFor,
		&rec.EstimatedArrival,
		&rec.PaymentReference,
		&rec.PaymentStatus,
		&rec.PaymentMethod,
		&rec.AmountMinor,
		&rec.Draft,
		&rec.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("bookings: load %s: %w", bookingID, err)
	}
	return &rec, nil
}
