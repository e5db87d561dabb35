package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homelinkcare/homecare-booking/internal/booking"
	"github.com/homelinkcare/homecare-booking/internal/catalog"
	"github.com/homelinkcare/homecare-booking/internal/confirmation"
	"github.com/homelinkcare/homecare-booking/internal/dispatch"
	"github.com/homelinkcare/homecare-booking/internal/scheduling"
	"github.com/homelinkcare/homecare-booking/internal/session"
)

type fakeEmail struct {
	sent []EmailMessage
	err  error
}

func (f *fakeEmail) Send(ctx context.Context, msg EmailMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeSMS struct {
	sent []string
	err  error
}

func (f *fakeSMS) SendSMS(ctx context.Context, to, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, body)
	return nil
}

func testDraftAndConfirmation(t *testing.T) (booking.Draft, *confirmation.BookingConfirmation) {
	t.Helper()
	svc, err := catalog.Lookup("general-checkup")
	require.NoError(t, err)

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	draft := booking.Draft{
		Session: &session.GuestSession{SessionID: "sess-1", Phone: "+2348031234567", Name: "Ada Obi", CreatedAt: time.Now().UTC()},
		Service: &svc,
		Schedule: &booking.ScheduleSelection{
			Date:     start.Truncate(24 * time.Hour),
			TimeSlot: scheduling.TimeSlot{ID: "slot-1", StartsAt: start, DisplayTime: "09:00"},
			Address:  booking.Address{Street: "12 Adeola Odeku St", Phone: "+2348031234567"},
		},
		Patient: &booking.PatientInformation{
			FirstName: "Ada", LastName: "Obi", Phone: "+2348031234567", Email: "ada@example.com",
		},
	}
	conf := &confirmation.BookingConfirmation{
		BookingID:              "HC-ABC123",
		ConfirmationCode:       "CE-XYZ",
		Status:                 confirmation.StatusConfirmed,
		EstimatedArrival:       start.Add(-15 * time.Minute),
		AssessmentInstructions: []string{"Keep your phone reachable."},
		AssignedProfessional:   dispatch.Professional{ID: "np-001", Name: "Ngozi Adeyemi", Title: "Registered Nurse"},
		CancellationPolicy:     "Free cancellation up to 4 hours before the visit.",
	}
	return draft, conf
}

func TestNotifyBookingConfirmedBothChannels(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	s := NewService(email, sms, nil)

	draft, conf := testDraftAndConfirmation(t)
	require.NoError(t, s.NotifyBookingConfirmed(context.Background(), draft, conf))

	require.Len(t, email.sent, 1)
	assert.Equal(t, "ada@example.com", email.sent[0].To)
	assert.Contains(t, email.sent[0].Subject, "HC-ABC123")
	assert.Contains(t, email.sent[0].Body, "CE-XYZ")
	assert.Contains(t, email.sent[0].Body, "Ngozi Adeyemi")

	require.Len(t, sms.sent, 1)
	assert.Contains(t, sms.sent[0], "CE-XYZ")
}

func TestNotifyPendingWording(t *testing.T) {
	email := &fakeEmail{}
	s := NewService(email, nil, nil)

	draft, conf := testDraftAndConfirmation(t)
	conf.Status = confirmation.StatusPending
	require.NoError(t, s.NotifyBookingConfirmed(context.Background(), draft, conf))

	require.Len(t, email.sent, 1)
	assert.Contains(t, email.sent[0].Body, "once payment is received")
}

func TestNotifyFallsBackToSessionEmail(t *testing.T) {
	email := &fakeEmail{}
	s := NewService(email, nil, nil)

	draft, conf := testDraftAndConfirmation(t)
	draft.Patient.Email = ""
	draft.Session.Email = "guest@example.com"
	require.NoError(t, s.NotifyBookingConfirmed(context.Background(), draft, conf))

	require.Len(t, email.sent, 1)
	assert.Equal(t, "guest@example.com", email.sent[0].To)
}

func TestNotifyReportsFailuresWithoutPanic(t *testing.T) {
	s := NewService(&fakeEmail{err: errors.New("smtp down")}, &fakeSMS{err: errors.New("gateway down")}, nil)

	draft, conf := testDraftAndConfirmation(t)
	err := s.NotifyBookingConfirmed(context.Background(), draft, conf)
	assert.Error(t, err)
}

func TestNotifySkipsMissingChannels(t *testing.T) {
	s := NewService(nil, nil, nil)
	draft, conf := testDraftAndConfirmation(t)
	assert.NoError(t, s.NotifyBookingConfirmed(context.Background(), draft, conf))
}
