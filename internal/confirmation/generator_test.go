package confirmation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homelinkcare/homecare-booking/internal/booking"
	"github.com/homelinkcare/homecare-booking/internal/catalog"
	"github.com/homelinkcare/homecare-booking/internal/dispatch"
	"github.com/homelinkcare/homecare-booking/internal/payments"
	"github.com/homelinkcare/homecare-booking/internal/scheduling"
)

func testGenerator(t *testing.T, opts ...GeneratorOption) *Generator {
	t.Helper()
	return NewGenerator(dispatch.NewStaticPoolDispatcher(dispatch.DefaultPool()), nil, opts...)
}

func testInputs(t *testing.T, slotStart time.Time) (catalog.Service, booking.ScheduleSelection, booking.PatientInformation) {
	t.Helper()
	svc, err := catalog.Lookup("general-checkup")
	require.NoError(t, err)

	schedule := booking.ScheduleSelection{
		Date: time.Date(slotStart.Year(), slotStart.Month(), slotStart.Day(), 0, 0, 0, 0, slotStart.Location()),
		TimeSlot: scheduling.TimeSlot{
			ID:          "slot-1",
			Date:        slotStart.Format("2006-01-02"),
			DisplayTime: slotStart.Format("15:04"),
			StartsAt:    slotStart,
			Available:   true,
		},
		Address: booking.Address{Street: "12 Adeola Odeku St", City: "Lagos", State: "Lagos", Phone: "+2348031234567"},
	}
	patient := booking.PatientInformation{
		FirstName: "Ada", LastName: "Obi", Phone: "+2348031234567",
		EmergencyContact:   booking.EmergencyContact{Name: "Chidi Obi", Phone: "+2348039876543"},
		ConsentToTreatment: true, ConsentToDataProcessing: true,
	}
	return svc, schedule, patient
}

func successPayment() payments.PaymentResult {
	return payments.PaymentResult{
		TransactionID: "tx-1",
		Reference:     "PAY-20250310-ABC123",
		AmountMinor:   500000,
		Method:        payments.MethodCard,
		Status:        payments.StatusSuccess,
		PaidAt:        time.Now().UTC(),
	}
}

func TestGenerateConfirmed(t *testing.T) {
	g := testGenerator(t)
	slotStart := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc, schedule, patient := testInputs(t, slotStart)

	conf, err := g.Generate(context.Background(), svc, schedule, patient, successPayment())
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, conf.Status)
	assert.Equal(t, slotStart.Add(-15*time.Minute), conf.EstimatedArrival)
	assert.NotEmpty(t, conf.BookingID)
	assert.NotEmpty(t, conf.ConfirmationCode)
	assert.NotEmpty(t, conf.AssignedProfessional.ID)
	assert.NotEmpty(t, conf.CancellationPolicy)
}

func TestGeneratePendingPayment(t *testing.T) {
	g := testGenerator(t)
	svc, schedule, patient := testInputs(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	payment := successPayment()
	payment.Method = payments.MethodBankTransfer
	payment.Status = payments.StatusPending

	conf, err := g.Generate(context.Background(), svc, schedule, patient, payment)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, conf.Status)
}

func TestGenerateRejectsFailedPayment(t *testing.T) {
	g := testGenerator(t)
	svc, schedule, patient := testInputs(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	payment := successPayment()
	payment.Status = payments.StatusFailed

	_, err := g.Generate(context.Background(), svc, schedule, patient, payment)
	assert.ErrorIs(t, err, ErrPaymentNotSettled)
}

func TestEstimatedArrivalMidnightRollover(t *testing.T) {
	g := testGenerator(t)
	// An 00:05 emergency slot: arrival is 23:50 on the previous calendar day.
	slotStart := time.Date(2025, 3, 11, 0, 5, 0, 0, time.UTC)
	svc, schedule, patient := testInputs(t, slotStart)

	conf, err := g.Generate(context.Background(), svc, schedule, patient, successPayment())
	require.NoError(t, err)

	want := time.Date(2025, 3, 10, 23, 50, 0, 0, time.UTC)
	assert.Equal(t, want, conf.EstimatedArrival)
}

func TestBookingIDsUnique(t *testing.T) {
	g := testGenerator(t)
	svc, schedule, patient := testInputs(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		conf, err := g.Generate(context.Background(), svc, schedule, patient, successPayment())
		require.NoError(t, err)
		assert.False(t, seen[conf.BookingID], "booking id %s repeated", conf.BookingID)
		seen[conf.BookingID] = true
	}
}

func TestConfirmationCodeShape(t *testing.T) {
	fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	g := testGenerator(t, WithClock(func() time.Time { return fixed }))
	svc, schedule, patient := testInputs(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	conf, err := g.Generate(context.Background(), svc, schedule, patient, successPayment())
	require.NoError(t, err)

	// Deterministic pool pick for 2025-03-10 is day-of-year 69 % 5 = index 4.
	assert.Equal(t, "Chiamaka Eze", conf.AssignedProfessional.Name)
	assert.Regexp(t, `^CE-[0-9A-Z]+$`, conf.ConfirmationCode)
	assert.Less(t, len(conf.ConfirmationCode), 16, "code should stay human-reference-friendly")
}

func TestConfirmationCodesDistinctWithinSameMillisecond(t *testing.T) {
	fixed := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	g := testGenerator(t, WithClock(func() time.Time { return fixed }))
	svc, schedule, patient := testInputs(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	first, err := g.Generate(context.Background(), svc, schedule, patient, successPayment())
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), svc, schedule, patient, successPayment())
	require.NoError(t, err)

	assert.NotEqual(t, first.ConfirmationCode, second.ConfirmationCode)
}

func TestInstructionsFallback(t *testing.T) {
	g := testGenerator(t)
	svc, schedule, patient := testInputs(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	// Known id: base checklist plus service additions.
	conf, err := g.Generate(context.Background(), svc, schedule, patient, successPayment())
	require.NoError(t, err)
	assert.Greater(t, len(conf.AssessmentInstructions), len(baseInstructions)-1)
	assert.Equal(t, baseInstructions, conf.AssessmentInstructions[:len(baseInstructions)])

	// Unknown id: base checklist only, never an error.
	unknown := svc
	unknown.ID = "brand-new-service"
	conf, err = g.Generate(context.Background(), unknown, schedule, patient, successPayment())
	require.NoError(t, err)
	assert.Equal(t, baseInstructions, conf.AssessmentInstructions)
}
