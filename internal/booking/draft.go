package booking

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/homelinkcare/homecare-booking/internal/catalog"
	"github.com/homelinkcare/homecare-booking/internal/payments"
	"github.com/homelinkcare/homecare-booking/internal/scheduling"
	"github.com/homelinkcare/homecare-booking/internal/session"
)

// Address is where the visit takes place.
type Address struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	State    string `json:"state"`
	Landmark string `json:"landmark,omitempty"`
	Phone    string `json:"phone"`
}

// ScheduleSelection is the output of the scheduling stage. It is immutable
// once the patient-details stage begins except by navigating back.
type ScheduleSelection struct {
	Date                time.Time           `json:"date"`
	TimeSlot            scheduling.TimeSlot `json:"time_slot"`
	Address             Address             `json:"address"`
	SpecialRequirements string              `json:"special_requirements,omitempty"`
}

// Complete reports whether the selection satisfies the scheduling guard:
// date, slot, street address and contact phone all present.
func (s *ScheduleSelection) Complete() bool {
	if s == nil {
		return false
	}
	return !s.Date.IsZero() &&
		s.TimeSlot.ID != "" &&
		strings.TrimSpace(s.Address.Street) != "" &&
		strings.TrimSpace(s.Address.Phone) != ""
}

// EmergencyContact is who to reach if the patient cannot respond.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// PatientInformation is the output of the patient-details stage.
type PatientInformation struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
	Gender      string `json:"gender,omitempty"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`

	MedicalHistory     string `json:"medical_history,omitempty"`
	CurrentMedications string `json:"current_medications,omitempty"`
	Allergies          string `json:"allergies,omitempty"`

	EmergencyContact EmergencyContact `json:"emergency_contact"`

	ConsentToTreatment      bool `json:"consent_to_treatment"`
	ConsentToDataProcessing bool `json:"consent_to_data_processing"`
}

var patientPhoneRe = regexp.MustCompile(`^\+?[0-9 ()-]{10,20}$`)

// Validate checks identity, contact, emergency-contact and consent fields.
// The booking cannot proceed past patient details unless this passes.
func (p *PatientInformation) Validate() error {
	if p == nil {
		return errors.New("booking: patient information is required")
	}
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return errors.New("booking: patient first and last name are required")
	}
	if p.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", p.DateOfBirth); err != nil {
			return fmt.Errorf("booking: date of birth must be YYYY-MM-DD: %w", err)
		}
	}
	if !patientPhoneRe.MatchString(strings.TrimSpace(p.Phone)) {
		return ErrInvalidPatientPhone
	}
	if strings.TrimSpace(p.EmergencyContact.Name) == "" {
		return errors.New("booking: emergency contact name is required")
	}
	if !patientPhoneRe.MatchString(strings.TrimSpace(p.EmergencyContact.Phone)) {
		return fmt.Errorf("booking: emergency contact phone: %w", ErrInvalidPatientPhone)
	}
	if !p.ConsentToTreatment || !p.ConsentToDataProcessing {
		return ErrMissingConsent
	}
	return nil
}

// Draft is the accumulated, not-yet-confirmed state of an in-progress
// booking. It is threaded explicitly through calls rather than living in
// ambient storage, so the engine works server-side and in tests.
type Draft struct {
	Session  *session.GuestSession   `json:"session,omitempty"`
	Service  *catalog.Service        `json:"service,omitempty"`
	Schedule *ScheduleSelection      `json:"schedule,omitempty"`
	Patient  *PatientInformation     `json:"patient,omitempty"`
	Payment  *payments.PaymentResult `json:"payment,omitempty"`
}
