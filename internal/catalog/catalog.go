package catalog

import "errors"

// Category classifies a service for scheduling purposes. Emergency services
// are bookable around the clock; everything else is restricted to the
// operating window.
type Category string

const (
	CategoryGeneral     Category = "general"
	CategorySpecialized Category = "specialized"
	CategoryRoutine     Category = "routine"
	CategoryEmergency   Category = "emergency"
)

// ErrServiceNotFound is returned when a service id is not in the catalog.
var ErrServiceNotFound = errors.New("catalog: service not found")

// Service is an immutable catalog entry for a bookable home visit.
type Service struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	DurationMinutes int      `json:"duration_minutes"`
	Category        Category `json:"category"`
	PriceMinor      int64    `json:"price_minor"`
}

// assessmentPriceMinor is the flat home-assessment fee in kobo. Every service
// bills the same amount regardless of category.
const assessmentPriceMinor = 500000

var services = []Service{
	{ID: "general-checkup", Name: "General Health Checkup", DurationMinutes: 60, Category: CategoryGeneral, PriceMinor: assessmentPriceMinor},
	{ID: "elderly-care", Name: "Elderly Care Visit", DurationMinutes: 90, Category: CategoryGeneral, PriceMinor: assessmentPriceMinor},
	{ID: "wound-dressing", Name: "Wound Care & Dressing", DurationMinutes: 45, Category: CategorySpecialized, PriceMinor: assessmentPriceMinor},
	{ID: "post-surgery", Name: "Post-Surgery Recovery Care", DurationMinutes: 90, Category: CategorySpecialized, PriceMinor: assessmentPriceMinor},
	{ID: "physiotherapy", Name: "Home Physiotherapy Session", DurationMinutes: 60, Category: CategorySpecialized, PriceMinor: assessmentPriceMinor},
	{ID: "routine-injection", Name: "Routine Injection & Medication", DurationMinutes: 30, Category: CategoryRoutine, PriceMinor: assessmentPriceMinor},
	{ID: "vitals-monitoring", Name: "Vitals Monitoring Visit", DurationMinutes: 30, Category: CategoryRoutine, PriceMinor: assessmentPriceMinor},
	{ID: "emergency-response", Name: "Emergency Home Response", DurationMinutes: 60, Category: CategoryEmergency, PriceMinor: assessmentPriceMinor},
}

// List returns all bookable services. The returned slice is a copy; callers
// may not mutate catalog entries.
func List() []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

// Lookup returns the service with the given id.
func Lookup(id string) (Service, error) {
	for _, svc := range services {
		if svc.ID == id {
			return svc, nil
		}
	}
	return Service{}, ErrServiceNotFound
}

// IsEmergency reports whether the service bypasses the operating window.
func (s Service) IsEmergency() bool {
	return s.Category == CategoryEmergency
}
