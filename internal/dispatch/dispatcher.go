package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/homelinkcare/homecare-booking/internal/catalog"
)

// Professional is a member of the field care team.
type Professional struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Specialty string `json:"specialty"`
	Phone     string `json:"phone,omitempty"`
}

// ErrNoProfessionals is returned when the pool is empty.
var ErrNoProfessionals = errors.New("dispatch: no professionals available")

// Dispatcher assigns a professional to a visit. Production deployments back
// this with the live capacity and routing system; the static pool below is a
// deterministic stand-in.
type Dispatcher interface {
	AssignProfessional(ctx context.Context, visitDate time.Time, svc catalog.Service) (Professional, error)
}

// StaticPoolDispatcher rotates through a fixed pool by visit date, so the
// same date and pool always yield the same assignment.
type StaticPoolDispatcher struct {
	pool []Professional
}

// DefaultPool is the demo professional roster.
func DefaultPool() []Professional {
	return []Professional{
		{ID: "np-001", Name: "Ngozi Adeyemi", Title: "Registered Nurse", Specialty: "General Care"},
		{ID: "np-002", Name: "Emeka Okonkwo", Title: "Nurse Practitioner", Specialty: "Wound Care"},
		{ID: "np-003", Name: "Funmilayo Bakare", Title: "Registered Nurse", Specialty: "Elderly Care"},
		{ID: "np-004", Name: "Ibrahim Suleiman", Title: "Physiotherapist", Specialty: "Rehabilitation"},
		{ID: "np-005", Name: "Chiamaka Eze", Title: "Registered Nurse", Specialty: "Emergency Response"},
	}
}

// NewStaticPoolDispatcher creates a dispatcher over the given pool.
func NewStaticPoolDispatcher(pool []Professional) *StaticPoolDispatcher {
	return &StaticPoolDispatcher{pool: pool}
}

// AssignProfessional picks by day-of-year modulo pool size.
func (d *StaticPoolDispatcher) AssignProfessional(ctx context.Context, visitDate time.Time, svc catalog.Service) (Professional, error) {
	if len(d.pool) == 0 {
		return Professional{}, ErrNoProfessionals
	}
	idx := visitDate.YearDay() % len(d.pool)
	return d.pool[idx], nil
}

var _ Dispatcher = (*StaticPoolDispatcher)(nil)
