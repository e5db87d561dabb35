package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/homelinkcare/homecare-booking/internal/catalog"
	"github.com/homelinkcare/homecare-booking/pkg/logging"
)

// Operating window for non-emergency visits, 24h clock.
const (
	DefaultDayStartHour = 8
	DefaultDayEndHour   = 18
)

// ErrWeekendUnavailable is returned when a non-emergency service is asked for
// slots on a Saturday or Sunday. The date itself is not selectable.
var ErrWeekendUnavailable = errors.New("scheduling: weekends are unavailable for this service")

// TimeSlot is a transient view of one bookable window for a (date, service)
// pair. It is generated on demand and never persisted on its own.
type TimeSlot struct {
	ID                  string    `json:"id"`
	Date                string    `json:"date"` // YYYY-MM-DD in the scheduling timezone
	DisplayTime         string    `json:"display_time"`
	StartsAt            time.Time `json:"starts_at"`
	DurationMinutes     int       `json:"duration_minutes"`
	Available           bool      `json:"available"`
	PriceMinor          int64     `json:"price_minor"`
	IsOffHoursEmergency bool      `json:"is_off_hours_emergency"`
}

// Generator produces the ordered slot set for a date and service category.
type Generator struct {
	provider AvailabilityProvider
	loc      *time.Location
	dayStart int
	dayEnd   int
	logger   *logging.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithOperatingWindow overrides the 08:00-18:00 default.
func WithOperatingWindow(startHour, endHour int) GeneratorOption {
	return func(g *Generator) {
		g.dayStart = startHour
		g.dayEnd = endHour
	}
}

// WithLocation sets the scheduling timezone.
func WithLocation(loc *time.Location) GeneratorOption {
	return func(g *Generator) { g.loc = loc }
}

// NewGenerator creates a slot generator using the given availability provider.
func NewGenerator(provider AvailabilityProvider, logger *logging.Logger, opts ...GeneratorOption) *Generator {
	if provider == nil {
		panic("scheduling: availability provider required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	g := &Generator{
		provider: provider,
		loc:      time.UTC,
		dayStart: DefaultDayStartHour,
		dayEnd:   DefaultDayEndHour,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Location returns the scheduling timezone.
func (g *Generator) Location() *time.Location {
	return g.loc
}

// GenerateSlots returns the ordered slot set for the date. Emergency services
// cover all 24 hours with off-hours slots flagged; everything else is
// restricted to the operating window and rejects weekend dates outright.
func (g *Generator) GenerateSlots(date time.Time, svc catalog.Service) ([]TimeSlot, error) {
	date = g.midnight(date)

	startHour, endHour := g.dayStart, g.dayEnd
	if svc.IsEmergency() {
		startHour, endHour = 0, 24
	} else if isWeekend(date) {
		return nil, ErrWeekendUnavailable
	}

	slots := make([]TimeSlot, 0, endHour-startHour)
	for idx, hour := 0, startHour; hour < endHour; idx, hour = idx+1, hour+1 {
		startsAt := date.Add(time.Duration(hour) * time.Hour)
		slot := TimeSlot{
			ID:                  fmt.Sprintf("%s-%02d00-%d", date.Format("20060102"), hour, idx),
			Date:                date.Format("2006-01-02"),
			DisplayTime:         startsAt.Format("15:04"),
			StartsAt:            startsAt,
			DurationMinutes:     svc.DurationMinutes,
			Available:           g.provider.SlotAvailable(date, svc, idx),
			PriceMinor:          svc.PriceMinor,
			IsOffHoursEmergency: svc.IsEmergency() && (hour < g.dayStart || hour >= g.dayEnd),
		}
		slots = append(slots, slot)
	}

	g.logger.Debug("slots generated", "date", date.Format("2006-01-02"), "service", svc.ID, "count", len(slots))
	return slots, nil
}

// SelectableDates returns the booking window starting at from. Weekend dates
// are excluded entirely unless the service is emergency.
func (g *Generator) SelectableDates(from time.Time, days int, svc catalog.Service) []time.Time {
	from = g.midnight(from)
	dates := make([]time.Time, 0, days)
	for i := 0; i < days; i++ {
		d := from.AddDate(0, 0, i)
		if !svc.IsEmergency() && isWeekend(d) {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

// FindSlot returns the slot with the given id within a freshly generated set.
func (g *Generator) FindSlot(date time.Time, svc catalog.Service, slotID string) (TimeSlot, error) {
	slots, err := g.GenerateSlots(date, svc)
	if err != nil {
		return TimeSlot{}, err
	}
	for _, s := range slots {
		if s.ID == slotID {
			return s, nil
		}
	}
	return TimeSlot{}, fmt.Errorf("scheduling: slot %s not found for %s", slotID, date.Format("2006-01-02"))
}

func (g *Generator) midnight(t time.Time) time.Time {
	t = t.In(g.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, g.loc)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
