package scheduling

import (
	"math/rand"
	"sync"
	"time"

	"github.com/homelinkcare/homecare-booking/internal/catalog"
)

// AvailabilityProvider answers whether a given slot can be booked. Real
// deployments back this with the live dispatch system; the simulated default
// exists for demos and tests.
type AvailabilityProvider interface {
	SlotAvailable(date time.Time, service catalog.Service, slotIndex int) bool
}

// SimulatedAvailability marks a fixed ratio of slots available using a
// seedable source, so tests get reproducible slot sets.
type SimulatedAvailability struct {
	mu    sync.Mutex
	rng   *rand.Rand
	ratio float64
}

// NewSimulatedAvailability creates a provider that reports roughly ratio of
// slots as available. The same seed always yields the same sequence.
func NewSimulatedAvailability(seed int64, ratio float64) *SimulatedAvailability {
	if ratio < 0 || ratio > 1 {
		ratio = 0.8
	}
	return &SimulatedAvailability{
		rng:   rand.New(rand.NewSource(seed)),
		ratio: ratio,
	}
}

// SlotAvailable draws from the seeded source.
func (p *SimulatedAvailability) SlotAvailable(time.Time, catalog.Service, int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Float64() < p.ratio
}

// AlwaysAvailable reports every slot as bookable. Useful in tests that only
// care about slot shape.
type AlwaysAvailable struct{}

// SlotAvailable always returns true.
func (AlwaysAvailable) SlotAvailable(time.Time, catalog.Service, int) bool { return true }

var (
	_ AvailabilityProvider = (*SimulatedAvailability)(nil)
	_ AvailabilityProvider = AlwaysAvailable{}
)
