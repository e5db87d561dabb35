package payments

import (
	"context"
	"errors"
	"math/rand"
	"sync"
)

// ChargeOutcome is what a gateway reports for a settled charge.
type ChargeOutcome struct {
	Gateway string
}

// Gateway attempts immediate settlement for synchronous methods. A returned
// error is the settlement failure reason shown to the patient.
type Gateway interface {
	Name() string
	Charge(ctx context.Context, amountMinor int64, payer PayerContact) (ChargeOutcome, error)
}

// ErrCardDeclined is the simulated decline reason.
var ErrCardDeclined = errors.New("card declined by issuing bank")

// SimulatedGateway settles a fixed ratio of charges using a seedable source.
// It is a dev/demo stand-in and MUST be gated by configuration; production
// wires a real processor behind the Gateway interface.
type SimulatedGateway struct {
	mu          sync.Mutex
	rng         *rand.Rand
	successRate float64
}

// NewSimulatedGateway creates a seedable simulated card gateway.
func NewSimulatedGateway(seed int64, successRate float64) *SimulatedGateway {
	if successRate < 0 || successRate > 1 {
		successRate = 0.9
	}
	return &SimulatedGateway{
		rng:         rand.New(rand.NewSource(seed)),
		successRate: successRate,
	}
}

// Name identifies the gateway on payment results.
func (g *SimulatedGateway) Name() string { return "simulated_card" }

// Charge succeeds at the configured rate and declines otherwise.
func (g *SimulatedGateway) Charge(ctx context.Context, amountMinor int64, payer PayerContact) (ChargeOutcome, error) {
	if err := ctx.Err(); err != nil {
		return ChargeOutcome{}, err
	}
	g.mu.Lock()
	ok := g.rng.Float64() < g.successRate
	g.mu.Unlock()
	if !ok {
		return ChargeOutcome{}, ErrCardDeclined
	}
	return ChargeOutcome{Gateway: g.Name()}, nil
}

var _ Gateway = (*SimulatedGateway)(nil)

// ErrCardPaymentsDisabled is the failure reason when no card processor is
// configured; async methods still work.
var ErrCardPaymentsDisabled = errors.New("card payments are not enabled")

// DisabledGateway declines every charge. It is the fallback when the
// simulated gateway is switched off and no real processor is wired.
type DisabledGateway struct{}

// Name identifies the gateway on payment results.
func (DisabledGateway) Name() string { return "disabled" }

// Charge always declines.
func (DisabledGateway) Charge(context.Context, int64, PayerContact) (ChargeOutcome, error) {
	return ChargeOutcome{}, ErrCardPaymentsDisabled
}

var _ Gateway = DisabledGateway{}
