package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homelinkcare/homecare-booking/pkg/logging"
)

// Method is how the patient chooses to pay.
type Method string

const (
	MethodCard           Method = "card"
	MethodBankTransfer   Method = "bank_transfer"
	MethodCashOnDelivery Method = "cash_on_delivery"
)

// Status is the terminal outcome of a resolution attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPending Status = "pending"
	StatusFailed  Status = "failed"
)

var (
	// ErrUnknownMethod is returned for a payment method the resolver does not support
	ErrUnknownMethod = errors.New("payments: unknown payment method")

	// ErrPromoCodeInvalid is returned when a promo code is not in the lookup
	// table; the amount is left unchanged
	ErrPromoCodeInvalid = errors.New("payments: promo code invalid")
)

// PayerContact identifies who is paying, for gateway receipts.
type PayerContact struct {
	Name  string
	Phone string
	Email string
}

// PaymentResult is the terminal outcome of resolving a payment. Once
// produced it is never mutated: a failed result returns control to the
// payment stage, success or pending advances the booking.
type PaymentResult struct {
	TransactionID string    `json:"transaction_id"`
	Reference     string    `json:"reference"`
	AmountMinor   int64     `json:"amount_minor"`
	Method        Method    `json:"method"`
	Status        Status    `json:"status"`
	Gateway       string    `json:"gateway"`
	PaidAt        time.Time `json:"paid_at"`
	FailureReason string    `json:"failure_reason,omitempty"`
}

// IsAsync reports whether the method settles out-of-band. Asynchronous
// methods resolve to pending immediately and the booking is accepted with
// payment trust deferred.
func (m Method) IsAsync() bool {
	return m == MethodBankTransfer || m == MethodCashOnDelivery
}

// Resolver maps a chosen payment method to a terminal PaymentResult.
// Synchronous methods settle through the card gateway; asynchronous methods
// are reconciled out-of-band by a collaborator outside this engine.
type Resolver struct {
	gateway Gateway
	logger  *logging.Logger
	now     func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverClock injects a clock for tests.
func WithResolverClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

// NewResolver creates a payment resolver using the given card gateway.
func NewResolver(gateway Gateway, logger *logging.Logger, opts ...ResolverOption) *Resolver {
	if gateway == nil {
		panic("payments: gateway required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	r := &Resolver{gateway: gateway, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ApplyPromo validates code against the fixed lookup table and returns the
// discounted amount. An invalid code returns ErrPromoCodeInvalid and the
// original amount; there is no partial application.
func ApplyPromo(amountMinor int64, code string) (int64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return amountMinor, nil
	}
	percent, ok := promoCodes[code]
	if !ok {
		return amountMinor, ErrPromoCodeInvalid
	}
	return amountMinor - amountMinor*int64(percent)/100, nil
}

// Resolve produces the PaymentResult for the method. Failed card results
// include a human-readable reason and do not advance the booking.
func (r *Resolver) Resolve(ctx context.Context, method Method, amountMinor int64, payer PayerContact) (PaymentResult, error) {
	now := r.now().UTC()
	result := PaymentResult{
		TransactionID: uuid.NewString(),
		Reference:     newReference(now),
		AmountMinor:   amountMinor,
		Method:        method,
		PaidAt:        now,
	}

	switch method {
	case MethodCard:
		outcome, err := r.gateway.Charge(ctx, amountMinor, payer)
		if err != nil {
			// A rejected or timed-out gateway call counts as a failed result.
			result.Status = StatusFailed
			result.Gateway = r.gateway.Name()
			result.FailureReason = err.Error()
			r.logger.Warn("card settlement failed", "reference", result.Reference, "reason", err.Error())
			return result, nil
		}
		result.Status = StatusSuccess
		result.Gateway = outcome.Gateway
		r.logger.Info("card settled", "reference", result.Reference, "amount_minor", amountMinor)
		return result, nil

	case MethodBankTransfer:
		result.Status = StatusPending
		result.Gateway = "bank_transfer"
		r.logger.Info("bank transfer pending reconciliation", "reference", result.Reference)
		return result, nil

	case MethodCashOnDelivery:
		result.Status = StatusPending
		result.Gateway = "cash_on_delivery"
		r.logger.Info("cash on delivery pending collection", "reference", result.Reference)
		return result, nil

	default:
		return PaymentResult{}, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

// newReference produces a short human-quotable payment reference.
func newReference(now time.Time) string {
	token := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("PAY-%s-%s", now.Format("20060102"), token)
}
