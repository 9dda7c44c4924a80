package ledger

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidDirection  = errors.New("unknown payment direction")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrNotAgentBooking   = errors.New("not an agent booking")
	ErrNoCommissionBasis = errors.New("booking has no commission amount")
	ErrConcurrentUpdate  = errors.New("booking balance changed while recording the payment")
)

// OverpaymentError rejects a payment that would take the paid amount above
// the owed basis. Remaining is what can still be paid.
type OverpaymentError struct {
	Remaining float64
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("Payment exceeds remaining amount (€%.2f)", RoundCurrency(e.Remaining))
}

// ComputeCommission is totalPrice * ratePercent / 100. The result is not
// rounded; use RoundCurrency when presenting it.
func ComputeCommission(totalPrice, ratePercent float64) float64 {
	return totalPrice * ratePercent / 100
}

// RoundCurrency rounds to cents.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}

// DeriveOwedBasis returns the amount a direction is measured against: the
// commission itself, or what the agent collected minus its commission.
// A booking without a commission has no commission basis; for the agent's
// balance a missing commission counts as zero.
func DeriveOwedBasis(totalPrice float64, commission *float64, d Direction) (float64, error) {
	switch d {
	case DirectionCommission:
		if commission == nil {
			return 0, ErrNoCommissionBasis
		}
		return *commission, nil
	case DirectionAgentBalance:
		var c float64
		if commission != nil {
			c = *commission
		}
		return totalPrice - c, nil
	}
	return 0, ErrInvalidDirection
}

// InitialBalances opens both balances of a freshly priced agent booking. A
// balance with nothing owed starts out fully paid at now.
func InitialBalances(totalPrice, commission float64, now time.Time) (commissionBalance, agentBalance Balance) {
	return openBalance(commission, now), openBalance(totalPrice-commission, now)
}

func openBalance(basis float64, now time.Time) Balance {
	if basis <= tolerance {
		zero := 0.0
		return Balance{RemainingAmount: &zero, FullyPaidAt: &now}
	}
	return Balance{RemainingAmount: &basis}
}
