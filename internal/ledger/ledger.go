package ledger

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Payable is a booking row the ledger can settle. Implementations are
// GORM models; RecordPayment loads into them.
type Payable interface {
	LedgerType() BookingType
	LedgerAgentID() *uint
	LedgerReference() string
	LedgerAmounts() (totalPrice float64, commission *float64)
	LedgerBalance(d Direction) *Balance
}

type PaymentInput struct {
	Direction      Direction
	Amount         float64
	PaymentMethod  string
	TransactionRef string
	Notes          string
	RecordedBy     string
}

// Receipt describes an accepted payment and the booking's balance after it.
type Receipt struct {
	Payment   CommissionPayment
	Basis     float64
	Paid      float64
	Remaining float64
	FullyPaid bool
}

// tolerance absorbs float noise when comparing sums of currency amounts.
const tolerance = 1e-9

type Ledger struct {
	DB  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{DB: db, now: time.Now}
}

// RecordPayment applies one payment to the booking with the given id.
// target is an empty model of the booking's type and is filled with the
// updated row on success.
//
// The balance update and the ledger insert share one transaction. On
// Postgres the booking row is locked for the duration; everywhere the
// update is also guarded by the paid amount that was read, so a competing
// writer makes it fail with ErrConcurrentUpdate instead of double
// applying. Rejected payments change nothing.
func (l *Ledger) RecordPayment(ctx context.Context, target Payable, bookingID uint, in PaymentInput) (*Receipt, error) {
	if !(in.Amount > 0) || math.IsInf(in.Amount, 0) {
		return nil, ErrInvalidAmount
	}
	if !in.Direction.Valid() {
		return nil, ErrInvalidDirection
	}

	var receipt *Receipt
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(target, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		agentID := target.LedgerAgentID()
		if agentID == nil {
			return ErrNotAgentBooking
		}
		total, commission := target.LedgerAmounts()
		basis, err := DeriveOwedBasis(total, commission, in.Direction)
		if err != nil {
			return err
		}

		bal := target.LedgerBalance(in.Direction)
		previous := bal.PaidAmount
		newPaid := previous + in.Amount
		if newPaid > basis+tolerance {
			return &OverpaymentError{Remaining: basis - previous}
		}
		remaining := basis - newPaid
		if remaining < 0 {
			remaining = 0
		}
		fullyPaid := newPaid >= basis-tolerance

		d := in.Direction
		updates := map[string]interface{}{
			d.column("paid_amount"):      newPaid,
			d.column("remaining_amount"): remaining,
		}
		fullyPaidAt := bal.FullyPaidAt
		if fullyPaid && fullyPaidAt == nil {
			now := l.now()
			fullyPaidAt = &now
			updates[d.column("fully_paid_at")] = now
		}

		res := tx.Model(target).
			Where(d.column("paid_amount")+" = ?", previous).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrConcurrentUpdate
		}
		bal.PaidAmount = newPaid
		bal.RemainingAmount = &remaining
		bal.FullyPaidAt = fullyPaidAt

		payment := CommissionPayment{
			PublicID:        uuid.NewString(),
			AgentID:         *agentID,
			BookingType:     target.LedgerType(),
			BookingID:       bookingID,
			ReferenceNumber: target.LedgerReference(),
			Direction:       d,
			Amount:          in.Amount,
			PaymentMethod:   in.PaymentMethod,
			TransactionRef:  in.TransactionRef,
			Notes:           in.Notes,
			PaidBy:          in.RecordedBy,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		receipt = &Receipt{
			Payment:   payment,
			Basis:     basis,
			Paid:      newPaid,
			Remaining: remaining,
			FullyPaid: fullyPaid,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
