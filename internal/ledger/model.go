package ledger

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Direction says which balance a payment settles.
type Direction string

const (
	// DirectionCommission: the platform pays the agent its commission.
	DirectionCommission Direction = "COMMISSION"
	// DirectionAgentBalance: the agent pays the platform the booking total
	// minus its commission.
	DirectionAgentBalance Direction = "AGENT_BALANCE"
)

func (d Direction) Valid() bool {
	return d == DirectionCommission || d == DirectionAgentBalance
}

// column maps a balance column to the one used by this direction.
func (d Direction) column(name string) string {
	if d == DirectionAgentBalance {
		return "agent_" + name
	}
	return name
}

type BookingType string

const (
	BookingPackage   BookingType = "Package"
	BookingDailyTour BookingType = "DailyTour"
	BookingTransfer  BookingType = "Transfer"
)

func (t BookingType) Valid() bool {
	switch t {
	case BookingPackage, BookingDailyTour, BookingTransfer:
		return true
	}
	return false
}

// Balance is the derived paid/remaining summary kept on a booking for one
// direction. Embedded twice in every booking: once unprefixed for the
// commission and once with the agent_ prefix for the agent's balance.
type Balance struct {
	PaidAmount      float64    `gorm:"not null;default:0" json:"paidAmount"`
	RemainingAmount *float64   `json:"remainingAmount"`
	FullyPaidAt     *time.Time `json:"fullyPaidAt"`
}

// CommissionPayment is one immutable ledger entry.
type CommissionPayment struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	PublicID        string      `gorm:"size:36;uniqueIndex;not null" json:"publicId"`
	AgentID         uint        `gorm:"not null;index" json:"agentId"`
	BookingType     BookingType `gorm:"size:20;not null;index:idx_payment_booking" json:"bookingType"`
	BookingID       uint        `gorm:"not null;index:idx_payment_booking" json:"bookingId"`
	ReferenceNumber string      `gorm:"size:40;not null" json:"referenceNumber"`
	Direction       Direction   `gorm:"size:20;not null;default:'COMMISSION';index" json:"direction"`
	Amount          float64     `gorm:"not null" json:"amount"`
	PaymentMethod   string      `gorm:"size:50" json:"paymentMethod"`
	TransactionRef  string      `gorm:"size:120" json:"transactionRef"`
	Notes           string      `gorm:"type:text" json:"notes"`
	PaidBy          string      `gorm:"size:255;not null" json:"paidBy"`
	CreatedAt       time.Time   `json:"createdAt"`
}

var ErrImmutablePayment = errors.New("commission payments cannot be modified")

func (*CommissionPayment) BeforeUpdate(*gorm.DB) error { return ErrImmutablePayment }
func (*CommissionPayment) BeforeDelete(*gorm.DB) error { return ErrImmutablePayment }

// Migrate creates the ledger table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&CommissionPayment{})
}
