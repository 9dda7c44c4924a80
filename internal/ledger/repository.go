package ledger

import (
	"context"

	"gorm.io/gorm"
)

// PaymentFilter narrows ListPayments; zero values match everything.
type PaymentFilter struct {
	AgentID     uint
	BookingType BookingType
	BookingID   uint
	Direction   Direction
	Limit       int
	Offset      int
}

// Repository is the read side of the ledger. Writes only happen through
// Ledger.RecordPayment.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ListPayments returns payments newest first.
func (r *Repository) ListPayments(ctx context.Context, f PaymentFilter) ([]CommissionPayment, error) {
	q := r.DB.WithContext(ctx).Model(&CommissionPayment{})
	if f.AgentID != 0 {
		q = q.Where("agent_id = ?", f.AgentID)
	}
	if f.BookingType != "" {
		q = q.Where("booking_type = ?", f.BookingType)
	}
	if f.BookingID != 0 {
		q = q.Where("booking_id = ?", f.BookingID)
	}
	if f.Direction != "" {
		q = q.Where("direction = ?", f.Direction)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var payments []CommissionPayment
	err := q.Order("created_at DESC").Order("id DESC").Find(&payments).Error
	return payments, err
}

// SumPayments totals the ledger entries of one booking and direction.
func (r *Repository) SumPayments(ctx context.Context, bt BookingType, bookingID uint, d Direction) (float64, error) {
	var total float64
	err := r.DB.WithContext(ctx).Model(&CommissionPayment{}).
		Where("booking_type = ? AND booking_id = ? AND direction = ?", bt, bookingID, d).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
