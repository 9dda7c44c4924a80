package booking

import (
	"context"

	"github.com/funnytourism/tourism-api/internal/agent"
	"github.com/funnytourism/tourism-api/internal/ledger"
	"gorm.io/gorm"
)

// Filter narrows booking listings; zero values match everything. Open keeps
// only bookings whose lifecycle has not ended.
type Filter struct {
	AgentID *uint
	Status  Status
	Open    bool
}

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(ctx context.Context, e Entity) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

// Find loads the booking of type bt with the given id.
func (r *Repository) Find(ctx context.Context, bt ledger.BookingType, id uint) (Entity, error) {
	e, ok := newEntity(bt)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := r.DB.WithContext(ctx).First(e, id).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// SaveStatus writes the lifecycle columns of e.
func (r *Repository) SaveStatus(ctx context.Context, e Entity) error {
	l := e.State()
	return r.DB.WithContext(ctx).Model(e).Updates(map[string]interface{}{
		"status":       l.Status,
		"confirmed_at": l.ConfirmedAt,
		"completed_at": l.CompletedAt,
	}).Error
}

func scoped(db *gorm.DB, f Filter) *gorm.DB {
	if f.AgentID != nil {
		db = db.Where("agent_id = ?", *f.AgentID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Open {
		db = db.Where("status NOT IN ?", terminalStatuses())
	}
	return db.Order("created_at DESC").Order("id DESC")
}

func list[T any](ctx context.Context, db *gorm.DB, f Filter) ([]T, error) {
	out := []T{}
	err := scoped(db.WithContext(ctx), f).Find(&out).Error
	return out, err
}

func (r *Repository) ListPackages(ctx context.Context, f Filter) ([]Booking, error) {
	return list[Booking](ctx, r.DB, f)
}

func (r *Repository) ListDailyTours(ctx context.Context, f Filter) ([]DailyTourBooking, error) {
	return list[DailyTourBooking](ctx, r.DB, f)
}

func (r *Repository) ListTransfers(ctx context.Context, f Filter) ([]TransferBooking, error) {
	return list[TransferBooking](ctx, r.DB, f)
}

// ListAll returns bookings of every type matching f.
func (r *Repository) ListAll(ctx context.Context, f Filter) (*AgentBookings, error) {
	var (
		out AgentBookings
		err error
	)
	if out.Packages, err = r.ListPackages(ctx, f); err != nil {
		return nil, err
	}
	if out.DailyTours, err = r.ListDailyTours(ctx, f); err != nil {
		return nil, err
	}
	if out.Transfers, err = r.ListTransfers(ctx, f); err != nil {
		return nil, err
	}
	return &out, nil
}

func models() map[ledger.BookingType]interface{} {
	return map[ledger.BookingType]interface{}{
		ledger.BookingPackage:   &Booking{},
		ledger.BookingDailyTour: &DailyTourBooking{},
		ledger.BookingTransfer:  &TransferBooking{},
	}
}

// AgentTotals implements agent.TotalsProvider. Cancelled bookings are left
// out.
func (r *Repository) AgentTotals(ctx context.Context, agentID uint) (agent.BookingTotals, error) {
	var totals agent.BookingTotals
	for _, m := range models() {
		var row struct {
			Bookings        int
			TotalSales      float64
			TotalCommission float64
			CommissionPaid  float64
		}
		err := r.DB.WithContext(ctx).Model(m).
			Select(`COUNT(*) AS bookings,
				COALESCE(SUM(total_price), 0) AS total_sales,
				COALESCE(SUM(commission_amount), 0) AS total_commission,
				COALESCE(SUM(paid_amount), 0) AS commission_paid`).
			Where("agent_id = ? AND status <> ?", agentID, StatusCancelled).
			Scan(&row).Error
		if err != nil {
			return totals, err
		}
		totals.Bookings += row.Bookings
		totals.TotalSales += row.TotalSales
		totals.TotalCommission += row.TotalCommission
		totals.CommissionPaid += row.CommissionPaid
	}
	totals.TotalSales = ledger.RoundCurrency(totals.TotalSales)
	totals.TotalCommission = ledger.RoundCurrency(totals.TotalCommission)
	totals.CommissionPaid = ledger.RoundCurrency(totals.CommissionPaid)
	totals.CommissionPending = ledger.RoundCurrency(totals.TotalCommission - totals.CommissionPaid)
	return totals, nil
}

// CommissionSummary aggregates both ledger directions over every agent
// booking.
func (r *Repository) CommissionSummary(ctx context.Context) (*Summary, error) {
	s := &Summary{ByType: map[ledger.BookingType]SummaryLine{}}
	for bt, m := range models() {
		var line SummaryLine
		err := r.DB.WithContext(ctx).Model(m).
			Select(`COUNT(*) AS bookings,
				COALESCE(SUM(commission_amount), 0) AS total_commission,
				COALESCE(SUM(paid_amount), 0) AS commission_paid,
				COALESCE(SUM(CASE WHEN status <> ? THEN total_price - COALESCE(commission_amount, 0) ELSE 0 END), 0) AS agent_owed,
				COALESCE(SUM(CASE WHEN status <> ? THEN agent_paid_amount ELSE 0 END), 0) AS agent_received`,
				StatusCancelled, StatusCancelled).
			Where("agent_id IS NOT NULL").
			Scan(&line).Error
		if err != nil {
			return nil, err
		}
		line.TotalCommission = ledger.RoundCurrency(line.TotalCommission)
		line.CommissionPaid = ledger.RoundCurrency(line.CommissionPaid)
		line.AgentOwed = ledger.RoundCurrency(line.AgentOwed)
		line.AgentReceived = ledger.RoundCurrency(line.AgentReceived)
		line.settle()
		s.ByType[bt] = line
		s.Totals.add(line)
	}
	return s, nil
}
