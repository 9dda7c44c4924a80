package booking

import (
	"time"

	"github.com/funnytourism/tourism-api/internal/ledger"
	"github.com/funnytourism/tourism-api/internal/utils"
	"gorm.io/gorm"
)

// Record holds what every booking variant shares: guest contact, price,
// lifecycle and, for agent bookings, the commission snapshot and both
// ledger balances. Bookings are financial records and are never deleted.
type Record struct {
	ReferenceNumber  string   `gorm:"size:40;uniqueIndex;not null" json:"referenceNumber"`
	GuestName        string   `gorm:"size:255;not null" json:"guestName"`
	GuestEmail       string   `gorm:"size:255;not null;index" json:"guestEmail"`
	GuestPhone       string   `gorm:"size:50" json:"guestPhone"`
	TotalPrice       float64  `gorm:"not null" json:"totalPrice"`
	Currency         string   `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	PaymentStatus    string   `gorm:"size:20;not null;default:'PENDING'" json:"paymentStatus"`
	SpecialRequests  string   `gorm:"type:text" json:"specialRequests"`
	AgentID          *uint    `gorm:"index" json:"agentId"`
	CommissionRate   *float64 `json:"commissionRate"`
	CommissionAmount *float64 `json:"commissionAmount"`

	Lifecycle
	ledger.Balance
	AgentBalance ledger.Balance `gorm:"embedded;embeddedPrefix:agent_" json:"agentBalance"`
}

// assignAgent snapshots the agent's current rate onto the booking and
// opens both balances. Later rate changes do not touch existing bookings.
func (r *Record) assignAgent(agentID uint, ratePercent float64, now time.Time) {
	commission := ledger.ComputeCommission(r.TotalPrice, ratePercent)
	r.AgentID = &agentID
	r.CommissionRate = &ratePercent
	r.CommissionAmount = &commission
	r.Balance, r.AgentBalance = ledger.InitialBalances(r.TotalPrice, commission, now)
}

func (r *Record) LedgerAgentID() *uint { return r.AgentID }
func (r *Record) LedgerReference() string { return r.ReferenceNumber }
func (r *Record) State() *Lifecycle { return &r.Lifecycle }
func (r *Record) record() *Record { return r }
func (r *Record) LedgerAmounts() (float64, *float64) {
	return r.TotalPrice, r.CommissionAmount
}

func (r *Record) LedgerBalance(d ledger.Direction) *ledger.Balance {
	if d == ledger.DirectionAgentBalance {
		return &r.AgentBalance
	}
	return &r.Balance
}

// Booking is a package booking.
type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`
	Record
	PackageID        *uint          `gorm:"index" json:"packageId"`
	PackageName      string         `gorm:"size:255;not null" json:"packageName"`
	TravelDate       *time.Time     `json:"travelDate"`
	Adults           int            `gorm:"not null;default:2" json:"adults"`
	Children         int            `gorm:"not null;default:0" json:"children"`
	Infants          int            `gorm:"not null;default:0" json:"infants"`
	HotelCategory    string         `gorm:"size:50" json:"hotelCategory"`
	Passengers       utils.JSONText `json:"passengers"`
	ArrivalFlight    string         `gorm:"size:100" json:"arrivalFlight"`
	DepartureFlight  string         `gorm:"size:100" json:"departureFlight"`
	EmergencyContact utils.JSONText `json:"emergencyContact"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func (*Booking) LedgerType() ledger.BookingType { return ledger.BookingPackage }
func (b *Booking) Key() uint { return b.ID }

// DailyTourBooking reserves a day tour, shared (SIC) or private.
type DailyTourBooking struct {
	ID uint `gorm:"primaryKey" json:"id"`
	Record
	TourID         uint      `gorm:"not null;index" json:"tourId"`
	TourName       string    `gorm:"size:255;not null" json:"tourName"`
	TourDate       time.Time `gorm:"not null" json:"tourDate"`
	TourType       string    `gorm:"size:20;not null;default:'SIC'" json:"tourType"`
	Adults         int       `gorm:"not null;default:2" json:"adults"`
	Children       int       `gorm:"not null;default:0" json:"children"`
	Infants        int       `gorm:"not null;default:0" json:"infants"`
	PickupLocation string    `gorm:"size:255" json:"pickupLocation"`
	HotelName      string    `gorm:"size:255" json:"hotelName"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (*DailyTourBooking) LedgerType() ledger.BookingType { return ledger.BookingDailyTour }
func (b *DailyTourBooking) Key() uint { return b.ID }

// TransferBooking reserves a point to point transfer.
type TransferBooking struct {
	ID uint `gorm:"primaryKey" json:"id"`
	Record
	TransferID     *uint     `gorm:"index" json:"transferId"`
	FromLocation   string    `gorm:"size:255;not null" json:"fromLocation"`
	ToLocation     string    `gorm:"size:255;not null" json:"toLocation"`
	TransferDate   time.Time `gorm:"not null" json:"transferDate"`
	TransferTime   string    `gorm:"size:10" json:"transferTime"`
	Passengers     int       `gorm:"not null;default:1" json:"passengers"`
	Luggage        int       `gorm:"not null;default:0" json:"luggage"`
	FlightNumber   string    `gorm:"size:50" json:"flightNumber"`
	VehicleType    string    `gorm:"size:50" json:"vehicleType"`
	PickupAddress  string    `gorm:"size:255" json:"pickupAddress"`
	DropoffAddress string    `gorm:"size:255" json:"dropoffAddress"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (*TransferBooking) LedgerType() ledger.BookingType { return ledger.BookingTransfer }
func (b *TransferBooking) Key() uint { return b.ID }

// Entity is implemented by the three booking variants.
type Entity interface {
	ledger.Payable
	State() *Lifecycle
	Key() uint
	record() *Record
}

func newEntity(bt ledger.BookingType) (Entity, bool) {
	switch bt {
	case ledger.BookingPackage:
		return &Booking{}, true
	case ledger.BookingDailyTour:
		return &DailyTourBooking{}, true
	case ledger.BookingTransfer:
		return &TransferBooking{}, true
	}
	return nil, false
}

// LedgerTargets lets the ledger load any booking variant.
func LedgerTargets() map[ledger.BookingType]func() ledger.Payable {
	return map[ledger.BookingType]func() ledger.Payable{
		ledger.BookingPackage:   func() ledger.Payable { return &Booking{} },
		ledger.BookingDailyTour: func() ledger.Payable { return &DailyTourBooking{} },
		ledger.BookingTransfer:  func() ledger.Payable { return &TransferBooking{} },
	}
}

// Migrate creates the booking tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Booking{}, &DailyTourBooking{}, &TransferBooking{})
}
