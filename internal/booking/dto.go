package booking

import (
	"errors"
	"strings"
	"time"

	"github.com/funnytourism/tourism-api/internal/ledger"
)

// GuestDetails are the contact and price fields every booking form carries.
type GuestDetails struct {
	GuestName       string  `json:"guestName" validate:"required"`
	GuestEmail      string  `json:"guestEmail" validate:"required,email"`
	GuestPhone      string  `json:"guestPhone"`
	TotalPrice      float64 `json:"totalPrice" validate:"gt=0"`
	Currency        string  `json:"currency" validate:"omitempty,len=3"`
	SpecialRequests string  `json:"specialRequests"`
}

func (g GuestDetails) record(ref string) Record {
	currency := strings.ToUpper(g.Currency)
	if currency == "" {
		currency = "EUR"
	}
	return Record{
		ReferenceNumber: ref,
		GuestName:       strings.TrimSpace(g.GuestName),
		GuestEmail:      strings.ToLower(strings.TrimSpace(g.GuestEmail)),
		GuestPhone:      g.GuestPhone,
		TotalPrice:      g.TotalPrice,
		Currency:        currency,
		PaymentStatus:   "PENDING",
		SpecialRequests: g.SpecialRequests,
		Lifecycle:       NewLifecycle(),
	}
}

type Passenger struct {
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	Type           string `json:"type" validate:"omitempty,oneof=ADULT CHILD INFANT"`
	DateOfBirth    string `json:"dateOfBirth"`
	Nationality    string `json:"nationality"`
	PassportNumber string `json:"passportNumber"`
	PassportExpiry string `json:"passportExpiry"`
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// PackageRequest is the body of POST /api/bookings and
// POST /api/agent/bookings.
type PackageRequest struct {
	GuestDetails
	PackageID        *uint             `json:"packageId"`
	PackageName      string            `json:"packageName" validate:"required"`
	TravelDate       string            `json:"travelDate"`
	Adults           *int              `json:"adults" validate:"omitempty,gte=1"`
	Children         int               `json:"children" validate:"gte=0"`
	Infants          int               `json:"infants" validate:"gte=0"`
	HotelCategory    string            `json:"hotelCategory"`
	Passengers       []Passenger       `json:"passengers" validate:"omitempty,dive"`
	ArrivalFlight    string            `json:"arrivalFlight"`
	DepartureFlight  string            `json:"departureFlight"`
	EmergencyContact *EmergencyContact `json:"emergencyContact"`
}

// DailyTourRequest is the body of the daily tour booking endpoints.
type DailyTourRequest struct {
	GuestDetails
	TourID         uint   `json:"tourId" validate:"required"`
	TourName       string `json:"tourName" validate:"required"`
	TourDate       string `json:"tourDate" validate:"required"`
	TourType       string `json:"tourType" validate:"omitempty,oneof=SIC PRIVATE"`
	Adults         *int   `json:"adults" validate:"omitempty,gte=1"`
	Children       int    `json:"children" validate:"gte=0"`
	Infants        int    `json:"infants" validate:"gte=0"`
	PickupLocation string `json:"pickupLocation"`
	HotelName      string `json:"hotelName"`
}

// TransferRequest is the body of the transfer booking endpoints.
type TransferRequest struct {
	GuestDetails
	TransferID     *uint  `json:"transferId"`
	FromLocation   string `json:"fromLocation" validate:"required"`
	ToLocation     string `json:"toLocation" validate:"required"`
	TransferDate   string `json:"transferDate" validate:"required"`
	TransferTime   string `json:"transferTime"`
	Passengers     int    `json:"passengers" validate:"gte=0"`
	Luggage        int    `json:"luggage" validate:"gte=0"`
	FlightNumber   string `json:"flightNumber"`
	VehicleType    string `json:"vehicleType"`
	PickupAddress  string `json:"pickupAddress"`
	DropoffAddress string `json:"dropoffAddress"`
}

// StatusRequest is the body of the admin status endpoints.
type StatusRequest struct {
	Status string `json:"status"`
}

// StatusView is returned after a status change.
type StatusView struct {
	ID          uint       `json:"id"`
	Status      Status     `json:"status"`
	ConfirmedAt *time.Time `json:"confirmedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// AgentBookings groups one agent's (or the admin's) bookings by type.
type AgentBookings struct {
	Packages   []Booking          `json:"packages"`
	DailyTours []DailyTourBooking `json:"dailyTours"`
	Transfers  []TransferBooking  `json:"transfers"`
}

// SummaryLine aggregates agent bookings of one type. Commission figures run
// from the platform to agents; AgentOwed/AgentReceived run the other way
// and leave cancelled bookings out.
type SummaryLine struct {
	Bookings          int64   `json:"bookings"`
	TotalCommission   float64 `json:"totalCommission"`
	CommissionPaid    float64 `json:"commissionPaid"`
	CommissionPending float64 `json:"commissionPending"`
	AgentOwed         float64 `json:"agentOwed"`
	AgentReceived     float64 `json:"agentReceived"`
	AgentPending      float64 `json:"agentPending"`
}

func (s *SummaryLine) add(o SummaryLine) {
	s.Bookings += o.Bookings
	s.TotalCommission += o.TotalCommission
	s.CommissionPaid += o.CommissionPaid
	s.AgentOwed += o.AgentOwed
	s.AgentReceived += o.AgentReceived
	s.settle()
}

func (s *SummaryLine) settle() {
	s.CommissionPending = ledger.RoundCurrency(s.TotalCommission - s.CommissionPaid)
	s.AgentPending = ledger.RoundCurrency(s.AgentOwed - s.AgentReceived)
}

type Summary struct {
	Totals SummaryLine                        `json:"totals"`
	ByType map[ledger.BookingType]SummaryLine `json:"byType"`
}

var errBadDate = errors.New("dates must be formatted as YYYY-MM-DD")

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Time{}, errBadDate
}
