package booking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/funnytourism/tourism-api/internal/agent"
	"github.com/funnytourism/tourism-api/internal/auth"
	"github.com/funnytourism/tourism-api/internal/ledger"
	"github.com/funnytourism/tourism-api/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notifier sends booking emails. Delivery is best effort.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
	AdminAlert(ctx context.Context, subject, body string)
	Go(ctx context.Context, fn func(ctx context.Context))
}

type Handler struct {
	Repo     *Repository
	Agents   *agent.Repository
	Notifier Notifier
	now      func() time.Time
}

func NewHandler(repo *Repository, agents *agent.Repository, notifier Notifier) *Handler {
	return &Handler{Repo: repo, Agents: agents, Notifier: notifier, now: time.Now}
}

// reference prefixes and random suffix lengths per kind of booking
const (
	prefixPackage      = "PKG"
	prefixAgentPackage = "AG"
	prefixDailyTour    = "TOUR"
	prefixTransfer     = "TRF"
)

func suffixLen(prefix string) int {
	if prefix == prefixDailyTour || prefix == prefixTransfer {
		return 5
	}
	return 9
}

// builder turns a decoded request body into an unsaved booking.
type builder func(h *Handler, r *http.Request, forAgent bool) (Entity, error)

// badRequest marks builder errors that go back to the client as 400.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func decodeValid(r *http.Request, dst interface{}) error {
	if err := utils.DecodeJSON(r, dst); err != nil {
		return badRequest{err.Error()}
	}
	if err := utils.Validate(dst); err != nil {
		return badRequest{err.Error()}
	}
	return nil
}

func (h *Handler) reference(prefix string) (string, error) {
	return utils.ReferenceNumber(prefix, suffixLen(prefix), h.now())
}

func buildPackage(h *Handler, r *http.Request, forAgent bool) (Entity, error) {
	var req PackageRequest
	if err := decodeValid(r, &req); err != nil {
		return nil, err
	}
	if forAgent && len(req.Passengers) == 0 {
		return nil, badRequest{"At least one passenger is required"}
	}
	prefix := prefixPackage
	if forAgent {
		prefix = prefixAgentPackage
	}
	ref, err := h.reference(prefix)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		Record:          req.record(ref),
		PackageID:       req.PackageID,
		PackageName:     req.PackageName,
		Adults:          2,
		Children:        req.Children,
		Infants:         req.Infants,
		HotelCategory:   req.HotelCategory,
		ArrivalFlight:   req.ArrivalFlight,
		DepartureFlight: req.DepartureFlight,
	}
	if req.Adults != nil {
		b.Adults = *req.Adults
	}
	if req.TravelDate != "" {
		d, err := parseDate(req.TravelDate)
		if err != nil {
			return nil, badRequest{err.Error()}
		}
		b.TravelDate = &d
	}
	if len(req.Passengers) > 0 {
		if b.Passengers, err = utils.ToJSONText(req.Passengers); err != nil {
			return nil, err
		}
	}
	if req.EmergencyContact != nil {
		if b.EmergencyContact, err = utils.ToJSONText(req.EmergencyContact); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func buildDailyTour(h *Handler, r *http.Request, _ bool) (Entity, error) {
	var req DailyTourRequest
	if err := decodeValid(r, &req); err != nil {
		return nil, err
	}
	date, err := parseDate(req.TourDate)
	if err != nil {
		return nil, badRequest{err.Error()}
	}
	ref, err := h.reference(prefixDailyTour)
	if err != nil {
		return nil, err
	}
	b := &DailyTourBooking{
		Record:         req.record(ref),
		TourID:         req.TourID,
		TourName:       req.TourName,
		TourDate:       date,
		TourType:       req.TourType,
		Adults:         2,
		Children:       req.Children,
		Infants:        req.Infants,
		PickupLocation: req.PickupLocation,
		HotelName:      req.HotelName,
	}
	if b.TourType == "" {
		b.TourType = "SIC"
	}
	if req.Adults != nil {
		b.Adults = *req.Adults
	}
	return b, nil
}

func buildTransfer(h *Handler, r *http.Request, _ bool) (Entity, error) {
	var req TransferRequest
	if err := decodeValid(r, &req); err != nil {
		return nil, err
	}
	date, err := parseDate(req.TransferDate)
	if err != nil {
		return nil, badRequest{err.Error()}
	}
	ref, err := h.reference(prefixTransfer)
	if err != nil {
		return nil, err
	}
	b := &TransferBooking{
		Record:         req.record(ref),
		TransferID:     req.TransferID,
		FromLocation:   req.FromLocation,
		ToLocation:     req.ToLocation,
		TransferDate:   date,
		TransferTime:   req.TransferTime,
		Passengers:     req.Passengers,
		Luggage:        req.Luggage,
		FlightNumber:   req.FlightNumber,
		VehicleType:    req.VehicleType,
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
	}
	if b.Passengers == 0 {
		b.Passengers = 1
	}
	return b, nil
}

var builders = map[ledger.BookingType]builder{
	ledger.BookingPackage:   buildPackage,
	ledger.BookingDailyTour: buildDailyTour,
	ledger.BookingTransfer:  buildTransfer,
}

// Create returns the public booking endpoint for bookings of type bt.
func (h *Handler) Create(bt ledger.BookingType) http.HandlerFunc {
	build := builders[bt]
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := build(h, r, false)
		if err != nil {
			h.writeBuildError(w, r, err)
			return
		}
		h.store(w, r, e)
	}
}

// CreateForAgent returns the agent booking endpoint for type bt. The
// commission is computed here from the agent's current rate; nothing the
// client sends about commission is trusted.
func (h *Handler) CreateForAgent(bt ledger.BookingType) http.HandlerFunc {
	build := builders[bt]
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.FromContext(r.Context())
		if !ok || p.Role != auth.RoleAgent {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		a, err := h.Agents.FindByID(r.Context(), p.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			utils.InternalError(w, r, err, "Failed to load agent")
			return
		}
		if a.Status != agent.StatusActive {
			utils.WriteError(w, http.StatusForbidden, "Agent account is not active")
			return
		}

		e, err := build(h, r, true)
		if err != nil {
			h.writeBuildError(w, r, err)
			return
		}
		e.record().assignAgent(a.ID, a.CommissionRate, h.now())
		h.store(w, r, e)
	}
}

func (h *Handler) writeBuildError(w http.ResponseWriter, r *http.Request, err error) {
	var bad badRequest
	if errors.As(err, &bad) {
		utils.WriteError(w, http.StatusBadRequest, bad.msg)
		return
	}
	utils.InternalError(w, r, err, "Failed to create booking")
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request, e Entity) {
	if err := h.Repo.Create(r.Context(), e); err != nil {
		utils.InternalError(w, r, err, "Failed to create booking")
		return
	}
	if h.Notifier != nil {
		h.Notifier.Go(r.Context(), func(ctx context.Context) { h.notifyCreated(ctx, e) })
	}
	rec := e.record()
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success":         true,
		"booking":         e,
		"referenceNumber": rec.ReferenceNumber,
	})
}

func (h *Handler) notifyCreated(ctx context.Context, e Entity) {
	rec := e.record()
	subject := fmt.Sprintf("Booking received: %s", rec.ReferenceNumber)
	body := fmt.Sprintf("Dear %s,\n\nWe received your booking %s for a total of %.2f %s. "+
		"We will contact you shortly to confirm it.\n", rec.GuestName, rec.ReferenceNumber, rec.TotalPrice, rec.Currency)
	if err := h.Notifier.Send(ctx, rec.GuestEmail, subject, body); err != nil {
		logrus.WithError(err).WithField("reference", rec.ReferenceNumber).Warn("booking confirmation email failed")
	}

	alert := fmt.Sprintf("%s booking %s from %s <%s>, total %.2f %s.",
		e.LedgerType(), rec.ReferenceNumber, rec.GuestName, rec.GuestEmail, rec.TotalPrice, rec.Currency)
	if rec.AgentID != nil {
		alert += fmt.Sprintf(" Agent #%d, commission %.2f.", *rec.AgentID, ledger.RoundCurrency(*rec.CommissionAmount))
	}
	h.Notifier.AdminAlert(ctx, "New booking "+rec.ReferenceNumber, alert)
}

// ListForAgent serves GET /api/agent/bookings[?status=&open=].
func (h *Handler) ListForAgent(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	f, err := filterFrom(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.AgentID = &p.ID
	out, err := h.Repo.ListAll(r.Context(), f)
	if err != nil {
		utils.InternalError(w, r, err, "Failed to list bookings")
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func filterFrom(r *http.Request) (Filter, error) {
	var f Filter
	if v := r.URL.Query().Get("status"); v != "" {
		s, err := ParseStatus(v)
		if err != nil {
			return f, err
		}
		f.Status = s
	}
	if v := r.URL.Query().Get("open"); v != "" {
		open, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.New("open must be true or false")
		}
		f.Open = open
	}
	return f, nil
}
