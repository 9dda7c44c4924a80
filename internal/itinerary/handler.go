package itinerary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/funnytourism/tourism-api/internal/utils"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single upstream call.
const DefaultTimeout = 570 * time.Second

const (
	msgTooLong = "Itinerary generation is taking too long. Please try again in a few minutes."
	msgBusy    = "Our AI is currently busy. Please try again in a few minutes."
)

type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
	AdminAlert(ctx context.Context, subject, body string)
	Go(ctx context.Context, fn func(ctx context.Context))
}

type Handler struct {
	Client   *Client
	Notifier Notifier
	Timeout  time.Duration
	// SiteURL prefixes itinerary links in emails.
	SiteURL string
}

func NewHandler(client *Client, notifier Notifier, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Handler{Client: client, Notifier: notifier, Timeout: timeout, SiteURL: "https://funnytourism.com"}
}

// upstreamFailed writes the response for a failed upstream call made
// under ctx. Nothing is written once the client has gone away.
func (h *Handler) upstreamFailed(ctx context.Context, w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		logrus.WithField("path", r.URL.Path).Warn("itinerary service timed out")
		utils.WriteError(w, http.StatusGatewayTimeout, msgTooLong)
	case r.Context().Err() != nil:
		logrus.WithField("path", r.URL.Path).Info("client cancelled itinerary request")
	case errors.Is(err, ErrBusy):
		utils.WriteError(w, http.StatusServiceUnavailable, msgBusy)
	default:
		var ue *UpstreamError
		if errors.As(err, &ue) {
			logrus.WithError(err).Warn("itinerary service rejected request")
			utils.WriteError(w, http.StatusBadGateway, ue.Message)
			return
		}
		utils.InternalError(w, r, err, msg)
	}
}

// Generate serves POST /api/tqa/generate-itinerary.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req map[string]interface{}
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	logrus.WithField("customer_email", req["customer_email"]).Info("generating itinerary")
	data, err := h.Client.Generate(ctx, req)
	if err != nil {
		h.upstreamFailed(ctx, w, r, err, "Failed to generate itinerary")
		return
	}
	utils.WriteJSON(w, http.StatusOK, data)
}

func pathUUID(r *http.Request) (string, bool) {
	id, err := uuid.Parse(mux.Vars(r)["uuid"])
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// Get serves GET /api/itinerary/{uuid}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid itinerary id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	_, raw, err := h.Client.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Itinerary not found")
			return
		}
		h.upstreamFailed(ctx, w, r, err, "Failed to fetch itinerary")
		return
	}
	utils.WriteJSON(w, http.StatusOK, raw)
}

// RequestBooking serves POST /api/itinerary/{uuid}/request-booking. The
// customer and the back office are emailed after the service accepts it.
func (h *Handler) RequestBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid itinerary id")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	it, _, err := h.Client.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Itinerary not found")
			return
		}
		h.upstreamFailed(ctx, w, r, err, "Failed to process booking request")
		return
	}

	result, err := h.Client.RequestBooking(ctx, id)
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) {
			logrus.WithFields(logrus.Fields{"uuid": id, "status": ue.Status}).Error("itinerary booking request rejected")
			utils.WriteError(w, ue.Status, "Failed to submit booking request")
			return
		}
		h.upstreamFailed(ctx, w, r, err, "Failed to process booking request")
		return
	}

	if h.Notifier != nil {
		h.Notifier.Go(r.Context(), func(ctx context.Context) { h.notifyRequested(ctx, id, it) })
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Booking request submitted successfully",
		"data":    result,
	})
}

func travellers(it *Itinerary) string {
	s := fmt.Sprintf("%d adult(s)", it.Adults)
	if it.Children > 0 {
		s += fmt.Sprintf(", %d child(ren)", it.Children)
	}
	return s
}

func (h *Handler) notifyRequested(ctx context.Context, id string, it *Itinerary) {
	dest := it.Destination()
	link := h.SiteURL + "/itinerary/" + id
	if it.CustomerEmail != "" {
		body := fmt.Sprintf("Dear %s,\n\nThank you for requesting to book your %s tour.\n\n"+
			"Duration: %d days\nStart date: %s\nTravellers: %s\nTotal price: EUR %s\n\n"+
			"Our team will review your itinerary within 24 hours and send payment instructions.\n\n%s\n",
			it.CustomerName, dest, it.Nights()+1, it.StartDate, travellers(it), it.TotalPrice, link)
		if err := h.Notifier.Send(ctx, it.CustomerEmail, "Booking Request Received - "+dest+" Tour", body); err != nil {
			logrus.WithError(err).WithField("uuid", id).Warn("itinerary booking confirmation email failed")
		}
	}
	h.Notifier.AdminAlert(ctx, "New Booking Request - "+dest, fmt.Sprintf(
		"Customer: %s <%s> %s\nDestination: %s\nDuration: %d days / %d nights\nStart date: %s\n"+
			"Travellers: %s\nHotel category: %s-star\nTour type: %s\nTotal: EUR %s\nPer person: EUR %s\n\n%s\n",
		it.CustomerName, it.CustomerEmail, it.CustomerPhone, dest, it.Nights()+1, it.Nights(), it.StartDate,
		travellers(it), it.HotelCategory, it.TourType, it.TotalPrice, it.PricePerPerson, link))
}
