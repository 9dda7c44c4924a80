package ledger

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/funnytourism/tourism-api/internal/auth"
	"github.com/funnytourism/tourism-api/internal/utils"
)

// MarkPaidRequest is the body of the mark-paid and record-agent-payment
// endpoints.
type MarkPaidRequest struct {
	BookingID      uint    `json:"bookingId"`
	Amount         float64 `json:"amount"`
	PaymentMethod  string  `json:"paymentMethod"`
	TransactionRef string  `json:"transactionRef"`
	Notes          string  `json:"notes"`
}

// Handler serves the admin ledger endpoints. Targets builds an empty model
// for each booking type.
type Handler struct {
	Ledger  *Ledger
	Repo    *Repository
	Targets map[BookingType]func() Payable
}

func NewHandler(l *Ledger, repo *Repository, targets map[BookingType]func() Payable) *Handler {
	return &Handler{Ledger: l, Repo: repo, Targets: targets}
}

// RecordPayment returns the endpoint recording payments of direction d
// against bookings of type bt.
func (h *Handler) RecordPayment(bt BookingType, d Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, ok := auth.FromContext(r.Context())
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		newTarget, ok := h.Targets[bt]
		if !ok {
			utils.WriteError(w, http.StatusNotFound, "Unknown booking type")
			return
		}

		var req MarkPaidRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.BookingID == 0 || !(req.Amount > 0) {
			utils.WriteError(w, http.StatusBadRequest, "Booking ID and valid amount are required")
			return
		}
		notes := req.Notes
		if notes == "" && d == DirectionAgentBalance {
			notes = fmt.Sprintf("Agent payment received: €%.2f", req.Amount)
		}

		target := newTarget()
		receipt, err := h.Ledger.RecordPayment(r.Context(), target, req.BookingID, PaymentInput{
			Direction:      d,
			Amount:         req.Amount,
			PaymentMethod:  req.PaymentMethod,
			TransactionRef: req.TransactionRef,
			Notes:          notes,
			RecordedBy:     admin.Email,
		})
		if err != nil {
			h.writeLedgerError(w, r, err)
			return
		}

		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success":     true,
			"booking":     target,
			"payment":     receipt.Payment,
			"isFullyPaid": receipt.FullyPaid,
			"message":     receiptMessage(d, receipt),
		})
	}
}

func receiptMessage(d Direction, rc *Receipt) string {
	if rc.FullyPaid {
		if d == DirectionAgentBalance {
			return "Agent has paid in full!"
		}
		return "Commission fully paid"
	}
	return fmt.Sprintf("Payment recorded. Remaining: €%.2f", RoundCurrency(rc.Remaining))
}

func (h *Handler) writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	var over *OverpaymentError
	switch {
	case errors.As(err, &over):
		utils.WriteError(w, http.StatusBadRequest, over.Error())
	case errors.Is(err, ErrInvalidAmount):
		utils.WriteError(w, http.StatusBadRequest, "Booking ID and valid amount are required")
	case errors.Is(err, ErrBookingNotFound):
		utils.WriteError(w, http.StatusNotFound, "Booking not found")
	case errors.Is(err, ErrNotAgentBooking), errors.Is(err, ErrNoCommissionBasis):
		utils.WriteError(w, http.StatusNotFound, "Not an agent booking")
	case errors.Is(err, ErrConcurrentUpdate):
		utils.WriteError(w, http.StatusConflict, "Booking was updated by another payment, please retry")
	default:
		utils.InternalError(w, r, err, "Failed to record payment")
	}
}

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// ListPayments serves GET /api/admin/commission-payments[?limit=&offset=].
// limit defaults to 100 and is capped at 500.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f PaymentFilter

	if v := q.Get("bookingType"); v != "" {
		f.BookingType = BookingType(v)
		if !f.BookingType.Valid() {
			utils.WriteError(w, http.StatusBadRequest, "Invalid bookingType")
			return
		}
	}
	if v := q.Get("direction"); v != "" {
		f.Direction = Direction(v)
		if !f.Direction.Valid() {
			utils.WriteError(w, http.StatusBadRequest, "Invalid direction")
			return
		}
	}
	for name, dst := range map[string]*uint{"agentId": &f.AgentID, "bookingId": &f.BookingID} {
		if v := q.Get(name); v != "" {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				utils.WriteError(w, http.StatusBadRequest, "Invalid "+name)
				return
			}
			*dst = uint(n)
		}
	}
	f.Limit = defaultPageSize
	for name, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				utils.WriteError(w, http.StatusBadRequest, "Invalid "+name)
				return
			}
			*dst = n
		}
	}
	if f.Limit == 0 || f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}

	payments, err := h.Repo.ListPayments(r.Context(), f)
	if err != nil {
		utils.InternalError(w, r, err, "Failed to list payments")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"payments": payments})
}
