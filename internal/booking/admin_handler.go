package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/funnytourism/tourism-api/internal/ledger"
	"github.com/funnytourism/tourism-api/internal/utils"
	"gorm.io/gorm"
)

// List serves GET /api/admin/bookings[?type=&status=&open=&agentId=]. Without a
// type all three kinds are returned.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f, err := filterFrom(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if v := r.URL.Query().Get("agentId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid agentId")
			return
		}
		agentID := uint(id)
		f.AgentID = &agentID
	}

	ctx := r.Context()
	var out interface{}
	switch r.URL.Query().Get("type") {
	case "":
		out, err = h.Repo.ListAll(ctx, f)
	case "package":
		var rows []Booking
		rows, err = h.Repo.ListPackages(ctx, f)
		out = map[string]interface{}{"bookings": rows}
	case "daily-tour":
		var rows []DailyTourBooking
		rows, err = h.Repo.ListDailyTours(ctx, f)
		out = map[string]interface{}{"bookings": rows}
	case "transfer":
		var rows []TransferBooking
		rows, err = h.Repo.ListTransfers(ctx, f)
		out = map[string]interface{}{"bookings": rows}
	default:
		utils.WriteError(w, http.StatusBadRequest, "Invalid type. Must be package, daily-tour or transfer")
		return
	}
	if err != nil {
		utils.InternalError(w, r, err, "Failed to list bookings")
		return
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

// Get returns the endpoint serving one booking of type bt.
func (h *Handler) Get(bt ledger.BookingType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.PathID(r, "id")
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid booking id")
			return
		}
		e, err := h.Repo.Find(r.Context(), bt, id)
		if err != nil {
			h.notFoundOr500(w, r, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"booking": e})
	}
}

// UpdateStatus returns the PATCH endpoint moving a booking of type bt to a
// new status.
func (h *Handler) UpdateStatus(bt ledger.BookingType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.PathID(r, "id")
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid booking id")
			return
		}
		var req StatusRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, err := ParseStatus(req.Status); err != nil {
			utils.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		e, err := h.Repo.Find(r.Context(), bt, id)
		if err != nil {
			h.notFoundOr500(w, r, err)
			return
		}
		l := e.State()
		if err := l.Transition(req.Status, h.now()); err != nil {
			utils.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.Repo.SaveStatus(r.Context(), e); err != nil {
			utils.InternalError(w, r, err, "Failed to update booking status")
			return
		}

		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"booking": StatusView{ID: e.Key(), Status: l.Status, ConfirmedAt: l.ConfirmedAt, CompletedAt: l.CompletedAt},
		})
	}
}

// Summary serves GET /api/admin/commissions/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Repo.CommissionSummary(r.Context())
	if err != nil {
		utils.InternalError(w, r, err, "Failed to load commission summary")
		return
	}
	utils.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) notFoundOr500(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteError(w, http.StatusNotFound, "Booking not found")
		return
	}
	utils.InternalError(w, r, err, "Failed to load booking")
}
