package agent

import (
	"errors"
	"net/http"

	"github.com/funnytourism/tourism-api/internal/auth"
	"github.com/funnytourism/tourism-api/internal/utils"
	"gorm.io/gorm"
)

// List serves GET /api/admin/agents[?status=].
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		utils.WriteError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	agents, err := h.Repo.List(r.Context(), status)
	if err != nil {
		utils.InternalError(w, r, err, "Failed to list agents")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"agents": agents})
}

// Get returns one agent with its booking totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid agent id")
		return
	}
	a, err := h.Repo.FindByID(r.Context(), id)
	if err != nil {
		h.notFoundOr500(w, r, err)
		return
	}
	detail := Detail{Agent: a}
	if h.Totals != nil {
		if detail.Totals, err = h.Totals.AgentTotals(r.Context(), id); err != nil {
			utils.InternalError(w, r, err, "Failed to load agent bookings")
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, detail)
}

// Create lets an admin open an agent account directly.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	admin, _ := auth.FromContext(r.Context())
	var req CreateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := newAgent(req.RegisterRequest)
	if err != nil {
		utils.InternalError(w, r, err, "Failed to process password")
		return
	}
	if req.CommissionRate != nil {
		a.CommissionRate = *req.CommissionRate
	}
	status := req.Status
	if status == "" {
		status = StatusActive
	}
	a.ApplyStatus(status, adminEmail(admin), h.now())

	if err := h.Repo.Create(r.Context(), a); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			utils.WriteError(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		utils.InternalError(w, r, err, "Failed to create agent")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "agent": a})
}

// Update changes status, commission rate or contact details. A new rate
// only applies to bookings created afterwards.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	admin, _ := auth.FromContext(r.Context())
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid agent id")
		return
	}
	var req UpdateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		utils.WriteError(w, http.StatusBadRequest, "Invalid status. Must be PENDING, ACTIVE, SUSPENDED or REJECTED")
		return
	}
	if req.CommissionRate != nil && (*req.CommissionRate < 0 || *req.CommissionRate > 100) {
		utils.WriteError(w, http.StatusBadRequest, "Commission rate must be between 0 and 100")
		return
	}

	a, err := h.Repo.FindByID(r.Context(), id)
	if err != nil {
		h.notFoundOr500(w, r, err)
		return
	}
	if req.Status != nil {
		a.ApplyStatus(*req.Status, adminEmail(admin), h.now())
	}
	if req.CommissionRate != nil {
		a.CommissionRate = *req.CommissionRate
	}
	for dst, src := range map[*string]*string{
		&a.CompanyName: req.CompanyName,
		&a.ContactName: req.ContactName,
		&a.Phone:       req.Phone,
		&a.Country:     req.Country,
		&a.Address:     req.Address,
		&a.Website:     req.Website,
	} {
		if src != nil {
			*dst = *src
		}
	}

	if err := h.Repo.Save(r.Context(), a); err != nil {
		utils.InternalError(w, r, err, "Failed to update agent")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "agent": a})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid agent id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		h.notFoundOr500(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) notFoundOr500(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteError(w, http.StatusNotFound, "Agent not found")
		return
	}
	utils.InternalError(w, r, err, "Failed to load agent")
}

func adminEmail(p *auth.Principal) string {
	if p == nil {
		return ""
	}
	return p.Email
}
