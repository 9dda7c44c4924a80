package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/funnytourism/tourism-api/internal/auth"
	"github.com/funnytourism/tourism-api/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Alerts delivers back-office notifications.
type Alerts interface {
	AdminAlert(ctx context.Context, subject, body string)
}

// TotalsProvider aggregates an agent's bookings.
type TotalsProvider interface {
	AgentTotals(ctx context.Context, agentID uint) (BookingTotals, error)
}

type Handler struct {
	Repo     *Repository
	Sessions *auth.Sessions
	Alerts   Alerts
	Totals   TotalsProvider
	now      func() time.Time
}

func NewHandler(repo *Repository, sessions *auth.Sessions, alerts Alerts, totals TotalsProvider) *Handler {
	return &Handler{Repo: repo, Sessions: sessions, Alerts: alerts, Totals: totals, now: time.Now}
}

func statusDenial(s Status) string {
	switch s {
	case StatusPending:
		return "Your account is pending approval"
	case StatusSuspended:
		return "Your account has been suspended. Please contact support."
	case StatusRejected:
		return "Your registration was rejected. Please contact support."
	}
	return "Your account is not active"
}

// Register creates a PENDING agent from the public sign-up form.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := newAgent(req)
	if err != nil {
		utils.InternalError(w, r, err, "Failed to process password")
		return
	}
	a.Status = StatusPending

	if err := h.Repo.Create(r.Context(), a); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			utils.WriteError(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		utils.InternalError(w, r, err, "Failed to register agent")
		return
	}

	if h.Alerts != nil {
		h.Alerts.AdminAlert(r.Context(), "New agent registration",
			fmt.Sprintf("%s (%s, %s) registered and is waiting for approval.", a.CompanyName, a.ContactName, a.Email))
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Registration successful. Your account is pending approval.",
		"agent":   a,
	})
}

func newAgent(req RegisterRequest) (*Agent, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	return &Agent{
		Email:          req.Email,
		Password:       hash,
		CompanyName:    req.CompanyName,
		ContactName:    req.ContactName,
		Phone:          req.Phone,
		Country:        req.Country,
		Address:        req.Address,
		Website:        req.Website,
		TaxID:          req.TaxID,
		CommissionRate: DefaultCommissionRate,
	}, nil
}

// Login checks credentials and sets the agent-token cookie. Only ACTIVE
// agents get a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	a, err := h.Repo.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		utils.InternalError(w, r, err, "Login failed")
		return
	}
	if !utils.CheckPassword(a.Password, req.Password) {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if a.Status != StatusActive {
		utils.WriteError(w, http.StatusForbidden, statusDenial(a.Status))
		return
	}

	token, err := h.Sessions.Issue(auth.Principal{ID: a.ID, Email: a.Email, Name: a.ContactName, Company: a.CompanyName, Role: auth.RoleAgent})
	if err != nil {
		utils.InternalError(w, r, err, "Failed to create session")
		return
	}
	now := h.now()
	a.LastLoginAt = &now
	if err := h.Repo.DB.WithContext(r.Context()).Model(a).Update("last_login_at", now).Error; err != nil {
		logrus.WithError(err).WithField("agent_id", a.ID).Warn("could not record agent login time")
	}

	h.Sessions.SetCookie(w, auth.RoleAgent, token)
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "agent": a})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w, auth.RoleAgent)
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me returns the logged-in agent.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	if p == nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	a, err := h.Repo.FindByID(r.Context(), p.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Agent not found")
			return
		}
		utils.InternalError(w, r, err, "Failed to load agent")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"agent": a})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	if p == nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req ChangePasswordRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.Validate(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.Repo.FindByID(r.Context(), p.ID)
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "Agent not found")
		return
	}
	if !utils.CheckPassword(a.Password, req.CurrentPassword) {
		utils.WriteError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}
	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.InternalError(w, r, err, "Failed to process password")
		return
	}
	if err := h.Repo.DB.WithContext(r.Context()).Model(a).Update("password", hash).Error; err != nil {
		utils.InternalError(w, r, err, "Failed to update password")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Password updated"})
}
