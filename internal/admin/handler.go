package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/funnytourism/tourism-api/internal/auth"
	"github.com/funnytourism/tourism-api/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Handler struct {
	Repo     *Repository
	Sessions *auth.Sessions
	now      func() time.Time
}

func NewHandler(repo *Repository, sessions *auth.Sessions) *Handler {
	return &Handler{Repo: repo, Sessions: sessions, now: time.Now}
}

// Login serves POST /api/admin/login and sets the admin-token cookie.
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
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalError(w, r, err, "Login failed")
		return
	}
	if a == nil || !utils.CheckPassword(a.Password, req.Password) {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.Sessions.Issue(auth.Principal{ID: a.ID, Email: a.Email, Name: a.Name, Role: auth.RoleAdmin})
	if err != nil {
		utils.InternalError(w, r, err, "Failed to create session")
		return
	}
	now := h.now()
	a.LastLoginAt = &now
	if err := h.Repo.DB.WithContext(r.Context()).Model(a).Update("last_login_at", now).Error; err != nil {
		logrus.WithError(err).WithField("admin_id", a.ID).Warn("could not record admin login time")
	}

	h.Sessions.SetCookie(w, auth.RoleAdmin, token)
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "admin": a})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w, auth.RoleAdmin)
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	a, err := h.Repo.FindByID(r.Context(), p.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		utils.InternalError(w, r, err, "Failed to load admin")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"admin": a})
}
