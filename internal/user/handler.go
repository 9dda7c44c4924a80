package user

import (
	"errors"
	"net/http"

	"github.com/funnytourism/tourism-api/internal/auth"
	"github.com/funnytourism/tourism-api/internal/utils"
	"gorm.io/gorm"
)

type Handler struct {
	Repo     *Repository
	Sessions *auth.Sessions
}

func NewHandler(repo *Repository, sessions *auth.Sessions) *Handler {
	return &Handler{Repo: repo, Sessions: sessions}
}

// Register creates the account and signs the user in.
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
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.InternalError(w, r, err, "Failed to process password")
		return
	}
	u := &User{Email: req.Email, Password: hash, Name: req.Name, Phone: req.Phone, Country: req.Country}
	if err := h.Repo.Create(r.Context(), u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			utils.WriteError(w, http.StatusConflict, "User already exists")
			return
		}
		utils.InternalError(w, r, err, "Failed to register user")
		return
	}
	if !h.startSession(w, r, u) {
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "user": u})
}

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
	u, err := h.Repo.FindByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalError(w, r, err, "Login failed")
		return
	}
	if u == nil || !utils.CheckPassword(u.Password, req.Password) {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !h.startSession(w, r, u) {
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": u})
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, u *User) bool {
	token, err := h.Sessions.Issue(auth.Principal{ID: u.ID, Email: u.Email, Name: u.Name, Role: auth.RoleUser})
	if err != nil {
		utils.InternalError(w, r, err, "Failed to create session")
		return false
	}
	h.Sessions.SetCookie(w, auth.RoleUser, token)
	return true
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w, auth.RoleUser)
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	u, err := h.Repo.FindByID(r.Context(), p.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		utils.InternalError(w, r, err, "Failed to load user")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": u})
}
