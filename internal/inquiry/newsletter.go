package inquiry

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/funnytourism/tourism-api/internal/locale"
	"github.com/funnytourism/tourism-api/internal/utils"
	"gorm.io/gorm/clause"
)

// Subscriber is an address signed up for the newsletter.
type Subscriber struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Source    string    `gorm:"size:50;not null" json:"source"`
	Locale    string    `gorm:"size:5;not null" json:"locale"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

type SubscribeRequest struct {
	Email  string `json:"email" validate:"required,email,max=255"`
	Source string `json:"source" validate:"max=50"`
}

// Subscribe stores s unless the address is already subscribed, and reports
// whether it was new.
func (r *Repository) Subscribe(ctx context.Context, s *Subscriber) (bool, error) {
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(s)
	return res.RowsAffected == 1, res.Error
}

func (r *Repository) Subscribers(ctx context.Context) ([]Subscriber, error) {
	out := []Subscriber{}
	err := r.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

// Subscribe serves POST /api/newsletter/subscribe. Subscribing twice
// succeeds without a second row.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.Validate(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	s := &Subscriber{Email: req.Email, Source: req.Source, Locale: locale.FromRequest(r)}
	if s.Source == "" {
		s.Source = "website"
	}
	created, err := h.Repo.Subscribe(r.Context(), s)
	if err != nil {
		utils.InternalError(w, r, err, "Failed to subscribe to newsletter")
		return
	}
	msg := "Successfully subscribed to newsletter"
	if !created {
		msg = "You are already subscribed"
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": msg})
}

// Subscribers serves GET /api/admin/newsletter/subscribers.
func (h *Handler) Subscribers(w http.ResponseWriter, r *http.Request) {
	out, err := h.Repo.Subscribers(r.Context())
	if err != nil {
		utils.InternalError(w, r, err, "Failed to fetch subscribers")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"subscribers": out})
}
