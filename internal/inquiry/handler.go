package inquiry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/funnytourism/tourism-api/internal/ratelimit"
	"github.com/funnytourism/tourism-api/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notifier sends the receipt to the guest and alerts the back office.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
	AdminAlert(ctx context.Context, subject, body string)
	Go(ctx context.Context, fn func(ctx context.Context))
}

type Handler struct {
	Repo     *Repository
	Notifier Notifier
	now      func() time.Time
}

func NewHandler(repo *Repository, notifier Notifier) *Handler {
	return &Handler{Repo: repo, Notifier: notifier, now: time.Now}
}

// Submit serves POST /api/contact.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Honeypot) != "" {
		logrus.WithField("client_ip", ratelimit.ClientIP(r)).Info("contact form honeypot filled, message dropped")
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := utils.Validate(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	i := &Inquiry{
		Name:    req.Name,
		Email:   strings.ToLower(req.Email),
		Subject: req.Subject,
		Message: req.Message,
		Source:  req.Source,
	}
	if i.Source == "" {
		i.Source = "contact"
	}
	if err := h.Repo.Create(r.Context(), i); err != nil {
		utils.InternalError(w, r, err, "Failed to send message")
		return
	}
	if h.Notifier != nil {
		h.Notifier.Go(r.Context(), func(ctx context.Context) { h.notifyReceived(ctx, i) })
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": i})
}

func (h *Handler) notifyReceived(ctx context.Context, i *Inquiry) {
	kind, subject := "Contact", "Message Received - Funny Tourism"
	body := fmt.Sprintf("Hello %s,\n\nThank you for contacting us. We received your message regarding %q "+
		"and will get back to you within 24 hours.\n", i.Name, i.Subject)
	if i.IsQuoteRequest() {
		kind, subject = "Quote Request", "Quote Request Received - Funny Tourism"
		body = fmt.Sprintf("Hello %s,\n\nThank you for your quote request. Our travel experts will send you "+
			"a personalised quote within 24 hours.\n\nYour request:\n%s\n", i.Name, i.Message)
	}
	if err := h.Notifier.Send(ctx, i.Email, subject, body); err != nil {
		logrus.WithError(err).WithField("inquiry_id", i.ID).Warn("inquiry receipt email failed")
	}
	h.Notifier.AdminAlert(ctx, fmt.Sprintf("New %s - %s", kind, i.Name),
		fmt.Sprintf("From: %s <%s>\nSubject: %s\nSource: %s\n\n%s\n", i.Name, i.Email, i.Subject, i.Source, i.Message))
}

// List serves GET /api/admin/inquiries[?replied=true|false].
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var replied *bool
	if v := r.URL.Query().Get("replied"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "replied must be true or false")
			return
		}
		replied = &b
	}
	out, err := h.Repo.List(r.Context(), replied)
	if err != nil {
		utils.InternalError(w, r, err, "Failed to fetch inquiries")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"inquiries": out})
}

// Update serves PATCH /api/admin/inquiries/{id}. An absent flag marks the
// inquiry replied.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid inquiry id")
		return
	}
	var req UpdateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	replied := true
	if req.Replied != nil {
		replied = *req.Replied
	}
	i, err := h.Repo.SetReplied(r.Context(), id, replied, h.now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Inquiry not found")
			return
		}
		utils.InternalError(w, r, err, "Failed to update inquiry")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "inquiry": i})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid inquiry id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Inquiry not found")
			return
		}
		utils.InternalError(w, r, err, "Failed to delete inquiry")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
