package user

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/funnytourism/tourism-api/internal/auth"
	"github.com/funnytourism/tourism-api/internal/catalog"
	"github.com/funnytourism/tourism-api/internal/locale"
	"github.com/funnytourism/tourism-api/internal/utils"
	"gorm.io/gorm/clause"
)

// WishlistItem is a package a user saved for later, by public package id.
type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_package" json:"userId"`
	PackageID string    `gorm:"size:100;not null;uniqueIndex:idx_wishlist_user_package" json:"packageId"`
	CreatedAt time.Time `json:"createdAt"`
}

// AddToWishlist saves the item when missing and reports whether it was new.
func (r *Repository) AddToWishlist(ctx context.Context, userID uint, packageID string) (*WishlistItem, bool, error) {
	item := &WishlistItem{UserID: userID, PackageID: packageID}
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(item)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return item, true, nil
	}
	err := r.DB.WithContext(ctx).Where("user_id = ? AND package_id = ?", userID, packageID).First(item).Error
	return item, false, err
}

func (r *Repository) Wishlist(ctx context.Context, userID uint) ([]WishlistItem, error) {
	out := []WishlistItem{}
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

func (r *Repository) RemoveFromWishlist(ctx context.Context, userID uint, packageID string) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND package_id = ?", userID, packageID).
		Delete(&WishlistItem{}).Error
}

// Packages resolves public package ids to catalog rows.
type Packages interface {
	PackagesByPackageID(ctx context.Context, ids []string) (map[string]catalog.Package, error)
}

type WishlistHandler struct {
	Repo     *Repository
	Packages Packages
}

func NewWishlistHandler(repo *Repository, packages Packages) *WishlistHandler {
	return &WishlistHandler{Repo: repo, Packages: packages}
}

type wishlistEntry struct {
	WishlistItem
	// Package is nil once the package is withdrawn from sale.
	Package *catalog.PackageSummary `json:"package"`
}

type WishlistRequest struct {
	PackageID string `json:"packageId" validate:"required,max=100"`
}

// List serves GET /api/wishlist with each saved package localized.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	items, err := h.Repo.Wishlist(r.Context(), p.ID)
	if err != nil {
		utils.InternalError(w, r, err, "Failed to fetch wishlist")
		return
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.PackageID
	}
	pkgs, err := h.Packages.PackagesByPackageID(r.Context(), ids)
	if err != nil {
		utils.InternalError(w, r, err, "Failed to fetch wishlist")
		return
	}

	loc := locale.FromRequest(r)
	out := make([]wishlistEntry, len(items))
	for i, it := range items {
		out[i] = wishlistEntry{WishlistItem: it}
		if pkg, ok := pkgs[it.PackageID]; ok {
			s := pkg.Summary(loc)
			out[i].Package = &s
		}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"wishlist": out})
}

// Add serves POST /api/wishlist. Adding a saved package again is not an
// error.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req WishlistRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.PackageID = strings.TrimSpace(req.PackageID)
	if err := utils.Validate(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, created, err := h.Repo.AddToWishlist(r.Context(), p.ID, req.PackageID)
	if err != nil {
		utils.InternalError(w, r, err, "Failed to update wishlist")
		return
	}
	msg := "Added to wishlist"
	if !created {
		msg = "Already in wishlist"
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": msg, "wishlist": item})
}

// Remove serves DELETE /api/wishlist?packageId=.
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	packageID := strings.TrimSpace(r.URL.Query().Get("packageId"))
	if packageID == "" {
		utils.WriteError(w, http.StatusBadRequest, "packageId is required")
		return
	}
	if err := h.Repo.RemoveFromWishlist(r.Context(), p.ID, packageID); err != nil {
		utils.InternalError(w, r, err, "Failed to update wishlist")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Removed from wishlist"})
}
