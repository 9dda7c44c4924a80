package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/funnytourism/tourism-api/internal/locale"
	"github.com/funnytourism/tourism-api/internal/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// ListPackages serves GET /api/packages[?type=&locale=].
func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	loc := locale.FromRequest(r)
	pkgs, err := h.Repo.ActivePackages(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		utils.InternalError(w, r, err, "Failed to fetch packages")
		return
	}
	out := make([]PackageSummary, len(pkgs))
	for i := range pkgs {
		out[i] = pkgs[i].Summary(loc)
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"packages": out, "locale": loc})
}

// GetPackage serves GET /api/packages/{id} where id is the public package id.
func (h *Handler) GetPackage(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.PackageBySlug(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Package not found")
			return
		}
		utils.InternalError(w, r, err, "Failed to fetch package")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"package": p.Localize(locale.FromRequest(r))})
}

// ListDailyTours serves GET /api/daily-tours[?category=&locale=].
func (h *Handler) ListDailyTours(w http.ResponseWriter, r *http.Request) {
	loc := locale.FromRequest(r)
	tours, err := h.Repo.ActiveDailyTours(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		utils.InternalError(w, r, err, "Failed to fetch daily tours")
		return
	}
	out := make([]DailyTourView, len(tours))
	for i := range tours {
		out[i] = tours[i].Localize(loc)
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"tours": out})
}

// ListTransfers serves GET /api/transfers with the filter options the
// booking form needs.
func (h *Handler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := TransferQuery{Region: q.Get("region")}
	for name, dst := range map[string]*uint{"fromLocationId": &f.FromLocationID, "toLocationId": &f.ToLocationID} {
		if v := q.Get(name); v != "" {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				utils.WriteError(w, http.StatusBadRequest, "Invalid "+name)
				return
			}
			*dst = uint(n)
		}
	}

	transfers, err := h.Repo.ActiveTransfers(r.Context(), f)
	if err != nil {
		utils.InternalError(w, r, err, "Failed to fetch transfers")
		return
	}
	regions, err := h.Repo.Regions(r.Context())
	if err != nil {
		utils.InternalError(w, r, err, "Failed to fetch transfers")
		return
	}
	locations, err := h.Repo.ActiveLocations(r.Context())
	if err != nil {
		utils.InternalError(w, r, err, "Failed to fetch transfers")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transfers": transfers,
		"regions":   regions,
		"locations": locations,
	})
}

// ListDestinations serves GET /api/destinations[?category=&region=&locale=].
func (h *Handler) ListDestinations(w http.ResponseWriter, r *http.Request) {
	loc := locale.FromRequest(r)
	q := r.URL.Query()
	dests, err := h.Repo.ActiveDestinations(r.Context(), q.Get("category"), q.Get("region"))
	if err != nil {
		utils.InternalError(w, r, err, "Failed to fetch destinations")
		return
	}
	out := make([]DestinationView, len(dests))
	for i := range dests {
		out[i] = dests[i].Localize(loc)
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"destinations": out, "locale": loc})
}

func (h *Handler) GetDestination(w http.ResponseWriter, r *http.Request) {
	d, err := h.Repo.DestinationBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Destination not found")
			return
		}
		utils.InternalError(w, r, err, "Failed to fetch destination")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"destination": d.Localize(locale.FromRequest(r))})
}

// maxPosts caps ?limit= on the public blog list.
const maxPosts = 100

// ListPosts serves GET /api/blog[?category=&limit=&locale=].
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	loc := locale.FromRequest(r)
	q := r.URL.Query()
	limit := maxPosts
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			utils.WriteError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, maxPosts)
	}
	posts, err := h.Repo.PublishedPosts(r.Context(), q.Get("category"), limit)
	if err != nil {
		utils.InternalError(w, r, err, "Failed to fetch blog posts")
		return
	}
	out := make([]BlogPostSummary, len(posts))
	for i := range posts {
		out[i] = posts[i].Summary(loc)
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"posts": out})
}

// GetPost serves GET /api/blog/{slug} and counts the view.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	b, err := h.Repo.ReadPost(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Blog post not found")
			return
		}
		utils.InternalError(w, r, err, "Failed to fetch blog post")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"post": b.Localize(locale.FromRequest(r))})
}
