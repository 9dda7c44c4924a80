package catalog

import (
	"errors"
	"net/http"

	"github.com/funnytourism/tourism-api/internal/utils"
	"gorm.io/gorm"
)

// model is the pointer side of a catalog type.
type model[T any] interface {
	*T
	setID(id uint)
}

// Resource serves admin CRUD for one catalog table. Unlike the public
// endpoints it sees inactive rows and the raw bilingual fields.
type Resource[T any, PT model[T]] struct {
	DB *gorm.DB
	// Name and Plural are the JSON keys; Label starts error messages.
	Name    string
	Plural  string
	Label   string
	Order   string
	Preload []string
	// fresh returns a new row carrying the defaults for fields the client
	// may omit.
	fresh func() PT
}

func NewPackages(db *gorm.DB) *Resource[Package, *Package] {
	return &Resource[Package, *Package]{DB: db, Name: "package", Plural: "packages", Label: "Package", Order: "package_id ASC",
		fresh: func() *Package { return &Package{IsActive: true} }}
}

func NewDailyTours(db *gorm.DB) *Resource[DailyTour, *DailyTour] {
	return &Resource[DailyTour, *DailyTour]{DB: db, Name: "tour", Plural: "tours", Label: "Daily tour", Order: "created_at DESC",
		fresh: func() *DailyTour { return &DailyTour{IsActive: true, Category: "DAILY_TOUR"} }}
}

func NewTransferLocations(db *gorm.DB) *Resource[TransferLocation, *TransferLocation] {
	return &Resource[TransferLocation, *TransferLocation]{DB: db, Name: "location", Plural: "locations", Label: "Location", Order: "display_order ASC, name ASC",
		fresh: func() *TransferLocation { return &TransferLocation{IsActive: true} }}
}

func NewTransfers(db *gorm.DB) *Resource[Transfer, *Transfer] {
	return &Resource[Transfer, *Transfer]{DB: db, Name: "transfer", Plural: "transfers", Label: "Transfer", Order: "id ASC",
		Preload: []string{"FromLocation", "ToLocation"},
		fresh:   func() *Transfer { return &Transfer{IsActive: true} }}
}

func NewDestinations(db *gorm.DB) *Resource[Destination, *Destination] {
	return &Resource[Destination, *Destination]{DB: db, Name: "destination", Plural: "destinations", Label: "Destination", Order: "display_order ASC, name ASC",
		fresh: func() *Destination { return &Destination{IsActive: true, Gradient: "from-blue-500 to-blue-700"} }}
}

func NewBlogPosts(db *gorm.DB) *Resource[BlogPost, *BlogPost] {
	return &Resource[BlogPost, *BlogPost]{DB: db, Name: "post", Plural: "posts", Label: "Blog post", Order: "created_at DESC",
		fresh: func() *BlogPost { return &BlogPost{Status: BlogDraft} }}
}

func (res *Resource[T, PT]) query(r *http.Request) *gorm.DB {
	q := res.DB.WithContext(r.Context())
	for _, p := range res.Preload {
		q = q.Preload(p)
	}
	return q
}

func (res *Resource[T, PT]) List(w http.ResponseWriter, r *http.Request) {
	out := []T{}
	if err := res.query(r).Order(res.Order).Find(&out).Error; err != nil {
		utils.InternalError(w, r, err, "Failed to fetch "+res.Plural)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{res.Plural: out})
}

func (res *Resource[T, PT]) Get(w http.ResponseWriter, r *http.Request) {
	row, ok := res.load(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{res.Name: row})
}

func (res *Resource[T, PT]) Create(w http.ResponseWriter, r *http.Request) {
	row := res.fresh()
	if err := utils.DecodeJSON(r, row); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	row.setID(0)
	if err := utils.Validate(row); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := res.DB.WithContext(r.Context()).Create(row).Error; err != nil {
		res.writeSaveError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{"success": true, res.Name: row})
}

// Update applies the fields present in the body to the stored row.
func (res *Resource[T, PT]) Update(w http.ResponseWriter, r *http.Request) {
	row, ok := res.load(w, r)
	if !ok {
		return
	}
	id, _ := utils.PathID(r, "id")
	if err := utils.DecodeJSON(r, row); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	row.setID(id)
	if err := utils.Validate(row); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := res.DB.WithContext(r.Context()).Save(row).Error; err != nil {
		res.writeSaveError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, res.Name: row})
}

func (res *Resource[T, PT]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid "+res.Name+" id")
		return
	}
	result := res.DB.WithContext(r.Context()).Delete(PT(new(T)), id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			utils.WriteError(w, http.StatusConflict, "The "+res.Name+" is still in use; deactivate it instead")
			return
		}
		utils.InternalError(w, r, result.Error, "Failed to delete "+res.Name)
		return
	}
	if result.RowsAffected == 0 {
		utils.WriteError(w, http.StatusNotFound, res.Label+" not found")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (res *Resource[T, PT]) load(w http.ResponseWriter, r *http.Request) (PT, bool) {
	id, err := utils.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid "+res.Name+" id")
		return nil, false
	}
	row := PT(new(T))
	if err := res.query(r).First(row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, res.Label+" not found")
			return nil, false
		}
		utils.InternalError(w, r, err, "Failed to fetch "+res.Name)
		return nil, false
	}
	return row, true
}

func (res *Resource[T, PT]) writeSaveError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		utils.WriteError(w, http.StatusConflict, "A "+res.Name+" with the same key already exists")
	case errors.Is(err, ErrSlugRequired):
		utils.WriteError(w, http.StatusBadRequest, "slug is required")
	case errors.Is(err, ErrSameLocation):
		utils.WriteError(w, http.StatusBadRequest, "From and to locations must differ")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		utils.WriteError(w, http.StatusBadRequest, "Unknown location")
	default:
		utils.InternalError(w, r, err, "Failed to save "+res.Name)
	}
}
