// Package catalog stores the sellable products (tour packages, daily tours,
// transfer routes) and the editorial content around them: destinations and
// blog posts. Text fields come in English and Spanish; list and object
// fields are JSON documents kept in text columns.
package catalog

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/funnytourism/tourism-api/internal/utils"
	"gorm.io/gorm"
)

type Package struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	PackageID     string         `gorm:"size:100;uniqueIndex;not null" json:"packageId" validate:"required"`
	PackageType   string         `gorm:"size:50;index" json:"packageType"`
	Title         string         `gorm:"size:255;not null" json:"title" validate:"required"`
	TitleEs       string         `gorm:"size:255" json:"titleEs"`
	Description   string         `gorm:"type:text" json:"description"`
	DescriptionEs string         `gorm:"type:text" json:"descriptionEs"`
	Duration      string         `gorm:"size:100" json:"duration"`
	DurationEs    string         `gorm:"size:100" json:"durationEs"`
	Destinations  string         `gorm:"size:500" json:"destinations"`
	Image         string         `gorm:"size:500" json:"image"`
	PdfURL        string         `gorm:"size:500" json:"pdfUrl"`
	Highlights    utils.JSONText `json:"highlights"`
	HighlightsEs  utils.JSONText `json:"highlightsEs"`
	Itinerary     utils.JSONText `json:"itinerary"`
	ItineraryEs   utils.JSONText `json:"itineraryEs"`
	Included      utils.JSONText `json:"included"`
	IncludedEs    utils.JSONText `json:"includedEs"`
	NotIncluded   utils.JSONText `json:"notIncluded"`
	NotIncludedEs utils.JSONText `json:"notIncludedEs"`
	Pricing       utils.JSONText `json:"pricing"`
	Hotels        utils.JSONText `json:"hotels"`
	IsActive      bool           `gorm:"not null;index" json:"isActive"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type DailyTour struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TourCode      string         `gorm:"size:50;uniqueIndex;not null" json:"tourCode" validate:"required"`
	Category      string         `gorm:"size:50;not null;default:'DAILY_TOUR';index" json:"category"`
	Title         string         `gorm:"size:255;not null" json:"title" validate:"required"`
	TitleEs       string         `gorm:"size:255" json:"titleEs"`
	Description   string         `gorm:"type:text" json:"description"`
	DescriptionEs string         `gorm:"type:text" json:"descriptionEs"`
	Duration      string         `gorm:"size:100" json:"duration"`
	City          string         `gorm:"size:100" json:"city"`
	SicPrice      float64        `json:"sicPrice" validate:"gte=0"`
	PrivateMin2   float64        `json:"privateMin2" validate:"gte=0"`
	PrivateMin4   float64        `json:"privateMin4" validate:"gte=0"`
	PrivateMin6   float64        `json:"privateMin6" validate:"gte=0"`
	Highlights    utils.JSONText `json:"highlights"`
	HighlightsEs  utils.JSONText `json:"highlightsEs"`
	Included      utils.JSONText `json:"included"`
	IncludedEs    utils.JSONText `json:"includedEs"`
	NotIncluded   utils.JSONText `json:"notIncluded"`
	NotIncludedEs utils.JSONText `json:"notIncludedEs"`
	Notes         string         `gorm:"type:text" json:"notes"`
	NotesEs       string         `gorm:"type:text" json:"notesEs"`
	Image         string         `gorm:"size:500" json:"image"`
	PdfURL        string         `gorm:"size:500" json:"pdfUrl"`
	IsActive      bool           `gorm:"not null;index" json:"isActive"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// TransferLocation is an airport, port, hotel area or city a transfer
// starts or ends at.
type TransferLocation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Code         string    `gorm:"size:20;uniqueIndex;not null" json:"code" validate:"required"`
	Name         string    `gorm:"size:255;not null" json:"name" validate:"required"`
	Region       string    `gorm:"size:100;index" json:"region"`
	DisplayOrder int       `gorm:"not null;default:0" json:"displayOrder"`
	IsActive     bool      `gorm:"not null" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Transfer is a priced route between two locations. Prices are per vehicle
// by group size; a nil price means the band is on request.
type Transfer struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	FromLocationID    uint              `gorm:"not null;uniqueIndex:idx_transfer_route" json:"fromLocationId" validate:"required"`
	ToLocationID      uint              `gorm:"not null;uniqueIndex:idx_transfer_route" json:"toLocationId" validate:"required,nefield=FromLocationID"`
	FromLocation      *TransferLocation `gorm:"foreignKey:FromLocationID" json:"fromLocation,omitempty" validate:"-"`
	ToLocation        *TransferLocation `gorm:"foreignKey:ToLocationID" json:"toLocation,omitempty" validate:"-"`
	SicPricePerPerson *float64          `json:"sicPricePerPerson"`
	Price1to2Pax      *float64          `json:"price1to2Pax"`
	Price3to5Pax      *float64          `json:"price3to5Pax"`
	Price6to10Pax     *float64          `json:"price6to10Pax"`
	VehicleType1to2   string            `gorm:"size:100;default:'Sedan'" json:"vehicleType1to2"`
	VehicleType3to5   string            `gorm:"size:100;default:'Minivan'" json:"vehicleType3to5"`
	VehicleType6to10  string            `gorm:"size:100;default:'Minibus'" json:"vehicleType6to10"`
	OnRequestOnly     bool              `gorm:"not null;default:false" json:"onRequestOnly"`
	Distance          string            `gorm:"size:50" json:"distance"`
	Duration          string            `gorm:"size:50" json:"duration"`
	IsActive          bool              `gorm:"not null;index" json:"isActive"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

var ErrSameLocation = errors.New("a transfer needs two different locations")

func (t *Transfer) BeforeSave(*gorm.DB) error {
	if t.FromLocationID != 0 && t.FromLocationID == t.ToLocationID {
		return ErrSameLocation
	}
	return nil
}

// Destination is a region or city page of the site.
type Destination struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Slug            string         `gorm:"size:150;uniqueIndex;not null" json:"slug" validate:"required,max=150"`
	Name            string         `gorm:"size:255;not null" json:"name" validate:"required"`
	NameEs          string         `gorm:"size:255" json:"nameEs"`
	Description     string         `gorm:"type:text;not null" json:"description" validate:"required"`
	DescriptionEs   string         `gorm:"type:text" json:"descriptionEs"`
	Category        string         `gorm:"size:50;not null;index" json:"category" validate:"required"`
	Region          string         `gorm:"size:100;not null;index" json:"region" validate:"required"`
	HeroImage       string         `gorm:"size:500;not null" json:"heroImage" validate:"required"`
	Gradient        string         `gorm:"size:100" json:"gradient"`
	Attractions     utils.JSONText `json:"attractions"`
	AttractionsEs   utils.JSONText `json:"attractionsEs"`
	Experiences     utils.JSONText `json:"experiences"`
	ExperiencesEs   utils.JSONText `json:"experiencesEs"`
	BestTimeToVisit string         `gorm:"size:255" json:"bestTimeToVisit"`
	GettingThere    string         `gorm:"type:text" json:"gettingThere"`
	DisplayOrder    int            `gorm:"not null;default:0" json:"displayOrder"`
	IsActive        bool           `gorm:"not null;index" json:"isActive"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type BlogStatus string

const (
	BlogDraft     BlogStatus = "DRAFT"
	BlogPublished BlogStatus = "PUBLISHED"
	BlogArchived  BlogStatus = "ARCHIVED"
)

// BlogPost is an article. Only published posts are public.
type BlogPost struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Slug        string         `gorm:"size:200;uniqueIndex;not null" json:"slug" validate:"max=200"`
	Title       string         `gorm:"size:255;not null" json:"title" validate:"required"`
	TitleEs     string         `gorm:"size:255" json:"titleEs"`
	Excerpt     string         `gorm:"type:text" json:"excerpt"`
	ExcerptEs   string         `gorm:"type:text" json:"excerptEs"`
	Content     string         `gorm:"type:text" json:"content"`
	ContentEs   string         `gorm:"type:text" json:"contentEs"`
	CoverImage  string         `gorm:"size:500" json:"coverImage"`
	Category    string         `gorm:"size:100;index" json:"category"`
	Tags        utils.JSONText `json:"tags"`
	AuthorName  string         `gorm:"size:255" json:"authorName"`
	Status      BlogStatus     `gorm:"size:20;not null;default:'DRAFT';index" json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	Views       int            `gorm:"not null;default:0" json:"views"`
	PublishedAt *time.Time     `gorm:"index" json:"publishedAt"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

var (
	ErrSlugRequired = errors.New("slug is required")
	nonSlug         = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify lowercases s and joins its ASCII letter and digit runs with
// dashes: "Cappadocia in 3 Days!" becomes "cappadocia-in-3-days".
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// BeforeSave derives a missing slug from the title and stamps PublishedAt
// the first time the post is published.
func (b *BlogPost) BeforeSave(*gorm.DB) error {
	if b.Slug == "" {
		b.Slug = Slugify(b.Title)
	}
	if b.Slug == "" {
		return ErrSlugRequired
	}
	if b.Status == "" {
		b.Status = BlogDraft
	}
	if b.Status == BlogPublished && b.PublishedAt == nil {
		now := time.Now()
		b.PublishedAt = &now
	}
	return nil
}

func (p *Package) setID(id uint) { p.ID = id }
func (d *Destination) setID(id uint) { d.ID = id }
func (b *BlogPost) setID(id uint) { b.ID = id }
func (d *DailyTour) setID(id uint) { d.ID = id }
func (l *TransferLocation) setID(id uint) { l.ID = id }
func (t *Transfer) setID(id uint) {
	t.ID = id
	t.FromLocation, t.ToLocation = nil, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Package{}, &DailyTour{}, &TransferLocation{}, &Transfer{}, &Destination{}, &BlogPost{})
}
