package catalog

import (
	"strings"
	"time"

	"github.com/funnytourism/tourism-api/internal/locale"
)

// PackageSummary is the list view of a package.
type PackageSummary struct {
	PackageID    string      `json:"packageId"`
	PackageType  string      `json:"packageType"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Duration     string      `json:"duration"`
	Destinations []string    `json:"destinations"`
	Image        string      `json:"image"`
	PdfURL       string      `json:"pdfUrl"`
	Highlights   locale.List `json:"highlights"`
}

// PackageView is the localized detail view of a package.
type PackageView struct {
	PackageSummary
	Itinerary   locale.List   `json:"itinerary"`
	Included    locale.List   `json:"included"`
	NotIncluded locale.List   `json:"notIncluded"`
	Pricing     locale.Object `json:"pricing"`
	Hotels      locale.Object `json:"hotels"`
}

type DailyTourView struct {
	ID          uint        `json:"id"`
	TourCode    string      `json:"tourCode"`
	Category    string      `json:"category"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    string      `json:"duration"`
	City        string      `json:"city"`
	SicPrice    float64     `json:"sicPrice"`
	PrivateMin2 float64     `json:"privateMin2"`
	PrivateMin4 float64     `json:"privateMin4"`
	PrivateMin6 float64     `json:"privateMin6"`
	Highlights  locale.List `json:"highlights"`
	Included    locale.List `json:"included"`
	NotIncluded locale.List `json:"notIncluded"`
	Notes       string      `json:"notes"`
	Image       string      `json:"image"`
	PdfURL      string      `json:"pdfUrl"`
}

// splitList turns "Lima, Cusco ,Puno" into its trimmed non-empty parts.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (p *Package) Summary(loc string) PackageSummary {
	return PackageSummary{
		PackageID:    p.PackageID,
		PackageType:  p.PackageType,
		Title:        locale.Pick(loc, p.Title, p.TitleEs),
		Description:  locale.Pick(loc, p.Description, p.DescriptionEs),
		Duration:     locale.Pick(loc, p.Duration, p.DurationEs),
		Destinations: splitList(p.Destinations),
		Image:        p.Image,
		PdfURL:       p.PdfURL,
		Highlights:   locale.PickList(loc, string(p.Highlights), string(p.HighlightsEs)),
	}
}

// Localize resolves every bilingual field of p for loc. Pricing and hotels
// are not translated.
func (p *Package) Localize(loc string) PackageView {
	return PackageView{
		PackageSummary: p.Summary(loc),
		Itinerary:      locale.PickList(loc, string(p.Itinerary), string(p.ItineraryEs)),
		Included:       locale.PickList(loc, string(p.Included), string(p.IncludedEs)),
		NotIncluded:    locale.PickList(loc, string(p.NotIncluded), string(p.NotIncludedEs)),
		Pricing:        locale.ParseObject(string(p.Pricing)),
		Hotels:         locale.ParseObject(string(p.Hotels)),
	}
}

func (d *DailyTour) Localize(loc string) DailyTourView {
	return DailyTourView{
		ID:          d.ID,
		TourCode:    d.TourCode,
		Category:    d.Category,
		Title:       locale.Pick(loc, d.Title, d.TitleEs),
		Description: locale.Pick(loc, d.Description, d.DescriptionEs),
		Duration:    d.Duration,
		City:        d.City,
		SicPrice:    d.SicPrice,
		PrivateMin2: d.PrivateMin2,
		PrivateMin4: d.PrivateMin4,
		PrivateMin6: d.PrivateMin6,
		Highlights:  locale.PickList(loc, string(d.Highlights), string(d.HighlightsEs)),
		Included:    locale.PickList(loc, string(d.Included), string(d.IncludedEs)),
		NotIncluded: locale.PickList(loc, string(d.NotIncluded), string(d.NotIncludedEs)),
		Notes:       locale.Pick(loc, d.Notes, d.NotesEs),
		Image:       d.Image,
		PdfURL:      d.PdfURL,
	}
}

type DestinationView struct {
	ID              uint        `json:"id"`
	Slug            string      `json:"slug"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	Region          string      `json:"region"`
	HeroImage       string      `json:"heroImage"`
	Gradient        string      `json:"gradient"`
	Attractions     locale.List `json:"attractions"`
	Experiences     locale.List `json:"experiences"`
	BestTimeToVisit string      `json:"bestTimeToVisit"`
	GettingThere    string      `json:"gettingThere"`
}

func (d *Destination) Localize(loc string) DestinationView {
	return DestinationView{
		ID:              d.ID,
		Slug:            d.Slug,
		Name:            locale.Pick(loc, d.Name, d.NameEs),
		Description:     locale.Pick(loc, d.Description, d.DescriptionEs),
		Category:        d.Category,
		Region:          d.Region,
		HeroImage:       d.HeroImage,
		Gradient:        d.Gradient,
		Attractions:     locale.PickList(loc, string(d.Attractions), string(d.AttractionsEs)),
		Experiences:     locale.PickList(loc, string(d.Experiences), string(d.ExperiencesEs)),
		BestTimeToVisit: d.BestTimeToVisit,
		GettingThere:    d.GettingThere,
	}
}

// BlogPostSummary is the list view of a post; BlogPostView adds the body.
type BlogPostSummary struct {
	ID          uint        `json:"id"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Excerpt     string      `json:"excerpt"`
	CoverImage  string      `json:"coverImage"`
	Category    string      `json:"category"`
	Tags        locale.List `json:"tags"`
	AuthorName  string      `json:"authorName"`
	Views       int         `json:"views"`
	PublishedAt *time.Time  `json:"publishedAt"`
}

type BlogPostView struct {
	BlogPostSummary
	Content string `json:"content"`
}

func (b *BlogPost) Summary(loc string) BlogPostSummary {
	return BlogPostSummary{
		ID:          b.ID,
		Slug:        b.Slug,
		Title:       locale.Pick(loc, b.Title, b.TitleEs),
		Excerpt:     locale.Pick(loc, b.Excerpt, b.ExcerptEs),
		CoverImage:  b.CoverImage,
		Category:    b.Category,
		Tags:        locale.ParseList(string(b.Tags)),
		AuthorName:  b.AuthorName,
		Views:       b.Views,
		PublishedAt: b.PublishedAt,
	}
}

func (b *BlogPost) Localize(loc string) BlogPostView {
	return BlogPostView{BlogPostSummary: b.Summary(loc), Content: locale.Pick(loc, b.Content, b.ContentEs)}
}
