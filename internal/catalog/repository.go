package catalog

import (
	"context"

	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// ActivePackages lists active packages ordered by package id, optionally
// of one type.
func (r *Repository) ActivePackages(ctx context.Context, packageType string) ([]Package, error) {
	q := r.DB.WithContext(ctx).Where("is_active = ?", true)
	if packageType != "" {
		q = q.Where("package_type = ?", packageType)
	}
	var out []Package
	err := q.Order("package_id ASC").Find(&out).Error
	return out, err
}

// PackageBySlug finds an active package by its public package id.
func (r *Repository) PackageBySlug(ctx context.Context, packageID string) (*Package, error) {
	var p Package
	err := r.DB.WithContext(ctx).Where("package_id = ? AND is_active = ?", packageID, true).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ActiveDailyTours(ctx context.Context, category string) ([]DailyTour, error) {
	q := r.DB.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []DailyTour
	err := q.Order("tour_code ASC").Find(&out).Error
	return out, err
}

// TransferQuery filters public transfer routes. Routes match in either
// direction.
type TransferQuery struct {
	FromLocationID uint
	ToLocationID   uint
	Region         string
}

func (r *Repository) ActiveTransfers(ctx context.Context, f TransferQuery) ([]Transfer, error) {
	q := r.DB.WithContext(ctx).Model(&Transfer{}).
		Preload("FromLocation").Preload("ToLocation").
		Where("transfers.is_active = ?", true)

	switch {
	case f.FromLocationID != 0 && f.ToLocationID != 0:
		q = q.Where("(from_location_id = ? AND to_location_id = ?) OR (from_location_id = ? AND to_location_id = ?)",
			f.FromLocationID, f.ToLocationID, f.ToLocationID, f.FromLocationID)
	case f.FromLocationID != 0 || f.ToLocationID != 0:
		id := f.FromLocationID + f.ToLocationID
		q = q.Where("from_location_id = ? OR to_location_id = ?", id, id)
	}
	if f.Region != "" {
		q = q.Where("from_location_id IN (?)",
			r.DB.Model(&TransferLocation{}).Select("id").Where("region = ?", f.Region))
	}

	var out []Transfer
	err := q.Order("transfers.id ASC").Find(&out).Error
	return out, err
}

// ActiveLocations lists active locations in display order.
func (r *Repository) ActiveLocations(ctx context.Context) ([]TransferLocation, error) {
	var out []TransferLocation
	err := r.DB.WithContext(ctx).Where("is_active = ?", true).
		Order("display_order ASC").Order("name ASC").Find(&out).Error
	return out, err
}

// Regions returns the distinct regions of active locations.
func (r *Repository) Regions(ctx context.Context) ([]string, error) {
	out := []string{}
	err := r.DB.WithContext(ctx).Model(&TransferLocation{}).
		Where("is_active = ? AND region <> ''", true).
		Distinct().Order("region ASC").Pluck("region", &out).Error
	return out, err
}

// ActiveDestinations lists active destinations in display order,
// optionally narrowed by category and region.
func (r *Repository) ActiveDestinations(ctx context.Context, category, region string) ([]Destination, error) {
	q := r.DB.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if region != "" {
		q = q.Where("region = ?", region)
	}
	var out []Destination
	err := q.Order("display_order ASC").Order("name ASC").Find(&out).Error
	return out, err
}

func (r *Repository) DestinationBySlug(ctx context.Context, slug string) (*Destination, error) {
	var d Destination
	err := r.DB.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// PublishedPosts lists published posts, newest first. limit <= 0 means no
// limit.
func (r *Repository) PublishedPosts(ctx context.Context, category string, limit int) ([]BlogPost, error) {
	q := r.DB.WithContext(ctx).Where("status = ?", BlogPublished)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []BlogPost
	err := q.Order("published_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

// ReadPost loads a published post by slug and counts the view.
func (r *Repository) ReadPost(ctx context.Context, slug string) (*BlogPost, error) {
	var b BlogPost
	err := r.DB.WithContext(ctx).Where("slug = ? AND status = ?", slug, BlogPublished).First(&b).Error
	if err != nil {
		return nil, err
	}
	err = r.DB.WithContext(ctx).Model(&b).UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	if err != nil {
		return nil, err
	}
	b.Views++
	return &b, nil
}

// PackagesByPackageID returns the active packages among ids, keyed by their
// public package id.
func (r *Repository) PackagesByPackageID(ctx context.Context, ids []string) (map[string]Package, error) {
	out := map[string]Package{}
	if len(ids) == 0 {
		return out, nil
	}
	var rows []Package
	if err := r.DB.WithContext(ctx).Where("package_id IN ? AND is_active = ?", ids, true).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.PackageID] = p
	}
	return out, nil
}
