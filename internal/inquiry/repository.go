package inquiry

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(ctx context.Context, i *Inquiry) error {
	return r.DB.WithContext(ctx).Create(i).Error
}

// List returns inquiries newest first, optionally only replied or unreplied
// ones.
func (r *Repository) List(ctx context.Context, replied *bool) ([]Inquiry, error) {
	q := r.DB.WithContext(ctx)
	if replied != nil {
		q = q.Where("replied = ?", *replied)
	}
	out := []Inquiry{}
	err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

// SetReplied loads the inquiry, applies the flag and stores both columns.
func (r *Repository) SetReplied(ctx context.Context, id uint, replied bool, now time.Time) (*Inquiry, error) {
	var i Inquiry
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&i, id).Error; err != nil {
			return err
		}
		i.SetReplied(replied, now)
		return tx.Model(&i).Updates(map[string]interface{}{
			"replied":    i.Replied,
			"replied_at": i.RepliedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Delete reports gorm.ErrRecordNotFound when nothing was removed.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&Inquiry{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
