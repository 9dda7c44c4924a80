package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/funnytourism/tourism-api/internal/utils"
	"gorm.io/gorm"
)

var ErrEmailTaken = errors.New("an admin with this email already exists")

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Create hashes password and stores a new admin.
func (r *Repository) Create(ctx context.Context, email, password, name string) (*Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var count int64
	if err := r.DB.WithContext(ctx).Model(&Admin{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	a := &Admin{Email: email, Password: hash, Name: name}
	if err := r.DB.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*Admin, error) {
	var a Admin
	err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*Admin, error) {
	var a Admin
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
