package agent

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var ErrEmailTaken = errors.New("an agent with this email already exists")

type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create stores a new agent, rejecting duplicate emails with ErrEmailTaken.
func (r *Repository) Create(ctx context.Context, a *Agent) error {
	a.Email = normalizeEmail(a.Email)
	var count int64
	if err := r.DB.WithContext(ctx).Unscoped().Model(&Agent{}).Where("email = ?", a.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*Agent, error) {
	var a Agent
	err := r.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*Agent, error) {
	var a Agent
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns agents newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status Status) ([]Agent, error) {
	q := r.DB.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var agents []Agent
	err := q.Find(&agents).Error
	return agents, err
}

func (r *Repository) Save(ctx context.Context, a *Agent) error {
	return r.DB.WithContext(ctx).Save(a).Error
}

// Delete soft deletes the agent; gorm.ErrRecordNotFound if absent.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&Agent{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsAgentActive implements auth.AgentChecker.
func (r *Repository) IsAgentActive(ctx context.Context, id uint) (bool, error) {
	a, err := r.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return a.Status == StatusActive, nil
}
