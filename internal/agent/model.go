package agent

import (
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusRejected  Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusSuspended, StatusRejected:
		return true
	}
	return false
}

const DefaultCommissionRate = 10.0

// Agent is a B2B reseller account. Deleting an agent is a soft delete so
// its bookings and ledger entries keep a valid owner.
type Agent struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	Email          string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password       string         `gorm:"size:255;not null" json:"-"`
	CompanyName    string         `gorm:"size:255;not null" json:"companyName"`
	ContactName    string         `gorm:"size:255;not null" json:"contactName"`
	Phone          string         `gorm:"size:50;not null" json:"phone"`
	Country        string         `gorm:"size:100" json:"country"`
	Address        string         `gorm:"size:255" json:"address"`
	Website        string         `gorm:"size:255" json:"website"`
	TaxID          string         `gorm:"size:100" json:"taxId"`
	CommissionRate float64        `gorm:"not null;default:10" json:"commissionRate"`
	Status         Status         `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ApprovedAt     *time.Time     `json:"approvedAt"`
	ApprovedBy     string         `gorm:"size:255" json:"approvedBy"`
	LastLoginAt    *time.Time     `json:"lastLoginAt"`
}

// ApplyStatus moves the agent to s. The approval stamp is written only the
// first time the agent becomes ACTIVE; later reactivations keep it.
func (a *Agent) ApplyStatus(s Status, by string, now time.Time) {
	a.Status = s
	if s == StatusActive && a.ApprovedAt == nil {
		a.ApprovedAt = &now
		a.ApprovedBy = by
	}
}

// Migrate creates the agents table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Agent{})
}
