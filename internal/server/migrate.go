package server

import (
	"fmt"

	"github.com/funnytourism/tourism-api/internal/admin"
	"github.com/funnytourism/tourism-api/internal/agent"
	"github.com/funnytourism/tourism-api/internal/booking"
	"github.com/funnytourism/tourism-api/internal/catalog"
	"github.com/funnytourism/tourism-api/internal/inquiry"
	"github.com/funnytourism/tourism-api/internal/ledger"
	"github.com/funnytourism/tourism-api/internal/user"
	"gorm.io/gorm"
)

// Migrate creates or updates every table. Agents come before bookings and
// locations before transfers because of the foreign keys.
func Migrate(db *gorm.DB) error {
	steps := []struct {
		name string
		fn   func(*gorm.DB) error
	}{
		{"admins", admin.Migrate},
		{"users", user.Migrate},
		{"agents", agent.Migrate},
		{"catalog", catalog.Migrate},
		{"bookings", booking.Migrate},
		{"commission payments", ledger.Migrate},
		{"inquiries", inquiry.Migrate},
	}
	for _, s := range steps {
		if err := s.fn(db); err != nil {
			return fmt.Errorf("migrate %s: %w", s.name, err)
		}
	}
	return nil
}
