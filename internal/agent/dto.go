package agent

// RegisterRequest is used by POST /api/agent/register.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	CompanyName string `json:"companyName" validate:"required"`
	ContactName string `json:"contactName" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Country     string `json:"country"`
	Address     string `json:"address"`
	Website     string `json:"website"`
	TaxID       string `json:"taxId"`
}

// CreateRequest is the admin variant; the account starts ACTIVE unless a
// status is given.
type CreateRequest struct {
	RegisterRequest
	CommissionRate *float64 `json:"commissionRate" validate:"omitempty,gte=0,lte=100"`
	Status         Status   `json:"status" validate:"omitempty,oneof=PENDING ACTIVE SUSPENDED REJECTED"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// UpdateRequest is used by PATCH /api/admin/agents/{id}. Nil fields are
// left unchanged.
type UpdateRequest struct {
	Status         *Status  `json:"status"`
	CommissionRate *float64 `json:"commissionRate"`
	CompanyName    *string  `json:"companyName"`
	ContactName    *string  `json:"contactName"`
	Phone          *string  `json:"phone"`
	Country        *string  `json:"country"`
	Address        *string  `json:"address"`
	Website        *string  `json:"website"`
}

// BookingTotals summarises an agent's bookings across all booking types.
type BookingTotals struct {
	Bookings          int     `json:"bookings"`
	TotalSales        float64 `json:"totalSales"`
	TotalCommission   float64 `json:"totalCommission"`
	CommissionPaid    float64 `json:"commissionPaid"`
	CommissionPending float64 `json:"commissionPending"`
}

// Detail is the admin view of one agent.
type Detail struct {
	Agent  *Agent        `json:"agent"`
	Totals BookingTotals `json:"totals"`
}
