package models

import "strings"

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	Role      string `json:"role,omitempty"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ContactUpdate is the body of PUT /api/settings/update-contact.
type ContactUpdate struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"phone11"`
	Address   string `json:"address"`
}

// Normalize trims every field so whitespace-only names fail validation.
func (c *ContactUpdate) Normalize() {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
}

// UserUpdate is the body of PUT /api/users/:id. Nil fields are not sent.
type UserUpdate struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,min=1"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,phone11"`
	Address   *string `json:"address,omitempty"`
	Role      *string `json:"role,omitempty" validate:"omitempty,oneof=borrower lender loan_officer admin"`
	Status    *string `json:"status,omitempty" validate:"omitempty,oneof=pending approved rejected"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

// AdminDashboard mirrors GET /api/admin/dashboard; unknown keys are ignored.
type AdminDashboard struct {
	TotalUsers       int    `json:"total_users"`
	TotalBorrowers   int    `json:"total_borrowers"`
	TotalLenders     int    `json:"total_lenders"`
	TotalLoans       int    `json:"total_loans"`
	PendingLoans     int    `json:"pending_loans"`
	ActiveLoans      int    `json:"active_loans"`
	TotalDisbursed   Amount `json:"total_disbursed"`
	TotalOutstanding Amount `json:"total_outstanding"`
	RecentLoans      []Loan `json:"recent_loans,omitempty"`
}
