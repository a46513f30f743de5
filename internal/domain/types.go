package domain

import "strings"

// LoanStatus is a backend-owned lifecycle state. The client never derives
// transitions itself, it only labels and filters by them.
type LoanStatus string

const (
	LoanPending   LoanStatus = "pending"
	LoanApproved  LoanStatus = "approved"
	LoanRejected  LoanStatus = "rejected"
	LoanActive    LoanStatus = "active"
	LoanCompleted LoanStatus = "completed"
	LoanDefaulted LoanStatus = "defaulted"
)

var LoanStatuses = []LoanStatus{LoanPending, LoanApproved, LoanRejected, LoanActive, LoanCompleted, LoanDefaulted}

// PaymentType is the server-side payments filter.
type PaymentType string

const (
	PaymentsAll      PaymentType = "all"
	PaymentsUpcoming PaymentType = "upcoming"
	PaymentsOverdue  PaymentType = "overdue"
	PaymentsPaid     PaymentType = "paid"
)

var PaymentTypes = []PaymentType{PaymentsAll, PaymentsUpcoming, PaymentsOverdue, PaymentsPaid}

type Role string

const (
	RoleBorrower    Role = "borrower"
	RoleLender      Role = "lender"
	RoleLoanOfficer Role = "loan_officer"
	RoleAdmin       Role = "admin"
)

// Principal carries what the gateway could learn about the caller from the token.
// Opaque tokens leave every field empty.
type Principal struct {
	UserID string `json:"userId,omitempty"`
	Role   Role   `json:"role,omitempty"`
}

func (p Principal) Known() bool {
	return p.UserID != "" || p.Role != ""
}

func ValidLoanStatus(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range LoanStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

func ValidPaymentType(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, pt := range PaymentTypes {
		if string(pt) == s {
			return true
		}
	}
	return false
}
