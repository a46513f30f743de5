package models

import (
	"strconv"
	"strings"
)

// Person is the embedded borrower/lender shape. Payments carry a single
// "name" while loans carry first/last names.
type Person struct {
	ID        int64  `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

func (p *Person) DisplayName() string {
	if p == nil {
		return ""
	}
	if n := strings.TrimSpace(p.Name); n != "" {
		return n
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Person) EmailAddress() string {
	if p == nil {
		return ""
	}
	return p.Email
}

type Loan struct {
	ID                 int64   `json:"id"`
	LoanNumber         string  `json:"loan_number"`
	Type               string  `json:"type"`
	PrincipalAmount    Amount  `json:"principal_amount"`
	ApprovedAmount     Amount  `json:"approved_amount"`
	InterestRate       Amount  `json:"interest_rate"`
	Status             string  `json:"status"`
	TermMonths         int     `json:"term_months,omitempty"`
	Purpose            string  `json:"purpose,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at,omitempty"`
	StartDate          string  `json:"start_date,omitempty"`
	FirstPaymentDate   string  `json:"first_payment_date,omitempty"`
	NextPaymentDate    string  `json:"next_payment_date,omitempty"`
	Notes              string  `json:"notes,omitempty"`
	RejectionReason    string  `json:"rejection_reason,omitempty"`
	OutstandingBalance Amount  `json:"outstanding_balance"`
	Borrower           *Person `json:"borrower,omitempty"`
	Lender             *Person `json:"lender,omitempty"`
}

// Reference is the loan number, or the numeric id when the backend has none.
func (l Loan) Reference() string {
	if l.LoanNumber != "" {
		return l.LoanNumber
	}
	return strconv.FormatInt(l.ID, 10)
}

func (l Loan) BorrowerName() string { return l.Borrower.DisplayName() }

func (l Loan) BorrowerEmail() string { return l.Borrower.EmailAddress() }

func (l Loan) LenderName() string { return l.Lender.DisplayName() }

type Lender struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
}

func (l Lender) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// LoanStatistics mirrors GET /api/loans/statistics. Fields the backend does
// not send stay zero.
type LoanStatistics struct {
	TotalLoans       int    `json:"total_loans"`
	PendingLoans     int    `json:"pending_loans"`
	ApprovedLoans    int    `json:"approved_loans"`
	ActiveLoans      int    `json:"active_loans"`
	RejectedLoans    int    `json:"rejected_loans"`
	CompletedLoans   int    `json:"completed_loans"`
	DefaultedLoans   int    `json:"defaulted_loans"`
	TotalDisbursed   Amount `json:"total_disbursed"`
	TotalOutstanding Amount `json:"total_outstanding"`
	TotalCollected   Amount `json:"total_collected"`
}

// ActionResult is the body the backend returns from a mutating call.
type ActionResult struct {
	Message string `json:"message"`
	Loan    *Loan  `json:"loan,omitempty"`
}
