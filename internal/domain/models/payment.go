package models

// PaymentLoan is the loan summary embedded in a payment row.
type PaymentLoan struct {
	ID       int64      `json:"id"`
	LoanID   FlexString `json:"loan_id"`
	Borrower *Person    `json:"borrower,omitempty"`
}

type Payment struct {
	ID       int64        `json:"id"`
	Amount   Amount       `json:"amount"`
	DueDate  string       `json:"due_date"`
	PaidDate string       `json:"paid_date,omitempty"`
	Status   string       `json:"status"`
	Method   string       `json:"payment_method,omitempty"`
	LoanID   FlexString   `json:"loan_id"`
	Loan     *PaymentLoan `json:"loan,omitempty"`
}

func (p Payment) BorrowerName() string {
	if p.Loan == nil {
		return ""
	}
	return p.Loan.Borrower.DisplayName()
}

func (p Payment) BorrowerEmail() string {
	if p.Loan == nil {
		return ""
	}
	return p.Loan.Borrower.EmailAddress()
}

// LoanRef prefers the human loan id of the embedded loan.
func (p Payment) LoanRef() string {
	if p.Loan != nil && p.Loan.LoanID != "" {
		return p.Loan.LoanID.String()
	}
	return p.LoanID.String()
}

// PaymentRequest is the body of POST /api/payments. Only the loan and amount
// are checked here; the backend owns the rest of the schema.
type PaymentRequest struct {
	LoanID      int64   `json:"loan_id" validate:"gt=0"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	PaymentDate string  `json:"payment_date,omitempty"`
	Method      string  `json:"payment_method,omitempty"`
	Reference   string  `json:"reference_number,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}
