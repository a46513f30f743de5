package models

// ApproveRequest is the body of POST /api/loans/:id/approve.
type ApproveRequest struct {
	ApprovedAmount float64  `json:"approved_amount" validate:"gt=0"`
	InterestRate   *float64 `json:"interest_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	LenderID       *int64   `json:"lender_id,omitempty" validate:"omitempty,gt=0"`
}

// RejectRequest is the body of POST /api/loans/:id/reject. A nil reason is sent as null.
type RejectRequest struct {
	Reason *string `json:"reason"`
}

// ActivateRequest is the body of POST /api/loans/:id/activate. Dates are YYYY-MM-DD.
type ActivateRequest struct {
	StartDate        *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	FirstPaymentDate *string `json:"first_payment_date" validate:"omitempty,datetime=2006-01-02"`
}
