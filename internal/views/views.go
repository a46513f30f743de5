// Package views holds the list view descriptors shared by the gateway exports
// and the console client.
package views

import (
	"strconv"

	"cashloan/internal/domain/models"
	"cashloan/internal/listview"
)

func loanID(l models.Loan) int64 { return l.ID }

func loanColumns() map[string]listview.Compare[models.Loan] {
	return map[string]listview.Compare[models.Loan]{
		"id":                  listview.ByNumber(loanID),
		"loan_number":         listview.ByString(models.Loan.Reference),
		"borrower":            listview.ByString(models.Loan.BorrowerName),
		"principal_amount":    listview.ByNumber(func(l models.Loan) float64 { return l.PrincipalAmount.Float() }),
		"approved_amount":     listview.ByNumber(func(l models.Loan) float64 { return l.ApprovedAmount.Float() }),
		"outstanding_balance": listview.ByNumber(func(l models.Loan) float64 { return l.OutstandingBalance.Float() }),
		"status":              listview.ByString(func(l models.Loan) string { return l.Status }),
		"created_at":          listview.ByString(func(l models.Loan) string { return l.CreatedAt }),
		"next_payment_date":   listview.ByString(func(l models.Loan) string { return l.NextPaymentDate }),
	}
}

var loanFields = map[string]func(models.Loan) string{
	"status": func(l models.Loan) string { return l.Status },
	"type":   func(l models.Loan) string { return l.Type },
}

// Loans is the loans table: search, status and sort go to the backend, the
// loan type filter is applied to the loaded page.
func Loans() listview.Descriptor[models.Loan] {
	return listview.Descriptor[models.Loan]{
		Name:         "loans",
		Params:       listview.LoanParams,
		SearchPolicy: listview.MatchAnyField,
		SearchFields: func(l models.Loan) []string {
			return []string{l.Reference(), l.BorrowerName(), l.BorrowerEmail(), l.Purpose}
		},
		ServerSearch: true,
		Fields:       loanFields,
		Columns:      loanColumns(),
		ServerSort:   true,
		ID:           loanID,
	}
}

// AdminLoans is the admin dashboard loans card. The endpoint returns the whole
// collection, so search matches the loan id and everything else is local.
func AdminLoans() listview.Descriptor[models.Loan] {
	return listview.Descriptor[models.Loan]{
		Name:         "admin-loans",
		Params:       listview.LoanParams,
		SearchPolicy: listview.MatchAnyField,
		SearchFields: func(l models.Loan) []string {
			return []string{strconv.FormatInt(l.ID, 10)}
		},
		Fields:      loanFields,
		Columns:     loanColumns(),
		LocalPaging: true,
		ID:          loanID,
	}
}

// LenderLoans is the lender portfolio table.
func LenderLoans() listview.Descriptor[models.Loan] {
	return listview.Descriptor[models.Loan]{
		Name:         "lender-loans",
		SearchPolicy: listview.MatchAnyField,
		SearchFields: func(l models.Loan) []string {
			return []string{l.Reference(), l.BorrowerName(), l.Purpose}
		},
		Fields:      loanFields,
		Columns:     loanColumns(),
		LocalPaging: true,
		ID:          loanID,
	}
}

// Payments is the payments table; the type filter is sent even when "all".
func Payments() listview.Descriptor[models.Payment] {
	return listview.Descriptor[models.Payment]{
		Name:         "payments",
		Params:       listview.PaymentParams,
		SearchPolicy: listview.MatchAnyField,
		SearchFields: func(p models.Payment) []string {
			return []string{p.BorrowerName(), p.BorrowerEmail(), p.LoanRef(), strconv.FormatInt(p.ID, 10)}
		},
		ServerSearch: true,
		Fields: map[string]func(models.Payment) string{
			"type":   func(p models.Payment) string { return p.Status },
			"status": func(p models.Payment) string { return p.Status },
		},
		Columns: map[string]listview.Compare[models.Payment]{
			"id":        listview.ByNumber(func(p models.Payment) int64 { return p.ID }),
			"borrower":  listview.ByString(models.Payment.BorrowerName),
			"loan_id":   listview.ByString(models.Payment.LoanRef),
			"amount":    listview.ByNumber(func(p models.Payment) float64 { return p.Amount.Float() }),
			"due_date":  listview.ByString(func(p models.Payment) string { return p.DueDate }),
			"paid_date": listview.ByString(func(p models.Payment) string { return p.PaidDate }),
			"status":    listview.ByString(func(p models.Payment) string { return p.Status }),
		},
		ServerSort: true,
		ID:         func(p models.Payment) int64 { return p.ID },
	}
}

// DefaultPaymentSort is the column the payments view starts sorted by.
const DefaultPaymentSort = "due_date"

// PaymentsQuery starts the payments view at due date ascending.
func PaymentsQuery(pageSize int) listview.Query {
	q := listview.NewQuery(pageSize)
	q.SetSort(DefaultPaymentSort, listview.SortAsc)
	return q
}

func userFields() map[string]func(models.User) string {
	return map[string]func(models.User) string{
		"status": func(u models.User) string { return u.Status },
		"role":   func(u models.User) string { return u.Role },
	}
}

func userColumns() map[string]listview.Compare[models.User] {
	return map[string]listview.Compare[models.User]{
		"id":         listview.ByNumber(func(u models.User) int64 { return u.ID }),
		"name":       listview.ByString(models.User.FullName),
		"email":      listview.ByString(func(u models.User) string { return u.Email }),
		"role":       listview.ByString(func(u models.User) string { return u.Role }),
		"status":     listview.ByString(func(u models.User) string { return u.Status }),
		"created_at": listview.ByString(func(u models.User) string { return u.CreatedAt }),
	}
}

// Users is the user management table. "jane doe" matches first and last name
// together.
func Users() listview.Descriptor[models.User] {
	return listview.Descriptor[models.User]{
		Name:         "users",
		Params:       listview.UserParams,
		SearchPolicy: listview.MatchJoined,
		SearchFields: func(u models.User) []string {
			return []string{u.FirstName, u.LastName, u.Email}
		},
		ServerSearch: true,
		Fields:       userFields(),
		Columns:      userColumns(),
		ServerSort:   true,
		ID:           func(u models.User) int64 { return u.ID },
	}
}

// AdminUsers is the admin dashboard users card, filtered and paged locally.
func AdminUsers() listview.Descriptor[models.User] {
	d := Users()
	d.Name = "admin-users"
	d.ServerSearch = false
	d.ServerSort = false
	d.LocalPaging = true
	return d
}
