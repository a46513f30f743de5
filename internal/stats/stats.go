// Package stats derives dashboard figures from the loaded records. Results
// describe the current page or search scope, not global totals, unless they
// come from the backend statistics payload.
package stats

import (
	"strings"

	"cashloan/internal/domain"
	"cashloan/internal/domain/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent renders num/den*100 with one decimal; a zero denominator is "0".
func Percent(num, den int) string {
	if den == 0 {
		return "0"
	}
	return decimal.NewFromInt(int64(num)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(int64(den)), 4).
		StringFixed(1)
}

func isStatus(l models.Loan, s domain.LoanStatus) bool {
	return strings.EqualFold(strings.TrimSpace(l.Status), string(s))
}

type AdminStats struct {
	Total         int             `json:"total"`
	Active        int             `json:"active"`
	Repaid        int             `json:"repaid"`
	MonthlyVolume decimal.Decimal `json:"monthly_volume"`
	RepaymentRate string          `json:"repayment_rate"`
}

// AdminLoanStats: active is approved with an outstanding balance, repaid is
// approved with none left, volume sums approved amounts of approved loans.
func AdminLoanStats(loans []models.Loan) AdminStats {
	out := AdminStats{Total: len(loans), MonthlyVolume: decimal.Zero}
	for _, l := range loans {
		if !isStatus(l, domain.LoanApproved) {
			continue
		}
		out.MonthlyVolume = out.MonthlyVolume.Add(l.ApprovedAmount.Decimal)
		if l.OutstandingBalance.Positive() {
			out.Active++
		} else if l.OutstandingBalance.IsZero() {
			out.Repaid++
		}
	}
	out.RepaymentRate = Percent(out.Repaid, out.Total)
	return out
}

type Portfolio struct {
	TotalBorrowed      decimal.Decimal `json:"total_borrowed"`
	MonthlyPayment     decimal.Decimal `json:"monthly_payment"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	NextPayment        string          `json:"next_payment,omitempty"`
	Active             []models.Loan   `json:"-"`
}

// LenderPortfolio sums every loan and, over active ones, the monthly
// installment principal/term + principal*rate/100/term. Loans without a term
// add nothing to the installment.
func LenderPortfolio(loans []models.Loan) Portfolio {
	out := Portfolio{
		TotalBorrowed:      decimal.Zero,
		MonthlyPayment:     decimal.Zero,
		OutstandingBalance: decimal.Zero,
	}
	for _, l := range loans {
		out.TotalBorrowed = out.TotalBorrowed.Add(l.ApprovedAmount.Decimal)
		out.OutstandingBalance = out.OutstandingBalance.Add(l.OutstandingBalance.Decimal)
		if !isStatus(l, domain.LoanApproved) || !l.OutstandingBalance.Positive() {
			continue
		}
		out.Active = append(out.Active, l)
		if out.NextPayment == "" && l.NextPaymentDate != "" {
			out.NextPayment = l.NextPaymentDate
		}
		if l.TermMonths <= 0 {
			continue
		}
		term := decimal.NewFromInt(int64(l.TermMonths))
		principal := l.ApprovedAmount.Decimal
		interest := principal.Mul(l.InterestRate.Decimal).Div(hundred)
		out.MonthlyPayment = out.MonthlyPayment.Add(principal.Div(term)).Add(interest.Div(term))
	}
	out.MonthlyPayment = out.MonthlyPayment.Round(2)
	return out
}

type PaymentBucket struct {
	Count int             `json:"count"`
	Sum   decimal.Decimal `json:"sum"`
}

type PaymentStats struct {
	Total    PaymentBucket `json:"total"`
	Paid     PaymentBucket `json:"paid"`
	Upcoming PaymentBucket `json:"upcoming"`
	Overdue  PaymentBucket `json:"overdue"`
	// PaidRate is the share of paid payments, "0" when there are none.
	PaidRate string `json:"paid_rate"`
}

func (b *PaymentBucket) add(a models.Amount) {
	b.Count++
	b.Sum = b.Sum.Add(a.Decimal)
}

// PaymentSummary buckets payments by their status. Statuses outside
// paid/upcoming/overdue (e.g. "pending") only count toward the total.
func PaymentSummary(payments []models.Payment) PaymentStats {
	out := PaymentStats{
		Total:    PaymentBucket{Sum: decimal.Zero},
		Paid:     PaymentBucket{Sum: decimal.Zero},
		Upcoming: PaymentBucket{Sum: decimal.Zero},
		Overdue:  PaymentBucket{Sum: decimal.Zero},
	}
	for _, p := range payments {
		out.Total.add(p.Amount)
		switch domain.PaymentType(strings.ToLower(strings.TrimSpace(p.Status))) {
		case domain.PaymentsPaid:
			out.Paid.add(p.Amount)
		case domain.PaymentsUpcoming:
			out.Upcoming.add(p.Amount)
		case domain.PaymentsOverdue:
			out.Overdue.add(p.Amount)
		}
	}
	out.PaidRate = Percent(out.Paid.Count, out.Total.Count)
	return out
}

// CountByStatus counts loans per lowercased status.
func CountByStatus(loans []models.Loan) map[string]int {
	out := make(map[string]int, len(domain.LoanStatuses))
	for _, l := range loans {
		out[strings.ToLower(strings.TrimSpace(l.Status))]++
	}
	return out
}
