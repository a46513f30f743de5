package stats

import (
	"testing"

	"cashloan/internal/domain/models"
)

func loan(status string, approved, outstanding string) models.Loan {
	return models.Loan{
		Status:             status,
		ApprovedAmount:     models.ParseAmount(approved),
		OutstandingBalance: models.ParseAmount(outstanding),
	}
}

func TestPercentZeroDenominator(t *testing.T) {
	if got := Percent(0, 0); got != "0" {
		t.Fatalf("expected \"0\", got %q", got)
	}
	if got := Percent(5, 0); got != "0" {
		t.Fatalf("expected \"0\", got %q", got)
	}
	if got := Percent(1, 3); got != "33.3" {
		t.Fatalf("expected 33.3, got %q", got)
	}
	if got := Percent(2, 2); got != "100.0" {
		t.Fatalf("expected 100.0, got %q", got)
	}
}

func TestAdminLoanStatsApprovedScenario(t *testing.T) {
	loans := []models.Loan{
		loan("approved", "1000", "250"),
		loan("pending", "500", "500"),
		loan("approved", "2000", "0"),
	}
	s := AdminLoanStats(loans)
	if s.Total != 3 || s.Active != 1 || s.Repaid != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.MonthlyVolume.StringFixed(2) != "3000.00" {
		t.Fatalf("unexpected volume %s", s.MonthlyVolume)
	}
	if s.RepaymentRate != "33.3" {
		t.Fatalf("unexpected rate %q", s.RepaymentRate)
	}
}

func TestAdminLoanStatsEmpty(t *testing.T) {
	s := AdminLoanStats(nil)
	if s.RepaymentRate != "0" || s.Total != 0 || !s.MonthlyVolume.IsZero() {
		t.Fatalf("unexpected empty stats %+v", s)
	}
}

func TestLenderPortfolio(t *testing.T) {
	a := loan("approved", "12000", "6000")
	a.TermMonths = 12
	a.InterestRate = models.ParseAmount("12")
	a.NextPaymentDate = "2025-04-01"
	noTerm := loan("Approved", "1000", "1000")
	done := loan("approved", "3000", "0")
	done.TermMonths = 6

	p := LenderPortfolio([]models.Loan{a, noTerm, done})
	if p.TotalBorrowed.StringFixed(2) != "16000.00" || p.OutstandingBalance.StringFixed(2) != "7000.00" {
		t.Fatalf("unexpected totals %+v", p)
	}
	// 12000/12 + 12000*12/100/12
	if p.MonthlyPayment.StringFixed(2) != "1120.00" {
		t.Fatalf("unexpected monthly payment %s", p.MonthlyPayment)
	}
	if len(p.Active) != 2 || p.NextPayment != "2025-04-01" {
		t.Fatalf("unexpected active set %d next=%q", len(p.Active), p.NextPayment)
	}
}

func TestPaymentSummary(t *testing.T) {
	ps := []models.Payment{
		{Status: "paid", Amount: models.ParseAmount("100")},
		{Status: "Overdue", Amount: models.ParseAmount("50.5")},
		{Status: "upcoming", Amount: models.ParseAmount("")},
		{Status: "pending", Amount: models.ParseAmount("20")},
	}
	s := PaymentSummary(ps)
	if s.Total.Count != 4 || s.Paid.Count != 1 || s.Overdue.Count != 1 || s.Upcoming.Count != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.Total.Sum.StringFixed(2) != "170.50" || s.Overdue.Sum.StringFixed(2) != "50.50" {
		t.Fatalf("unexpected sums %+v", s)
	}
	if s.PaidRate != "25.0" {
		t.Fatalf("unexpected paid rate %q", s.PaidRate)
	}
	if PaymentSummary(nil).PaidRate != "0" {
		t.Fatalf("empty summary should report \"0\"")
	}
}

func TestCountByStatus(t *testing.T) {
	c := CountByStatus([]models.Loan{loan("approved", "", ""), loan("Approved", "", ""), loan("pending", "", "")})
	if c["approved"] != 2 || c["pending"] != 1 {
		t.Fatalf("unexpected counts %v", c)
	}
}
