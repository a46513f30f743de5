package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"cashloan/internal/domain/models"
	"cashloan/internal/listview"
	"cashloan/internal/utils"
)

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func dateOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return utils.FormatLongDate(s)
}

func labelOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return utils.StatusLabel(s)
}

// pageFooter is the "Showing a to b of n" line under every table.
func pageFooter[T any](w io.Writer, p listview.Page[T]) {
	if p.TotalItems == 0 {
		return
	}
	fmt.Fprintf(w, "\nShowing %d to %d of %d (page %d of %d)\n", p.From(), p.To(), p.TotalItems, p.CurrentPage, p.TotalPages)
}

func printLoans(w io.Writer, p listview.Page[models.Loan]) {
	if len(p.Items) == 0 {
		fmt.Fprintln(w, "No loans found")
		return
	}
	tw := newTable(w, "ID", "REFERENCE", "BORROWER", "TYPE", "PRINCIPAL", "OUTSTANDING", "STATUS", "CREATED")
	for _, l := range p.Items {
		row(tw,
			fmt.Sprint(l.ID),
			l.Reference(),
			orDash(l.BorrowerName()),
			labelOrDash(l.Type),
			utils.FormatCurrency(l.PrincipalAmount.Decimal),
			utils.FormatCurrency(l.OutstandingBalance.Decimal),
			utils.StatusLabel(l.Status),
			dateOrDash(l.CreatedAt),
		)
	}
	_ = tw.Flush()
	pageFooter(w, p)
}

func printPayments(w io.Writer, p listview.Page[models.Payment]) {
	if len(p.Items) == 0 {
		fmt.Fprintln(w, "No payments found")
		return
	}
	tw := newTable(w, "ID", "LOAN", "BORROWER", "AMOUNT", "DUE", "PAID", "STATUS")
	for _, pm := range p.Items {
		row(tw,
			fmt.Sprint(pm.ID),
			orDash(pm.LoanRef()),
			orDash(pm.BorrowerName()),
			utils.FormatCurrency(pm.Amount.Decimal),
			dateOrDash(pm.DueDate),
			dateOrDash(pm.PaidDate),
			utils.StatusLabel(pm.Status),
		)
	}
	_ = tw.Flush()
	pageFooter(w, p)
}

func printUsers(w io.Writer, p listview.Page[models.User]) {
	if len(p.Items) == 0 {
		fmt.Fprintln(w, "No users found")
		return
	}
	tw := newTable(w, "ID", "NAME", "EMAIL", "PHONE", "ROLE", "STATUS")
	for _, u := range p.Items {
		row(tw,
			fmt.Sprint(u.ID),
			orDash(u.FullName()),
			u.Email,
			orDash(u.Phone),
			labelOrDash(u.Role),
			labelOrDash(u.Status),
		)
	}
	_ = tw.Flush()
	pageFooter(w, p)
}
