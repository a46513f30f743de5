package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"cashloan/internal/backend"
	"cashloan/internal/domain/models"
	"cashloan/internal/listview"
	"cashloan/internal/stats"
	"cashloan/internal/utils"

	"github.com/spf13/cobra"
)

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Dashboard summaries",
	}
	cmd.AddCommand(newAdminDashboardCmd())
	cmd.AddCommand(newLenderDashboardCmd())
	return cmd
}

type adminDashboard struct {
	Server   models.AdminDashboard `json:"server"`
	Loans    stats.AdminStats      `json:"loans"`
	ByStatus map[string]int        `json:"by_status"`
}

func newAdminDashboardCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin overview: totals and loan statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			client, store, token, err := getAuthedClient()
			if err != nil {
				return err
			}
			server, err := client.AdminDashboard(ctx, token)
			if err != nil {
				return handleAPIError(store, err)
			}
			loans, err := listview.Collect(ctx, backend.LoanFetcher(client, store), listview.NewQuery(listview.MaxPageSize), limit)
			if err != nil {
				return handleAPIError(store, err)
			}
			out := adminDashboard{
				Server:   server,
				Loans:    stats.AdminLoanStats(loans),
				ByStatus: stats.CountByStatus(loans),
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), out)
			}
			printAdminDashboard(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5000, "Maximum loans to read")
	cmd.Flags().BoolVarP(&asJSON, "json", "J", false, "Output as JSON")
	return cmd
}

func printAdminDashboard(w io.Writer, d adminDashboard) {
	tw := newTable(w, "METRIC", "VALUE")
	row(tw, "Users", strconv.Itoa(d.Server.TotalUsers))
	row(tw, "Borrowers", strconv.Itoa(d.Server.TotalBorrowers))
	row(tw, "Lenders", strconv.Itoa(d.Server.TotalLenders))
	row(tw, "Loans", strconv.Itoa(d.Loans.Total))
	row(tw, "Active loans", strconv.Itoa(d.Loans.Active))
	row(tw, "Repaid loans", strconv.Itoa(d.Loans.Repaid))
	row(tw, "Approved volume", utils.FormatCurrency(d.Loans.MonthlyVolume))
	row(tw, "Repayment rate", d.Loans.RepaymentRate+"%")
	_ = tw.Flush()

	if len(d.ByStatus) == 0 {
		return
	}
	statuses := make([]string, 0, len(d.ByStatus))
	for s := range d.ByStatus {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	fmt.Fprintln(w)
	tw = newTable(w, "STATUS", "LOANS")
	for _, s := range statuses {
		row(tw, labelOrDash(s), strconv.Itoa(d.ByStatus[s]))
	}
	_ = tw.Flush()
}

type lenderDashboard struct {
	User      models.User     `json:"user"`
	Portfolio stats.Portfolio `json:"portfolio"`
}

func newLenderDashboardCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lender",
		Short: "Your lending portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			client, store, token, err := getAuthedClient()
			if err != nil {
				return err
			}
			user, err := client.Me(ctx, token)
			if err != nil {
				return handleAPIError(store, err)
			}
			loans, err := listview.Collect(ctx, backend.LenderLoanFetcher(client, store), listview.NewQuery(listview.MaxPageSize), 0)
			if err != nil {
				return handleAPIError(store, err)
			}
			p := stats.LenderPortfolio(loans)
			w := cmd.OutOrStdout()
			if asJSON {
				return printJSON(w, lenderDashboard{User: user, Portfolio: p})
			}
			fmt.Fprintf(w, "Lender: %s <%s>\n\n", orDash(user.FullName()), orDash(user.Email))
			tw := newTable(w, "METRIC", "VALUE")
			row(tw, "Total lent", utils.FormatCurrency(p.TotalBorrowed))
			row(tw, "Monthly income", utils.FormatCurrency(p.MonthlyPayment))
			row(tw, "Outstanding", utils.FormatCurrency(p.OutstandingBalance))
			row(tw, "Next payment", dateOrDash(p.NextPayment))
			row(tw, "Active loans", strconv.Itoa(len(p.Active)))
			_ = tw.Flush()
			if len(p.Active) > 0 {
				fmt.Fprintln(w)
				printLoans(w, listview.Paginate(p.Active, 1, len(p.Active)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "J", false, "Output as JSON")
	return cmd
}
