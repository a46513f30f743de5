package cli

import (
	"fmt"
	"strconv"

	"cashloan/internal/backend"
	"cashloan/internal/domain/models"
	"cashloan/internal/listview"
	"cashloan/internal/stats"
	"cashloan/internal/utils"
	"cashloan/internal/views"

	"github.com/spf13/cobra"
)

func newPaymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "List and record payments",
	}
	cmd.AddCommand(newPaymentsListCmd())
	cmd.AddCommand(newPaymentsBrowseCmd())
	cmd.AddCommand(newPaymentsRecordCmd())
	cmd.AddCommand(newPaymentsSummaryCmd())
	cmd.AddCommand(newExportCmd("payments", backend.PathPayments+"/export", listview.PaymentParams, "type"))
	return cmd
}

func newPaymentsListCmd() *cobra.Command {
	flags := newListFlags("type")

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List payments (sorted by due date unless --sort is given)",
		Example: `  loanctl payments list --type overdue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, _, err := getAuthedClient()
			if err != nil {
				return err
			}
			q, err := flags.query(views.PaymentsQuery(listview.DefaultPageSize))
			if err != nil {
				return err
			}
			p, err := fetchView(commandContext(cmd), store, views.Payments(), backend.PaymentFetcher(client, store), q)
			if err != nil {
				return err
			}
			if flags.asJSON {
				return printJSON(cmd.OutOrStdout(), p)
			}
			printPayments(cmd.OutOrStdout(), p)
			return nil
		},
	}
	flags.bind(cmd, true)
	return cmd
}

func newPaymentsBrowseCmd() *cobra.Command {
	flags := newListFlags("type")

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse payments interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, _, err := getAuthedClient()
			if err != nil {
				return err
			}
			q, err := flags.query(views.PaymentsQuery(listview.DefaultPageSize))
			if err != nil {
				return err
			}
			b := newBrowser(store, views.Payments(), backend.PaymentFetcher(client, store), q, cmd.OutOrStdout(), printPayments)
			return b.Run(commandContext(cmd), cmd.InOrStdin())
		},
	}
	flags.bind(cmd, false)
	return cmd
}

func newPaymentsRecordCmd() *cobra.Command {
	var req models.PaymentRequest

	cmd := &cobra.Command{
		Use:     "record",
		Short:   "Record a payment against a loan",
		Example: `  loanctl payments record --loan 12 --amount 1500 --method cash`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, token, err := getAuthedClient()
			if err != nil {
				return err
			}
			res, err := client.RecordPayment(commandContext(cmd), token, req)
			if err != nil {
				return handleAPIError(store, err)
			}
			msg := res.Message
			if msg == "" {
				msg = "Payment recorded"
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().Int64Var(&req.LoanID, "loan", 0, "Loan id")
	cmd.Flags().Float64Var(&req.Amount, "amount", 0, "Amount paid")
	cmd.Flags().StringVar(&req.PaymentDate, "date", "", "Payment date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.Method, "method", "", "Payment method")
	cmd.Flags().StringVar(&req.Reference, "reference", "", "Reference number")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "Notes")
	_ = cmd.MarkFlagRequired("loan")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newPaymentsSummaryCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Count and total payments by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, _, err := getAuthedClient()
			if err != nil {
				return err
			}
			all, err := listview.Collect(commandContext(cmd), backend.PaymentFetcher(client, store), views.PaymentsQuery(listview.MaxPageSize), limit)
			if err != nil {
				return handleAPIError(store, err)
			}
			s := stats.PaymentSummary(all)
			w := cmd.OutOrStdout()
			if asJSON {
				return printJSON(w, s)
			}
			tw := newTable(w, "STATUS", "COUNT", "AMOUNT")
			row(tw, "Paid", strconv.Itoa(s.Paid.Count), utils.FormatCurrency(s.Paid.Sum))
			row(tw, "Upcoming", strconv.Itoa(s.Upcoming.Count), utils.FormatCurrency(s.Upcoming.Sum))
			row(tw, "Overdue", strconv.Itoa(s.Overdue.Count), utils.FormatCurrency(s.Overdue.Sum))
			row(tw, "Total", strconv.Itoa(s.Total.Count), utils.FormatCurrency(s.Total.Sum))
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(w, "\nPaid rate: %s%%\n", s.PaidRate)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5000, "Maximum payments to read")
	cmd.Flags().BoolVarP(&asJSON, "json", "J", false, "Output as JSON")
	return cmd
}
