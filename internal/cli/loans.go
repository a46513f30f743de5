package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cashloan/internal/backend"
	"cashloan/internal/domain/models"
	"cashloan/internal/listview"
	"cashloan/internal/session"
	"cashloan/internal/utils"
	"cashloan/internal/views"

	"github.com/spf13/cobra"
)

func newLoansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "List and act on loans",
	}
	cmd.AddCommand(newLoansListCmd())
	cmd.AddCommand(newLoansBrowseCmd())
	cmd.AddCommand(newLoansApproveCmd())
	cmd.AddCommand(newLoansRejectCmd())
	cmd.AddCommand(newLoansActivateCmd())
	cmd.AddCommand(newLoansStatsCmd())
	cmd.AddCommand(newExportCmd("loans", backend.PathLoans+"/export", listview.LoanParams, "status", "type"))
	return cmd
}

func loanDescriptor(admin bool) listview.Descriptor[models.Loan] {
	if admin {
		return views.AdminLoans()
	}
	return views.Loans()
}

func newLoansListCmd() *cobra.Command {
	flags := newListFlags("status", "type")
	var admin bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loans",
		Example: `  loanctl loans list --status pending
  loanctl loans list --search "jane doe" --sort principal_amount --order desc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, _, err := getAuthedClient()
			if err != nil {
				return err
			}
			q, err := flags.query(listview.NewQuery(listview.DefaultPageSize))
			if err != nil {
				return err
			}
			p, err := fetchView(commandContext(cmd), store, loanDescriptor(admin), backend.LoanFetcher(client, store), q)
			if err != nil {
				return err
			}
			if flags.asJSON {
				return printJSON(cmd.OutOrStdout(), p)
			}
			printLoans(cmd.OutOrStdout(), p)
			return nil
		},
	}
	flags.bind(cmd, true)
	cmd.Flags().BoolVar(&admin, "admin", false, "Use the admin dashboard view (id search, local paging)")
	return cmd
}

const loanActionsHelp = `  approve ID AMOUNT [RATE]   approve a loan
  reject ID [REASON...]      reject a loan (asks for confirmation)
  activate ID [START] [FIRST]  activate a loan, dates as YYYY-MM-DD
`

func newLoansBrowseCmd() *cobra.Command {
	flags := newListFlags("status", "type")
	var admin bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse loans interactively",
		Long:  "Browse loans with a live search box, filters, sorting, paging and loan actions. Type help at the prompt.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, _, err := getAuthedClient()
			if err != nil {
				return err
			}
			q, err := flags.query(listview.NewQuery(listview.DefaultPageSize))
			if err != nil {
				return err
			}
			b := newBrowser(store, loanDescriptor(admin), backend.LoanFetcher(client, store), q, cmd.OutOrStdout(), printLoans)
			acts := loanActor{actions: views.LoanActions{Client: client, Session: store}, ctrl: b.ctrl, out: b.out}
			b.actions = acts.handle
			b.helpExtra = loanActionsHelp
			return b.Run(commandContext(cmd), cmd.InOrStdin())
		},
	}
	flags.bind(cmd, false)
	cmd.Flags().BoolVar(&admin, "admin", false, "Use the admin dashboard view")
	return cmd
}

// loanActor runs the loan dialogs against a list controller. ctrl may be nil
// for one-shot commands, in which case nothing is reconciled.
type loanActor struct {
	actions views.LoanActions
	ctrl    *listview.Controller[models.Loan]
	out     io.Writer
}

func (a loanActor) reconciler(r listview.Reconciler[models.Loan]) listview.Reconciler[models.Loan] {
	if a.ctrl == nil {
		return nil
	}
	return r
}

func (a loanActor) approve(ctx context.Context, id int64, form models.ApproveRequest) (string, error) {
	d := views.NewApproveDialog()
	if err := d.Open(id, form); err != nil {
		return "", err
	}
	err := listview.RunAction(ctx, a.ctrl, d, a.reconciler(views.ApproveReconciler()), a.actions.SendApprove)
	return d.Message(), err
}

// reject asks before sending. ok is false when the user declined.
func (a loanActor) reject(ctx context.Context, in *bufio.Reader, id int64, form models.RejectRequest, assumeYes bool) (msg string, ok bool, err error) {
	d := views.NewRejectDialog()
	if err := d.Open(id, form); err != nil {
		return "", false, err
	}
	if !assumeYes {
		yes, err := confirm(in, a.out, fmt.Sprintf("Reject loan %d?", id))
		if err != nil || !yes {
			_ = d.Cancel()
			return "", false, err
		}
	}
	if err := d.Confirm(); err != nil {
		return "", false, err
	}
	err = listview.RunAction(ctx, a.ctrl, d, a.reconciler(views.RejectReconciler(form.Reason)), a.actions.SendReject)
	return d.Message(), true, err
}

func (a loanActor) activate(ctx context.Context, id int64, form models.ActivateRequest) (string, error) {
	d := views.NewActivateDialog()
	if err := d.Open(id, form); err != nil {
		return "", err
	}
	err := listview.RunAction(ctx, a.ctrl, d, a.reconciler(views.ActivateReconciler()), a.actions.SendActivate)
	return d.Message(), err
}

func (a loanActor) handle(ctx context.Context, in *bufio.Reader, verb string, args []string) (bool, error) {
	var (
		msg string
		err error
	)
	switch verb {
	case "approve":
		id, aerr := int64Arg(args, 0, "loan id")
		if aerr != nil {
			return true, aerr
		}
		form, aerr := approveForm(args[1:])
		if aerr != nil {
			return true, aerr
		}
		msg, err = a.approve(ctx, id, form)
	case "reject":
		id, aerr := int64Arg(args, 0, "loan id")
		if aerr != nil {
			return true, aerr
		}
		var ok bool
		msg, ok, err = a.reject(ctx, in, id, models.RejectRequest{Reason: optional(strings.Join(args[1:], " "))}, false)
		if err == nil && !ok {
			fmt.Fprintln(a.out, "Cancelled")
			return true, nil
		}
	case "activate":
		id, aerr := int64Arg(args, 0, "loan id")
		if aerr != nil {
			return true, aerr
		}
		form := models.ActivateRequest{}
		if len(args) > 1 {
			form.StartDate = optional(args[1])
		}
		if len(args) > 2 {
			form.FirstPaymentDate = optional(args[2])
		}
		msg, err = a.activate(ctx, id, form)
	default:
		return false, nil
	}
	if err != nil {
		return true, err
	}
	fmt.Fprintln(a.out, msg)
	return true, nil
}

func approveForm(args []string) (models.ApproveRequest, error) {
	var form models.ApproveRequest
	if len(args) == 0 {
		return form, fmt.Errorf("missing approved amount")
	}
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return form, fmt.Errorf("invalid amount %q", args[0])
	}
	form.ApprovedAmount = amount
	if len(args) > 1 {
		rate, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return form, fmt.Errorf("invalid interest rate %q", args[1])
		}
		form.InterestRate = &rate
	}
	return form, nil
}

// optional maps "" to nil, which the backend receives as null.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func oneShotActor(cmd *cobra.Command) (loanActor, session.FileStore, error) {
	client, store, _, err := getAuthedClient()
	if err != nil {
		return loanActor{}, store, err
	}
	return loanActor{actions: views.LoanActions{Client: client, Session: store}, out: cmd.OutOrStdout()}, store, nil
}

func loanIDArg(args []string) (int64, error) {
	return int64Arg(args, 0, "loan id")
}

func newLoansApproveCmd() *cobra.Command {
	var (
		amount   float64
		rate     float64
		lenderID int64
	)
	cmd := &cobra.Command{
		Use:   "approve <loan-id>",
		Short: "Approve a pending loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loanIDArg(args)
			if err != nil {
				return err
			}
			actor, store, err := oneShotActor(cmd)
			if err != nil {
				return err
			}
			form := models.ApproveRequest{ApprovedAmount: amount}
			if cmd.Flags().Changed("rate") {
				form.InterestRate = &rate
			}
			if cmd.Flags().Changed("lender") {
				form.LenderID = &lenderID
			}
			msg, err := actor.approve(commandContext(cmd), id, form)
			if err != nil {
				return handleAPIError(store, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "Approved amount")
	cmd.Flags().Float64Var(&rate, "rate", 0, "Interest rate in percent")
	cmd.Flags().Int64Var(&lenderID, "lender", 0, "Lender id")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newLoansRejectCmd() *cobra.Command {
	var (
		reason string
		yes    bool
	)
	cmd := &cobra.Command{
		Use:   "reject <loan-id>",
		Short: "Reject a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loanIDArg(args)
			if err != nil {
				return err
			}
			actor, store, err := oneShotActor(cmd)
			if err != nil {
				return err
			}
			in := bufio.NewReader(cmd.InOrStdin())
			msg, ok, err := actor.reject(commandContext(cmd), in, id, models.RejectRequest{Reason: optional(reason)}, yes)
			if err != nil {
				return handleAPIError(store, err)
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newLoansActivateCmd() *cobra.Command {
	var start, first string
	cmd := &cobra.Command{
		Use:   "activate <loan-id>",
		Short: "Activate an approved loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loanIDArg(args)
			if err != nil {
				return err
			}
			actor, store, err := oneShotActor(cmd)
			if err != nil {
				return err
			}
			form := models.ActivateRequest{StartDate: optional(start), FirstPaymentDate: optional(first)}
			msg, err := actor.activate(commandContext(cmd), id, form)
			if err != nil {
				return handleAPIError(store, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&first, "first-payment", "", "First payment date (YYYY-MM-DD)")
	return cmd
}

func newLoansStatsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show loan statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, token, err := getAuthedClient()
			if err != nil {
				return err
			}
			s, err := client.LoanStatistics(commandContext(cmd), token)
			if err != nil {
				return handleAPIError(store, err)
			}
			w := cmd.OutOrStdout()
			if asJSON {
				return printJSON(w, s)
			}
			tw := newTable(w, "METRIC", "VALUE")
			row(tw, "Total loans", strconv.Itoa(s.TotalLoans))
			row(tw, "Pending", strconv.Itoa(s.PendingLoans))
			row(tw, "Approved", strconv.Itoa(s.ApprovedLoans))
			row(tw, "Active", strconv.Itoa(s.ActiveLoans))
			row(tw, "Rejected", strconv.Itoa(s.RejectedLoans))
			row(tw, "Completed", strconv.Itoa(s.CompletedLoans))
			row(tw, "Defaulted", strconv.Itoa(s.DefaultedLoans))
			row(tw, "Disbursed", utils.FormatCurrency(s.TotalDisbursed.Decimal))
			row(tw, "Outstanding", utils.FormatCurrency(s.TotalOutstanding.Decimal))
			row(tw, "Collected", utils.FormatCurrency(s.TotalCollected.Decimal))
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "J", false, "Output as JSON")
	return cmd
}

func newLendersCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lenders",
		Short: "List lenders a loan can be assigned to",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, store, token, err := getAuthedClient()
			if err != nil {
				return err
			}
			lenders, err := client.Lenders(commandContext(cmd), token)
			if err != nil {
				return handleAPIError(store, err)
			}
			w := cmd.OutOrStdout()
			if asJSON {
				return printJSON(w, lenders)
			}
			if len(lenders) == 0 {
				fmt.Fprintln(w, "No lenders found")
				return nil
			}
			tw := newTable(w, "ID", "NAME", "EMAIL")
			for _, l := range lenders {
				row(tw, strconv.FormatInt(l.ID, 10), orDash(l.FullName()), orDash(l.Email))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "J", false, "Output as JSON")
	return cmd
}
