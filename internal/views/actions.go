package views

import (
	"context"
	"strings"

	"cashloan/internal/backend"
	"cashloan/internal/domain"
	"cashloan/internal/domain/models"
	"cashloan/internal/listview"
	"cashloan/internal/session"
)

// LoanActions binds the loan dialogs to a backend client and a session.
type LoanActions struct {
	Client  *backend.Client
	Session session.Source
}

func (a LoanActions) token() (string, error) {
	if a.Session == nil {
		return "", domain.ErrUnauthorized
	}
	t, ok := a.Session.Token()
	if !ok {
		return "", domain.ErrUnauthorized
	}
	return t, nil
}

func resultMessage(res models.ActionResult, fallback string) string {
	if m := strings.TrimSpace(res.Message); m != "" {
		return m
	}
	return fallback
}

func NewApproveDialog() *listview.ActionDialog[models.ApproveRequest] {
	return listview.NewActionDialog[models.ApproveRequest]("approve loan", false)
}

func NewRejectDialog() *listview.ActionDialog[models.RejectRequest] {
	return listview.NewActionDialog[models.RejectRequest]("reject loan", true)
}

func NewActivateDialog() *listview.ActionDialog[models.ActivateRequest] {
	return listview.NewActionDialog[models.ActivateRequest]("activate loan", false)
}

func (a LoanActions) SendApprove(ctx context.Context, id int64, form models.ApproveRequest) (string, error) {
	token, err := a.token()
	if err != nil {
		return "", err
	}
	res, err := a.Client.Approve(ctx, token, id, form)
	if err != nil {
		return "", err
	}
	return resultMessage(res, "Loan approved"), nil
}

func (a LoanActions) SendReject(ctx context.Context, id int64, form models.RejectRequest) (string, error) {
	token, err := a.token()
	if err != nil {
		return "", err
	}
	res, err := a.Client.Reject(ctx, token, id, form)
	if err != nil {
		return "", err
	}
	return resultMessage(res, "Loan rejected"), nil
}

func (a LoanActions) SendActivate(ctx context.Context, id int64, form models.ActivateRequest) (string, error) {
	token, err := a.token()
	if err != nil {
		return "", err
	}
	res, err := a.Client.Activate(ctx, token, id, form)
	if err != nil {
		return "", err
	}
	return resultMessage(res, "Loan activated"), nil
}

// Approve and activate change amounts and dates the backend computes, so the
// page is reloaded. Reject only flips the status.
func ApproveReconciler() listview.Reconciler[models.Loan] {
	return listview.Refetch[models.Loan]{}
}

func ActivateReconciler() listview.Reconciler[models.Loan] {
	return listview.Refetch[models.Loan]{}
}

func RejectReconciler(reason *string) listview.Reconciler[models.Loan] {
	return listview.PatchInPlace[models.Loan]{Apply: func(l *models.Loan) {
		l.Status = string(domain.LoanRejected)
		if reason != nil {
			l.RejectionReason = *reason
		}
	}}
}
