package handlers

import (
	"net/http"

	"cashloan/internal/backend"
	"cashloan/internal/domain/models"
	"cashloan/internal/services"
	"cashloan/internal/validate"

	"github.com/gin-gonic/gin"
)

var loanScopes = []string{services.ScopeLoanStatistics, services.ScopeAdminDashboard}

// GET /api/loans
func (g *Gateway) ListLoans(c *gin.Context) {
	g.forward(c, backend.Request{Method: http.MethodGet, Path: backend.PathLoans, Query: c.Request.URL.Query()})
}

// GET /api/loans/statistics
func (g *Gateway) LoanStatistics(c *gin.Context) {
	g.forwardCached(c, services.ScopeLoanStatistics, backend.Request{Method: http.MethodGet, Path: backend.PathLoanStatistics})
}

// GET /api/lenders
func (g *Gateway) Lenders(c *gin.Context) {
	g.forwardCached(c, services.ScopeLenders, backend.Request{Method: http.MethodGet, Path: backend.PathLenders})
}

// GET /api/lenders/me/loans
func (g *Gateway) LenderLoans(c *gin.Context) {
	g.forward(c, backend.Request{Method: http.MethodGet, Path: backend.PathLenderLoans})
}

// POST /api/loans/:id/approve
func (g *Gateway) ApproveLoan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body models.ApproveRequest
	if !BindJSONOrError(c, &body) {
		return
	}
	g.sendLoanAction(c, id, "approve", body)
}

// POST /api/loans/:id/reject
func (g *Gateway) RejectLoan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body models.RejectRequest
	if !bindOptionalJSON(c, &body) {
		return
	}
	g.sendLoanAction(c, id, "reject", body)
}

// POST /api/loans/:id/activate
func (g *Gateway) ActivateLoan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body models.ActivateRequest
	if !bindOptionalJSON(c, &body) {
		return
	}
	g.sendLoanAction(c, id, "activate", body)
}

func (g *Gateway) sendLoanAction(c *gin.Context, id int64, action string, body any) {
	if err := validate.Struct(body); err != nil {
		RespondDomainError(c, err)
		return
	}
	req, err := backend.JSONRequest(http.MethodPost, backend.LoanActionPath(id, action), "", body)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	g.forwardAction(c, services.Action{
		Name:       "loan." + action,
		TargetID:   id,
		Invalidate: loanScopes,
	}, req, 0)
}
