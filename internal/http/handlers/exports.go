package handlers

import (
	"net/http"

	"cashloan/internal/http/middleware"
	"cashloan/internal/listview"
	"cashloan/internal/services"
	"cashloan/internal/views"

	"github.com/gin-gonic/gin"
)

func (g *Gateway) exporter(c *gin.Context) services.ExportService {
	return services.ExportService{
		Client:    g.Client,
		Limit:     g.ExportLimit,
		Log:       g.Log,
		RequestID: middleware.GetRequestID(c),
	}
}

// GET /api/loans/export?format=xlsx|pdf plus the loans list parameters
func (g *Gateway) ExportLoans(c *gin.Context) {
	format, ok := exportFormat(c)
	if !ok {
		return
	}
	q := listview.ParseQuery(c.Request.URL.Query(), listview.LoanParams, listview.MaxPageSize)
	if v := c.Query("type"); v != "" {
		q.SetFilter("type", v)
	}
	t, err := g.exporter(c).LoanTable(c.Request.Context(), middleware.GetToken(c), q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendExport(c, t, format)
}

// GET /api/payments/export?format=xlsx|pdf plus the payments list parameters
func (g *Gateway) ExportPayments(c *gin.Context) {
	format, ok := exportFormat(c)
	if !ok {
		return
	}
	q := listview.ParseQuery(c.Request.URL.Query(), listview.PaymentParams, listview.MaxPageSize)
	if q.SortColumn == "" {
		q.SetSort(views.DefaultPaymentSort, listview.SortAsc)
	}
	t, err := g.exporter(c).PaymentTable(c.Request.Context(), middleware.GetToken(c), q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendExport(c, t, format)
}

// exportFormat rejects an unknown format before any rows are fetched.
func exportFormat(c *gin.Context) (string, bool) {
	f, err := services.ParseFormat(c.Query("format"))
	if err != nil {
		RespondDomainError(c, err)
		return "", false
	}
	return f, true
}

func sendExport(c *gin.Context, t services.Table, format string) {
	b, name, ct, err := services.Render(t, format)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, ct, b)
}
