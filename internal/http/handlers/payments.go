package handlers

import (
	"net/http"

	"cashloan/internal/backend"
	"cashloan/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/payments. The query string is relayed as the client sent it.
func (g *Gateway) ListPayments(c *gin.Context) {
	g.forward(c, backend.Request{Method: http.MethodGet, Path: backend.PathPayments, Query: c.Request.URL.Query()})
}

// POST /api/payments. The body is the backend's schema and is passed through
// untouched once it parses; success is answered with 201.
func (g *Gateway) RecordPayment(c *gin.Context) {
	raw, ok := readJSONBody(c)
	if !ok {
		return
	}
	g.forwardAction(c, services.Action{
		Name:       "payment.record",
		Invalidate: loanScopes,
	}, backend.Request{
		Method:      http.MethodPost,
		Path:        backend.PathPayments,
		Body:        raw,
		ContentType: "application/json",
	}, http.StatusCreated)
}
