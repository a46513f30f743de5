package handlers

import (
	"net/http"
	"strconv"

	"cashloan/internal/backend"
	"cashloan/internal/services"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/dashboard
func (g *Gateway) AdminDashboard(c *gin.Context) {
	g.forwardCached(c, services.ScopeAdminDashboard, backend.Request{Method: http.MethodGet, Path: backend.PathAdminDashboard})
}

// GET /api/admin/audit?action=&limit=
func (g *Gateway) AdminAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := g.service(c).RecentAudit(c.Request.Context(), c.Query("action"), limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "Failed to load audit trail", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "enabled": g.Audit.Enabled()})
}
