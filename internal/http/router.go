package api

import (
	stdhttp "net/http"

	intconfig "cashloan/internal/config"
	"cashloan/internal/domain"
	h "cashloan/internal/http/handlers"
	"cashloan/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(env intconfig.Env, g *h.Gateway) *gin.Engine {
	log := g.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"message": "route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", g.Login)
		auth.POST("/logout", g.Logout)

		secured := api.Group("", middleware.RequireToken(g.CookieName()))
		secured.GET("/auth/me", g.Me)

		// Loans
		loans := secured.Group("/loans")
		loans.GET("", g.ListLoans)
		loans.GET("/statistics", g.LoanStatistics)
		loans.GET("/export", g.ExportLoans)
		loans.POST("/:id/approve", g.ApproveLoan)
		loans.POST("/:id/reject", g.RejectLoan)
		loans.POST("/:id/activate", g.ActivateLoan)

		// Lenders
		lenders := secured.Group("/lenders")
		lenders.GET("", g.Lenders)
		lenders.GET("/me/loans", g.LenderLoans)

		// Payments
		payments := secured.Group("/payments")
		payments.GET("", g.ListPayments)
		payments.POST("", g.RecordPayment)
		payments.GET("/export", g.ExportPayments)

		// Users & settings
		users := secured.Group("/users")
		users.GET("", g.ListUsers)
		users.PUT("/:id", g.UpdateUser)
		secured.PUT("/settings/update-contact", g.UpdateContact)

		// Admin
		admin := secured.Group("/admin", middleware.RequireRoles(domain.RoleAdmin))
		admin.GET("/dashboard", g.AdminDashboard)
		admin.GET("/audit", g.AdminAudit)
	}

	h.SetRouter(r)
	return r
}
