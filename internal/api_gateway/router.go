package api_gateway

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/greenova8-investment-ledger/internal/api_gateway/handler"
	"github.com/greenova8-investment-ledger/internal/api_gateway/middleware"
	"github.com/greenova8-investment-ledger/internal/platform/auth"
)

// handlers groups the HTTP handlers mounted by setupRouter
type handlers struct {
	investments *handler.InvestmentHandler
	projects    *handler.ProjectHandler
	payments    *handler.PaymentHandler
	ledger      *handler.LedgerHandler
	version     string
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, tokens auth.TokenManager, h handlers) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	requireAuth := middleware.RequireAuth(tokens)
	requireAdmin := middleware.RequireRole(auth.RoleAdmin)

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		investments := v1.Group("/investments")
		{
			investments.POST("", requireAuth, h.investments.Create)
			investments.GET("/my-investments", requireAuth, h.investments.MyInvestments)
			investments.GET("/user/:userId", requireAuth, h.investments.ForUser)
			investments.GET("/project/:projectId", h.investments.ForProject)
		}

		projects := v1.Group("/projects")
		{
			projects.GET("", h.projects.List)
			projects.GET("/:id", h.projects.GetByID)
			projects.GET("/:id/ledger", h.ledger.ProjectLedger)
			projects.POST("", requireAuth, requireAdmin, h.projects.Create)
			projects.PATCH("/:id/status", requireAuth, requireAdmin, h.projects.UpdateStatus)
		}

		audit := v1.Group("/ledger", requireAuth)
		{
			audit.GET("/investments/:investmentId", h.ledger.InvestmentEntry)
			audit.GET("/reconciliation/latest", requireAdmin, h.ledger.LatestReconciliation)
		}

		payments := v1.Group("/payments")
		{
			payments.GET("/sol-price", h.payments.SolPrice)
			payments.POST("/convert-usd-to-sol", h.payments.ConvertUSDToSol)
			payments.POST("/verify-payment", requireAuth, h.payments.VerifyPayment)
			payments.GET("/history", requireAuth, h.payments.History)
		}
	}

	// Health check endpoints for monitoring
	health := handler.Health(h.version)
	r.GET("/health", health)
	r.GET("/api/health", health)
}
