// internal/app/router.go
package app

import (
	adminHandler "postsaathi-service/internal/handlers/admin"
	authHandler "postsaathi-service/internal/handlers/auth"
	customerHandler "postsaathi-service/internal/handlers/customer"
	dashboardHandler "postsaathi-service/internal/handlers/dashboard"
	investmentHandler "postsaathi-service/internal/handlers/investment"
	uploadHandler "postsaathi-service/internal/handlers/upload"
	"postsaathi-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler       *authHandler.AuthHandler
	CustomerHandler   *customerHandler.CustomerHandler
	InvestmentHandler *investmentHandler.InvestmentHandler
	UploadHandler     *uploadHandler.UploadHandler
	DashboardHandler  *dashboardHandler.DashboardHandler
	AdminHandler      *adminHandler.AdminHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/signup", h.AuthHandler.Signup)
		authPublic.POST("/verify", h.AuthHandler.VerifyOTP)
		authPublic.POST("/resend-otp", h.AuthHandler.ResendOTP)
		authPublic.POST("/login", h.AuthHandler.Login)
		authPublic.POST("/logout", h.AuthHandler.Logout)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.AgentOnly())
	{
		authProtected.GET("/me", h.AuthHandler.Me)
	}

	// ==================== Customers ====================
	customers := api.Group("/customers")
	customers.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.AgentOnly())
	{
		customers.POST("", h.CustomerHandler.CreateCustomer)
		customers.GET("", h.CustomerHandler.ListCustomers)
		customers.GET("/:id", h.CustomerHandler.GetCustomer)
	}

	// ==================== Investments ====================
	investments := api.Group("/investments")
	investments.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.AgentOnly())
	{
		investments.POST("", h.InvestmentHandler.CreateInvestment)
		investments.GET("", h.InvestmentHandler.ListInvestments)
	}

	// ==================== Bulk Upload ====================
	upload := api.Group("/upload")
	upload.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.AgentOnly())
	{
		upload.POST("/bulk", h.UploadHandler.BulkUpload)
	}

	// ==================== Dashboard ====================
	dashboard := api.Group("/dashboard")
	dashboard.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.AgentOnly())
	{
		dashboard.GET("/stats", h.DashboardHandler.Stats)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin")
	{
		admin.POST("/login", h.AdminHandler.Login)

		adminProtected := admin.Group("")
		adminProtected.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.AdminOnly())
		{
			adminProtected.GET("/stats", h.AdminHandler.Stats)
			adminProtected.POST("/followups/run", h.AdminHandler.RunFollowups)
		}
	}
}
