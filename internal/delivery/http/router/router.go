// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"meditrack/internal/delivery/http/middleware"
	"meditrack/internal/delivery/http/router/handler"
	"meditrack/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler      *handler.UserHandler
	DrugHandler      *handler.DrugHandler
	VerifyHandler    *handler.VerifyHandler
	AlertHandler     *handler.AlertHandler
	AssistantHandler *handler.AssistantHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler      *handler.UserHandler
	drugHandler      *handler.DrugHandler
	verifyHandler    *handler.VerifyHandler
	alertHandler     *handler.AlertHandler
	assistantHandler *handler.AssistantHandler
	authMiddleware   *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:      params.UserHandler,
		drugHandler:      params.DrugHandler,
		verifyHandler:    params.VerifyHandler,
		alertHandler:     params.AlertHandler,
		assistantHandler: params.AssistantHandler,
		authMiddleware:   params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	auth := r.authMiddleware

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Public routes: verification lookup and the assistant chat. The verify
	// path must stay unauthenticated so a consumer can scan a QR code
	// without an account.
	e.GET("/verify/:code", r.verifyHandler.VerifyByCode)
	e.POST("/assistant/chat", r.assistantHandler.Chat)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.userHandler.Register)
		authGroup.POST("/login", r.userHandler.Login)
	}

	// Routes for any authenticated role
	e.GET("/me", r.userHandler.Profile, auth.Authenticate)
	e.POST("/assistant/explain", r.assistantHandler.Explain, auth.Authenticate)

	// Drug routes carry mixed role requirements under one prefix, so the
	// role check is attached per route rather than per group.
	drugGroup := e.Group("/drugs")
	drugGroup.Use(auth.Authenticate)
	{
		drugGroup.POST("", r.drugHandler.RegisterDrug, auth.RequireRole(entity.RoleManufacturer))
		drugGroup.GET("/mine", r.drugHandler.ListMine, auth.RequireRole(entity.RoleManufacturer))
		drugGroup.GET("/:id/qrcode", r.drugHandler.VerificationQR, auth.RequireRole(entity.RoleManufacturer))

		drugGroup.POST("/:id/status", r.drugHandler.UpdateStatus, auth.RequireRole(entity.RoleDistributor, entity.RolePharmacy))

		drugGroup.POST("/:id/flag", r.drugHandler.Flag, auth.RequireRole(entity.RolePharmacy, entity.RoleAdmin))
		drugGroup.GET("/:id/alerts", r.alertHandler.ListByDrug, auth.RequireRole(entity.RolePharmacy, entity.RoleAdmin))

		drugGroup.GET("", r.drugHandler.ListAll, auth.RequireRole(entity.RoleAdmin))
		drugGroup.DELETE("/:id", r.drugHandler.DeleteDrug, auth.RequireRole(entity.RoleAdmin))
	}

	// Alert routes for pharmacy staff and admins
	alertGroup := e.Group("/alerts")
	alertGroup.Use(auth.Authenticate)
	{
		alertGroup.POST("", r.alertHandler.CreateAlert, auth.RequireRole(entity.RolePharmacy, entity.RoleAdmin))
		alertGroup.PATCH("/:id/resolve", r.alertHandler.Resolve, auth.RequireRole(entity.RolePharmacy, entity.RoleAdmin))
		alertGroup.GET("/unresolved", r.alertHandler.ListUnresolved, auth.RequireRole(entity.RoleAdmin))
	}

	// Admin dashboard statistics and activity feed
	e.GET("/stats", r.drugHandler.Stats, auth.Authenticate, auth.RequireRole(entity.RoleAdmin))
	e.GET("/scans/recent", r.drugHandler.RecentScans, auth.Authenticate, auth.RequireRole(entity.RoleAdmin))
}
