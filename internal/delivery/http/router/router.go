// Package router contains routing setup for the HTTP delivery.
package router

import (
	"marketplace/config"
	"marketplace/internal/delivery/http/middleware"
	"marketplace/internal/delivery/http/router/handler"
	"marketplace/internal/domain/entity"
	"marketplace/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	Config         *config.Config
	AuthHandler    *handler.AuthHandler
	ServiceHandler *handler.ServiceHandler
	ReviewHandler  *handler.ReviewHandler
	AuthMiddleware *middleware.AuthMiddleware
	Registry       *prometheus.Registry
}

// router holds all the handlers that need to be registered.
type router struct {
	cfg            *config.Config
	authHandler    *handler.AuthHandler
	serviceHandler *handler.ServiceHandler
	reviewHandler  *handler.ReviewHandler
	authMiddleware *middleware.AuthMiddleware
	registry       *prometheus.Registry
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		cfg:            params.Config,
		authHandler:    params.AuthHandler,
		serviceHandler: params.ServiceHandler,
		reviewHandler:  params.ReviewHandler,
		authMiddleware: params.AuthMiddleware,
		registry:       params.Registry,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	if r.cfg.Metrics != nil && r.cfg.Metrics.Enabled {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(r.registry)))
	}

	// Auth routes. The entry pages bounce already-authenticated callers
	// to their profile.
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register, r.authMiddleware.RedirectIfAuthenticated)
		authGroup.POST("/login", r.authHandler.Login, r.authMiddleware.RedirectIfAuthenticated)
		authGroup.POST("/refresh", r.authHandler.RefreshToken)
		authGroup.POST("/logout", r.authHandler.Logout)
	}

	// Public catalog. Optional authentication lets owners and admins see
	// their hidden listings.
	e.GET("/services", r.serviceHandler.Search, r.authMiddleware.OptionalAuthenticate)
	e.GET("/search", r.serviceHandler.Search, r.authMiddleware.OptionalAuthenticate)
	e.GET("/services/:id", r.serviceHandler.Get, r.authMiddleware.OptionalAuthenticate)
	e.GET("/services/:id/reviews", r.reviewHandler.ListByService)

	// Authenticated routes.
	e.GET("/me", r.authHandler.Me, r.authMiddleware.Authenticate)

	// Provider catalog management. Admins pass the role gate as well;
	// ownership is decided per resource by the policy.
	providerGroup := e.Group("", r.authMiddleware.Authenticate,
		r.authMiddleware.RequireRole(entity.RoleProvider, entity.RoleAdmin))
	{
		providerGroup.POST("/services", r.serviceHandler.Create)
		providerGroup.PUT("/services/:id", r.serviceHandler.Update)
		providerGroup.DELETE("/services/:id", r.serviceHandler.Delete)
		providerGroup.GET("/provider/services", r.serviceHandler.ListOwn)
	}

	// Customer purchase and review routes.
	customerGroup := e.Group("", r.authMiddleware.Authenticate,
		r.authMiddleware.RequireRole(entity.RoleCustomer))
	{
		customerGroup.POST("/reviews", r.reviewHandler.Create)
		customerGroup.POST("/checkout/:serviceID", r.reviewHandler.Checkout)
	}
}
