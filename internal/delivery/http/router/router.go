// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"brightsteps/config"
	"brightsteps/internal/delivery/http/middleware"
	"brightsteps/internal/delivery/http/router/handler"
	"brightsteps/internal/infra/metrics"
	"brightsteps/internal/infra/ratelimit"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler     *handler.AuthHandler
	ActivityHandler *handler.ActivityHandler
	ProfileHandler  *handler.ProfileHandler
	AuthMiddleware  *middleware.AuthMiddleware
	RateLimiter     *ratelimit.Limiter
	Metrics         *metrics.Metrics
	Config          *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler     *handler.AuthHandler
	activityHandler *handler.ActivityHandler
	profileHandler  *handler.ProfileHandler
	authMiddleware  *middleware.AuthMiddleware
	rateLimiter     *ratelimit.Limiter
	metrics         *metrics.Metrics
	config          *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:     params.AuthHandler,
		activityHandler: params.ActivityHandler,
		profileHandler:  params.ProfileHandler,
		authMiddleware:  params.AuthMiddleware,
		rateLimiter:     params.RateLimiter,
		metrics:         params.Metrics,
		config:          params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	if r.config.Metrics.Enabled {
		e.GET(r.config.Metrics.Path, echo.WrapHandler(r.metrics.Handler()))
	}

	api := e.Group("/api")

	authGroup := api.Group("/auth")
	{
		limited := r.rateLimiter.Middleware()
		authGroup.POST("/register", r.authHandler.Register, limited)
		authGroup.POST("/login", r.authHandler.Login, limited)
		authGroup.GET("/me", r.authHandler.Me, r.authMiddleware.Authenticate)
	}

	// Static segments win over :id, so /packs never reaches GetActivity.
	activityGroup := api.Group("/activities")
	{
		optional := r.authMiddleware.OptionalAuthenticate
		required := r.authMiddleware.Authenticate

		activityGroup.GET("", r.activityHandler.ListActivities, optional)
		activityGroup.GET("/packs", r.activityHandler.ListPacks, optional)
		activityGroup.GET("/packs/:id", r.activityHandler.GetPack, optional)
		activityGroup.GET("/packs/:id/activities", r.activityHandler.ListPackActivities, required)
		activityGroup.GET("/:id", r.activityHandler.GetActivity, optional)
		activityGroup.GET("/:id/qrcode", r.activityHandler.ShareActivity)
		activityGroup.POST("/:id/favorite", r.activityHandler.AddFavorite, required)
		activityGroup.DELETE("/:id/favorite", r.activityHandler.RemoveFavorite, required)
		activityGroup.POST("/:id/log", r.activityHandler.LogActivity, required)
	}

	userGroup := api.Group("/users")
	userGroup.Use(r.authMiddleware.Authenticate)
	{
		userGroup.PUT("/profile", r.profileHandler.UpdateProfile)
		userGroup.POST("/children", r.profileHandler.AddChild)
		userGroup.PUT("/children/:id", r.profileHandler.UpdateChild)
		userGroup.DELETE("/children/:id", r.profileHandler.DeleteChild)
		userGroup.GET("/favorites", r.profileHandler.GetFavorites)
		userGroup.GET("/history", r.profileHandler.GetHistory)
		userGroup.PUT("/subscription", r.profileHandler.UpdateSubscription)
		userGroup.POST("/packs/:id/purchase", r.profileHandler.PurchasePack)
		userGroup.GET("/packs", r.profileHandler.GetPurchasedPacks)
	}
}
