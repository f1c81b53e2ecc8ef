package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"driverops/internal/handler"
	"driverops/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	DriverHandler *handler.DriverHandler
	RideHandler   *handler.RideHandler
	WalletHandler *handler.WalletHandler
	RedisClient   *redis.Client
	NewRelicApp   *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/:id", deps.DriverHandler.GetDriver)
			drivers.POST("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.POST("/:id/online", deps.DriverHandler.GoOnline)
			drivers.POST("/:id/offline", deps.DriverHandler.GoOffline)
			drivers.POST("/:id/accept", deps.DriverHandler.AcceptRide)
			drivers.GET("/:id/grace", deps.DriverHandler.GraceStatus)
			drivers.POST("/:id/billing/overtime", deps.DriverHandler.ApplyOvertime)
			drivers.POST("/:id/subscriptions", deps.DriverHandler.GrantSubscription)
			drivers.GET("/:id/subscriptions/latest", deps.DriverHandler.GetLatestSubscription)
			drivers.GET("/:id/wallet", deps.WalletHandler.GetWallet)
			drivers.GET("/:id/wallet/transactions", deps.WalletHandler.ListTransactions)
		}

		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/arrived", deps.RideHandler.MarkArrived)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
		}
	}

	return router
}
