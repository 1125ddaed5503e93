package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"greenride/internal/handler"
	"greenride/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler  *handler.RideHandler
	StatsHandler *handler.StatsHandler
	BadgeHandler *handler.BadgeHandler
	AdminHandler *handler.AdminHandler
	RedisClient  *redis.Client
	NewRelicApp  *newrelic.Application
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
		// Ride claim routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.SubmitRide)
			rides.GET("", deps.RideHandler.GetAll)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/verify", deps.RideHandler.VerifyRide)
			rides.POST("/:id/reject", deps.RideHandler.RejectRide)
			rides.POST("/verify-batch", deps.RideHandler.BatchVerify)
		}

		// Rider statistics and badge routes.
		riders := v1.Group("/riders")
		{
			riders.GET("/:rider/stats", deps.StatsHandler.GetStats)
			riders.GET("/:rider/badges", deps.BadgeHandler.ListBadges)
			riders.POST("/:rider/badges/evaluate", deps.BadgeHandler.Evaluate)
		}

		// Restricted configuration routes.
		admin := v1.Group("/admin")
		{
			admin.PUT("/rates", deps.AdminHandler.SetRateTable)
			admin.PUT("/bounds", deps.AdminHandler.SetBounds)
			admin.PUT("/milestones", deps.AdminHandler.SetMilestones)
			admin.PUT("/verifier", deps.AdminHandler.SetVerifier)
		}
	}

	return router
}
