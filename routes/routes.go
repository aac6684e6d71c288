package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tuwi/handlers"
	"tuwi/middleware"
)

// RegisterBookingRoutes registers the booking workflow endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("", middleware.OptionalSession(hb.JWTSecret), hb.CreateBookingHandler)
		bookings.GET("/:id", hb.GetBookingHandler)
	}
}

// RegisterCatalogRoutes registers availability and service catalogue endpoints.
// Writes require the braider's own session.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/availability/:id", hb.GetAvailabilityHandler)

	braiders := r.Group("/braiders/:id")
	{
		braiders.GET("/availability", hb.ListAvailabilityHandler)
		braiders.GET("/services", hb.ListServicesHandler)

		owner := braiders.Group("")
		owner.Use(middleware.RequireBraider(hb.JWTSecret))
		owner.POST("/availability", hb.OpenSlotsHandler)
		owner.POST("/services", hb.CreateServiceHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	origins := hb.CORSOrigins
	allowAll := len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Retry-After", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if allowAll {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.RateLimitMiddleware(hb.MaxRequestsPerMin))

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterCatalogRoutes(r, hb)
}
