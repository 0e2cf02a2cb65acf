package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"ovenlog-backend/internal/mw"
)

// RouterOptions tune the middleware on the API group.
type RouterOptions struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(opts.RateLimitPerSec), opts.RateLimitBurst)

	cacheStore := cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	caching := mw.Cache(cacheStore, opts.CacheTTL)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Boxes and readiness
		api.GET("/boxes", handler.GetBoxes)
		api.GET("/boxes/:box_id/ready", handler.GetBoxReady)
		api.POST("/boxes/:box_id/power-on", handler.PostPowerOn)

		// Traks
		api.GET("/traks/available", handler.GetAvailableTraks)
		api.GET("/traks/:trak_id/history", handler.GetTrakHistory)

		// Oven events
		api.GET("/events/open", handler.GetOpenEvents)
		api.GET("/events/recent", handler.GetRecentActivity)
		api.POST("/events", handler.PostCheckIn)
		api.POST("/events/:event_id/checkout", handler.PostCheckOut)

		// Operator station
		api.GET("/session", handler.GetSession)
		api.POST("/session/keys", handler.PostSessionKeys)
		api.POST("/session/mode", handler.PostSessionMode)
		api.POST("/session/user", handler.PostSessionUser)

		// Per-user box subsets
		api.GET("/users/:user_id/boxes", handler.GetBoxSelections)
		api.PUT("/users/:user_id/boxes", handler.PutBoxSelections)

		// Catalog administration
		registerCatalogRoutes(api, handler, caching)

		// Push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
