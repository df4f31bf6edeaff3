package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/conference-central/internal/config"
	"github.com/iliyamo/conference-central/internal/handler"
	"github.com/iliyamo/conference-central/internal/middleware"
)

// Options carries everything the router wires into the middleware chain.
type Options struct {
	JWTSecret string
	RateLimit config.RateLimitConfig
	Redis     *redis.Client // nil disables rate limiting
	Health    map[string]handler.Pinger
	Log       zerolog.Logger
}

// New builds the Echo instance with the global middleware and every route.
func New(h *handler.Handler, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(opts.Log))
	e.Use(middleware.Metrics())

	RegisterRoutes(e, opts.Health)
	RegisterAPI(e, h, opts.JWTSecret,
		middleware.NewTokenBucket(opts.RateLimit, opts.Redis, opts.Log))
	return e
}

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo, health map[string]handler.Pinger) {
	e.GET("/healthz", handler.Health(health))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAPI mounts the conference API under /v1.  Every route resolves
// the optional bearer token; operations that need a caller reject
// anonymous requests themselves.  extra middleware runs after JWT so it
// can key on the caller.
func RegisterAPI(e *echo.Echo, h *handler.Handler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	g.Use(extra...)

	// ---- Conferences ----
	g.POST("/conference", h.CreateConference)
	g.GET("/conference/announcement/get", h.GetAnnouncement)
	g.GET("/conference/:key", h.GetConference)
	g.PUT("/conference/:key", h.UpdateConference)
	g.POST("/conference/:key", h.RegisterForConference)
	g.DELETE("/conference/:key", h.UnregisterFromConference)
	g.POST("/queryConferences", h.QueryConferences)
	g.POST("/getConferencesCreated", h.GetConferencesCreated)
	g.GET("/conferences/attending", h.GetConferencesToAttend)

	// ---- Profiles ----
	g.GET("/profile", h.GetProfile)
	g.POST("/profile", h.SaveProfile)

	// ---- Sessions ----
	g.POST("/createSession", h.CreateSession)
	g.GET("/getConferenceSessions", h.GetConferenceSessions)
	g.GET("/getConferenceSessionsByType", h.GetConferenceSessionsByType)
	g.GET("/getSessionsBySpeaker", h.GetSessionsBySpeaker)
	g.GET("/getFeaturedSpeaker", h.GetFeaturedSpeaker)
	g.GET("/getConferenceSpeakers", h.GetConferenceSpeakers)

	// ---- Wishlist ----
	g.POST("/addSessionToWishlist", h.AddSessionToWishlist)
	g.GET("/getSessionsInWishlist", h.GetSessionsInWishlist)
	g.GET("/getConferencesWithWishlistedSessions", h.GetConferencesWithWishlistedSessions)
}
