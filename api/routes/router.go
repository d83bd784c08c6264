package routes

import (
	"net/http"
	"time"

	"ticketly/internal/bookings"
	"ticketly/internal/events"
	"ticketly/internal/notifications"
	"ticketly/internal/recurrence"
	"ticketly/internal/seats"
	"ticketly/internal/sessions"
	"ticketly/internal/shared/config"
	"ticketly/internal/shared/database"
	"ticketly/internal/venues"
	"ticketly/pkg/cache"
	"ticketly/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

// Dependencies are the shared clients the routes are built from.
// Releases and RateLimiter are optional.
type Dependencies struct {
	Config      *config.Config
	DB          *database.DB
	Publisher   notifications.Publisher
	Releases    events.ReleaseScheduler
	RateLimiter *ratelimit.RateLimiter
}

// Router holds all route dependencies
type Router struct {
	deps Dependencies

	venueService   venues.Service
	eventService   events.Service
	sessionService sessions.Service
	bookingService bookings.Service
}

// NewRouter builds every module service from deps
func NewRouter(deps Dependencies) *Router {
	cfg := deps.Config
	pg := deps.DB.PostgreSQL

	cacheService := cache.NewService(deps.DB.Redis)
	holds := seats.NewHoldStore(deps.DB.Redis, cfg.Redis.SeatHoldTTL)
	sessionRepo := sessions.NewRepository(pg)
	schedule := recurrence.Schedule{
		LeadDays:   cfg.Booking.ReleaseLeadDays,
		CohortSize: cfg.Booking.ReleaseCohortSize,
	}

	r := &Router{deps: deps}
	r.venueService = venues.NewService(venues.NewRepository(pg), cacheService)
	r.eventService = events.NewService(events.Dependencies{
		Repo:         events.NewRepository(pg),
		Sessions:     sessionRepo,
		Tx:           events.NewTransactor(pg),
		Venues:       r.venueService,
		Materializer: sessions.NewMaterializer(sessionRepo, schedule),
		Releases:     deps.Releases,
		Cache:        cacheService,
	})
	r.sessionService = sessions.NewService(sessionRepo, holds, cacheService)
	r.bookingService = bookings.NewService(bookings.Dependencies{
		Repo:      bookings.NewRepository(pg),
		Tx:        bookings.NewTransactor(pg),
		Holds:     holds,
		Cache:     cacheService,
		Publisher: deps.Publisher,
		MaxSeats:  cfg.Booking.MaxSeatsPerBooking,
	})
	return r
}

// EventService is shared with the status job
func (r *Router) EventService() events.Service {
	return r.eventService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	secret := r.deps.Config.JWT.Secret
	api := engine.Group(r.deps.Config.GetAPIBasePath())
	{
		venues.SetupVenueRoutes(api, venues.NewController(r.venueService), secret)
		events.SetupEventRoutes(api, events.NewController(r.eventService), secret)
		sessions.SetupSessionRoutes(api, sessions.NewController(r.sessionService), secret)
		bookings.SetupBookingRoutes(api, bookings.NewController(r.bookingService), secret, r.critical())
	}
}

// critical is the stricter limit on booking writes
func (r *Router) critical() gin.HandlerFunc {
	if r.deps.RateLimiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return ratelimit.ForType(r.deps.RateLimiter, ratelimit.RateLimitTypeBookingCritical)
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.deps.DB.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "ticketly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "ticketly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.deps.Config.APIVersion,
		})
	})
}
