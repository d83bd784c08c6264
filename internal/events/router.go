package events

import (
	"ticketly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupEventRoutes(rg *gin.RouterGroup, controller *Controller, jwtSecret string) {
	organizer := middleware.RequireRoles(middleware.RoleOrganizer, middleware.RoleAdmin)

	events := rg.Group("/events")
	{
		events.GET("/:id", controller.GetEvent) // GET /api/v1/events/:id
	}

	protected := rg.Group("/events")
	protected.Use(middleware.JWTAuth(jwtSecret), organizer)
	{
		protected.POST("", controller.CreateEvent)                                  // POST /api/v1/events
		protected.POST("/:id/sessions/materialize", controller.MaterializeSessions) // POST /api/v1/events/:id/sessions/materialize
		protected.POST("/:id/cancel", controller.CancelEvent)                       // POST /api/v1/events/:id/cancel
	}
}
