package sessions

import (
	"ticketly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSessionRoutes(rg *gin.RouterGroup, controller *Controller, jwtSecret string) {
	events := rg.Group("/events/:id/sessions")
	{
		events.GET("", controller.ListSessions)                                               // GET /api/v1/events/:id/sessions
		events.GET("/:sessionId", controller.GetSession)                                      // GET /api/v1/events/:id/sessions/:sessionId
		events.POST("/:sessionId/holds", middleware.JWTAuth(jwtSecret), controller.HoldSeats) // POST /api/v1/events/:id/sessions/:sessionId/holds
	}

	holds := rg.Group("/holds")
	holds.Use(middleware.JWTAuth(jwtSecret))
	{
		holds.DELETE("/:holdId", controller.ReleaseHold) // DELETE /api/v1/holds/:holdId
	}
}
