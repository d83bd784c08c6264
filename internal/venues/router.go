package venues

import (
	"ticketly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupVenueRoutes(rg *gin.RouterGroup, controller *Controller, jwtSecret string) {
	venues := rg.Group("/venues")
	venues.Use(middleware.JWTAuth(jwtSecret))
	{
		venues.POST("", middleware.RequireRoles(middleware.RoleOrganizer, middleware.RoleAdmin), controller.CreateVenue) // POST /api/v1/venues
		venues.GET("/:id", controller.GetVenue)                                                                          // GET /api/v1/venues/:id
	}
}
