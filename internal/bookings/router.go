package bookings

import (
	"ticketly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes registers booking routes. critical guards the endpoints that mutate inventory.
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, jwtSecret string, critical gin.HandlerFunc) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth(jwtSecret))
	{
		bookings.POST("", critical, controller.CreateBooking)            // POST /api/v1/bookings
		bookings.GET("/:id", controller.GetBooking)                      // GET /api/v1/bookings/:id
		bookings.POST("/:id/cancel", critical, controller.CancelBooking) // POST /api/v1/bookings/:id/cancel
	}

	users := rg.Group("/users")
	users.Use(middleware.JWTAuth(jwtSecret))
	{
		users.GET("/me/bookings", controller.GetUserBookings) // GET /api/v1/users/me/bookings
	}
}
