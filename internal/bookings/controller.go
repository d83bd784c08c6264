package bookings

import (
	"net/http"

	"ticketly/internal/shared/middleware"
	"ticketly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateBooking godoc
// @Summary  Book seats of a session
// @Tags     bookings
// @Accept   json
// @Produce  json
// @Param    booking body CreateBookingRequest true "Seats to book"
// @Success  201 {object} response.StandardApiResponse
// @Failure  404 {object} response.StandardApiResponse
// @Failure  409 {object} response.StandardApiResponse
// @Router   /bookings [post]
func (c *Controller) CreateBooking(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := c.service.CreateBooking(ctx.Request.Context(), req.EventID, req.SessionID, req.SelectedSeats, userID)
	if err != nil {
		response.RespondError(ctx, "Failed to create booking", err)
		return
	}

	response.RespondSuccess(ctx, http.StatusCreated, "Booking confirmed successfully", booking)
}

// GetBooking godoc
// @Summary  Get one of the caller's bookings
// @Tags     bookings
// @Produce  json
// @Param    id path string true "Booking ID"
// @Success  200 {object} response.StandardApiResponse
// @Failure  403 {object} response.StandardApiResponse
// @Router   /bookings/{id} [get]
func (c *Controller) GetBooking(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	booking, err := c.service.GetBooking(ctx.Request.Context(), ctx.Param("id"), userID)
	if err != nil {
		response.RespondError(ctx, "Failed to get booking", err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Booking retrieved successfully", booking)
}

// GetUserBookings godoc
// @Summary  List the caller's bookings
// @Tags     bookings
// @Produce  json
// @Param    status query string false "pending, confirmed or cancelled"
// @Param    page   query int    false "Page"
// @Param    limit  query int    false "Page size"
// @Success  200 {object} response.StandardApiResponse
// @Router   /users/me/bookings [get]
func (c *Controller) GetUserBookings(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	var query ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	list, err := c.service.ListUserBookings(ctx.Request.Context(), userID, query)
	if err != nil {
		response.RespondError(ctx, "Failed to list bookings", err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Bookings retrieved successfully", list)
}

// CancelBooking godoc
// @Summary  Cancel a booking and release its seats
// @Tags     bookings
// @Produce  json
// @Param    id path string true "Booking ID"
// @Success  200 {object} response.StandardApiResponse
// @Failure  404 {object} response.StandardApiResponse
// @Router   /bookings/{id}/cancel [post]
func (c *Controller) CancelBooking(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)

	if err := c.service.CancelBooking(ctx.Request.Context(), ctx.Param("id"), userID); err != nil {
		response.RespondError(ctx, "Failed to cancel booking", err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Booking cancelled successfully", nil)
}
