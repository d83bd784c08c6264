package venues

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

// CreateVenue godoc
// @Summary  Create a venue with its seating layout
// @Tags     venues
// @Accept   json
// @Produce  json
// @Param    venue body CreateVenueRequest true "Venue"
// @Success  201 {object} response.StandardApiResponse
// @Router   /venues [post]
func (c *Controller) CreateVenue(ctx *gin.Context) {
	var req CreateVenueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	organizerID, _ := middleware.CurrentUserID(ctx)
	venue, err := c.service.CreateVenue(ctx.Request.Context(), req, organizerID)
	if err != nil {
		response.RespondError(ctx, "Failed to create venue", err)
		return
	}

	response.RespondSuccess(ctx, http.StatusCreated, "Venue created successfully", venue)
}

// GetVenue godoc
// @Summary  Get a venue
// @Tags     venues
// @Produce  json
// @Param    id path string true "Venue ID"
// @Success  200 {object} response.StandardApiResponse
// @Router   /venues/{id} [get]
func (c *Controller) GetVenue(ctx *gin.Context) {
	venue, err := c.service.GetVenue(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, "Failed to get venue", err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Venue retrieved successfully", venue)
}
