package events

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

// CreateEvent godoc
// @Summary  Create an event and materialize its sessions
// @Tags     events
// @Accept   json
// @Produce  json
// @Param    event body CreateEventRequest true "Event"
// @Success  201 {object} response.StandardApiResponse
// @Failure  400 {object} response.StandardApiResponse
// @Router   /events [post]
func (c *Controller) CreateEvent(ctx *gin.Context) {
	var req CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	organizerID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	result, err := c.service.CreateEvent(ctx.Request.Context(), req, organizerID)
	if err != nil {
		response.RespondError(ctx, "Failed to create event", err)
		return
	}

	response.RespondSuccess(ctx, http.StatusCreated, "Event created successfully", result)
}

// GetEvent godoc
// @Summary  Get an event with its ticket overview
// @Tags     events
// @Produce  json
// @Param    id path string true "Event ID"
// @Success  200 {object} response.StandardApiResponse
// @Failure  404 {object} response.StandardApiResponse
// @Router   /events/{id} [get]
func (c *Controller) GetEvent(ctx *gin.Context) {
	event, err := c.service.GetEvent(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, "Failed to get event", err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Event retrieved successfully", event)
}

// MaterializeSessions godoc
// @Summary  Create any missing sessions for an event
// @Tags     events
// @Produce  json
// @Param    id path string true "Event ID"
// @Success  200 {object} response.StandardApiResponse
// @Failure  403 {object} response.StandardApiResponse
// @Failure  409 {object} response.StandardApiResponse
// @Router   /events/{id}/sessions/materialize [post]
func (c *Controller) MaterializeSessions(ctx *gin.Context) {
	requesterID, _ := middleware.CurrentUserID(ctx)
	if ctx.GetString("user_role") == middleware.RoleAdmin {
		requesterID = ""
	}

	list, err := c.service.MaterializeSessions(ctx.Request.Context(), ctx.Param("id"), requesterID)
	if err != nil {
		response.RespondError(ctx, "Failed to materialize sessions", err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Sessions materialized successfully", list)
}

// CancelEvent godoc
// @Summary  Cancel an event
// @Tags     events
// @Produce  json
// @Param    id path string true "Event ID"
// @Success  200 {object} response.StandardApiResponse
// @Failure  409 {object} response.StandardApiResponse
// @Router   /events/{id}/cancel [post]
func (c *Controller) CancelEvent(ctx *gin.Context) {
	requesterID, _ := middleware.CurrentUserID(ctx)

	event, err := c.service.CancelEvent(ctx.Request.Context(), ctx.Param("id"), requesterID)
	if err != nil {
		response.RespondError(ctx, "Failed to cancel event", err)
		return
	}

	response.RespondSuccess(ctx, http.StatusOK, "Event cancelled successfully", event)
}
