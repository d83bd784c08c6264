package sessions

import (
	"net/http"

	"ticketly/internal/seats"
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

type HoldSeatsRequest struct {
	Seats []seats.Selection `json:"seats" binding:"required,min=1,max=10,dive"`
}

// ListSessions godoc
// @Summary  List the sessions of an event
// @Tags     sessions
// @Produce  json
// @Param    id path string true "Event ID"
// @Success  200 {object} response.StandardApiResponse
// @Router   /events/{id}/sessions [get]
func (c *Controller) ListSessions(ctx *gin.Context) {
	sessions, err := c.service.ListSessions(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, "Failed to list sessions", err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Sessions retrieved successfully", sessions)
}

// GetSession godoc
// @Summary  Get a session with its seat map
// @Tags     sessions
// @Produce  json
// @Param    id        path string true "Event ID"
// @Param    sessionId path string true "Session ID"
// @Success  200 {object} response.StandardApiResponse
// @Router   /events/{id}/sessions/{sessionId} [get]
func (c *Controller) GetSession(ctx *gin.Context) {
	session, err := c.service.GetSession(ctx.Request.Context(), ctx.Param("id"), ctx.Param("sessionId"))
	if err != nil {
		response.RespondError(ctx, "Failed to get session", err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Session retrieved successfully", session)
}

// HoldSeats godoc
// @Summary  Hold seats for a short time before booking
// @Tags     sessions
// @Accept   json
// @Produce  json
// @Param    id        path string           true "Event ID"
// @Param    sessionId path string           true "Session ID"
// @Param    hold      body HoldSeatsRequest true "Seats"
// @Success  201 {object} response.StandardApiResponse
// @Router   /events/{id}/sessions/{sessionId}/holds [post]
func (c *Controller) HoldSeats(ctx *gin.Context) {
	var req HoldSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	userID, _ := middleware.CurrentUserID(ctx)
	hold, err := c.service.HoldSeats(ctx.Request.Context(), ctx.Param("id"), ctx.Param("sessionId"), userID, req.Seats)
	if err != nil {
		response.RespondError(ctx, "Failed to hold seats", err)
		return
	}
	response.RespondSuccess(ctx, http.StatusCreated, "Seats held successfully", hold)
}

// ReleaseHold godoc
// @Summary  Release a seat hold
// @Tags     sessions
// @Produce  json
// @Param    holdId path string true "Hold ID"
// @Success  200 {object} response.StandardApiResponse
// @Router   /holds/{holdId} [delete]
func (c *Controller) ReleaseHold(ctx *gin.Context) {
	userID, _ := middleware.CurrentUserID(ctx)
	released, err := c.service.ReleaseHold(ctx.Request.Context(), ctx.Param("holdId"), userID)
	if err != nil {
		response.RespondError(ctx, "Failed to release hold", err)
		return
	}
	response.RespondSuccess(ctx, http.StatusOK, "Hold released successfully", gin.H{"released": released})
}
