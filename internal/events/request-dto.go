package events

import (
	"ticketly/internal/recurrence"
	"ticketly/internal/sessions"
)

type CreateEventRequest struct {
	Title            string                      `json:"title" binding:"required,min=3,max=255"`
	Description      string                      `json:"description" binding:"max=2000"`
	Recurrence       recurrence.Kind             `json:"recurrence" binding:"required,oneof=single multi-day weekly"`
	StartDate        string                      `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate          string                      `json:"endDate" binding:"required_unless=Recurrence single,omitempty,datetime=2006-01-02"`
	StartTime        string                      `json:"startTime" binding:"required,hhmm"`
	EndTime          string                      `json:"endTime" binding:"required,hhmm"`
	SelectedWeekdays []string                    `json:"selectedWeekdays" binding:"required_if=Recurrence weekly,dive,weekday"`
	VenueID          string                      `json:"venueId" binding:"required,uuid"`
	Tickets          []sessions.TicketDefinition `json:"tickets" binding:"required,min=1,dive"`
}
