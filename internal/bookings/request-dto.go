package bookings

import "ticketly/internal/seats"

type CreateBookingRequest struct {
	EventID       string            `json:"eventId" binding:"required,uuid"`
	SessionID     string            `json:"sessionId" binding:"required,uuid"`
	SelectedSeats []seats.Selection `json:"selectedSeats" binding:"required,min=1,dive"`
}

// ListQuery filters a user's bookings
type ListQuery struct {
	Status Status `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type BookingListResponse struct {
	Bookings   []Booking `json:"bookings"`
	TotalCount int64     `json:"totalCount"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}
