package cache

import "time"

const prefix = "ticketly"

const (
	TTLVenue         = 4 * time.Hour
	TTLSessionDetail = 30 * time.Second
)

func VenueKey(venueID string) string {
	return prefix + ":venues:detail:" + venueID
}

// SessionDetailKey caches the seat/ticket view of one session
func SessionDetailKey(sessionID string) string {
	return prefix + ":sessions:detail:" + sessionID
}

func EventSessionsKey(eventID string) string {
	return prefix + ":events:sessions:" + eventID
}

// EventPattern matches every cached view derived from an event
func EventPattern(eventID string) string {
	return prefix + ":events:*:" + eventID
}
