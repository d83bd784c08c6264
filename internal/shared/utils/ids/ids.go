package ids

import (
	"ticketly/internal/shared/apperrors"

	"github.com/google/uuid"
)

// Parse reads a path or body identifier, reporting a malformed one as a client error
func Parse(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Configuration("invalid %s ID %q", kind, raw)
	}
	return id, nil
}
