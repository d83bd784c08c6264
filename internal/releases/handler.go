package releases

import (
	"context"
	"encoding/json"
	"fmt"

	"ticketly/internal/notifications"
	"ticketly/internal/shared/config"
	"ticketly/pkg/logger"

	"github.com/hibiken/asynq"
)

type Handler struct {
	publisher notifications.Publisher
	log       *logger.Logger
}

func NewHandler(publisher notifications.Publisher) *Handler {
	return &Handler{publisher: publisher, log: logger.GetDefault().WithComponent("releases")}
}

// HandleSessionRelease announces that a cohort of sessions opened for booking
func (h *Handler) HandleSessionRelease(ctx context.Context, t *asynq.Task) error {
	var payload ReleasePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid release payload: %v: %w", err, asynq.SkipRetry)
	}

	message := notifications.NewMessageBuilder(notifications.MessageTypeSessionReleased).
		WithKey(payload.EventID).
		WithPayload(notifications.ReleasePayload{
			EventID:     payload.EventID,
			SessionIDs:  payload.SessionIDs,
			ReleaseDate: payload.ReleaseDate,
		}).
		Build()
	if err := h.publisher.Publish(ctx, message); err != nil {
		return err
	}

	h.log.InfoContext(ctx, "tickets released", "event_id", payload.EventID, "sessions", len(payload.SessionIDs))
	return nil
}

func NewServeMux(h *Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSessionRelease, h.HandleSessionRelease)
	return mux
}

func NewServer(redisOpt asynq.RedisClientOpt, cfg config.QueueConfig) *asynq.Server {
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	})
}
