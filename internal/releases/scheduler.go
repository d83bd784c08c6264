package releases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketly/internal/sessions"
	"ticketly/pkg/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Enqueuer is satisfied by *asynq.Client
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler enqueues one delayed task per release cohort of an event
type Scheduler struct {
	client Enqueuer
	queue  string
	now    func() time.Time
	log    *logger.Logger
}

func NewScheduler(client Enqueuer) *Scheduler {
	return &Scheduler{
		client: client,
		queue:  "default",
		now:    time.Now,
		log:    logger.GetDefault().WithComponent("releases"),
	}
}

func (s *Scheduler) ScheduleReleases(ctx context.Context, eventID uuid.UUID, list []sessions.Session) error {
	var errs []error
	for _, payload := range cohorts(eventID, list) {
		task, err := NewReleaseTask(payload)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		opts := []asynq.Option{
			asynq.Queue(s.queue),
			asynq.TaskID(taskID(payload)),
			asynq.MaxRetry(5),
		}
		if payload.ReleaseDate.After(s.now()) {
			opts = append(opts, asynq.ProcessAt(payload.ReleaseDate))
		}

		_, err = s.client.EnqueueContext(ctx, task, opts...)
		switch {
		case errors.Is(err, asynq.ErrTaskIDConflict):
			s.log.DebugContext(ctx, "release already scheduled", "task_id", taskID(payload))
		case err != nil:
			errs = append(errs, fmt.Errorf("failed to schedule release %s: %w", taskID(payload), err))
		default:
			s.log.InfoContext(ctx, "release scheduled",
				"event_id", payload.EventID,
				"release_date", payload.ReleaseDate.Format("2006-01-02"),
				"sessions", len(payload.SessionIDs),
			)
		}
	}
	return errors.Join(errs...)
}

// cohorts groups sessions by release date, in the order the dates first appear
func cohorts(eventID uuid.UUID, list []sessions.Session) []ReleasePayload {
	var out []ReleasePayload
	pos := make(map[string]int)
	for _, s := range list {
		day := s.ReleaseDate.Format("2006-01-02")
		i, ok := pos[day]
		if !ok {
			i = len(out)
			pos[day] = i
			out = append(out, ReleasePayload{EventID: eventID.String(), ReleaseDate: s.ReleaseDate})
		}
		out[i].SessionIDs = append(out[i].SessionIDs, s.ID.String())
	}
	return out
}
