package events

import (
	"context"
	"time"

	"ticketly/pkg/logger"
)

// StatusJob periodically moves events from upcoming to ongoing to completed
type StatusJob struct {
	service  Service
	interval time.Duration
	log      *logger.Logger
	done     chan struct{}
}

func NewStatusJob(service Service, interval time.Duration) *StatusJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &StatusJob{
		service:  service,
		interval: interval,
		log:      logger.GetDefault().WithComponent("event-status-job"),
		done:     make(chan struct{}),
	}
}

// Start runs one pass immediately and then one per interval until Stop or ctx is done
func (j *StatusJob) Start(ctx context.Context) {
	j.log.Info("starting event status job", "interval", j.interval.String())
	go j.run(ctx)
}

func (j *StatusJob) Stop() {
	close(j.done)
	j.log.Info("event status job stopped")
}

func (j *StatusJob) run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.tick(ctx)
	for {
		select {
		case <-ticker.C:
			j.tick(ctx)
		case <-j.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (j *StatusJob) tick(ctx context.Context) {
	started, completed, err := j.service.AdvanceStatuses(ctx)
	if err != nil {
		j.log.WithError(err).ErrorContext(ctx, "failed to advance event statuses")
		return
	}
	if started > 0 || completed > 0 {
		j.log.InfoContext(ctx, "advanced event statuses", "started", started, "completed", completed)
	}
}
