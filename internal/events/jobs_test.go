package events

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingService struct {
	Service
	calls atomic.Int32
}

func (s *countingService) AdvanceStatuses(context.Context) (int64, int64, error) {
	s.calls.Add(1)
	return 1, 0, nil
}

func TestStatusJobRunsUntilStopped(t *testing.T) {
	svc := &countingService{}
	job := NewStatusJob(svc, 10*time.Millisecond)

	job.Start(context.Background())
	assert.Eventually(t, func() bool { return svc.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	job.Stop()
	time.Sleep(30 * time.Millisecond)
	stopped := svc.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, svc.calls.Load())
}

func TestStatusJobStopsWithContext(t *testing.T) {
	svc := &countingService{}
	ctx, cancel := context.WithCancel(context.Background())
	job := NewStatusJob(svc, time.Hour)

	job.Start(ctx)
	assert.Eventually(t, func() bool { return svc.calls.Load() == 1 }, time.Second, 5*time.Millisecond, "first pass runs immediately")
	cancel()
}
