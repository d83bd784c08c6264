package releases

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ticketly/internal/notifications"
	"ticketly/internal/sessions"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enqueued struct {
	task *asynq.Task
	opts map[asynq.OptionType]interface{}
}

type fakeEnqueuer struct {
	seen  map[string]bool
	tasks []enqueued
	fail  error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	values := make(map[asynq.OptionType]interface{}, len(opts))
	for _, o := range opts {
		values[o.Type()] = o.Value()
	}
	id, _ := values[asynq.TaskIDOpt].(string)
	if f.seen[id] {
		return nil, asynq.ErrTaskIDConflict
	}
	f.seen[id] = true
	f.tasks = append(f.tasks, enqueued{task: task, opts: values})
	return &asynq.TaskInfo{ID: id}, nil
}

func day(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func sessionsReleasedOn(dates ...string) []sessions.Session {
	out := make([]sessions.Session, len(dates))
	for i, d := range dates {
		out[i] = sessions.Session{ID: uuid.New(), ReleaseDate: day(d)}
	}
	return out
}

func TestScheduleReleasesOneTaskPerCohort(t *testing.T) {
	client := &fakeEnqueuer{seen: map[string]bool{}}
	s := NewScheduler(client)
	s.now = func() time.Time { return day("2025-01-01") }
	eventID := uuid.New()

	list := sessionsReleasedOn("2025-05-12", "2025-05-12", "2025-05-19", "2024-12-30")
	require.NoError(t, s.ScheduleReleases(context.Background(), eventID, list))
	require.Len(t, client.tasks, 3)

	first := client.tasks[0]
	assert.Equal(t, TypeSessionRelease, first.task.Type())
	assert.Equal(t, "release:"+eventID.String()+":2025-05-12", first.opts[asynq.TaskIDOpt])
	assert.Equal(t, day("2025-05-12"), first.opts[asynq.ProcessAtOpt])

	var payload ReleasePayload
	require.NoError(t, json.Unmarshal(first.task.Payload(), &payload))
	assert.Equal(t, []string{list[0].ID.String(), list[1].ID.String()}, payload.SessionIDs)

	_, delayed := client.tasks[2].opts[asynq.ProcessAtOpt]
	assert.False(t, delayed, "past release dates run immediately")
}

func TestScheduleReleasesIsIdempotent(t *testing.T) {
	client := &fakeEnqueuer{seen: map[string]bool{}}
	s := NewScheduler(client)
	list := sessionsReleasedOn("2030-05-12", "2030-05-19")

	require.NoError(t, s.ScheduleReleases(context.Background(), uuid.New(), list))
	eventID := uuid.New()
	require.NoError(t, s.ScheduleReleases(context.Background(), eventID, list))
	require.NoError(t, s.ScheduleReleases(context.Background(), eventID, list))

	assert.Len(t, client.tasks, 4)
}

func TestScheduleReleasesReportsFailures(t *testing.T) {
	client := &fakeEnqueuer{seen: map[string]bool{}, fail: errors.New("redis down")}
	err := NewScheduler(client).ScheduleReleases(context.Background(), uuid.New(), sessionsReleasedOn("2030-05-12"))
	assert.ErrorContains(t, err, "redis down")
}

type recordingPublisher struct {
	messages []*notifications.Message
}

func (p *recordingPublisher) Publish(_ context.Context, m *notifications.Message) error {
	p.messages = append(p.messages, m)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestHandleSessionRelease(t *testing.T) {
	publisher := &recordingPublisher{}
	h := NewHandler(publisher)

	task, err := NewReleaseTask(ReleasePayload{EventID: "e-1", ReleaseDate: day("2025-05-12"), SessionIDs: []string{"s-1", "s-2"}})
	require.NoError(t, err)
	require.NoError(t, h.HandleSessionRelease(context.Background(), task))

	require.Len(t, publisher.messages, 1)
	m := publisher.messages[0]
	assert.Equal(t, notifications.MessageTypeSessionReleased, m.Type)
	assert.Equal(t, "e-1", m.PartitionKey())
	assert.Equal(t, []string{"s-1", "s-2"}, m.Payload.(notifications.ReleasePayload).SessionIDs)
}

func TestHandleSessionReleaseSkipsRetryOnBadPayload(t *testing.T) {
	h := NewHandler(&recordingPublisher{})
	err := h.HandleSessionRelease(context.Background(), asynq.NewTask(TypeSessionRelease, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
