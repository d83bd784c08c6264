package releases

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeSessionRelease = "session:release"

// ReleasePayload names the sessions of one event whose tickets go on sale on ReleaseDate
type ReleasePayload struct {
	EventID     string    `json:"event_id"`
	ReleaseDate time.Time `json:"release_date"`
	SessionIDs  []string  `json:"session_ids"`
}

func NewReleaseTask(payload ReleasePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSessionRelease, data), nil
}

// taskID makes a cohort's task unique, so re-running materialization never double-announces
func taskID(payload ReleasePayload) string {
	return "release:" + payload.EventID + ":" + payload.ReleaseDate.Format("2006-01-02")
}
