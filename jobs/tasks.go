package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTokenPurge is the task type for deleting expired refresh
	// token records.
	TaskTokenPurge = "token:purge"
)

// TokenPurgePayload bounds a purge run.
type TokenPurgePayload struct {
	// BatchSize caps how many rows a single run removes. Zero means
	// no cap.
	BatchSize int `json:"batch_size"`
}

// NewTokenPurgeTask constructs an Asynq task.
func NewTokenPurgeTask(payload TokenPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTokenPurge, data), nil
}
