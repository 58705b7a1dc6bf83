package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskItemThumbnail renders a thumbnail for a freshly uploaded item image.
	TaskItemThumbnail = "items:thumbnail"
)

// ThumbnailPayload identifies the uploaded image to shrink.
type ThumbnailPayload struct {
	ItemCode  string `json:"item_code"`
	ObjectKey string `json:"object_key"`
}

// NewThumbnailTask constructs an Asynq task.
func NewThumbnailTask(payload ThumbnailPayload) (*asynq.Task, error) {
	if payload.ObjectKey == "" {
		return nil, fmt.Errorf("jobs: thumbnail task requires an object key")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskItemThumbnail, body,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
	), nil
}
