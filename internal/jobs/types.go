// Package jobs defines the background task types shared between enqueuers
// and the warm worker.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskWarmViewer pre-populates the shared cache for one viewer so their
// next boot finds every lane already hot.
const TaskWarmViewer = "warm:viewer"

// WarmViewerPayload identifies the viewer to warm.
type WarmViewerPayload struct {
	ViewerID string `json:"viewer_id"`
}

// NewWarmViewerTask builds the asynq task for a viewer.
func NewWarmViewerTask(viewerID string) (*asynq.Task, error) {
	payload, err := json.Marshal(WarmViewerPayload{ViewerID: viewerID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWarmViewer, payload), nil
}
