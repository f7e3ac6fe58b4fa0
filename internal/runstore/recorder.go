package runstore

import (
	"context"
	"time"
)

// RunRecorder binds a store to one run and satisfies the pipeline's
// Recorder contract.
type RunRecorder struct {
	store *Store
	runID string
}

// NewRunRecorder returns a recorder that appends stage events to runID.
func NewRunRecorder(store *Store, runID string) *RunRecorder {
	return &RunRecorder{store: store, runID: runID}
}

func (r *RunRecorder) StageStarted(ctx context.Context, componentType, componentName string, rowsIn int) error {
	return r.store.RecordStageEvent(ctx, StageEvent{
		RunID:         r.runID,
		ComponentType: componentType,
		ComponentName: componentName,
		Status:        "started",
		RowCount:      rowsIn,
	})
}

func (r *RunRecorder) StageCompleted(ctx context.Context, componentType, componentName string, rowsOut int, elapsed time.Duration) error {
	return r.store.RecordStageEvent(ctx, StageEvent{
		RunID:          r.runID,
		ComponentType:  componentType,
		ComponentName:  componentName,
		Status:         "completed",
		RowCount:       rowsOut,
		ElapsedSeconds: elapsed.Seconds(),
	})
}

func (r *RunRecorder) StageFailed(ctx context.Context, componentType, componentName string, stageErr error) error {
	message := ""
	if stageErr != nil {
		message = stageErr.Error()
	}
	return r.store.RecordStageEvent(ctx, StageEvent{
		RunID:         r.runID,
		ComponentType: componentType,
		ComponentName: componentName,
		Status:        "failed",
		Error:         message,
	})
}
