package pipeline

import (
	"context"
	"time"
)

// Recorder receives stage lifecycle notifications. Implementations persist
// them; the pipeline treats recording failures as non-fatal and only logs
// them, so a broken ledger never aborts a run.
type Recorder interface {
	StageStarted(ctx context.Context, componentType, componentName string, rowsIn int) error
	StageCompleted(ctx context.Context, componentType, componentName string, rowsOut int, elapsed time.Duration) error
	StageFailed(ctx context.Context, componentType, componentName string, stageErr error) error
}

// NopRecorder discards all notifications.
type NopRecorder struct{}

func (NopRecorder) StageStarted(context.Context, string, string, int) error { return nil }

func (NopRecorder) StageCompleted(context.Context, string, string, int, time.Duration) error {
	return nil
}

func (NopRecorder) StageFailed(context.Context, string, string, error) error { return nil }
