package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"timbre/internal/logging"
	"timbre/internal/payload"
	"timbre/internal/stage"
)

// settingsProvider is satisfied by every component that embeds stage.Base.
// Components that do not expose engine settings simply never snapshot.
type settingsProvider interface {
	EngineSettings() stage.Settings
}

// Options configures a Pipeline. Zero values are usable: logging is
// discarded, stage outcomes are dropped, and snapshots are disabled.
type Options struct {
	Logger      *slog.Logger
	Recorder    Recorder
	SnapshotDir string
}

// Pipeline runs the components of one category in order over a payload.
type Pipeline struct {
	category    stage.Category
	components  []stage.Component
	logger      *slog.Logger
	recorder    Recorder
	snapshotDir string
}

// New builds a pipeline over an already-constructed component list.
func New(category stage.Category, components []stage.Component, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Pipeline{
		category:    category,
		components:  components,
		logger:      logger,
		recorder:    recorder,
		snapshotDir: opts.SnapshotDir,
	}
}

// Category returns the phase this pipeline executes.
func (p *Pipeline) Category() stage.Category { return p.category }

// Components returns the ordered component list.
func (p *Pipeline) Components() []stage.Component { return p.components }

// Process folds the payload through every component in order. The first
// component error aborts the run; recording and snapshot failures do not.
func (p *Pipeline) Process(ctx context.Context, in *payload.Payload) (*payload.Payload, error) {
	current := in
	for _, component := range p.components {
		if err := ctx.Err(); err != nil {
			return current, fmt.Errorf("pipeline %s interrupted: %w", p.category, err)
		}
		subject := component.Type() + " - " + component.Name()
		rowsIn := 0
		if current != nil && current.Frame != nil {
			rowsIn = current.Frame.Len()
		}
		p.logger.Info("running component",
			logging.String(logging.FieldComponent, subject),
			logging.Int(logging.FieldRecords, rowsIn))
		if err := p.recorder.StageStarted(ctx, component.Type(), component.Name(), rowsIn); err != nil {
			p.logger.Warn("recording stage start failed", logging.Error(err))
		}

		start := time.Now()
		out, err := component.Process(ctx, current)
		elapsed := time.Since(start)
		if err != nil {
			if recordErr := p.recorder.StageFailed(ctx, component.Type(), component.Name(), err); recordErr != nil {
				p.logger.Warn("recording stage failure failed", logging.Error(recordErr))
			}
			return nil, fmt.Errorf("component %s: %w", subject, err)
		}
		if out == nil {
			err := fmt.Errorf("component %s returned no payload", subject)
			if recordErr := p.recorder.StageFailed(ctx, component.Type(), component.Name(), err); recordErr != nil {
				p.logger.Warn("recording stage failure failed", logging.Error(recordErr))
			}
			return nil, err
		}
		current = out

		p.logger.Info("component finished",
			logging.String(logging.FieldComponent, subject),
			logging.Int(logging.FieldRecords, current.Frame.Len()),
			logging.Duration("elapsed", elapsed))
		if err := p.recorder.StageCompleted(ctx, component.Type(), component.Name(), current.Frame.Len(), elapsed); err != nil {
			p.logger.Warn("recording stage completion failed", logging.Error(err))
		}

		p.maybeSnapshot(component, current)
	}
	return current, nil
}

// maybeSnapshot writes a final snapshot after a component that opted in.
// A component-level intermediate_payload_path overrides the run-wide
// snapshot directory.
func (p *Pipeline) maybeSnapshot(component stage.Component, current *payload.Payload) {
	provider, ok := component.(settingsProvider)
	if !ok {
		return
	}
	settings := provider.EngineSettings()
	dir := p.snapshotDir
	if settings.IntermediatePayloadPath != "" {
		dir = settings.IntermediatePayloadPath
	}
	if dir == "" || !settings.SavePayload {
		return
	}
	snapshot, err := SaveSnapshot(dir, component.Type(), component.Name(), current, false)
	if err != nil {
		p.logger.Warn("saving payload snapshot failed",
			logging.String(logging.FieldComponent, component.Type()+" - "+component.Name()),
			logging.Error(err))
		return
	}
	p.logger.Info("payload snapshot saved",
		logging.String(logging.FieldComponent, component.Type()+" - "+component.Name()),
		logging.String("path", snapshot.FramePath))
}
