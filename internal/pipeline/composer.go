package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"timbre/internal/config"
	"timbre/internal/logging"
	"timbre/internal/payload"
	"timbre/internal/stage"
)

// Composer turns the flat component list from configuration into one
// pipeline per category and runs them in the fixed category order.
type Composer struct {
	cfg       *config.Config
	logger    *slog.Logger
	pipelines []*Pipeline
}

// Compose partitions cfg's component names across the categories the
// registry knows, preserving the caller's relative order inside each
// category, and builds every component. A name no category claims is a
// configuration error; a registered component whose capability probe fails
// surfaces here, before anything runs.
func Compose(cfg *config.Config, registry *stage.Registry, logger *slog.Logger, recorder Recorder) (*Composer, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	names := cfg.Pipeline.Components
	partitions := make(map[stage.Category][]string)
	for _, name := range names {
		claimed := false
		for _, category := range stage.Categories() {
			if registry.Contains(category, name) {
				partitions[category] = append(partitions[category], name)
				claimed = true
				break
			}
		}
		if !claimed {
			return nil, stage.Wrap(stage.ErrConfiguration, "composer", "partition",
				fmt.Sprintf("unknown component %q", name), nil)
		}
	}

	composer := &Composer{cfg: cfg, logger: logger}
	for _, category := range stage.Categories() {
		claimed := partitions[category]
		if len(claimed) == 0 {
			continue
		}
		components := make([]stage.Component, 0, len(claimed))
		for _, name := range claimed {
			component, err := registry.Build(category, name, cfg, logger)
			if err != nil {
				return nil, err
			}
			components = append(components, component)
		}
		logger.Info("pipeline composed",
			logging.String("category", string(category)),
			logging.String("components", strings.Join(claimed, ", ")))
		composer.pipelines = append(composer.pipelines, New(category, components, Options{
			Logger:      logger,
			Recorder:    recorder,
			SnapshotDir: cfg.PayloadDir(),
		}))
	}
	return composer, nil
}

// Pipelines returns the composed pipelines in execution order.
func (c *Composer) Pipelines() []*Pipeline { return c.pipelines }

// Components returns every composed component in execution order.
func (c *Composer) Components() []stage.Component {
	var components []stage.Component
	for _, p := range c.pipelines {
		components = append(components, p.Components()...)
	}
	return components
}

// Process runs every pipeline over one payload. A nil initial payload is
// seeded from the configured input path.
func (c *Composer) Process(ctx context.Context, initial *payload.Payload) (*payload.Payload, error) {
	current := initial
	if current == nil {
		seeded, err := payload.FromInput(c.cfg.InputPath)
		if err != nil {
			return nil, stage.Wrap(stage.ErrConfiguration, "composer", "seed payload",
				"input_path is not set and no payload was supplied", err)
		}
		current = seeded
	}
	for _, p := range c.pipelines {
		out, err := p.Process(ctx, current)
		if err != nil {
			return nil, err
		}
		current = out
	}
	return current, nil
}
