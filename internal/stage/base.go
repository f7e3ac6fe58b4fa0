package stage

import (
	"log/slog"

	"timbre/internal/config"
	"timbre/internal/logging"
)

// Base carries the identity, engine settings, and logger shared by every
// concrete component. Embed it and implement Process.
type Base struct {
	componentType Category
	componentName string
	settings      Settings
	logger        *slog.Logger
}

// NewBase builds the shared component state. The logger is tagged with the
// "component_type - component_name" subject used across all log output.
func NewBase(componentType Category, componentName string, settings Settings, logger *slog.Logger) Base {
	return Base{
		componentType: componentType,
		componentName: componentName,
		settings:      settings,
		logger:        logging.NewComponentLogger(logger, string(componentType), componentName),
	}
}

// Decode materializes the merged config view for a component into out,
// which should embed Settings. A nil config leaves out untouched so
// components stay constructible in tests.
func Decode(cfg *config.Config, componentType Category, componentName string, out any) error {
	if cfg == nil {
		return nil
	}
	if err := cfg.DecodeComponent(string(componentType), componentName, out); err != nil {
		return Wrap(ErrConfiguration, string(componentType)+" - "+componentName, "decode settings", "", err)
	}
	return nil
}

func (b *Base) Type() string { return string(b.componentType) }

func (b *Base) Name() string { return b.componentName }

// Subject returns the "component_type - component_name" identity string.
func (b *Base) Subject() string { return string(b.componentType) + " - " + b.componentName }

// Logger returns the component-tagged logger.
func (b *Base) Logger() *slog.Logger { return b.logger }

// EngineSettings returns the engine-interpreted settings slice.
func (b *Base) EngineSettings() Settings { return b.settings }

// SetRecordsCount records how many items the current Process call handles,
// so latent logging can always emit on the final item.
func (b *Base) SetRecordsCount(n int) { b.settings.RecordsCount = n }

// LatentInfo logs message when iteration is a multiple of the configured
// interval, or when it is the final record of the current batch.
func (b *Base) LatentInfo(message string, iteration int, attrs ...logging.Attr) {
	lastItem := b.settings.RecordsCount > 0 && iteration == b.settings.RecordsCount-1
	if iteration%b.settings.LogEvery() == 0 || lastItem {
		b.logger.Info(message, logging.Args(attrs...)...)
	}
}
