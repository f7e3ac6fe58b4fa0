package components

import (
	"timbre/internal/media/ffmpeg"
	"timbre/internal/stage"
)

// Builtin returns a registry holding every component this build ships.
// Components whose external tooling is missing stay listed; their probe
// fails at pipeline build time with a clear error.
func Builtin() *stage.Registry {
	registry := stage.NewRegistry()
	registry.Register(stage.Registration{
		Category: stage.CategoryPreprocessing,
		Name:     FileMapperName,
		New:      NewFileMapper,
	})
	registry.Register(stage.Registration{
		Category: stage.CategoryPreprocessing,
		Name:     WAVConverterName,
		Probe:    func() error { return ffmpeg.Available("") },
		New:      NewWAVConverter,
	})
	registry.Register(stage.Registration{
		Category: stage.CategoryPreprocessing,
		Name:     EnergyVADName,
		Probe:    func() error { return ffmpeg.Available("") },
		New:      NewEnergyVAD,
	})
	registry.Register(stage.Registration{
		Category: stage.CategoryFeatureExtraction,
		Name:     SpectralFeaturesName,
		New:      NewSpectralFeatures,
	})
	registry.Register(stage.Registration{
		Category: stage.CategoryClassification,
		Name:     BandProfileName,
		New:      NewBandProfile,
	})
	registry.Register(stage.Registration{
		Category: stage.CategoryClassification,
		Name:     CosineDiarizerName,
		New:      NewCosineDiarizer,
	})
	return registry
}
