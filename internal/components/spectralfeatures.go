package components

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"timbre/internal/batch"
	"timbre/internal/config"
	"timbre/internal/frame"
	"timbre/internal/media/wavio"
	"timbre/internal/payload"
	"timbre/internal/stage"
)

// SpectralFeaturesName identifies the spectral feature extractor.
const SpectralFeaturesName = "spectral_features"

// spectralColumns are the feature columns the extractor emits, in output
// order.
var spectralColumns = []string{
	"rms",
	"zero_crossing_rate",
	"spectral_centroid",
	"spectral_bandwidth",
	"spectral_rolloff",
	"spectral_flatness",
}

// SpectralFeaturesSettings configure framing.
type SpectralFeaturesSettings struct {
	stage.Settings

	// FrameSize is the analysis frame length in samples.
	FrameSize int `toml:"frame_size"`
	// HopSize is the frame advance in samples.
	HopSize int `toml:"hop_size"`
	// RolloffPercent is the cumulative-energy fraction defining rolloff.
	RolloffPercent float64 `toml:"rolloff_percent"`
}

func (s SpectralFeaturesSettings) frameSize() int {
	if s.FrameSize > 0 {
		return s.FrameSize
	}
	return 2048
}

func (s SpectralFeaturesSettings) hopSize() int {
	if s.HopSize > 0 {
		return s.HopSize
	}
	return 512
}

func (s SpectralFeaturesSettings) rolloffPercent() float64 {
	if s.RolloffPercent > 0 && s.RolloffPercent <= 1 {
		return s.RolloffPercent
	}
	return 0.85
}

// SpectralFeatures computes clip-level spectral descriptors for every row's
// audio file, averaged over short-time frames.
type SpectralFeatures struct {
	stage.Base

	settings SpectralFeaturesSettings
}

// NewSpectralFeatures builds the extractor from configuration.
func NewSpectralFeatures(cfg *config.Config, logger *slog.Logger) (stage.Component, error) {
	var settings SpectralFeaturesSettings
	if err := stage.Decode(cfg, stage.CategoryFeatureExtraction, SpectralFeaturesName, &settings); err != nil {
		return nil, err
	}
	return &SpectralFeatures{
		Base:     stage.NewBase(stage.CategoryFeatureExtraction, SpectralFeaturesName, settings.Settings, logger),
		settings: settings,
	}, nil
}

func (c *SpectralFeatures) Process(ctx context.Context, in *payload.Payload) (*payload.Payload, error) {
	md := in.Metadata.Clone()
	pathsColumn := md.PathsColumn
	if pathsColumn == "" {
		return nil, stage.Wrap(stage.ErrValidation, c.Subject(), "extract", "payload has no paths column", nil)
	}
	paths := in.Frame.Strings(pathsColumn)
	md.AddFeatureColumns(spectralColumns...)

	perfColumn := ""
	if c.EngineSettings().PerformanceMeasurement {
		perfColumn = "perf_" + c.Name()
		md.AddMetaColumns(perfColumn)
	}
	c.SetRecordsCount(len(paths))

	runner := &batch.Runner{
		Logger:       c.Logger(),
		Description:  "extracting spectral features",
		LogEvery:     c.EngineSettings().LogEvery(),
		ShowProgress: true,
	}
	features, err := runner.Run(ctx, paths, func(ctx context.Context, path string) (*frame.Frame, error) {
		row, err := c.analyzeFile(path, pathsColumn, perfColumn)
		if err != nil {
			return nil, err
		}
		return frameFromRow(row), nil
	})
	if err != nil {
		return nil, err
	}

	features.EnsureColumns(append([]string{pathsColumn}, spectralColumns...)...)
	return payload.New("", md, in.Frame.OuterJoin(features, pathsColumn))
}

func (c *SpectralFeatures) analyzeFile(path, pathsColumn, perfColumn string) (frame.Row, error) {
	started := timeNow()
	audio, err := wavio.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	values, err := analyzeSpectrum(audio, c.settings.frameSize(), c.settings.hopSize(), c.settings.rolloffPercent())
	if err != nil {
		return nil, err
	}
	row := frame.Row{pathsColumn: path}
	for column, value := range values {
		row[column] = value
	}
	if perfColumn != "" {
		row[perfColumn] = timeNow().Sub(started).Seconds()
	}
	return row, nil
}

var errTooShort = errors.New("clip shorter than one analysis frame")

// analyzeSpectrum averages frame-level descriptors over the clip.
func analyzeSpectrum(audio wavio.Audio, frameSize, hopSize int, rolloffPercent float64) (map[string]float64, error) {
	samples := audio.Samples
	if len(samples) < frameSize {
		if len(samples) == 0 {
			return nil, errTooShort
		}
		frameSize = len(samples)
	}
	window := hannWindow(frameSize)
	binWidth := float64(audio.SampleRate) / float64(nextPow2(frameSize))

	var (
		frames    int
		rms       float64
		zcr       float64
		centroid  float64
		bandwidth float64
		rolloff   float64
		flatness  float64
	)
	for start := 0; start+frameSize <= len(samples); start += hopSize {
		chunk := samples[start : start+frameSize]

		var energy float64
		crossings := 0
		for i, sample := range chunk {
			energy += sample * sample
			if i > 0 && (chunk[i-1] >= 0) != (sample >= 0) {
				crossings++
			}
		}
		rms += math.Sqrt(energy / float64(frameSize))
		zcr += float64(crossings) / float64(frameSize)

		mags := magnitudeSpectrum(chunk, window)
		var total, weighted float64
		for k, mag := range mags {
			total += mag
			weighted += float64(k) * binWidth * mag
		}
		if total == 0 {
			frames++
			continue
		}
		frameCentroid := weighted / total
		centroid += frameCentroid

		var spread float64
		for k, mag := range mags {
			delta := float64(k)*binWidth - frameCentroid
			spread += mag * delta * delta
		}
		bandwidth += math.Sqrt(spread / total)

		target := rolloffPercent * total
		var cumulative float64
		for k, mag := range mags {
			cumulative += mag
			if cumulative >= target {
				rolloff += float64(k) * binWidth
				break
			}
		}

		var logSum float64
		for _, mag := range mags {
			logSum += math.Log(mag + 1e-10)
		}
		geometric := math.Exp(logSum / float64(len(mags)))
		arithmetic := total / float64(len(mags))
		flatness += geometric / (arithmetic + 1e-10)

		frames++
	}
	if frames == 0 {
		return nil, errTooShort
	}

	n := float64(frames)
	return map[string]float64{
		"rms":                rms / n,
		"zero_crossing_rate": zcr / n,
		"spectral_centroid":  centroid / n,
		"spectral_bandwidth": bandwidth / n,
		"spectral_rolloff":   rolloff / n,
		"spectral_flatness":  flatness / n,
	}, nil
}
