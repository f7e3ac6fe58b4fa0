package components

import (
	"context"
	"log/slog"
	"strings"

	"timbre/internal/batch"
	"timbre/internal/config"
	"timbre/internal/frame"
	"timbre/internal/media/wavio"
	"timbre/internal/payload"
	"timbre/internal/stage"
)

// BandProfileName identifies the band-energy classifier.
const BandProfileName = "band_profile"

// bandProfileColumn is the emitted label column.
const bandProfileColumn = "band_profile_classification"

// BandProfileSettings configure the frequency band and decision rule.
type BandProfileSettings struct {
	stage.Settings

	// LowHz and HighHz bound the band of interest; defaults cover the
	// telephone voice band.
	LowHz  float64 `toml:"low_hz"`
	HighHz float64 `toml:"high_hz"`
	// Threshold is the in-band energy fraction above which a clip gets
	// WithinLabel.
	Threshold    float64 `toml:"threshold"`
	WithinLabel  string  `toml:"within_label"`
	OutsideLabel string  `toml:"outside_label"`
}

func (s BandProfileSettings) lowHz() float64 {
	if s.LowHz > 0 {
		return s.LowHz
	}
	return 300
}

func (s BandProfileSettings) highHz() float64 {
	if s.HighHz > s.lowHz() {
		return s.HighHz
	}
	return 3400
}

func (s BandProfileSettings) threshold() float64 {
	if s.Threshold > 0 && s.Threshold < 1 {
		return s.Threshold
	}
	return 0.5
}

func (s BandProfileSettings) withinLabel() string {
	if strings.TrimSpace(s.WithinLabel) != "" {
		return s.WithinLabel
	}
	return "voice"
}

func (s BandProfileSettings) outsideLabel() string {
	if strings.TrimSpace(s.OutsideLabel) != "" {
		return s.OutsideLabel
	}
	return "other"
}

// BandProfile labels each row by the fraction of spectral energy its audio
// carries inside a configured frequency band.
type BandProfile struct {
	stage.Base

	settings BandProfileSettings
}

// NewBandProfile builds the classifier from configuration.
func NewBandProfile(cfg *config.Config, logger *slog.Logger) (stage.Component, error) {
	var settings BandProfileSettings
	if err := stage.Decode(cfg, stage.CategoryClassification, BandProfileName, &settings); err != nil {
		return nil, err
	}
	return &BandProfile{
		Base:     stage.NewBase(stage.CategoryClassification, BandProfileName, settings.Settings, logger),
		settings: settings,
	}, nil
}

func (c *BandProfile) Process(ctx context.Context, in *payload.Payload) (*payload.Payload, error) {
	md := in.Metadata.Clone()
	pathsColumn := md.PathsColumn
	if pathsColumn == "" {
		return nil, stage.Wrap(stage.ErrValidation, c.Subject(), "classify", "payload has no paths column", nil)
	}
	paths := in.Frame.Strings(pathsColumn)
	md.AddClassificationColumns(bandProfileColumn)
	c.SetRecordsCount(len(paths))

	low, high, threshold := c.settings.lowHz(), c.settings.highHz(), c.settings.threshold()
	within, outside := c.settings.withinLabel(), c.settings.outsideLabel()

	runner := &batch.Runner{
		Logger:       c.Logger(),
		Description:  "profiling frequency bands",
		LogEvery:     c.EngineSettings().LogEvery(),
		ShowProgress: true,
	}
	labels, err := runner.Run(ctx, paths, func(ctx context.Context, path string) (*frame.Frame, error) {
		audio, err := wavio.DecodeFile(path)
		if err != nil {
			return nil, err
		}
		ratio, err := bandEnergyRatio(audio, low, high)
		if err != nil {
			return nil, err
		}
		label := outside
		if ratio >= threshold {
			label = within
		}
		return frameFromRow(frame.Row{pathsColumn: path, bandProfileColumn: label}), nil
	})
	if err != nil {
		return nil, err
	}

	labels.EnsureColumns(pathsColumn, bandProfileColumn)
	return payload.New("", md, in.Frame.OuterJoin(labels, pathsColumn))
}

// bandEnergyRatio returns in-band spectral energy over total energy,
// averaged across analysis frames.
func bandEnergyRatio(audio wavio.Audio, lowHz, highHz float64) (float64, error) {
	const frameSize = 2048
	const hopSize = 1024

	size := frameSize
	if len(audio.Samples) < size {
		if len(audio.Samples) == 0 {
			return 0, errTooShort
		}
		size = len(audio.Samples)
	}
	window := hannWindow(size)
	binWidth := float64(audio.SampleRate) / float64(nextPow2(size))

	var ratioSum float64
	frames := 0
	for start := 0; start+size <= len(audio.Samples); start += hopSize {
		mags := magnitudeSpectrum(audio.Samples[start:start+size], window)
		var total, inBand float64
		for k, mag := range mags {
			energy := mag * mag
			total += energy
			freq := float64(k) * binWidth
			if freq >= lowHz && freq <= highHz {
				inBand += energy
			}
		}
		if total > 0 {
			ratioSum += inBand / total
		}
		frames++
	}
	if frames == 0 {
		return 0, errTooShort
	}
	return ratioSum / float64(frames), nil
}
