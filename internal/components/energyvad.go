package components

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"time"

	"timbre/internal/batch"
	"timbre/internal/config"
	"timbre/internal/frame"
	"timbre/internal/logging"
	"timbre/internal/media/ffmpeg"
	"timbre/internal/media/wavio"
	"timbre/internal/payload"
	"timbre/internal/pipeline"
	"timbre/internal/segmenter"
	"timbre/internal/stage"
)

// EnergyVADName identifies the voice activity detection component.
const EnergyVADName = "energy_vad"

// EnergyVADSettings configure detection and cutting.
type EnergyVADSettings struct {
	stage.Settings

	FFmpegPath string `toml:"ffmpeg_path"`
	// FrameDuration is the analysis window in seconds.
	FrameDuration float64 `toml:"frame_duration"`
	// EnergyThreshold is the RMS level separating speech from silence.
	EnergyThreshold float64 `toml:"energy_threshold"`
	// MinSegmentDuration drops detected spans shorter than this.
	MinSegmentDuration float64 `toml:"min_segment_duration"`
	// MaxSegmentGap merges adjacent spans separated by less than this.
	MaxSegmentGap float64 `toml:"max_segment_gap"`
	// KeepOnlyFirstSegment emits one segment per input, named after it.
	KeepOnlyFirstSegment bool `toml:"keep_only_first_segment"`
}

func (s EnergyVADSettings) frameDuration() float64 {
	if s.FrameDuration > 0 {
		return s.FrameDuration
	}
	return 0.03
}

func (s EnergyVADSettings) energyThreshold() float64 {
	if s.EnergyThreshold > 0 {
		return s.EnergyThreshold
	}
	return 0.01
}

func (s EnergyVADSettings) minSegmentDuration() float64 {
	if s.MinSegmentDuration > 0 {
		return s.MinSegmentDuration
	}
	return 0.25
}

func (s EnergyVADSettings) maxSegmentGap() float64 {
	if s.MaxSegmentGap > 0 {
		return s.MaxSegmentGap
	}
	return 0.3
}

// EnergyVAD splits each input into voiced segments by thresholding
// short-window RMS energy, cutting segment files with ffmpeg.
type EnergyVAD struct {
	segmenter.Base

	settings    EnergyVADSettings
	snapshotDir string
}

// NewEnergyVAD builds the detector from configuration.
func NewEnergyVAD(cfg *config.Config, logger *slog.Logger) (stage.Component, error) {
	var settings EnergyVADSettings
	if err := stage.Decode(cfg, stage.CategoryPreprocessing, EnergyVADName, &settings); err != nil {
		return nil, err
	}
	if settings.OutputDir == "" && cfg != nil {
		settings.OutputDir = filepath.Join(cfg.WorkspaceDir, "segments")
	}
	vad := &EnergyVAD{
		Base:     segmenter.New(stage.NewBase(stage.CategoryPreprocessing, EnergyVADName, settings.Settings, logger)),
		settings: settings,
	}
	if cfg != nil {
		vad.snapshotDir = cfg.PayloadDir()
	}
	if settings.IntermediatePayloadPath != "" {
		vad.snapshotDir = settings.IntermediatePayloadPath
	}
	return vad, nil
}

func (c *EnergyVAD) Process(ctx context.Context, in *payload.Payload) (*payload.Payload, error) {
	md := in.Metadata.Clone()
	inputColumn := md.PathsColumn
	if inputColumn == "" {
		return nil, stage.Wrap(stage.ErrValidation, c.Subject(), "detect", "payload has no paths column", nil)
	}
	paths := in.Frame.Strings(inputColumn)
	c.EnhanceMetadata(&md)

	outputDir := c.EngineSettings().OutputDir
	resumed, todo, err := c.PartitionResume(paths, inputColumn, outputDir)
	if err != nil {
		return nil, err
	}
	if resumed.Len() > 0 {
		c.Logger().Info("reusing existing segments", logging.Int(logging.FieldRecords, resumed.Len()))
	}
	c.SetRecordsCount(len(todo))

	opts := ffmpeg.Options{Binary: c.settings.FFmpegPath}
	separator := c.EngineSettings().Separator()
	column := c.ProcessedPathColumn()

	runner := &batch.Runner{
		Logger:       c.Logger(),
		Description:  "detecting voice activity",
		LogEvery:     c.EngineSettings().LogEvery(),
		ShowProgress: true,
	}
	if periodicity := c.EngineSettings().SavePayloadPeriodicity; periodicity > 0 && c.snapshotDir != "" {
		runner.CheckpointEvery = periodicity
		runner.Checkpoint = func(partial *frame.Frame) {
			c.checkpoint(md, resumed, partial)
		}
	}

	fresh, err := runner.Run(ctx, todo, func(ctx context.Context, input string) (*frame.Frame, error) {
		started := time.Now()
		audio, err := wavio.DecodeFile(input)
		if err != nil {
			return nil, err
		}
		spans := detectSpans(audio,
			c.settings.frameDuration(),
			c.settings.energyThreshold(),
			c.settings.maxSegmentGap(),
			c.settings.minSegmentDuration())
		if len(spans) == 0 {
			return nil, fmt.Errorf("no voiced segments in %s", input)
		}
		if c.settings.KeepOnlyFirstSegment {
			spans = spans[:1]
		}

		out := frame.New()
		elapsed := time.Since(started)
		for idx, s := range spans {
			cut, err := ffmpeg.Cut(ctx, input, outputDir, s.start, s.stop, idx, separator, c.settings.KeepOnlyFirstSegment, opts)
			if err != nil {
				return nil, stage.Wrap(stage.ErrExternalTool, c.Subject(), "cut segment", input, err)
			}
			row := frame.Row{column: cut, inputColumn: input}
			c.AddSegmentBounds(row, s.start, s.stop)
			c.AddPerformance(row, elapsed)
			out.AppendRow(row)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	resumed.Append(fresh)
	return payload.New("", md, in.Frame.OuterJoin(resumed, inputColumn))
}

func (c *EnergyVAD) checkpoint(md payload.Metadata, resumed, partial *frame.Frame) {
	combined := resumed.Clone()
	combined.Append(partial)
	p, err := payload.New("", md.Clone(), combined)
	if err != nil {
		return
	}
	if _, err := pipeline.SaveSnapshot(c.snapshotDir, c.Type(), c.Name(), p, true); err != nil {
		c.Logger().Warn("saving intermediate snapshot failed", logging.Error(err))
	}
}

type span struct {
	start, stop float64
}

// detectSpans thresholds per-window RMS energy, merges spans separated by
// less than maxGap seconds, and drops spans shorter than minDuration.
func detectSpans(audio wavio.Audio, frameDuration, threshold, maxGap, minDuration float64) []span {
	if audio.SampleRate <= 0 || len(audio.Samples) == 0 {
		return nil
	}
	frameLen := int(frameDuration * float64(audio.SampleRate))
	if frameLen < 1 {
		frameLen = 1
	}

	var raw []span
	active := false
	start := 0.0
	for i := 0; i < len(audio.Samples); i += frameLen {
		end := i + frameLen
		if end > len(audio.Samples) {
			end = len(audio.Samples)
		}
		var sum float64
		for _, sample := range audio.Samples[i:end] {
			sum += sample * sample
		}
		rms := math.Sqrt(sum / float64(end-i))
		t := float64(i) / float64(audio.SampleRate)
		if rms >= threshold {
			if !active {
				active = true
				start = t
			}
			continue
		}
		if active {
			raw = append(raw, span{start: start, stop: t})
			active = false
		}
	}
	if active {
		raw = append(raw, span{start: start, stop: audio.Duration()})
	}

	var merged []span
	for _, s := range raw {
		if n := len(merged); n > 0 && s.start-merged[n-1].stop < maxGap {
			merged[n-1].stop = s.stop
			continue
		}
		merged = append(merged, s)
	}

	var kept []span
	for _, s := range merged {
		if s.stop-s.start >= minDuration {
			kept = append(kept, s)
		}
	}
	return kept
}
