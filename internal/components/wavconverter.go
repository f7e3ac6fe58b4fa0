package components

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"timbre/internal/batch"
	"timbre/internal/config"
	"timbre/internal/frame"
	"timbre/internal/logging"
	"timbre/internal/media/ffmpeg"
	"timbre/internal/media/ffprobe"
	"timbre/internal/payload"
	"timbre/internal/pipeline"
	"timbre/internal/segmenter"
	"timbre/internal/stage"
)

// WAVConverterName identifies the format normalization component.
const WAVConverterName = "wav_converter"

// WAVConverterSettings configure the target format.
type WAVConverterSettings struct {
	stage.Settings

	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
	SampleRate  int    `toml:"sample_rate"`
	Channels    int    `toml:"channels"`
	BitRate     string `toml:"bit_rate"`
	Codec       string `toml:"codec"`
}

func (s WAVConverterSettings) targetSampleRate() int {
	if s.SampleRate > 0 {
		return s.SampleRate
	}
	return 16000
}

func (s WAVConverterSettings) targetChannels() int {
	if s.Channels > 0 {
		return s.Channels
	}
	return 1
}

// WAVConverter transcodes every input into the pipeline-wide PCM WAV
// format, one output file per input.
type WAVConverter struct {
	segmenter.Base

	settings    WAVConverterSettings
	snapshotDir string
}

// NewWAVConverter builds the converter from configuration.
func NewWAVConverter(cfg *config.Config, logger *slog.Logger) (stage.Component, error) {
	var settings WAVConverterSettings
	if err := stage.Decode(cfg, stage.CategoryPreprocessing, WAVConverterName, &settings); err != nil {
		return nil, err
	}
	if settings.OutputDir == "" && cfg != nil {
		settings.OutputDir = filepath.Join(cfg.WorkspaceDir, "converted")
	}
	// conversion emits whole files, not segments
	if settings.AddSegmentMetadata == nil {
		disabled := false
		settings.AddSegmentMetadata = &disabled
	}
	converter := &WAVConverter{
		Base:     segmenter.New(stage.NewBase(stage.CategoryPreprocessing, WAVConverterName, settings.Settings, logger)),
		settings: settings,
	}
	if cfg != nil {
		converter.snapshotDir = cfg.PayloadDir()
	}
	if settings.IntermediatePayloadPath != "" {
		converter.snapshotDir = settings.IntermediatePayloadPath
	}
	return converter, nil
}

func (c *WAVConverter) Process(ctx context.Context, in *payload.Payload) (*payload.Payload, error) {
	md := in.Metadata.Clone()
	inputColumn := md.PathsColumn
	if inputColumn == "" {
		return nil, stage.Wrap(stage.ErrValidation, c.Subject(), "convert", "payload has no paths column", nil)
	}
	paths := in.Frame.Strings(inputColumn)
	c.EnhanceMetadata(&md)

	outputDir := c.EngineSettings().OutputDir
	resumed, todo, err := c.PartitionResume(paths, inputColumn, outputDir)
	if err != nil {
		return nil, err
	}
	if resumed.Len() > 0 {
		c.Logger().Info("reusing existing conversions", logging.Int(logging.FieldRecords, resumed.Len()))
	}
	c.SetRecordsCount(len(todo))

	opts := ffmpeg.Options{
		Binary:     c.settings.FFmpegPath,
		SampleRate: c.settings.SampleRate,
		Channels:   c.settings.Channels,
		BitRate:    c.settings.BitRate,
		Codec:      c.settings.Codec,
	}
	column := c.ProcessedPathColumn()

	runner := &batch.Runner{
		Logger:       c.Logger(),
		Description:  "converting audio",
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
		row := frame.Row{inputColumn: input}
		if c.alreadyTargetFormat(ctx, input) {
			row[column] = input
		} else {
			output := filepath.Join(outputDir, ffmpeg.Stem(input)+".wav")
			if err := ffmpeg.Convert(ctx, input, output, opts); err != nil {
				return nil, stage.Wrap(stage.ErrExternalTool, c.Subject(), "convert", input, err)
			}
			row[column] = output
		}
		c.AddPerformance(row, time.Since(started))
		return frameFromRow(row), nil
	})
	if err != nil {
		return nil, err
	}

	resumed.Append(fresh)
	return payload.New("", md, in.Frame.OuterJoin(resumed, inputColumn))
}

// alreadyTargetFormat probes the input and reports whether it is already
// PCM WAV at the target rate and channel count, so the row can reference
// the source file directly. Probe failures just mean "convert".
func (c *WAVConverter) alreadyTargetFormat(ctx context.Context, input string) bool {
	if strings.ToLower(filepath.Ext(input)) != ".wav" {
		return false
	}
	result, err := ffprobe.Inspect(ctx, c.settings.FFprobePath, input)
	if err != nil {
		return false
	}
	audioStream, ok := result.FirstAudioStream()
	if !ok || !strings.HasPrefix(audioStream.CodecName, "pcm_s16") {
		return false
	}
	rate, ok := audioStream.SampleRateHz()
	if !ok || rate != c.settings.targetSampleRate() {
		return false
	}
	return audioStream.Channels == c.settings.targetChannels()
}

func (c *WAVConverter) checkpoint(md payload.Metadata, resumed, partial *frame.Frame) {
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
