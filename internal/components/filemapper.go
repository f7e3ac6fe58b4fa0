package components

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"timbre/internal/config"
	"timbre/internal/fileutil"
	"timbre/internal/frame"
	"timbre/internal/logging"
	"timbre/internal/payload"
	"timbre/internal/pipeline"
	"timbre/internal/stage"
)

// FileMapperName identifies the audio discovery component.
const FileMapperName = "file_mapper"

// filePathColumn is the paths column the mapper introduces at the root of
// a run.
const filePathColumn = "file_path"

// FileMapperSettings configure discovery.
type FileMapperSettings struct {
	stage.Settings

	// Recursive walks subdirectories instead of listing one level.
	Recursive bool `toml:"recursive"`
	// UseSnapshot resumes from the newest final snapshot this component
	// wrote, skipping discovery entirely.
	UseSnapshot bool `toml:"use_snapshot"`
}

// FileMapper seeds the table with one row per discovered audio file.
type FileMapper struct {
	stage.Base

	settings    FileMapperSettings
	snapshotDir string
}

// NewFileMapper builds the discovery component from configuration.
func NewFileMapper(cfg *config.Config, logger *slog.Logger) (stage.Component, error) {
	var settings FileMapperSettings
	if err := stage.Decode(cfg, stage.CategoryPreprocessing, FileMapperName, &settings); err != nil {
		return nil, err
	}
	mapper := &FileMapper{
		Base:     stage.NewBase(stage.CategoryPreprocessing, FileMapperName, settings.Settings, logger),
		settings: settings,
	}
	if cfg != nil {
		mapper.snapshotDir = cfg.PayloadDir()
	}
	if settings.IntermediatePayloadPath != "" {
		mapper.snapshotDir = settings.IntermediatePayloadPath
	}
	return mapper, nil
}

func (c *FileMapper) Process(ctx context.Context, in *payload.Payload) (*payload.Payload, error) {
	if c.settings.UseSnapshot && c.snapshotDir != "" {
		snapshot, ok, err := pipeline.LatestFinal(c.snapshotDir, c.Type(), c.Name())
		if err != nil {
			return nil, stage.Wrap(stage.ErrExternalTool, c.Subject(), "scan snapshots", "", err)
		}
		if ok {
			restored, err := pipeline.LoadSnapshot(snapshot)
			if err != nil {
				return nil, stage.Wrap(stage.ErrExternalTool, c.Subject(), "load snapshot", snapshot.FramePath, err)
			}
			c.Logger().Info("resumed from payload snapshot",
				logging.String("path", snapshot.FramePath),
				logging.Int(logging.FieldRecords, restored.Frame.Len()))
			return restored, nil
		}
	}

	md := in.Metadata.Clone()
	root := md.InputPath
	if strings.TrimSpace(root) == "" {
		return nil, stage.Wrap(stage.ErrConfiguration, c.Subject(), "map files", "input_path is not set", nil)
	}

	paths, err := c.discover(root)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		c.Logger().Warn("no audio files found", logging.String("path", root))
	}

	f := frame.WithColumns(filePathColumn)
	for _, path := range paths {
		f.AppendRow(frame.Row{filePathColumn: path})
	}
	md.SetPathsColumn(filePathColumn)
	c.Logger().Info("mapped audio files", logging.Int(logging.FieldRecords, f.Len()))
	return payload.New("", md, f)
}

func (c *FileMapper) discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, stage.Wrap(stage.ErrExternalTool, c.Subject(), "stat input", root, err)
	}
	if !info.IsDir() {
		if !fileutil.IsAudioFile(root) {
			return nil, stage.Wrap(stage.ErrValidation, c.Subject(), "map files",
				"input_path is neither a directory nor an audio file", nil)
		}
		return []string{root}, nil
	}
	var paths []string
	if c.settings.Recursive {
		paths, err = fileutil.WalkAudioFiles(root)
	} else {
		paths, err = fileutil.ListAudioFiles(root)
	}
	if err != nil {
		return nil, stage.Wrap(stage.ErrExternalTool, c.Subject(), "list input", root, err)
	}
	return paths, nil
}
