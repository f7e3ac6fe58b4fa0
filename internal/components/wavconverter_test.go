package components

import (
	"path/filepath"
	"testing"

	"timbre/internal/payload"
	"timbre/internal/testsupport"
)

func TestWAVConverterDefaults(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	component, err := NewWAVConverter(cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	converter := component.(*WAVConverter)

	if got := converter.EngineSettings().OutputDir; got != filepath.Join(cfg.WorkspaceDir, "converted") {
		t.Fatalf("output dir = %q", got)
	}
	if converter.EngineSettings().SegmentMetadataEnabled() {
		t.Fatalf("whole-file conversion must not declare segment bounds by default")
	}
}

func TestWAVConverterMetadataLineage(t *testing.T) {
	component, err := NewWAVConverter(nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	converter := component.(*WAVConverter)

	md := payload.Metadata{PathsColumn: "file_path", AllPathsColumns: []string{"file_path"}}
	converter.EnhanceMetadata(&md)

	if md.PathsColumn != "wav_converter_processed_path" {
		t.Fatalf("paths column = %q", md.PathsColumn)
	}
	if len(md.MetaColumns) != 0 {
		t.Fatalf("meta columns = %v", md.MetaColumns)
	}
}

func TestWAVConverterSettingsOverride(t *testing.T) {
	cfg := mustParseConfig(t, `
[preprocessing.wav_converter]
output_dir = "/tmp/conv"
sample_rate = 44100
add_segment_metadata = true
`)
	component, err := NewWAVConverter(cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	converter := component.(*WAVConverter)

	if converter.settings.SampleRate != 44100 {
		t.Fatalf("sample rate = %d", converter.settings.SampleRate)
	}
	if converter.EngineSettings().OutputDir != "/tmp/conv" {
		t.Fatalf("output dir = %q", converter.EngineSettings().OutputDir)
	}
	if !converter.EngineSettings().SegmentMetadataEnabled() {
		t.Fatalf("explicit add_segment_metadata must win over the converter default")
	}
}
