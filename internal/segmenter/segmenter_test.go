package segmenter

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"timbre/internal/payload"
	"timbre/internal/stage"
)

func newTestBase(t *testing.T, settings stage.Settings) Base {
	t.Helper()
	return New(stage.NewBase(stage.CategoryPreprocessing, "energy_vad", settings, nil))
}

func touchFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("touch %s: %v", name, err)
		}
	}
}

func TestEnhanceMetadataProvisionsColumns(t *testing.T) {
	base := newTestBase(t, stage.Settings{PerformanceMeasurement: true})

	md := payload.Metadata{PathsColumn: "file_path", AllPathsColumns: []string{"file_path"}}
	base.EnhanceMetadata(&md)

	if md.PathsColumn != "energy_vad_processed_path" {
		t.Fatalf("paths column = %q", md.PathsColumn)
	}
	if !reflect.DeepEqual(md.AllPathsColumns, []string{"file_path", "energy_vad_processed_path"}) {
		t.Fatalf("lineage = %v", md.AllPathsColumns)
	}
	want := []string{"energy_vad_segment_start", "energy_vad_segment_stop", "perf_energy_vad"}
	if !reflect.DeepEqual(md.MetaColumns, want) {
		t.Fatalf("meta columns = %v", md.MetaColumns)
	}
}

func TestEnhanceMetadataRespectsDisabledSegmentMetadata(t *testing.T) {
	disabled := false
	base := newTestBase(t, stage.Settings{AddSegmentMetadata: &disabled})

	var md payload.Metadata
	base.EnhanceMetadata(&md)

	if len(md.MetaColumns) != 0 {
		t.Fatalf("meta columns = %v", md.MetaColumns)
	}
	start, stop := base.SegmentColumns()
	if start != "" || stop != "" {
		t.Fatalf("segment columns declared: %q %q", start, stop)
	}
}

func TestPartitionResumeMatchesSegmentsAndExactStems(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "segments")
	touchFiles(t, outputDir, "a_0.wav", "a_1.wav", "b.wav")

	base := newTestBase(t, stage.Settings{})
	inputs := []string{"/in/a.wav", "/in/b.flac", "/in/c.wav"}
	processed, todo, err := base.PartitionResume(inputs, "file_path", outputDir)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}

	if !reflect.DeepEqual(todo, []string{"/in/c.wav"}) {
		t.Fatalf("todo = %v", todo)
	}
	wantSegments := []string{
		filepath.Join(outputDir, "a_0.wav"),
		filepath.Join(outputDir, "a_1.wav"),
		filepath.Join(outputDir, "b.wav"),
	}
	if got := processed.Strings("energy_vad_processed_path"); !reflect.DeepEqual(got, wantSegments) {
		t.Fatalf("processed = %v", got)
	}
	wantInputs := []string{"/in/a.wav", "/in/a.wav", "/in/b.flac"}
	if got := processed.Strings("file_path"); !reflect.DeepEqual(got, wantInputs) {
		t.Fatalf("inputs = %v", got)
	}
}

func TestPartitionResumeOverwriteReprocessesEverything(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "segments")
	touchFiles(t, outputDir, "a_0.wav")

	base := newTestBase(t, stage.Settings{Overwrite: true})
	inputs := []string{"/in/a.wav"}
	processed, todo, err := base.PartitionResume(inputs, "file_path", outputDir)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	if processed.Len() != 0 || !reflect.DeepEqual(todo, inputs) {
		t.Fatalf("processed=%d todo=%v", processed.Len(), todo)
	}
}

func TestPartitionResumeMissingDirMeansEverythingTodo(t *testing.T) {
	base := newTestBase(t, stage.Settings{})
	inputs := []string{"/in/a.wav"}
	processed, todo, err := base.PartitionResume(inputs, "file_path", filepath.Join(t.TempDir(), "never-created"))
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	if processed.Len() != 0 || !reflect.DeepEqual(todo, inputs) {
		t.Fatalf("processed=%d todo=%v", processed.Len(), todo)
	}
	// the join columns exist even when nothing was resumed
	if !processed.HasColumn("energy_vad_processed_path") || !processed.HasColumn("file_path") {
		t.Fatalf("columns = %v", processed.Columns())
	}
}

func TestPartitionResumeCustomSeparator(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "segments")
	touchFiles(t, outputDir, "a-0.wav")

	base := newTestBase(t, stage.Settings{SegmentNameSeparator: "-"})
	processed, todo, err := base.PartitionResume([]string{"/in/a.wav"}, "file_path", outputDir)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	if len(todo) != 0 {
		t.Fatalf("todo = %v", todo)
	}
	if processed.Len() != 1 {
		t.Fatalf("processed = %d", processed.Len())
	}
}
