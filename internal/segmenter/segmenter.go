package segmenter

import (
	"path/filepath"
	"strings"
	"time"

	"timbre/internal/fileutil"
	"timbre/internal/frame"
	"timbre/internal/payload"
	"timbre/internal/stage"
)

// Base extends stage.Base with segmentation column provisioning and
// resume-against-existing-output support.
type Base struct {
	stage.Base

	classificationColumn string
	segmentStartColumn   string
	segmentStopColumn    string
	perfColumn           string
}

// New wraps a stage base into a segmenter base.
func New(base stage.Base) Base {
	return Base{Base: base}
}

// ProcessedPathColumn names the paths column this stage introduces.
func (b *Base) ProcessedPathColumn() string {
	return b.Name() + "_processed_path"
}

// DeclareClassificationColumn registers a label column (e.g. a diarization
// speaker label) to be added to the taxonomy during EnhanceMetadata.
func (b *Base) DeclareClassificationColumn(column string) {
	b.classificationColumn = column
}

// SegmentColumns returns the start/stop meta column names, empty until
// EnhanceMetadata runs with segment metadata enabled.
func (b *Base) SegmentColumns() (start, stop string) {
	return b.segmentStartColumn, b.segmentStopColumn
}

// PerformanceColumn returns the timing meta column name, empty unless
// performance measurement is enabled.
func (b *Base) PerformanceColumn() string {
	return b.perfColumn
}

// EnhanceMetadata provisions this stage's columns: the new paths column
// becomes active (the old one is retired into the lineage list), segment
// bounds and timing meta columns are declared when enabled, and the
// classification column is declared when the concrete stage set one.
func (b *Base) EnhanceMetadata(md *payload.Metadata) {
	settings := b.EngineSettings()

	b.segmentStartColumn, b.segmentStopColumn = "", ""
	if settings.SegmentMetadataEnabled() {
		b.segmentStartColumn = b.Name() + "_segment_start"
		b.segmentStopColumn = b.Name() + "_segment_stop"
		md.AddMetaColumns(b.segmentStartColumn, b.segmentStopColumn)
	}

	b.perfColumn = ""
	if settings.PerformanceMeasurement {
		b.perfColumn = "perf_" + b.Name()
		md.AddMetaColumns(b.perfColumn)
	}

	md.SetPathsColumn(b.ProcessedPathColumn())

	if b.classificationColumn != "" {
		md.AddClassificationColumns(b.classificationColumn)
	}
}

// AddSegmentBounds writes the segment interval into a row when segment
// metadata is enabled.
func (b *Base) AddSegmentBounds(row frame.Row, start, stop float64) {
	if b.segmentStartColumn == "" {
		return
	}
	row[b.segmentStartColumn] = start
	row[b.segmentStopColumn] = stop
}

// AddPerformance writes the per-item processing time into a row when
// performance measurement is enabled.
func (b *Base) AddPerformance(row frame.Row, elapsed time.Duration) {
	if b.perfColumn == "" {
		return
	}
	row[b.perfColumn] = elapsed.Seconds()
}

// PartitionResume splits the requested inputs into rows synthesized from
// existing output files and inputs still to process. With overwrite set,
// everything is reprocessed. The returned frame always carries the
// processed-path and input columns so a later join cannot fail on shape.
func (b *Base) PartitionResume(paths []string, inputColumn, outputDir string) (*frame.Frame, []string, error) {
	processed := frame.WithColumns(b.ProcessedPathColumn(), inputColumn)
	settings := b.EngineSettings()
	if settings.Overwrite {
		return processed, paths, nil
	}

	existing, err := fileutil.ListAudioFiles(outputDir)
	if err != nil {
		return nil, nil, stage.Wrap(stage.ErrExternalTool, b.Subject(), "scan output dir", "", err)
	}

	separator := settings.Separator()
	bySegmentBase := make(map[string][]string)
	byExactStem := make(map[string]string)
	for _, path := range existing {
		stem := outputStem(path)
		byExactStem[stem] = path
		tokens := strings.Split(stem, separator)
		if len(tokens) < 2 {
			// stem does not round-trip through the naming convention
			continue
		}
		short := strings.Join(tokens[:len(tokens)-1], separator)
		bySegmentBase[short] = append(bySegmentBase[short], path)
	}

	var todo []string
	column := b.ProcessedPathColumn()
	for _, input := range paths {
		stem := inputStem(input)
		if segments, ok := bySegmentBase[stem]; ok {
			for _, segment := range segments {
				processed.AppendRow(frame.Row{column: segment, inputColumn: input})
			}
			continue
		}
		if match, ok := byExactStem[stem]; ok {
			processed.AppendRow(frame.Row{column: match, inputColumn: input})
			continue
		}
		todo = append(todo, input)
	}
	return processed, todo, nil
}

// outputStem strips the last extension: "a_0.wav" -> "a_0".
func outputStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// inputStem strips everything from the first dot: "a.tar.wav" -> "a",
// matching how segment outputs were named from this input.
func inputStem(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}
