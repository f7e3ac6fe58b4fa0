package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"timbre/internal/frame"
	"timbre/internal/payload"
)

// Snapshot points at the two files one saved payload occupies: the metadata
// sidecar and the table itself.
type Snapshot struct {
	MetadataPath string
	FramePath    string
}

const (
	// fixed width so lexical order equals chronological order
	snapshotTimeLayout = "20060102150405.000000000"
	tagIntermediate    = "intermediate"
	tagFinal           = "final"
)

func snapshotTag(intermediate bool) string {
	if intermediate {
		return tagIntermediate
	}
	return tagFinal
}

// SaveSnapshot persists a payload under dir as a metadata JSON plus a frame
// CSV. File names embed the component identity, the intermediate/final tag,
// and a UTC timestamp so successive saves never clobber each other.
func SaveSnapshot(dir, componentType, componentName string, p *payload.Payload, intermediate bool) (Snapshot, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Snapshot{}, fmt.Errorf("create snapshot dir: %w", err)
	}
	tag := snapshotTag(intermediate)
	stamp := time.Now().UTC().Format(snapshotTimeLayout)
	prefix := fmt.Sprintf("%s_%s_%s", componentType, componentName, tag)

	snapshot := Snapshot{
		MetadataPath: filepath.Join(dir, fmt.Sprintf("%s_metadata_%s.json", prefix, stamp)),
		FramePath:    filepath.Join(dir, fmt.Sprintf("%s_df_%s.csv", prefix, stamp)),
	}

	encoded, err := json.MarshalIndent(p.Metadata, "", "  ")
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode snapshot metadata: %w", err)
	}
	if err := os.WriteFile(snapshot.MetadataPath, encoded, 0o644); err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot metadata: %w", err)
	}

	f, err := os.Create(snapshot.FramePath)
	if err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot frame: %w", err)
	}
	defer f.Close()
	if err := p.Frame.WriteCSV(f); err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot frame: %w", err)
	}
	return snapshot, f.Close()
}

// LoadSnapshot restores a payload from its two snapshot files. Columns
// introduced by external tabular tooling are stripped on the way in.
func LoadSnapshot(snapshot Snapshot) (*payload.Payload, error) {
	encoded, err := os.ReadFile(snapshot.MetadataPath)
	if err != nil {
		return nil, fmt.Errorf("read snapshot metadata: %w", err)
	}
	var md payload.Metadata
	if err := json.Unmarshal(encoded, &md); err != nil {
		return nil, fmt.Errorf("decode snapshot metadata: %w", err)
	}

	f, err := os.Open(snapshot.FramePath)
	if err != nil {
		return nil, fmt.Errorf("read snapshot frame: %w", err)
	}
	defer f.Close()
	table, err := frame.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot frame: %w", err)
	}

	p, err := payload.New("", md, table)
	if err != nil {
		return nil, err
	}
	p.DropIndexArtifacts()
	return p, nil
}

// LoadFrame restores just a table from a CSV written by SaveSnapshot (or by
// anything else that follows the same shape).
func LoadFrame(path string) (*frame.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read frame %s: %w", path, err)
	}
	defer f.Close()
	table, err := frame.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", path, err)
	}
	return table, nil
}

// LatestFinal finds the newest final snapshot a component wrote under dir.
// The timestamp format sorts lexicographically, so the last matching pair
// wins. The second return is false when no complete pair exists.
func LatestFinal(dir, componentType, componentName string) (Snapshot, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("scan snapshot dir: %w", err)
	}

	prefix := fmt.Sprintf("%s_%s_%s_", componentType, componentName, tagFinal)
	metadataByStamp := make(map[string]string)
	frameByStamp := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := name[len(prefix):]
		switch {
		case strings.HasPrefix(rest, "metadata_") && strings.HasSuffix(rest, ".json"):
			stamp := strings.TrimSuffix(strings.TrimPrefix(rest, "metadata_"), ".json")
			metadataByStamp[stamp] = filepath.Join(dir, name)
		case strings.HasPrefix(rest, "df_") && strings.HasSuffix(rest, ".csv"):
			stamp := strings.TrimSuffix(strings.TrimPrefix(rest, "df_"), ".csv")
			frameByStamp[stamp] = filepath.Join(dir, name)
		}
	}

	var stamps []string
	for stamp := range metadataByStamp {
		if _, ok := frameByStamp[stamp]; ok {
			stamps = append(stamps, stamp)
		}
	}
	if len(stamps) == 0 {
		return Snapshot{}, false, nil
	}
	sort.Strings(stamps)
	latest := stamps[len(stamps)-1]
	return Snapshot{MetadataPath: metadataByStamp[latest], FramePath: frameByStamp[latest]}, true, nil
}
