package payload

import (
	"errors"
	"slices"
	"strings"

	"timbre/internal/frame"
)

// indexArtifactPrefix marks columns produced by tabular tooling that carries
// positional indexes through exports; they are never part of the taxonomy.
const indexArtifactPrefix = "Unnamed"

// Role names a column taxonomy list.
type Role string

const (
	RoleFeatures        Role = "feature_columns"
	RoleClassifications Role = "classification_columns"
)

// Metadata classifies the frame's columns and records payload lineage.
type Metadata struct {
	// InputPath is set once at the root of a run; it may be empty when the
	// chain resumes from an existing table.
	InputPath string `json:"input_path"`
	// PathsColumn names the column holding the current primary join key.
	PathsColumn string `json:"paths_column"`
	// AllPathsColumns lists every column that has ever served as the paths
	// column, oldest first.
	AllPathsColumns []string `json:"all_paths_columns"`
	// MetaColumns holds auxiliary bookkeeping columns (segment bounds,
	// performance timings) that are neither features nor classifications.
	MetaColumns []string `json:"meta_columns"`
	// FeatureColumns holds numeric feature columns for downstream stages.
	FeatureColumns []string `json:"feature_columns"`
	// ClassificationColumns holds prediction output columns.
	ClassificationColumns []string `json:"classification_columns"`
}

// Clone returns a deep copy of the metadata.
func (m Metadata) Clone() Metadata {
	m.AllPathsColumns = slices.Clone(m.AllPathsColumns)
	m.MetaColumns = slices.Clone(m.MetaColumns)
	m.FeatureColumns = slices.Clone(m.FeatureColumns)
	m.ClassificationColumns = slices.Clone(m.ClassificationColumns)
	return m
}

func (m *Metadata) normalize() {
	if m.AllPathsColumns == nil {
		m.AllPathsColumns = []string{}
	}
	if m.MetaColumns == nil {
		m.MetaColumns = []string{}
	}
	if m.FeatureColumns == nil {
		m.FeatureColumns = []string{}
	}
	if m.ClassificationColumns == nil {
		m.ClassificationColumns = []string{}
	}
	if m.PathsColumn != "" && !slices.Contains(m.AllPathsColumns, m.PathsColumn) {
		m.AllPathsColumns = append(m.AllPathsColumns, m.PathsColumn)
	}
}

// SetPathsColumn makes column the active join key and retires the previous
// one into AllPathsColumns.
func (m *Metadata) SetPathsColumn(column string) {
	m.PathsColumn = column
	if column != "" && !slices.Contains(m.AllPathsColumns, column) {
		m.AllPathsColumns = append(m.AllPathsColumns, column)
	}
}

// AddMetaColumns declares additional bookkeeping columns.
func (m *Metadata) AddMetaColumns(columns ...string) {
	m.MetaColumns = append(m.MetaColumns, columns...)
}

// AddFeatureColumns declares additional feature columns.
func (m *Metadata) AddFeatureColumns(columns ...string) {
	m.FeatureColumns = append(m.FeatureColumns, columns...)
}

// AddClassificationColumns declares additional prediction columns.
func (m *Metadata) AddClassificationColumns(columns ...string) {
	m.ClassificationColumns = append(m.ClassificationColumns, columns...)
}

func (m Metadata) roleColumns(role Role) []string {
	switch role {
	case RoleFeatures:
		return m.FeatureColumns
	case RoleClassifications:
		return m.ClassificationColumns
	default:
		return nil
	}
}

// Payload is the unit of data exchanged between every component.
type Payload struct {
	Metadata Metadata
	Frame    *frame.Frame
}

// ErrNoReference signals construction without any usable data reference.
var ErrNoReference = errors.New("payload requires an input path or a paths column")

// New constructs a payload. Either inputPath or metadata.PathsColumn must be
// non-empty: with neither, no component could know what to operate on. The
// four taxonomy lists are always present afterward, and AllPathsColumns
// contains PathsColumn when set.
func New(inputPath string, metadata Metadata, f *frame.Frame) (*Payload, error) {
	if strings.TrimSpace(inputPath) != "" {
		metadata.InputPath = inputPath
	}
	if strings.TrimSpace(metadata.InputPath) == "" && strings.TrimSpace(metadata.PathsColumn) == "" {
		return nil, ErrNoReference
	}
	metadata.normalize()
	if f == nil {
		f = frame.New()
	}
	return &Payload{Metadata: metadata, Frame: f}, nil
}

// FromInput constructs the root payload of a run from an input path.
func FromInput(inputPath string) (*Payload, error) {
	return New(inputPath, Metadata{}, nil)
}

// Unpack returns the payload's metadata and frame.
func (p *Payload) Unpack() (Metadata, *frame.Frame) {
	return p.Metadata, p.Frame
}

// Columns returns the path columns (active only, or full lineage), plus the
// meta columns when requested.
func (p *Payload) Columns(allPaths, meta bool) []string {
	var columns []string
	if allPaths {
		columns = slices.Clone(p.Metadata.AllPathsColumns)
	} else if p.Metadata.PathsColumn != "" {
		columns = []string{p.Metadata.PathsColumn}
	}
	if meta {
		columns = append(columns, p.Metadata.MetaColumns...)
	}
	return columns
}

// DeclaredColumns returns a frame view of the requested taxonomy roles plus
// the path (and optionally meta) columns, intersected with the columns that
// actually exist. Missing declared columns are silently dropped.
func (p *Payload) DeclaredColumns(roles []Role, allPaths, meta bool) *frame.Frame {
	columns := p.Columns(allPaths, meta)
	for _, role := range roles {
		columns = append(columns, p.Metadata.roleColumns(role)...)
	}
	return p.Frame.Select(columns...)
}

// Features returns the declared feature columns view.
func (p *Payload) Features(allPaths, meta bool) *frame.Frame {
	return p.DeclaredColumns([]Role{RoleFeatures}, allPaths, meta)
}

// Classifications returns the declared prediction columns view.
func (p *Payload) Classifications(allPaths, meta bool) *frame.Frame {
	return p.DeclaredColumns([]Role{RoleClassifications}, allPaths, meta)
}

// Full returns features and classifications together.
func (p *Payload) Full(allPaths, meta bool) *frame.Frame {
	return p.DeclaredColumns([]Role{RoleFeatures, RoleClassifications}, allPaths, meta)
}

// DropIndexArtifacts removes columns with empty names or names carrying the
// reserved index-artifact prefix, which appear when snapshots round-trip
// through external tabular tooling.
func (p *Payload) DropIndexArtifacts() {
	p.Frame.DropColumnsFunc(func(name string) bool {
		return name == "" || strings.HasPrefix(name, indexArtifactPrefix)
	})
}
