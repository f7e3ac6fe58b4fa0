package payload

import (
	"errors"
	"reflect"
	"testing"

	"timbre/internal/frame"
)

func TestNewRequiresReference(t *testing.T) {
	if _, err := New("", Metadata{}, nil); !errors.Is(err, ErrNoReference) {
		t.Fatalf("err = %v", err)
	}
	if _, err := New("/data", Metadata{}, nil); err != nil {
		t.Fatalf("input path alone should suffice: %v", err)
	}
	if _, err := New("", Metadata{PathsColumn: "file_path"}, nil); err != nil {
		t.Fatalf("paths column alone should suffice: %v", err)
	}
}

func TestNewNormalizesTaxonomy(t *testing.T) {
	p, err := New("", Metadata{PathsColumn: "file_path"}, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	md := p.Metadata
	if md.MetaColumns == nil || md.FeatureColumns == nil || md.ClassificationColumns == nil {
		t.Fatalf("taxonomy lists must be non-nil")
	}
	if !reflect.DeepEqual(md.AllPathsColumns, []string{"file_path"}) {
		t.Fatalf("all paths = %v", md.AllPathsColumns)
	}
}

func TestSetPathsColumnIsIdempotent(t *testing.T) {
	var md Metadata
	md.SetPathsColumn("file_path")
	md.SetPathsColumn("converted")
	md.SetPathsColumn("converted")

	if md.PathsColumn != "converted" {
		t.Fatalf("paths column = %q", md.PathsColumn)
	}
	if !reflect.DeepEqual(md.AllPathsColumns, []string{"file_path", "converted"}) {
		t.Fatalf("lineage = %v", md.AllPathsColumns)
	}
}

func TestDeclaredColumnsDropsMissing(t *testing.T) {
	f := frame.New()
	f.AppendRow(frame.Row{"file_path": "a.wav", "rms": 0.1})

	p, err := New("", Metadata{
		PathsColumn:    "file_path",
		FeatureColumns: []string{"rms", "never_computed"},
	}, f)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	view := p.Features(false, false)
	if got := view.Columns(); !reflect.DeepEqual(got, []string{"file_path", "rms"}) {
		t.Fatalf("columns = %v", got)
	}
}

func TestFullCombinesRoles(t *testing.T) {
	f := frame.New()
	f.AppendRow(frame.Row{
		"file_path": "a.wav",
		"segments":  "a_0.wav",
		"start":     0.0,
		"rms":       0.1,
		"label":     "voice",
	})

	p, err := New("", Metadata{
		PathsColumn:           "segments",
		AllPathsColumns:       []string{"file_path", "segments"},
		MetaColumns:           []string{"start"},
		FeatureColumns:        []string{"rms"},
		ClassificationColumns: []string{"label"},
	}, f)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	got := p.Full(true, true).Columns()
	want := []string{"file_path", "segments", "start", "rms", "label"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}

	active := p.Full(false, false).Columns()
	if !reflect.DeepEqual(active, []string{"segments", "rms", "label"}) {
		t.Fatalf("active columns = %v", active)
	}
}

func TestDropIndexArtifacts(t *testing.T) {
	f := frame.New()
	f.AppendRow(frame.Row{"file_path": "a.wav", "Unnamed: 0": 0.0, "": "junk"})

	p, err := New("", Metadata{PathsColumn: "file_path"}, f)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p.DropIndexArtifacts()

	if got := p.Frame.Columns(); !reflect.DeepEqual(got, []string{"file_path"}) {
		t.Fatalf("columns = %v", got)
	}
}
