package components

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"timbre/internal/payload"
	"timbre/internal/stage"
	"timbre/internal/testsupport"
)

func TestFileMapperListsDirectory(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteWAV(t, filepath.Join(dir, "b.wav"), testsupport.Silence(16000, 0.1))
	testsupport.WriteWAV(t, filepath.Join(dir, "a.wav"), testsupport.Silence(16000, 0.1))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	component, err := NewFileMapper(nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	in, err := payload.FromInput(dir)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}

	out, err := component.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	want := []string{filepath.Join(dir, "a.wav"), filepath.Join(dir, "b.wav")}
	if got := out.Frame.Strings(filePathColumn); !reflect.DeepEqual(got, want) {
		t.Fatalf("paths = %v", got)
	}
	if out.Metadata.PathsColumn != filePathColumn {
		t.Fatalf("paths column = %q", out.Metadata.PathsColumn)
	}
}

func TestFileMapperRecursive(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteWAV(t, filepath.Join(dir, "top.wav"), testsupport.Silence(16000, 0.1))
	testsupport.WriteWAV(t, filepath.Join(dir, "nested", "deep.wav"), testsupport.Silence(16000, 0.1))

	cfg := mustParseConfig(t, `
[preprocessing.file_mapper]
recursive = true
`)
	component, err := NewFileMapper(cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	in, err := payload.FromInput(dir)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}

	out, err := component.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Frame.Len() != 2 {
		t.Fatalf("rows = %d", out.Frame.Len())
	}
}

func TestFileMapperSingleFileInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solo.wav")
	testsupport.WriteWAV(t, path, testsupport.Silence(16000, 0.1))

	component, err := NewFileMapper(nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	in, err := payload.FromInput(path)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}

	out, err := component.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if got := out.Frame.Strings(filePathColumn); !reflect.DeepEqual(got, []string{path}) {
		t.Fatalf("paths = %v", got)
	}
}

func TestFileMapperRejectsNonAudioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hi"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	component, err := NewFileMapper(nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	in, err := payload.FromInput(path)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if _, err := component.Process(context.Background(), in); !errors.Is(err, stage.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}
