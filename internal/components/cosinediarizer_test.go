package components

import (
	"context"
	"errors"
	"testing"

	"timbre/internal/frame"
	"timbre/internal/payload"
	"timbre/internal/stage"
)

func diarizerPayload(t *testing.T, rows []frame.Row) *payload.Payload {
	t.Helper()
	f := frame.WithColumns("file_path", "f1", "f2")
	for _, row := range rows {
		f.AppendRow(row)
	}
	p, err := payload.New("", payload.Metadata{
		PathsColumn:    "file_path",
		FeatureColumns: []string{"f1", "f2"},
	}, f)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	return p
}

func TestCosineDiarizerGroupsSimilarRows(t *testing.T) {
	component, err := NewCosineDiarizer(nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	in := diarizerPayload(t, []frame.Row{
		{"file_path": "a.wav", "f1": 1.0, "f2": 0.0},
		{"file_path": "b.wav", "f1": 0.99, "f2": 0.01},
		{"file_path": "c.wav", "f1": 0.0, "f2": 1.0},
		{"file_path": "d.wav", "f1": 0.01, "f2": 0.98},
	})
	out, err := component.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	labelAt := func(i int) any { return out.Frame.Value(i, cosineDiarizerColumn) }
	if labelAt(0) != "SPEAKER_00" || labelAt(1) != "SPEAKER_00" {
		t.Fatalf("first group = %v, %v", labelAt(0), labelAt(1))
	}
	if labelAt(2) != "SPEAKER_01" || labelAt(3) != "SPEAKER_01" {
		t.Fatalf("second group = %v, %v", labelAt(2), labelAt(3))
	}
	if len(out.Metadata.ClassificationColumns) != 1 {
		t.Fatalf("classification columns = %v", out.Metadata.ClassificationColumns)
	}
}

func TestCosineDiarizerSkipsIncompleteRows(t *testing.T) {
	component, err := NewCosineDiarizer(nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	in := diarizerPayload(t, []frame.Row{
		{"file_path": "a.wav", "f1": 1.0, "f2": 0.0},
		{"file_path": "b.wav", "f1": nil, "f2": 0.5},
	})
	out, err := component.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Frame.Value(1, cosineDiarizerColumn) != nil {
		t.Fatalf("incomplete row must keep a null label, got %v",
			out.Frame.Value(1, cosineDiarizerColumn))
	}
}

func TestCosineDiarizerHonorsMaxSpeakers(t *testing.T) {
	cfg := mustParseConfig(t, `
[classification.cosine_diarizer]
max_speakers = 1
`)
	component, err := NewCosineDiarizer(cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	in := diarizerPayload(t, []frame.Row{
		{"file_path": "a.wav", "f1": 1.0, "f2": 0.0},
		{"file_path": "b.wav", "f1": 0.0, "f2": 1.0},
	})
	out, err := component.Process(context.Background(), in)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Frame.Value(1, cosineDiarizerColumn) != "SPEAKER_00" {
		t.Fatalf("cap must force reuse of the existing group, got %v",
			out.Frame.Value(1, cosineDiarizerColumn))
	}
}

func TestCosineDiarizerRequiresFeatures(t *testing.T) {
	component, err := NewCosineDiarizer(nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p, err := payload.New("", payload.Metadata{PathsColumn: "file_path"}, nil)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if _, err := component.Process(context.Background(), p); !errors.Is(err, stage.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}
