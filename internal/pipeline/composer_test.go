package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"testing"

	"timbre/internal/config"
	"timbre/internal/payload"
	"timbre/internal/stage"
)

func fakeRegistry() *stage.Registry {
	registry := stage.NewRegistry()
	register := func(category stage.Category, name string) {
		registry.Register(stage.Registration{
			Category: category,
			Name:     name,
			New: func(_ *config.Config, _ *slog.Logger) (stage.Component, error) {
				return newFake(category, name, stage.Settings{}, appendMarker(name)), nil
			},
		})
	}
	register(stage.CategoryPreprocessing, "file_mapper")
	register(stage.CategoryPreprocessing, "wav_converter")
	register(stage.CategoryFeatureExtraction, "spectral_features")
	register(stage.CategoryClassification, "band_profile")
	return registry
}

func testConfig(components ...string) *config.Config {
	cfg := config.Default()
	cfg.InputPath = "/data/audio"
	cfg.Pipeline.Components = components
	return &cfg
}

func TestComposePartitionsByCategory(t *testing.T) {
	// configured order interleaves categories; execution order must not
	cfg := testConfig("band_profile", "spectral_features", "file_mapper", "wav_converter")
	composer, err := Compose(cfg, fakeRegistry(), nil, nil)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	var categories []stage.Category
	for _, p := range composer.Pipelines() {
		categories = append(categories, p.Category())
	}
	want := []stage.Category{
		stage.CategoryPreprocessing,
		stage.CategoryFeatureExtraction,
		stage.CategoryClassification,
	}
	if !reflect.DeepEqual(categories, want) {
		t.Fatalf("categories = %v", categories)
	}

	var names []string
	for _, component := range composer.Components() {
		names = append(names, component.Name())
	}
	wantNames := []string{"file_mapper", "wav_converter", "spectral_features", "band_profile"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Fatalf("names = %v", names)
	}
}

func TestComposeSkipsEmptyCategories(t *testing.T) {
	composer, err := Compose(testConfig("file_mapper"), fakeRegistry(), nil, nil)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if len(composer.Pipelines()) != 1 {
		t.Fatalf("pipelines = %d", len(composer.Pipelines()))
	}
}

func TestComposeRejectsUnknownComponent(t *testing.T) {
	_, err := Compose(testConfig("file_mapper", "mystery"), fakeRegistry(), nil, nil)
	if !errors.Is(err, stage.ErrConfiguration) {
		t.Fatalf("err = %v", err)
	}
}

func TestComposeSurfacesProbeFailure(t *testing.T) {
	registry := fakeRegistry()
	registry.Register(stage.Registration{
		Category: stage.CategoryPreprocessing,
		Name:     "needs_tool",
		Probe:    func() error { return errors.New("tool missing") },
		New: func(_ *config.Config, _ *slog.Logger) (stage.Component, error) {
			t.Fatalf("factory must not run when the probe fails")
			return nil, nil
		},
	})

	_, err := Compose(testConfig("needs_tool"), registry, nil, nil)
	if !errors.Is(err, stage.ErrUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestComposerProcessSeedsFromInputPath(t *testing.T) {
	composer, err := Compose(testConfig("file_mapper", "spectral_features"), fakeRegistry(), nil, nil)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	out, err := composer.Process(context.Background(), nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if out.Metadata.InputPath != "/data/audio" {
		t.Fatalf("input path = %q", out.Metadata.InputPath)
	}
	if got := out.Frame.Strings("component"); !reflect.DeepEqual(got, []string{"file_mapper", "spectral_features"}) {
		t.Fatalf("fold order = %v", got)
	}
}

func TestComposerProcessWithoutInputFails(t *testing.T) {
	cfg := testConfig("file_mapper")
	cfg.InputPath = ""
	composer, err := Compose(cfg, fakeRegistry(), nil, nil)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if _, err := composer.Process(context.Background(), nil); !errors.Is(err, stage.ErrConfiguration) {
		t.Fatalf("err = %v", err)
	}
}

func TestComposerProcessAcceptsExistingPayload(t *testing.T) {
	composer, err := Compose(testConfig("band_profile"), fakeRegistry(), nil, nil)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	seed, err := payload.New("", payload.Metadata{PathsColumn: "component"}, nil)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	out, err := composer.Process(context.Background(), seed)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if got := out.Frame.Strings("component"); !reflect.DeepEqual(got, []string{"band_profile"}) {
		t.Fatalf("rows = %v", got)
	}
}
