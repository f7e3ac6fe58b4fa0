package components

import (
	"context"
	"fmt"
	"log/slog"

	"timbre/internal/config"
	"timbre/internal/frame"
	"timbre/internal/logging"
	"timbre/internal/payload"
	"timbre/internal/stage"
)

// CosineDiarizerName identifies the feature-space speaker grouper.
const CosineDiarizerName = "cosine_diarizer"

// cosineDiarizerColumn is the emitted label column.
const cosineDiarizerColumn = "cosine_diarizer_classification"

// CosineDiarizerSettings configure clustering.
type CosineDiarizerSettings struct {
	stage.Settings

	// SimilarityThreshold is the minimum cosine similarity to join an
	// existing group.
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	// MaxSpeakers caps the number of groups; zero means unlimited. At the
	// cap, rows join their nearest group regardless of threshold.
	MaxSpeakers int `toml:"max_speakers"`
}

func (s CosineDiarizerSettings) similarityThreshold() float64 {
	if s.SimilarityThreshold > 0 && s.SimilarityThreshold < 1 {
		return s.SimilarityThreshold
	}
	return 0.85
}

// CosineDiarizer greedily groups rows by cosine similarity over the
// declared feature columns and labels each group as one speaker. Rows
// missing any feature value keep a null label.
type CosineDiarizer struct {
	stage.Base

	settings CosineDiarizerSettings
}

// NewCosineDiarizer builds the diarizer from configuration.
func NewCosineDiarizer(cfg *config.Config, logger *slog.Logger) (stage.Component, error) {
	var settings CosineDiarizerSettings
	if err := stage.Decode(cfg, stage.CategoryClassification, CosineDiarizerName, &settings); err != nil {
		return nil, err
	}
	return &CosineDiarizer{
		Base:     stage.NewBase(stage.CategoryClassification, CosineDiarizerName, settings.Settings, logger),
		settings: settings,
	}, nil
}

type cluster struct {
	centroid []float64
	size     int
}

func (c *cluster) absorb(vector []float64) {
	c.size++
	for i, value := range vector {
		c.centroid[i] += (value - c.centroid[i]) / float64(c.size)
	}
}

func (c *CosineDiarizer) Process(ctx context.Context, in *payload.Payload) (*payload.Payload, error) {
	md := in.Metadata.Clone()
	featureColumns := md.FeatureColumns
	if len(featureColumns) == 0 {
		return nil, stage.Wrap(stage.ErrValidation, c.Subject(), "diarize", "payload declares no feature columns", nil)
	}

	out := in.Frame.Clone()
	out.AddColumn(cosineDiarizerColumn)
	md.AddClassificationColumns(cosineDiarizerColumn)

	threshold := c.settings.similarityThreshold()
	var clusters []*cluster
	labeled := 0
	c.SetRecordsCount(out.Len())

	for i := 0; i < out.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("diarization interrupted at %d/%d: %w", i, out.Len(), err)
		}
		vector, ok := featureVector(out, i, featureColumns)
		if !ok {
			continue
		}

		best, bestSimilarity := -1, -1.0
		for idx, group := range clusters {
			if similarity := cosineSimilarity(vector, group.centroid); similarity > bestSimilarity {
				best, bestSimilarity = idx, similarity
			}
		}

		atCap := c.settings.MaxSpeakers > 0 && len(clusters) >= c.settings.MaxSpeakers
		switch {
		case best >= 0 && (bestSimilarity >= threshold || atCap):
			clusters[best].absorb(vector)
		default:
			group := &cluster{centroid: append([]float64(nil), vector...), size: 1}
			clusters = append(clusters, group)
			best = len(clusters) - 1
		}

		out.SetValue(i, cosineDiarizerColumn, fmt.Sprintf("SPEAKER_%02d", best))
		labeled++
		c.LatentInfo("grouped row", i, logging.Int("speakers", len(clusters)))
	}

	c.Logger().Info("diarization finished",
		logging.Int(logging.FieldRecords, labeled),
		logging.Int("speakers", len(clusters)))
	return payload.New("", md, out)
}

// featureVector extracts the row's feature values; false when any value is
// null or non-numeric.
func featureVector(f *frame.Frame, i int, columns []string) ([]float64, bool) {
	vector := make([]float64, 0, len(columns))
	for _, column := range columns {
		value, ok := toFloat(f.Value(i, column))
		if !ok {
			return nil, false
		}
		vector = append(vector, value)
	}
	return vector, true
}
