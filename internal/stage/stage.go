package stage

import (
	"context"

	"timbre/internal/payload"
)

// Category partitions components into the fixed pipeline phases.
type Category string

const (
	CategoryPreprocessing     Category = "preprocessing"
	CategoryFeatureExtraction Category = "feature_extraction"
	CategoryClassification    Category = "classification"
)

// Categories lists the phases in their fixed execution order.
func Categories() []Category {
	return []Category{CategoryPreprocessing, CategoryFeatureExtraction, CategoryClassification}
}

// Component is one configurable processing unit. Process returns a new
// payload reflecting this component's effect; the input payload's identity
// is never reused as the return value's contract.
type Component interface {
	Type() string
	Name() string
	Process(ctx context.Context, in *payload.Payload) (*payload.Payload, error)
}
