// Package pipeline folds a payload through an ordered list of components
// and composes those lists from configuration.
//
// A Pipeline owns the components of one category and threads a single
// payload through them in order, recording stage outcomes and persisting
// snapshots for components that ask for them. The Composer partitions the
// flat component list from configuration into the fixed category order,
// builds each component through the registry, and runs the resulting
// pipelines back to back over one payload.
package pipeline
