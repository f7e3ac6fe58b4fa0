// Package stage defines the processing-component contract and the shared
// infrastructure every concrete component builds on: typed settings decoded
// from the config tree, component-tagged logging with latent progress
// records, the error taxonomy separating configuration mistakes from
// recoverable per-item failures, and the category registry that resolves
// component names to factories.
//
// A component receives a payload, returns a payload reflecting its effect,
// and must not assume any particular stage ran before it: required metadata
// (an active paths column, expected feature columns) is validated up front
// and reported as a configuration error when absent.
package stage
