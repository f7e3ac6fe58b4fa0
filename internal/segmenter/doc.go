// Package segmenter is the base for components that split one input row
// into zero or more output rows, each backed by a cut audio file.
//
// It owns two engine responsibilities. Column provisioning: a segmenting
// stage introduces a new paths column and retires the previous one, and may
// declare segment-bound meta columns, a performance meta column, and a
// classification column. Idempotent resume: before reprocessing, the
// configured output directory is scanned and existing segment files are
// mapped back to their source inputs by inverting the segment-naming
// convention; inputs fully covered by existing files are synthesized into
// rows instead of being recomputed.
//
// The naming inverse takes all separator-delimited stem tokens but the
// last. A stem that fails to round-trip is treated as unprocessed, so the
// safe failure mode is recomputation, never a silent skip. Source names
// that themselves contain the separator can shadow each other; that
// fragility is inherent to the convention and intentionally not patched
// at this layer.
package segmenter
