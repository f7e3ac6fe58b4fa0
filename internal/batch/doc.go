// Package batch applies a per-item function across a list of input keys,
// accumulating the returned row fragments into one frame.
//
// This loop is where the pipeline calls into the most failure-prone code in
// the system: external tools and decoders running over arbitrary,
// possibly-corrupt media files. A failing item is logged with its identity
// and i/N position and contributes no rows; the batch continues, so one bad
// file cannot lose a multi-hour run. Successful fragments keep their input
// order. Iteration is synchronous and single-threaded: the work is IO and
// inference bound, and per-item errors must stay attributable to one file.
//
// Long batches get two recovery aids: latent progress logging every K items
// and an optional checkpoint callback every P items with the accumulated
// partial result.
package batch
