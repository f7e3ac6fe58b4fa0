// Package runstore persists the pipeline run ledger in SQLite. Each run
// records the composed component list and its outcome; every stage
// transition lands in an append-only event table so `timbre runs` can show
// where a run spent its time and where it stopped.
package runstore
