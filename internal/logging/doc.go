// Package logging builds the slog loggers used across the pipeline.
//
// Every processing component logs through a logger tagged with a
// "component_type - component_name" subject so progress and per-item errors
// remain attributable in mixed output. Two handler formats are supported:
// a compact console format for interactive use and JSON for ingestion.
//
// The field helpers (String, Int, Error, ...) keep call sites terse and make
// the standardized keys (FieldComponent, FieldRunID, ...) hard to misspell.
package logging
