// Package frame implements the small tabular dataset threaded between
// pipeline components.
//
// A Frame is an ordered set of named columns over rows of nullable values
// (nil marks a null). It deliberately supports only the operations the
// pipeline engine needs: row append with column union, defensive column
// selection, a schema-aware full outer join keyed on a single column, and
// CSV round-tripping for payload snapshots.
//
// Join semantics follow the engine's null-preserving contract: a left row
// without a match survives with nulls in the right-hand columns, and a
// right row may fan one left row out into several output rows.
package frame
