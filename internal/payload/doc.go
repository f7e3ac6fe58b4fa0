// Package payload defines the container exchanged between pipeline
// components: a column-taxonomy metadata record plus a frame of per-file or
// per-segment rows.
//
// The metadata tracks which frame columns play which role. Exactly one paths
// column is active at a time; segmentation stages retire the previous one
// into AllPathsColumns so full lineage stays reconstructable. The taxonomy
// accessors intersect declared columns with the columns that actually exist,
// so a view never fails because an upstream stage dropped rows or columns.
package payload
