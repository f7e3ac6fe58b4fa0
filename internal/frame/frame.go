package frame

import (
	"fmt"
)

// Row maps column names to values. A nil value is a null cell.
type Row map[string]any

// Frame is an ordered-column table of nullable values.
type Frame struct {
	cols []string
	seen map[string]int
	rows []Row
}

// New returns an empty frame with no columns.
func New() *Frame {
	return &Frame{seen: make(map[string]int)}
}

// WithColumns returns an empty frame with the given column order.
func WithColumns(cols ...string) *Frame {
	f := New()
	for _, col := range cols {
		f.AddColumn(col)
	}
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.rows)
}

// Columns returns a copy of the column order.
func (f *Frame) Columns() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.cols))
	copy(out, f.cols)
	return out
}

// HasColumn reports whether the named column exists.
func (f *Frame) HasColumn(name string) bool {
	if f == nil {
		return false
	}
	_, ok := f.seen[name]
	return ok
}

// AddColumn appends a column if absent. Existing rows read as null in it.
func (f *Frame) AddColumn(name string) {
	if _, ok := f.seen[name]; ok {
		return
	}
	f.seen[name] = len(f.cols)
	f.cols = append(f.cols, name)
}

// EnsureColumns adds every named column that is missing.
func (f *Frame) EnsureColumns(names ...string) {
	for _, name := range names {
		f.AddColumn(name)
	}
}

// AppendRow appends one row; keys not yet present become new columns.
func (f *Frame) AppendRow(row Row) {
	stored := make(Row, len(row))
	for key, value := range row {
		f.AddColumn(key)
		stored[key] = value
	}
	f.rows = append(f.rows, stored)
}

// Append concatenates other's rows onto f, unioning columns.
func (f *Frame) Append(other *Frame) {
	if other == nil {
		return
	}
	for _, col := range other.cols {
		f.AddColumn(col)
	}
	for _, row := range other.rows {
		f.AppendRow(row)
	}
}

// Value returns the cell at row i, column col (nil when null or absent).
func (f *Frame) Value(i int, col string) any {
	if f == nil || i < 0 || i >= len(f.rows) {
		return nil
	}
	return f.rows[i][col]
}

// SetValue writes a cell, adding the column if needed.
func (f *Frame) SetValue(i int, col string, value any) {
	if i < 0 || i >= len(f.rows) {
		return
	}
	f.AddColumn(col)
	f.rows[i][col] = value
}

// Column returns all values of one column in row order.
func (f *Frame) Column(name string) []any {
	if f == nil {
		return nil
	}
	out := make([]any, len(f.rows))
	for i, row := range f.rows {
		out[i] = row[name]
	}
	return out
}

// Strings returns the column's non-null values rendered as strings, in row
// order. Null cells are skipped, mirroring a dropna on the column.
func (f *Frame) Strings(name string) []string {
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.rows))
	for _, row := range f.rows {
		value := row[name]
		if value == nil {
			continue
		}
		out = append(out, fmt.Sprint(value))
	}
	return out
}

// Select returns a new frame restricted to the requested columns, in request
// order, silently dropping names that do not exist (defensive intersection).
// Duplicate requests keep the first occurrence.
func (f *Frame) Select(cols ...string) *Frame {
	out := New()
	if f == nil {
		return out
	}
	picked := make([]string, 0, len(cols))
	dedup := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		if _, ok := f.seen[col]; !ok {
			continue
		}
		if _, dup := dedup[col]; dup {
			continue
		}
		dedup[col] = struct{}{}
		picked = append(picked, col)
		out.AddColumn(col)
	}
	for _, row := range f.rows {
		selected := make(Row, len(picked))
		for _, col := range picked {
			if value, ok := row[col]; ok {
				selected[col] = value
			}
		}
		out.rows = append(out.rows, selected)
	}
	return out
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := New()
	if f == nil {
		return out
	}
	for _, col := range f.cols {
		out.AddColumn(col)
	}
	out.rows = make([]Row, 0, len(f.rows))
	for _, row := range f.rows {
		copied := make(Row, len(row))
		for key, value := range row {
			copied[key] = value
		}
		out.rows = append(out.rows, copied)
	}
	return out
}

// DropColumnsFunc removes every column for which pred returns true.
func (f *Frame) DropColumnsFunc(pred func(string) bool) {
	if f == nil {
		return
	}
	kept := make([]string, 0, len(f.cols))
	for _, col := range f.cols {
		if pred(col) {
			for _, row := range f.rows {
				delete(row, col)
			}
			continue
		}
		kept = append(kept, col)
	}
	f.cols = kept
	f.seen = make(map[string]int, len(kept))
	for i, col := range kept {
		f.seen[col] = i
	}
}

// OuterJoin performs a full outer join of f (left) and right on key.
//
// Output rows appear in left order; each right-side match produces its own
// output row (fan-out), a left row without matches survives with nulls, and
// unmatched right rows are appended afterward in right order. Rows whose key
// is null never match. When both sides carry a non-key column, a non-null
// right value wins.
func (f *Frame) OuterJoin(right *Frame, key string) *Frame {
	out := New()
	if f != nil {
		for _, col := range f.cols {
			out.AddColumn(col)
		}
	}
	out.AddColumn(key)
	if right != nil {
		for _, col := range right.cols {
			out.AddColumn(col)
		}
	}

	matches := make(map[string][]int)
	if right != nil {
		for i, row := range right.rows {
			value := row[key]
			if value == nil {
				continue
			}
			k := fmt.Sprint(value)
			matches[k] = append(matches[k], i)
		}
	}

	consumed := make(map[int]struct{})
	if f != nil {
		for _, leftRow := range f.rows {
			value := leftRow[key]
			var indices []int
			if value != nil {
				indices = matches[fmt.Sprint(value)]
			}
			if len(indices) == 0 {
				out.AppendRow(leftRow)
				continue
			}
			for _, ri := range indices {
				consumed[ri] = struct{}{}
				merged := make(Row, len(leftRow)+len(right.rows[ri]))
				for k, v := range leftRow {
					merged[k] = v
				}
				for k, v := range right.rows[ri] {
					if v == nil {
						if _, exists := merged[k]; exists {
							continue
						}
					}
					merged[k] = v
				}
				out.AppendRow(merged)
			}
		}
	}
	if right != nil {
		for i, row := range right.rows {
			if _, ok := consumed[i]; ok {
				continue
			}
			out.AppendRow(row)
		}
	}
	return out
}
