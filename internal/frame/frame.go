// Package frame holds the in-memory tables the engine passes between the
// store gateway, the aggregator, and the exporters.
package frame

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazus-cli/internal/model"
)

// GeometryColumn holds well-known text geometry once a frame has been resolved.
const GeometryColumn = "geometry"

// Frame is a column-named table whose rows are keyed by one geographic level.
// A frame with LevelNone carries no geographic key (e.g. an occupancy summary).
type Frame struct {
	Level   model.Level
	Columns []string
	Rows    [][]any

	index map[string]int
}

// New creates an empty frame with the given columns.
func New(level model.Level, columns ...string) *Frame {
	f := &Frame{Level: level, Columns: append([]string(nil), columns...)}
	f.reindex()
	return f
}

func (f *Frame) reindex() {
	f.index = make(map[string]int, len(f.Columns))
	for i, c := range f.Columns {
		if _, dup := f.index[c]; !dup {
			f.index[c] = i
		}
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Index returns the position of col, or -1.
func (f *Frame) Index(col string) int {
	if f == nil {
		return -1
	}
	if f.index == nil {
		f.reindex()
	}
	if i, ok := f.index[col]; ok {
		return i
	}
	return -1
}

// Has reports whether the frame carries col.
func (f *Frame) Has(col string) bool { return f.Index(col) >= 0 }

// HasGeometry reports whether the geometry column is present.
func (f *Frame) HasGeometry() bool { return f.Has(GeometryColumn) }

// Append adds a row. The row must have one value per column.
func (f *Frame) Append(row ...any) error {
	if len(row) != len(f.Columns) {
		return eris.Errorf("frame: row has %d values, want %d", len(row), len(f.Columns))
	}
	f.Rows = append(f.Rows, row)
	return nil
}

// Value returns the value at row i in col, or nil when col is absent.
func (f *Frame) Value(i int, col string) any {
	j := f.Index(col)
	if j < 0 || i < 0 || i >= len(f.Rows) {
		return nil
	}
	return f.Rows[i][j]
}

// String returns the value at row i in col formatted as text ("" for null).
func (f *Frame) String(i int, col string) string {
	return Format(f.Value(i, col))
}

// Float returns the numeric value at row i in col.
func (f *Frame) Float(i int, col string) (float64, bool) {
	return ToFloat(f.Value(i, col))
}

// Key returns the geographic identifier of row i.
func (f *Frame) Key(i int) string {
	return f.String(i, f.Level.Key())
}

// AddColumn appends a column whose values are computed from each row.
// An existing column of the same name is overwritten in place.
func (f *Frame) AddColumn(col string, fn func(i int) any) {
	j := f.Index(col)
	if j < 0 {
		f.Columns = append(f.Columns, col)
		f.index[col] = len(f.Columns) - 1
		for i := range f.Rows {
			f.Rows[i] = append(f.Rows[i], fn(i))
		}
		return
	}
	for i := range f.Rows {
		f.Rows[i][j] = fn(i)
	}
}

// Rename changes a column name. It is a no-op when from is absent and fails
// when another column is already named to.
func (f *Frame) Rename(from, to string) error {
	j := f.Index(from)
	if j < 0 || from == to {
		return nil
	}
	if f.Has(to) {
		return eris.Errorf("frame: rename %s: column %s already exists", from, to)
	}
	f.Columns[j] = to
	f.reindex()
	return nil
}

// Clone returns a deep copy of the frame's structure and row slices.
func (f *Frame) Clone() *Frame {
	out := New(f.Level, f.Columns...)
	out.Rows = make([][]any, len(f.Rows))
	for i, r := range f.Rows {
		out.Rows[i] = append([]any(nil), r...)
	}
	return out
}

// DropNull returns a copy without the rows whose col is null.
// When col is absent every row is dropped.
func (f *Frame) DropNull(col string) *Frame {
	out := New(f.Level, f.Columns...)
	j := f.Index(col)
	if j < 0 {
		return out
	}
	for _, r := range f.Rows {
		if !IsNull(r[j]) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// DropEmptyColumns returns a copy without the columns that are null in every row.
// The level key and geometry columns are always kept.
func (f *Frame) DropEmptyColumns() *Frame {
	keep := make([]int, 0, len(f.Columns))
	for j, c := range f.Columns {
		if c == f.Level.Key() || c == GeometryColumn {
			keep = append(keep, j)
			continue
		}
		for _, r := range f.Rows {
			if !IsNull(r[j]) {
				keep = append(keep, j)
				break
			}
		}
	}
	return f.project(keep)
}

// Select returns a copy with only the named columns, in the given order.
// Absent names are ignored.
func (f *Frame) Select(cols ...string) *Frame {
	keep := make([]int, 0, len(cols))
	for _, c := range cols {
		if j := f.Index(c); j >= 0 {
			keep = append(keep, j)
		}
	}
	return f.project(keep)
}

func (f *Frame) project(keep []int) *Frame {
	cols := make([]string, len(keep))
	for k, j := range keep {
		cols[k] = f.Columns[j]
	}
	out := New(f.Level, cols...)
	out.Rows = make([][]any, len(f.Rows))
	for i, r := range f.Rows {
		row := make([]any, len(keep))
		for k, j := range keep {
			row[k] = r[j]
		}
		out.Rows[i] = row
	}
	return out
}

// IsNull reports whether v is a missing value.
func IsNull(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(t)
	case float32:
		return math.IsNaN(float64(t))
	}
	return false
}

// ToFloat converts numeric values and numeric strings to float64.
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case float32:
		return float64(t), !math.IsNaN(float64(t))
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		x, err := strconv.ParseFloat(t, 64)
		return x, err == nil
	}
	return 0, false
}

// Format renders a value for text outputs. Nulls render as "".
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}
