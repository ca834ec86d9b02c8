package frame

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/hazus-cli/internal/model"
)

// OuterJoin merges frames on their shared level key, keeping every key that
// appears in any input. Rows keep first-appearance order. When two inputs
// carry the same non-key column the first one wins. Nil frames are skipped.
func OuterJoin(level model.Level, frames ...*Frame) (*Frame, error) {
	key := level.Key()
	if key == "" {
		return nil, eris.New("frame: outer join needs a geographic level")
	}

	cols := []string{key}
	seen := map[string]bool{key: true}
	type source struct {
		f    *Frame
		cols []int // frame column index per output column, -1 when not owned
	}
	var sources []source

	for _, f := range frames {
		if f == nil {
			continue
		}
		if f.Level != level || !f.Has(key) {
			return nil, eris.Errorf("frame: cannot join %s frame on %s", f.Level, level)
		}
		sources = append(sources, source{f: f})
		for _, c := range f.Columns {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}

	out := New(level, cols...)
	owner := make(map[string]int, len(cols))
	for si := range sources {
		s := &sources[si]
		s.cols = make([]int, len(cols))
		for j, c := range cols {
			s.cols[j] = -1
			if _, taken := owner[c]; taken && c != key {
				continue
			}
			if k := s.f.Index(c); k >= 0 {
				s.cols[j] = k
				if c != key {
					owner[c] = si
				}
			}
		}
	}

	rowByKey := make(map[string]int)
	for _, s := range sources {
		for _, r := range s.f.Rows {
			k := Format(r[s.f.Index(key)])
			if k == "" {
				continue
			}
			i, ok := rowByKey[k]
			if !ok {
				row := make([]any, len(cols))
				row[0] = k
				out.Rows = append(out.Rows, row)
				i = len(out.Rows) - 1
				rowByKey[k] = i
			}
			for j, src := range s.cols {
				if j == 0 || src < 0 {
					continue
				}
				// first non-null value for a key wins within the owning source
				if out.Rows[i][j] == nil {
					out.Rows[i][j] = r[src]
				}
			}
		}
	}
	return out, nil
}

// Concat stacks frames row-wise over the union of their columns.
// Missing values are null. The result keeps the first frame's level when all
// inputs share it, otherwise LevelNone.
func Concat(frames ...*Frame) *Frame {
	var cols []string
	seen := map[string]bool{}
	level := model.LevelNone
	first := true
	for _, f := range frames {
		if f == nil {
			continue
		}
		if first {
			level = f.Level
			first = false
		} else if f.Level != level {
			level = model.LevelNone
		}
		for _, c := range f.Columns {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}

	out := New(level, cols...)
	for _, f := range frames {
		if f == nil {
			continue
		}
		for _, r := range f.Rows {
			row := make([]any, len(cols))
			for j, c := range cols {
				if k := f.Index(c); k >= 0 {
					row[j] = r[k]
				}
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
