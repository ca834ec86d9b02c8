package export

import (
	"encoding/csv"
	"os"

	"github.com/sells-group/hazus-cli/internal/frame"
)

// ToCSV writes f with a header row. Nulls are written as empty fields.
func (e *Exporter) ToCSV(f *frame.Frame, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return ioError(path, "create", err)
	}
	defer out.Close() //nolint:errcheck

	w := csv.NewWriter(out)
	if err := w.Write(f.Columns); err != nil {
		return ioError(path, "write", err)
	}
	rec := make([]string, len(f.Columns))
	for _, r := range f.Rows {
		for j, v := range r {
			rec[j] = frame.Format(v)
		}
		if err := w.Write(rec); err != nil {
			return ioError(path, "write", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return ioError(path, "write", err)
	}
	return nil
}
