package export

import (
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/hazus-cli/internal/frame"
)

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

// ToXLSX writes f's attribute columns to a single sheet with a header row.
// Geometry is left out; WKT routinely exceeds the cell size limit.
func (e *Exporter) ToXLSX(f *frame.Frame, sheetName, path string) error {
	if sheetName == "" {
		sheetName = "results"
	}
	if len(sheetName) > maxSheetName {
		sheetName = sheetName[:maxSheetName]
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return ioError(path, "add sheet", err)
	}

	cols := attributes(f)
	header := sheet.AddRow()
	for _, c := range cols {
		header.AddCell().SetString(c)
	}
	idx := make([]int, len(cols))
	for j, c := range cols {
		idx[j] = f.Index(c)
	}
	for _, r := range f.Rows {
		row := sheet.AddRow()
		for _, j := range idx {
			cell := row.AddCell()
			switch v := r[j].(type) {
			case nil:
			case string:
				cell.SetString(v)
			default:
				if x, ok := frame.ToFloat(v); ok {
					cell.SetFloat(x)
				} else {
					cell.SetString(frame.Format(v))
				}
			}
		}
	}

	if err := file.Save(path); err != nil {
		return ioError(path, "save", err)
	}
	return nil
}
