package export

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/klauspost/compress/zip"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/spatial"
)

// Sibling extensions bundled into a vector archive when present.
var archiveExtensions = []string{".shp", ".shx", ".dbf", ".prj", ".cpg", ".sbn", ".sbx", ".shp.xml"}

const (
	maxFieldName   = 10
	maxStringField = 254
)

// ToVectorArchive writes f as a shapefile at path (a .shp name) in the target
// CRS, bundles its sibling files into <base>.zip and removes the loose files.
// It returns the archive path.
func (e *Exporter) ToVectorArchive(ctx context.Context, f *frame.Frame, path string) (string, error) {
	log := zap.L().With(zap.String("component", "export.shapefile"), zap.String("path", path))

	f, err := e.withGeometry(ctx, f)
	if err != nil {
		return "", err
	}
	feats, skipped, err := e.features(f, e.opts.TargetCRS)
	if err != nil {
		return "", err
	}
	if skipped > 0 {
		log.Warn("rows without polygon geometry left out", zap.Int("skipped", skipped))
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))
	if err := writeShapefile(base+".shp", f, feats); err != nil {
		return "", err
	}
	prj, err := spatial.PRJ(e.opts.TargetCRS)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(base+".prj", []byte(prj), 0o644); err != nil {
		return "", ioError(base+".prj", "write", err)
	}
	if err := os.WriteFile(base+".cpg", []byte("UTF-8"), 0o644); err != nil {
		return "", ioError(base+".cpg", "write", err)
	}

	archive := base + ".zip"
	if err := bundle(base, archive); err != nil {
		return "", err
	}
	log.Info("vector archive written", zap.Int("features", len(feats)))
	return archive, nil
}

func writeShapefile(path string, f *frame.Frame, feats []feature) error {
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return ioError(path, "create", err)
	}
	defer w.Close()

	cols := attributes(f)
	fields, numeric := dbfFields(f, cols)
	if err := w.SetFields(fields); err != nil {
		return ioError(path, "set fields", err)
	}
	for _, ft := range feats {
		shape, err := spatial.ToShape(ft.geom)
		if err != nil {
			return ioError(path, "encode geometry", err)
		}
		n := int(w.Write(shape))
		for j, c := range cols {
			v := f.Value(ft.row, c)
			if frame.IsNull(v) {
				continue
			}
			var val any = frame.Format(v)
			if numeric[j] {
				x, _ := frame.ToFloat(v)
				val = x
			}
			if err := w.WriteAttribute(n, j, val); err != nil {
				return ioError(path, "write attribute "+c, err)
			}
		}
	}
	return nil
}

// dbfFields derives one attribute field per column. Columns holding only Go
// numbers become float fields; anything holding strings stays text so that
// zero-padded FIPS keys survive.
func dbfFields(f *frame.Frame, cols []string) ([]shp.Field, []bool) {
	fields := make([]shp.Field, len(cols))
	numeric := make([]bool, len(cols))
	used := map[string]bool{}
	for j, c := range cols {
		name := fieldName(c, used)
		width, isNum, seen := 1, true, false
		for i := 0; i < f.Len(); i++ {
			v := f.Value(i, c)
			if frame.IsNull(v) {
				continue
			}
			seen = true
			if _, ok := v.(string); ok {
				isNum = false
			} else if _, ok := frame.ToFloat(v); !ok {
				isNum = false
			}
			if n := len(frame.Format(v)); n > width {
				width = n
			}
		}
		if isNum && seen {
			numeric[j] = true
			fields[j] = shp.FloatField(name, 24, 6)
			continue
		}
		if width > maxStringField {
			width = maxStringField
		}
		fields[j] = shp.StringField(name, uint8(width))
	}
	return fields, numeric
}

// fieldName truncates c to the dBase limit, suffixing a counter on clashes.
func fieldName(c string, used map[string]bool) string {
	name := c
	if len(name) > maxFieldName {
		name = name[:maxFieldName]
	}
	for i := 1; used[strings.ToUpper(name)]; i++ {
		suffix := "_" + strconv.Itoa(i)
		name = c[:min(len(c), maxFieldName-len(suffix))] + suffix
	}
	used[strings.ToUpper(name)] = true
	return name
}

// bundle zips every sibling of base with an archive extension into archive
// and removes the loose files once the archive is closed.
func bundle(base, archive string) error {
	var files []string
	for _, ext := range archiveExtensions {
		if _, err := os.Stat(base + ext); err == nil {
			files = append(files, base+ext)
		}
	}
	if len(files) == 0 {
		return ioError(archive, "bundle", eris.New("no shapefile components found"))
	}

	out, err := os.Create(archive)
	if err != nil {
		return ioError(archive, "create", err)
	}
	zw := zip.NewWriter(out)
	for _, name := range files {
		if err := addToZip(zw, name); err != nil {
			_ = zw.Close()
			_ = out.Close()
			return ioError(archive, "add "+filepath.Base(name), err)
		}
	}
	if err := zw.Close(); err != nil {
		_ = out.Close()
		return ioError(archive, "close", err)
	}
	if err := out.Close(); err != nil {
		return ioError(archive, "close", err)
	}

	for _, name := range files {
		if err := os.Remove(name); err != nil {
			return ioError(name, "remove", err)
		}
	}
	return nil
}

func addToZip(zw *zip.Writer, name string) error {
	in, err := os.Open(name)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck

	w, err := zw.CreateHeader(&zip.FileHeader{Name: filepath.Base(name), Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
