// Package ingest unpacks Hazus study-region packages (.hpr archives),
// restores their embedded database backup into the store, and tears the
// restored copy down afterwards.
package ingest

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/hazus-cli/internal/db"
	"github.com/sells-group/hazus-cli/internal/frame"
	"github.com/sells-group/hazus-cli/internal/region"
)

// serverDatabase is where RESTORE statements run.
const serverDatabase = "master"

// Options configures a Pipeline.
type Options struct {
	TempDir   string // parent of per-package work directories
	KeepFiles bool   // leave extracted files behind on teardown
}

// Pipeline ingests packages into one store. Each package gets its own work
// directory and database name, so distinct packages may be ingested
// concurrently.
type Pipeline struct {
	connector db.Connector
	opts      Options
}

// New creates a pipeline restoring into the store behind connector.
func New(connector db.Connector, opts Options) *Pipeline {
	if opts.TempDir == "" {
		opts.TempDir = filepath.Join(os.TempDir(), "hazus-ingest")
	}
	return &Pipeline{connector: connector, opts: opts}
}

// BackupFile is one storage file listed in a backup header.
type BackupFile struct {
	LogicalName string
	Type        string // D for data, L for log
}

// Package tracks one archive through the pipeline.
type Package struct {
	Path       string
	WorkDir    string
	Comment    string
	Files      []string
	Meta       *Metadata
	BackupPath string
	Backup     []BackupFile
	Database   string // set once restored
}

// Unzip extracts the archive into a fresh work directory and captures its
// comment.
func (p *Pipeline) Unzip(path string) (*Package, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, archiveError(StageUnzip, "open archive", err)
	}
	defer r.Close() //nolint:errcheck

	pkg := &Package{
		Path:    path,
		WorkDir: filepath.Join(p.opts.TempDir, uuid.NewString()),
		Comment: r.Comment,
	}
	if err := os.MkdirAll(pkg.WorkDir, 0o755); err != nil {
		return nil, archiveError(StageUnzip, "create work directory", err)
	}
	for _, f := range r.File {
		dest, err := extractEntry(f, pkg.WorkDir)
		if err != nil {
			_ = os.RemoveAll(pkg.WorkDir)
			return nil, archiveError(StageUnzip, "extract "+f.Name, err)
		}
		if dest != "" {
			pkg.Files = append(pkg.Files, dest)
		}
	}
	return pkg, nil
}

// extractEntry writes one entry under destDir and returns its path, or ""
// for directories.
func extractEntry(f *zip.File, destDir string) (string, error) {
	destPath := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("ingest: illegal path %q (zip slip attempt)", f.Name)
	}
	if f.FileInfo().IsDir() {
		return "", os.MkdirAll(destPath, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", eris.Wrap(err, "ingest: create parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrap(err, "ingest: open entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return "", eris.Wrap(err, "ingest: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return "", eris.Wrap(err, "ingest: write file")
	}
	return destPath, nil
}

// DecodeMetadata parses the package comment.
func (p *Pipeline) DecodeMetadata(pkg *Package) error {
	m, err := DecodeMetadata(pkg.Comment)
	if err != nil {
		return err
	}
	pkg.Meta = m
	return nil
}

// LocateBackup finds the backup named in the comment within the extracted
// tree, matching the file name case-insensitively.
func (p *Pipeline) LocateBackup(pkg *Package) error {
	if pkg.Meta == nil {
		return archiveError(StageLocate, "metadata not decoded", nil)
	}
	want := pkg.Meta.BackupFile
	err := filepath.WalkDir(pkg.WorkDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(d.Name(), want) {
			pkg.BackupPath = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return archiveError(StageLocate, "walk "+pkg.WorkDir, err)
	}
	if pkg.BackupPath == "" {
		return archiveError(StageLocate, "backup "+want+" not found in archive", nil)
	}
	return nil
}

// ReadBackupHeader lists the logical data and log files inside the backup.
func (p *Pipeline) ReadBackupHeader(ctx context.Context, pkg *Package) error {
	if pkg.BackupPath == "" {
		return archiveError(StageHeader, "backup not located", nil)
	}
	conn, err := p.server(ctx)
	if err != nil {
		return archiveError(StageHeader, "connect", err)
	}
	defer func() { _ = conn.Close() }()

	f, err := conn.Query(ctx, "RESTORE FILELISTONLY FROM DISK = N"+conn.Dialect().Literal(pkg.BackupPath))
	if err != nil {
		return archiveError(StageHeader, "read file list", err)
	}
	pkg.Backup = nil
	for i := 0; i < f.Len(); i++ {
		pkg.Backup = append(pkg.Backup, BackupFile{
			LogicalName: f.String(i, "LogicalName"),
			Type:        strings.ToUpper(strings.TrimSpace(frame.Format(f.Value(i, "Type")))),
		})
	}
	if len(pkg.Backup) == 0 {
		return archiveError(StageHeader, "backup lists no files", nil)
	}
	return nil
}

// Restore restores the backup as bk_<backup name>, relocating its data and
// log files into the package work directory.
func (p *Pipeline) Restore(ctx context.Context, pkg *Package) error {
	if pkg.Meta == nil || len(pkg.Backup) == 0 {
		return archiveError(StageRestore, "backup header not read", nil)
	}
	conn, err := p.server(ctx)
	if err != nil {
		return archiveError(StageRestore, "connect", err)
	}
	defer func() { _ = conn.Close() }()

	d := conn.Dialect()
	name := pkg.Meta.Database()
	moves := make([]string, 0, len(pkg.Backup))
	data := 0
	for _, bf := range pkg.Backup {
		var ext string
		switch {
		case bf.Type == "L":
			ext = ".ldf"
		case data == 0:
			ext = ".mdf"
			data++
		default:
			ext = ".ndf"
			data++
		}
		target := filepath.Join(pkg.WorkDir, bf.LogicalName+ext)
		moves = append(moves, "MOVE N"+d.Literal(bf.LogicalName)+" TO N"+d.Literal(target))
	}
	stmt := "RESTORE DATABASE " + d.Quote(name) +
		" FROM DISK = N" + d.Literal(pkg.BackupPath) +
		" WITH " + strings.Join(moves, ", ")
	if err := conn.Exec(ctx, stmt); err != nil {
		return archiveError(StageRestore, "restore "+name, err)
	}
	pkg.Database = name
	zap.L().Info("ingest: package restored",
		zap.String("database", name),
		zap.String("region", pkg.Meta.RegionName),
		zap.String("version", pkg.Meta.HazusVersion),
	)
	return nil
}

// Region opens the restored database as an ordinary study region.
func (p *Pipeline) Region(pkg *Package, opts ...region.Option) (*region.Region, error) {
	if pkg.Database == "" {
		return nil, eris.New("ingest: package has not been restored")
	}
	opts = append([]region.Option{
		region.WithDatabase(pkg.Database),
		region.WithHazards(pkg.Meta.Hazards...),
	}, opts...)
	return region.New(p.connector, pkg.Meta.RegionName, opts...), nil
}

// Teardown drops the restored database and removes the work directory.
// Both steps are attempted; the first error is returned.
func (p *Pipeline) Teardown(ctx context.Context, pkg *Package) error {
	var first error
	if pkg.Database != "" {
		if err := p.drop(ctx, pkg.Database); err != nil {
			first = err
		} else {
			pkg.Database = ""
		}
	}
	if !p.opts.KeepFiles && pkg.WorkDir != "" {
		if err := os.RemoveAll(pkg.WorkDir); err != nil && first == nil {
			first = eris.Wrapf(err, "ingest: remove %s", pkg.WorkDir)
		}
	}
	return first
}

func (p *Pipeline) drop(ctx context.Context, database string) error {
	conn, err := p.server(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	q := conn.Dialect().Quote(database)
	if err := conn.Exec(ctx, "ALTER DATABASE "+q+" SET SINGLE_USER WITH ROLLBACK IMMEDIATE"); err != nil {
		return eris.Wrapf(err, "ingest: single-user %s", database)
	}
	if err := conn.Exec(ctx, "DROP DATABASE "+q); err != nil {
		return eris.Wrapf(err, "ingest: drop %s", database)
	}
	return nil
}

func (p *Pipeline) server(ctx context.Context) (db.Conn, error) {
	if p.connector.Dialect() != db.SQLServer {
		return nil, eris.Errorf("ingest: restoring packages needs a sqlserver store, not %s", p.connector.Dialect().Name)
	}
	return p.connector.Connect(ctx, serverDatabase)
}

// Ingest runs unzip through restore. When a stage fails, whatever was
// already created is torn down before the stage error is returned.
func (p *Pipeline) Ingest(ctx context.Context, path string) (*Package, error) {
	log := zap.L().With(zap.String("component", "ingest"), zap.String("package", path))

	pkg, err := p.Unzip(path)
	if err != nil {
		return nil, err
	}
	stages := []func() error{
		func() error { return p.DecodeMetadata(pkg) },
		func() error { return p.LocateBackup(pkg) },
		func() error { return p.ReadBackupHeader(ctx, pkg) },
		func() error { return p.Restore(ctx, pkg) },
	}
	for _, stage := range stages {
		if err := stage(); err != nil {
			if terr := p.Teardown(ctx, pkg); terr != nil {
				log.Warn("teardown after failed ingest", zap.Error(terr))
			}
			return nil, err
		}
	}
	return pkg, nil
}
