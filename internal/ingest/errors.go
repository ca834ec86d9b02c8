package ingest

import "fmt"

// Pipeline stages, as reported by ArchiveFormatError.
const (
	StageUnzip    = "unzip"
	StageMetadata = "metadata"
	StageLocate   = "locate backup"
	StageHeader   = "backup header"
	StageRestore  = "restore"
)

// ArchiveFormatError reports a package that cannot be ingested: a malformed
// comment, a missing backup, or a restore the store rejected.
type ArchiveFormatError struct {
	Stage  string
	Reason string
	Err    error
}

func (e *ArchiveFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("package %s: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("package %s: %s", e.Stage, e.Reason)
}

func (e *ArchiveFormatError) Unwrap() error { return e.Err }

func archiveError(stage, reason string, err error) error {
	return &ArchiveFormatError{Stage: stage, Reason: reason, Err: err}
}
