package ingest

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/hazus-cli/internal/model"
)

// Versions maps the comment's version code to the Hazus release that wrote
// the package.
var Versions = map[string]string{
	"111111": "Hazus 2.1",
	"121212": "Hazus 3.0",
	"131313": "Hazus 3.1",
	"141414": "Hazus 3.2",
	"151515": "Hazus 4.0",
	"161616": "Hazus 4.1",
	"171717": "Hazus 4.2",
	"181818": "Hazus 4.2 SP1",
	"191919": "Hazus 4.2 SP2",
	"202020": "Hazus 4.2 SP3",
	"212121": "Hazus 5.0",
	"222222": "Hazus 5.1",
	"232323": "Hazus 6.0",
	"242424": "Hazus 6.1",
}

// flagOrder is the order of the per-hazard presence flags in the comment.
var flagOrder = []model.Hazard{
	model.HazardEarthquake,
	model.HazardFlood,
	model.HazardHurricane,
	model.HazardTsunami,
}

// Metadata is the decoded package comment.
type Metadata struct {
	Token        string
	VersionCode  string
	HazusVersion string // empty when the code is not recognised
	RegionName   string
	BackupFile   string
	Hazards      []model.Hazard
}

// Database is the name the backup is restored under.
func (m *Metadata) Database() string {
	name := m.BackupFile
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return "bk_" + name
}

// DecodeMetadata parses a package comment of 7 fields (written before
// tsunami support, so tsunami is absent) or 8 fields.
func DecodeMetadata(comment string) (*Metadata, error) {
	fields := strings.Split(strings.TrimSpace(comment), "|")
	if len(fields) != 7 && len(fields) != 8 {
		return nil, archiveError(StageMetadata, "comment must have 7 or 8 fields", nil)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	m := &Metadata{
		Token:       fields[0],
		VersionCode: fields[1],
		RegionName:  fields[2],
		BackupFile:  fields[3],
	}
	if m.RegionName == "" || m.BackupFile == "" {
		return nil, archiveError(StageMetadata, "comment has no region or backup name", nil)
	}
	if v, ok := Versions[m.VersionCode]; ok {
		m.HazusVersion = v
	} else {
		zap.L().Warn("ingest: unrecognised Hazus version code",
			zap.String("code", m.VersionCode),
			zap.String("region", m.RegionName),
		)
	}
	for i, flag := range fields[4:] {
		if flag == "1" {
			m.Hazards = append(m.Hazards, flagOrder[i])
		}
	}
	return m, nil
}
