package model

// Level is the census geography a result table is keyed by.
// Blocks nest in tracts and tracts nest in counties; the identifiers
// nest by prefix (15-digit block, 11-digit tract, 5-digit county).
type Level int

const (
	LevelNone Level = iota
	LevelBlock
	LevelTract
	LevelCounty
)

// Key returns the column name carrying the level's identifier.
func (l Level) Key() string {
	switch l {
	case LevelBlock:
		return "block"
	case LevelTract:
		return "tract"
	case LevelCounty:
		return "county"
	}
	return ""
}

// IDLength is the number of characters in the level's identifier.
func (l Level) IDLength() int {
	switch l {
	case LevelBlock:
		return 15
	case LevelTract:
		return 11
	case LevelCounty:
		return 5
	}
	return 0
}

// Parent returns the containing level, or LevelNone for counties.
func (l Level) Parent() Level {
	switch l {
	case LevelBlock:
		return LevelTract
	case LevelTract:
		return LevelCounty
	}
	return LevelNone
}

// Truncate derives the identifier of the containing unit at level target.
// It returns "" when id is too short or target does not contain l.
func (l Level) Truncate(id string, target Level) string {
	if target == LevelNone || target < l {
		return ""
	}
	n := target.IDLength()
	if len(id) < n {
		return ""
	}
	return id[:n]
}

func (l Level) String() string {
	if k := l.Key(); k != "" {
		return k
	}
	return "none"
}

// LevelFromKey maps a key column name back to its level.
func LevelFromKey(col string) Level {
	switch col {
	case "block":
		return LevelBlock
	case "tract":
		return LevelTract
	case "county":
		return LevelCounty
	}
	return LevelNone
}
