package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ReturnPeriodDeterministic marks a deterministic or historic run.
const ReturnPeriodDeterministic = "0"

// ReturnPeriodMixed is the sentinel some flood analyses report instead of a
// numeric return period. It is matched case-insensitively.
const ReturnPeriodMixed = "mixed"

// Selection is the active hazard/scenario/return-period slice of a study region.
type Selection struct {
	Hazard       Hazard
	Scenario     string
	ReturnPeriod string
}

// Resolved reports whether every part of the selection has been set.
func (s Selection) Resolved() bool {
	return s.Hazard != "" && s.Scenario != "" && s.ReturnPeriod != ""
}

// Require returns an error when the selection is not fully resolved.
func (s Selection) Require() error {
	switch {
	case s.Hazard == "":
		return eris.New("model: no active hazard")
	case s.Scenario == "":
		return eris.Errorf("model: no active scenario for %s", s.Hazard)
	case s.ReturnPeriod == "":
		return eris.Errorf("model: no active return period for %s scenario %q", s.Hazard, s.Scenario)
	}
	return nil
}

// NormalizeReturnPeriod trims and lower-cases a return period so that
// "Mixed", " mixed " and "mixed" compare equal. Numeric values are unchanged.
func NormalizeReturnPeriod(rp string) string {
	return strings.ToLower(strings.TrimSpace(rp))
}

// IsMixed reports whether rp is the mixed sentinel.
func IsMixed(rp string) bool {
	return NormalizeReturnPeriod(rp) == ReturnPeriodMixed
}
