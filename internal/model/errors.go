package model

import (
	"fmt"
	"strings"
)

// InvalidSelectionError reports a hazard, scenario, or return period that is
// not among the options the study region offers.
type InvalidSelectionError struct {
	Field   string
	Value   string
	Options []string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid %s %q: must be one of [%s]", e.Field, e.Value, strings.Join(e.Options, ", "))
}
