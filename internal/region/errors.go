package region

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hazus-cli/internal/frame"
)

// GeometryResolutionError reports a frame carrying none of the block, tract
// or county key columns.
type GeometryResolutionError struct {
	Columns []string
}

func (e *GeometryResolutionError) Error() string {
	return fmt.Sprintf("no geographic key (block, tract, county) among columns [%s]", strings.Join(e.Columns, ", "))
}

// ErrUnavailable marks a metric or layer the active hazard does not provide
// or whose fetch failed.
var ErrUnavailable = eris.New("unavailable")

// Outcome is the result of one metric or layer fetch: either a frame or the
// reason it is unavailable.
type Outcome struct {
	Frame  *frame.Frame
	Reason error
}

// Ok wraps a fetched frame.
func Ok(f *frame.Frame) Outcome { return Outcome{Frame: f} }

// Unavailable records why a fetch produced nothing.
func Unavailable(reason error) Outcome { return Outcome{Reason: reason} }

// Available reports whether the fetch produced a frame.
func (o Outcome) Available() bool { return o.Reason == nil && o.Frame != nil }
