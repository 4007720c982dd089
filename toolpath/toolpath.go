/*
Package toolpath turns drawing primitives into tool movements.

Generation is a pure function of the primitives and the tool diameter; the
Enabled and Selected flags are presentation state that callers change with
the helpers at the bottom of this file.
*/
package toolpath

import (
	"fmt"

	"github.com/akavel/polyclip-go"
	"github.com/cncgen/cirqwizard/xy"

	. "github.com/cncgen/cirqwizard/gerberbasetypes"
)

type Flags struct {
	Enabled  bool
	Selected bool
}

func (f Flags) State() Flags { return f }

// Toolpath is either a LinearToolpath or a CuttingToolpath.
// Widths are tool diameters in micrometres; 0 follows the line itself.
type Toolpath interface {
	Curve() xy.Curve
	ToolWidth() int
	State() Flags
	String() string
	withFlags(f Flags) Toolpath
}

type LinearToolpath struct {
	Flags
	Width    int
	From, To xy.Point
}

func NewLinear(width int, from, to xy.Point) LinearToolpath {
	return LinearToolpath{Flags: Flags{Enabled: true}, Width: width, From: from, To: to}
}

func (t LinearToolpath) Curve() xy.Curve { return xy.Line{From: t.From, To: t.To} }
func (t LinearToolpath) ToolWidth() int  { return t.Width }

func (t LinearToolpath) withFlags(f Flags) Toolpath {
	t.Flags = f
	return t
}

func (t LinearToolpath) String() string {
	return fmt.Sprintf("linear %v-%v, tool %d%s", t.From, t.To, t.Width, t.Flags)
}

// CuttingToolpath follows an arbitrary curve.
type CuttingToolpath struct {
	Flags
	Width int
	Path  xy.Curve
}

func NewCutting(width int, path xy.Curve) CuttingToolpath {
	return CuttingToolpath{Flags: Flags{Enabled: true}, Width: width, Path: path}
}

func (t CuttingToolpath) Curve() xy.Curve { return t.Path }
func (t CuttingToolpath) ToolWidth() int  { return t.Width }

func (t CuttingToolpath) withFlags(f Flags) Toolpath {
	t.Flags = f
	return t
}

func (t CuttingToolpath) String() string {
	return fmt.Sprintf("cutting %v-%v, tool %d%s", t.Path.Start(), t.Path.End(), t.Width, t.Flags)
}

func (f Flags) String() string {
	s := ""
	if !f.Enabled {
		s += ", disabled"
	}
	if f.Selected {
		s += ", selected"
	}
	return s
}

type Result struct {
	Toolpaths   []Toolpath
	Diagnostics Diagnostics
}

func (res *Result) add(sev Severity, what fmt.Stringer, msg string) {
	d := Diagnostic{Severity: sev, Text: what.String(), Message: msg}
	logDiagnostic(d)
	res.Diagnostics = append(res.Diagnostics, d)
}

/*
############################ selection ########################################
*/

func update(tps []Toolpath, fn func(i int, f Flags) Flags) []Toolpath {
	retVal := make([]Toolpath, len(tps))
	for i, t := range tps {
		retVal[i] = t.withFlags(fn(i, t.State()))
	}
	return retVal
}

// ClearSelection returns a copy with no toolpath selected.
func ClearSelection(tps []Toolpath) []Toolpath {
	return update(tps, func(_ int, f Flags) Flags {
		f.Selected = false
		return f
	})
}

// SelectWindow selects every toolpath with both ends inside the window.
// The previous selection is kept.
func SelectWindow(tps []Toolpath, window polyclip.Rectangle) []Toolpath {
	inside := func(p xy.Point) bool {
		x, y := float64(p.X), float64(p.Y)
		return x >= window.Min.X && x <= window.Max.X && y >= window.Min.Y && y <= window.Max.Y
	}
	return update(tps, func(i int, f Flags) Flags {
		c := tps[i].Curve()
		if inside(c.Start()) && inside(c.End()) {
			f.Selected = true
		}
		return f
	})
}

// SetEnabled enables or disables the selected toolpaths.
func SetEnabled(tps []Toolpath, enabled bool) []Toolpath {
	return update(tps, func(_ int, f Flags) Flags {
		if f.Selected {
			f.Enabled = enabled
		}
		return f
	})
}

func EnabledOnly(tps []Toolpath) []Toolpath {
	retVal := make([]Toolpath, 0, len(tps))
	for _, t := range tps {
		if t.State().Enabled {
			retVal = append(retVal, t)
		}
	}
	return retVal
}
