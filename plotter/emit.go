package plotter

import (
	"fmt"

	"github.com/cncgen/cirqwizard/excellon"
	"github.com/cncgen/cirqwizard/strings_storage"
	"github.com/cncgen/cirqwizard/toolpath"
	"github.com/cncgen/cirqwizard/xy"
	"github.com/golang/glog"
)

// Origin holds the reference pin offsets, micrometres.
type Origin struct {
	X, Y, Z int
}

type PasteParams struct {
	Origin
	ClearanceZ    int
	WorkingZ      int
	PreFeedPause  int // ms
	PostFeedPause int // ms
	Feed          int // mm/min
}

type DrillingParams struct {
	Origin
	ClearanceZ int
	SafetyZ    int
	WorkingZ   int
	Feed       int
	Speed      int // rpm
}

type MillingParams DrillingParams

func prologue(pp Postprocessor, out strings_storage.Consumer, o Origin, clearance int) {
	pp.Header(out)
	pp.SetupG54(out, o.X, o.Y, o.Z)
	pp.SelectWCS(out)
	pp.Rapid(out, Keep, Keep, At(clearance))
}

// EmitPaste dispenses along every enabled toolpath from its start to its end.
func EmitPaste(pp Postprocessor, out strings_storage.Consumer, tps []toolpath.Toolpath, p PasteParams) {
	prologue(pp, out, p.Origin, p.ClearanceZ)
	n := 0
	for _, tp := range tps {
		if !tp.State().Enabled {
			continue
		}
		from, to := tp.Curve().Start(), tp.Curve().End()
		pp.Rapid(out, At(from.X), At(from.Y), At(p.ClearanceZ))
		pp.Rapid(out, Keep, Keep, At(p.WorkingZ))
		pp.ToolOn(out, 0)
		pp.Pause(out, p.PreFeedPause)
		pp.LinearInterpolation(out, to.X, to.Y, p.WorkingZ, p.Feed)
		pp.ToolOff(out)
		pp.Pause(out, p.PostFeedPause)
		pp.Rapid(out, Keep, Keep, At(p.ClearanceZ))
		n++
	}
	pp.Footer(out)
	glog.V(1).Infof("paste program: %d of %d toolpaths", n, len(tps))
}

// EmitDrilling drills the points in the given order. A change of diameter is
// marked with a comment.
func EmitDrilling(pp Postprocessor, out strings_storage.Consumer, points []excellon.DrillPoint, p DrillingParams) {
	prologue(pp, out, p.Origin, p.ClearanceZ)
	pp.ToolOn(out, p.Speed)
	diameter := -1
	for _, dp := range points {
		if dp.ToolDiameter != diameter {
			diameter = dp.ToolDiameter
			pp.Comment(out, fmt.Sprintf("tool %s mm", mm(diameter)))
		}
		pp.Rapid(out, At(dp.Point.X), At(dp.Point.Y), At(p.ClearanceZ))
		pp.Rapid(out, Keep, Keep, At(p.SafetyZ))
		pp.LinearInterpolation(out, dp.Point.X, dp.Point.Y, p.WorkingZ, p.Feed)
		pp.Rapid(out, Keep, Keep, At(p.ClearanceZ))
	}
	pp.ToolOff(out)
	pp.Footer(out)
	glog.V(1).Infof("drilling program: %d holes", len(points))
}

// EmitMilling cuts along every enabled toolpath at working depth.
func EmitMilling(pp Postprocessor, out strings_storage.Consumer, tps []toolpath.Toolpath, p MillingParams) {
	prologue(pp, out, p.Origin, p.ClearanceZ)
	pp.ToolOn(out, p.Speed)
	n := 0
	for _, tp := range tps {
		if !tp.State().Enabled {
			continue
		}
		c := tp.Curve()
		from, to := c.Start(), c.End()
		pp.Rapid(out, At(from.X), At(from.Y), At(p.ClearanceZ))
		pp.Rapid(out, Keep, Keep, At(p.SafetyZ))
		pp.LinearInterpolation(out, from.X, from.Y, p.WorkingZ, p.Feed)
		if arc, ok := c.(xy.Arc); ok {
			ij := arc.Center.Sub(from)
			pp.CircularInterpolation(out, arc.Clockwise, to.X, to.Y, p.WorkingZ, ij.X, ij.Y, p.Feed)
		} else {
			pp.LinearInterpolation(out, to.X, to.Y, p.WorkingZ, p.Feed)
		}
		pp.Rapid(out, Keep, Keep, At(p.ClearanceZ))
		n++
	}
	pp.ToolOff(out)
	pp.Footer(out)
	glog.V(1).Infof("milling program: %d of %d toolpaths", n, len(tps))
}
