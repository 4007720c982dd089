package toolpath

import (
	"math"

	"github.com/akavel/polyclip-go"
	"github.com/cncgen/cirqwizard/apertures"
	"github.com/cncgen/cirqwizard/gerberdatamodel"
	"github.com/cncgen/cirqwizard/xy"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/glog"

	. "github.com/cncgen/cirqwizard/gerberbasetypes"
)

// GeneratePaste fills pads and regions with parallel dispensing passes of a
// needle with the given diameter. Other primitives are reported and skipped.
func GeneratePaste(prims []gerberdatamodel.Primitive, needle int) Result {
	var res Result
	for _, p := range prims {
		switch p := p.(type) {
		case gerberdatamodel.Flash:
			ap, ok := p.Aperture.(apertures.Rectangular)
			if !ok {
				res.add(SeverityWarning, p, "only rectangular pads can be filled with paste, skipped")
				continue
			}
			res.Toolpaths = append(res.Toolpaths, fillPad(p.Point, ap, needle)...)
		case gerberdatamodel.Region:
			tps, err := fillRegion(p, needle)
			if err != nil {
				res.add(SeverityWarning, p, err.Error())
				continue
			}
			res.Toolpaths = append(res.Toolpaths, tps...)
		default:
			res.add(SeverityWarning, p, "unexpected element on solder paste layer, skipped")
		}
	}
	glog.V(1).Infof("paste: %d primitives, %d toolpaths, needle %d", len(prims), len(res.Toolpaths), needle)
	return res
}

// passes over a band of the given width
func passCount(width, tool int) int {
	if tool <= 0 {
		return 1
	}
	return max(1, width/(2*tool))
}

// Passes run along the long side of the pad. Their ends stay one needle
// diameter away from the pad edges.
func fillPad(at xy.Point, ap apertures.Rectangular, needle int) []Toolpath {
	w, h := ap.Width, ap.Height
	vertical := h > w
	short := h
	if vertical {
		short = w
	}
	passes := passCount(short, needle)
	retVal := make([]Toolpath, 0, passes)
	for i := 0; i < passes; i++ {
		var from, to xy.Point
		if vertical {
			x := int(float64(at.X-w/2) + float64(w)/float64(passes+1)*float64(i+1))
			from = xy.Pt(x, at.Y-h/2+needle)
			to = xy.Pt(x, at.Y+h/2-needle)
		} else {
			y := int(float64(at.Y-h/2) + float64(h)/float64(passes+1)*float64(i+1))
			from = xy.Pt(at.X-w/2+needle, y)
			to = xy.Pt(at.X+w/2-needle, y)
		}
		retVal = append(retVal, NewLinear(needle, from, to))
	}
	return retVal
}

type regionError string

func (e regionError) Error() string { return string(e) }

const (
	errEmptyRegion      = regionError("region without segments, skipped")
	errDegenerateRegion = regionError("region has no extent, skipped")
)

// The longest edge is the fill axis. The width is the largest distance of a
// segment end from that axis.
func fillRegion(r gerberdatamodel.Region, needle int) ([]Toolpath, error) {
	if len(r.Segments) == 0 {
		return nil, errEmptyRegion
	}
	axis := r.Segments[0].Line()
	for _, s := range r.Segments[1:] {
		if s.Line().Length() > axis.Length() {
			axis = s.Line()
		}
	}
	var width, farthest float64
	for _, s := range r.Segments {
		for _, p := range []xy.Point{s.From, s.To} {
			d := axis.SignedDistance(p)
			if math.Abs(d) > width {
				width, farthest = math.Abs(d), d
			}
		}
	}
	if axis.IsDegenerate() || int(width) == 0 {
		return nil, errDegenerateRegion
	}
	return fillRectangle(axis, int(width), needle, towardInterior(r.Contour(), axis, int(width), needle, farthest)), nil
}

// towardInterior returns +1 when the region lies to the left of the axis
// direction and -1 when it lies to the right.
func towardInterior(c polyclip.Contour, axis xy.Line, width, needle int, farthest float64) float64 {
	passes := passCount(width, needle)
	probe := float64(width) / float64(passes+1)
	mid := axis.From.Vec().Add(axis.To.Vec()).Mul(0.5)
	left := normal(axis.Angle(), 1)
	inside := func(v mgl64.Vec2) bool { return c.Contains(polyclip.Point{X: v[0], Y: v[1]}) }
	switch {
	case inside(mid.Add(left.Mul(probe))):
		return 1
	case inside(mid.Sub(left.Mul(probe))):
		return -1
	case farthest < 0:
		return -1
	}
	return 1
}

func direction(angle float64) mgl64.Vec2 {
	return mgl64.Vec2{math.Cos(angle), math.Sin(angle)}
}

// normal to a direction, side +1 turns left, -1 turns right
func normal(angle, side float64) mgl64.Vec2 {
	return direction(xy.BindAngle(angle + side*math.Pi/2))
}

// fillRectangle lays passes parallel to axis, shortened by half the tool at
// both ends and offset towards side across a band of the given width.
func fillRectangle(axis xy.Line, width, tool int, side float64) []Toolpath {
	passes := passCount(width, tool)
	angle := axis.Angle()
	shorten := xy.PointFromVec(direction(angle).Mul(float64(tool) / 2))
	from := axis.From.Add(shorten)
	to := axis.To.Sub(shorten)
	n := normal(angle, side)

	retVal := make([]Toolpath, 0, passes)
	for i := 0; i < passes; i++ {
		offset := width / (passes + 1) * (i + 1)
		v := xy.PointFromVec(n.Mul(float64(offset)))
		retVal = append(retVal, NewLinear(tool, from.Add(v), to.Add(v)))
	}
	return retVal
}
