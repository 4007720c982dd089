package gerberdatamodel

import (
	"fmt"

	"github.com/akavel/polyclip-go"
	"github.com/cncgen/cirqwizard/apertures"
	"github.com/cncgen/cirqwizard/xy"
)

// Primitive is one of Flash, LinearShape, CircularShape or Region.
// Coordinates are in micrometres.
type Primitive interface {
	// Contour returns the outline of the area the primitive exposes,
	// approximated by the aperture's bounding box where needed.
	Contour() polyclip.Contour
	// Moved returns a copy translated by d.
	Moved(d xy.Point) Primitive
	String() string
	isPrimitive()
}

type Flash struct {
	Point    xy.Point
	Aperture apertures.Aperture
}

// LinearShape is a straight draw. Aperture is nil for region segments.
type LinearShape struct {
	From, To xy.Point
	Aperture apertures.Aperture
}

// CircularShape is an arc drawn in multi quadrant mode.
type CircularShape struct {
	Arc      xy.Arc
	Aperture apertures.Aperture
}

// Region is a closed area. It owns its segments; the last segment ends
// where the first one starts when the source closed the contour.
type Region struct {
	Segments []LinearShape
}

func (Flash) isPrimitive()         {}
func (LinearShape) isPrimitive()   {}
func (CircularShape) isPrimitive() {}
func (Region) isPrimitive()        {}

func (f Flash) String() string {
	return fmt.Sprintf("flash at %v with %v", f.Point, f.Aperture)
}

func (l LinearShape) String() string {
	if l.Aperture == nil {
		return fmt.Sprintf("segment %v-%v", l.From, l.To)
	}
	return fmt.Sprintf("line %v-%v with %v", l.From, l.To, l.Aperture)
}

func (c CircularShape) String() string {
	dir := "ccw"
	if c.Arc.Clockwise {
		dir = "cw"
	}
	return fmt.Sprintf("arc %v-%v around %v %s with %v", c.Arc.From, c.Arc.To, c.Arc.Center, dir, c.Aperture)
}

func (r Region) String() string {
	return fmt.Sprintf("region of %d segments", len(r.Segments))
}

func (l LinearShape) Line() xy.Line {
	return xy.Line{From: l.From, To: l.To}
}

func rect(cx, cy, w, h float64) polyclip.Contour {
	return polyclip.Contour{
		{X: cx - w/2, Y: cy - h/2}, {X: cx + w/2, Y: cy - h/2},
		{X: cx + w/2, Y: cy + h/2}, {X: cx - w/2, Y: cy + h/2},
	}
}

func apertureSize(a apertures.Aperture) (float64, float64) {
	if a == nil {
		return 0, 0
	}
	w, h := a.Size()
	return float64(w), float64(h)
}

func (f Flash) Contour() polyclip.Contour {
	w, h := apertureSize(f.Aperture)
	return rect(float64(f.Point.X), float64(f.Point.Y), w, h)
}

func (l LinearShape) Contour() polyclip.Contour {
	w, h := apertureSize(l.Aperture)
	var c polyclip.Contour
	for _, p := range []xy.Point{l.From, l.To} {
		c = append(c, rect(float64(p.X), float64(p.Y), w, h)...)
	}
	return c
}

// Contour of an arc is the box of its full circle.
func (c CircularShape) Contour() polyclip.Contour {
	w, h := apertureSize(c.Aperture)
	r := c.Arc.Radius()
	return rect(float64(c.Arc.Center.X), float64(c.Arc.Center.Y), 2*r+w, 2*r+h)
}

func (r Region) Contour() polyclip.Contour {
	c := make(polyclip.Contour, 0, len(r.Segments)+1)
	for i, s := range r.Segments {
		if i == 0 {
			c.Add(polyclip.Point{X: float64(s.From.X), Y: float64(s.From.Y)})
		}
		if i == len(r.Segments)-1 && s.To == r.Segments[0].From {
			break
		}
		c.Add(polyclip.Point{X: float64(s.To.X), Y: float64(s.To.Y)})
	}
	return c
}

func (f Flash) Moved(d xy.Point) Primitive {
	f.Point = f.Point.Add(d)
	return f
}

func (l LinearShape) Moved(d xy.Point) Primitive {
	l.From, l.To = l.From.Add(d), l.To.Add(d)
	return l
}

func (c CircularShape) Moved(d xy.Point) Primitive {
	c.Arc.From, c.Arc.To, c.Arc.Center = c.Arc.From.Add(d), c.Arc.To.Add(d), c.Arc.Center.Add(d)
	return c
}

func (r Region) Moved(d xy.Point) Primitive {
	segs := make([]LinearShape, len(r.Segments))
	for i := range r.Segments {
		segs[i] = r.Segments[i].Moved(d).(LinearShape)
	}
	return Region{Segments: segs}
}

// Bounds returns the bounding box of all primitives. ok is false for an
// empty layer.
func Bounds(prims []Primitive) (box polyclip.Rectangle, ok bool) {
	poly := make(polyclip.Polygon, 0, len(prims))
	for _, p := range prims {
		if c := p.Contour(); len(c) > 0 {
			poly.Add(c)
		}
	}
	if len(poly) == 0 {
		return polyclip.Rectangle{}, false
	}
	return poly.BoundingBox(), true
}

// MinPoint returns the lower left corner of the layer.
func MinPoint(prims []Primitive) xy.Point {
	box, ok := Bounds(prims)
	if !ok {
		return xy.Point{}
	}
	return xy.Pt(int(box.Min.X), int(box.Min.Y))
}

// Move translates every primitive by d.
func Move(prims []Primitive, d xy.Point) []Primitive {
	retVal := make([]Primitive, len(prims))
	for i := range prims {
		retVal[i] = prims[i].Moved(d)
	}
	return retVal
}

// Counts tallies primitives by kind.
type Counts struct {
	Flashes int `yaml:"flashes"`
	Lines   int `yaml:"lines"`
	Arcs    int `yaml:"arcs"`
	Regions int `yaml:"regions"`
}

func Count(prims []Primitive) Counts {
	var c Counts
	for _, p := range prims {
		switch p.(type) {
		case Flash:
			c.Flashes++
		case LinearShape:
			c.Lines++
		case CircularShape:
			c.Arcs++
		case Region:
			c.Regions++
		}
	}
	return c
}
