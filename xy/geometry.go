package xy

import (
	"math"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is a location in micrometres.
type Point struct {
	X, Y int
}

func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// PointOf converts an exact millimetre pair into the shared unit.
func PointOf(x, y Number) Point {
	return Point{X: x.Microns(), Y: y.Microns()}
}

// PointFromVec truncates a float vector toward zero.
func PointFromVec(v mgl64.Vec2) Point {
	return Point{X: int(v[0]), Y: int(v[1])}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) Vec() mgl64.Vec2 {
	return mgl64.Vec2{float64(p.X), float64(p.Y)}
}

func (p Point) DistanceTo(q Point) float64 {
	return q.Vec().Sub(p.Vec()).Len()
}

func (p Point) String() string {
	return "(" + strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y) + ")"
}

// BindAngle maps any angle into [0, 2π).
func BindAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// AngleToX returns the direction of the vector from->to against the X axis,
// bound into [0, 2π).
func AngleToX(from, to Point) float64 {
	return BindAngle(math.Atan2(float64(to.Y-from.Y), float64(to.X-from.X)))
}

// Curve is a path between two points.
type Curve interface {
	Start() Point
	End() Point
	Length() float64
}

type Line struct {
	From, To Point
}

func (l Line) Start() Point { return l.From }
func (l Line) End() Point { return l.To }
func (l Line) Length() float64 { return l.From.DistanceTo(l.To) }
func (l Line) Angle() float64 { return AngleToX(l.From, l.To) }
func (l Line) Reverse() Line { return Line{From: l.To, To: l.From} }
func (l Line) IsDegenerate() bool { return l.From == l.To }

// SignedDistance returns the distance of p to the infinite line through l.
// Positive values lie to the left of the From->To direction.
func (l Line) SignedDistance(p Point) float64 {
	dx := float64(l.To.X - l.From.X)
	dy := float64(l.To.Y - l.From.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return l.From.DistanceTo(p)
	}
	return (dx*float64(p.Y-l.From.Y) - dy*float64(p.X-l.From.X)) / length
}

// PerpendicularDistance is the unsigned SignedDistance.
func (l Line) PerpendicularDistance(p Point) float64 {
	return math.Abs(l.SignedDistance(p))
}

// Arc is a circular arc around Center.
type Arc struct {
	From, To, Center Point
	Clockwise        bool
}

func (a Arc) Start() Point { return a.From }
func (a Arc) End() Point { return a.To }

func (a Arc) Radius() float64 {
	return a.Center.DistanceTo(a.From)
}

// Sweep returns the swept angle in [0, 2π]. A closed arc sweeps the full circle.
func (a Arc) Sweep() float64 {
	start := AngleToX(a.Center, a.From)
	end := AngleToX(a.Center, a.To)
	var sweep float64
	if a.Clockwise {
		sweep = BindAngle(start - end)
	} else {
		sweep = BindAngle(end - start)
	}
	if sweep == 0 {
		sweep = 2 * math.Pi
	}
	return sweep
}

func (a Arc) Length() float64 {
	return a.Radius() * a.Sweep()
}
