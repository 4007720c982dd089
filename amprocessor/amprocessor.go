// Aperture Macros support
package amprocessor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cncgen/cirqwizard/calculator"
	"github.com/cncgen/cirqwizard/xy"
	"github.com/go-gl/mathgl/mgl64"
)

var ErrBadPrimitive = errors.New("bad aperture macro primitive")

type AMPrimitiveType int

const (
	AMComment       AMPrimitiveType = 0
	AMCircle        AMPrimitiveType = 1
	AMVectLineAlias AMPrimitiveType = 2
	AMOutLine       AMPrimitiveType = 4
	AMPolygon       AMPrimitiveType = 5
	AMMoire         AMPrimitiveType = 6
	AMThermal       AMPrimitiveType = 7
	AMVectLine      AMPrimitiveType = 20
	AMCenterLine    AMPrimitiveType = 21
)

func (amp AMPrimitiveType) String() string {
	var retVal string
	switch amp {
	case AMComment:
		retVal = "comment"
	case AMCircle:
		retVal = "circle"
	case AMVectLine, AMVectLineAlias:
		retVal = "vector line"
	case AMCenterLine:
		retVal = "center line"
	case AMOutLine:
		retVal = "outline"
	case AMPolygon:
		retVal = "polygon"
	case AMMoire:
		retVal = "moire"
	case AMThermal:
		retVal = "thermal"
	default:
		retVal = "unknown"
	}
	return retVal
}

// AMPrimitive is one of AMPrimitiveCircle, AMPrimitiveVectLine,
// AMPrimitiveCenterLine or AMPrimitiveOutLine. Sizes are in micrometres,
// rotations in degrees around the macro origin.
type AMPrimitive interface {
	Type() AMPrimitiveType
	// corner points of the primitive's hull, rotation applied
	Vertices() []mgl64.Vec2
	String() string
	isAMPrimitive()
}

// ********************************************* CIRCLE *********************************************************
type AMPrimitiveCircle struct {
	Exposure bool
	Diameter int
	Center   xy.Point
	Rotation float64
}

func (amp AMPrimitiveCircle) Type() AMPrimitiveType { return AMCircle }
func (amp AMPrimitiveCircle) isAMPrimitive()        {}

func (amp AMPrimitiveCircle) String() string {
	return fmt.Sprintf("circle: diameter %d, center %v", amp.Diameter, amp.Center)
}

func (amp AMPrimitiveCircle) Vertices() []mgl64.Vec2 {
	r := float64(amp.Diameter) / 2
	c := rotate(amp.Center.Vec(), amp.Rotation)
	return []mgl64.Vec2{c.Add(mgl64.Vec2{-r, -r}), c.Add(mgl64.Vec2{r, r})}
}

// ***************************************** VECTOR LINE *****************************************************
type AMPrimitiveVectLine struct {
	Exposure bool
	Width    int
	From, To xy.Point
	Rotation float64
}

func (amp AMPrimitiveVectLine) Type() AMPrimitiveType { return AMVectLine }
func (amp AMPrimitiveVectLine) isAMPrimitive()        {}

func (amp AMPrimitiveVectLine) String() string {
	return fmt.Sprintf("vector line: width %d, %v-%v, rotation %g", amp.Width, amp.From, amp.To, amp.Rotation)
}

func (amp AMPrimitiveVectLine) Vertices() []mgl64.Vec2 {
	from, to := amp.From.Vec(), amp.To.Vec()
	dir := to.Sub(from)
	if dir.Len() == 0 {
		dir = mgl64.Vec2{1, 0}
	}
	n := mgl64.Vec2{-dir[1], dir[0]}.Normalize().Mul(float64(amp.Width) / 2)
	return rotateAll([]mgl64.Vec2{from.Add(n), to.Add(n), to.Sub(n), from.Sub(n)}, amp.Rotation)
}

// ***************************************** CENTER LINE *****************************************************
type AMPrimitiveCenterLine struct {
	Exposure      bool
	Width, Height int
	Center        xy.Point
	Rotation      float64
}

func (amp AMPrimitiveCenterLine) Type() AMPrimitiveType { return AMCenterLine }
func (amp AMPrimitiveCenterLine) isAMPrimitive()        {}

func (amp AMPrimitiveCenterLine) String() string {
	return fmt.Sprintf("center line: %dx%d at %v, rotation %g", amp.Width, amp.Height, amp.Center, amp.Rotation)
}

func (amp AMPrimitiveCenterLine) Vertices() []mgl64.Vec2 {
	c := amp.Center.Vec()
	w, h := float64(amp.Width)/2, float64(amp.Height)/2
	return rotateAll([]mgl64.Vec2{
		c.Add(mgl64.Vec2{-w, -h}), c.Add(mgl64.Vec2{w, -h}),
		c.Add(mgl64.Vec2{w, h}), c.Add(mgl64.Vec2{-w, h}),
	}, amp.Rotation)
}

// ******************************************** OUTLINE ******************************************************
// The closing point of the outline is not stored.
type AMPrimitiveOutLine struct {
	Exposure bool
	Points   []xy.Point
	Rotation float64
}

func (amp AMPrimitiveOutLine) Type() AMPrimitiveType { return AMOutLine }
func (amp AMPrimitiveOutLine) isAMPrimitive()        {}

func (amp AMPrimitiveOutLine) String() string {
	return fmt.Sprintf("outline: %d vertices, rotation %g", len(amp.Points), amp.Rotation)
}

func (amp AMPrimitiveOutLine) Vertices() []mgl64.Vec2 {
	vs := make([]mgl64.Vec2, len(amp.Points))
	for i := range amp.Points {
		vs[i] = amp.Points[i].Vec()
	}
	return rotateAll(vs, amp.Rotation)
}

func rotate(v mgl64.Vec2, degrees float64) mgl64.Vec2 {
	if degrees == 0 {
		return v
	}
	return mgl64.Rotate2D(mgl64.DegToRad(degrees)).Mul2x1(v)
}

func rotateAll(vs []mgl64.Vec2, degrees float64) []mgl64.Vec2 {
	for i := range vs {
		vs[i] = rotate(vs[i], degrees)
	}
	return vs
}

// ********************************************* AM container *************************************************

// statement is one body block of a macro: a variable assignment or a
// primitive whose modifiers are still expressions.
type statement struct {
	variable  string
	expr      string
	primType  AMPrimitiveType
	modifiers []string
	ratio     xy.Number
	static    AMPrimitive // evaluated at definition time when no variables are used
}

type ApertureMacro struct {
	Name       string
	Comments   []string
	statements []statement
}

func NewApertureMacro(name string) *ApertureMacro {
	return &ApertureMacro{Name: name}
}

func (am *ApertureMacro) String() string {
	retVal := "Aperture macro name:\t" + am.Name + "\n"
	for i := range am.statements {
		st := &am.statements[i]
		switch {
		case len(st.variable) > 0:
			retVal += "\t" + st.variable + "=" + st.expr + "\n"
		case st.static != nil:
			retVal += "\t" + st.static.String() + "\n"
		default:
			retVal += "\t" + st.primType.String() + " " + strings.Join(st.modifiers, ",") + "\n"
		}
	}
	return retVal
}

// Len returns the number of stored statements.
func (am *ApertureMacro) Len() int {
	return len(am.statements)
}

// Accept adds one body block of the macro definition. Sizes are scaled by
// ratio. Primitives that do not depend on parameters are evaluated at once, so
// their warnings are reported with the definition.
func (am *ApertureMacro) Accept(src string, ratio xy.Number) (warnings []string, err error) {
	if len(src) == 0 {
		return nil, nil
	}
	if src[0] == '0' {
		am.Comments = append(am.Comments, strings.TrimSpace(src[1:]))
		return nil, nil
	}
	if strings.HasPrefix(src, "$") {
		eqSignPos := strings.IndexByte(src, '=')
		if eqSignPos < 2 {
			return nil, fmt.Errorf("%w: problem with variable %q", ErrBadPrimitive, src)
		}
		am.statements = append(am.statements, statement{variable: src[:eqSignPos], expr: src[eqSignPos+1:]})
		return nil, nil
	}

	commaPos := strings.IndexByte(src, ',')
	if commaPos < 1 {
		return nil, fmt.Errorf("%w: %q", ErrBadPrimitive, src)
	}
	primTypeI, err := strconv.Atoi(src[:commaPos])
	if err != nil {
		return nil, fmt.Errorf("%w: bad primitive code in %q", ErrBadPrimitive, src)
	}
	primType := AMPrimitiveType(primTypeI)
	switch primType {
	case AMCircle, AMVectLine, AMVectLineAlias, AMCenterLine, AMOutLine:
	case AMPolygon, AMMoire, AMThermal:
		return []string{primType.String() + " macro primitive is not supported, skipped"}, nil
	default:
		return nil, fmt.Errorf("%w: unknown primitive code %d", ErrBadPrimitive, primTypeI)
	}
	if primType == AMVectLineAlias {
		primType = AMVectLine
	}
	st := statement{primType: primType, modifiers: strings.Split(src[commaPos+1:], ","), ratio: ratio}
	if !strings.Contains(src, "$") {
		st.static, warnings, err = st.evaluate(nil)
		if err != nil {
			return warnings, err
		}
	}
	am.statements = append(am.statements, st)
	return warnings, nil
}

// Instantiate evaluates the macro body with the given AD parameters bound to
// $1, $2, ...
func (am *ApertureMacro) Instantiate(params []xy.Number) ([]AMPrimitive, []string, error) {
	vars := make(calculator.Variables, len(params))
	for i := range params {
		vars["$"+strconv.Itoa(i+1)] = params[i]
	}
	var warnings []string
	retVal := make([]AMPrimitive, 0, len(am.statements))
	for i := range am.statements {
		st := &am.statements[i]
		if len(st.variable) > 0 {
			v, err := calculator.CalcExpression(st.expr, vars)
			if err != nil {
				return nil, warnings, fmt.Errorf("macro %s: %s: %w", am.Name, st.variable, err)
			}
			vars[st.variable] = v
			continue
		}
		if st.static != nil {
			retVal = append(retVal, st.static)
			continue
		}
		p, w, err := st.evaluate(vars)
		warnings = append(warnings, w...)
		if err != nil {
			return nil, warnings, fmt.Errorf("macro %s: %w", am.Name, err)
		}
		retVal = append(retVal, p)
	}
	return retVal, warnings, nil
}

func (st *statement) evaluate(vars calculator.Variables) (AMPrimitive, []string, error) {
	mods := make([]xy.Number, len(st.modifiers))
	for i, m := range st.modifiers {
		v, err := calculator.CalcExpression(m, vars)
		if err != nil {
			return nil, nil, err
		}
		mods[i] = v
	}
	size := func(i int) int { return mods[i].Mul(st.ratio).Microns() }
	point := func(i int) xy.Point { return xy.Pt(size(i), size(i+1)) }
	angle := func(i int) float64 {
		if i < len(mods) {
			return mods[i].Float()
		}
		return 0
	}
	need := func(n int) error {
		if len(mods) < n {
			return fmt.Errorf("%w: %s needs %d modifiers, got %d", ErrBadPrimitive, st.primType, n, len(mods))
		}
		return nil
	}
	exposure := func() bool { return len(mods) > 0 && !mods[0].IsZero() }

	switch st.primType {
	case AMCircle:
		if err := need(4); err != nil {
			return nil, nil, err
		}
		return AMPrimitiveCircle{exposure(), size(1), point(2), angle(4)}, nil, nil
	case AMVectLine:
		if err := need(6); err != nil {
			return nil, nil, err
		}
		return AMPrimitiveVectLine{exposure(), size(1), point(2), point(4), angle(6)}, nil, nil
	case AMCenterLine:
		if err := need(5); err != nil {
			return nil, nil, err
		}
		return AMPrimitiveCenterLine{exposure(), size(1), size(2), point(3), angle(5)}, nil, nil
	case AMOutLine:
		return st.outline(mods, point)
	}
	return nil, nil, fmt.Errorf("%w: unexpected primitive %d", ErrBadPrimitive, int(st.primType))
}

// exposure, vertex count, x0, y0, ... xn, yn, rotation
func (st *statement) outline(mods []xy.Number, point func(int) xy.Point) (AMPrimitive, []string, error) {
	if len(mods) < 2 {
		return nil, nil, fmt.Errorf("%w: outline without vertex count", ErrBadPrimitive)
	}
	var warnings []string
	declared := int(mods[1].Decimal().IntPart())
	coords := len(mods) - 2
	rotation := 0.0
	if coords%2 == 1 {
		rotation = mods[len(mods)-1].Float()
		coords--
	}
	if coords < 4 {
		return nil, nil, fmt.Errorf("%w: outline needs at least two points", ErrBadPrimitive)
	}
	points := make([]xy.Point, 0, coords/2)
	for i := 2; i < 2+coords; i += 2 {
		points = append(points, point(i))
	}
	if declared != len(points)-1 {
		warnings = append(warnings, fmt.Sprintf("outline declares %d vertices but has %d points", declared, len(points)))
	}
	if points[0] != points[len(points)-1] {
		warnings = append(warnings, fmt.Sprintf("outline is not closed: first point %v, last point %v", points[0], points[len(points)-1]))
	}
	points = points[:len(points)-1]
	return AMPrimitiveOutLine{len(mods) > 0 && !mods[0].IsZero(), points, rotation}, warnings, nil
}
