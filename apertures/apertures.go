// Apertures support
package apertures

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cncgen/cirqwizard/amprocessor"
	. "github.com/cncgen/cirqwizard/gerberbasetypes"
	"github.com/cncgen/cirqwizard/xy"
)

var (
	ErrBadDefinition = errors.New("bad aperture definition")
	ErrUnknownShape  = errors.New("unknown aperture")
	// ErrPolygon is returned for the regular polygon shape code P, which is
	// not supported.
	ErrPolygon = errors.New("polygon aperture is not supported")
)

// Aperture is one of Circular, Rectangular, Oval, Octagonal or Macro.
// Sizes are in micrometres.
type Aperture interface {
	Type() GerberApType
	// Size returns the width and height of the bounding box centered on the flash point
	Size() (int, int)
	String() string
	isAperture()
}

type Circular struct {
	Diameter int
}

type Rectangular struct {
	Width, Height int
}

type Oval struct {
	Width, Height int
}

type Octagonal struct {
	Diameter int
}

type Macro struct {
	Name       string
	Primitives []amprocessor.AMPrimitive
}

func (Circular) isAperture()    {}
func (Rectangular) isAperture() {}
func (Oval) isAperture()        {}
func (Octagonal) isAperture()   {}
func (Macro) isAperture()       {}

func (Circular) Type() GerberApType    { return AptypeCircle }
func (Rectangular) Type() GerberApType { return AptypeRectangle }
func (Oval) Type() GerberApType        { return AptypeObround }
func (Octagonal) Type() GerberApType   { return AptypeOctagon }
func (Macro) Type() GerberApType       { return AptypeMacro }

func (a Circular) Size() (int, int)    { return a.Diameter, a.Diameter }
func (a Rectangular) Size() (int, int) { return a.Width, a.Height }
func (a Oval) Size() (int, int)        { return a.Width, a.Height }
func (a Octagonal) Size() (int, int)   { return a.Diameter, a.Diameter }

// Size of a macro aperture is twice the largest extent from the origin on
// each axis.
func (a Macro) Size() (int, int) {
	var mx, my float64
	for _, p := range a.Primitives {
		for _, v := range p.Vertices() {
			mx = math.Max(mx, math.Abs(v[0]))
			my = math.Max(my, math.Abs(v[1]))
		}
	}
	return int(2 * mx), int(2 * my)
}

func (a Circular) String() string {
	return "circle, diameter " + strconv.Itoa(a.Diameter)
}

func (a Rectangular) String() string {
	return "rectangle " + strconv.Itoa(a.Width) + "x" + strconv.Itoa(a.Height)
}

func (a Oval) String() string {
	return "oval " + strconv.Itoa(a.Width) + "x" + strconv.Itoa(a.Height)
}

func (a Octagonal) String() string {
	return "octagon, diameter " + strconv.Itoa(a.Diameter)
}

func (a Macro) String() string {
	return "macro " + a.Name + " (" + strconv.Itoa(len(a.Primitives)) + " primitives)"
}

// Width is the stroke width an aperture draws with.
func Width(a Aperture) int {
	w, h := a.Size()
	if h < w {
		return h
	}
	return w
}

// Parse decodes the body of an AD parameter, e.g. "D10C,0.5" or
// "D11RECT2,0.5X0.3". Sizes are scaled by ratio. A name found in macros
// instantiates that macro with the parameters.
func Parse(src string, ratio xy.Number, macros map[string]*amprocessor.ApertureMacro) (code int, ap Aperture, warnings []string, err error) {
	if !strings.HasPrefix(src, "D") {
		return 0, nil, nil, fmt.Errorf("%w: %q", ErrBadDefinition, src)
	}
	i := 1
	for i < len(src) && src[i] >= '0' && src[i] <= '9' {
		i++
	}
	code, err = strconv.Atoi(src[1:i])
	if err != nil {
		return 0, nil, nil, fmt.Errorf("%w: bad aperture number in %q", ErrBadDefinition, src)
	}
	name, rawParams, _ := strings.Cut(src[i:], ",")
	if len(name) == 0 {
		return code, nil, nil, fmt.Errorf("%w: no shape in %q", ErrBadDefinition, src)
	}
	var params []xy.Number
	if len(rawParams) > 0 {
		for _, s := range strings.Split(rawParams, "X") {
			v, err := xy.ParseNumber(s)
			if err != nil {
				return code, nil, nil, fmt.Errorf("%w: bad parameter %q", ErrBadDefinition, s)
			}
			params = append(params, v)
		}
	}
	size := func(i int) int { return params[i].Mul(ratio).Microns() }
	need := func(min, max int) error {
		if len(params) < min || len(params) > max {
			return fmt.Errorf("%w: %s aperture D%d takes %d..%d parameters, got %d", ErrBadDefinition, name, code, min, max, len(params))
		}
		return nil
	}

	if am, ok := macros[name]; ok {
		prims, w, err := am.Instantiate(params)
		if err != nil {
			return code, nil, w, err
		}
		return code, Macro{Name: name, Primitives: prims}, w, nil
	}

	switch name {
	case "C":
		if err = need(1, 2); err != nil {
			return code, nil, nil, err
		}
		ap = Circular{size(0)}
		if len(params) > 1 {
			warnings = append(warnings, "hole in circle aperture is ignored")
		}
	case "R":
		if err = need(2, 3); err != nil {
			return code, nil, nil, err
		}
		ap = Rectangular{size(0), size(1)}
		if len(params) > 2 {
			warnings = append(warnings, "hole in rectangle aperture is ignored")
		}
	case "O":
		if err = need(2, 3); err != nil {
			return code, nil, nil, err
		}
		ap = Oval{size(0), size(1)}
		if len(params) > 2 {
			warnings = append(warnings, "hole in oval aperture is ignored")
		}
	case "OC8":
		if err = need(1, 1); err != nil {
			return code, nil, nil, err
		}
		ap = Octagonal{size(0)}
	case "P":
		return code, nil, nil, ErrPolygon
	default:
		return code, nil, nil, fmt.Errorf("%w %q", ErrUnknownShape, name)
	}
	return code, ap, warnings, nil
}
