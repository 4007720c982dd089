/*
################################## State machine ######################################
*/
package gerbparser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cncgen/cirqwizard/amprocessor"
	"github.com/cncgen/cirqwizard/apertures"
	"github.com/cncgen/cirqwizard/gerberdatamodel"
	"github.com/cncgen/cirqwizard/gerberlexer"
	"github.com/cncgen/cirqwizard/regions"
	"github.com/cncgen/cirqwizard/xy"

	. "github.com/cncgen/cirqwizard/gerberbasetypes"
)

/*
	The State object holds every modal value of the parser between two blocks.
	Step never modifies its receiver: it returns the state for the next block.
	Tables are copied on write, so an earlier State keeps seeing the tables it
	was created with.
*/
type State struct {
	X, Y          xy.Number // current point, already scaled to millimetres
	Exposure      Exposure
	Interpolation IPmode
	QMode         QuadMode
	Polarity      PolType
	Ratio         xy.Number
	Format        xy.FormatSpec
	ApertureCode  int                // 0 if none is selected
	Aperture      apertures.Aperture // nil if none is selected or the selected one is unsupported
	Region        *regions.Region    // nil if no region is open
	Apertures     map[int]apertures.Aperture
	Unsupported   map[int]string // apertures defined with a shape that is not supported
	Macros        map[string]*amprocessor.ApertureMacro
	Stopped       bool

	// macro whose body the current parameter section defines
	macro *amprocessor.ApertureMacro
}

func NewState() State {
	return State{
		X:           xy.NewNumber(0),
		Y:           xy.NewNumber(0),
		Exposure:    ExposureOff,
		Ratio:       xy.MMRatio,
		Format:      xy.DefaultFormat(),
		Apertures:   map[int]apertures.Aperture{},
		Unsupported: map[int]string{},
		Macros:      map[string]*amprocessor.ApertureMacro{},
	}
}

// Output is what a single block produced.
type Output struct {
	Primitives  []gerberdatamodel.Primitive
	Diagnostics Diagnostics
}

func (out *Output) emit(p gerberdatamodel.Primitive) {
	out.Primitives = append(out.Primitives, p)
}

func (out *Output) add(sev Severity, blk gerberlexer.Block, msg string) {
	out.Diagnostics = append(out.Diagnostics, Diagnostic{Severity: sev, Block: blk.Number, Text: blk.Text, Message: msg})
}

// diagnostic print
func (st State) String() string {
	ap := "<nil>"
	if st.Aperture != nil {
		ap = "D" + strconv.Itoa(st.ApertureCode) + " " + st.Aperture.String()
	}
	return fmt.Sprintf("point (%s,%s) %s, %s, %s, aperture %s, format %s, region open: %v",
		st.X, st.Y, st.Exposure, st.Interpolation, st.QMode, ap, st.Format, st.Region.IsRegionOpened())
}

// Step applies one block. A fatal problem is returned as *ParseError; a
// recoverable one leaves the state unchanged and is reported in Output.
func (st State) Step(blk gerberlexer.Block, opts Options) (State, Output, error) {
	if blk.Kind == gerberlexer.ParameterBlock {
		return st.parameter(blk, opts)
	}
	st.macro = nil
	return st.data(blk)
}

func isComment(text string) bool {
	if strings.HasPrefix(text, "G04") {
		return true
	}
	return strings.HasPrefix(text, "G4") && (len(text) == 2 || text[2] < '0' || text[2] > '9')
}

func (st State) data(blk gerberlexer.Block) (State, Output, error) {
	var out Output
	if isComment(blk.Text) || len(blk.Text) == 0 {
		return st, out, nil
	}
	fields, err := gerberlexer.ExtractLetterDelimitedFields(blk.Text, "GMDXYIJ")
	if err != nil {
		out.add(SeverityWarning, blk, "malformed block skipped: "+err.Error())
		return st, out, nil
	}

	prev := st
	next := st
	skip := func(msg string) (State, Output, error) {
		out.Primitives = nil
		out.add(SeverityWarning, blk, "malformed block skipped: "+msg)
		return prev, out, nil
	}
	var coords = map[byte]xy.Number{}
	var operation bool
	seen := map[byte]bool{}
	for _, f := range fields {
		if f.Letter != 'G' && seen[f.Letter] {
			return skip("repeated " + string(f.Letter) + " field")
		}
		seen[f.Letter] = true
		switch f.Letter {
		case 'X', 'Y', 'I', 'J':
			v, err := next.Format.Decode(f.Value, next.Ratio)
			if err != nil {
				return skip(err.Error())
			}
			coords[f.Letter] = v
			continue
		}
		code, err := strconv.Atoi(f.Value)
		if err != nil || code < 0 {
			return skip("bad code " + f.String())
		}
		switch f.Letter {
		case 'G':
			var region gerberdatamodel.Primitive
			next, region, err = next.gCode(code, blk, &out)
			if err != nil {
				return prev, out, err
			}
			if region != nil {
				out.Primitives = append(out.Primitives, region)
			}
		case 'M':
			if code != 2 {
				return prev, out, newParseError(blk, ErrUnknownMCode, "M"+f.Value)
			}
			if next.Region != nil {
				out.add(SeverityWarning, blk, "end of program inside an open region, region discarded")
				next.Region = nil
			}
			next.Stopped = true
			return next, out, nil
		case 'D':
			switch code {
			case 1:
				next.Exposure = ExposureOn
				operation = true
			case 2:
				next.Exposure = ExposureOff
				operation = true
			case 3:
				next.Exposure = ExposureFlash
				operation = true
			default:
				return next.selectAperture(code, blk, out)
			}
		}
	}

	if len(coords) == 0 && !operation {
		return next, out, nil
	}
	newX, newY := next.X, next.Y
	if v, ok := coords['X']; ok {
		newX = v
	}
	if v, ok := coords['Y']; ok {
		newY = v
	}
	moved := !newX.Equal(next.X) || !newY.Equal(next.Y)
	from := xy.PointOf(next.X, next.Y)
	to := xy.PointOf(newX, newY)

	switch {
	case next.Region != nil:
		if next.Exposure == ExposureOn && moved {
			if next.Interpolation != IPModeLinear {
				out.add(SeverityWarning, blk, "arc inside a region is approximated by a straight segment")
			}
			next.Region = next.Region.AddSegment(from, to)
		}
	case next.Aperture != nil:
		switch {
		case next.Exposure == ExposureFlash:
			out.emit(gerberdatamodel.Flash{Point: to, Aperture: next.Aperture})
		case next.Exposure == ExposureOn && next.Interpolation == IPModeLinear && moved:
			out.emit(gerberdatamodel.LinearShape{From: from, To: to, Aperture: next.Aperture})
		case next.Exposure == ExposureOn && next.Interpolation != IPModeLinear:
			_, hasI := coords['I']
			_, hasJ := coords['J']
			if !moved && !hasI && !hasJ {
				break
			}
			if next.QMode == QuadModeSingle {
				out.add(SeverityWarning, blk, "single quadrant arc is approximated by a straight segment")
				if moved {
					out.emit(gerberdatamodel.LinearShape{From: from, To: to, Aperture: next.Aperture})
				}
				break
			}
			i, j := xy.NewNumber(0), xy.NewNumber(0)
			if v, ok := coords['I']; ok {
				i = v
			}
			if v, ok := coords['J']; ok {
				j = v
			}
			out.emit(gerberdatamodel.CircularShape{
				Arc: xy.Arc{
					From:      from,
					To:        to,
					Center:    xy.PointOf(next.X.Add(i), next.Y.Add(j)),
					Clockwise: next.Interpolation == IPModeCwC,
				},
				Aperture: next.Aperture,
			})
		}
	}
	next.X, next.Y = newX, newY
	return next, out, nil
}

func (st State) gCode(code int, blk gerberlexer.Block, out *Output) (State, gerberdatamodel.Primitive, error) {
	switch code {
	case 1:
		st.Interpolation = IPModeLinear
	case 2:
		st.Interpolation = IPModeCwC
	case 3:
		st.Interpolation = IPModeCCwC
	case 4, 54, 55, 90:
	case 36:
		if st.Region != nil {
			return st, nil, newParseError(blk, ErrRegionAlreadyOpen, "G36")
		}
		st.Region = regions.NewRegion(blk.Number)
	case 37:
		if st.Region == nil {
			out.add(SeverityWarning, blk, "G37 without an open region ignored")
			return st, nil, nil
		}
		region, err := st.Region.Close(blk.Number)
		st.Region = nil
		if err != nil {
			return st, nil, newParseError(blk, err, "G37")
		}
		if len(region.Segments) == 0 {
			out.add(SeverityWarning, blk, "empty region ignored")
			return st, nil, nil
		}
		return st, region, nil
	case 70:
		st.Ratio = xy.InchRatio
	case 71:
		st.Ratio = xy.MMRatio
	case 74:
		st.QMode = QuadModeSingle
	case 75:
		st.QMode = QuadModeMulti
	default:
		return st, nil, newParseError(blk, ErrUnknownGCode, "G"+strconv.Itoa(code))
	}
	return st, nil, nil
}

func (st State) selectAperture(code int, blk gerberlexer.Block, out Output) (State, Output, error) {
	if ap, ok := st.Apertures[code]; ok {
		st.ApertureCode = code
		st.Aperture = ap
		return st, out, nil
	}
	if shape, ok := st.Unsupported[code]; ok {
		out.add(SeverityWarning, blk, "aperture D"+strconv.Itoa(code)+" has unsupported shape "+shape+", nothing is drawn with it")
		st.ApertureCode = code
		st.Aperture = nil
		return st, out, nil
	}
	return st, out, newParseError(blk, ErrUndefinedAperture, "D"+strconv.Itoa(code))
}

/*
	Parameters
*/

var obsoleteParameters = map[string]string{
	"OF": "image offset",
	"IP": "image polarity",
	"IN": "image name",
	"LN": "load name",
	"AS": "axis select",
	"MI": "mirror image",
	"SF": "scale factor",
	"IR": "image rotation",
	"TF": "file attribute",
	"TA": "aperture attribute",
	"TO": "object attribute",
	"TD": "attribute delete",
}

func (st State) parameter(blk gerberlexer.Block, opts Options) (State, Output, error) {
	var out Output
	text := blk.Text
	if blk.SectionStart {
		st.macro = nil
	}
	if st.macro != nil {
		warnings, err := st.macro.Accept(text, st.Ratio)
		for _, w := range warnings {
			out.add(SeverityWarning, blk, "macro "+st.macro.Name+": "+w)
		}
		if err != nil {
			out.add(SeverityWarning, blk, "macro "+st.macro.Name+": "+err.Error())
		}
		return st, out, nil
	}
	if len(text) < 2 {
		out.add(SeverityWarning, blk, "malformed parameter skipped")
		return st, out, nil
	}

	keyword := text[:2]
	switch keyword {
	case "FS":
		fs, err := parseFormat(text)
		if err != nil {
			out.add(SeverityWarning, blk, err.Error())
			return st, out, nil
		}
		st.Format = fs
	case "MO":
		switch text[2:] {
		case "MM":
			st.Ratio = xy.MMRatio
		case "IN":
			st.Ratio = xy.InchRatio
		default:
			out.add(SeverityWarning, blk, "unknown unit "+strconv.Quote(text[2:]))
		}
	case "AD":
		code, ap, warnings, err := apertures.Parse(text[2:], st.Ratio, st.Macros)
		for _, w := range warnings {
			out.add(SeverityWarning, blk, w)
		}
		switch {
		case errors.Is(err, apertures.ErrPolygon):
			out.add(SeverityWarning, blk, "aperture D"+strconv.Itoa(code)+": "+err.Error())
			st.Unsupported = copyUnsupported(st.Unsupported)
			st.Unsupported[code] = "P"
		case err != nil:
			out.add(SeverityWarning, blk, err.Error())
		default:
			if _, ok := st.Apertures[code]; ok {
				out.add(SeverityWarning, blk, "aperture D"+strconv.Itoa(code)+" redefined")
			}
			st.Apertures = copyApertures(st.Apertures)
			st.Apertures[code] = ap
		}
	case "AM":
		name := text[2:]
		if len(name) == 0 {
			out.add(SeverityWarning, blk, "aperture macro without a name")
			return st, out, nil
		}
		st.macro = amprocessor.NewApertureMacro(name)
		st.Macros = copyMacros(st.Macros)
		st.Macros[name] = st.macro
	case "LP":
		if text == "LPC" {
			st.Polarity = PolTypeClear
			out.add(SeverityWarning, blk, "clear polarity is not supported, following objects are treated as dark")
		} else {
			st.Polarity = PolTypeDark
		}
	default:
		if what, ok := obsoleteParameters[keyword]; ok {
			out.add(SeverityInfo, blk, keyword+" ("+what+") is ignored")
			return st, out, nil
		}
		if opts.StrictParameters {
			return st, out, newParseError(blk, ErrUnknownParameter, keyword)
		}
		out.add(SeverityWarning, blk, "unknown parameter "+keyword+" skipped")
	}
	return st, out, nil
}

// "FSLAX24Y24": zero omission, notation, then X and Y digit counts
func parseFormat(text string) (xy.FormatSpec, error) {
	bad := fmt.Errorf("bad format specification %q", text)
	if len(text) < 3 {
		return xy.FormatSpec{}, bad
	}
	xPos := strings.IndexByte(text, 'X')
	if xPos < 0 || xPos+2 >= len(text) {
		return xy.FormatSpec{}, bad
	}
	i, d := text[xPos+1], text[xPos+2]
	if i < '0' || i > '9' || d < '0' || d > '9' {
		return xy.FormatSpec{}, bad
	}
	return xy.FormatSpec{
		OmitLeadingZeros: text[2] == 'L',
		IntDigits:        int(i - '0'),
		DecDigits:        int(d - '0'),
	}, nil
}

func copyApertures(m map[int]apertures.Aperture) map[int]apertures.Aperture {
	c := make(map[int]apertures.Aperture, len(m)+1)
	for k, v := range m {
		c[k] = v
	}
	return c
}

func copyUnsupported(m map[int]string) map[int]string {
	c := make(map[int]string, len(m)+1)
	for k, v := range m {
		c[k] = v
	}
	return c
}

func copyMacros(m map[string]*amprocessor.ApertureMacro) map[string]*amprocessor.ApertureMacro {
	c := make(map[string]*amprocessor.ApertureMacro, len(m)+1)
	for k, v := range m {
		c[k] = v
	}
	return c
}
