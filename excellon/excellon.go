/*
Package excellon reads NC drill files into an ordered list of drill points.

Several CAD dialects are accepted. The header (M48 up to '%' or M95) holds
the unit, the zero omission mode and the tool table; the body selects tools
and lists hole positions. X and Y are modal: a block with only one axis keeps
the other one.
*/
package excellon

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/akavel/polyclip-go"
	"github.com/cncgen/cirqwizard/gerberlexer"
	"github.com/cncgen/cirqwizard/xy"
	"github.com/golang/glog"

	. "github.com/cncgen/cirqwizard/gerberbasetypes"
)

type Options struct {
	// diameter used for a tool missing from the tool table, micrometres
	FallbackToolDiameter int
	// tool diameters are rounded to a multiple of this, micrometres
	DiameterStep int
}

func DefaultOptions() Options {
	return Options{FallbackToolDiameter: 1300, DiameterStep: 100}
}

// DrillPoint is one hole. Coordinates and diameter are in micrometres.
type DrillPoint struct {
	Point        xy.Point
	ToolDiameter int
}

func (dp DrillPoint) String() string {
	return fmt.Sprintf("%v d=%d", dp.Point, dp.ToolDiameter)
}

type Result struct {
	Points      []DrillPoint
	Diagnostics Diagnostics
	// tool table, tool number to diameter in micrometres
	Tools map[int]int
	Lines int
}

func inchFormat() xy.FormatSpec {
	return xy.FormatSpec{OmitLeadingZeros: true, IntDigits: 2, DecDigits: 4}
}

func metricFormat() xy.FormatSpec {
	return xy.FormatSpec{OmitLeadingZeros: false, IntDigits: 3, DecDigits: 3}
}

type parser struct {
	opts   Options
	res    Result
	line   int
	text   string
	header bool
	ratio  xy.Number
	format xy.FormatSpec
	tool   int // 0 if none is selected
	warned map[int]bool
	x, y   xy.Number
	done   bool
}

// Parse reads the stream up to M30 or EOF. Drill files never abort on
// content problems; those are reported in Result.Diagnostics. The error is
// only set when reading fails.
func Parse(r io.Reader, opts Options) (Result, error) {
	if opts.DiameterStep <= 0 {
		opts.DiameterStep = DefaultOptions().DiameterStep
	}
	if opts.FallbackToolDiameter <= 0 {
		opts.FallbackToolDiameter = DefaultOptions().FallbackToolDiameter
	}
	p := &parser{
		opts:   opts,
		ratio:  xy.InchRatio,
		format: inchFormat(),
		warned: map[int]bool{},
		x:      xy.NewNumber(0),
		y:      xy.NewNumber(0),
	}
	p.res.Tools = map[int]int{}

	sc := bufio.NewScanner(r)
	for sc.Scan() && !p.done {
		p.line++
		p.text = strings.TrimSpace(sc.Text())
		p.block()
	}
	p.res.Lines = p.line
	if err := sc.Err(); err != nil {
		glog.Errorln(err)
		return p.res, fmt.Errorf("reading drill file at line %d: %w", p.line, err)
	}
	glog.V(1).Infof("excellon: %d lines, %d tools, %d points, %d diagnostics",
		p.line, len(p.res.Tools), len(p.res.Points), len(p.res.Diagnostics))
	return p.res, nil
}

func (p *parser) diag(sev Severity, msg string) {
	d := Diagnostic{Severity: sev, Block: p.line, Text: p.text, Message: msg}
	if sev == SeverityInfo {
		glog.V(1).Infoln(d.String())
	} else {
		glog.Warningln(d.String())
	}
	p.res.Diagnostics = append(p.res.Diagnostics, d)
}

func (p *parser) block() {
	text := p.text
	switch {
	case len(text) == 0, text[0] == ';':
		return
	case text == "M48":
		p.header = true
		return
	case text == "%", text == "M95":
		p.header = false
		return
	case text == "M30", text == "M00":
		p.done = true
		return
	case text == "M71":
		p.setUnits(xy.MMRatio, metricFormat())
		return
	case text == "M72":
		p.setUnits(xy.InchRatio, inchFormat())
		return
	case strings.HasPrefix(text, "INCH"):
		p.unitDirective(xy.InchRatio, inchFormat(), text[4:])
		return
	case strings.HasPrefix(text, "METRIC"):
		p.unitDirective(xy.MMRatio, metricFormat(), text[6:])
		return
	case text[0] == 'T':
		p.toolBlock()
		return
	case text[0] == 'M':
		// M15/M16/M17 plunge and retract, M47 message and friends
		return
	case strings.ContainsRune(text, ','):
		// FMAT,1 ICI,OFF VER,1 ...
		glog.V(2).Infof("excellon line %d: directive %q ignored", p.line, text)
		return
	}
	p.coordinateBlock()
}

func (p *parser) setUnits(ratio xy.Number, fs xy.FormatSpec) {
	p.ratio = ratio
	p.format = fs
}

// ",TZ" / ",LZ" name the zeros that are omitted; a digit hint like "00.000"
// sets the number of integer digits.
func (p *parser) unitDirective(ratio xy.Number, fs xy.FormatSpec, rest string) {
	for _, opt := range strings.Split(rest, ",") {
		switch {
		case opt == "":
		case opt == "TZ":
			fs.OmitLeadingZeros = false
		case opt == "LZ":
			fs.OmitLeadingZeros = true
		case strings.Trim(opt, "0") == ".":
			fs.IntDigits = strings.IndexByte(opt, '.')
		default:
			p.diag(SeverityWarning, "unknown unit option "+strconv.Quote(opt))
		}
	}
	p.setUnits(ratio, fs)
}

// T<n> selects a tool, T<n>[F..][S..]C<d> defines it and selects it as well.
func (p *parser) toolBlock() {
	fields, err := gerberlexer.ExtractLetterDelimitedFields(p.text, "TCFSBHZ")
	if err != nil || len(fields) == 0 || fields[0].Letter != 'T' {
		// some generators put coordinates right after the tool number
		if p.toolWithCoordinates() {
			return
		}
		p.diag(SeverityWarning, "malformed tool block skipped")
		return
	}
	num, err := strconv.Atoi(fields[0].Value)
	if err != nil || num < 0 {
		p.diag(SeverityWarning, "bad tool number "+strconv.Quote(fields[0].Value))
		return
	}
	for _, f := range fields[1:] {
		if f.Letter != 'C' {
			continue
		}
		d, err := p.format.Decode(f.Value, p.ratio)
		if err != nil {
			p.diag(SeverityWarning, "bad tool diameter: "+err.Error())
			return
		}
		if _, ok := p.res.Tools[num]; ok {
			p.diag(SeverityWarning, "tool T"+strconv.Itoa(num)+" redefined")
		}
		p.res.Tools[num] = d.RoundedMicrons(p.opts.DiameterStep)
	}
	p.tool = num
}

func (p *parser) toolWithCoordinates() bool {
	i := 1
	for i < len(p.text) && p.text[i] >= '0' && p.text[i] <= '9' {
		i++
	}
	if i == 1 || i == len(p.text) || (p.text[i] != 'X' && p.text[i] != 'Y') {
		return false
	}
	num, _ := strconv.Atoi(p.text[1:i])
	p.tool = num
	p.text = p.text[i:]
	p.coordinateBlock()
	return true
}

func (p *parser) diameter() int {
	if p.tool == 0 {
		if !p.warned[0] {
			p.warned[0] = true
			p.diag(SeverityWarning, fmt.Sprintf("hole without a selected tool, using %d", p.opts.FallbackToolDiameter))
		}
		return p.opts.FallbackToolDiameter
	}
	if d, ok := p.res.Tools[p.tool]; ok {
		return d
	}
	if !p.warned[p.tool] {
		p.warned[p.tool] = true
		p.diag(SeverityWarning, fmt.Sprintf("tool T%d is not defined, using %d", p.tool, p.opts.FallbackToolDiameter))
	}
	return p.opts.FallbackToolDiameter
}

// G00 moves without drilling, G01 and bare coordinates drill. Other G codes
// (G05 drill mode, G81 canned cycle, G90 absolute) carry no information here.
func (p *parser) coordinateBlock() {
	fields, err := gerberlexer.ExtractLetterDelimitedFields(p.text, "GXY")
	if err != nil {
		p.diag(SeverityWarning, "malformed block skipped: "+err.Error())
		return
	}
	x, y := p.x, p.y
	var hasCoords bool
	drill := true
	for _, f := range fields {
		switch f.Letter {
		case 'G':
			code, err := strconv.Atoi(f.Value)
			if err != nil {
				p.diag(SeverityWarning, "bad G code "+strconv.Quote(f.Value))
				return
			}
			switch code {
			case 0:
				drill = false
			case 91:
				p.diag(SeverityWarning, "incremental coordinates are not supported")
			}
		case 'X', 'Y':
			v, err := p.format.Decode(f.Value, p.ratio)
			if err != nil {
				p.diag(SeverityWarning, "malformed block skipped: "+err.Error())
				return
			}
			if f.Letter == 'X' {
				x = v
			} else {
				y = v
			}
			hasCoords = true
		}
	}
	if !hasCoords {
		return
	}
	p.x, p.y = x, y
	if !drill {
		return
	}
	if p.header {
		p.diag(SeverityWarning, "coordinates inside the header ignored")
		return
	}
	p.res.Points = append(p.res.Points, DrillPoint{Point: xy.PointOf(x, y), ToolDiameter: p.diameter()})
}

// Bounds returns the box covering every hole including its radius.
func Bounds(points []DrillPoint) (polyclip.Rectangle, bool) {
	if len(points) == 0 {
		return polyclip.Rectangle{}, false
	}
	poly := make(polyclip.Polygon, 0, len(points))
	for _, dp := range points {
		x, y, r := float64(dp.Point.X), float64(dp.Point.Y), float64(dp.ToolDiameter)/2
		poly.Add(polyclip.Contour{{X: x - r, Y: y - r}, {X: x + r, Y: y - r}, {X: x + r, Y: y + r}, {X: x - r, Y: y + r}})
	}
	return poly.BoundingBox(), true
}

// Move translates every point by d.
func Move(points []DrillPoint, d xy.Point) []DrillPoint {
	retVal := make([]DrillPoint, len(points))
	for i := range points {
		retVal[i] = DrillPoint{Point: points[i].Point.Add(d), ToolDiameter: points[i].ToolDiameter}
	}
	return retVal
}
