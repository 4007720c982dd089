// Base types for Gerber and Excellon parsing and processing
package gerberbasetypes

import (
	"strconv"
)

type GerberApType int

const (
	AptypeCircle GerberApType = iota + 1
	AptypeRectangle
	AptypeObround
	AptypeOctagon
	AptypePoly
	AptypeMacro
)

func (ga GerberApType) String() string {
	switch ga {
	case AptypeCircle:
		return "circle aperture"
	case AptypeRectangle:
		return "rectangle aperture"
	case AptypeObround:
		return "obround (oval) aperture"
	case AptypeOctagon:
		return "octagon aperture"
	case AptypePoly:
		return "polygon aperture"
	case AptypeMacro:
		return "macro aperture"
	default:
	}
	return "Unknown aperture type"
}

// Exposure is set by D01, D02 and D03 and persists until the next one.
type Exposure int

const (
	ExposureOff Exposure = iota
	ExposureOn
	ExposureFlash
)

func (e Exposure) String() string {
	switch e {
	case ExposureOff:
		return "Exposure: off (D02)"
	case ExposureOn:
		return "Exposure: on (D01)"
	case ExposureFlash:
		return "Exposure: flash (D03)"
	default:
	}
	return "Unknown exposure"
}

type QuadMode int

const (
	QuadModeMulti QuadMode = iota
	QuadModeSingle
)

func (q QuadMode) String() string {
	switch q {
	case QuadModeSingle:
		return "QuadMode: Single"
	case QuadModeMulti:
		return "QuadMode: Multi"
	default:
	}
	return "Unknown QuadMode"
}

type IPmode int

const (
	IPModeLinear IPmode = iota
	IPModeCwC
	IPModeCCwC
)

func (ipm IPmode) String() string {
	switch ipm {
	case IPModeLinear:
		return "Linear interpolation"
	case IPModeCwC:
		return "Clockwise interpolation"
	case IPModeCCwC:
		return "Counter-clockwise interpolation"
	default:
	}
	return "Unknown interpolation"
}

type PolType int

const (
	PolTypeDark PolType = iota
	PolTypeClear
)

func (p PolType) String() string {
	switch p {
	case PolTypeDark:
		return "Polarity: dark"
	case PolTypeClear:
		return "Polarity: clear"
	default:
	}
	return "Unknown polarity"
}

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
	}
	return "unknown"
}

// MarshalText lets reports print severities by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic is a non-fatal problem found while processing input.
// Block is the 1-based number of the offending block or line, 0 if none.
type Diagnostic struct {
	Severity Severity `yaml:"severity"`
	Block    int      `yaml:"block,omitempty"`
	Text     string   `yaml:"text,omitempty"`
	Message  string   `yaml:"message"`
}

func (d Diagnostic) String() string {
	s := d.Severity.String()
	if d.Block > 0 {
		s += " at block " + strconv.Itoa(d.Block)
	}
	if len(d.Text) > 0 {
		s += " (" + strconv.Quote(d.Text) + ")"
	}
	return s + ": " + d.Message
}

// Diagnostics is an ordered list of diagnostics.
type Diagnostics []Diagnostic

func (ds Diagnostics) Count(s Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity == s {
			n++
		}
	}
	return n
}
