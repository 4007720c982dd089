/*
Package gerbparser turns an RS-274X stream into an ordered list of drawing
primitives.
*/
package gerbparser

import (
	"errors"
	"fmt"
	"io"

	"github.com/cncgen/cirqwizard/apertures"
	"github.com/cncgen/cirqwizard/gerberdatamodel"
	"github.com/cncgen/cirqwizard/gerberlexer"
	"github.com/golang/glog"

	. "github.com/cncgen/cirqwizard/gerberbasetypes"
)

var (
	ErrUnknownGCode      = errors.New("unknown G-code")
	ErrUnknownMCode      = errors.New("unknown M-code")
	ErrUndefinedAperture = errors.New("undefined aperture")
	ErrUnknownParameter  = errors.New("unknown parameter")
	ErrRegionAlreadyOpen = errors.New("region is already open")
)

// ParseError aborts a parse. It names the offending block.
type ParseError struct {
	Block int
	Text  string
	What  string
	Err   error
}

func newParseError(blk gerberlexer.Block, err error, what string) *ParseError {
	return &ParseError{Block: blk.Number, Text: blk.Text, What: what, Err: err}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gerber block %d (%q): %v: %s", e.Block, e.Text, e.Err, e.What)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type Options struct {
	// StrictParameters makes an unknown parameter keyword a fatal error.
	StrictParameters bool
}

type Result struct {
	Primitives  []gerberdatamodel.Primitive
	Diagnostics Diagnostics
	// aperture table as it was at the end of the parse
	Apertures map[int]apertures.Aperture
	Blocks    int
}

// Parse reads the whole stream. On a fatal error the primitives decoded so
// far are returned together with a *ParseError.
func Parse(r io.Reader, opts Options) (Result, error) {
	var res Result
	lx := gerberlexer.NewReader(r)
	st := NewState()

	for !st.Stopped {
		blk, err := lx.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, err
		}
		res.Blocks++
		next, out, err := st.Step(blk, opts)
		for _, d := range out.Diagnostics {
			logDiagnostic(d)
		}
		res.Diagnostics = append(res.Diagnostics, out.Diagnostics...)
		if err != nil {
			glog.Errorln(err)
			res.Apertures = st.Apertures
			return res, err
		}
		res.Primitives = append(res.Primitives, out.Primitives...)
		st = next
	}
	if st.Region != nil {
		d := Diagnostic{Severity: SeverityWarning, Block: st.Region.G36StringNumber, Message: "region is not closed at end of file, discarded"}
		logDiagnostic(d)
		res.Diagnostics = append(res.Diagnostics, d)
	}
	glog.V(1).Infof("gerber: %d blocks, %d primitives, %d diagnostics", res.Blocks, len(res.Primitives), len(res.Diagnostics))
	res.Apertures = st.Apertures
	return res, nil
}

func logDiagnostic(d Diagnostic) {
	if d.Severity == SeverityInfo {
		glog.V(1).Infoln(d.String())
		return
	}
	glog.Warningln(d.String())
}
