package gerbparser

import (
	"errors"
	"strings"
	"testing"

	"github.com/cncgen/cirqwizard/amprocessor"
	"github.com/cncgen/cirqwizard/apertures"
	"github.com/cncgen/cirqwizard/gerberbasetypes"
	"github.com/cncgen/cirqwizard/gerberdatamodel"
	"github.com/cncgen/cirqwizard/gerberlexer"
	"github.com/cncgen/cirqwizard/xy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) Result {
	t.Helper()
	res, err := Parse(strings.NewReader(src), Options{})
	require.NoError(t, err)
	return res
}

func TestParse_LinesAndFlashes(t *testing.T) {
	res := parse(t, `G04 test*
%FSLAX24Y24*%
%MOMM*%
%ADD10C,0.5*%
%ADD11R,1.2X0.6*%
D10*
X0Y0D02*
X10000Y0D01*
Y10000D01*
G54D11*
X20000Y20000D03*
G01*
M02*
`)
	want := []gerberdatamodel.Primitive{
		gerberdatamodel.LinearShape{From: xy.Pt(0, 0), To: xy.Pt(1000, 0), Aperture: apertures.Circular{Diameter: 500}},
		gerberdatamodel.LinearShape{From: xy.Pt(1000, 0), To: xy.Pt(1000, 1000), Aperture: apertures.Circular{Diameter: 500}},
		gerberdatamodel.Flash{Point: xy.Pt(2000, 2000), Aperture: apertures.Rectangular{Width: 1200, Height: 600}},
	}
	assert.Equal(t, want, res.Primitives)
	assert.Empty(t, res.Diagnostics)
	assert.Len(t, res.Apertures, 2)
}

func TestParse_InchDefaults(t *testing.T) {
	res := parse(t, "%MOIN*%%ADD10C,0.01*%D10*X4116Y4667D03*D03*M02*")
	require.Len(t, res.Primitives, 2)
	assert.Equal(t, gerberdatamodel.Flash{Point: xy.Pt(10454, 11854), Aperture: apertures.Circular{Diameter: 254}}, res.Primitives[0])
	// D03 without coordinates flashes again at the current point
	assert.Equal(t, res.Primitives[0], res.Primitives[1])
}

func TestParse_LegacyUnits(t *testing.T) {
	res := parse(t, "G70*%ADD10C,0.01*%G71*D10*X10000Y0D03*M02*")
	require.Len(t, res.Primitives, 1)
	f := res.Primitives[0].(gerberdatamodel.Flash)
	assert.Equal(t, 254, f.Aperture.(apertures.Circular).Diameter)
	assert.Equal(t, xy.Pt(1000, 0), f.Point)
}

func TestParse_Region(t *testing.T) {
	res := parse(t, `%FSLAX24Y24*%%MOMM*%
G36*
X0Y0D02*
G01X10000Y0D01*
X10000Y10000D01*
X10000Y10000D01*
X0Y10000D01*
X0Y0D01*
G37*
M02*`)
	require.Len(t, res.Primitives, 1)
	region, ok := res.Primitives[0].(gerberdatamodel.Region)
	require.True(t, ok)
	require.Len(t, region.Segments, 4)
	assert.Equal(t, gerberdatamodel.LinearShape{From: xy.Pt(0, 1000), To: xy.Pt(0, 0)}, region.Segments[3])
	assert.Empty(t, res.Diagnostics)
}

func TestParse_RegionEdgeCases(t *testing.T) {
	res := parse(t, "G37*M02*")
	assert.Empty(t, res.Primitives)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, gerberbasetypes.SeverityWarning, res.Diagnostics[0].Severity)
	assert.Equal(t, 1, res.Diagnostics[0].Block)

	res, err := Parse(strings.NewReader("G36*X0Y0D02*X10000D01*G36*X0Y0D01*G37*"), Options{})
	assert.ErrorIs(t, err, ErrRegionAlreadyOpen)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 4, pe.Block)
	assert.Empty(t, res.Primitives)

	res = parse(t, "G36*X0Y0D02*X10000D01*")
	assert.Empty(t, res.Primitives)
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "not closed")
}

func TestParse_FatalErrors(t *testing.T) {
	cases := []struct {
		src   string
		err   error
		block int
	}{
		{"%MOMM*%\nG99*", ErrUnknownGCode, 2},
		{"G91*", ErrUnknownGCode, 1},
		{"%MOMM*%M05*", ErrUnknownMCode, 2},
		{"%ADD10C,1*%D11*", ErrUndefinedAperture, 2},
	}
	for _, c := range cases {
		_, err := Parse(strings.NewReader(c.src), Options{})
		require.ErrorIs(t, err, c.err, c.src)
		var pe *ParseError
		require.True(t, errors.As(err, &pe), c.src)
		assert.Equal(t, c.block, pe.Block, c.src)
	}
}

func TestParse_PartialOutputOnFatal(t *testing.T) {
	res, err := Parse(strings.NewReader("%ADD10C,1*%D10*X0Y0D03*G99*X10000Y0D03*"), Options{})
	assert.ErrorIs(t, err, ErrUnknownGCode)
	assert.Len(t, res.Primitives, 1)
}

func TestParse_Parameters(t *testing.T) {
	res := parse(t, "%OFA0B0*%%IPPOS*%%TF.FileFunction,Copper*%%XY12*%%LPC*%M02*")
	require.Len(t, res.Diagnostics, 5)
	assert.Equal(t, gerberbasetypes.SeverityInfo, res.Diagnostics[0].Severity)
	assert.Equal(t, gerberbasetypes.SeverityInfo, res.Diagnostics[1].Severity)
	assert.Equal(t, gerberbasetypes.SeverityInfo, res.Diagnostics[2].Severity)
	assert.Contains(t, res.Diagnostics[3].Message, "unknown parameter XY")
	assert.Contains(t, res.Diagnostics[4].Message, "clear polarity")

	_, err := Parse(strings.NewReader("%XY12*%"), Options{StrictParameters: true})
	assert.ErrorIs(t, err, ErrUnknownParameter)
}

func TestParse_MacroOutlineWarning(t *testing.T) {
	res := parse(t, `%FSLAX24Y24*%%MOMM*%
%AMOPEN*
0 open triangle*
4,1,3,0,0,1,0,1,1,0,1,0*%
%ADD20OPEN*%
D20*X0Y0D03*M02*`)
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "not closed")
	require.Len(t, res.Primitives, 1)
	m := res.Primitives[0].(gerberdatamodel.Flash).Aperture.(apertures.Macro)
	require.Len(t, m.Primitives, 1)
	assert.Len(t, m.Primitives[0].(amprocessor.AMPrimitiveOutLine).Points, 3)
}

func TestParse_MacroWithParameters(t *testing.T) {
	res := parse(t, `%MOMM*%
%AMRECT*
$3=$1x2*
21,1,$3,$2,0,0,0*%
%ADD21RECT,0.5X0.25*%
D21*X0Y0D03*M02*`)
	require.Len(t, res.Primitives, 1)
	w, h := res.Primitives[0].(gerberdatamodel.Flash).Aperture.Size()
	assert.Equal(t, 1000, w)
	assert.Equal(t, 250, h)
}

func TestParse_MalformedBlockIsSkipped(t *testing.T) {
	res := parse(t, "%ADD10C,1*%D10*X12a4D03*X10000Y10000D03*X1-2Y3D03*M02*")
	require.Len(t, res.Primitives, 1)
	assert.Equal(t, xy.Pt(1000, 1000), res.Primitives[0].(gerberdatamodel.Flash).Point)
	assert.Len(t, res.Diagnostics, 2)
}

func TestParse_Arcs(t *testing.T) {
	res := parse(t, `%FSLAX24Y24*%%MOMM*%%ADD10C,0.1*%D10*
X10000Y0D02*
G75*
G03X0Y10000I-10000J0D01*
G74*
G02X10000Y0I10000J0D01*
M02*`)
	require.Len(t, res.Primitives, 2)
	assert.Equal(t, gerberdatamodel.CircularShape{
		Arc:      xy.Arc{From: xy.Pt(1000, 0), To: xy.Pt(0, 1000), Center: xy.Pt(0, 0)},
		Aperture: apertures.Circular{Diameter: 100},
	}, res.Primitives[0])
	assert.Equal(t, gerberdatamodel.LinearShape{From: xy.Pt(0, 1000), To: xy.Pt(1000, 0), Aperture: apertures.Circular{Diameter: 100}}, res.Primitives[1])
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "single quadrant")
}

func TestParse_PolygonAperture(t *testing.T) {
	res := parse(t, "%ADD12P,1X6*%D12*X0Y0D03*M02*")
	assert.Empty(t, res.Primitives)
	assert.Len(t, res.Diagnostics, 2)
}

func TestParse_StopsAtM02(t *testing.T) {
	res := parse(t, "%ADD10C,1*%D10*X0Y0D03*M02*G99*X1D03*")
	assert.Len(t, res.Primitives, 1)
	assert.Equal(t, 4, res.Blocks)
}

func TestState_StepIsFunctional(t *testing.T) {
	st := NewState()
	st2, out, err := st.Step(gerberlexer.Block{Kind: gerberlexer.ParameterBlock, Text: "ADD10C,0.5", Number: 1, SectionStart: true}, Options{})
	require.NoError(t, err)
	assert.Empty(t, out.Diagnostics)
	assert.Len(t, st.Apertures, 0)
	assert.Len(t, st2.Apertures, 1)

	st3, _, err := st2.Step(gerberlexer.Block{Kind: gerberlexer.DataBlock, Text: "D10", Number: 2}, Options{})
	require.NoError(t, err)
	assert.Nil(t, st2.Aperture)
	assert.Equal(t, apertures.Circular{Diameter: 500}, st3.Aperture)

	st4, out, err := st3.Step(gerberlexer.Block{Kind: gerberlexer.DataBlock, Text: "X10000Y5000D03", Number: 3}, Options{})
	require.NoError(t, err)
	require.Len(t, out.Primitives, 1)
	assert.True(t, st3.X.IsZero())
	assert.True(t, st4.X.Equal(xy.NewNumber(1)))
	assert.True(t, st4.Y.Equal(xy.MustParseNumber("0.5")))
	assert.Equal(t, gerberbasetypes.ExposureFlash, st4.Exposure)
}
