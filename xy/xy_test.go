package xy

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var formats = []FormatSpec{
	{true, 1, 4}, {true, 2, 4}, {true, 2, 5}, {true, 3, 3}, {true, 3, 5}, {true, 4, 6}, {true, 6, 7},
	{false, 1, 4}, {false, 2, 4}, {false, 2, 5}, {false, 3, 3}, {false, 3, 5}, {false, 4, 6}, {false, 6, 7},
}

// random value representable in fs
func randValue(r *rand.Rand, fs FormatSpec) Number {
	limit := int64(math.Pow10(fs.IntDigits + fs.DecDigits))
	v := NumberFromDecimal(NewNumber(r.Int63n(limit)).Decimal().Shift(int32(-fs.DecDigits)))
	if r.Intn(2) == 1 {
		v = v.Neg()
	}
	return v
}

func TestFormatSpec_DecodeEncodeRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for _, fs := range formats {
		for _, ratio := range []Number{MMRatio, InchRatio} {
			for i := 0; i < 2000; i++ {
				v := randValue(r, fs)
				s, err := fs.Encode(v)
				require.NoError(t, err, "format %s value %s", fs, v)
				got, err := fs.Decode(s, ratio)
				require.NoError(t, err, "format %s field %q", fs, s)
				assert.True(t, got.Equal(v.Mul(ratio)), "format %s: %s -> %q -> %s", fs, v, s, got)
			}
		}
	}
}

func TestFormatSpec_Decode(t *testing.T) {
	cases := []struct {
		fs    FormatSpec
		in    string
		ratio Number
		want  string
	}{
		{DefaultFormat(), "4116", InchRatio, "10.45464"},
		{DefaultFormat(), "-4116", MMRatio, "-0.4116"},
		{DefaultFormat(), "+4116", MMRatio, "0.4116"},
		{FormatSpec{false, 2, 4}, "027638", InchRatio, "70.20052"},
		{FormatSpec{false, 2, 4}, "-059016", InchRatio, "-149.90064"},
		{FormatSpec{false, 2, 4}, "25", MMRatio, "25"},
		{FormatSpec{false, 3, 3}, "0123209", MMRatio, "12.3209"},
		{FormatSpec{true, 3, 3}, "0123209", MMRatio, "12.3209"},
		{FormatSpec{true, 2, 4}, "1.5", MMRatio, "1.5"},
		{FormatSpec{true, 2, 4}, "0", MMRatio, "0"},
	}
	for _, c := range cases {
		got, err := c.fs.Decode(c.in, c.ratio)
		require.NoError(t, err, c.in)
		assert.True(t, got.Equal(MustParseNumber(c.want)), "%s: got %s want %s", c.in, got, c.want)
	}
}

func TestFormatSpec_DecodeErrors(t *testing.T) {
	for _, in := range []string{"", "-", "12a4", "1.2.3", "--12", "1e5"} {
		_, err := DefaultFormat().Decode(in, MMRatio)
		assert.ErrorIs(t, err, ErrBadCoordinate, in)
	}
}

func TestNumber_RatioOneIsIdentity(t *testing.T) {
	n := MustParseNumber("12.345678901234567890")
	for i := 0; i < 100; i++ {
		n = n.Mul(MMRatio)
	}
	assert.True(t, n.Equal(MustParseNumber("12.345678901234567890")))
}

func TestNumber_Microns(t *testing.T) {
	assert.Equal(t, 10454, MustParseNumber("10.45464").Microns())
	assert.Equal(t, -149900, MustParseNumber("-149.90064").Microns())
	assert.Equal(t, 600, MustParseNumber("0.635").RoundedMicrons(100))
	assert.Equal(t, 900, MustParseNumber("0.899922").RoundedMicrons(100))
	assert.Equal(t, 1000, MustParseNumber("1.00076").RoundedMicrons(100))
	assert.Equal(t, 1001, MustParseNumber("1.00076").RoundedMicrons(1))
}

func TestBindAngle(t *testing.T) {
	assert.InDelta(t, 0, BindAngle(0), 1e-12)
	assert.InDelta(t, math.Pi/2, BindAngle(-3*math.Pi/2), 1e-12)
	assert.InDelta(t, math.Pi, BindAngle(5*math.Pi), 1e-12)
	for _, a := range []float64{-100, -2 * math.Pi, 2 * math.Pi, 7, 1e6} {
		b := BindAngle(a)
		assert.True(t, b >= 0 && b < 2*math.Pi, "%v -> %v", a, b)
	}
}

func TestAngleToX(t *testing.T) {
	o := Pt(0, 0)
	assert.InDelta(t, 0, AngleToX(o, Pt(10, 0)), 1e-12)
	assert.InDelta(t, math.Pi/2, AngleToX(o, Pt(0, 10)), 1e-12)
	assert.InDelta(t, math.Pi, AngleToX(o, Pt(-10, 0)), 1e-12)
	assert.InDelta(t, 3*math.Pi/2, AngleToX(o, Pt(0, -10)), 1e-12)
}

func TestLine_Distance(t *testing.T) {
	l := Line{Pt(0, 0), Pt(1000, 0)}
	assert.InDelta(t, 500, l.SignedDistance(Pt(200, 500)), 1e-9)
	assert.InDelta(t, -500, l.SignedDistance(Pt(200, -500)), 1e-9)
	assert.InDelta(t, 500, l.PerpendicularDistance(Pt(5000, -500)), 1e-9)
	assert.InDelta(t, 1000, l.Length(), 1e-9)
	assert.Equal(t, Pt(3, 4), Pt(1, 1).Add(Pt(2, 3)))
	assert.InDelta(t, 5, Pt(0, 0).DistanceTo(Pt(3, 4)), 1e-12)
}

func TestArc_Sweep(t *testing.T) {
	ccw := Arc{From: Pt(1000, 0), To: Pt(0, 1000), Center: Pt(0, 0)}
	assert.InDelta(t, math.Pi/2, ccw.Sweep(), 1e-9)
	cw := ccw
	cw.Clockwise = true
	assert.InDelta(t, 3*math.Pi/2, cw.Sweep(), 1e-9)
	full := Arc{From: Pt(1000, 0), To: Pt(1000, 0), Center: Pt(0, 0)}
	assert.InDelta(t, 2*math.Pi*1000, full.Length(), 1e-6)
}
