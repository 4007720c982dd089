package apertures

import (
	"testing"

	"github.com/cncgen/cirqwizard/amprocessor"
	"github.com/cncgen/cirqwizard/gerberbasetypes"
	"github.com/cncgen/cirqwizard/xy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		src   string
		ratio xy.Number
		code  int
		ap    Aperture
		warns int
	}{
		{"D10C,0.5", xy.MMRatio, 10, Circular{500}, 0},
		{"D10C,0.5X0.2", xy.MMRatio, 10, Circular{500}, 1},
		{"D11R,1.2X0.6", xy.MMRatio, 11, Rectangular{1200, 600}, 0},
		{"D12O,0.06X0.04", xy.InchRatio, 12, Oval{1524, 1016}, 0},
		{"D13OC8,0.8", xy.MMRatio, 13, Octagonal{800}, 0},
		{"D100R,0.00001X1", xy.MMRatio, 100, Rectangular{0, 1000}, 0},
	}
	for _, c := range cases {
		code, ap, w, err := Parse(c.src, c.ratio, nil)
		require.NoError(t, err, c.src)
		assert.Equal(t, c.code, code, c.src)
		assert.Equal(t, c.ap, ap, c.src)
		assert.Len(t, w, c.warns, c.src)
	}
}

func TestParse_Errors(t *testing.T) {
	_, _, _, err := Parse("D14P,1X6", xy.MMRatio, nil)
	assert.ErrorIs(t, err, ErrPolygon)

	_, _, _, err = Parse("D15ZZ,1", xy.MMRatio, nil)
	assert.ErrorIs(t, err, ErrUnknownShape)

	for _, src := range []string{"X10C,1", "DC,1", "D10", "D10C", "D10R,1", "D10C,abc"} {
		_, _, _, err = Parse(src, xy.MMRatio, nil)
		assert.ErrorIs(t, err, ErrBadDefinition, src)
	}
}

func TestParse_Macro(t *testing.T) {
	am := amprocessor.NewApertureMacro("PAD")
	_, err := am.Accept("21,1,$1,$2,0,0,0", xy.MMRatio)
	require.NoError(t, err)
	macros := map[string]*amprocessor.ApertureMacro{"PAD": am}

	code, ap, _, err := Parse("D20PAD,1X0.5", xy.MMRatio, macros)
	require.NoError(t, err)
	assert.Equal(t, 20, code)
	m, ok := ap.(Macro)
	require.True(t, ok)
	assert.Equal(t, gerberbasetypes.AptypeMacro, m.Type())
	w, h := m.Size()
	assert.Equal(t, 1000, w)
	assert.Equal(t, 500, h)
	assert.Equal(t, 500, Width(m))
}

func TestSizes(t *testing.T) {
	w, h := Rectangular{300, 700}.Size()
	assert.Equal(t, []int{300, 700}, []int{w, h})
	assert.Equal(t, 300, Width(Rectangular{300, 700}))
	assert.Equal(t, 250, Width(Circular{250}))
	assert.Equal(t, gerberbasetypes.AptypeOctagon, Octagonal{1}.Type())
}
