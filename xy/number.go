package xy

import (
	"github.com/shopspring/decimal"
)

// Number is an exact decimal value. All coordinates and aperture sizes are
// decoded into Numbers before they are scaled to micrometres, so no binary
// floating point rounding is ever involved in decoding.
type Number struct {
	d decimal.Decimal
}

var (
	// MMRatio scales millimetres to millimetres.
	MMRatio = NewNumber(1)
	// InchRatio scales inches to millimetres.
	InchRatio = MustParseNumber("25.4")
)

func NewNumber(i int64) Number {
	return Number{decimal.NewFromInt(i)}
}

func NumberFromDecimal(d decimal.Decimal) Number {
	return Number{d}
}

// ParseNumber parses a plain decimal string like "-12.0340".
func ParseNumber(s string) (Number, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, err
	}
	return Number{d}, nil
}

func MustParseNumber(s string) Number {
	n, err := ParseNumber(s)
	if err != nil {
		panic("xy: bad number " + s)
	}
	return n
}

func (n Number) Add(m Number) Number { return Number{n.d.Add(m.d)} }
func (n Number) Sub(m Number) Number { return Number{n.d.Sub(m.d)} }
func (n Number) Mul(m Number) Number { return Number{n.d.Mul(m.d)} }
func (n Number) Neg() Number { return Number{n.d.Neg()} }

func (n Number) Equal(m Number) bool { return n.d.Equal(m.d) }
func (n Number) Cmp(m Number) int { return n.d.Cmp(m.d) }
func (n Number) IsZero() bool { return n.d.IsZero() }
func (n Number) IsNegative() bool { return n.d.IsNegative() }

func (n Number) Decimal() decimal.Decimal { return n.d }

func (n Number) String() string { return n.d.String() }

// Float returns the nearest float64, for trigonometry only.
func (n Number) Float() float64 {
	return n.d.InexactFloat64()
}

// Microns converts a millimetre value into the shared integer unit,
// truncating toward zero.
func (n Number) Microns() int {
	return int(n.d.Shift(3).IntPart())
}

// RoundedMicrons converts a millimetre value into micrometres rounded to the
// nearest multiple of step.
func (n Number) RoundedMicrons(step int) int {
	if step <= 1 {
		return int(n.d.Shift(3).Round(0).IntPart())
	}
	s := decimal.NewFromInt(int64(step))
	return int(n.d.Shift(3).Div(s).Round(0).Mul(s).IntPart())
}
