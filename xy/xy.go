package xy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrBadCoordinate = errors.New("bad coordinate")

// Function checks against non-number characters in the string
func isNumString(ins string) bool {
	if len(ins) == 0 {
		return false
	}
	for _, c := range []byte(ins) {
		if (c < '0') || (c > '9') {
			return false
		}
	}
	return true
}

/*
############################ format specification #####################
*/

// Format specification object
type FormatSpec struct {
	OmitLeadingZeros bool // true - leading zeros are omitted, pad from the left
	IntDigits        int  // digits in the integer part
	DecDigits        int  // digits in the fractional part
}

// DefaultFormat is the coordinate format assumed before any FS command.
func DefaultFormat() FormatSpec {
	return FormatSpec{OmitLeadingZeros: true, IntDigits: 2, DecDigits: 4}
}

func (fs FormatSpec) String() string {
	zeros := "T"
	if fs.OmitLeadingZeros {
		zeros = "L"
	}
	return zeros + strconv.Itoa(fs.IntDigits) + "." + strconv.Itoa(fs.DecDigits)
}

/*
######################### coordinates #########################################
*/

// Decode converts a raw coordinate field like "-012500" into an exact value
// scaled by ratio. A field holding an explicit decimal point is taken
// literally.
func (fs FormatSpec) Decode(ins string, ratio Number) (Number, error) {
	var neg bool
	ws := ins
	if strings.HasPrefix(ws, "-") {
		neg = true
		ws = ws[1:]
	} else {
		ws = strings.TrimPrefix(ws, "+")
	}

	var val Number
	if strings.IndexByte(ws, '.') >= 0 {
		d, err := decimal.NewFromString(ws)
		if err != nil || strings.ContainsAny(ws, "eE+-") {
			return Number{}, badCoordinate(ins)
		}
		val = Number{d}
	} else {
		if !isNumString(ws) {
			return Number{}, badCoordinate(ins)
		}
		if pad := fs.IntDigits + fs.DecDigits - len(ws); pad > 0 {
			if fs.OmitLeadingZeros {
				ws = strings.Repeat("0", pad) + ws
			} else {
				ws = ws + strings.Repeat("0", pad)
			}
		}
		d, err := decimal.NewFromString(ws[:fs.IntDigits] + "." + ws[fs.IntDigits:])
		if err != nil {
			return Number{}, badCoordinate(ins)
		}
		val = Number{d}
	}
	val = val.Mul(ratio)
	if neg {
		val = val.Neg()
	}
	return val, nil
}

// Encode is the inverse of Decode for values representable in the format.
func (fs FormatSpec) Encode(v Number) (string, error) {
	abs := v.d.Abs()
	scaled := abs.Shift(int32(fs.DecDigits))
	if !scaled.Equal(scaled.Truncate(0)) {
		return "", errors.New("value " + v.String() + " needs more than " + strconv.Itoa(fs.DecDigits) + " decimals")
	}
	digits := scaled.Truncate(0).String()
	if len(digits) > fs.IntDigits+fs.DecDigits {
		return "", errors.New("value " + v.String() + " does not fit format " + fs.String())
	}
	digits = strings.Repeat("0", fs.IntDigits+fs.DecDigits-len(digits)) + digits
	if fs.OmitLeadingZeros {
		digits = strings.TrimLeft(digits, "0")
	} else {
		digits = strings.TrimRight(digits, "0")
	}
	if len(digits) == 0 {
		digits = "0"
	}
	if v.d.IsNegative() {
		digits = "-" + digits
	}
	return digits, nil
}

func badCoordinate(s string) error {
	return fmt.Errorf("%w %q", ErrBadCoordinate, s)
}
