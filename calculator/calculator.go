// Exact evaluator for aperture macro arithmetic expressions.
package calculator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cncgen/cirqwizard/xy"
)

var (
	ErrSyntax         = errors.New("calculator: syntax error")
	ErrUnknownVar     = errors.New("calculator: undefined variable")
	ErrDivisionByZero = errors.New("calculator: division by zero")
)

// Variables holds macro parameters by name, e.g. "$1".
type Variables map[string]xy.Number

type OpCode int

const (
	Nop OpCode = iota
	Add
	Sub
	Mul
	Div
)

func (oc OpCode) String() string {
	switch oc {
	case Add:
		return "+ "
	case Sub:
		return "- "
	case Mul:
		return "x "
	case Div:
		return "/ "
	case Nop:
		return "<nop> "
	default:
		return "bad OpCode "
	}
}

type Stack struct {
	data []int
}

func NewStack() *Stack {
	return &Stack{}
}

func (stack *Stack) Push(val int) {
	stack.data = append(stack.data, val)
}

func (stack *Stack) Pop() (int, bool) {
	slen := len(stack.data)
	if slen == 0 {
		return 0, false
	}
	retVal := stack.data[slen-1]
	stack.data = stack.data[:slen-1]
	return retVal, true
}

func (stack *Stack) Len() int {
	return len(stack.data)
}

// CalcExpression evaluates str. Parenthesised groups are reduced innermost
// first into temporary variables until a single value is left.
func CalcExpression(str string, vars Variables) (xy.Number, error) {
	const leftPar = '('
	const rightPar = ')'

	storage := make(Variables, len(vars))
	for k, v := range vars {
		storage[k] = v
	}
	str = "(" + strings.Join(strings.Fields(str), "") + ")"
	stack := NewStack()
	tempVarID := 0
	valName := ""
	for str != valName {
		reduced := false
		for i, r := range str {
			if r == leftPar {
				stack.Push(i)
				continue
			}
			if r == rightPar {
				lPar, ok := stack.Pop()
				if !ok {
					return xy.Number{}, fmt.Errorf("%w: unbalanced ')' in %q", ErrSyntax, str)
				}
				tf, err := TokenizeFormulae(str[lPar+1:i], storage)
				if err != nil {
					return xy.Number{}, err
				}
				val, err := CalcTokenizedFormulae(tf)
				if err != nil {
					return xy.Number{}, err
				}
				valName = "$$" + strconv.Itoa(tempVarID)
				tempVarID++
				storage[valName] = val
				str = str[:lPar] + valName + str[i+1:]
				reduced = true
				break
			}
		}
		if !reduced {
			return xy.Number{}, fmt.Errorf("%w: unbalanced '(' in %q", ErrSyntax, str)
		}
		stack = NewStack()
	}
	return storage[valName], nil
}

// TokenizedFormula is an operand and the operation that follows it.
type TokenizedFormula struct {
	value     xy.Number
	operation OpCode
}

func (tf TokenizedFormula) String() string {
	return tf.value.String() + " " + tf.operation.String()
}

// TokenizeFormulae splits a parenthesis-free expression into operands.
// Unary signs are folded into the operand.
func TokenizeFormulae(str string, vars Variables) ([]TokenizedFormula, error) {
	retVal := make([]TokenizedFormula, 0)
	tokenStart := true
	neg := false
	convString := ""

	flush := func(opCode OpCode) error {
		val, err := operandValue(convString, vars)
		if err != nil {
			return err
		}
		if neg {
			val = val.Neg()
		}
		retVal = append(retVal, TokenizedFormula{val, opCode})
		tokenStart = true
		neg = false
		convString = ""
		return nil
	}

	for _, r := range str {
		if tokenStart && (r == '+' || r == '-') {
			if r == '-' {
				neg = !neg
			}
			continue
		}
		var opCode OpCode
		switch r {
		case '+':
			opCode = Add
		case '-':
			opCode = Sub
		case '/':
			opCode = Div
		case 'x', 'X':
			opCode = Mul
		default:
			convString += string(r)
			tokenStart = false
			continue
		}
		if err := flush(opCode); err != nil {
			return nil, err
		}
	}
	// last token ...
	if err := flush(Nop); err != nil {
		return nil, err
	}
	return retVal, nil
}

func operandValue(s string, vars Variables) (xy.Number, error) {
	if strings.HasPrefix(s, "$") {
		v, ok := vars[s]
		if !ok {
			return xy.Number{}, fmt.Errorf("%w %s", ErrUnknownVar, s)
		}
		return v, nil
	}
	v, err := xy.ParseNumber(s)
	if err != nil {
		return xy.Number{}, fmt.Errorf("%w: bad operand %q", ErrSyntax, s)
	}
	return v, nil
}

// CalcTokenizedFormulae applies multiplicative operators before additive ones,
// left to right.
func CalcTokenizedFormulae(tf []TokenizedFormula) (xy.Number, error) {
	if len(tf) == 0 {
		return xy.Number{}, ErrSyntax
	}
	sum := xy.NewNumber(0)
	term := tf[0].value
	for i := 0; i < len(tf)-1; i++ {
		next := tf[i+1].value
		switch tf[i].operation {
		case Mul:
			term = term.Mul(next)
		case Div:
			if next.IsZero() {
				return xy.Number{}, ErrDivisionByZero
			}
			term = xy.NumberFromDecimal(term.Decimal().Div(next.Decimal()))
		case Add:
			sum = sum.Add(term)
			term = next
		case Sub:
			sum = sum.Add(term)
			term = next.Neg()
		default:
			return xy.Number{}, fmt.Errorf("%w: dangling operand", ErrSyntax)
		}
	}
	return sum.Add(term), nil
}
