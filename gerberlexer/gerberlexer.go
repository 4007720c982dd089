package gerberlexer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

/*
Gerber input is a stream of blocks terminated by '*'. Parameter blocks are
enclosed in '%' pairs; one pair may hold several blocks, e.g. an aperture
macro:

	%AMBOX*21,1,$1,$2,0,0,0*%

Whitespace carries no meaning anywhere and is dropped.
*/

var ErrBadField = errors.New("bad field")

type BlockKind int

const (
	DataBlock BlockKind = iota
	ParameterBlock
)

func (k BlockKind) String() string {
	if k == ParameterBlock {
		return "parameter"
	}
	return "data"
}

type Block struct {
	Kind BlockKind
	Text string
	// Number is the 1-based position of the block in the stream
	Number int
	// SectionStart marks the first block after an opening '%'
	SectionStart bool
}

func (b Block) String() string {
	return fmt.Sprintf("{%s block %d:%q}", b.Kind, b.Number, b.Text)
}

// Reader splits a character stream into blocks, one at a time.
type Reader struct {
	src          *bufio.Reader
	inParam      bool
	sectionStart bool
	buf          strings.Builder
	number       int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{src: bufio.NewReader(r)}
}

// Next returns the next block or io.EOF. Text after the last '*' is dropped.
func (lx *Reader) Next() (Block, error) {
	for {
		r, _, err := lx.src.ReadRune()
		if err != nil {
			if err == io.EOF {
				return Block{}, io.EOF
			}
			return Block{}, fmt.Errorf("reading gerber stream: %w", err)
		}
		switch {
		case unicode.IsSpace(r):
			continue
		case r == '%':
			if lx.buf.Len() > 0 {
				blk := lx.emit()
				lx.toggle()
				return blk, nil
			}
			lx.toggle()
		case r == '*':
			return lx.emit(), nil
		default:
			lx.buf.WriteRune(r)
		}
	}
}

func (lx *Reader) toggle() {
	lx.inParam = !lx.inParam
	lx.sectionStart = lx.inParam
}

func (lx *Reader) emit() Block {
	lx.number++
	blk := Block{Kind: DataBlock, Text: lx.buf.String(), Number: lx.number}
	if lx.inParam {
		blk.Kind = ParameterBlock
		blk.SectionStart = lx.sectionStart
		lx.sectionStart = false
	}
	lx.buf.Reset()
	return blk
}

/*
######################### fields #########################################
*/

// Field is a letter followed by its value, e.g. X-1250 or T01.
type Field struct {
	Letter byte
	Value  string
}

func (f Field) String() string {
	return string(f.Letter) + f.Value
}

// ExtractLetterDelimitedFields splits a block like "G01X100Y-200D01" into
// letter-prefixed fields. Only letters from template are accepted; every field
// needs a non-empty value of digits, sign and decimal point.
func ExtractLetterDelimitedFields(ins, template string) ([]Field, error) {
	out := make([]Field, 0, 4)
	i := 0
	for i < len(ins) {
		c := ins[i]
		if strings.IndexByte(template, c) < 0 {
			return out, fmt.Errorf("%w: unexpected %q in %q", ErrBadField, c, ins)
		}
		j := i + 1
		for j < len(ins) && isValueChar(ins[j]) {
			j++
		}
		if j == i+1 {
			return out, fmt.Errorf("%w: %q has no value in %q", ErrBadField, c, ins)
		}
		out = append(out, Field{Letter: c, Value: ins[i+1 : j]})
		i = j
	}
	return out, nil
}

func isValueChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}
