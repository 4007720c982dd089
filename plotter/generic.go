package plotter

import (
	"strconv"
	"strings"

	"github.com/cncgen/cirqwizard/strings_storage"
	"github.com/shopspring/decimal"
)

/*
	Generic RS-274 output: millimetres, absolute coordinates.
	Stats counts the commands written so far.
*/
type GenericPostprocessor struct {
	Stats Stats
}

type Stats struct {
	Rapids  int `yaml:"rapids"`
	Feeds   int `yaml:"feeds"`
	Arcs    int `yaml:"arcs"`
	Pauses  int `yaml:"pauses"`
	ToolOns int `yaml:"tool_ons"`
}

func NewGenericPostprocessor() *GenericPostprocessor {
	return &GenericPostprocessor{}
}

// micrometres as millimetres with three decimals
func mm(v int) string {
	return decimal.New(int64(v), -3).StringFixed(3)
}

func word(letter string, v int) string {
	return letter + mm(v)
}

func (pp *GenericPostprocessor) Header(out strings_storage.Consumer) {
	out.Accept("G21 G90")
}

func (pp *GenericPostprocessor) Footer(out strings_storage.Consumer) {
	out.Accept("M2")
}

func (pp *GenericPostprocessor) SetupG54(out strings_storage.Consumer, x, y, z int) {
	out.Accept("G10 L2 P1 " + word("X", x) + " " + word("Y", y) + " " + word("Z", z))
}

func (pp *GenericPostprocessor) SelectWCS(out strings_storage.Consumer) {
	out.Accept("G54")
}

func (pp *GenericPostprocessor) Rapid(out strings_storage.Consumer, x, y, z Coord) {
	words := []string{"G0"}
	for _, a := range []struct {
		letter string
		c      Coord
	}{{"X", x}, {"Y", y}, {"Z", z}} {
		if v, ok := a.c.Value(); ok {
			words = append(words, word(a.letter, v))
		}
	}
	if len(words) == 1 {
		return
	}
	pp.Stats.Rapids++
	out.Accept(strings.Join(words, " "))
}

func (pp *GenericPostprocessor) LinearInterpolation(out strings_storage.Consumer, x, y, z, feed int) {
	pp.Stats.Feeds++
	out.Accept("G1 " + word("X", x) + " " + word("Y", y) + " " + word("Z", z) + " F" + strconv.Itoa(feed))
}

func (pp *GenericPostprocessor) CircularInterpolation(out strings_storage.Consumer, clockwise bool, x, y, z, i, j, feed int) {
	pp.Stats.Arcs++
	code := "G3 "
	if clockwise {
		code = "G2 "
	}
	out.Accept(code + word("X", x) + " " + word("Y", y) + " " + word("Z", z) + " " +
		word("I", i) + " " + word("J", j) + " F" + strconv.Itoa(feed))
}

func (pp *GenericPostprocessor) Pause(out strings_storage.Consumer, ms int) {
	if ms <= 0 {
		return
	}
	pp.Stats.Pauses++
	out.Accept("G4 " + word("P", ms))
}

func (pp *GenericPostprocessor) ToolOn(out strings_storage.Consumer, speed int) {
	pp.Stats.ToolOns++
	if speed > 0 {
		out.Accept("M3 S" + strconv.Itoa(speed))
		return
	}
	out.Accept("M3")
}

func (pp *GenericPostprocessor) ToolOff(out strings_storage.Consumer) {
	out.Accept("M5")
}

func (pp *GenericPostprocessor) Comment(out strings_storage.Consumer, text string) {
	text = strings.NewReplacer("(", "[", ")", "]").Replace(text)
	out.Accept("(" + text + ")")
}
