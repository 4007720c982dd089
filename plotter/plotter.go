/*
Package plotter turns toolpaths and drill points into machine programs.

The emitters only decide the order of movements; the Postprocessor decides
how each movement is spelled in the target dialect.
*/
package plotter

import (
	"fmt"
	"os"

	"github.com/cncgen/cirqwizard/strings_storage"
	"github.com/golang/glog"
)

// Coord is an optional axis value in micrometres.
type Coord struct {
	v  int
	ok bool
}

// At sets an axis to v.
func At(v int) Coord { return Coord{v: v, ok: true} }

// Keep leaves an axis where it is.
var Keep Coord

func (c Coord) Value() (int, bool) { return c.v, c.ok }

/*
	Postprocessor writes single machine commands into out. Lengths are
	micrometres, feeds millimetres per minute, pauses milliseconds.
*/
type Postprocessor interface {
	Header(out strings_storage.Consumer)
	Footer(out strings_storage.Consumer)

	// stores the reference pin offsets as work coordinate system 1
	SetupG54(out strings_storage.Consumer, x, y, z int)
	SelectWCS(out strings_storage.Consumer)

	Rapid(out strings_storage.Consumer, x, y, z Coord)
	LinearInterpolation(out strings_storage.Consumer, x, y, z, feed int)
	// i and j are the centre offset from the current point
	CircularInterpolation(out strings_storage.Consumer, clockwise bool, x, y, z, i, j, feed int)
	Pause(out strings_storage.Consumer, ms int)

	// spindle or syringe, speed 0 leaves the speed unchanged
	ToolOn(out strings_storage.Consumer, speed int)
	ToolOff(out strings_storage.Consumer)

	Comment(out strings_storage.Consumer, text string)
}

/*
	Writes the program to disk
*/
func Save(fileName string, program *strings_storage.Storage) error {
	outputFile, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", fileName, err)
	}
	defer outputFile.Close()
	if _, err = program.WriteTo(outputFile); err != nil {
		return fmt.Errorf("writing %s: %w", fileName, err)
	}
	if err = outputFile.Sync(); err != nil {
		return fmt.Errorf("writing %s: %w", fileName, err)
	}
	if err = outputFile.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", fileName, err)
	}
	glog.V(1).Infof("%d program lines written to %s", program.Len(), fileName)
	return nil
}
