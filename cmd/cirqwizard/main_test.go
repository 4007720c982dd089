package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cncgen/cirqwizard/gerbparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const padLayer = "%FSLAX24Y24*%%MOMM*%%ADD10R,2X0.6*%D10*X0Y0D03*M02*"

const eagleDrill = "%\nM48\nM72\nT01C0.0236\nT02C0.0354\nT03C0.0400\n%\nT01\nX4116Y4667\nT02\nX9374Y2651\nT03\nX7624Y3651\nM30"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// run executes the command line and returns stdout, stderr and the error
func run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func countPrefix(ls []string, prefix string) int {
	n := 0
	for _, l := range ls {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

func TestPasteCmd(t *testing.T) {
	gbr := writeFile(t, "paste.gbr", padLayer)

	out, _, err := run("paste", "--needle", "100", gbr)
	require.NoError(t, err)
	ls := lines(out)
	assert.Equal(t, "G21 G90", ls[0])
	assert.Equal(t, "M2", ls[len(ls)-1])
	assert.Equal(t, 3, countPrefix(ls, "G1 "))
	assert.Contains(t, ls, "G0 X-0.900 Y-0.150 Z5.000")
	assert.Contains(t, ls, "G1 X0.900 Y-0.150 Z0.200 F200")

	out, _, err = run("paste", "--needle", "100", "--origin", gbr)
	require.NoError(t, err)
	assert.Contains(t, lines(out), "G0 X0.100 Y0.150 Z5.000")

	out, _, err = run("paste", "--needle", "100", "--skip=-5000,-5000,5000,5000", gbr)
	require.NoError(t, err)
	assert.Zero(t, countPrefix(lines(out), "G1 "))

	_, _, err = run("paste", "--skip=1,2,3", gbr)
	assert.Error(t, err)
}

func TestPasteCmd_OutputFile(t *testing.T) {
	gbr := writeFile(t, "paste.gbr", padLayer)
	name := filepath.Join(t.TempDir(), "paste.nc")

	out, _, err := run("paste", "-o", name, gbr)
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "G21 G90\n"))
}

func TestPasteCmd_Errors(t *testing.T) {
	_, _, err := run("paste", filepath.Join(t.TempDir(), "missing.gbr"))
	assert.Error(t, err)

	_, _, err = run("paste")
	assert.Error(t, err)

	_, _, err = run("paste", writeFile(t, "bad.gbr", "G99*"))
	assert.ErrorIs(t, err, gerbparser.ErrUnknownGCode)
}

func TestDiagnosticsPrinting(t *testing.T) {
	gbr := writeFile(t, "layer.gbr", "G37*"+padLayer)

	_, stderr, err := run("paste", gbr)
	require.NoError(t, err)
	assert.Contains(t, stderr, "warning at block 1")

	_, stderr, err = run("paste", "--diagnostics=false", gbr)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	_, stderr, err = run("paste", "--diagnostics=false", "--statistic", gbr)
	require.NoError(t, err)
	assert.Contains(t, stderr, "toolpaths")
}

func TestStrictFlag(t *testing.T) {
	gbr := writeFile(t, "layer.gbr", "%XYZ*%"+padLayer)

	_, _, err := run("paste", gbr)
	require.NoError(t, err)

	_, _, err = run("paste", "--strict", gbr)
	assert.ErrorIs(t, err, gerbparser.ErrUnknownParameter)
}

func TestTraceCmd(t *testing.T) {
	gbr := writeFile(t, "copper.gbr", "%FSLAX24Y24*%%MOMM*%%ADD10C,0.25*%D10*X0Y0D02*X10000Y0D01*M02*")

	out, _, err := run("trace", gbr)
	require.NoError(t, err)
	ls := lines(out)
	assert.Contains(t, ls, "M3 S12000")
	assert.Contains(t, ls, "G1 X0.000 Y0.000 Z-0.100 F300")
	assert.Contains(t, ls, "G1 X1.000 Y0.000 Z-0.100 F300")
}

func TestDrillCmd(t *testing.T) {
	drl := writeFile(t, "board.drl", eagleDrill)

	out, _, err := run("drill", drl)
	require.NoError(t, err)
	ls := lines(out)
	assert.Equal(t, 3, countPrefix(ls, "G1 "))
	assert.Equal(t, 3, countPrefix(ls, "(tool "))
	assert.Contains(t, ls, "(tool 0.600 mm)")
	assert.Contains(t, ls, "G1 X10.454 Y11.854 Z-2.000 F200")

	out, _, err = run("drill", "--origin", drl)
	require.NoError(t, err)
	// the hole at 10454,11854 with d=0.6 mm is the left-most edge
	assert.Contains(t, lines(out), "G1 X0.300 Y5.571 Z-2.000 F200")
}

func TestInspectCmd_Gerber(t *testing.T) {
	gbr := writeFile(t, "paste.gbr", padLayer)

	out, _, err := run("inspect", gbr)
	require.NoError(t, err)
	var rep map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "gerber", rep["format"])
	assert.Equal(t, 6, rep["blocks"])
	assert.Equal(t, map[string]interface{}{"flashes": 1, "lines": 0, "arcs": 0, "regions": 0}, rep["primitives"])
	assert.Equal(t, map[string]interface{}{"min_x": -1000, "min_y": -300, "max_x": 1000, "max_y": 300}, rep["bounds"])
	assert.Contains(t, rep["apertures"], 10)
}

func TestInspectCmd_FatalErrorIsReported(t *testing.T) {
	gbr := writeFile(t, "bad.gbr", padLayer[:len(padLayer)-4]+"G99*")

	out, _, err := run("inspect", gbr)
	assert.ErrorIs(t, err, gerbparser.ErrUnknownGCode)
	var rep map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Contains(t, rep["error"], "unknown G-code")
}

func TestInspectCmd_Excellon(t *testing.T) {
	drl := writeFile(t, "board.drl", eagleDrill)

	out, _, err := run("inspect", "--format", "excellon", drl)
	require.NoError(t, err)
	var rep map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 3, rep["holes"])
	assert.Equal(t, map[interface{}]interface{}{1: 600, 2: 900, 3: 1000}, rep["tools"])

	_, _, err = run("inspect", "--format", "pdf", drl)
	assert.Error(t, err)
}

func TestConfigCmd(t *testing.T) {
	cfg := writeFile(t, "machine.toml", "[paste]\nFeed = 150\n")

	out, _, err := run("config", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "paste.feed : 150")
	assert.Contains(t, out, "excellon.diameterstep : 100")

	_, _, err = run("config", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
