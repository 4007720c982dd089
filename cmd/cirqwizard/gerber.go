package main

import (
	"fmt"
	"os"

	"github.com/akavel/polyclip-go"
	"github.com/cncgen/cirqwizard/configurator"
	"github.com/cncgen/cirqwizard/gerberdatamodel"
	"github.com/cncgen/cirqwizard/gerbparser"
	"github.com/cncgen/cirqwizard/plotter"
	"github.com/cncgen/cirqwizard/strings_storage"
	"github.com/cncgen/cirqwizard/toolpath"
	"github.com/cncgen/cirqwizard/xy"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

// readGerber parses a Gerber file. On a fatal error the partial result is
// returned together with the error.
func (a *app) readGerber(cmd *cobra.Command, fileName string) (gerbparser.Result, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return gerbparser.Result{}, err
	}
	defer f.Close()

	res, err := gerbparser.Parse(f, configurator.GerberOptions(a.v))
	a.report(cmd, res.Diagnostics)
	if err != nil {
		return res, fmt.Errorf("%s: %w", fileName, err)
	}
	if a.origin {
		d := xy.Point{}.Sub(gerberdatamodel.MinPoint(res.Primitives))
		res.Primitives = gerberdatamodel.Move(res.Primitives, d)
		glog.V(1).Infof("artwork moved by %v", d)
	}
	return res, nil
}

// skipWindow disables the toolpaths lying inside x1,y1,x2,y2
func skipWindow(tps []toolpath.Toolpath, window []int) ([]toolpath.Toolpath, error) {
	if len(window) == 0 {
		return tps, nil
	}
	if len(window) != 4 {
		return nil, fmt.Errorf("--skip wants x1,y1,x2,y2, got %d values", len(window))
	}
	rect := polyclip.Rectangle{
		Min: polyclip.Point{X: float64(min(window[0], window[2])), Y: float64(min(window[1], window[3]))},
		Max: polyclip.Point{X: float64(max(window[0], window[2])), Y: float64(max(window[1], window[3]))},
	}
	tps = toolpath.SetEnabled(toolpath.SelectWindow(tps, rect), false)
	return toolpath.ClearSelection(tps), nil
}

func (a *app) pasteCmd() *cobra.Command {
	var skip []int
	cmd := &cobra.Command{
		Use:   "paste <gerber>",
		Short: "Solder paste dispensing program for a paste layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.readGerber(cmd, args[0])
			if err != nil {
				return err
			}
			gen := toolpath.GeneratePaste(res.Primitives, a.v.GetInt(configurator.CfgPasteNeedleDiameter))
			a.report(cmd, gen.Diagnostics)
			tps, err := skipWindow(gen.Toolpaths, skip)
			if err != nil {
				return err
			}

			program := strings_storage.NewStorage()
			pp := plotter.NewGenericPostprocessor()
			plotter.EmitPaste(pp, program, tps, configurator.PasteParams(a.v))
			a.statistic(cmd, "%d toolpaths, %d enabled, %+v", len(tps), len(toolpath.EnabledOnly(tps)), pp.Stats)
			return a.writeProgram(cmd, program)
		},
	}
	cmd.Flags().Int("needle", 0, "needle diameter, µm")
	_ = a.v.BindPFlag(configurator.CfgPasteNeedleDiameter, cmd.Flags().Lookup("needle"))
	cmd.Flags().IntSliceVar(&skip, "skip", nil, "disable toolpaths inside the window x1,y1,x2,y2 (µm)")
	return cmd
}

func (a *app) traceCmd() *cobra.Command {
	var skip []int
	cmd := &cobra.Command{
		Use:   "trace <gerber>",
		Short: "Milling program following the centre lines of a copper layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.readGerber(cmd, args[0])
			if err != nil {
				return err
			}
			gen := toolpath.Trace(res.Primitives)
			a.report(cmd, gen.Diagnostics)
			tps, err := skipWindow(gen.Toolpaths, skip)
			if err != nil {
				return err
			}

			program := strings_storage.NewStorage()
			pp := plotter.NewGenericPostprocessor()
			plotter.EmitMilling(pp, program, tps, configurator.MillingParams(a.v))
			a.statistic(cmd, "%d toolpaths, %d enabled, %+v", len(tps), len(toolpath.EnabledOnly(tps)), pp.Stats)
			return a.writeProgram(cmd, program)
		},
	}
	cmd.Flags().IntSliceVar(&skip, "skip", nil, "disable toolpaths inside the window x1,y1,x2,y2 (µm)")
	return cmd
}
