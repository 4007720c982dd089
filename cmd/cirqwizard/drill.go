package main

import (
	"fmt"
	"os"

	"github.com/cncgen/cirqwizard/configurator"
	"github.com/cncgen/cirqwizard/excellon"
	"github.com/cncgen/cirqwizard/plotter"
	"github.com/cncgen/cirqwizard/strings_storage"
	"github.com/cncgen/cirqwizard/xy"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

func (a *app) readExcellon(cmd *cobra.Command, fileName string) (excellon.Result, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return excellon.Result{}, err
	}
	defer f.Close()

	res, err := excellon.Parse(f, configurator.ExcellonOptions(a.v))
	a.report(cmd, res.Diagnostics)
	if err != nil {
		return res, fmt.Errorf("%s: %w", fileName, err)
	}
	if box, ok := excellon.Bounds(res.Points); ok && a.origin {
		d := xy.Pt(-int(box.Min.X), -int(box.Min.Y))
		res.Points = excellon.Move(res.Points, d)
		glog.V(1).Infof("holes moved by %v", d)
	}
	return res, nil
}

func (a *app) drillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drill <excellon>",
		Short: "Drilling program for an Excellon file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.readExcellon(cmd, args[0])
			if err != nil {
				return err
			}
			program := strings_storage.NewStorage()
			pp := plotter.NewGenericPostprocessor()
			plotter.EmitDrilling(pp, program, res.Points, configurator.DrillingParams(a.v))
			a.statistic(cmd, "%d holes, %d tools, %+v", len(res.Points), len(res.Tools), pp.Stats)
			return a.writeProgram(cmd, program)
		},
	}
}
