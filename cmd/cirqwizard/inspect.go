package main

import (
	"fmt"

	"github.com/akavel/polyclip-go"
	"github.com/cncgen/cirqwizard/excellon"
	"github.com/cncgen/cirqwizard/gerberdatamodel"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	. "github.com/cncgen/cirqwizard/gerberbasetypes"
)

type bounds struct {
	MinX int `yaml:"min_x"`
	MinY int `yaml:"min_y"`
	MaxX int `yaml:"max_x"`
	MaxY int `yaml:"max_y"`
}

func boundsOf(box polyclip.Rectangle, ok bool) *bounds {
	if !ok {
		return nil
	}
	return &bounds{MinX: int(box.Min.X), MinY: int(box.Min.Y), MaxX: int(box.Max.X), MaxY: int(box.Max.Y)}
}

// layerReport is what inspect prints
type layerReport struct {
	File       string                  `yaml:"file"`
	Format     string                  `yaml:"format"`
	Blocks     int                     `yaml:"blocks"`
	Primitives *gerberdatamodel.Counts `yaml:"primitives,omitempty"`
	Apertures  map[int]string          `yaml:"apertures,omitempty"`
	Holes      int                     `yaml:"holes,omitempty"`
	// tool number to diameter, µm
	Tools       map[int]int `yaml:"tools,omitempty"`
	Bounds      *bounds     `yaml:"bounds,omitempty"`
	Diagnostics Diagnostics `yaml:"diagnostics,omitempty"`
	Error       string      `yaml:"error,omitempty"`
}

func (a *app) inspectGerber(cmd *cobra.Command, fileName string) (layerReport, error) {
	rep := layerReport{File: fileName, Format: "gerber"}
	res, err := a.readGerber(cmd, fileName)
	if err != nil && res.Blocks == 0 {
		return rep, err
	}
	counts := gerberdatamodel.Count(res.Primitives)
	rep.Blocks = res.Blocks
	rep.Primitives = &counts
	if len(res.Apertures) > 0 {
		rep.Apertures = make(map[int]string, len(res.Apertures))
		for code, ap := range res.Apertures {
			rep.Apertures[code] = ap.String()
		}
	}
	rep.Bounds = boundsOf(gerberdatamodel.Bounds(res.Primitives))
	rep.Diagnostics = res.Diagnostics
	return rep, err
}

func (a *app) inspectExcellon(cmd *cobra.Command, fileName string) (layerReport, error) {
	rep := layerReport{File: fileName, Format: "excellon"}
	res, err := a.readExcellon(cmd, fileName)
	if err != nil {
		return rep, err
	}
	rep.Blocks = res.Lines
	rep.Holes = len(res.Points)
	rep.Tools = res.Tools
	rep.Bounds = boundsOf(excellon.Bounds(res.Points))
	rep.Diagnostics = res.Diagnostics
	return rep, nil
}

func (a *app) inspectCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "YAML report of a Gerber or Excellon file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rep layerReport
			var err error
			switch format {
			case "gerber":
				rep, err = a.inspectGerber(cmd, args[0])
			case "excellon":
				rep, err = a.inspectExcellon(cmd, args[0])
			default:
				return fmt.Errorf("unknown format %q, want gerber or excellon", format)
			}
			if err != nil {
				// nothing was read
				if rep.Blocks == 0 {
					return err
				}
				rep.Error = err.Error()
			}
			data, merr := yaml.Marshal(rep)
			if merr != nil {
				return merr
			}
			if werr := a.writeBytes(cmd, data); werr != nil {
				return werr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "gerber", "input format: gerber, excellon")
	return cmd
}
