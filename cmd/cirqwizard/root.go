package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cncgen/cirqwizard/configurator"
	"github.com/cncgen/cirqwizard/plotter"
	"github.com/cncgen/cirqwizard/strings_storage"
	"github.com/fatih/color"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	. "github.com/cncgen/cirqwizard/gerberbasetypes"
)

// app is the state shared by all subcommands
type app struct {
	v       *viper.Viper
	cfgFile string
	output  string
	origin  bool
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	configurator.SetDefaults(a.v)

	root := &cobra.Command{
		Use:   "cirqwizard",
		Short: "PCB machining programs from Gerber and Excellon files",
		Long: `cirqwizard reads Gerber RS-274X and Excellon drill files and writes
RS-274 programs for solder paste dispensing, drilling and trace milling.

Lengths on the command line and in the configuration file are micrometres.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "configuration file (default ./config.toml)")
	pf.StringVarP(&a.output, "output", "o", "", "output file (default stdout)")
	pf.BoolVar(&a.origin, "origin", false, "move the artwork so its lower left corner is at 0,0")
	pf.Bool("diagnostics", true, "print diagnostics")
	pf.Bool("statistic", false, "print program statistic")
	pf.Bool("strict", false, "unknown Gerber parameters are fatal")
	_ = a.v.BindPFlag(configurator.CfgCommonPrintDiagnostics, pf.Lookup("diagnostics"))
	_ = a.v.BindPFlag(configurator.CfgCommonPrintStatistic, pf.Lookup("statistic"))
	_ = a.v.BindPFlag(configurator.CfgGerberStrictParameters, pf.Lookup("strict"))

	root.AddCommand(a.pasteCmd())
	root.AddCommand(a.traceCmd())
	root.AddCommand(a.drillCmd())
	root.AddCommand(a.inspectCmd())
	root.AddCommand(a.configCmd())
	return root
}

func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	if len(a.cfgFile) > 0 {
		a.v.SetConfigFile(a.cfgFile)
	}
	err := configurator.ProcessConfigFile(a.v)
	if errors.Is(err, configurator.ErrNoConfigFile) {
		glog.V(1).Infoln("no configuration file, using built-in defaults")
		return nil
	}
	if err != nil {
		return err
	}
	glog.V(1).Infoln("configuration read from", a.v.ConfigFileUsed())
	return nil
}

// report prints diagnostics to stderr, warnings in yellow and errors in red
func (a *app) report(cmd *cobra.Command, ds Diagnostics) {
	if !a.v.GetBool(configurator.CfgCommonPrintDiagnostics) {
		return
	}
	w := cmd.ErrOrStderr()
	for _, d := range ds {
		switch d.Severity {
		case SeverityError:
			color.New(color.FgRed).Fprintln(w, d)
		case SeverityWarning:
			color.New(color.FgYellow).Fprintln(w, d)
		default:
			fmt.Fprintln(w, d)
		}
	}
}

func (a *app) statistic(cmd *cobra.Command, format string, args ...interface{}) {
	if a.v.GetBool(configurator.CfgCommonPrintStatistic) {
		fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
	}
}

// writeProgram sends the program to --output or to stdout
func (a *app) writeProgram(cmd *cobra.Command, program *strings_storage.Storage) error {
	if len(a.output) == 0 {
		_, err := program.WriteTo(cmd.OutOrStdout())
		return err
	}
	return plotter.Save(a.output, program)
}

func (a *app) writeBytes(cmd *cobra.Command, data []byte) error {
	if len(a.output) == 0 {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(a.output, data, 0644)
}
