package configurator

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/cncgen/cirqwizard/excellon"
	"github.com/cncgen/cirqwizard/gerbparser"
	"github.com/cncgen/cirqwizard/plotter"
	"github.com/spf13/viper"
)

const (
	CfgCommonPrintDiagnostics string = "common.PrintDiagnostics"
	CfgCommonPrintStatistic   string = "common.PrintStatistic"

	CfgGerberStrictParameters string = "gerber.StrictParameters"

	CfgExcellonFallbackToolDiameter string = "excellon.FallbackToolDiameter"
	CfgExcellonDiameterStep         string = "excellon.DiameterStep"

	CfgPasteNeedleDiameter string = "paste.NeedleDiameter"
	CfgPasteClearanceZ     string = "paste.ClearanceZ"
	CfgPasteWorkingZ       string = "paste.WorkingZ"
	CfgPastePreFeedPause   string = "paste.PreFeedPause"
	CfgPastePostFeedPause  string = "paste.PostFeedPause"
	CfgPasteFeed           string = "paste.Feed"

	CfgMachineG54X string = "machine.G54X"
	CfgMachineG54Y string = "machine.G54Y"
	CfgMachineG54Z string = "machine.G54Z"
)

// keys of the drilling and milling sections
const (
	clearanceZ = ".ClearanceZ"
	safetyZ    = ".SafetyZ"
	workingZ   = ".WorkingZ"
	feed       = ".Feed"
	speed      = ".Speed"
)

var ErrNoConfigFile = errors.New("configuration file not found")

/*
	All lengths are micrometres, pauses milliseconds, feeds mm/min
*/
func SetDefaults(v *viper.Viper) {
	v.SetConfigName("config") // no need to include file extension
	v.AddConfigPath(".")      // set the path of your config file
	v.SetConfigType("toml")

	// diagnostic messages
	v.SetDefault(CfgCommonPrintDiagnostics, true)
	v.SetDefault(CfgCommonPrintStatistic, false)

	v.SetDefault(CfgGerberStrictParameters, false)

	v.SetDefault(CfgExcellonFallbackToolDiameter, 1300)
	v.SetDefault(CfgExcellonDiameterStep, 100)

	// solder paste dispenser
	v.SetDefault(CfgPasteNeedleDiameter, 400)
	v.SetDefault(CfgPasteClearanceZ, 5000)
	v.SetDefault(CfgPasteWorkingZ, 200)
	v.SetDefault(CfgPastePreFeedPause, 100)
	v.SetDefault(CfgPastePostFeedPause, 200)
	v.SetDefault(CfgPasteFeed, 200)

	//
	setSpindleDefaults(v, "drilling", 5000, 1000, -2000, 200, 10000)
	setSpindleDefaults(v, "milling", 5000, 1000, -100, 300, 12000)

	// reference pins
	v.SetDefault(CfgMachineG54X, 0)
	v.SetDefault(CfgMachineG54Y, 0)
	v.SetDefault(CfgMachineG54Z, 0)
}

func setSpindleDefaults(v *viper.Viper, section string, clearance, safety, working, f, s int) {
	v.SetDefault(section+clearanceZ, clearance)
	v.SetDefault(section+safetyZ, safety)
	v.SetDefault(section+workingZ, working)
	v.SetDefault(section+feed, f)
	v.SetDefault(section+speed, s)
}

// ProcessConfigFile reads the configuration file. ErrNoConfigFile means the
// defaults stay in effect.
func ProcessConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return ErrNoConfigFile
	}
	if err != nil {
		return fmt.Errorf("configuration file error: %w", err)
	}
	return nil
}

func DiagnosticAllCfgPrint(v *viper.Viper, w io.Writer) {
	keys := v.AllKeys()
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintln(w, key, ":", v.Get(key))
	}
	fmt.Fprintln(w)
}

func origin(v *viper.Viper) plotter.Origin {
	return plotter.Origin{X: v.GetInt(CfgMachineG54X), Y: v.GetInt(CfgMachineG54Y), Z: v.GetInt(CfgMachineG54Z)}
}

func PasteParams(v *viper.Viper) plotter.PasteParams {
	return plotter.PasteParams{
		Origin:        origin(v),
		ClearanceZ:    v.GetInt(CfgPasteClearanceZ),
		WorkingZ:      v.GetInt(CfgPasteWorkingZ),
		PreFeedPause:  v.GetInt(CfgPastePreFeedPause),
		PostFeedPause: v.GetInt(CfgPastePostFeedPause),
		Feed:          v.GetInt(CfgPasteFeed),
	}
}

func spindleParams(v *viper.Viper, section string) plotter.DrillingParams {
	return plotter.DrillingParams{
		Origin:     origin(v),
		ClearanceZ: v.GetInt(section + clearanceZ),
		SafetyZ:    v.GetInt(section + safetyZ),
		WorkingZ:   v.GetInt(section + workingZ),
		Feed:       v.GetInt(section + feed),
		Speed:      v.GetInt(section + speed),
	}
}

func DrillingParams(v *viper.Viper) plotter.DrillingParams {
	return spindleParams(v, "drilling")
}

func MillingParams(v *viper.Viper) plotter.MillingParams {
	return plotter.MillingParams(spindleParams(v, "milling"))
}

func ExcellonOptions(v *viper.Viper) excellon.Options {
	return excellon.Options{
		FallbackToolDiameter: v.GetInt(CfgExcellonFallbackToolDiameter),
		DiameterStep:         v.GetInt(CfgExcellonDiameterStep),
	}
}

func GerberOptions(v *viper.Viper) gerbparser.Options {
	return gerbparser.Options{StrictParameters: v.GetBool(CfgGerberStrictParameters)}
}
