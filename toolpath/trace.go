package toolpath

import (
	"github.com/cncgen/cirqwizard/apertures"
	"github.com/cncgen/cirqwizard/gerberdatamodel"
	"github.com/golang/glog"

	. "github.com/cncgen/cirqwizard/gerberbasetypes"
)

// Trace follows the centre line of every draw with a tool as wide as the
// aperture. Region outlines are followed with width 0; flashes are skipped.
func Trace(prims []gerberdatamodel.Primitive) Result {
	var res Result
	for _, p := range prims {
		switch p := p.(type) {
		case gerberdatamodel.LinearShape:
			if p.From == p.To {
				continue
			}
			res.Toolpaths = append(res.Toolpaths, NewLinear(width(p.Aperture), p.From, p.To))
		case gerberdatamodel.CircularShape:
			res.Toolpaths = append(res.Toolpaths, NewCutting(width(p.Aperture), p.Arc))
		case gerberdatamodel.Region:
			for _, s := range p.Segments {
				res.Toolpaths = append(res.Toolpaths, NewLinear(0, s.From, s.To))
			}
		default:
			res.add(SeverityWarning, p, "flashes are not traced, skipped")
		}
	}
	glog.V(1).Infof("trace: %d primitives, %d toolpaths", len(prims), len(res.Toolpaths))
	return res
}

func width(a apertures.Aperture) int {
	if a == nil {
		return 0
	}
	return apertures.Width(a)
}

func logDiagnostic(d Diagnostic) {
	if d.Severity == SeverityInfo {
		glog.V(1).Infoln(d.String())
		return
	}
	glog.Warningln(d.String())
}
