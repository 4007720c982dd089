package regions

import (
	"errors"
	"strconv"

	"github.com/cncgen/cirqwizard/gerberdatamodel"
	"github.com/cncgen/cirqwizard/xy"
)

var ErrNotOpened = errors.New("region is not opened")

/*####################  regions ##################################
 */

// Region collects contour segments between G36 and G37. A Region value is
// never shared: AddSegment returns the updated copy.
type Region struct {
	segments        []gerberdatamodel.LinearShape
	G36StringNumber int // number of the block with G36 cmd
	G37StringNumber int // number of the block with G37 cmd
}

func (region *Region) String() string {
	if region == nil {
		return "<nil>"
	}
	return "Region:\n" +
		"\t\tcontains " + strconv.Itoa(len(region.segments)) + " segments\n" +
		"\t\tG36 command is at block " + strconv.Itoa(region.G36StringNumber) + "\n" +
		"\t\tG37 command is at block " + strconv.Itoa(region.G37StringNumber)
}

// creates and initialises a region object
func NewRegion(strNum int) *Region {
	return &Region{G36StringNumber: strNum, G37StringNumber: -1}
}

// AddSegment returns a copy of the region with one more contour segment.
func (region *Region) AddSegment(from, to xy.Point) *Region {
	next := *region
	next.segments = make([]gerberdatamodel.LinearShape, len(region.segments), len(region.segments)+1)
	copy(next.segments, region.segments)
	next.segments = append(next.segments, gerberdatamodel.LinearShape{From: from, To: to})
	return &next
}

// returns the number of segments of the contour
func (region *Region) Len() int {
	return len(region.segments)
}

// closes the region and returns the finished primitive
func (region *Region) Close(strnum int) (gerberdatamodel.Region, error) {
	if region == nil {
		return gerberdatamodel.Region{}, errors.New("can not close the contour referenced by null pointer")
	}
	if region.G37StringNumber != -1 {
		return gerberdatamodel.Region{}, ErrNotOpened
	}
	region.G37StringNumber = strnum
	segs := make([]gerberdatamodel.LinearShape, len(region.segments))
	copy(segs, region.segments)
	return gerberdatamodel.Region{Segments: segs}, nil
}

// returns true if region is opened
func (region *Region) IsRegionOpened() bool {
	return region != nil && region.G37StringNumber == -1
}
