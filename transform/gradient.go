package transform

import (
	"image/color"
	"math"

	"go.viam.com/depthcloud/depth"
)

// DepthGradient deterministically maps a depth to a color along a linear
// gradient between Near and Far, parameterized over Range so the mapping is
// stable across frames sharing a configuration.
type DepthGradient struct {
	Near  color.NRGBA
	Far   color.NRGBA
	Range depth.Range
}

// DefaultDepthGradient shades near samples red and far samples blue over the
// default sensor range.
func DefaultDepthGradient() DepthGradient {
	return DepthGradient{
		Near:  color.NRGBA{R: 255, A: 255},
		Far:   color.NRGBA{B: 255, A: 255},
		Range: depth.DefaultRange(),
	}
}

// At returns the gradient color for the given depth. Depths outside the range
// clamp to the endpoints.
func (g DepthGradient) At(d depth.Depth) color.NRGBA {
	frac := (float64(d) - g.Range.Min) / (g.Range.Max - g.Range.Min)
	frac = math.Max(0, math.Min(1, frac))
	return color.NRGBA{
		R: lerpChannel(g.Near.R, g.Far.R, frac),
		G: lerpChannel(g.Near.G, g.Far.G, frac),
		B: lerpChannel(g.Near.B, g.Far.B, frac),
		A: lerpChannel(g.Near.A, g.Far.A, frac),
	}
}

func lerpChannel(from, to uint8, frac float64) uint8 {
	return uint8(math.Round(float64(from) + frac*(float64(to)-float64(from))))
}
