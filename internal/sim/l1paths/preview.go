package l1paths

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// PreviewMode selects how the arc-length increments of a path preview are
// spaced.
type PreviewMode int

const (
	// PreviewDistance spaces points delta metres apart.
	PreviewDistance PreviewMode = iota
	// PreviewTime spaces points delta seconds apart at the current speed.
	PreviewTime
	// PreviewToEnd spreads points evenly over the remaining path, ignoring delta.
	PreviewToEnd
)

// Preview returns n upcoming points along the path starting after arc length s
// travelling at arc speed sdot. Points past MaxArcLength follow the
// extrapolated end tangent. A NaN s returns nil.
func (p Path) Preview(s, sdot float64, mode PreviewMode, delta float64, n int) []r2.Vec {
	if math.IsNaN(s) || n <= 0 {
		return nil
	}

	step := delta
	switch mode {
	case PreviewTime:
		step = delta * sdot
	case PreviewToEnd:
		nf := float64(n)
		step = (p.MaxArcLength - s) / nf * (nf - 1) / nf
	}

	out := make([]r2.Vec, n)
	for k := 1; k <= n; k++ {
		out[k-1] = p.Position(s + step*float64(k))
	}
	return out
}
