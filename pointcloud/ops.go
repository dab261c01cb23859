package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Bounds is the axis-aligned box summarizing a cloud's spatial extent.
type Bounds struct {
	Center     r3.Vector
	HalfExtent r3.Vector
}

// FilterByDistance keeps the points whose distance to ref lies in
// [minRadius, maxRadius], filtering colors and normals in lockstep.
func FilterByDistance(pc *PointCloud, ref r3.Vector, minRadius, maxRadius float64) (*PointCloud, error) {
	if minRadius < 0 || maxRadius < minRadius {
		return nil, errors.Errorf("invalid radius range [%v, %v]", minRadius, maxRadius)
	}
	keep := make([]int, 0, pc.Size())
	for i, p := range pc.Positions {
		d := p.Sub(ref).Norm()
		if d >= minRadius && d <= maxRadius {
			keep = append(keep, i)
		}
	}
	return pc.keepIndices(keep), nil
}

// Downsample keeps every k-th point by index order. k of 1 is a copy.
func Downsample(pc *PointCloud, k int) (*PointCloud, error) {
	if k < 1 {
		return nil, errors.Errorf("downsample stride must be >= 1, got %d", k)
	}
	if k == 1 {
		return pc.Clone(), nil
	}
	keep := make([]int, 0, pc.Size()/k+1)
	for i := 0; i < pc.Size(); i += k {
		keep = append(keep, i)
	}
	return pc.keepIndices(keep), nil
}

// Centroid returns the arithmetic mean position, or the zero vector for an
// empty cloud.
func Centroid(pc *PointCloud) r3.Vector {
	if pc.Size() == 0 {
		return r3.Vector{}
	}
	sum := r3.Vector{}
	for _, p := range pc.Positions {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float64(pc.Size()))
}

// BoundingBox returns the minimal axis-aligned box containing the cloud.
// An empty cloud yields the zero-sized box at the origin.
func BoundingBox(pc *PointCloud) Bounds {
	if pc.Size() == 0 {
		return Bounds{}
	}
	min := r3.Vector{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}
	max := min.Mul(-1)
	for _, p := range pc.Positions {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return Bounds{
		Center:     min.Add(max).Mul(0.5),
		HalfExtent: max.Sub(min).Mul(0.5),
	}
}
