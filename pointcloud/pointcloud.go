// Package pointcloud defines a point cloud and a library of geometric
// operations over it.
//
// A PointCloud is three index-aligned parallel slices: positions, optional
// colors, and optional normals. Every operation returns a new PointCloud of
// equal or smaller size and preserves index order, so results are reproducible
// regardless of how the cloud was produced.
package pointcloud

import (
	"image/color"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// PointCloud holds world-space points with optional per-point color and
// normal data. Colors and Normals are either empty or the same length as
// Positions.
type PointCloud struct {
	Positions []r3.Vector
	Colors    []color.NRGBA
	Normals   []r3.Vector
}

// New returns an empty PointCloud.
func New() *PointCloud {
	return &PointCloud{}
}

// NewWithPrealloc returns an empty PointCloud with capacity for size points.
func NewWithPrealloc(size int) *PointCloud {
	return &PointCloud{Positions: make([]r3.Vector, 0, size)}
}

// Size returns the number of points in the cloud.
func (pc *PointCloud) Size() int {
	return len(pc.Positions)
}

// HasColors returns whether the cloud carries per-point colors.
func (pc *PointCloud) HasColors() bool {
	return len(pc.Colors) > 0
}

// HasNormals returns whether the cloud carries per-point normals.
func (pc *PointCloud) HasNormals() bool {
	return len(pc.Normals) > 0
}

// CheckValid checks the parallel-slice length invariants.
func (pc *PointCloud) CheckValid() error {
	if len(pc.Colors) != 0 && len(pc.Colors) != len(pc.Positions) {
		return errors.Errorf("colors length %d does not match positions length %d", len(pc.Colors), len(pc.Positions))
	}
	if len(pc.Normals) != 0 && len(pc.Normals) != len(pc.Positions) {
		return errors.Errorf("normals length %d does not match positions length %d", len(pc.Normals), len(pc.Positions))
	}
	return nil
}

// Clone returns a deep copy of the cloud.
func (pc *PointCloud) Clone() *PointCloud {
	out := &PointCloud{Positions: make([]r3.Vector, len(pc.Positions))}
	copy(out.Positions, pc.Positions)
	if pc.HasColors() {
		out.Colors = make([]color.NRGBA, len(pc.Colors))
		copy(out.Colors, pc.Colors)
	}
	if pc.HasNormals() {
		out.Normals = make([]r3.Vector, len(pc.Normals))
		copy(out.Normals, pc.Normals)
	}
	return out
}

// keepIndices builds a new cloud out of the points at the given indices,
// filtering colors and normals in lockstep. Indices must be ascending to
// preserve point order.
func (pc *PointCloud) keepIndices(indices []int) *PointCloud {
	out := &PointCloud{Positions: make([]r3.Vector, 0, len(indices))}
	if pc.HasColors() {
		out.Colors = make([]color.NRGBA, 0, len(indices))
	}
	if pc.HasNormals() {
		out.Normals = make([]r3.Vector, 0, len(indices))
	}
	for _, i := range indices {
		out.Positions = append(out.Positions, pc.Positions[i])
		if pc.HasColors() {
			out.Colors = append(out.Colors, pc.Colors[i])
		}
		if pc.HasNormals() {
			out.Normals = append(out.Normals, pc.Normals[i])
		}
	}
	return out
}
