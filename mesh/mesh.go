// Package mesh defines the triangle mesh artifact produced from a point
// cloud and a point-splat surface reconstruction over it.
package mesh

import (
	"image/color"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Mesh is vertex positions with optional per-vertex normals and colors, and a
// triangle index list. Indices come in triples; every index is a valid vertex.
type Mesh struct {
	Positions []r3.Vector
	Normals   []r3.Vector
	Colors    []color.NRGBA
	Indices   []int32
}

// New returns an empty Mesh.
func New() *Mesh {
	return &Mesh{}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// CheckValid checks the index and per-vertex attribute invariants.
func (m *Mesh) CheckValid() error {
	if len(m.Indices)%3 != 0 {
		return errors.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}
	for _, idx := range m.Indices {
		if idx < 0 || int(idx) >= len(m.Positions) {
			return errors.Errorf("index %d out of range [0, %d)", idx, len(m.Positions))
		}
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
		return errors.Errorf("normals length %d does not match vertex count %d", len(m.Normals), len(m.Positions))
	}
	if len(m.Colors) != 0 && len(m.Colors) != len(m.Positions) {
		return errors.Errorf("colors length %d does not match vertex count %d", len(m.Colors), len(m.Positions))
	}
	return nil
}
