package mesh

import (
	"image/color"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/depthcloud/pointcloud"
)

// normalRadiusFactor sizes the normal-estimation neighborhood relative to the
// splat radius when the input cloud has no normals yet.
const normalRadiusFactor = 3.0

// NewSplatMesh approximates a surface over an unordered point set by emitting
// one quad (two triangles) per point, perpendicular to the point's normal and
// sized by radius, with all four vertices inheriting the point's color. If the
// cloud has no normals they are estimated first, oriented toward viewpoint.
// Points whose normal is undefined (zero length) are skipped. An empty cloud
// produces an empty mesh.
func NewSplatMesh(pc *pointcloud.PointCloud, radius float64, viewpoint r3.Vector) (*Mesh, error) {
	if radius <= 0 {
		return nil, errors.Errorf("splat radius must be > 0, got %v", radius)
	}
	if pc.Size() == 0 {
		return New(), nil
	}
	if !pc.HasNormals() {
		var err error
		pc, err = pointcloud.EstimateNormals(pc, radius*normalRadiusFactor, pointcloud.DefaultNormalNeighbors, viewpoint)
		if err != nil {
			return nil, err
		}
	}

	m := &Mesh{
		Positions: make([]r3.Vector, 0, 4*pc.Size()),
		Normals:   make([]r3.Vector, 0, 4*pc.Size()),
		Indices:   make([]int32, 0, 6*pc.Size()),
	}
	if pc.HasColors() {
		m.Colors = make([]color.NRGBA, 0, 4*pc.Size())
	}
	for i, p := range pc.Positions {
		n := pc.Normals[i]
		if n.Norm2() == 0 {
			continue
		}
		u := n.Ortho().Mul(radius)
		v := n.Cross(n.Ortho()).Mul(radius)
		base := int32(len(m.Positions))
		m.Positions = append(m.Positions,
			p.Sub(u).Sub(v),
			p.Add(u).Sub(v),
			p.Add(u).Add(v),
			p.Sub(u).Add(v),
		)
		m.Normals = append(m.Normals, n, n, n, n)
		if pc.HasColors() {
			c := pc.Colors[i]
			m.Colors = append(m.Colors, c, c, c, c)
		}
		// Counterclockwise winding as seen from the normal side.
		m.Indices = append(m.Indices,
			base, base+1, base+2,
			base, base+2, base+3,
		)
	}
	return m, nil
}
