package pointcloud

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DefaultNormalNeighbors is the k-NN fallback size for normal estimation when
// a point has no neighbors inside the search radius.
const DefaultNormalNeighbors = 8

// EstimateNormals fits a plane through each point's neighborhood and returns
// a new cloud with the resulting unit normals. The neighborhood is every
// other point within radius, falling back to the fallbackK nearest neighbors
// when the radius search comes up empty. Normals are oriented to face
// viewpoint. A point with fewer than 3 neighbors gets a zero-length normal,
// marking the direction as undefined.
func EstimateNormals(pc *PointCloud, radius float64, fallbackK int, viewpoint r3.Vector) (*PointCloud, error) {
	if radius <= 0 {
		return nil, errors.Errorf("normal estimation radius must be > 0, got %v", radius)
	}
	if fallbackK < 1 {
		fallbackK = DefaultNormalNeighbors
	}
	out := pc.Clone()
	out.Normals = make([]r3.Vector, pc.Size())
	for i, p := range pc.Positions {
		neighbors := radiusNeighbors(pc.Positions, i, radius)
		if len(neighbors) == 0 {
			neighbors = nearestNeighbors(pc.Positions, i, fallbackK)
		}
		if len(neighbors) < 3 {
			continue
		}
		normal := planeNormalFromNeighborhood(pc.Positions, neighbors)
		if normal.Dot(viewpoint.Sub(p)) < 0 {
			normal = normal.Mul(-1)
		}
		out.Normals[i] = normal
	}
	return out, nil
}

// planeNormalFromNeighborhood computes the unit normal of the best-fit plane
// through the given points as the eigenvector of smallest eigenvalue of their
// covariance matrix.
func planeNormalFromNeighborhood(positions []r3.Vector, indices []int) r3.Vector {
	center := r3.Vector{}
	for _, j := range indices {
		center = center.Add(positions[j])
	}
	center = center.Mul(1.0 / float64(len(indices)))

	var xx, xy, xz, yy, yz, zz float64
	for _, j := range indices {
		d := positions[j].Sub(center)
		xx += d.X * d.X
		xy += d.X * d.Y
		xz += d.X * d.Z
		yy += d.Y * d.Y
		yz += d.Y * d.Z
		zz += d.Z * d.Z
	}
	cov := mat.NewSymDense(3, []float64{
		xx, xy, xz,
		xy, yy, yz,
		xz, yz, zz,
	})

	var eigen mat.EigenSym
	if ok := eigen.Factorize(cov, true); !ok {
		return r3.Vector{}
	}
	var vectors mat.Dense
	eigen.VectorsTo(&vectors)
	// EigenSym orders eigenvalues ascending; column 0 spans the direction of
	// least variance.
	normal := r3.Vector{X: vectors.At(0, 0), Y: vectors.At(1, 0), Z: vectors.At(2, 0)}
	if normal.Norm2() == 0 {
		return r3.Vector{}
	}
	return normal.Normalize()
}
