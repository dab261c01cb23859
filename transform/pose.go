package transform

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a camera's position and orientation in world space.
type Pose struct {
	position    r3.Vector
	orientation quat.Number
}

// NewZeroPose returns a pose at the world origin with no rotation.
func NewZeroPose() *Pose {
	return &Pose{orientation: quat.Number{Real: 1}}
}

// NewPose returns a pose from a position and a unit orientation quaternion.
// The quaternion is normalized if it is not already unit length.
func NewPose(position r3.Vector, orientation quat.Number) *Pose {
	if n := quat.Abs(orientation); n != 0 && n != 1 {
		orientation = quat.Scale(1/n, orientation)
	}
	return &Pose{position: position, orientation: orientation}
}

// NewPoseFromAxisAngle returns a pose whose orientation is a rotation of
// theta radians about the given axis.
func NewPoseFromAxisAngle(position, axis r3.Vector, theta float64) *Pose {
	axis = axis.Normalize()
	s := math.Sin(theta / 2)
	return &Pose{
		position: position,
		orientation: quat.Number{
			Real: math.Cos(theta / 2),
			Imag: axis.X * s,
			Jmag: axis.Y * s,
			Kmag: axis.Z * s,
		},
	}
}

// Position returns the world-space position.
func (p *Pose) Position() r3.Vector {
	return p.position
}

// Orientation returns the orientation quaternion.
func (p *Pose) Orientation() quat.Number {
	return p.orientation
}

// TransformPoint takes a camera-frame point to world space: rotate by the
// orientation, then translate by the position.
func (p *Pose) TransformPoint(pt r3.Vector) r3.Vector {
	pq := quat.Number{Imag: pt.X, Jmag: pt.Y, Kmag: pt.Z}
	rotated := quat.Mul(quat.Mul(p.orientation, pq), quat.Conj(p.orientation))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}.Add(p.position)
}
