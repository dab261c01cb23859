package transform

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestZeroPose(t *testing.T) {
	p := NewZeroPose()
	pt := r3.Vector{X: 1, Y: 2, Z: 3}
	test.That(t, p.TransformPoint(pt), test.ShouldResemble, pt)
}

func TestPoseTranslation(t *testing.T) {
	p := NewPoseFromAxisAngle(r3.Vector{X: 10, Y: -5, Z: 1}, r3.Vector{Z: 1}, 0)
	out := p.TransformPoint(r3.Vector{X: 1, Y: 1, Z: 1})
	test.That(t, out.X, test.ShouldAlmostEqual, 11)
	test.That(t, out.Y, test.ShouldAlmostEqual, -4)
	test.That(t, out.Z, test.ShouldAlmostEqual, 2)
}

func TestPoseRotation(t *testing.T) {
	// quarter turn about z takes +x to +y
	p := NewPoseFromAxisAngle(r3.Vector{}, r3.Vector{Z: 1}, math.Pi/2)
	out := p.TransformPoint(r3.Vector{X: 1})
	test.That(t, out.X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, out.Y, test.ShouldAlmostEqual, 1, 1e-9)
	test.That(t, out.Z, test.ShouldAlmostEqual, 0, 1e-9)
}

func TestPoseNormalizesOrientation(t *testing.T) {
	// a non-unit quaternion should not scale transformed points
	p := NewPose(r3.Vector{}, quat.Number{Real: 2})
	out := p.TransformPoint(r3.Vector{X: 1})
	test.That(t, out.Norm(), test.ShouldAlmostEqual, 1, 1e-9)
}
