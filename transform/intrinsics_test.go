package transform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestIntrinsicsCheckValid(t *testing.T) {
	good := &PinholeCameraIntrinsics{Width: 10, Height: 10, Fx: 5, Fy: 5, Ppx: 5, Ppy: 5}
	test.That(t, good.CheckValid(), test.ShouldBeNil)

	var nilParams *PinholeCameraIntrinsics
	err := nilParams.CheckValid()
	test.That(t, errors.Is(err, ErrNoIntrinsics), test.ShouldBeTrue)

	bad := &PinholeCameraIntrinsics{Width: 0, Height: 10, Fx: 5, Fy: 5}
	test.That(t, bad.CheckValid(), test.ShouldNotBeNil)
	bad = &PinholeCameraIntrinsics{Width: 10, Height: 10, Fx: 0, Fy: 5}
	test.That(t, bad.CheckValid(), test.ShouldNotBeNil)
	bad = &PinholeCameraIntrinsics{Width: 10, Height: 10, Fx: 5, Fy: -1}
	test.That(t, bad.CheckValid(), test.ShouldNotBeNil)
}

func TestPixelToPointRoundTrip(t *testing.T) {
	params := &PinholeCameraIntrinsics{Width: 640, Height: 480, Fx: 500, Fy: 500, Ppx: 320, Ppy: 240}
	x, y, z := params.PixelToPoint(100, 200, 2.5)
	u, v := params.PointToPixel(x, y, z)
	test.That(t, u, test.ShouldAlmostEqual, 100)
	test.That(t, v, test.ShouldAlmostEqual, 200)

	u, v = params.PointToPixel(1, 1, 0)
	test.That(t, u, test.ShouldEqual, -1.0)
	test.That(t, v, test.ShouldEqual, -1.0)
}

func TestIntrinsicsFromJSONFile(t *testing.T) {
	jsonPath := filepath.Join(t.TempDir(), "intrinsics.json")
	content := `{"width_px": 4, "height_px": 4, "fx": 4, "fy": 4, "ppx": 2, "ppy": 2}`
	test.That(t, os.WriteFile(jsonPath, []byte(content), 0o600), test.ShouldBeNil)

	params, err := NewPinholeCameraIntrinsicsFromJSONFile(jsonPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, params.Width, test.ShouldEqual, 4)
	test.That(t, params.Fx, test.ShouldEqual, 4.0)
	test.That(t, params.Ppy, test.ShouldEqual, 2.0)

	_, err = NewPinholeCameraIntrinsicsFromJSONFile(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}
