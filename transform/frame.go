package transform

import (
	"time"

	"github.com/pkg/errors"

	"go.viam.com/depthcloud/depth"
)

// ErrNoPose is when the runtime could not supply a camera pose for a frame.
// Projection fails closed in that case instead of guessing one.
var ErrNoPose = errors.New("camera pose is not available")

// DepthFrame couples one captured depth map with the camera state that was
// valid when it was captured. It is created once per sampling tick, consumed
// by projection, and then discarded.
type DepthFrame struct {
	Depth      *depth.Map
	Intrinsics *PinholeCameraIntrinsics
	// Pose is nil when the runtime had no eye transform for this tick.
	Pose       *Pose
	CapturedAt time.Time
}

// CheckValid checks that the frame has a usable depth grid and intrinsics.
// A missing pose is not checked here; it is a per-projection failure.
func (f *DepthFrame) CheckValid() error {
	if f == nil || !f.Depth.HasData() {
		return depth.NewNoDepthDataError("frame has no depth map")
	}
	if err := f.Intrinsics.CheckValid(); err != nil {
		return err
	}
	if f.Intrinsics.Width != f.Depth.Width() || f.Intrinsics.Height != f.Depth.Height() {
		return errors.Errorf("depth map dimensions (%d,%d) don't match intrinsics (%d,%d)",
			f.Depth.Width(), f.Depth.Height(), f.Intrinsics.Width, f.Intrinsics.Height)
	}
	return nil
}
